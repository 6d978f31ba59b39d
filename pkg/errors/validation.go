package errors

import (
	"strings"
	"unicode"
)

// MaxSequenceLength bounds the number of moves accepted in a single
// user-supplied sequence. Opening lines are far shorter; the bound only
// protects lookups from pathological input.
const MaxSequenceLength = 512

// ValidateMoveText validates a single move token supplied by a user.
// It rejects empty tokens, control characters and anything longer than a
// move can be in SAN or UCI notation (plus annotations).
func ValidateMoveText(move string) error {
	if move == "" {
		return New(ErrCodeInvalidInput, "move cannot be empty")
	}
	if len(move) > 16 {
		return New(ErrCodeInvalidInput, "move %q is too long", move)
	}
	for _, r := range move {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "move %q contains invalid characters", move)
		}
	}
	return nil
}

// ValidateSequence validates every move of a user-supplied sequence.
func ValidateSequence(moves []string) error {
	if len(moves) > MaxSequenceLength {
		return New(ErrCodeInvalidInput, "sequence too long (max %d moves)", MaxSequenceLength)
	}
	for _, m := range moves {
		if err := ValidateMoveText(m); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePath validates a dataset or output path from configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidConfig, "path cannot be empty")
	}
	if len(path) > 1024 {
		return New(ErrCodeInvalidConfig, "path too long (max 1024 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "path contains invalid control characters")
		}
	}
	return nil
}
