package errors

import (
	"strings"
	"testing"
)

func TestValidateMoveText(t *testing.T) {
	tests := []struct {
		name    string
		move    string
		wantErr bool
	}{
		{"san", "Nf3", false},
		{"check suffix", "Bb5+", false},
		{"uci", "e7e8q", false},
		{"empty", "", true},
		{"space", "N f3", true},
		{"control", "e4\x00", true},
		{"too long", strings.Repeat("e", 17), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMoveText(tt.move)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMoveText(%q) error = %v, wantErr %v", tt.move, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateSequence(t *testing.T) {
	if err := ValidateSequence([]string{"d4", "Nf6", "c4"}); err != nil {
		t.Errorf("valid sequence rejected: %v", err)
	}
	if err := ValidateSequence([]string{"d4", ""}); err == nil {
		t.Error("sequence with empty move should be rejected")
	}

	long := make([]string, MaxSequenceLength+1)
	for i := range long {
		long[i] = "e4"
	}
	if err := ValidateSequence(long); err == nil {
		t.Error("overlong sequence should be rejected")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"data/white", false},
		{"/abs/path/lines.txt", false},
		{"", true},
		{"   ", true},
		{"bad\x01path", true},
		{strings.Repeat("a", 1025), true},
	}

	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
