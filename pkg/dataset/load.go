package dataset

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/repertoire/pkg/errors"
)

// Set is the result of loading one color's dataset.
type Set struct {
	Files  []string      // Files read, in load order
	Lines  []Line        // Parsed lines, in file then line order
	Errors []*ParseError // Lines that were skipped
}

// Extensions lists the file suffixes picked up when a directory is loaded.
var Extensions = []string{".txt", ".lines", ".pgn"}

// Load reads every path in order. Directories are walked recursively and
// contribute files with a known extension in lexical order; hidden entries are
// skipped. Paths named explicitly are read regardless of their extension.
func Load(paths ...string) (*Set, error) {
	set := &Set{}
	for _, p := range paths {
		if err := errors.ValidatePath(p); err != nil {
			return nil, err
		}
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := set.readFile(f); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && slices.Contains(Extensions, strings.ToLower(filepath.Ext(p))) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func (s *Set) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	read := Read
	if strings.EqualFold(filepath.Ext(path), ".pgn") {
		read = ReadPGN
	}
	lines, errs, err := read(f, path)
	if err != nil {
		return err
	}
	s.Files = append(s.Files, path)
	s.Lines = append(s.Lines, lines...)
	s.Errors = append(s.Errors, errs...)
	return nil
}

// Moves returns the move lists of all lines.
func (s *Set) Moves() [][]string {
	out := make([][]string, len(s.Lines))
	for i, l := range s.Lines {
		out[i] = l.Moves
	}
	return out
}
