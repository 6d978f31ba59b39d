package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// ReadJSON decodes and validates a document from r.
//
// ReadJSON returns an error with code INVALID_FORMAT if:
//   - The JSON is malformed
//   - The color is not "w" or "b"
//   - A node ID is duplicated or node 0 is missing
//   - An edge references an unknown node or has no SAN
//   - A node other than the root has no origin
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportJSON reads a document from the JSON file at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (d *Document) validate() error {
	if _, err := rules.ParseColor(d.ColorName); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "graph color")
	}
	ids := make(map[int]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if ids[n.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate node id %d", n.ID)
		}
		ids[n.ID] = true
		if n.ID != 0 && len(n.Origin) == 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d has no origin", n.ID)
		}
	}
	if !ids[0] {
		return errors.New(errors.ErrCodeInvalidFormat, "root node 0 is missing")
	}
	for _, e := range d.Edges {
		if !ids[e.From] || !ids[e.To] {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d -> %d references an unknown node", e.From, e.To)
		}
		if e.SAN == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d -> %d has no move", e.From, e.To)
		}
	}
	return nil
}

// Color returns the repertoire color of the document.
func (d *Document) Color() rules.Color {
	c, _ := rules.ParseColor(d.ColorName)
	return c
}

// Lines returns one line per edge: the origin of the edge's source node
// followed by the edge's move. Line numbers count edges from 1.
func (d *Document) Lines(source string) []dataset.Line {
	origins := make(map[int][]string, len(d.Nodes))
	for _, n := range d.Nodes {
		origins[n.ID] = n.Origin
	}
	lines := make([]dataset.Line, 0, len(d.Edges))
	for i, e := range d.Edges {
		moves := append(slices.Clone(origins[e.From]), e.SAN)
		lines = append(lines, dataset.Line{Source: source, Number: i + 1, Moves: moves})
	}
	return lines
}
