package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/repertoire/pkg/graph"
)

// Document is the JSON form of a graph.
type Document struct {
	ColorName string `json:"color"`
	Nodes     []Node `json:"nodes"`
	Edges     []Edge `json:"edges"`
}

// Node is the JSON form of a position.
type Node struct {
	ID        int      `json:"id"`
	Key       string   `json:"key"`
	FEN       string   `json:"fen"`
	Turn      string   `json:"turn"`
	Depth     int      `json:"depth"`
	Leaves    int      `json:"leaves"`
	Reachable int      `json:"reachable"`
	Origin    []string `json:"origin"`
}

// Edge is the JSON form of a move.
type Edge struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	SAN  string `json:"san"`
	UCI  string `json:"uci"`
}

// Encode converts g to its document form. Nodes appear in creation order.
func Encode(g *graph.Graph) *Document {
	doc := &Document{ColorName: g.Color().String()}
	for _, n := range g.Nodes() {
		origin := graph.SANs(g.FirstOrigin(n))
		doc.Nodes = append(doc.Nodes, Node{
			ID:        n.ID,
			Key:       string(n.Key),
			FEN:       n.Position.FEN(),
			Turn:      n.Turn().String(),
			Depth:     n.Depth(),
			Leaves:    n.Leaves(),
			Reachable: n.Reachable(),
			Origin:    origin,
		})
		for _, e := range n.Edges() {
			doc.Edges = append(doc.Edges, Edge{
				From: e.From.ID,
				To:   e.To.ID,
				SAN:  e.Move.SAN,
				UCI:  e.Move.UCI,
			})
		}
	}
	return doc
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Encode(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
