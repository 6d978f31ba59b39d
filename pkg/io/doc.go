// Package io provides JSON import and export for opening graphs.
//
// # JSON Format
//
//	{
//	  "color": "w",
//	  "nodes": [
//	    {"id": 0, "key": "rnbqkbnr/... w KQkq -", "fen": "...", "turn": "w",
//	     "depth": 0, "leaves": 3, "reachable": 9, "origin": []},
//	    {"id": 1, "key": "...", "origin": ["d4"], ...}
//	  ],
//	  "edges": [
//	    {"from": 0, "to": 1, "san": "d4", "uci": "d2d4"}
//	  ]
//	}
//
// Node 0 is always the root. Statistics are informational; they are
// recomputed on import.
//
// # Import
//
// A graph cannot be loaded directly since only the builder may create one.
// [ReadJSON] returns a [Document] whose [Document.Lines] replays every edge
// from the shortest origin of its source node, so that building those lines
// reproduces the exported nodes and edges:
//
//	doc, err := io.ImportJSON("white.json")
//	g, _, err := graph.Build(ctx, doc.Color(), doc.Lines("white.json"))
package io
