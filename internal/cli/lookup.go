package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/lookup"
)

// lookupCommand creates the lookup command.
func (c *CLI) lookupCommand() *cobra.Command {
	var origins int

	cmd := &cobra.Command{
		Use:   "lookup [moves...]",
		Short: "Check whether a line is part of the repertoire",
		Long: `Lookup replays a move sequence against the repertoire. Moves may be given in
SAN or UCI, with or without move numbers. When the line leaves the
repertoire the prepared alternatives are listed, and a line that leaves the
repertoire but reaches a known position is reported as a transposition.`,
		Example: `  repertoire lookup -c white 1. e4 e5 2. Nf3
  repertoire lookup -c black d4 Nf6 c4 e6 --origins 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			moves, err := parseMoveArgs(args)
			if err != nil {
				return err
			}
			color, err := c.singleColor()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := c.build(cmd.Context(), runner, color)
			if err != nil {
				return err
			}
			found, err := lookup.Resolve(res.Graph, moves)
			if err != nil {
				return err
			}
			printLookup(res.Graph, found, origins)
			return nil
		},
	}

	cmd.Flags().IntVar(&origins, "origins", 0, "list up to N lines reaching the position")
	return cmd
}

// parseMoveArgs joins command arguments into one move sequence.
func parseMoveArgs(args []string) ([]string, error) {
	moves, err := dataset.ParseLine(strings.Join(args, " "))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid moves")
	}
	return moves, nil
}

// resolveStart resolves a --from flag to a node of g. An empty value returns
// nil, the root for every caller.
func resolveStart(g *graph.Graph, from string) (*graph.Node, error) {
	if strings.TrimSpace(from) == "" {
		return nil, nil
	}
	moves, err := parseMoveArgs([]string{from})
	if err != nil {
		return nil, err
	}
	res, err := lookup.Resolve(g, moves)
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return nil, res.Miss.Err()
	}
	return res.Node, nil
}

func printLookup(g *graph.Graph, res lookup.Result, origins int) {
	line := dataset.Format(graph.SANs(res.Path))
	if line == "" {
		line = "start"
	}

	n := res.Node
	switch {
	case res.Found:
		printSuccess("%s is in the %s repertoire", StyleHighlight.Render(line), g.Color().Name())
	case res.Transposed != nil:
		n = res.Transposed
		printWarning("%s leaves the repertoire at move %d (%s) but transposes back",
			line, res.Miss.Index+1, res.Miss.Move.SAN)
	default:
		printError("%s leaves the repertoire at move %d (%s)",
			StyleHighlight.Render(line), res.Miss.Index+1, res.Miss.Move.SAN)
		if len(res.Miss.Expected) > 0 {
			printDetail("prepared: %s", strings.Join(res.Miss.Expected, ", "))
		} else {
			printDetail("the line ends before this move")
		}
		return
	}

	printKeyValue("FEN", n.Position.FEN())
	printKeyValue("To move", toMove(g, n))
	if n.IsLeaf() {
		printKeyValue("Moves", "end of line")
	} else {
		t := newTable("Move", "Lines", "Positions")
		for _, e := range n.Edges() {
			t.Row(e.Move.SAN, fmt.Sprint(e.To.Leaves()), fmt.Sprint(e.To.Reachable()))
		}
		fmt.Println(t.Render())
	}

	if origins > 0 {
		printNewline()
		printInfo("Lines reaching this position")
		for _, o := range g.Origins(n, origins) {
			printDetail("%s", dataset.Format(graph.SANs(o)))
		}
	}
}

// toMove names the side to move at n from the repertoire's point of view.
func toMove(g *graph.Graph, n *graph.Node) string {
	if g.IsOwn(n) {
		return n.Turn().Name() + " (you)"
	}
	return n.Turn().Name() + " (opponent)"
}
