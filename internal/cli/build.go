package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/pipeline"
)

// maxListed caps the skipped lines and conflicts printed per repertoire.
const maxListed = 20

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the repertoire graphs and report problems",
		Long: `Build reads the configured datasets, merges transpositions and reports the
size of each repertoire together with skipped lines and positions where
more than one move is prepared for your side.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			colors, err := c.colors()
			if err != nil {
				return err
			}
			if strict {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				cfg.Build.Strict = true
			}

			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			for i, color := range colors {
				if i > 0 {
					printNewline()
				}
				res, err := c.build(cmd.Context(), runner, color)
				if err != nil {
					return err
				}
				printBuildResult(res)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on the first repertoire conflict")
	return cmd
}

// printBuildResult prints the summary of one build.
func printBuildResult(res *pipeline.Result) {
	rep := res.Report
	printSuccess("Built %s repertoire", StyleTitle.Render(rep.Color.Name()))
	printStats(rep.Nodes, rep.Edges, res.Graph.Root().Leaves())
	printKeyValue("Files", fmt.Sprint(len(res.Files)))
	printKeyValue("Lines", fmt.Sprintf("%d of %d inserted", rep.Inserted, rep.Lines))
	printKeyValue("Inferred", fmt.Sprintf("%s in %s", plural(rep.Inferred, "move"), plural(rep.Passes, "pass")))
	printKeyValue("Time", (res.Stats.LoadTime + res.Stats.BuildTime).String())

	if res.ParseErrors > 0 {
		printWarning("%s could not be parsed", plural(res.ParseErrors, "line"))
	}
	if len(rep.Skipped) > 0 {
		printWarning("%s skipped", plural(len(rep.Skipped), "line"))
		for i, s := range rep.Skipped {
			if i == maxListed {
				printDetail("... and %d more", len(rep.Skipped)-maxListed)
				break
			}
			printDetail("%s: %v", s.Line, s.Err)
		}
	}
	if len(rep.Conflicts) > 0 {
		printWarning("%s with more than one prepared move", plural(len(rep.Conflicts), "position"))
		for i, cf := range rep.Conflicts {
			if i == maxListed {
				printDetail("... and %d more", len(rep.Conflicts)-maxListed)
				break
			}
			printDetail("%s: %s", formatPath(res.Graph, cf.Node), strings.Join(cf.Moves, ", "))
		}
	}
}

// formatPath renders the first line leading to n, or "start" for the root.
func formatPath(g *graph.Graph, n *graph.Node) string {
	moves := graph.SANs(g.FirstOrigin(n))
	if len(moves) == 0 {
		return "start"
	}
	return dataset.Format(moves)
}
