package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/io"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the repertoire graph as JSON",
		Long: `Export writes the built graph as a JSON document. The document can be used as
a dataset of its own: files ending in .json are read back as graphs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if output == "-" {
				return io.WriteJSON(res.Graph, os.Stdout)
			}
			if output == "" {
				output = color.Name() + ".json"
			}
			if err := io.ExportJSON(res.Graph, output); err != nil {
				return err
			}
			printSuccess("Exported %s repertoire", color.Name())
			printStats(res.Graph.NodeCount(), res.Graph.EdgeCount(), 0)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <color>.json)")
	return cmd
}
