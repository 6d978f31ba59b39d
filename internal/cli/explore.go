package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/explore"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the repertoire interactively",
		Long: `Explore opens a terminal browser over the repertoire. Each position lists the
prepared moves with the number of lines and positions behind them; moves can
also be typed in SAN or UCI.`,
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

			ex := explore.New(res.Graph)
			if from != "" {
				moves, err := parseMoveArgs([]string{from})
				if err != nil {
					return err
				}
				if err := ex.Goto(moves); err != nil {
					return err
				}
			}

			_, err = tea.NewProgram(NewExploreModel(ex), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start at the position after these moves")
	return cmd
}
