package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/history"
	"github.com/matzehuels/repertoire/pkg/practice"
)

// practiceCommand creates the practice command.
func (c *CLI) practiceCommand() *cobra.Command {
	var (
		from      string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Drill the repertoire against random opponent replies",
		Long: `Practice plays the opponent's side of your repertoire, choosing uniformly among
the replies you prepared for. You answer with your prepared move until the
line ends; a move that is legal but not prepared ends the round and shows
the expected moves.

Finished rounds are recorded in the practice history unless --no-history
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			color, err := c.singleColor()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := c.build(ctx, runner, color)
			if err != nil {
				return err
			}
			start, err := resolveStart(res.Graph, from)
			if err != nil {
				return err
			}

			var store history.Store = history.NullStore{}
			if !noHistory {
				if store, err = c.newHistory(ctx); err != nil {
					return err
				}
				defer store.Close()
			}
			m := NewPracticeModel(ctx, practice.New(res.Graph, practice.WithStart(start)), store)

			final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if pm, ok := final.(PracticeModel); ok && pm.Rounds > 0 {
				printSuccess("Solved %d of %s (%s)", pm.Wins, plural(pm.Rounds, "round"),
					percent(float64(pm.Wins)/float64(pm.Rounds)))
				if !noHistory {
					printNextStep("Review your misses", fmt.Sprintf("%s history -c %s", appName, color.String()))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start every round at the position after these moves")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record rounds")
	return cmd
}
