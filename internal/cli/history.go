package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/history"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		limit int
		top   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Summarize recorded practice rounds",
		Long: `History reads the recorded practice rounds and prints the success rate
together with the lines you missed most often.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var color string
			if c.color != "" {
				parsed, err := rules.ParseColor(c.color)
				if err != nil {
					return err
				}
				color = parsed.String()
			}

			store, err := c.newHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(ctx, color, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("No practice rounds recorded")
				printNextStep("Start one", appName+" practice")
				return nil
			}
			printSummary(history.Summarize(records, top))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "consider the most recent N rounds (0 for all)")
	cmd.Flags().IntVar(&top, "top", 10, "missed lines to list")
	return cmd
}

func printSummary(s history.Summary) {
	printKeyValue("Rounds", fmt.Sprint(s.Rounds))
	printKeyValue("Solved", fmt.Sprintf("%d (%s)", s.Succeeded, percent(s.Rate())))
	printKeyValue("Failed", fmt.Sprint(s.Failed))
	if len(s.Misses) == 0 {
		return
	}

	printNewline()
	t := newTable("Misses", "Line", "Prepared")
	for _, m := range s.Misses {
		t.Row(fmt.Sprint(m.Count), formatLine(m.Line), strings.Join(m.Expected, ", "))
	}
	fmt.Println(t.Render())
}
