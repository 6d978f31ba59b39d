package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/coverage"
	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/integrations/lichess"
)

// coverageOpts holds the command-line flags for the coverage command.
type coverageOpts struct {
	output   string // report file
	top      int    // unexplored positions printed
	database string // overrides explorer.database
	noCache  bool
}

// coverageCommand creates the coverage command.
func (c *CLI) coverageCommand() *cobra.Command {
	var opts coverageOpts

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Find popular opponent replies the repertoire does not cover",
		Long: `Coverage walks the repertoire and asks the lichess opening explorer how often
each opponent reply is played. Every position gets the probability of
reaching it when you follow your repertoire; replies you have not prepared
are listed most likely first.

Explorer responses are cached, so repeated runs only query new positions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCoverage(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the full report to this file")
	cmd.Flags().IntVar(&opts.top, "top", 10, "unexplored positions to print")
	cmd.Flags().StringVar(&opts.database, "database", "", "explorer database: lichess or masters")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the explorer response cache")

	return cmd
}

func (c *CLI) runCoverage(ctx context.Context, opts *coverageOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	color, err := c.singleColor()
	if err != nil {
		return err
	}

	backend, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	database := cfg.Explorer.Database
	if opts.database != "" {
		database = opts.database
	}
	client, err := lichess.NewClient(backend, cfg.Cache.TTL.Duration, lichess.Options{
		Database:          database,
		Speeds:            cfg.Explorer.Speeds,
		Ratings:           cfg.Explorer.Ratings,
		Token:             cfg.Explorer.Token,
		BaseURL:           cfg.Explorer.BaseURL,
		RequestsPerSecond: cfg.Explorer.Rate,
	})
	if err != nil {
		return err
	}
	client.SetKeyer(c.cacheKeyer())

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()
	res, err := c.build(ctx, runner, color)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Querying the "+client.Database()+" explorer...")
	spinner.Start()
	report, err := coverage.Analyze(ctx, res.Graph, client,
		coverage.WithLogger(c.Logger),
		coverage.WithOriginLimit(cfg.Explorer.Origins),
		coverage.WithProgress(func(done, total int) {
			spinner.Update(fmt.Sprintf("Querying the %s explorer (%d/%d)...", client.Database(), done, total))
		}),
	)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Coverage analysis failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Analyzed %s in %s (%s)",
		plural(len(report.Entries), "position"), report.Duration.Round(time.Millisecond), plural(report.Queries, "query")))
	prog.done(queriedMessage(report.Queries))

	unexplored := report.Unexplored()
	printKeyValue("Covered", percent(report.Covered(res.Graph)))
	printKeyValue("Unexplored", fmt.Sprint(len(unexplored)))

	if len(unexplored) > 0 && opts.top > 0 {
		t := newTable("#", "Probability", "Line")
		for i, e := range unexplored {
			if i == opts.top {
				break
			}
			line := "start"
			if len(e.Origins) > 0 {
				line = dataset.Format(e.Origins[0])
			}
			t.Row(fmt.Sprint(i+1), percent(e.Probability), line)
		}
		fmt.Println(t.Render())
	}

	if opts.output != "" {
		if err := writeCoverage(report, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

func writeCoverage(report *coverage.Report, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.WriteText(f)
}
