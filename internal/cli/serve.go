package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/observability/prom"
	"github.com/matzehuels/repertoire/pkg/rules"
	"github.com/matzehuels/repertoire/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	sessionTTL time.Duration
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the repertoires over HTTP",
		Long: `Serve builds every configured repertoire and exposes it through a JSON API:
position lookups, origins and practice sessions. Prometheus metrics are
served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", server.DefaultSessionTTL, "drop practice sessions idle this long")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	colors, err := c.colors()
	if err != nil {
		return err
	}

	metrics := prom.New(nil)
	metrics.Install()

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	graphs := make(map[rules.Color]*graph.Graph, len(colors))
	for _, color := range colors {
		res, err := c.build(ctx, runner, color)
		if err != nil {
			return err
		}
		graphs[color] = res.Graph
	}

	store, err := c.newHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	srv := server.New(graphs, server.Options{
		Logger:     c.Logger,
		History:    store,
		Metrics:    metrics.Handler(),
		SessionTTL: opts.sessionTTL,
	})

	printNextStep("Try", "curl http://"+addr+"/api/"+colors[0].String()+"/stats")
	return srv.ListenAndServe(ctx, addr, cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)
}
