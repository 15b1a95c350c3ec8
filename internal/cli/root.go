package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"composite-client/internal/application"
	"composite-client/internal/config"
	"composite-client/internal/infra/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
)

// env is the per-invocation state shared by all subcommands.
type env struct {
	cfgPath string
	dev     bool
	json    bool

	cfg  *config.Config
	log  *zerolog.Logger
	opts application.Options
	app  *application.App
}

// App builds the application on first use so commands that fail flag
// validation never touch Redis or Postgres.
func (e *env) App(cmd *cobra.Command) (*application.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	opts := e.opts
	if opts.Out == nil {
		opts.Out = cmd.OutOrStdout()
	}
	opts.JSON = e.json
	app, err := application.New(cmd.Context(), e.cfg, e.log, opts)
	if err != nil {
		return nil, err
	}
	e.app = app
	return app, nil
}

func (e *env) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), json: e.json}
}

func (e *env) close() {
	if e.app != nil {
		e.app.Close()
		e.app = nil
	}
}

// newRoot assembles the command tree. opts lets tests swap the backend or the
// credential store.
func newRoot(opts application.Options) (*cobra.Command, *env) {
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "composite",
		Short:         "Command line client for the composite movie service",
		Version:       Version + " (" + Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(e.cfgPath, e.dev)
			if err != nil {
				return err
			}
			e.cfg = cfg

			traceID := logging.NewTraceID()
			base := logging.NewWithWriter(cfg.Log, cfg.Runtime.Dev, cmd.ErrOrStderr())
			l := base.With().Str("trace_id", traceID).Logger()
			e.log = &l
			cmd.SetContext(logging.WithTraceID(cmd.Context(), traceID))

			if cfg.Runtime.Dev {
				e.log.Debug().Str("config", e.cfgPath).Msg("dev mode enabled")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&e.cfgPath, "config", "config.yaml", "path to YAML config file")
	root.PersistentFlags().BoolVar(&e.dev, "dev", false, "enable developer mode (debug logs)")
	root.PersistentFlags().BoolVar(&e.json, "json", false, "print results as JSON")

	root.AddCommand(
		moviesCmd(e),
		reviewsCmd(e),
		usersCmd(e),
		loginCmd(e),
		logoutCmd(e),
		healthCmd(e),
		shareCardCmd(e),
		watchCmd(e),
	)
	return root, e
}

// Execute runs the CLI until completion or SIGINT/SIGTERM and returns the
// process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, application.Options{}, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, opts application.Options, args []string, stdout, stderr io.Writer) int {
	root, e := newRoot(opts)
	defer e.close()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return 130
		}
		_, _ = io.WriteString(stderr, "Error: "+err.Error()+"\n")
		return 1
	}
	return 0
}
