package cli

import (
	"context"
	"time"

	"composite-client/internal/infra/metrics"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func watchCmd(e *env) *cobra.Command {
	var noAdmin bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-poll abandoned share card jobs and serve the admin endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			metrics.MustRegister()
			metrics.SetBuildInfo(Version, Commit)

			ctx := cmd.Context()
			g, gctx := errgroup.WithContext(ctx)

			worker := app.RecheckWorker()
			g.Go(func() error { return worker.Run(gctx) })

			if !noAdmin {
				srv := app.AdminServer()
				g.Go(srv.Start)
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
			}

			e.log.Info().Bool("admin", !noAdmin).Msg("watching share card jobs")
			err = g.Wait()
			if ctx.Err() != nil {
				e.log.Info().Msg("watch stopped")
				return ctx.Err()
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noAdmin, "no-admin", false, "do not start the admin HTTP server")
	return cmd
}
