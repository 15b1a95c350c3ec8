package cli

import (
	"context"
	"fmt"
	"io"

	"composite-client/internal/domain/model"
	"composite-client/internal/usecase"

	"github.com/spf13/cobra"
)

func shareCardCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sharecard",
		Aliases: []string{"share-card"},
		Short:   "Generate movie share cards",
	}

	var maxAttempts int
	generate := &cobra.Command{
		Use:   "generate <movie-id>...",
		Short: "Generate share cards and wait for them (Ctrl-C cancels)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			var sessions []*usecase.PollSession
			refused := 0
			for _, id := range args {
				s, err := app.ShareCards.Start(cmd.Context(), model.ID(id), maxAttempts)
				if err != nil {
					refused++
					fmt.Fprintf(cmd.ErrOrStderr(), "[movie %s] Error: %v\n", id, err)
					continue
				}
				e.printer(cmd).line("[movie %s] share card requested, polling...", id)
				sessions = append(sessions, s)
			}
			failed := waitAll(sessions)
			if n := refused + failed; n > 0 {
				return fmt.Errorf("%d of %d share card requests did not finish", n, len(args))
			}
			return nil
		},
	}
	generate.Flags().IntVar(&maxAttempts, "max-attempts", 0, "status queries before giving up (default from config)")

	recheck := &cobra.Command{
		Use:   "recheck <movie-id> <job-id>",
		Short: "Poll an earlier job again without resubmitting it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			h := model.JobHandle{MovieID: model.ID(args[0]), JobID: model.ID(args[1])}
			s, err := app.ShareCards.Recheck(cmd.Context(), h, maxAttempts)
			if err != nil {
				return err
			}
			if waitAll([]*usecase.PollSession{s}) > 0 {
				return fmt.Errorf("recheck of job %s did not finish", h.JobID)
			}
			return nil
		},
	}
	recheck.Flags().IntVar(&maxAttempts, "max-attempts", 0, "status queries before giving up (default from config)")

	history := &cobra.Command{
		Use:   "history <movie-id> <job-id>",
		Short: "Show the recorded history of a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			j, err := app.ShareCards.History(cmd.Context(), model.JobHandle{MovieID: model.ID(args[0]), JobID: model.ID(args[1])})
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(j, func(w io.Writer) { printJob(w, j) })
		},
	}

	cmd.AddCommand(generate, recheck, history)
	return cmd
}

// waitAll blocks until every session has finished and counts those that
// ended with an error. Outcomes are printed by the console notifier.
// Cancelling the command context cancels the sessions themselves.
func waitAll(sessions []*usecase.PollSession) int {
	failed := 0
	for _, s := range sessions {
		if _, err := s.Wait(context.Background()); err != nil {
			failed++
		}
	}
	return failed
}
