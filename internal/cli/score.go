package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hseto/minute/internal/app"
	"github.com/hseto/minute/internal/usecase"
)

// newScoreCommand creates the score command.
func newScoreCommand(c *app.Container) *cobra.Command {
	var opts struct {
		IDs          []string
		OnlyUnscored bool
		DryRun       bool
	}

	cmd := &cobra.Command{
		Use:     "score [flags]",
		Short:   "Score tasks in the active queue",
		GroupID: groupPipeline,
		Long: `Compute priority scores for tasks in the active queue.

Urgency is derived from keywords and deadline proximity. Impact and effort
come from the configured rubric oracle; when the oracle is unavailable the
task gets neutral values and is marked provisional so a later run can
re-score it. Failures are isolated per task, so an interrupted run can
simply be re-run.

Examples:
  # Score every active task
  minute score

  # Score only tasks that have no score yet (e.g. after a partial run)
  minute score --only-unscored

  # Score specific tasks
  minute score --id TASK-012 --id TASK-013

  # Show what would change without writing
  minute score --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if timeout := c.AppConfig.Oracle.TimeoutSeconds; timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
				defer cancel()
			}

			out, err := c.ScoreTasksUseCase().Execute(ctx, usecase.ScoreTasksInput{
				IDs:          opts.IDs,
				OnlyUnscored: opts.OnlyUnscored,
				DryRun:       opts.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, res := range out.Results {
				if res.Err != nil {
					_, _ = fmt.Fprintf(w, "%-12s error: %v\n", res.ID, res.Err)
					continue
				}
				note := ""
				if res.Fallback {
					note = " (provisional: oracle unavailable)"
				}
				_, _ = fmt.Fprintf(w, "%-12s %.1f%s\n", res.ID, *res.Record.Score, note)
			}
			_, _ = fmt.Fprintf(w, "\n%d scored, %d failed\n", out.Scored, out.Failed)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&opts.IDs, "id", nil, "Score a specific task (can specify multiple)")
	cmd.Flags().BoolVar(&opts.OnlyUnscored, "only-unscored", false, "Skip tasks that already have a score")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Compute scores without writing")

	return cmd
}
