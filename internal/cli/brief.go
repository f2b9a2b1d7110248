package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hseto/minute/internal/app"
	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/usecase"
)

// newBriefCommand creates the brief command.
func newBriefCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Limit int
	}

	cmd := &cobra.Command{
		Use:     "brief",
		Short:   "Show the daily priority brief",
		GroupID: groupPipeline,
		Long: `Show the daily brief: overdue and due-soon callouts, the active queue
ranked by score, and a holding-area reminder.

Examples:
  minute brief
  minute brief --limit 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.BriefUseCase().Execute(cmd.Context(), usecase.BriefInput{Limit: opts.Limit})
			if err != nil {
				return err
			}
			renderBrief(cmd, out)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max tasks to show (0 = all)")

	return cmd
}

func renderBrief(cmd *cobra.Command, out *usecase.BriefOutput) {
	w := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(w, "Brief for %s\n\n", out.Today)

	if len(out.Overdue) > 0 {
		_, _ = fmt.Fprintln(w, "Overdue:")
		for _, rec := range out.Overdue {
			_, _ = fmt.Fprintf(w, "  ! %s  %s (due %s, %s)\n",
				rec.ID, rec.Title, rec.Due, humanize.Time(rec.Due.Time()))
		}
		_, _ = fmt.Fprintln(w)
	}
	if len(out.DueSoon) > 0 {
		_, _ = fmt.Fprintln(w, "Due soon:")
		for _, rec := range out.DueSoon {
			_, _ = fmt.Fprintf(w, "  * %s  %s (due %s, %s)\n",
				rec.ID, rec.Title, rec.Due, humanize.Time(rec.Due.Time()))
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(out.Tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No active tasks. Run 'minute extract <note.md>' to pull some in.")
	} else {
		_, _ = fmt.Fprintln(w, "Queue:")
		for _, rec := range out.Tasks {
			band := "  --  "
			if rec.Score != nil {
				band = fmt.Sprintf("%-8s", usecase.ScoreBand(*rec.Score))
			}
			score := " - "
			if rec.Score != nil {
				score = fmt.Sprintf("%.1f", *rec.Score)
			}
			_, _ = fmt.Fprintf(w, "  %s %s %s  [%s] %s (%s)\n",
				band, score, rec.ID, rec.Status, rec.Title, rec.Assignee)
		}
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Status: %d todo, %d in-progress, %d blocked, %d review\n",
		out.ByStatus[domain.StatusTodo],
		out.ByStatus[domain.StatusInProgress],
		out.ByStatus[domain.StatusBlocked],
		out.ByStatus[domain.StatusReview])
	if out.Unscored > 0 {
		_, _ = fmt.Fprintf(w, "Unscored: %d (run 'minute score --only-unscored')\n", out.Unscored)
	}
	if out.HoldingCount > 0 {
		_, _ = fmt.Fprintf(w, "Holding area: %d draft(s) awaiting review (run 'minute list --holding')\n", out.HoldingCount)
	}
}
