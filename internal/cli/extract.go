package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hseto/minute/internal/app"
	"github.com/hseto/minute/internal/usecase"
)

// newExtractCommand creates the extract command.
func newExtractCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Source string
		DryRun bool
	}

	cmd := &cobra.Command{
		Use:     "extract <note.md>",
		Short:   "Extract tasks from a meeting note",
		GroupID: groupPipeline,
		Long: `Extract action items and implicit commitments from a meeting note.

Checkbox items under an "Action items" section become tasks directly.
Prose commitments ("Sarah will send the report") are extracted with lower
confidence. Hedged language ("we should probably...") is never dropped but
lands in the holding area for human review, as does anything else below the
confidence threshold.

Examples:
  # Extract from a note
  minute extract meetings/2026-08-26-sync.md

  # Preview without writing anything
  minute extract meetings/2026-08-26-sync.md --dry-run

  # Record a different source reference than the file path
  minute extract /tmp/pasted.md --source "2026-08-26 platform sync"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ExtractNoteUseCase().Execute(cmd.Context(), usecase.ExtractNoteInput{
				NotePath: args[0],
				Source:   opts.Source,
				DryRun:   opts.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.DryRun {
				_, _ = fmt.Fprintln(w, "Dry run - tasks that would be created:")
			}
			for _, task := range out.Tasks {
				marker := " "
				if task.Held {
					marker = "?"
				}
				if task.Err != nil {
					_, _ = fmt.Fprintf(w, "! %-12s %.2f  %s: %v\n", "(failed)", task.Record.Confidence, task.Record.Title, task.Err)
					continue
				}
				id := task.Record.ID
				if id == "" {
					id = "(unassigned)"
				}
				_, _ = fmt.Fprintf(w, "%s %-12s %.2f  %s\n", marker, id, task.Record.Confidence, task.Record.Title)
			}
			_, _ = fmt.Fprintf(w, "\n%d task(s) created, %d held for review\n", out.Created, out.Held)
			if out.Failed > 0 {
				_, _ = fmt.Fprintf(w, "%d task(s) failed to save\n", out.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "Source reference recorded on each task (default: note path)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Preview extraction without creating tasks")

	return cmd
}
