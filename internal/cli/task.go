package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hseto/minute/internal/app"
	"github.com/hseto/minute/internal/domain"
	"github.com/hseto/minute/internal/usecase"
)

// newNewCommand creates the new command for creating tasks by hand.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title    string
		Assignee string
		Priority string
		Due      string
		Body     string
		Labels   []string
	}

	cmd := &cobra.Command{
		Use:     "new",
		Short:   "Create a task manually",
		GroupID: groupTask,
		Long: `Create a task directly, outside the extraction pipeline.

Manual tasks carry full confidence and go straight to the active queue
with status 'todo'.

Examples:
  minute new --title "Rotate the staging TLS certs"
  minute new --title "Fix login redirect" --assignee kim --due 2026-09-01
  minute new --title "Ship the rollout" --priority high --label deploy`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.NewTaskInput{
				Title:    opts.Title,
				Assignee: opts.Assignee,
				Priority: domain.Priority(opts.Priority),
				Body:     opts.Body,
				Labels:   opts.Labels,
			}
			if opts.Due != "" {
				due, err := domain.ParseDate(opts.Due)
				if err != nil {
					return err
				}
				input.Due = &due
			}

			out, err := c.NewTaskUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Assignee (default: unassigned)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Priority: critical, high, medium, low (default: medium)")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Body, "body", "", "Task body")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Labels (can specify multiple)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// newUpdateCommand creates the update command.
func newUpdateCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title          string
		Status         string
		Assignee       string
		Priority       string
		Due            string
		BlockedBy      string
		Urgency        int
		Impact         int
		Effort         int
		Labels         []string
		Dependencies   []string
		ClearDue       bool
		ClearBlockedBy bool
		ClearImpact    bool
		ClearEffort    bool
	}

	cmd := &cobra.Command{
		Use:     "update <task-id>",
		Short:   "Update task fields",
		GroupID: groupTask,
		Long: `Update fields of an existing task.

Status changes follow the lifecycle: todo <-> in-progress -> review -> done,
and any non-terminal status can enter blocked. Entering blocked requires
--blocked-by; leaving it requires --clear-blocked-by. The score cannot be
set directly; change urgency, impact or effort and the score follows.

Examples:
  minute update TASK-012 --status in-progress
  minute update TASK-012 --status blocked --blocked-by TASK-009
  minute update TASK-012 --status in-progress --clear-blocked-by
  minute update TASK-012 --impact 8 --effort 3
  minute update TASK-012 --due 2026-09-15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.FieldPatch{
				ClearDue:       opts.ClearDue,
				ClearBlockedBy: opts.ClearBlockedBy,
				ClearImpact:    opts.ClearImpact,
				ClearEffort:    opts.ClearEffort,
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &opts.Title
			}
			if flags.Changed("status") {
				status := domain.Status(opts.Status)
				patch.Status = &status
			}
			if flags.Changed("assignee") {
				patch.Assignee = &opts.Assignee
			}
			if flags.Changed("priority") {
				priority := domain.Priority(opts.Priority)
				patch.Priority = &priority
			}
			if flags.Changed("due") {
				due, err := domain.ParseDate(opts.Due)
				if err != nil {
					return err
				}
				patch.Due = &due
			}
			if flags.Changed("blocked-by") {
				patch.BlockedBy = &opts.BlockedBy
			}
			if flags.Changed("urgency") {
				patch.Urgency = &opts.Urgency
			}
			if flags.Changed("impact") {
				patch.Impact = &opts.Impact
			}
			if flags.Changed("effort") {
				patch.Effort = &opts.Effort
			}
			if flags.Changed("label") {
				patch.Labels = &opts.Labels
			}
			if flags.Changed("depends-on") {
				patch.Dependencies = &opts.Dependencies
			}

			out, err := c.UpdateTaskUseCase().Execute(cmd.Context(), usecase.UpdateTaskInput{
				ID:    args[0],
				Patch: patch,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "New assignee")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&opts.Due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.BlockedBy, "blocked-by", "", "What this task is blocked by")
	cmd.Flags().IntVar(&opts.Urgency, "urgency", 0, "Urgency signal [1,10]")
	cmd.Flags().IntVar(&opts.Impact, "impact", 0, "Impact signal [1,10]")
	cmd.Flags().IntVar(&opts.Effort, "effort", 0, "Effort signal [1,10]")
	cmd.Flags().StringArrayVar(&opts.Labels, "label", nil, "Replace labels (can specify multiple)")
	cmd.Flags().StringArrayVar(&opts.Dependencies, "depends-on", nil, "Replace dependencies (can specify multiple)")
	cmd.Flags().BoolVar(&opts.ClearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().BoolVar(&opts.ClearBlockedBy, "clear-blocked-by", false, "Clear blocked_by when leaving blocked")
	cmd.Flags().BoolVar(&opts.ClearImpact, "clear-impact", false, "Drop the cached impact so the next scoring run asks the oracle again")
	cmd.Flags().BoolVar(&opts.ClearEffort, "clear-effort", false, "Drop the cached effort so the next scoring run asks the oracle again")

	return cmd
}

// newDoneCommand creates the done command.
func newDoneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "done <task-id>",
		Short:   "Mark a task done",
		GroupID: groupTask,
		Long: `Mark a task done.

Only tasks in review can complete; 'done' is terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.CompleteTaskUseCase().Execute(cmd.Context(), usecase.CompleteTaskInput{ID: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", out.Task.ID)
			return nil
		},
	}
}

// newPromoteCommand creates the promote command.
func newPromoteCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "promote <task-id>",
		Short:   "Promote a held draft to the active queue",
		GroupID: groupTask,
		Long: `Move a low-confidence draft from the holding area to the active queue.

Promotion records your judgment as a location change; the extraction
confidence on the record is never rewritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.PromoteTaskUseCase().Execute(cmd.Context(), usecase.PromoteTaskInput{ID: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Promoted %s\n", out.Task.ID)
			return nil
		},
	}
}

// newArchiveCommand creates the archive command.
func newArchiveCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "archive <task-id>",
		Short:   "Archive a task",
		GroupID: groupTask,
		Long: `Move a task to the archive area.

Nothing is deleted; archived records keep their full history and can be
inspected later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ArchiveTaskUseCase().Execute(cmd.Context(), usecase.ArchiveTaskInput{ID: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", out.Task.ID)
			return nil
		},
	}
}

// newListCommand creates the list command.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Status   string
		Assignee string
		Label    string
		Area     string
		MinScore float64
		MaxScore float64
		Holding  bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List tasks",
		GroupID: groupTask,
		Long: `List tasks, highest score first.

Examples:
  minute list
  minute list --status blocked
  minute list --assignee kim --min-score 5
  minute list --holding`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.ListTasksInput{
				Assignee: opts.Assignee,
				Label:    opts.Label,
				Area:     domain.Area(opts.Area),
			}
			if opts.Holding {
				input.Area = domain.AreaHolding
			}
			if opts.Status != "" {
				status := domain.Status(opts.Status)
				input.Status = &status
			}
			flags := cmd.Flags()
			if flags.Changed("min-score") {
				input.MinScore = &opts.MinScore
			}
			if flags.Changed("max-score") {
				input.MaxScore = &opts.MaxScore
			}

			out, err := c.ListTasksUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tSCORE\tSTATUS\tPRI\tASSIGNEE\tDUE\tTITLE")
			for _, rec := range out.Tasks {
				score := "-"
				if rec.Score != nil {
					score = fmt.Sprintf("%.1f", *rec.Score)
				}
				due := "-"
				if rec.Due != nil {
					due = rec.Due.String()
				}
				title := rec.Title
				if len(rec.Labels) > 0 {
					title += " [" + strings.Join(rec.Labels, ", ") + "]"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					rec.ID, score, rec.Status, rec.Priority, rec.Assignee, due, title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "Filter by assignee")
	cmd.Flags().StringVar(&opts.Label, "label", "", "Filter by label")
	cmd.Flags().StringVar(&opts.Area, "area", "", "Area: active, holding, archive (default: active)")
	cmd.Flags().Float64Var(&opts.MinScore, "min-score", 0, "Minimum score (excludes unscored tasks)")
	cmd.Flags().Float64Var(&opts.MaxScore, "max-score", 0, "Maximum score")
	cmd.Flags().BoolVar(&opts.Holding, "holding", false, "Shorthand for --area holding")

	return cmd
}
