// Package cli provides the command-line interface for minute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hseto/minute/internal/app"
)

// Command group IDs.
const (
	groupSetup    = "setup"
	groupPipeline = "pipeline"
	groupTask     = "task"
)

// NewRootCommand creates the root command for minute.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "minute",
		Short: "Meeting notes to prioritized task queue",
		Long: `minute turns raw meeting notes into a prioritized task queue.

The pipeline has three stages: extraction finds action items and implicit
commitments in a note, scoring ranks them by urgency, impact and effort,
and the queue tracks each task through its lifecycle. Low-confidence
extractions wait in a holding area until a human promotes or archives them.

Typical flow:
  minute init
  minute extract meetings/2026-08-26-sync.md
  minute score
  minute brief`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupPipeline, Title: "Pipeline Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Commands:"},
	)

	root.AddCommand(
		newInitCommand(c),
		newServeCommand(c),
		newExtractCommand(c),
		newScoreCommand(c),
		newBriefCommand(c),
		newNewCommand(c),
		newUpdateCommand(c),
		newDoneCommand(c),
		newPromoteCommand(c),
		newArchiveCommand(c),
		newListCommand(c),
	)

	return root
}
