package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hseto/minute/internal/app"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Short:   "Initialize the task store",
		GroupID: groupSetup,
		Long: `Initialize the task store in the current directory.

For the file backend this creates .minute/ with the tasks, holding and
archive areas plus the ID counter. Re-running init is safe: it repairs the
ID counter if task files were added behind its back and touches nothing
else.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.InitStoreUseCase().Execute(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized task store in %s\n", c.Config.MinuteDir)
			return nil
		},
	}
}
