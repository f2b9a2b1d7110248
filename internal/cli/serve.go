package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hseto/minute/internal/app"
	"github.com/hseto/minute/internal/infra/toolserver"
)

// newServeCommand creates the serve command.
func newServeCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the JSON-RPC tool server on stdio",
		GroupID: groupSetup,
		Long: `Run a JSON-RPC 2.0 server over stdin/stdout, exposing the pipeline
operations as tools (minute.extract, minute.score, minute.task.*).

The server reads newline-delimited requests and exits on EOF. It is meant
to be spawned by an editor or agent integration, not used interactively.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := toolserver.NewTransport(c.ToolServer(), os.Stdin, os.Stdout, c.Logger)
			return t.Serve(cmd.Context())
		},
	}
}
