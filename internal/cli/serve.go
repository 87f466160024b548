package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/convgraph/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the debug HTTP server",
		Long: `Serve the registry's resolution results, conversion trees and statistics
over HTTP until interrupted. The listen address defaults to the server.addr
setting of the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEngine()
			if err != nil {
				return err
			}
			store, err := c.newCache()
			if err != nil {
				return err
			}
			defer store.Close()

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			printNextStep(cmd.ErrOrStderr(), "Try", "curl 'http://"+addr+"/find?from=int&to=string'")
			return server.New(e, store, c.Logger).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
