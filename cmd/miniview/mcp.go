package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/miniview"
	"github.com/1broseidon/miniview/internal/mcp"
)

func (a *app) newMCPCmd(opts *showOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
		Args:  usageArgs(cobra.NoArgs),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients,
which can then show images to the user with the show_image tool.`,
		Example: `  claude mcp add miniview -- miniview mcp serve`,
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			// stdout carries the protocol; logs go to stderr only.
			logger := newLogger(a.stderr, res.Config.LogLevel, opts.verbose)

			var viewOpts []miniview.Option
			if a.backend != nil {
				viewOpts = append(viewOpts, miniview.WithBackend(a.backend))
			}
			server := mcp.NewServer(res.Config, logger, viewOpts...)
			defer server.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("MCP server starting", "name", mcp.ServerName, "version", mcp.ServerVersion)
			return server.Run(ctx)
		},
	})
	return cmd
}
