package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/mcpserver"
)

var mcpFlags struct {
	addr string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve inspection tools over MCP",
	Long: `Serve inspection tools to MCP clients over streamable HTTP.

Tools: list-properties, address-lookup, quick-create and create-inspection.
create-inspection goes through the same checks and commit sequence as the
wizard. The server listens on loopback until interrupted.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", "127.0.0.1:0", "Listen address (port 0 picks a free port)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cmd, true, false)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.New(mcpserver.Options{
		Client:    a.client,
		Events:    a.publisher(),
		WebURL:    a.cfg.WebURL,
		MaxPhotos: a.cfg.MaxPhotos,
	})
	if _, err := srv.Start(ctx, mcpFlags.addr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())

	<-ctx.Done()
	logger.Info("Shutting down MCP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
