package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/tui/theme"
)

const (
	logoText1 = "▀ █▄ █ █▀ █▀█ █▀▀ █▀▀ ▀█▀ █▀█"
	logoText2 = "█ █ ▀█ ▄█ █▀▀ ██▄ █▄▄  █  █▀▄"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inspectr",
	Short: "Create property inspections from the terminal",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

inspectr creates property inspections against the inspection service API.
The new command walks through property, rooms and photos, then creates the
inspection, its rooms and photos in order and starts the AI analysis.
The quick command does the same for a bare address in a single call.

Commit attempts are journaled in embedded NATS JetStream under the data
directory and can be reviewed with the history command.`

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(quickCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(propertiesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(setupCmd)
}
