package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/tui/theme"
)

var propertiesFlags struct {
	json bool
}

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List your properties",
	RunE:  runProperties,
}

func init() {
	propertiesCmd.Flags().BoolVar(&propertiesFlags.json, "json", false, "Print the properties as JSON")
}

func runProperties(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cmd, false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	props, err := a.client.ListProperties(ctx)
	if err != nil {
		return errors.New(api.Message(err, "Failed to load properties"))
	}

	out := cmd.OutOrStdout()
	if propertiesFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(props)
	}

	s := theme.NewCatppuccinMocha().S()
	if len(props) == 0 {
		fmt.Fprintln(out, s.Muted.Render("No properties yet. Use 'inspectr quick <address>' to add one."))
		return nil
	}
	for _, p := range props {
		line := s.Label.Render(fmt.Sprintf("#%-5d", p.ID)) + " " + p.Address()
		if p.PropertyType != "" {
			line += " " + s.Muted.Render("("+p.PropertyType+")")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
