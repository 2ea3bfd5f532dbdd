package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/quickaction"
	"github.com/mark3labs/inspectr/internal/tui/theme"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <address>",
	Short: "Look up property data for an address without creating anything",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cmd, false, false)
	if err != nil {
		return err
	}
	defer a.Close()

	address := strings.Join(args, " ")
	p, err := quickaction.New(quickaction.Options{Client: a.client}).Preview(ctx, address)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := theme.NewCatppuccinMocha().S()
	if !p.Found {
		fmt.Fprintln(out, s.Warning.Render("No property data found for "+p.Address))
		return nil
	}

	d := p.Data
	title := p.Address
	if d.FormattedAddress != "" {
		title = d.FormattedAddress
	}
	fmt.Fprintln(out, s.HeaderTitle.Render(title))

	row := func(label, value string) {
		fmt.Fprintf(out, "%s %s\n", s.Label.Render(fmt.Sprintf("%-15s", label+":")), value)
	}
	if d.PropertyType != "" {
		row("Type", d.PropertyType)
	}
	if d.Bedrooms > 0 {
		row("Bedrooms", fmt.Sprintf("%d", d.Bedrooms))
	}
	if d.Bathrooms > 0 {
		row("Bathrooms", fmt.Sprintf("%g", d.Bathrooms))
	}
	if d.SquareFeet > 0 {
		row("Square feet", fmt.Sprintf("%.0f", d.SquareFeet))
	}
	if d.YearBuilt > 0 {
		row("Year built", fmt.Sprintf("%d", d.YearBuilt))
	}
	if d.LotSize > 0 {
		row("Lot size", fmt.Sprintf("%g", d.LotSize))
	}
	if d.EstimatedValue > 0 {
		row("Estimated value", fmt.Sprintf("$%.0f", d.EstimatedValue))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, s.Label.Render("Suggested rooms:"))
	for _, r := range p.Layout {
		fmt.Fprintf(out, "  %s %s\n", r.Name, s.Muted.Render("("+r.Type.Label()+")"))
	}
	return nil
}
