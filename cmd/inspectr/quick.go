package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/navigator"
	"github.com/mark3labs/inspectr/internal/quickaction"
	"github.com/mark3labs/inspectr/internal/session"
	"github.com/mark3labs/inspectr/internal/tui/theme"
)

var quickCmd = &cobra.Command{
	Use:   "quick <address>",
	Short: "Create a property and start an inspection from an address",
	Long: `Create a property and a move-in inspection for an address in one call,
then print the link to the new inspection.

Use lookup first to see what the service knows about the address.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuick,
}

func runQuick(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cmd, true, false)
	if err != nil {
		return err
	}
	defer a.Close()

	address := strings.Join(args, " ")
	sess := session.NewQuick(address)
	opts := quickaction.Options{
		Client:    a.client,
		Navigator: navigator.New(a.cfg.WebURL, navigator.WriterOpener{W: cmd.OutOrStdout()}),
		Guard:     sess.Guard,
	}
	if j := a.journalFor(sess, session.KindQuick); j != nil {
		opts.Journal = j
	}

	s := theme.NewCatppuccinMocha().S()
	fmt.Fprintln(cmd.OutOrStdout(), s.Muted.Render("Creating property for "+address+"..."))

	started, err := quickaction.New(opts).CreateAndStart(ctx, address)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, s.Success.Render(fmt.Sprintf("✓ Property #%d with inspection #%d", started.Property.ID, started.InspectionID)))
	if len(started.SuggestedRooms) > 0 {
		fmt.Fprintln(out, s.Label.Render("Suggested rooms:"))
		for _, r := range started.SuggestedRooms {
			fmt.Fprintf(out, "  %s %s\n", r.Name, s.Muted.Render("("+r.Type+")"))
		}
	}
	return nil
}
