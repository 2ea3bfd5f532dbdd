package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/session"
	"github.com/mark3labs/inspectr/internal/tui/theme"
)

var historyFlags struct {
	json bool
}

var historyCmd = &cobra.Command{
	Use:   "history [session]",
	Short: "Show journaled commit attempts",
	Long: `Show the commit attempts recorded in the journal.

Without arguments every session is listed with its latest attempt. With a
session name every attempt of that session is shown, including how far a
failed attempt got before it stopped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "Print the history as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cmd, true, true)
	if err != nil {
		return err
	}
	defer a.Close()

	names := args
	if len(names) == 0 {
		names, err = a.events.Sessions(ctx)
		if err != nil {
			return err
		}
	}

	histories := make([]*session.History, 0, len(names))
	for _, name := range names {
		h, err := a.events.LoadHistory(ctx, name)
		if err != nil {
			return fmt.Errorf("loading history for %s: %w", name, err)
		}
		histories = append(histories, h)
	}

	out := cmd.OutOrStdout()
	if historyFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(histories)
	}

	s := theme.NewCatppuccinMocha().S()
	if len(histories) == 0 {
		fmt.Fprintln(out, s.Muted.Render("No commit attempts recorded yet."))
		return nil
	}

	// One session named: every attempt. Otherwise the latest per session.
	all := len(args) == 1
	for _, h := range histories {
		fmt.Fprintln(out, s.HeaderTitle.Render(h.Session))
		if len(h.Attempts) == 0 {
			fmt.Fprintln(out, s.Muted.Render("  no attempts"))
			continue
		}
		attempts := h.Attempts
		if !all {
			attempts = []*session.Attempt{h.Last()}
		}
		for _, at := range attempts {
			printAttempt(out, s, at)
		}
	}
	return nil
}

func printAttempt(out io.Writer, s *theme.Styles, a *session.Attempt) {
	status := s.Warning.Render(a.Outcome)
	switch a.Outcome {
	case session.OutcomeDone:
		status = s.Success.Render(a.Outcome)
	case session.OutcomeFailed:
		status = s.Error.Render(a.Outcome)
	}

	fmt.Fprintf(out, "  %s %s %s %s\n",
		s.Muted.Render(a.StartedAt.Local().Format(time.DateTime)), a.Kind, status, s.Muted.Render(a.ID))

	target := a.Address
	if a.PropertyID != 0 {
		target = fmt.Sprintf("property #%d", a.PropertyID)
	}
	if a.InspectionType != "" {
		target += ", " + a.InspectionType
	}
	if target != "" {
		fmt.Fprintf(out, "    %s\n", target)
	}

	if a.InspectionID != 0 {
		line := fmt.Sprintf("    inspection #%d", a.InspectionID)
		if a.Kind == session.KindCommit {
			line += fmt.Sprintf(": %d/%d room(s), %d photo(s)", a.RoomsCreated, a.Rooms, a.PhotosAttached)
			if a.AnalysisTriggered {
				line += ", analysis started"
			}
		}
		fmt.Fprintln(out, line)
	}
	if a.Outcome == session.OutcomeFailed {
		fmt.Fprintf(out, "    %s\n", s.Error.Render(fmt.Sprintf("stopped at %s: %s", a.Stage, a.Error)))
	}
}
