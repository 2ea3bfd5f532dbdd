package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/inspectr/internal/capture"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/navigator"
	"github.com/mark3labs/inspectr/internal/prefs"
	"github.com/mark3labs/inspectr/internal/session"
	tuiwizard "github.com/mark3labs/inspectr/internal/tui/wizard"
	"github.com/mark3labs/inspectr/internal/upload"
	"github.com/mark3labs/inspectr/internal/wizard"
)

var newFlags struct {
	property       int64
	inspectionType string
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an inspection with the step-by-step wizard",
	Long: `Create an inspection with the step-by-step wizard.

The wizard has three steps: pick a property and inspection type, add rooms
and their photos, then review. Confirming the review creates the inspection,
each room in order and each photo, then starts the AI analysis when any
photo was attached. If a call fails the remaining calls are skipped and the
whole sequence can be retried.`,
	RunE: runNew,
}

func init() {
	newCmd.Flags().Int64VarP(&newFlags.property, "property", "p", 0, "Property id to highlight (default: the last one used)")
	newCmd.Flags().StringVarP(&newFlags.inspectionType, "type", "t", "", "Inspection type: move_in, move_out, routine (default: the last one used)")
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cmd, true, false)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	label := ""
	if newFlags.property > 0 {
		label = fmt.Sprintf("property-%d", newFlags.property)
	}
	sess := session.New(label)

	feed := tuiwizard.NewFeed()
	nav := navigator.New(cfg.WebURL, nil)
	opts := wizard.Options{
		Client:     a.client,
		Prefs:      prefs.NewStore(cfg.DataDir),
		Guard:      sess.Guard,
		Results:    nav,
		OnProgress: feed.Push,
		MaxPhotos:  cfg.MaxPhotos,
	}
	if j := a.journalFor(sess, session.KindCommit); j != nil {
		opts.Journal = j
	}
	ctrl := wizard.New(opts)

	if newFlags.inspectionType != "" {
		t, err := inspection.ParseType(newFlags.inspectionType)
		if err != nil {
			return err
		}
		if err := ctrl.SetInspectionType(t); err != nil {
			return err
		}
	}

	camera := capture.New(cfg.CaptureCommand, cfg.CaptureTimeout)
	device := upload.CurrentDevice(cfg.UserAgent, 0)

	res, err := tuiwizard.Run(ctx, tuiwizard.Deps{
		Controller:  ctrl,
		Properties:  a.client,
		Agent:       upload.NewAgent(a.client, cfg.MaxPhotos),
		Camera:      camera,
		Affordances: upload.AffordancesFor(device, camera.Available()),
		Feed:        feed,
		Navigator:   nav,
		Preselect:   newFlags.property,
	})
	if errors.Is(err, tuiwizard.ErrCancelled) {
		fmt.Println("Cancelled, nothing was created.")
		return nil
	}
	if err != nil {
		return err
	}

	commit := res.Commit
	if commit == nil {
		return nil
	}
	if !commit.Done {
		return commitError(commit)
	}

	fmt.Printf("Inspection #%d created with %d room(s) and %d photo(s)\n",
		commit.InspectionID, commit.Progress.RoomsCreated, commit.Progress.PhotosAttached)
	if last := nav.Last(); last != nil && last.Navigated {
		fmt.Println(last.Destination.URL)
	}
	return nil
}

// commitError describes a failed commit. An inspection is only named when the
// attempt got far enough to create one.
func commitError(commit *wizard.CommitResult) error {
	if commit.Progress.InspectionCreated {
		return fmt.Errorf("%s (inspection #%d is incomplete)", commit.Message, commit.Progress.InspectionID)
	}
	return errors.New(commit.Message)
}
