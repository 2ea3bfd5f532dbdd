package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	lipglossv2 "charm.land/lipgloss/v2"

	"github.com/mark3labs/inspectr/internal/inspection"
	core "github.com/mark3labs/inspectr/internal/wizard"
)

// Feed forwards commit progress from the controller to the program.
type Feed chan core.Progress

// NewFeed creates a buffered feed.
func NewFeed() Feed {
	return make(Feed, 64)
}

// Push is used as the controller's OnProgress. It never blocks; the view
// only needs the latest value.
func (f Feed) Push(p core.Progress) {
	select {
	case f <- p:
	default:
	}
}

// Drain discards updates left over from an earlier attempt.
func (f Feed) Drain() {
	for {
		select {
		case <-f:
		default:
			return
		}
	}
}

// progressMsg is one progress update read from the feed.
type progressMsg struct {
	progress core.Progress
}

// commitDoneMsg carries the outcome of a commit attempt.
type commitDoneMsg struct {
	result *core.CommitResult
	err    error
}

// CommitView renders the commit in flight and its outcome.
type CommitView struct {
	spinner  spinner.Model
	progress core.Progress
	rooms    int
	photos   int
	width    int
}

// NewCommitView creates the view.
func NewCommitView() *CommitView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipglossv2.NewStyle().Foreground(lipglossv2.Color(palette.Primary))
	return &CommitView{spinner: s, width: 60}
}

// Reset starts tracking a new attempt over rooms and photos.
func (v *CommitView) Reset(rooms, photos int) {
	v.progress = core.Progress{}
	v.rooms = rooms
	v.photos = photos
}

// SetWidth updates the width.
func (v *CommitView) SetWidth(width int) {
	v.width = width
}

// Running renders the in-flight state.
func (v *CommitView) Running() string {
	var b strings.Builder
	b.WriteString(v.spinner.View())
	b.WriteString(" ")
	switch {
	case !v.progress.InspectionCreated:
		b.WriteString("Creating inspection...")
	case v.progress.RoomsCreated < v.rooms || v.progress.PhotosAttached < v.photos:
		fmt.Fprintf(&b, "Adding rooms %d/%d · photos %d/%d...",
			v.progress.RoomsCreated, v.rooms, v.progress.PhotosAttached, v.photos)
	default:
		b.WriteString("Starting analysis...")
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted.Render("Please wait. The inspection cannot be edited while it is being created."))
	return b.String()
}

// Done renders the success screen.
func (v *CommitView) Done(res *core.CommitResult, url string) string {
	var b strings.Builder
	b.WriteString(styleSuccess.Render(fmt.Sprintf("✓ Inspection #%d created", res.InspectionID)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%d room(s), %d photo(s)", res.Progress.RoomsCreated, res.Progress.PhotosAttached)
	if res.Progress.AnalysisTriggered {
		b.WriteString(", analysis started")
	}
	b.WriteString("\n")
	if url != "" {
		b.WriteString(styleMuted.Render(url))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHintBar("enter/esc", "exit"))
	return b.String()
}

// Failed renders the partial failure screen with the retry offer. The rooms
// stay listed so the user can see what a retry will send.
func (v *CommitView) Failed(res *core.CommitResult, rooms []inspection.RoomDraft) string {
	var b strings.Builder
	b.WriteString(styleError.Render("✗ " + res.Message))
	b.WriteString("\n\n")

	p := res.Progress
	if p.InspectionCreated {
		fmt.Fprintf(&b, "Inspection #%d was created with %d of %d room(s) and %d of %d photo(s) before the error.\n",
			p.InspectionID, p.RoomsCreated, v.rooms, p.PhotosAttached, v.photos)
		b.WriteString(styleMuted.Render("Retrying starts over and creates a new inspection."))
	} else {
		b.WriteString("Nothing was created.")
	}
	b.WriteString("\n\n")

	if len(rooms) > 0 {
		b.WriteString(styleMuted.Render("Entered rooms:"))
		b.WriteString("\n")
		for i, r := range rooms {
			fmt.Fprintf(&b, "  %d. %s", i+1, r.CommitName())
			if len(r.Photos) > 0 {
				names := make([]string, len(r.Photos))
				for j, p := range r.Photos {
					names[j] = p.OriginalName
				}
				fmt.Fprintf(&b, " · %d photo(s): %s", len(r.Photos), strings.Join(names, ", "))
			} else {
				b.WriteString(" · no photos")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	bar := NewButtonBar(CreateRetryButtons())
	bar.SetWidth(v.width)
	b.WriteString(bar.Render())
	b.WriteString("\n")
	b.WriteString(renderHintBar("r/enter", "retry", "esc", "exit"))
	return b.String()
}
