package navigator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/wizard"
)

// Destination is a place to show the user.
type Destination struct {
	Path string
	// URL is absolute when a web base URL is configured, else equal to Path.
	URL          string
	InspectionID int64
}

// Opener shows a destination, e.g. by printing it or switching screens.
type Opener interface {
	Open(ctx context.Context, dest Destination) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, dest Destination) error

func (f OpenerFunc) Open(ctx context.Context, dest Destination) error { return f(ctx, dest) }

// WriterOpener prints the destination URL on its own line.
type WriterOpener struct {
	W io.Writer
}

func (o WriterOpener) Open(_ context.Context, dest Destination) error {
	_, err := fmt.Fprintln(o.W, dest.URL)
	return err
}

// Outcome is what the navigator did with the last commit result.
type Outcome struct {
	// Navigated is set on success; Destination is where it went.
	Navigated   bool
	Destination Destination
	// On partial failure the user stays on the wizard with Message shown.
	Message  string
	CanRetry bool
}

// Navigator routes commit results. It implements wizard.ResultHandler.
type Navigator struct {
	webURL string
	opener Opener
	log    *logger.Scoped

	mu   sync.Mutex
	last *Outcome
}

// New creates a navigator. webURL may be empty; opener may be nil.
func New(webURL string, opener Opener) *Navigator {
	return &Navigator{
		webURL: strings.TrimRight(webURL, "/"),
		opener: opener,
		log:    logger.With("navigator"),
	}
}

// Resolve turns an app route into a destination.
func (n *Navigator) Resolve(path string) Destination {
	url := path
	if n.webURL != "" {
		url = n.webURL + path
	}
	return Destination{Path: path, URL: url}
}

// OpenInspection shows the detail view of an inspection.
func (n *Navigator) OpenInspection(ctx context.Context, id int64) (Destination, error) {
	dest := n.Resolve(InspectionDetail(id))
	dest.InspectionID = id
	n.log.Info("opening inspection %d at %s", id, dest.URL)
	if n.opener != nil {
		if err := n.opener.Open(ctx, dest); err != nil {
			return dest, fmt.Errorf("opening %s: %w", dest.URL, err)
		}
	}
	return dest, nil
}

// Handle navigates to the inspection on Done. On partial failure it stays,
// recording the message so the wizard can offer a retry.
func (n *Navigator) Handle(ctx context.Context, res wizard.CommitResult) error {
	if !res.Done {
		n.setLast(&Outcome{Message: res.Message, CanRetry: true})
		n.log.Warn("commit %s stopped at %s: %s", res.Attempt, res.Stage, res.Message)
		return nil
	}

	dest, err := n.OpenInspection(ctx, res.InspectionID)
	n.setLast(&Outcome{Navigated: err == nil, Destination: dest})
	return err
}

// Last returns the outcome of the most recent Handle call, nil before any.
func (n *Navigator) Last() *Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		return nil
	}
	out := *n.last
	return &out
}

func (n *Navigator) setLast(o *Outcome) {
	n.mu.Lock()
	n.last = o
	n.mu.Unlock()
}
