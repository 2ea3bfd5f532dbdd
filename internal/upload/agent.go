// Package upload turns local image files into server-confirmed photo URLs
// for one room at a time.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/logger"
)

// FailureMessage is shown when the server gives no detail.
const FailureMessage = "Failed to upload files"

var (
	// ErrBusy is returned when a batch for the room is still in flight.
	ErrBusy = errors.New("upload already in progress for this room")
	// ErrTooManyPhotos is returned when the batch would exceed the room's limit.
	ErrTooManyPhotos = errors.New("too many photos for this room")
	// ErrNoImages is returned when filtering left nothing to upload.
	ErrNoImages = errors.New("no image files to upload")
)

// Uploader is the part of the API client the agent needs.
type Uploader interface {
	UploadMultiple(ctx context.Context, files []api.FileUpload) (*api.UploadResponse, error)
	ResolveURL(raw string) string
}

// Error wraps an upload failure with the text to show the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Result is the outcome of one batch.
type Result struct {
	// Photos are the confirmed uploads in request order.
	Photos []inspection.UploadedPhoto
	// Rejected lists files dropped before the request.
	Rejected []Rejection
}

// Agent uploads batches of images. At most one batch per room is in flight.
type Agent struct {
	client    Uploader
	maxPhotos int
	log       *logger.Scoped

	mu   sync.Mutex
	busy map[string]bool
}

// NewAgent creates an agent. maxPhotos <= 0 uses the default of 10.
func NewAgent(client Uploader, maxPhotos int) *Agent {
	if maxPhotos <= 0 {
		maxPhotos = DefaultMaxPhotos
	}
	return &Agent{
		client:    client,
		maxPhotos: maxPhotos,
		log:       logger.With("upload"),
		busy:      map[string]bool{},
	}
}

// DefaultMaxPhotos is the per-room limit when none is configured.
const DefaultMaxPhotos = 10

// MaxPhotos returns the per-room limit.
func (a *Agent) MaxPhotos() int {
	return a.maxPhotos
}

// Busy reports whether a batch for roomID is in flight.
func (a *Agent) Busy(roomID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy[roomID]
}

// Remaining returns how many more photos a room holding existing may take.
func (a *Agent) Remaining(existing int) int {
	if n := a.maxPhotos - existing; n > 0 {
		return n
	}
	return 0
}

// Upload filters files to images and sends them as one request. existing is
// the room's current photo count. The room itself is never touched here: the
// caller appends Result.Photos on success.
func (a *Agent) Upload(ctx context.Context, roomID string, existing int, files []File) (*Result, error) {
	accepted, rejected := Filter(files)
	for _, r := range rejected {
		a.log.Info("room %s: skipping %s: %s", roomID, r.Name, r.Reason)
	}
	if len(accepted) == 0 {
		return &Result{Rejected: rejected}, ErrNoImages
	}
	if existing+len(accepted) > a.maxPhotos {
		return &Result{Rejected: rejected}, fmt.Errorf("%w: %d selected, %d remaining", ErrTooManyPhotos, len(accepted), a.Remaining(existing))
	}

	if !a.acquire(roomID) {
		return nil, ErrBusy
	}
	defer a.release(roomID)

	batch := make([]api.FileUpload, len(accepted))
	for i, f := range accepted {
		batch[i] = api.FileUpload{Name: f.Name, ContentType: f.ContentType, Data: f.Data}
	}

	a.log.Debug("room %s: uploading %d file(s)", roomID, len(batch))
	resp, err := a.client.UploadMultiple(ctx, batch)
	if err != nil {
		a.log.Error("room %s: upload failed: %v", roomID, err)
		return nil, &Error{Message: api.Message(err, FailureMessage), Err: err}
	}

	photos := make([]inspection.UploadedPhoto, 0, len(resp.Files))
	for _, f := range resp.Files {
		if f.URL == "" {
			continue
		}
		name := f.OriginalFilename
		if name == "" {
			name = f.Filename
		}
		photos = append(photos, inspection.UploadedPhoto{URL: a.client.ResolveURL(f.URL), OriginalName: name})
	}
	a.log.Info("room %s: %d photo(s) confirmed", roomID, len(photos))
	return &Result{Photos: photos, Rejected: rejected}, nil
}

func (a *Agent) acquire(roomID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy[roomID] {
		return false
	}
	a.busy[roomID] = true
	return true
}

func (a *Agent) release(roomID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.busy, roomID)
}
