package wizard

import (
	"context"

	"github.com/mark3labs/inspectr/internal/upload"
)

// UploadPhotos sends files for one room through agent and appends the
// confirmed photos. On failure the room is left as it was. Picker, dropped
// paths and camera captures all come through here.
func (c *Controller) UploadPhotos(ctx context.Context, agent *upload.Agent, roomID string, files []upload.File) (*upload.Result, error) {
	existing, err := c.PhotoCount(roomID)
	if err != nil {
		return nil, err
	}
	if c.Step().Locked() {
		return nil, ErrLocked
	}

	res, err := agent.Upload(ctx, roomID, existing, files)
	if err != nil {
		return res, err
	}
	if err := c.AddPhotos(roomID, res.Photos); err != nil {
		// The room was removed, or commit began, while the batch was in flight.
		return res, err
	}
	return res, nil
}
