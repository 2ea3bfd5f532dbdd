package inspection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"
)

// ErrRoomNotFound is returned when a room id is not in the collection.
var ErrRoomNotFound = errors.New("room not found")

// ErrPhotoIndex is returned when a photo index is out of range.
var ErrPhotoIndex = errors.New("photo index out of range")

// RoomDraft is a room that has not been created server-side yet.
// ID is client-local and only keys per-room upload state.
type RoomDraft struct {
	ID     string          `json:"id"`
	Type   RoomType        `json:"room_type"`
	Name   string          `json:"room_name"`
	Photos []UploadedPhoto `json:"photos"`
}

// PhotoURLs returns the confirmed photo URLs in attach order.
func (r RoomDraft) PhotoURLs() []string {
	urls := make([]string, len(r.Photos))
	for i, p := range r.Photos {
		urls[i] = p.URL
	}
	return urls
}

// CommitName is the room_name sent to the API.
func (r RoomDraft) CommitName() string {
	if strings.TrimSpace(r.Name) == "" {
		return r.Type.FallbackName()
	}
	return r.Name
}

// Rooms is the ordered room list of one wizard session. Order is the
// order_index sent at commit. Methods copy on read so callers never share
// backing arrays with the collection.
type Rooms struct {
	items []RoomDraft
}

// Len returns the number of rooms.
func (c *Rooms) Len() int {
	return len(c.items)
}

// List returns a deep copy of the rooms in order.
func (c *Rooms) List() []RoomDraft {
	out := make([]RoomDraft, len(c.items))
	for i, r := range c.items {
		out[i] = cloneRoom(r)
	}
	return out
}

// Get returns a copy of the room with id.
func (c *Rooms) Get(id string) (RoomDraft, error) {
	i, err := c.index(id)
	if err != nil {
		return RoomDraft{}, err
	}
	return cloneRoom(c.items[i]), nil
}

// HasPhotos reports whether any room holds at least one photo.
func (c *Rooms) HasPhotos() bool {
	for _, r := range c.items {
		if len(r.Photos) > 0 {
			return true
		}
	}
	return false
}

// Add appends a room. An empty type becomes living_room and an empty name is
// filled with a suggestion.
func (c *Rooms) Add(rt RoomType, name string) (RoomDraft, error) {
	if rt == "" {
		rt = DefaultRoomType
	}
	if !rt.Valid() {
		return RoomDraft{}, fmt.Errorf("invalid room type: %q", rt)
	}
	if strings.TrimSpace(name) == "" {
		name = SuggestName(rt, c.items)
	}
	room := RoomDraft{ID: xid.New().String(), Type: rt, Name: name}
	c.items = append(c.items, room)
	return cloneRoom(room), nil
}

// Remove deletes the room with id.
func (c *Rooms) Remove(id string) error {
	i, err := c.index(id)
	if err != nil {
		return err
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// SetType changes a room's type. The name is re-suggested only when empty.
func (c *Rooms) SetType(id string, rt RoomType) error {
	if !rt.Valid() {
		return fmt.Errorf("invalid room type: %q", rt)
	}
	i, err := c.index(id)
	if err != nil {
		return err
	}
	c.items[i].Type = rt
	if strings.TrimSpace(c.items[i].Name) == "" {
		others := append(append([]RoomDraft{}, c.items[:i]...), c.items[i+1:]...)
		c.items[i].Name = SuggestName(rt, others)
	}
	return nil
}

// Rename sets a room's name verbatim. Empty is allowed and falls back at commit.
func (c *Rooms) Rename(id, name string) error {
	i, err := c.index(id)
	if err != nil {
		return err
	}
	c.items[i].Name = name
	return nil
}

// AddPhotos appends confirmed uploads to a room.
func (c *Rooms) AddPhotos(id string, photos []UploadedPhoto) error {
	i, err := c.index(id)
	if err != nil {
		return err
	}
	c.items[i].Photos = append(c.items[i].Photos, photos...)
	return nil
}

// RemovePhoto drops the photo at index from a room. Nothing is deleted remotely.
func (c *Rooms) RemovePhoto(id string, index int) error {
	i, err := c.index(id)
	if err != nil {
		return err
	}
	photos := c.items[i].Photos
	if index < 0 || index >= len(photos) {
		return fmt.Errorf("%w: %d", ErrPhotoIndex, index)
	}
	next := make([]UploadedPhoto, 0, len(photos)-1)
	next = append(next, photos[:index]...)
	next = append(next, photos[index+1:]...)
	c.items[i].Photos = next
	return nil
}

// PhotoCount returns how many photos a room holds.
func (c *Rooms) PhotoCount(id string) (int, error) {
	i, err := c.index(id)
	if err != nil {
		return 0, err
	}
	return len(c.items[i].Photos), nil
}

func (c *Rooms) index(id string) (int, error) {
	for i, r := range c.items {
		if r.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
}

func cloneRoom(r RoomDraft) RoomDraft {
	if r.Photos != nil {
		r.Photos = append([]UploadedPhoto(nil), r.Photos...)
	}
	return r
}
