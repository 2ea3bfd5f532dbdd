// Package inspection holds the client-side model of an inspection being
// composed: inspection and room type enums, room drafts and their photos.
package inspection

import (
	"fmt"
	"strings"
)

// Type is the kind of inspection requested from the API.
type Type string

const (
	TypeMoveIn         Type = "move_in"
	TypeMoveOut        Type = "move_out"
	TypeRoutine        Type = "routine"
	TypePreSale        Type = "pre_sale"
	TypePostRenovation Type = "post_renovation"
)

// DefaultType is selected when a wizard session starts without a remembered preference.
const DefaultType = TypeMoveIn

// QuickCreateType is the inspection type label the quick-create endpoint expects.
const QuickCreateType = "Move-in Inspection"

// Types lists the inspection types in display order.
var Types = []Type{TypeMoveIn, TypeMoveOut, TypeRoutine, TypePreSale, TypePostRenovation}

var typeLabels = map[Type]string{
	TypeMoveIn:         "Move In",
	TypeMoveOut:        "Move Out",
	TypeRoutine:        "Routine",
	TypePreSale:        "Pre-Sale",
	TypePostRenovation: "Post-Renovation",
}

// ParseType validates s against the fixed set of inspection types.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := typeLabels[t]; !ok {
		return "", fmt.Errorf("invalid inspection type: %q (must be one of %s)", s, joinTypes(Types))
	}
	return t, nil
}

// Valid reports whether t is one of the known inspection types.
func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the human readable name, e.g. "Pre-Sale".
func (t Type) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// RoomType is the category of a room.
type RoomType string

const (
	RoomLivingRoom RoomType = "living_room"
	RoomBedroom    RoomType = "bedroom"
	RoomKitchen    RoomType = "kitchen"
	RoomBathroom   RoomType = "bathroom"
	RoomDiningRoom RoomType = "dining_room"
	RoomHallway    RoomType = "hallway"
	RoomOther      RoomType = "other"
)

// DefaultRoomType is used for rooms added without an explicit type.
const DefaultRoomType = RoomLivingRoom

// RoomTypes lists room types in display order.
var RoomTypes = []RoomType{
	RoomLivingRoom,
	RoomBedroom,
	RoomKitchen,
	RoomBathroom,
	RoomDiningRoom,
	RoomHallway,
	RoomOther,
}

// ParseRoomType validates s against the known room types.
func ParseRoomType(s string) (RoomType, error) {
	rt := RoomType(strings.ToLower(strings.TrimSpace(s)))
	if !rt.Valid() {
		return "", fmt.Errorf("invalid room type: %q", s)
	}
	return rt, nil
}

// Valid reports whether rt is a known room type.
func (rt RoomType) Valid() bool {
	for _, known := range RoomTypes {
		if rt == known {
			return true
		}
	}
	return false
}

// Label title-cases each underscore separated word: "dining_room" -> "Dining Room".
func (rt RoomType) Label() string {
	words := strings.Split(string(rt), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FallbackName is the name sent for a room whose name was left empty.
// Only the first underscore is replaced, matching the web client.
func (rt RoomType) FallbackName() string {
	return strings.Replace(string(rt), "_", " ", 1)
}

// UploadedPhoto is a photo the upload endpoint has confirmed.
type UploadedPhoto struct {
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
}
