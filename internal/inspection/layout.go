package inspection

import (
	"fmt"
	"strings"
)

// SuggestedRoom is one entry of a default room layout.
type SuggestedRoom struct {
	Type RoomType `json:"room_type"`
	Name string   `json:"room_name"`
}

// SuggestLayout derives a starting room list from property attributes.
// Counts below one are treated as one.
func SuggestLayout(propertyType string, bedrooms, bathrooms int) []SuggestedRoom {
	rooms := []SuggestedRoom{
		{Type: RoomLivingRoom, Name: "Living Room"},
		{Type: RoomKitchen, Name: "Kitchen"},
	}
	rooms = append(rooms, numbered(RoomBedroom, "Bedroom", bedrooms)...)
	rooms = append(rooms, numbered(RoomBathroom, "Bathroom", bathrooms)...)

	if isHouse(propertyType) {
		rooms = append(rooms,
			SuggestedRoom{Type: RoomOther, Name: "Garage"},
			SuggestedRoom{Type: RoomOther, Name: "Laundry Room"},
			SuggestedRoom{Type: RoomDiningRoom, Name: "Dining Room"},
		)
	}
	return rooms
}

func numbered(rt RoomType, base string, count int) []SuggestedRoom {
	if count <= 1 {
		return []SuggestedRoom{{Type: rt, Name: base}}
	}
	out := []SuggestedRoom{{Type: rt, Name: "Master " + base}}
	for i := 2; i <= count; i++ {
		out = append(out, SuggestedRoom{Type: rt, Name: fmt.Sprintf("%s %d", base, i)})
	}
	return out
}

func isHouse(propertyType string) bool {
	switch strings.ToLower(strings.TrimSpace(propertyType)) {
	case "single_family", "single family", "single-family", "single family home", "house":
		return true
	}
	return false
}
