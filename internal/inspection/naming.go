package inspection

import (
	"fmt"
	"strings"
)

var suggestedNames = map[RoomType][]string{
	RoomLivingRoom: {"Living Room", "Family Room", "Great Room"},
	RoomBedroom:    {"Master Bedroom", "Bedroom 1", "Bedroom 2", "Guest Bedroom"},
	RoomKitchen:    {"Kitchen", "Main Kitchen", "Kitchenette"},
	RoomBathroom:   {"Master Bathroom", "Bathroom 1", "Bathroom 2", "Guest Bathroom", "Half Bath"},
	RoomDiningRoom: {"Dining Room", "Formal Dining", "Breakfast Nook"},
	RoomHallway:    {"Main Hallway", "Upstairs Hallway", "Entry Hall"},
	RoomOther:      {"Laundry Room", "Garage", "Basement", "Attic", "Office"},
}

// SuggestName picks the first canned name for rt that no existing room uses
// (case-insensitive). Once the list is exhausted it falls back to
// "<Label> <N>" where N is the count of rooms already of type rt plus one.
func SuggestName(rt RoomType, existing []RoomDraft) string {
	used := make(map[string]bool, len(existing))
	sameType := 0
	for _, r := range existing {
		used[strings.ToLower(strings.TrimSpace(r.Name))] = true
		if r.Type == rt {
			sameType++
		}
	}
	for _, name := range suggestedNames[rt] {
		if !used[strings.ToLower(name)] {
			return name
		}
	}
	return fmt.Sprintf("%s %d", rt.Label(), sameType+1)
}
