package api

import (
	"strings"
)

// Property is a property as returned by GET /properties.
type Property struct {
	ID           int64   `json:"id"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country,omitempty"`
	UnitNumber   string  `json:"unit_number,omitempty"`
	PropertyType string  `json:"property_type,omitempty"`
	NumRooms     int     `json:"num_rooms,omitempty"`
	SquareFeet   float64 `json:"square_feet,omitempty"`
	YearBuilt    int     `json:"year_built,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	IsActive     bool    `json:"is_active"`
}

// Address formats the property address on one line.
func (p Property) Address() string {
	line := p.AddressLine1
	if p.UnitNumber != "" {
		line += " #" + p.UnitNumber
	}
	parts := []string{line}
	if p.City != "" {
		parts = append(parts, p.City)
	}
	if tail := strings.TrimSpace(p.State + " " + p.PostalCode); tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

// Inspection is the subset of the inspection resource the client reads.
type Inspection struct {
	ID             int64  `json:"id"`
	PropertyID     int64  `json:"property_id"`
	InspectionType string `json:"inspection_type"`
	Status         string `json:"status,omitempty"`
}

// Room is a created room.
type Room struct {
	ID         int64  `json:"id"`
	RoomType   string `json:"room_type"`
	RoomName   string `json:"room_name"`
	OrderIndex int    `json:"order_index"`
}

// CreateInspectionRequest is the body of POST /inspections.
type CreateInspectionRequest struct {
	PropertyID     int64  `json:"property_id"`
	InspectionType string `json:"inspection_type"`
}

// CreateRoomRequest is the body of POST /inspections/{id}/rooms.
type CreateRoomRequest struct {
	RoomType   string `json:"room_type"`
	RoomName   string `json:"room_name"`
	OrderIndex int    `json:"order_index"`
}

// UploadedFile is one entry of the upload-multiple response.
type UploadedFile struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
	Size             int64  `json:"size"`
}

// UploadResponse is the body returned by POST /files/upload-multiple.
type UploadResponse struct {
	Files []UploadedFile `json:"files"`
}

// QuickCreateRequest is the body of POST /properties/quick-create.
type QuickCreateRequest struct {
	Address          string `json:"address"`
	CreateInspection bool   `json:"create_inspection"`
	InspectionType   string `json:"inspection_type"`
}

// SuggestedRoom is a room the server proposes for a quick-created property.
type SuggestedRoom struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QuickCreateResponse is the result of the combined property and inspection call.
type QuickCreateResponse struct {
	Property       Property        `json:"property"`
	InspectionID   int64           `json:"inspection_id"`
	SuggestedRooms []SuggestedRoom `json:"suggested_rooms,omitempty"`
}

// PropertyData is the best-effort attribute set from the address lookup.
// Every field may be absent.
type PropertyData struct {
	Bedrooms         int     `json:"bedrooms,omitempty"`
	Bathrooms        float64 `json:"bathrooms,omitempty"`
	SquareFeet       float64 `json:"square_feet,omitempty"`
	PropertyType     string  `json:"property_type,omitempty"`
	YearBuilt        int     `json:"year_built,omitempty"`
	LotSize          float64 `json:"lot_size,omitempty"`
	EstimatedValue   float64 `json:"estimated_value,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
}

// LookupResponse is returned by GET /properties/lookup.
type LookupResponse struct {
	Success      bool          `json:"success"`
	PropertyData *PropertyData `json:"property_data"`
}
