package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/inspectr/internal/inspection"
)

func roomTypeNames() []string {
	out := make([]string, len(inspection.RoomTypes))
	for i, rt := range inspection.RoomTypes {
		out[i] = string(rt)
	}
	return out
}

func inspectionTypeNames() []string {
	out := make([]string, len(inspection.Types))
	for i, t := range inspection.Types {
		out[i] = string(t)
	}
	return out
}

// registerTools adds the property and inspection tools to the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list-properties",
			mcp.WithDescription("List the properties available for a new inspection"),
		),
		s.handleListProperties,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("address-lookup",
			mcp.WithDescription("Look up public attributes of an address and suggest a room layout. Creates nothing."),
			mcp.WithString("address", mcp.Required(),
				mcp.Description("Free-text street address"),
			),
		),
		s.handleAddressLookup,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("quick-create",
			mcp.WithDescription("Create a property and a move-in inspection for it from an address in one step"),
			mcp.WithString("address", mcp.Required(),
				mcp.Description("Free-text street address"),
			),
		),
		s.handleQuickCreate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create-inspection",
			mcp.WithDescription("Upload photos, then create an inspection with its rooms and photos and trigger analysis when any photo is attached"),
			mcp.WithNumber("property_id", mcp.Required(),
				mcp.Description("ID of an existing property"),
			),
			mcp.WithString("inspection_type",
				mcp.Description("Inspection type (default move_in)"),
				mcp.Enum(inspectionTypeNames()...),
			),
			mcp.WithArray("rooms", mcp.Required(),
				mcp.Description("Rooms in the order they should be created"),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"room_type": map[string]any{
							"type":        "string",
							"enum":        roomTypeNames(),
							"description": "Room category (default living_room)",
						},
						"room_name": map[string]any{
							"type":        "string",
							"description": "Display name; a name is suggested when empty",
						},
						"photo_paths": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Local image files to upload for the room, in order",
						},
					},
				}),
			),
		),
		s.handleCreateInspection,
	)
}
