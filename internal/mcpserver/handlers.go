package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/navigator"
	"github.com/mark3labs/inspectr/internal/quickaction"
	"github.com/mark3labs/inspectr/internal/session"
	"github.com/mark3labs/inspectr/internal/upload"
	"github.com/mark3labs/inspectr/internal/wizard"
)

// handleListProperties returns one line per property.
func (s *Server) handleListProperties(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	props, err := s.client.ListProperties(ctx)
	if err != nil {
		return mcp.NewToolResultError(api.Message(err, "Failed to load properties")), nil
	}
	if len(props) == 0 {
		return mcp.NewToolResultText("No properties"), nil
	}

	lines := make([]string, 0, len(props))
	for _, p := range props {
		line := fmt.Sprintf("#%d %s", p.ID, p.Address())
		if p.PropertyType != "" {
			line += fmt.Sprintf(" (%s)", p.PropertyType)
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// handleAddressLookup runs the quick action preview.
func (s *Server) handleAddressLookup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, res := stringArg(request, "address")
	if res != nil {
		return res, nil
	}

	p, err := s.shortcut(address).Preview(ctx, address)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !p.Found {
		return mcp.NewToolResultText(fmt.Sprintf("No property data found for %s", p.Address)), nil
	}

	var b strings.Builder
	d := p.Data
	addr := p.Address
	if d.FormattedAddress != "" {
		addr = d.FormattedAddress
	}
	fmt.Fprintf(&b, "%s\n", addr)
	if d.PropertyType != "" {
		fmt.Fprintf(&b, "Type: %s\n", d.PropertyType)
	}
	if d.Bedrooms > 0 || d.Bathrooms > 0 {
		fmt.Fprintf(&b, "Bedrooms: %d, Bathrooms: %g\n", d.Bedrooms, d.Bathrooms)
	}
	if d.SquareFeet > 0 {
		fmt.Fprintf(&b, "Square feet: %.0f\n", d.SquareFeet)
	}
	if d.YearBuilt > 0 {
		fmt.Fprintf(&b, "Year built: %d\n", d.YearBuilt)
	}
	b.WriteString("Suggested rooms:")
	for _, r := range p.Layout {
		fmt.Fprintf(&b, "\n  %s (%s)", r.Name, r.Type)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleQuickCreate runs Create & Start.
func (s *Server) handleQuickCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, res := stringArg(request, "address")
	if res != nil {
		return res, nil
	}

	started, err := s.shortcut(address).CreateAndStart(ctx, address)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Created property #%d and inspection #%d: %s",
		started.Property.ID, started.InspectionID, started.Destination.URL,
	)), nil
}

// roomArg is one parsed entry of the rooms argument.
type roomArg struct {
	roomType inspection.RoomType
	name     string
	paths    []string
	files    []upload.File
}

// handleCreateInspection drives a fresh wizard through its gates and commit.
func (s *Server) handleCreateInspection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	// JSON numbers arrive as float64
	idRaw, ok := args["property_id"].(float64)
	if !ok || idRaw <= 0 || idRaw != float64(int64(idRaw)) {
		return mcp.NewToolResultError("'property_id' must be a positive integer"), nil
	}
	propertyID := int64(idRaw)

	itype := inspection.DefaultType
	if raw, ok := args["inspection_type"].(string); ok && raw != "" {
		t, err := inspection.ParseType(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		itype = t
	}

	rooms, errRes := parseRooms(args["rooms"])
	if errRes != nil {
		return errRes, nil
	}
	// Read every file before anything is sent.
	for i := range rooms {
		if len(rooms[i].paths) == 0 {
			continue
		}
		files, err := upload.LoadFiles(rooms[i].paths)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("room %d: %v", i, err)), nil
		}
		rooms[i].files = files
	}

	sess := session.New(fmt.Sprintf("property-%d", propertyID))
	nav := navigator.New(s.webURL, nil)
	opts := wizard.Options{Client: s.client, Guard: sess.Guard, Results: nav, MaxPhotos: s.agent.MaxPhotos()}
	if s.events != nil {
		opts.Journal = session.NewJournal(s.events, sess.Name, session.KindCommit)
	}
	c := wizard.New(opts)

	if err := c.SelectProperty(propertyID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := c.SetInspectionType(itype); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := c.Next(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var skipped []string
	for i, r := range rooms {
		draft, err := c.AddRoom(r.roomType, r.name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(r.files) == 0 {
			continue
		}
		// Photos reach the room only as URLs confirmed by the upload endpoint.
		res, err := c.UploadPhotos(ctx, s.agent, draft.ID, r.files)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("room %d: %v", i, err)), nil
		}
		for _, rej := range res.Rejected {
			skipped = append(skipped, rej.Name+": "+rej.Reason)
		}
	}
	if err := c.Next(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := c.Commit(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !res.Done {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s (stopped at %s after %d room(s) and %d photo(s); inspection id %d)",
			res.Message, res.Stage, res.Progress.RoomsCreated, res.Progress.PhotosAttached, res.Progress.InspectionID,
		)), nil
	}

	summary := fmt.Sprintf("Created inspection #%d with %d room(s) and %d photo(s)",
		res.InspectionID, res.Progress.RoomsCreated, res.Progress.PhotosAttached)
	if res.Progress.AnalysisTriggered {
		summary += "; analysis started"
	}
	if last := nav.Last(); last != nil && last.Navigated {
		summary += ": " + last.Destination.URL
	}
	if len(skipped) > 0 {
		summary += "\nSkipped " + strings.Join(skipped, ", ")
	}
	return mcp.NewToolResultText(summary), nil
}

// shortcut builds a quick action bound to its own session.
func (s *Server) shortcut(address string) *quickaction.Shortcut {
	sess := session.NewQuick(address)
	opts := quickaction.Options{
		Client:    s.client,
		Navigator: navigator.New(s.webURL, nil),
		Guard:     sess.Guard,
	}
	if s.events != nil {
		opts.Journal = session.NewJournal(s.events, sess.Name, session.KindQuick)
	}
	return quickaction.New(opts)
}

func stringArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	args := request.GetArguments()
	if args == nil {
		return "", mcp.NewToolResultError("no arguments provided")
	}
	v, ok := args[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("missing or empty '%s' parameter", name))
	}
	return v, nil
}

func parseRooms(raw any) ([]roomArg, *mcp.CallToolResult) {
	if raw == nil {
		return nil, mcp.NewToolResultError("missing 'rooms' parameter")
	}
	// mcp-go returns arrays as []any
	list, ok := raw.([]any)
	if !ok {
		return nil, mcp.NewToolResultError("'rooms' is not an array")
	}
	if len(list) == 0 {
		return nil, mcp.NewToolResultError(wizard.ErrNoRooms.Error())
	}

	rooms := make([]roomArg, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, mcp.NewToolResultError(fmt.Sprintf("room %d is not an object", i))
		}

		r := roomArg{roomType: inspection.DefaultRoomType}
		if t, ok := m["room_type"].(string); ok && t != "" {
			rt, err := inspection.ParseRoomType(t)
			if err != nil {
				return nil, mcp.NewToolResultError(fmt.Sprintf("room %d: %v", i, err))
			}
			r.roomType = rt
		}
		if n, ok := m["room_name"].(string); ok {
			r.name = strings.TrimSpace(n)
		}

		if raw, ok := m["photo_paths"]; ok && raw != nil {
			arr, ok := raw.([]any)
			if !ok {
				return nil, mcp.NewToolResultError(fmt.Sprintf("room %d 'photo_paths' is not an array", i))
			}
			for j, p := range arr {
				path, ok := p.(string)
				if !ok || strings.TrimSpace(path) == "" {
					return nil, mcp.NewToolResultError(fmt.Sprintf("room %d photo %d is not a file path", i, j))
				}
				r.paths = append(r.paths, path)
			}
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}
