package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/api/apitest"
)

func newClient(t *testing.T, srv *apitest.Server, opts ...api.Option) *api.Client {
	t.Helper()
	c, err := api.NewClient(srv.BaseURL(), "secret", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := api.NewClient("", "")
	require.Error(t, err)

	_, err = api.NewClient("localhost:8000", "")
	require.Error(t, err)

	c, err := api.NewClient("http://localhost:8000/api/v1/", "", api.WithTimeout(5*time.Second))
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestClient_ListProperties(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.Properties = []api.Property{
		{ID: 42, AddressLine1: "123 Main St", City: "Springfield", State: "IL", PostalCode: "62701"},
	}

	props, err := newClient(t, srv).ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, int64(42), props[0].ID)
	assert.Equal(t, "123 Main St, Springfield, IL 62701", props[0].Address())

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer secret", calls[0].Auth)
}

func TestClient_CreateInspectionAndRoom(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)
	ctx := context.Background()

	insp, err := c.CreateInspection(ctx, api.CreateInspectionRequest{PropertyID: 42, InspectionType: "move_in"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), insp.ID)

	room, err := c.AddRoom(ctx, insp.ID, api.CreateRoomRequest{RoomType: "kitchen", RoomName: "Kitchen", OrderIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(500), room.ID)

	require.NoError(t, c.AddPhoto(ctx, insp.ID, room.ID, "https://cdn.example.com/a b.jpg"))
	require.NoError(t, c.Analyze(ctx, insp.ID))

	calls := srv.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, map[string]any{"property_id": float64(42), "inspection_type": "move_in"}, calls[0].Body)
	assert.Equal(t, map[string]any{"room_type": "kitchen", "room_name": "Kitchen", "order_index": float64(0)}, calls[1].Body)
	assert.Equal(t, int64(100), calls[1].InspectionID)
	assert.Equal(t, "https://cdn.example.com/a b.jpg", calls[2].Query["photo_url"])
	assert.Equal(t, int64(500), calls[2].RoomID)
	assert.Equal(t, apitest.OpAnalyze, calls[3].Op)
}

func TestClient_UploadMultiple(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	c := newClient(t, srv)

	resp, err := c.UploadMultiple(context.Background(), []api.FileUpload{
		{Name: "one.jpg", ContentType: "image/jpeg", Data: []byte("1")},
		{Name: "two.png", ContentType: "image/png", Data: []byte("2")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "one.jpg", resp.Files[0].OriginalFilename)
	assert.Equal(t, "/uploads/1-one.jpg", resp.Files[0].URL)

	// One request for the whole batch
	require.Equal(t, 1, srv.Count(apitest.OpUpload))
	assert.Equal(t, []string{"one.jpg", "two.png"}, srv.Calls()[0].Files)
}

func TestClient_ResolveURL(t *testing.T) {
	c, err := api.NewClient("https://api.example.com/api/v1", "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/uploads/x.jpg", c.ResolveURL("/uploads/x.jpg"))
	assert.Equal(t, "https://cdn.example.com/y.jpg", c.ResolveURL("https://cdn.example.com/y.jpg"))
}

func TestClient_QuickCreateAndLookup(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.Lookup = &api.PropertyData{Bedrooms: 3, Bathrooms: 2, PropertyType: "Single Family Home"}
	c := newClient(t, srv)
	ctx := context.Background()

	qc, err := c.QuickCreate(ctx, api.QuickCreateRequest{Address: "123 Main St", CreateInspection: true, InspectionType: "Move-in Inspection"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), qc.InspectionID)

	lookup, err := c.LookupAddress(ctx, "123 Main St")
	require.NoError(t, err)
	require.True(t, lookup.Success)
	require.NotNil(t, lookup.PropertyData)
	assert.Equal(t, 3, lookup.PropertyData.Bedrooms)
	assert.Equal(t, "123 Main St", srv.Calls()[1].Query["address"])
}

func TestClient_ServerErrors(t *testing.T) {
	t.Run("string detail", func(t *testing.T) {
		srv := apitest.NewServer()
		defer srv.Close()
		srv.Fail(apitest.OpCreateInspection, 1, http.StatusNotFound, "Property not found")

		_, err := newClient(t, srv).CreateInspection(context.Background(), api.CreateInspectionRequest{PropertyID: 7})
		require.Error(t, err)

		var apiErr *api.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "Property not found", api.Message(err, "fallback"))
	})

	t.Run("validation list detail", func(t *testing.T) {
		srv := apitest.NewServer()
		defer srv.Close()
		srv.FailRaw(apitest.OpCreateRoom, 0, http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","room_type"],"msg":"invalid room type"},{"msg":"name too long"}]}`)

		_, err := newClient(t, srv).AddRoom(context.Background(), 1, api.CreateRoomRequest{})
		require.Error(t, err)
		assert.Equal(t, "invalid room type; name too long", api.Message(err, "fallback"))
	})

	t.Run("no detail falls back", func(t *testing.T) {
		srv := apitest.NewServer()
		defer srv.Close()
		srv.FailRaw(apitest.OpAnalyze, 0, http.StatusInternalServerError, `oops`)

		err := newClient(t, srv).Analyze(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, "Failed to create inspection", api.Message(err, "Failed to create inspection"))
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv := apitest.NewServer()
		defer srv.Close()
		srv.RequireToken = "right"

		_, err := newClient(t, srv).ListProperties(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, api.ErrUnauthorized))
		assert.True(t, strings.Contains(err.Error(), "401"))
	})
}

func TestClient_TransportError(t *testing.T) {
	srv := apitest.NewServer()
	c := newClient(t, srv)
	srv.Close()

	_, err := c.ListProperties(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to create inspection", api.Message(err, "Failed to create inspection"))
}
