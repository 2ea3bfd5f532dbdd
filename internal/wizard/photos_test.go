package wizard_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/inspectr/internal/api/apitest"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/upload"
	"github.com/mark3labs/inspectr/internal/wizard"
)

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadPhotos_AppendsConfirmedURLs(t *testing.T) {
	srv, client := setup(t)
	c := wizard.New(wizard.Options{Client: client})
	agent := upload.NewAgent(client, 10)

	room, err := c.AddRoom(inspection.RoomKitchen, "")
	require.NoError(t, err)

	res, err := c.UploadPhotos(context.Background(), agent, room.ID, []upload.File{
		{Name: "sink.png", Data: png},
		{Name: "readme.txt", Data: []byte("text")},
	})
	require.NoError(t, err)
	require.Len(t, res.Rejected, 1)

	got := c.State().Rooms[0]
	require.Equal(t, []string{srv.URL + "/uploads/1-sink.png"}, got.PhotoURLs())
	require.Equal(t, "sink.png", got.Photos[0].OriginalName)
}

func TestUploadPhotos_FailureLeavesRoomUntouched(t *testing.T) {
	srv, client := setup(t)
	srv.Fail(apitest.OpUpload, 0, http.StatusBadRequest, "Invalid image")
	c := wizard.New(wizard.Options{Client: client})
	agent := upload.NewAgent(client, 10)

	room, _ := c.AddRoom(inspection.RoomKitchen, "")
	require.NoError(t, c.AddPhotos(room.ID, photos("https://cdn/existing.jpg")))

	_, err := c.UploadPhotos(context.Background(), agent, room.ID, []upload.File{{Name: "a.png", Data: png}})
	require.Error(t, err)
	require.Equal(t, "Invalid image", err.Error())

	require.Equal(t, []string{"https://cdn/existing.jpg"}, c.State().Rooms[0].PhotoURLs())
}

func TestUploadPhotos_RespectsRoomLimit(t *testing.T) {
	_, client := setup(t)
	c := wizard.New(wizard.Options{Client: client})
	agent := upload.NewAgent(client, 1)

	room, _ := c.AddRoom(inspection.RoomKitchen, "")
	require.NoError(t, c.AddPhotos(room.ID, photos("u")))

	_, err := c.UploadPhotos(context.Background(), agent, room.ID, []upload.File{{Name: "a.png", Data: png}})
	require.ErrorIs(t, err, upload.ErrTooManyPhotos)
}

func TestUploadPhotos_UnknownRoom(t *testing.T) {
	_, client := setup(t)
	c := wizard.New(wizard.Options{Client: client})

	_, err := c.UploadPhotos(context.Background(), upload.NewAgent(client, 10), "missing", nil)
	require.ErrorIs(t, err, inspection.ErrRoomNotFound)
}

func TestAddPhotos_EnforcesRoomLimit(t *testing.T) {
	_, client := setup(t)
	c := wizard.New(wizard.Options{Client: client, MaxPhotos: 2})
	require.Equal(t, 2, c.MaxPhotos())

	room, _ := c.AddRoom(inspection.RoomKitchen, "")
	require.NoError(t, c.AddPhotos(room.ID, photos("u1")))

	err := c.AddPhotos(room.ID, photos("u2", "u3"))
	require.ErrorIs(t, err, upload.ErrTooManyPhotos)
	assert.Equal(t, []string{"u1"}, c.State().Rooms[0].PhotoURLs())

	require.NoError(t, c.AddPhotos(room.ID, photos("u2")))
	assert.Len(t, c.State().Rooms[0].Photos, 2)
}

func TestAddPhotos_DefaultLimit(t *testing.T) {
	_, client := setup(t)
	c := wizard.New(wizard.Options{Client: client})
	assert.Equal(t, upload.DefaultMaxPhotos, c.MaxPhotos())
}
