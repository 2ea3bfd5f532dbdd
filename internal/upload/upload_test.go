package upload_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/api/apitest"
	"github.com/mark3labs/inspectr/internal/upload"
)

var (
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	gifData  = []byte("GIF89a\x01\x00\x01\x00")
)

func newAgent(t *testing.T, srv *apitest.Server, max int) *upload.Agent {
	t.Helper()
	c, err := api.NewClient(srv.BaseURL(), "")
	require.NoError(t, err)
	return upload.NewAgent(c, max)
}

func TestFilter(t *testing.T) {
	accepted, rejected := upload.Filter([]upload.File{
		{Name: "a.png", Data: pngData},
		{Name: "notes.txt", Data: []byte("hello world")},
		{Name: "b.jpg", Data: jpegData},
		{Name: "c.gif", Data: gifData},
		{Name: "huge.jpg", Size: upload.MaxFileSize + 1},
	})

	require.Len(t, accepted, 3)
	assert.Equal(t, "image/png", accepted[0].ContentType)
	assert.Equal(t, "image/jpeg", accepted[1].ContentType)
	assert.Equal(t, "image/gif", accepted[2].ContentType)

	require.Len(t, rejected, 2)
	assert.Equal(t, "notes.txt", rejected[0].Name)
	assert.Equal(t, "huge.jpg", rejected[1].Name)
}

func TestAgent_UploadBatch(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	agent := newAgent(t, srv, 10)

	res, err := agent.Upload(context.Background(), "room-1", 0, []upload.File{
		{Name: "a.png", Data: pngData},
		{Name: "b.jpg", Data: jpegData},
	})
	require.NoError(t, err)
	require.Len(t, res.Photos, 2)
	assert.Equal(t, srv.URL+"/uploads/1-a.png", res.Photos[0].URL)
	assert.Equal(t, "a.png", res.Photos[0].OriginalName)
	assert.Equal(t, "b.jpg", res.Photos[1].OriginalName)

	assert.Equal(t, 1, srv.Count(apitest.OpUpload), "one request per batch")
	assert.False(t, agent.Busy("room-1"))
}

func TestAgent_RejectsNonImages(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	agent := newAgent(t, srv, 10)

	res, err := agent.Upload(context.Background(), "room-1", 0, []upload.File{{Name: "x.txt", Data: []byte("plain")}})
	require.ErrorIs(t, err, upload.ErrNoImages)
	require.Len(t, res.Rejected, 1)
	assert.Zero(t, srv.Count(apitest.OpUpload))
}

func TestAgent_TooManyPhotos(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	agent := newAgent(t, srv, 3)

	_, err := agent.Upload(context.Background(), "room-1", 2, []upload.File{
		{Name: "a.png", Data: pngData},
		{Name: "b.png", Data: pngData},
	})
	require.ErrorIs(t, err, upload.ErrTooManyPhotos)
	assert.Zero(t, srv.Count(apitest.OpUpload))
	assert.Equal(t, 1, agent.Remaining(2))
	assert.Equal(t, 0, agent.Remaining(5))
}

func TestAgent_ServerError(t *testing.T) {
	t.Run("with detail", func(t *testing.T) {
		srv := apitest.NewServer()
		defer srv.Close()
		srv.Fail(apitest.OpUpload, 1, http.StatusRequestEntityTooLarge, "File too large")

		_, err := newAgent(t, srv, 10).Upload(context.Background(), "r", 0, []upload.File{{Name: "a.png", Data: pngData}})
		var upErr *upload.Error
		require.True(t, errors.As(err, &upErr))
		assert.Equal(t, "File too large", upErr.Message)
	})

	t.Run("without detail", func(t *testing.T) {
		srv := apitest.NewServer()
		defer srv.Close()
		srv.FailRaw(apitest.OpUpload, 1, http.StatusBadGateway, "<html>")

		_, err := newAgent(t, srv, 10).Upload(context.Background(), "r", 0, []upload.File{{Name: "a.png", Data: pngData}})
		require.Error(t, err)
		assert.Equal(t, upload.FailureMessage, err.Error())
	})
}

// blockingUploader holds the request open until released.
type blockingUploader struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingUploader) UploadMultiple(ctx context.Context, files []api.FileUpload) (*api.UploadResponse, error) {
	close(b.started)
	<-b.release
	return &api.UploadResponse{Files: []api.UploadedFile{{URL: "https://cdn/x.png", OriginalFilename: files[0].Name}}}, nil
}

func (b *blockingUploader) ResolveURL(raw string) string { return raw }

func TestAgent_BusyPerRoom(t *testing.T) {
	up := &blockingUploader{started: make(chan struct{}), release: make(chan struct{})}
	agent := upload.NewAgent(up, 10)
	files := []upload.File{{Name: "a.png", Data: pngData}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := agent.Upload(context.Background(), "room-1", 0, files)
		assert.NoError(t, err)
	}()

	<-up.started
	require.True(t, agent.Busy("room-1"))

	_, err := agent.Upload(context.Background(), "room-1", 0, files)
	require.ErrorIs(t, err, upload.ErrBusy)
	require.False(t, agent.Busy("room-2"))

	close(up.release)
	wg.Wait()
	require.False(t, agent.Busy("room-1"))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "front door.png")
	require.NoError(t, os.WriteFile(img, pngData, 0644))

	files, err := upload.LoadFiles([]string{img})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "front door.png", files[0].Name)

	_, err = upload.LoadFiles([]string{filepath.Join(dir, "missing.png")})
	require.Error(t, err)

	_, err = upload.LoadFiles([]string{dir})
	require.Error(t, err)
}

func TestParsePaths(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"/a.png /b.png", []string{"/a.png", "/b.png"}},
		{`'/tmp/front door.png' "/tmp/back yard.jpg"`, []string{"/tmp/front door.png", "/tmp/back yard.jpg"}},
		{`/tmp/front\ door.png`, []string{"/tmp/front door.png"}},
		{"  /a.png\n", []string{"/a.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, upload.ParsePaths(tt.input))
		})
	}
}

func TestDevice(t *testing.T) {
	tests := []struct {
		name   string
		device upload.Device
		mobile bool
	}{
		{"iphone ua", upload.Device{UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", GOOS: "darwin"}, true},
		{"android ua", upload.Device{UserAgent: "Mozilla/5.0 (Linux; ANDROID 14)", GOOS: "linux"}, true},
		{"narrow viewport", upload.Device{Width: 80, GOOS: "linux"}, true},
		{"desktop", upload.Device{Width: 1200, GOOS: "linux"}, false},
		{"unknown width", upload.Device{GOOS: "linux"}, false},
		{"android os", upload.Device{GOOS: "android"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.mobile, tt.device.Mobile())
			aff := upload.AffordancesFor(tt.device, false)
			assert.True(t, aff.FilePicker)
			assert.Equal(t, tt.mobile, aff.Camera)
		})
	}

	assert.True(t, upload.AffordancesFor(upload.Device{GOOS: "linux", Width: 1200}, true).Camera)
}
