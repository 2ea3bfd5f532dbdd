// Package api is a typed client for the inspection service REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the REST API rooted at baseURL (e.g. http://host/api/v1).
type Client struct {
	baseURL    *url.URL
	token      string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request deadline. Zero keeps the client default (none).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client. token may be empty for unauthenticated servers.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base URL is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid api base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base URL %q: scheme and host required", baseURL)
	}

	c := &Client{
		baseURL:    u,
		token:      token,
		userAgent:  "inspectr",
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ResolveURL makes a server-returned URL absolute. Relative paths resolve
// against the API origin, absolute URLs are returned unchanged.
func (c *Client) ResolveURL(raw string) string {
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}
	return c.baseURL.ResolveReference(ref).String()
}

// ListProperties returns the caller's properties.
func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	var out []Property
	if err := c.do(ctx, http.MethodGet, "/properties", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	return out, nil
}

// CreateInspection creates an inspection for a property.
func (c *Client) CreateInspection(ctx context.Context, req CreateInspectionRequest) (*Inspection, error) {
	var out Inspection
	if err := c.do(ctx, http.MethodPost, "/inspections", nil, req, &out); err != nil {
		return nil, fmt.Errorf("creating inspection: %w", err)
	}
	return &out, nil
}

// AddRoom creates a room on an inspection.
func (c *Client) AddRoom(ctx context.Context, inspectionID int64, req CreateRoomRequest) (*Room, error) {
	var out Room
	path := "/inspections/" + strconv.FormatInt(inspectionID, 10) + "/rooms"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, fmt.Errorf("creating room %q: %w", req.RoomName, err)
	}
	return &out, nil
}

// AddPhoto attaches an already uploaded photo URL to a room.
func (c *Client) AddPhoto(ctx context.Context, inspectionID, roomID int64, photoURL string) error {
	path := fmt.Sprintf("/inspections/%d/rooms/%d/photos", inspectionID, roomID)
	query := url.Values{"photo_url": {photoURL}}
	if err := c.do(ctx, http.MethodPost, path, query, nil, nil); err != nil {
		return fmt.Errorf("attaching photo: %w", err)
	}
	return nil
}

// Analyze starts AI analysis of an inspection. The result is fetched elsewhere.
func (c *Client) Analyze(ctx context.Context, inspectionID int64) error {
	path := "/inspections/" + strconv.FormatInt(inspectionID, 10) + "/analyze"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("triggering analysis: %w", err)
	}
	return nil
}

// QuickCreate creates a property and, optionally, an inspection from an address.
func (c *Client) QuickCreate(ctx context.Context, req QuickCreateRequest) (*QuickCreateResponse, error) {
	var out QuickCreateResponse
	if err := c.do(ctx, http.MethodPost, "/properties/quick-create", nil, req, &out); err != nil {
		return nil, fmt.Errorf("quick create: %w", err)
	}
	return &out, nil
}

// LookupAddress fetches best-effort property attributes for a free-text address.
func (c *Client) LookupAddress(ctx context.Context, address string) (*LookupResponse, error) {
	var out LookupResponse
	query := url.Values{"address": {address}}
	if err := c.do(ctx, http.MethodGet, "/properties/lookup", query, nil, &out); err != nil {
		return nil, fmt.Errorf("address lookup: %w", err)
	}
	return &out, nil
}

// FileUpload is one file of a multipart batch.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadMultiple sends every file in one multipart request under the
// repeated "files" field.
func (c *Client) UploadMultiple(ctx context.Context, files []FileUpload) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("building upload: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("building upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files/upload-multiple", nil, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	if err := c.send(req, &out); err != nil {
		return nil, fmt.Errorf("uploading files: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
