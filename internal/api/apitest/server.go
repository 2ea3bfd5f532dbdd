// Package apitest provides an in-memory fake of the inspection REST API for tests.
//
// The fake records every request in arrival order so tests can assert the
// exact call sequence a component issued, and can be told to fail a given
// occurrence of an operation:
//
//	srv := apitest.NewServer()
//	defer srv.Close()
//	srv.Fail(apitest.OpCreateRoom, 2, http.StatusUnprocessableEntity, "Room limit reached")
//
//	client, _ := api.NewClient(srv.BaseURL(), "token")
//	// ... drive the component ...
//	require.Equal(t, []apitest.Op{apitest.OpCreateInspection, apitest.OpCreateRoom}, srv.Ops())
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/inspectr/internal/api"
)

// Op names one API operation.
type Op string

const (
	OpListProperties   Op = "list_properties"
	OpCreateInspection Op = "create_inspection"
	OpCreateRoom       Op = "create_room"
	OpAddPhoto         Op = "add_photo"
	OpAnalyze          Op = "analyze"
	OpUpload           Op = "upload"
	OpQuickCreate      Op = "quick_create"
	OpLookup           Op = "lookup"
)

// Call is one recorded request.
type Call struct {
	Op           Op
	Method       string
	Path         string
	InspectionID int64
	RoomID       int64
	// Body holds the decoded JSON body, nil for bodyless requests.
	Body map[string]any
	// Query holds the first value of every query parameter.
	Query map[string]string
	// Files holds the uploaded file names for OpUpload.
	Files []string
	Auth  string
}

type failure struct {
	status int
	detail string
	raw    string
}

// Server is the fake API.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	calls      []Call
	counts     map[Op]int
	failures   map[Op]map[int]failure
	nextInsp   int64
	nextRoom   int64
	nextUpload int

	// Properties is returned by GET /properties.
	Properties []api.Property
	// Lookup is returned by GET /properties/lookup. Nil yields success=false.
	Lookup *api.PropertyData
	// QuickCreateInspectionID is the inspection id quick-create returns.
	QuickCreateInspectionID int64
	// RequireToken makes every request without this bearer token fail with 401.
	RequireToken string
}

// NewServer starts a fake API. Inspection ids start at 100, room ids at 500.
func NewServer() *Server {
	s := &Server{
		counts:                  map[Op]int{},
		failures:                map[Op]map[int]failure{},
		nextInsp:                100,
		nextRoom:                500,
		QuickCreateInspectionID: 900,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/properties", s.handleListProperties)
	mux.HandleFunc("GET /api/v1/properties/lookup", s.handleLookup)
	mux.HandleFunc("POST /api/v1/properties/quick-create", s.handleQuickCreate)
	mux.HandleFunc("POST /api/v1/inspections", s.handleCreateInspection)
	mux.HandleFunc("POST /api/v1/inspections/{id}/rooms", s.handleCreateRoom)
	mux.HandleFunc("POST /api/v1/inspections/{id}/rooms/{room}/photos", s.handleAddPhoto)
	mux.HandleFunc("POST /api/v1/inspections/{id}/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/v1/files/upload-multiple", s.handleUpload)

	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL is the API root to hand to api.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v1"
}

// Fail makes the nth occurrence (1-based) of op answer with status and a
// string detail. n == 0 fails every occurrence.
func (s *Server) Fail(op Op, n, status int, detail string) {
	s.setFailure(op, n, failure{status: status, detail: detail})
}

// FailRaw is Fail with a verbatim response body.
func (s *Server) FailRaw(op Op, n, status int, body string) {
	s.setFailure(op, n, failure{status: status, raw: body})
}

// ClearFailures removes every configured failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[Op]map[int]failure{}
}

func (s *Server) setFailure(op Op, n int, f failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[op] == nil {
		s.failures[op] = map[int]failure{}
	}
	s.failures[op][n] = f
}

// Calls returns a copy of the recorded calls.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Ops returns the recorded operation sequence.
func (s *Server) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]Op, len(s.calls))
	for i, c := range s.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (s *Server) Count(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[op]
}

// Reset clears recorded calls and counters but keeps failures and fixtures.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.counts = map[Op]int{}
}

// record stores the call and reports whether the handler should fail it.
func (s *Server) record(w http.ResponseWriter, r *http.Request, c Call) bool {
	c.Method = r.Method
	c.Path = r.URL.Path
	c.Auth = r.Header.Get("Authorization")
	c.Query = map[string]string{}
	for k, v := range r.URL.Query() {
		c.Query[k] = v[0]
	}

	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.counts[c.Op]++
	n := s.counts[c.Op]
	f, failOne := s.failures[c.Op][n]
	if !failOne {
		f, failOne = s.failures[c.Op][0]
	}
	token := s.RequireToken
	s.mu.Unlock()

	if token != "" && c.Auth != "Bearer "+token {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
		return true
	}
	if !failOne {
		return false
	}
	if f.raw != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.raw)
		return true
	}
	writeJSON(w, f.status, map[string]any{"detail": f.detail})
	return true
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	if s.record(w, r, Call{Op: OpListProperties}) {
		return
	}
	s.mu.Lock()
	props := append([]api.Property{}, s.Properties...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, props)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.record(w, r, Call{Op: OpLookup}) {
		return
	}
	s.mu.Lock()
	data := s.Lookup
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.LookupResponse{Success: data != nil, PropertyData: data})
}

func (s *Server) handleQuickCreate(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	if s.record(w, r, Call{Op: OpQuickCreate, Body: body}) {
		return
	}
	address, _ := body["address"].(string)
	s.mu.Lock()
	id := s.QuickCreateInspectionID
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, api.QuickCreateResponse{
		Property:     api.Property{ID: 1, AddressLine1: address, IsActive: true},
		InspectionID: id,
	})
}

func (s *Server) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	if s.record(w, r, Call{Op: OpCreateInspection, Body: body}) {
		return
	}
	s.mu.Lock()
	id := s.nextInsp
	s.nextInsp++
	s.mu.Unlock()

	propertyID, _ := body["property_id"].(float64)
	inspectionType, _ := body["inspection_type"].(string)
	writeJSON(w, http.StatusCreated, api.Inspection{
		ID:             id,
		PropertyID:     int64(propertyID),
		InspectionType: inspectionType,
		Status:         "draft",
	})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	inspectionID := pathID(r, "id")
	if s.record(w, r, Call{Op: OpCreateRoom, Body: body, InspectionID: inspectionID}) {
		return
	}
	s.mu.Lock()
	id := s.nextRoom
	s.nextRoom++
	s.mu.Unlock()

	roomType, _ := body["room_type"].(string)
	roomName, _ := body["room_name"].(string)
	orderIndex, _ := body["order_index"].(float64)
	writeJSON(w, http.StatusCreated, api.Room{
		ID:         id,
		RoomType:   roomType,
		RoomName:   roomName,
		OrderIndex: int(orderIndex),
	})
}

func (s *Server) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	c := Call{Op: OpAddPhoto, InspectionID: pathID(r, "id"), RoomID: pathID(r, "room")}
	if s.record(w, r, c) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Photo added"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.record(w, r, Call{Op: OpAnalyze, InspectionID: pathID(r, "id")}) {
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"message": "Analysis started"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var names []string
	if err := r.ParseMultipartForm(32 << 20); err == nil && r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			names = append(names, fh.Filename)
		}
	}
	if s.record(w, r, Call{Op: OpUpload, Files: names}) {
		return
	}

	resp := api.UploadResponse{}
	s.mu.Lock()
	for _, name := range names {
		s.nextUpload++
		stored := fmt.Sprintf("%d-%s", s.nextUpload, name)
		resp.Files = append(resp.Files, api.UploadedFile{
			Filename:         stored,
			OriginalFilename: name,
			URL:              "/uploads/" + stored,
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(r *http.Request) map[string]any {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil
	}
	return body
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
