package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/quickaction"
	"github.com/mark3labs/inspectr/internal/session"
	"github.com/mark3labs/inspectr/internal/upload"
	"github.com/mark3labs/inspectr/internal/wizard"
)

// Client is the API surface the tools call.
type Client interface {
	wizard.Client
	quickaction.Client
	upload.Uploader
	ListProperties(ctx context.Context) ([]api.Property, error)
}

// Options configures a Server. Client is required.
type Options struct {
	Client Client
	// Events receives commit and quick action journal entries when set.
	Events session.Publisher
	// WebURL makes inspection links absolute.
	WebURL string
	// MaxPhotos is the per-room photo limit. Zero uses the upload default.
	MaxPhotos int
}

// Server manages an embedded MCP HTTP server exposing property lookup,
// quick create and the full inspection commit as tools.
type Server struct {
	client     Client
	events     session.Publisher
	webURL     string
	agent      *upload.Agent
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	port       int
	mu         sync.Mutex
}

// New creates a server. It is not listening until Start is called.
func New(opts Options) *Server {
	return &Server{
		client: opts.Client,
		events: opts.Events,
		webURL: opts.WebURL,
		agent:  upload.NewAgent(opts.Client, opts.MaxPhotos),
	}
}

// Start listens on addr, or a random loopback port when addr is empty, and
// returns the port.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	s.mcpServer = server.NewMCPServer(
		"inspectr-tools",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	if addr == "" {
		addr = "127.0.0.1:0"
	}
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// Stateless: every tool call is self-contained.
	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{Handler: mux}
	s.httpServer = mcpHandler

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	logger.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(ctx); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	s.mcpServer = nil
	return nil
}

// URL returns the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
