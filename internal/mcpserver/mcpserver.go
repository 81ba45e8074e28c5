// Package mcpserver exposes the radon lens over the Model Context Protocol.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/radonlens/internal/lens"
	"github.com/panbanda/radonlens/internal/logging"
)

// AnnotationsURI is the resource holding the annotations of the active document.
const AnnotationsURI = "radonlens://annotations"

// Server wraps the MCP server and registers the lens tools.
type Server struct {
	server   *mcp.Server
	lens     *lens.Service
	notifier *Notifier
	logger   *slog.Logger
}

// NewServer creates an MCP server backed by a new lens service built with opts.
// Refresh failures are sent to connected clients as log messages.
func NewServer(version string, logger *slog.Logger, opts ...lens.Option) *Server {
	if version == "" {
		version = "dev"
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	s := &Server{logger: logger}
	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "radonlens",
			Version: version,
		},
		&mcp.ServerOptions{
			Logger:             logger,
			SubscribeHandler:   s.subscribe,
			UnsubscribeHandler: s.unsubscribe,
		},
	)
	s.notifier = NewNotifier(s.server)

	opts = append(opts, lens.WithNotifier(s.notifier), lens.WithLogger(logger))
	s.lens = lens.New(opts...)
	s.lens.OnChange(s.annotationsChanged)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// Lens returns the service behind the server.
func (s *Server) Lens() *lens.Service {
	return s.lens
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	defer s.lens.Shutdown()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves one session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) subscribe(_ context.Context, req *mcp.SubscribeRequest) error {
	if req.Params.URI != AnnotationsURI {
		return mcp.ResourceNotFoundError(req.Params.URI)
	}
	return nil
}

func (s *Server) unsubscribe(context.Context, *mcp.UnsubscribeRequest) error {
	return nil
}

func (s *Server) annotationsChanged(id string) {
	s.logger.Debug("annotations changed", "document", id)
	_ = s.server.ResourceUpdated(context.Background(), &mcp.ResourceUpdatedNotificationParams{URI: AnnotationsURI})
}

type toolHandler[In any] func(*Server, context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error)

// toolDef binds a tool name and description to a handler method.
type toolDef struct {
	name     string
	describe func() string
	add      func(s *Server, t *mcp.Tool)
}

func bind[In any](h toolHandler[In]) func(*Server, *mcp.Tool) {
	return func(s *Server, t *mcp.Tool) {
		mcp.AddTool(s.server, t, func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
			return h(s, ctx, req, in)
		})
	}
}

// tools lists every tool the server registers, in registration order.
var tools = []toolDef{
	{"document_opened", describeOpened, bind((*Server).handleOpened)},
	{"document_saved", describeSaved, bind((*Server).handleSaved)},
	{"document_edited", describeEdited, bind((*Server).handleEdited)},
	{"document_focused", describeFocused, bind((*Server).handleFocused)},
	{"document_closed", describeClosed, bind((*Server).handleClosed)},
	{"document_event", describeEvent, bind((*Server).handleEvent)},
	{"get_annotations", describeAnnotations, bind((*Server).handleGetAnnotations)},
	{"get_status", describeStatus, bind((*Server).handleGetStatus)},
	{"set_enabled", describeSetEnabled, bind((*Server).handleSetEnabled)},
	{"install_radon", describeInstall, bind((*Server).handleInstall)},
}

// ToolNames returns the names of the registered tools.
func ToolNames() []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.name
	}
	return names
}

func (s *Server) registerTools() {
	for _, t := range tools {
		t.add(s, &mcp.Tool{Name: t.name, Description: t.describe()})
	}
}
