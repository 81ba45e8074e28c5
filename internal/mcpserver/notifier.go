package mcpserver

import (
	"context"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/radonlens/pkg/radon"
)

const maxNotifications = 20

// Notification is a refresh failure shown to the client.
type Notification struct {
	Time    string            `json:"time" toon:"time"`
	Level   string            `json:"level" toon:"level"`
	Code    string            `json:"code,omitempty" toon:"code,omitempty"`
	Message string            `json:"message" toon:"message"`
	Actions []radon.FixAction `json:"actions,omitempty" toon:"actions,omitempty"`
}

// Notifier sends refresh failures to every session as log messages and
// keeps the most recent ones for get_status.
type Notifier struct {
	server *mcp.Server

	mu     sync.Mutex
	recent []Notification
}

// NewNotifier creates a notifier broadcasting on server.
func NewNotifier(server *mcp.Server) *Notifier {
	return &Notifier{server: server}
}

// Remediate sends the error with its suggested fixes as a warning.
func (n *Notifier) Remediate(ctx context.Context, err *radon.Error) {
	n.send(ctx, Notification{
		Time:    now(),
		Level:   "warning",
		Code:    string(err.Code),
		Message: err.Message,
		Actions: err.SuggestedFixes,
	})
}

// Error sends a plain failure message.
func (n *Notifier) Error(ctx context.Context, message string) {
	n.send(ctx, Notification{Time: now(), Level: "error", Message: message})
}

// Recent returns the remembered notifications, oldest first.
func (n *Notifier) Recent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.recent...)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (n *Notifier) send(ctx context.Context, note Notification) {
	n.mu.Lock()
	n.recent = append(n.recent, note)
	if len(n.recent) > maxNotifications {
		n.recent = n.recent[len(n.recent)-maxNotifications:]
	}
	n.mu.Unlock()

	if n.server == nil {
		return
	}
	for ss := range n.server.Sessions() {
		_ = ss.Log(ctx, &mcp.LoggingMessageParams{
			Level:  mcp.LoggingLevel(note.Level),
			Logger: "radonlens",
			Data:   note,
		})
	}
}
