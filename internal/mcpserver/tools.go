package mcpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/radonlens/internal/cache"
	"github.com/panbanda/radonlens/internal/output"
	"github.com/panbanda/radonlens/internal/refresh"
	"github.com/panbanda/radonlens/internal/render"
)

// DocumentInput names a document and optionally carries its text.
type DocumentInput struct {
	Path    string `json:"path" jsonschema:"Path of the Python file."`
	Content string `json:"content,omitempty" jsonschema:"Current text of the file. Read from disk when empty."`
}

// EventInput carries one lifecycle event by name.
type EventInput struct {
	Event   string `json:"event" jsonschema:"Lifecycle event: opened, saved, edited, active-changed, or closed."`
	Path    string `json:"path" jsonschema:"Path of the Python file."`
	Content string `json:"content,omitempty" jsonschema:"Current text of the file for opened, saved and edited."`
}

// PathInput names a document.
type PathInput struct {
	Path string `json:"path" jsonschema:"Path of the Python file."`
}

// AnnotationsInput selects a document and output format.
type AnnotationsInput struct {
	Path    string `json:"path,omitempty" jsonschema:"Path of the Python file. Defaults to the active document."`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Run radon again before rendering and wait for it."`
	Format  string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// FormatInput selects an output format.
type FormatInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// EnabledInput turns annotations on or off.
type EnabledInput struct {
	Enabled bool `json:"enabled" jsonschema:"Whether annotations are rendered."`
}

// InstallInput takes no arguments.
type InstallInput struct{}

// EventResult acknowledges a lifecycle event.
type EventResult struct {
	Document string `json:"document" toon:"document"`
	Event    string `json:"event" toon:"event"`
	State    string `json:"state" toon:"state"`
}

// StatusResult describes the lens.
type StatusResult struct {
	Enabled       bool           `json:"enabled" toon:"enabled"`
	Executable    string         `json:"executable" toon:"executable"`
	Active        string         `json:"active,omitempty" toon:"active,omitempty"`
	Documents     []string       `json:"documents" toon:"documents"`
	Status        render.Status  `json:"status" toon:"status"`
	Cache         cache.Stats    `json:"cache" toon:"cache"`
	Notifications []Notification `json:"notifications,omitempty" toon:"notifications,omitempty"`
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatMarkdown {
		if r, ok := data.(output.Renderable); ok {
			var buf bytes.Buffer
			if err := r.RenderMarkdown(&buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
		text, err := output.Encode(output.FormatJSON, data)
		if err != nil {
			return "", err
		}
		return "```json\n" + text + "\n```", nil
	}
	return output.Encode(format, data)
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) eventResult(id, event string, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(EventResult{Document: id, Event: event, State: s.lens.State(id).String()}, output.FormatTOON)
}

func (s *Server) handleOpened(ctx context.Context, _ *mcp.CallToolRequest, in DocumentInput) (*mcp.CallToolResult, any, error) {
	if in.Path == "" {
		return toolError("path is required")
	}
	var (
		id  string
		err error
	)
	if in.Content == "" {
		id, err = s.lens.OpenFile(ctx, in.Path)
	} else {
		id, err = s.lens.Open(ctx, in.Path, in.Content)
	}
	return s.eventResult(id, "opened", err)
}

func (s *Server) handleSaved(ctx context.Context, _ *mcp.CallToolRequest, in DocumentInput) (*mcp.CallToolResult, any, error) {
	if in.Path == "" {
		return toolError("path is required")
	}
	content := in.Content
	if content == "" {
		text, err := readFile(in.Path)
		if err != nil {
			return toolError(err.Error())
		}
		content = text
	}
	id, err := s.lens.Save(ctx, in.Path, content)
	return s.eventResult(id, "saved", err)
}

func (s *Server) handleEdited(ctx context.Context, _ *mcp.CallToolRequest, in DocumentInput) (*mcp.CallToolResult, any, error) {
	if in.Path == "" {
		return toolError("path is required")
	}
	id, err := s.lens.Edit(ctx, in.Path, in.Content)
	return s.eventResult(id, "edited", err)
}

func (s *Server) handleFocused(ctx context.Context, _ *mcp.CallToolRequest, in PathInput) (*mcp.CallToolResult, any, error) {
	if in.Path == "" {
		return toolError("path is required")
	}
	id, err := s.lens.Focus(ctx, in.Path)
	return s.eventResult(id, "active-changed", err)
}

func (s *Server) handleClosed(ctx context.Context, _ *mcp.CallToolRequest, in PathInput) (*mcp.CallToolResult, any, error) {
	if in.Path == "" {
		return toolError("path is required")
	}
	id, err := s.lens.Close(ctx, in.Path)
	return s.eventResult(id, "closed", err)
}

func (s *Server) handleEvent(ctx context.Context, _ *mcp.CallToolRequest, in EventInput) (*mcp.CallToolResult, any, error) {
	kind, err := refresh.ParseEventKind(in.Event)
	if err != nil {
		return toolError(err.Error())
	}
	if in.Path == "" {
		return toolError("path is required")
	}
	id, err := s.lens.Dispatch(ctx, kind, in.Path, in.Content)
	return s.eventResult(id, kind.String(), err)
}

// report renders one document. Refresh failures are part of the report.
func (s *Server) report(ctx context.Context, path string, refresh bool) (*output.DocumentReport, error) {
	if path == "" {
		path = s.lens.Active()
	}
	if path == "" {
		return nil, errors.New("no path given and no active document")
	}

	report := &output.DocumentReport{Document: path}
	if refresh {
		if _, err := s.lens.Refresh(ctx, path); err != nil {
			report.Error = err.Error()
		}
	}
	s.lens.Wait()

	annotations, err := s.lens.Annotations(path)
	if err != nil {
		return nil, err
	}
	report.Annotations = annotations
	if st, ok := s.lens.StatusOf(path); ok {
		report.Document = st.Document
		report.Status = &st
	}
	return report, nil
}

func (s *Server) handleGetAnnotations(ctx context.Context, _ *mcp.CallToolRequest, in AnnotationsInput) (*mcp.CallToolResult, any, error) {
	report, err := s.report(ctx, in.Path, in.Refresh)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report, getFormat(in.Format))
}

func (s *Server) status() StatusResult {
	return StatusResult{
		Enabled:       s.lens.Enabled(),
		Executable:    s.lens.Executable(),
		Active:        s.lens.Active(),
		Documents:     s.lens.Documents(),
		Status:        s.lens.Status(),
		Cache:         s.lens.CacheStats(),
		Notifications: s.notifier.Recent(),
	}
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcp.CallToolRequest, in FormatInput) (*mcp.CallToolResult, any, error) {
	return toolResult(s.status(), getFormat(in.Format))
}

func (s *Server) handleSetEnabled(_ context.Context, _ *mcp.CallToolRequest, in EnabledInput) (*mcp.CallToolResult, any, error) {
	if err := s.lens.SetEnabled(in.Enabled); err != nil {
		return toolError(err.Error())
	}
	return toolResult(map[string]bool{"enabled": s.lens.Enabled()}, output.FormatTOON)
}

func (s *Server) handleInstall(ctx context.Context, _ *mcp.CallToolRequest, _ InstallInput) (*mcp.CallToolResult, any, error) {
	out, err := s.lens.Install(ctx)
	if err != nil {
		return toolError(err.Error() + "\n" + out)
	}
	version, err := s.lens.Version(ctx)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(map[string]string{
		"command": s.lens.InstallCommand(),
		"version": version.String(),
		"output":  out,
	}, output.FormatTOON)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
