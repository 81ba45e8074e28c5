package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/radonlens/internal/output"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         AnnotationsURI,
		Name:        "annotations",
		Description: "Radon annotations and maintainability status of the active document. Subscribe to be told when they change.",
		MIMEType:    "application/json",
	}, s.readAnnotations)
}

// readAnnotations returns the active document's report, or an empty report
// when no document is active.
func (s *Server) readAnnotations(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	report := &output.DocumentReport{}
	if s.lens.Active() != "" {
		r, err := s.report(ctx, "", false)
		if err != nil {
			return nil, err
		}
		report = r
	}
	text, err := output.Encode(output.FormatJSON, report)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}
