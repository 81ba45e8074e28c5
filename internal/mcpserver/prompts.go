package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/radonlens/internal/output"
	"github.com/panbanda/radonlens/pkg/radon"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptFrontmatter is parsed from YAML frontmatter in prompt files.
type promptFrontmatter struct {
	Description string           `yaml:"description"`
	Arguments   []promptArgument `yaml:"arguments"`
}

type promptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// promptData is what prompt bodies can reference.
type promptData struct {
	Path       string
	MinVersion string
	Report     string
}

// prompt is one embedded markdown prompt with its body parsed as a template.
type prompt struct {
	name string
	fm   promptFrontmatter
	body *template.Template
}

func loadPrompts() ([]prompt, error) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, err
	}

	var prompts []prompt
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")

		content, err := promptFiles.ReadFile("prompts/" + entry.Name())
		if err != nil {
			return nil, err
		}
		fm, body := parseFrontmatter(content)
		tmpl, err := template.New(name).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		prompts = append(prompts, prompt{name: name, fm: fm, body: tmpl})
	}
	return prompts, nil
}

// PromptNames returns the names of the embedded prompts.
func PromptNames() []string {
	prompts, _ := loadPrompts()
	names := make([]string, len(prompts))
	for i, p := range prompts {
		names[i] = p.name
	}
	return names
}

// registerPrompts registers every embedded markdown prompt under its file name.
func (s *Server) registerPrompts() {
	prompts, err := loadPrompts()
	if err != nil {
		s.logger.Error("loading prompts", "error", err)
		return
	}

	for _, p := range prompts {
		args := make([]*mcp.PromptArgument, 0, len(p.fm.Arguments))
		for _, a := range p.fm.Arguments {
			args = append(args, &mcp.PromptArgument{Name: a.Name, Description: a.Description, Required: a.Required})
		}
		s.server.AddPrompt(&mcp.Prompt{
			Name:        p.name,
			Description: p.fm.Description,
			Arguments:   args,
		}, s.promptHandler(p))
	}
}

// parseFrontmatter extracts YAML frontmatter and returns it with the body.
func parseFrontmatter(content []byte) (promptFrontmatter, string) {
	var fm promptFrontmatter
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return fm, string(content)
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return fm, string(content)
	}

	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return promptFrontmatter{}, string(content)
	}
	return fm, strings.TrimPrefix(string(rest[end+5:]), "\n")
}

// promptHandler fills the prompt body with the requested document, the
// active one when no path is given, and its cached annotations if any.
func (s *Server) promptHandler(p prompt) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		data := promptData{MinVersion: radon.MinVersion.String()}
		if req.Params != nil {
			data.Path = req.Params.Arguments["path"]
		}
		if data.Path == "" {
			data.Path = s.lens.Active()
		}
		if data.Path != "" {
			data.Report = s.cachedReport(data.Path)
		}

		var buf bytes.Buffer
		if err := p.body.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rendering prompt %s: %w", p.name, err)
		}
		return &mcp.GetPromptResult{
			Description: p.fm.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: buf.String()},
				},
			},
		}, nil
	}
}

// cachedReport renders the annotations already computed for path as TOON,
// or returns "" when there are none.
func (s *Server) cachedReport(path string) string {
	annotations, err := s.lens.Annotations(path)
	if err != nil || len(annotations) == 0 {
		return ""
	}
	report := &output.DocumentReport{Document: path, Annotations: annotations}
	if st, ok := s.lens.StatusOf(path); ok {
		report.Status = &st
	}
	text, err := output.Encode(output.FormatTOON, report)
	if err != nil {
		return ""
	}
	return text
}
