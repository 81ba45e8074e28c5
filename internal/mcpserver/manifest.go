package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/panbanda/radonlens/pkg/config"
	"github.com/panbanda/radonlens/pkg/radon"
)

// Manifest is the MCP registry server.json, schema version 2025-10-17.
type Manifest struct {
	Schema      string        `json:"$schema"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Version     string        `json:"version"`
	Repository  *Repository   `json:"repository,omitempty"`
	Packages    []Package     `json:"packages,omitempty"`
	Meta        *ManifestMeta `json:"_meta,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes how to run the server from its container image.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument represents a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable is an environment variable the package reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// ManifestMeta lists what the server exposes once connected.
type ManifestMeta struct {
	PublisherProvided Capabilities `json:"io.modelcontextprotocol.registry/publisher-provided"`
}

// Capabilities names the registered tools, resources and prompts.
type Capabilities struct {
	Tools           []string `json:"tools"`
	Resources       []string `json:"resources"`
	Prompts         []string `json:"prompts"`
	RadonMinVersion string   `json:"radonMinVersion"`
}

// GenerateManifest creates the MCP server manifest JSON from the registered
// tools and prompts.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	manifest := Manifest{
		Schema:      "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json",
		Name:        "io.github.panbanda/radonlens",
		Description: fmt.Sprintf("Radon complexity and maintainability annotations for Python files (radon %s+)", radon.MinVersion),
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/panbanda/radonlens",
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType: "oci",
				Identifier:   "ghcr.io/panbanda/radonlens:" + version,
				PackageArguments: []Argument{
					{Type: "positional", Value: "mcp"},
				},
				EnvironmentVariables: []EnvVariable{
					{Name: config.EnvPath, Description: "Path to the radonlens config file"},
				},
				Transport: Transport{Type: "stdio"},
			},
		},
		Meta: &ManifestMeta{
			PublisherProvided: Capabilities{
				Tools:           ToolNames(),
				Resources:       []string{AnnotationsURI},
				Prompts:         PromptNames(),
				RadonMinVersion: radon.MinVersion.String(),
			},
		},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
