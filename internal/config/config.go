// Package config loads the ctosite build configuration from an optional YAML
// file plus process environment, with built-in defaults covering the stock
// generator list and toolchain registry.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeneratorSpec describes one code-generation target. The list is fixed at
// process start and read-only for the whole run.
type GeneratorSpec struct {
	Visitor   string `yaml:"visitor"`   // key looked up inside the toolchain binding
	Extension string `yaml:"extension"` // archive suffix, e.g. "ts" -> <base>.ts.zip
	Name      string `yaml:"name"`      // display name on rendered pages
}

// ToolchainEntry declares one available compiler version and its
// version-conditional capabilities. Capability flags are registry data, not
// inferred from version comparisons elsewhere.
type ToolchainEntry struct {
	Version         string `yaml:"version"`
	Default         bool   `yaml:"default"`
	ASTParsing      bool   `yaml:"astParsing"`
	BootstrapSchema bool   `yaml:"bootstrapSchema"`
	StrictMode      bool   `yaml:"strictMode"`
}

// Config is the top-level build configuration.
type Config struct {
	RootURL    string           `yaml:"rootURL"`
	Source     string           `yaml:"source"`
	Output     string           `yaml:"output"`
	Cache      string           `yaml:"cache"`
	Offline    bool             `yaml:"offline"`
	Generators []GeneratorSpec  `yaml:"generators"`
	Toolchains []ToolchainEntry `yaml:"toolchains"`
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		RootURL: "https://models.example.org",
		Source:  "./src",
		Output:  "./build",
		Generators: []GeneratorSpec{
			{Visitor: "golang", Extension: "go", Name: "Go"},
			{Visitor: "csharp", Extension: "csharp", Name: "C#"},
			{Visitor: "java", Extension: "java", Name: "Java"},
			{Visitor: "jsonschema", Extension: "json", Name: "JSON Schema"},
			{Visitor: "xmlschema", Extension: "xsd", Name: "XML Schema"},
			{Visitor: "avro", Extension: "avro", Name: "Avro"},
			{Visitor: "protobuf", Extension: "proto", Name: "Protobuf"},
			{Visitor: "typescript", Extension: "ts", Name: "TypeScript"},
			{Visitor: "odata", Extension: "csdl", Name: "OData"},
			{Visitor: "graphql", Extension: "gql", Name: "GraphQL"},
			{Visitor: "markdown", Extension: "md", Name: "Markdown"},
		},
		Toolchains: []ToolchainEntry{
			{Version: "0.82.11", BootstrapSchema: true, StrictMode: true},
			{Version: "2.6.0", ASTParsing: true},
			{Version: "3.21.0", ASTParsing: true, Default: true},
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults;
// a present but unreadable or invalid file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the pipeline depends on.
func (c *Config) Validate() error {
	if len(c.Toolchains) == 0 {
		return fmt.Errorf("config: at least one toolchain entry is required")
	}
	defaults := 0
	for _, tc := range c.Toolchains {
		if tc.Version == "" {
			return fmt.Errorf("config: toolchain entry without version")
		}
		if tc.Default {
			defaults++
		}
	}
	if defaults != 1 {
		return fmt.Errorf("config: exactly one default toolchain required, found %d", defaults)
	}
	for _, g := range c.Generators {
		if g.Visitor == "" || g.Extension == "" {
			return fmt.Errorf("config: generator entries need visitor and extension")
		}
	}
	return nil
}
