package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// GeneratorLink is one download link on a model page.
type GeneratorLink struct {
	Name string
	Href string
}

// PageData is the context for the per-model page template.
type PageData struct {
	RootURL    string
	Namespace  string
	Version    string
	Toolchain  string
	BaseName   string
	SourceURL  string
	DiagramURL string
	DocHTML    template.HTML
	Generators []GeneratorLink
}

type indexData struct {
	RootURL string
	Entries []indexEntry
}

type indexEntry struct {
	PageRelPath string
	Namespace   string
	Version     string
}

// Renderer renders the model and index pages from the embedded templates.
type Renderer struct {
	rootURL string
	model   *template.Template
	index   *template.Template
}

// NewRenderer parses the built-in templates.
func NewRenderer(rootURL string) (*Renderer, error) {
	model, err := template.ParseFS(builtinTemplates, "templates/model.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse model template: %w", err)
	}
	index, err := template.ParseFS(builtinTemplates, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}
	return &Renderer{rootURL: rootURL, model: model, index: index}, nil
}

// RootURL returns the configured site root URL.
func (r *Renderer) RootURL() string { return r.rootURL }

// ModelPage renders one model page. The model's doc comment is treated as
// markdown and converted before templating.
func (r *Renderer) ModelPage(data PageData) ([]byte, error) {
	data.RootURL = r.rootURL
	var buf bytes.Buffer
	if err := r.model.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render model page %s: %w", data.BaseName, err)
	}
	return buf.Bytes(), nil
}

// RenderDoc converts a markdown doc comment to HTML for embedding in a page.
// An empty input yields empty output.
func RenderDoc(doc string) (template.HTML, error) {
	if doc == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(doc), &buf); err != nil {
		return "", fmt.Errorf("convert doc markdown: %w", err)
	}
	// goldmark output is sanitized commonmark HTML from our own sources.
	return template.HTML(buf.String()), nil // #nosec G203
}

// IndexPage renders the top-level listing from already sorted entries.
func (r *Renderer) IndexPage(entries []Entry) ([]byte, error) {
	data := indexData{RootURL: r.rootURL}
	for _, e := range entries {
		data.Entries = append(data.Entries, indexEntry{
			PageRelPath: e.PageRelPath,
			Namespace:   e.Model.Namespace(),
			Version:     e.Version,
		})
	}
	var buf bytes.Buffer
	if err := r.index.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render index page: %w", err)
	}
	return buf.Bytes(), nil
}
