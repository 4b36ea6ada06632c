package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ctosite/internal/toolchain/toolchaintest"
)

func entry(t *testing.T, namespace, version, page string) Entry {
	t.Helper()
	fake := toolchaintest.New("3.21.0")
	container := fake.NewContainer(false)
	m, err := fake.ModelFromText(container, toolchaintest.Source(namespace, ""), page)
	require.NoError(t, err)
	return Entry{PageRelPath: page, Model: m, Version: version}
}

func TestIndexSortsByNamespace(t *testing.T) {
	idx := NewIndex()
	idx.Append(entry(t, "z.model", "1.0.0", "z/model.html"))
	idx.Append(entry(t, "a.model", "2.0.0", "a/model.html"))
	idx.Append(entry(t, "m.model", "0.1.0", "m/model.html"))

	sorted := idx.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "a.model", sorted[0].Model.Namespace())
	assert.Equal(t, "m.model", sorted[1].Model.Namespace())
	assert.Equal(t, "z.model", sorted[2].Model.Namespace())
	assert.Equal(t, 3, idx.Len())
}

func TestIndexSortIsStableForEqualNamespaces(t *testing.T) {
	idx := NewIndex()
	idx.Append(entry(t, "a.model", "1.0.0", "first.html"))
	idx.Append(entry(t, "a.model", "2.0.0", "second.html"))
	sorted := idx.Sorted()
	assert.Equal(t, "first.html", sorted[0].PageRelPath)
	assert.Equal(t, "second.html", sorted[1].PageRelPath)
}

func TestModelPageRendering(t *testing.T) {
	r, err := NewRenderer("https://models.example.org")
	require.NoError(t, err)

	doc, err := RenderDoc("A **person** model.")
	require.NoError(t, err)

	page, err := r.ModelPage(PageData{
		Namespace:  "org.acme.person",
		Version:    "1.2.3",
		Toolchain:  "3.21.0",
		BaseName:   "person",
		SourceURL:  "person.cto",
		DiagramURL: "person.puml",
		DocHTML:    doc,
		Generators: []GeneratorLink{{Name: "TypeScript", Href: "person.ts.zip"}},
	})
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "org.acme.person")
	assert.Contains(t, html, "version 1.2.3")
	assert.Contains(t, html, "<strong>person</strong>")
	assert.Contains(t, html, `href="person.ts.zip"`)
	assert.Contains(t, html, `href="person.puml"`)
}

func TestModelPageOmitsEmptyDiagram(t *testing.T) {
	r, err := NewRenderer("https://models.example.org")
	require.NoError(t, err)
	page, err := r.ModelPage(PageData{Namespace: "org.acme", BaseName: "m", SourceURL: "m.cto"})
	require.NoError(t, err)
	assert.NotContains(t, string(page), "Diagram")
}

func TestRenderDocEmpty(t *testing.T) {
	doc, err := RenderDoc("")
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestAssembleWritesSortedIndexOnce(t *testing.T) {
	r, err := NewRenderer("https://models.example.org")
	require.NoError(t, err)
	out := t.TempDir()

	idx := NewIndex()
	idx.Append(entry(t, "z.model", "1.0.0", "z/model.html"))
	idx.Append(entry(t, "a.model", "1.0.0", "a/model.html"))

	require.NoError(t, NewAssembler(r).Assemble(out, idx))

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	html := string(data)
	assert.Less(t, strings.Index(html, "a.model"), strings.Index(html, "z.model"))
	assert.Contains(t, html, "https://models.example.org/a/model.html")
}
