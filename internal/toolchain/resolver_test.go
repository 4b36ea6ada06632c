package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(versions []string, def string) *Registry {
	var entries []*Binding
	var d *Binding
	for _, v := range versions {
		b := &Binding{Version: v}
		entries = append(entries, b)
		if v == def {
			d = b
		}
	}
	return NewRegistry(d, entries...)
}

func TestResolveDirectivePicksFirstSatisfyingEntry(t *testing.T) {
	r := testRegistry([]string{"0.82.11", "2.6.0", "3.21.0"}, "3.21.0")

	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"caret legacy", "concerto version \"^0.82.0\"\nnamespace org.acme", "0.82.11"},
		{"caret v2", "concerto version \"^2.0.0\"\nnamespace org.acme", "2.6.0"},
		{"wide range prefers registry order", "concerto version \">=0.80.0\"\nnamespace org.acme", "0.82.11"},
		{"requires comment", "/* requires: concerto-core:^2.0.0 */\nnamespace org.acme", "2.6.0"},
		{"embedded whitespace stripped", "concerto version \" ^2.0.0 \"\nnamespace org.acme", "2.6.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Resolve(r, tc.source)
			require.NotNil(t, b)
			assert.Equal(t, tc.want, b.Version)
		})
	}
}

func TestResolveCompoundRange(t *testing.T) {
	// 3.21.0 sits first in registry order; a compound range that excludes 3.x
	// must skip it and select 2.6.0 in both directive forms.
	r := testRegistry([]string{"3.21.0", "2.6.0"}, "3.21.0")

	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"structured", "concerto version \">=2.0.0 <3.0.0\"\nnamespace org.acme", "2.6.0"},
		{"requires comment", "/* requires: concerto-core:>=2.0.0 <3.0.0 */\nnamespace org.acme", "2.6.0"},
		{"requires line comment", "// requires: concerto-core:>=2.0.0 <3.0.0\nnamespace org.acme", "2.6.0"},
		{"extra internal whitespace", "concerto version \" >=2.0.0   <3.0.0 \"\nnamespace org.acme", "2.6.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Resolve(r, tc.source)
			require.NotNil(t, b)
			assert.Equal(t, tc.want, b.Version)
		})
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := testRegistry([]string{"0.82.11", "2.6.0", "3.21.0"}, "3.21.0")

	cases := []struct {
		name   string
		source string
	}{
		{"no directive", "namespace org.acme"},
		{"unsatisfied range", "concerto version \"^9.0.0\"\nnamespace org.acme"},
		{"malformed range", "concerto version \"not-a-range!!\"\nnamespace org.acme"},
		{"empty range", "concerto version \"\"\nnamespace org.acme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, "3.21.0", Resolve(r, tc.source).Version)
		})
	}
}

func TestResolveDefaultWinsWhenOnlyOtherEntriesExist(t *testing.T) {
	// Registry holds only 2.0.0; the default is a separate 3.0.0 binding.
	def := &Binding{Version: "3.0.0"}
	r := NewRegistry(def, &Binding{Version: "2.0.0"})
	assert.Equal(t, "3.0.0", Resolve(r, "namespace org.acme").Version)
}

func TestResolveIsDeterministic(t *testing.T) {
	r := testRegistry([]string{"2.6.0", "3.21.0"}, "3.21.0")
	src := "concerto version \"^2.0.0\"\nnamespace org.acme"
	first := Resolve(r, src)
	for i := 0; i < 5; i++ {
		assert.Same(t, first, Resolve(r, src))
	}
}
