package toolchain

import (
	"fmt"
	"sort"
	"sync"

	"git.home.luguber.info/inful/ctosite/internal/config"
)

var (
	compilersMu sync.RWMutex
	compilers   = make(map[string]Compiler)
)

// RegisterCompiler makes a compiler implementation available under the given
// version identifier. It is intended to be called from init functions of
// binding packages; registering the same version twice panics.
func RegisterCompiler(version string, c Compiler) {
	compilersMu.Lock()
	defer compilersMu.Unlock()
	if c == nil {
		panic("toolchain: RegisterCompiler with nil compiler")
	}
	if _, dup := compilers[version]; dup {
		panic("toolchain: RegisterCompiler called twice for version " + version)
	}
	compilers[version] = c
}

// RegisteredCompilers returns the sorted version identifiers of all
// registered compiler implementations.
func RegisteredCompilers() []string {
	compilersMu.RLock()
	defer compilersMu.RUnlock()
	versions := make([]string, 0, len(compilers))
	for v := range compilers {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

func compilerFor(version string) (Compiler, bool) {
	compilersMu.RLock()
	defer compilersMu.RUnlock()
	c, ok := compilers[version]
	return c, ok
}

// Registry holds the available bindings in insertion order plus a designated
// default. Loaded once at process start and read-only afterwards.
type Registry struct {
	entries []*Binding
	def     *Binding
}

// NewRegistry builds a registry from entries in order. Exactly one entry must
// be marked default by the caller via def.
func NewRegistry(def *Binding, entries ...*Binding) *Registry {
	return &Registry{entries: entries, def: def}
}

// FromConfig builds a registry from configured toolchain entries, wiring each
// to its registered compiler implementation. An entry without a registered
// compiler is an error: a registry that silently drops versions would change
// resolution order.
func FromConfig(entries []config.ToolchainEntry) (*Registry, error) {
	r := &Registry{}
	for _, e := range entries {
		c, ok := compilerFor(e.Version)
		if !ok {
			return nil, fmt.Errorf("toolchain: no compiler registered for version %s", e.Version)
		}
		b := &Binding{
			Version: e.Version,
			Capabilities: Capabilities{
				ASTParsing:      e.ASTParsing,
				BootstrapSchema: e.BootstrapSchema,
				StrictMode:      e.StrictMode,
			},
			Compiler: c,
		}
		r.entries = append(r.entries, b)
		if e.Default {
			r.def = b
		}
	}
	if r.def == nil {
		return nil, fmt.Errorf("toolchain: registry has no default binding")
	}
	return r, nil
}

// ResolutionRegistry builds a registry suitable for version resolution only:
// bindings carry versions and capabilities but no compiler. Used by commands
// that inspect sources without compiling them.
func ResolutionRegistry(entries []config.ToolchainEntry) *Registry {
	r := &Registry{}
	for _, e := range entries {
		b := &Binding{
			Version: e.Version,
			Capabilities: Capabilities{
				ASTParsing:      e.ASTParsing,
				BootstrapSchema: e.BootstrapSchema,
				StrictMode:      e.StrictMode,
			},
		}
		r.entries = append(r.entries, b)
		if e.Default {
			r.def = b
		}
	}
	if r.def == nil && len(r.entries) > 0 {
		r.def = r.entries[len(r.entries)-1]
	}
	return r
}

// Entries returns the bindings in insertion order.
func (r *Registry) Entries() []*Binding { return r.entries }

// Default returns the designated default binding.
func (r *Registry) Default() *Binding { return r.def }

// Lookup returns the binding with the exact version identifier.
func (r *Registry) Lookup(version string) (*Binding, bool) {
	for _, b := range r.entries {
		if b.Version == version {
			return b, true
		}
	}
	return nil, false
}
