// Package toolchaintest provides an in-memory fake compiler for pipeline
// tests. It understands just enough of the modeling language (a leading
// namespace declaration) to produce models with stable metadata; real parsing
// and validation live in the external compiler.
package toolchaintest

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/ctosite/internal/toolchain"
)

var namespaceRe = regexp.MustCompile(`(?m)^\s*namespace\s+(\S+)`)

// Unit is one output file a stub generator emits through the sink.
type Unit struct {
	Name  string
	Lines []string
}

// StubGenerator emits a fixed sequence of units and can be made to fail or
// panic partway through to exercise isolation paths.
type StubGenerator struct {
	Key       string
	Units     []Unit
	FailAfter int  // fail after emitting this many units; 0 disables
	Panic     bool // panic instead of returning an error
}

func (g *StubGenerator) Name() string { return g.Key }

// Compiler is a fake toolchain.Compiler with injectable failures.
type Compiler struct {
	Version    string
	Generators map[string]*StubGenerator
	DocText    string

	ParseErr   error // fails ParseAST
	CompileErr error // fails ModelFromText / ModelFromAST
	ResolveErr error // fails Container.ResolveExternal
	DiagramErr error
	DumpErr    error

	// LastContainer records the most recently constructed container for
	// assertions against registration calls.
	LastContainer *Container
}

// New returns a fake compiler with no generators configured.
func New(version string) *Compiler {
	return &Compiler{Version: version, Generators: map[string]*StubGenerator{}}
}

// WithGenerator registers a stub generator under its key.
func (c *Compiler) WithGenerator(g *StubGenerator) *Compiler {
	c.Generators[g.Key] = g
	return c
}

func (c *Compiler) NewContainer(strict bool) toolchain.Container {
	ct := &Container{compiler: c, Strict: strict}
	c.LastContainer = ct
	return ct
}

func (c *Compiler) ParseAST(source string) (toolchain.AST, error) {
	if c.ParseErr != nil {
		return nil, c.ParseErr
	}
	return map[string]any{"source": source}, nil
}

func (c *Compiler) ModelFromText(ct toolchain.Container, source, path string) (toolchain.Model, error) {
	return c.compile(ct, source, path)
}

func (c *Compiler) ModelFromAST(ct toolchain.Container, _ toolchain.AST, source, path string) (toolchain.Model, error) {
	return c.compile(ct, source, path)
}

func (c *Compiler) compile(ct toolchain.Container, source, path string) (toolchain.Model, error) {
	if c.CompileErr != nil {
		return nil, c.CompileErr
	}
	m := namespaceRe.FindStringSubmatch(source)
	if m == nil {
		return nil, fmt.Errorf("no namespace declaration in %s", path)
	}
	fc := ct.(*Container)
	if fc.compiler != c {
		return nil, fmt.Errorf("container belongs to a different compiler")
	}
	ns := m[1]
	return &Model{namespace: ns, registered: ns + ".cto", source: source, doc: c.DocText}, nil
}

func (c *Compiler) Generator(key string) (toolchain.Generator, bool) {
	g, ok := c.Generators[key]
	if !ok {
		return nil, false
	}
	return g, true
}

func (c *Compiler) Diagram(ct toolchain.Container, w io.Writer) error {
	if c.DiagramErr != nil {
		return c.DiagramErr
	}
	fc := ct.(*Container)
	fmt.Fprintln(w, "@startuml")
	for _, m := range fc.Models {
		fmt.Fprintf(w, "class %s\n", m.Namespace())
	}
	fmt.Fprintln(w, "@enduml")
	return nil
}

func (c *Compiler) ASTDump(m toolchain.Model, w io.Writer) error {
	if c.DumpErr != nil {
		return c.DumpErr
	}
	_, err := fmt.Fprintf(w, `{"namespace":%q}`, m.Namespace())
	return err
}

// Container records registration calls for assertions.
type Container struct {
	compiler *Compiler

	Strict          bool
	BootstrapAdded  bool
	Models          []toolchain.Model
	LegacyAdds      []string // names registered via the legacy arity
	CurrentAdds     []string // names registered via the current arity
	ResolvedCount   int
	AcceptedVisitor []string
}

func (ct *Container) AddBootstrapModel() error {
	ct.BootstrapAdded = true
	return nil
}

func (ct *Container) AddModelLegacy(m toolchain.Model, name string, _ bool) error {
	ct.Models = append(ct.Models, m)
	ct.LegacyAdds = append(ct.LegacyAdds, name)
	return nil
}

func (ct *Container) AddModel(m toolchain.Model, _ string, name string, _ bool) error {
	ct.Models = append(ct.Models, m)
	ct.CurrentAdds = append(ct.CurrentAdds, name)
	return nil
}

func (ct *Container) ResolveExternal(_ context.Context) error {
	if ct.compiler.ResolveErr != nil {
		return ct.compiler.ResolveErr
	}
	ct.ResolvedCount++
	return nil
}

func (ct *Container) Accept(g toolchain.Generator, sink toolchain.FileWriter) error {
	stub := g.(*StubGenerator)
	ct.AcceptedVisitor = append(ct.AcceptedVisitor, stub.Key)
	for i, u := range stub.Units {
		if stub.FailAfter > 0 && i >= stub.FailAfter {
			if stub.Panic {
				panic(fmt.Sprintf("generator %s blew up", stub.Key))
			}
			return fmt.Errorf("generator %s failed after %d units", stub.Key, stub.FailAfter)
		}
		if err := sink.OpenFile(u.Name); err != nil {
			return err
		}
		for _, line := range u.Lines {
			if err := sink.WriteLine(line); err != nil {
				return err
			}
		}
		if err := sink.CloseFile(); err != nil {
			return err
		}
	}
	return nil
}

// Model is the fake compiled model.
type Model struct {
	namespace  string
	registered string
	source     string
	doc        string
}

func (m *Model) Namespace() string      { return m.namespace }
func (m *Model) RegisteredName() string { return m.registered }
func (m *Model) SourceText() string     { return m.source }
func (m *Model) Doc() string            { return m.doc }

// Source builds a minimal model source with the given namespace and an
// optional version directive line.
func Source(namespace, directive string) string {
	var b strings.Builder
	if directive != "" {
		b.WriteString(directive + "\n")
	}
	b.WriteString("namespace " + namespace + "\n")
	b.WriteString("concept Thing { o String name }\n")
	return b.String()
}
