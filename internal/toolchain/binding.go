// Package toolchain models the versioned bindings to the external model
// compiler and resolves, per source file, which binding must process it.
//
// The compiler itself is an external collaborator: packages that provide a
// concrete implementation register it with RegisterCompiler (usually from an
// init function), mirroring the database/sql driver pattern.
package toolchain

import (
	"context"
	"io"
)

// Capabilities describes the version-conditional behavior the orchestrator
// needs. The flags are registry data loaded with each entry; the pipeline
// never compares version strings to decide behavior.
type Capabilities struct {
	// ASTParsing means source text is parsed to a metamodel AST before model
	// construction. Bindings without it use legacy text-only parsing and the
	// legacy registration arity.
	ASTParsing bool
	// BootstrapSchema means the binding's line requires a fixed system schema
	// pre-registered into every container before compilation.
	BootstrapSchema bool
	// StrictMode means containers must treat unresolved references as hard
	// errors rather than warnings.
	StrictMode bool
}

// Binding is one versioned instance of the external compiler API surface.
// Immutable once loaded into a Registry.
type Binding struct {
	Version      string
	Capabilities Capabilities
	Compiler     Compiler
}

// Compiler is the API surface consumed from one compiler version.
type Compiler interface {
	// NewContainer constructs an empty model container. strict enables
	// strict-mode reference resolution.
	NewContainer(strict bool) Container
	// ParseAST parses source text into a metamodel AST. Only called when the
	// binding's Capabilities.ASTParsing is set.
	ParseAST(source string) (AST, error)
	// ModelFromText constructs a compiled model using legacy text parsing.
	ModelFromText(c Container, source, path string) (Model, error)
	// ModelFromAST constructs a compiled model from a pre-parsed AST.
	ModelFromAST(c Container, ast AST, source, path string) (Model, error)
	// Generator looks up a code generator by visitor key. ok is false when
	// this compiler line does not ship that generator; callers treat the
	// absence as a no-op, not an error.
	Generator(key string) (Generator, bool)
	// Diagram writes a diagram rendering of the container to w.
	Diagram(c Container, w io.Writer) error
	// ASTDump serializes the model's syntax tree to w.
	ASTDump(m Model, w io.Writer) error
}

// Container is one compiler container holding registered models.
type Container interface {
	// AddBootstrapModel pre-registers the fixed system schema required by
	// legacy compiler lines.
	AddBootstrapModel() error
	// AddModelLegacy registers a model using the legacy (model, name,
	// validate) arity.
	AddModelLegacy(m Model, name string, validate bool) error
	// AddModel registers a model using the current (model, source, name,
	// validate) arity.
	AddModel(m Model, source, name string, validate bool) error
	// ResolveExternal fetches and registers externally referenced schemas.
	ResolveExternal(ctx context.Context) error
	// Accept drives the generator over every registered model, writing output
	// units through the sink.
	Accept(g Generator, sink FileWriter) error
}

// Model is the compiled, in-memory representation of one namespace.
type Model interface {
	// Namespace returns the model's namespace identifier.
	Namespace() string
	// RegisteredName returns the name the model was registered under,
	// including any embedded semantic version suffix (e.g. "person@1.2.3.cto").
	RegisteredName() string
	// SourceText returns the raw source the model was compiled from.
	SourceText() string
	// Doc returns the model's documentation comment, markdown formatted.
	Doc() string
}

// AST is an opaque metamodel syntax tree handle.
type AST any

// Generator is an opaque handle to one code-generation visitor.
type Generator interface {
	Name() string
}

// FileWriter is the write sink a generator emits output units through.
// Implementations decide what "closing" a unit means; the archive sink
// redirects it into a growable archive instead of a standalone file.
type FileWriter interface {
	OpenFile(name string) error
	WriteLine(line string) error
	CloseFile() error
}
