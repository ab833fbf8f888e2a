// Package frontend declares the parser contract the rest of the
// compiler consumes: the Oz parser itself is an external collaborator,
// out of scope for this core. Only the interface shape is specified
// here; a real implementation lives outside this module and is linked
// into the driver separately.
package frontend

import (
	"io"

	"github.com/ozboot/ozc/internal/ast"
)

// Parser produces raw, pre-Namer AST from Oz source text: RawVariable
// references, RawLocalStatement declarations, and every other node
// family unchanged. The defines parameter threads `-D/--define`
// conditional compilation symbols through to the parser.
type Parser interface {
	// ParseStatement parses a full program or functor body from r,
	// attributing positions to file, honoring defines for any `ifdef`
	// style conditional text the concrete grammar supports.
	ParseStatement(r io.Reader, file string, defines []string) (ast.Statement, error)

	// ParseExpression parses a single expression from r: either a whole
	// file whose entire content is one functor literal (module and
	// base-env assembly mode), or one term evaluated in isolation by
	// tooling (a REPL-style caller, say).
	ParseExpression(r io.Reader, file string, defines []string) (ast.Expression, error)
}

// ParseError wraps a parser failure with the position it occurred at,
// matching the design: "the parser surfaces a message with a
// position; the driver prints it and exits with code 2."
type ParseError struct {
	Pos ast.Position
	Message string
}

func (e *ParseError) Error() string {
	return e.Pos.String() + ": " + e.Message
}
