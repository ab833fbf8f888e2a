// Package ast defines the closed algebraic tree the pipeline passes
// consume and produce: statements, expressions, patterns, and the
// functor-specific node shapes, each carrying a source position.
package ast

import "github.com/ozboot/ozc/internal/diag"

// Position aliases diag.Position: every AST node's source location is
// the same (file, line, column, length) the diagnostics engine renders.
type Position = diag.Position

// Node is the contract shared by every AST node.
type Node interface {
	Pos() Position
	SetPos(Position)
}

// posNode is embedded by every concrete node to supply Pos/SetPos
// without repeating the field and methods on each type.
type posNode struct {
	pos Position
}

func (n *posNode) Pos() Position { return n.pos }
func (n *posNode) SetPos(p Position) { n.pos = p }

// Statement is any AST node usable as a statement. IsStatement is
// exported (rather than the prior code's unexported statementNode) solely
// so concrete types here satisfy symtab.Statement across package
// boundaries without symtab importing ast.
type Statement interface {
	Node
	IsStatement()
}

// StmtNode is embedded by every concrete statement type to satisfy
// Statement's marker method.
type StmtNode struct{ posNode }

func (StmtNode) IsStatement() {}

// Expression is any AST node usable as an expression.
type Expression interface {
	Node
	isExpression()
}

// ExprNode is embedded by every concrete expression type.
type ExprNode struct{ posNode }

func (ExprNode) isExpression() {}

// Pattern is any AST node usable in a case arm.
type Pattern interface {
	Node
	isPattern()
}

// PatNode is embedded by every concrete pattern type.
type PatNode struct{ posNode }

func (PatNode) isPattern() {}

// AtPos stamps pos onto a freshly built node and returns it with its
// concrete type preserved, so callers can keep chaining field access
// without a type assertion. This is the `atPos(node){…}` builder from
// the design, expressed with a generic instead of a closure since Go
// nodes are built by literal, not by side-effecting construction.
func AtPos[T Node](pos Position, n T) T {
	n.SetPos(pos)
	return n
}
