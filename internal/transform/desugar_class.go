package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// DesugarClass lowers class definitions into method-table records and
// procedures. ozc's target corpus carries no class
// syntax in its AST — Oz classes are themselves sugar the parser never
// produces for this bootstrap subset — so this pass is the identity
// transform, kept as its own named stage so a future parser that does
// emit class nodes has a pipeline slot ready for it.
func DesugarClass(prog *symtab.Program, root ast.Statement) ast.Statement {
	return root
}
