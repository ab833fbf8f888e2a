package transform

import (
	"testing"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

func TestNamerResolvesBoundVariable(t *testing.T) {
	prog := symtab.NewProgram()
	pos := ast.Position{}
	root := ast.AtPos(pos, &ast.RawLocalStatement{
		Decls: []string{"X"},
		Body: ast.AtPos(pos, &ast.BindStatement{
			Left:  ast.AtPos(pos, &ast.RawVariable{Name: "X"}),
			Right: ast.IntConst(pos, 1),
		}),
	})

	Namer(prog, root)
	if prog.Errors.HasErrors() {
		t.Fatalf("unexpected errors: %v", prog.Errors.Report(nil))
	}
}

func TestNamerDuplicateDeclarationInSameScopeIsAnError(t *testing.T) {
	prog := symtab.NewProgram()
	pos := ast.Position{}
	root := ast.AtPos(pos, &ast.RawLocalStatement{
		Decls: []string{"X", "X"},
		Body:  ast.AtPos(pos, &ast.SkipStatement{}),
	})

	Namer(prog, root)
	if !prog.Errors.HasErrors() {
		t.Fatal("expected a duplicate-declaration error, got none")
	}
}

func TestNamerUnresolvedReferenceIsAnError(t *testing.T) {
	prog := symtab.NewProgram()
	pos := ast.Position{}
	root := ast.AtPos(pos, &ast.BindStatement{
		Left:  ast.AtPos(pos, &ast.RawVariable{Name: "Undeclared"}),
		Right: ast.IntConst(pos, 1),
	})

	Namer(prog, root)
	if !prog.Errors.HasErrors() {
		t.Fatal("expected an unresolved-reference error, got none")
	}
}

func TestNamerInnerScopeCannotSeeSiblingLocal(t *testing.T) {
	prog := symtab.NewProgram()
	pos := ast.Position{}
	// two independent `local` blocks in sequence: the second must not
	// see the first's declaration once its scope has closed.
	root := ast.AtPos(pos, &ast.SeqStatement{Stmts: []ast.Statement{
		ast.AtPos(pos, &ast.RawLocalStatement{
			Decls: []string{"X"},
			Body:  ast.AtPos(pos, &ast.SkipStatement{}),
		}),
		ast.AtPos(pos, &ast.BindStatement{
			Left:  ast.AtPos(pos, &ast.RawVariable{Name: "X"}),
			Right: ast.IntConst(pos, 1),
		}),
	}})

	Namer(prog, root)
	if !prog.Errors.HasErrors() {
		t.Fatal("expected X to be unresolved once its declaring scope closed")
	}
}
