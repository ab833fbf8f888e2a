package transform

import (
	"testing"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// findVariableNamed walks e looking for a *ast.Variable whose symbol
// has the given name, returning it or nil.
func findVariableNamed(e ast.Expression, name string) *ast.Variable {
	switch v := e.(type) {
	case *ast.Variable:
		if v.Symbol.Name == name {
			return v
		}
	case *ast.RecordExpr:
		for _, f := range v.Fields {
			if found := findVariableNamed(f.Value, name); found != nil {
				return found
			}
		}
	}
	return nil
}

func TestDesugarFunctorReusesNamerSymbolForImport(t *testing.T) {
	prog := symtab.NewProgram()
	pos := ast.Position{}

	functor := ast.AtPos(pos, &ast.FunctorExpression{
		Name: "Demo",
		Imports: []ast.ImportSpec{{LocalName: "M", ModuleURL: "x.ozf"}},
		Exports: []ast.ExportSpec{
			{Feature: "m", Local: ast.AtPos(pos, &ast.RawVariable{Name: "M"})},
		},
	})
	root := ast.AtPos(pos, &ast.BindStatement{
		Left: ast.NewVariable(pos, symtab.NewVariableSymbol(prog, "Out")),
		Right: functor,
	})

	named := Namer(prog, root)
	if prog.Errors.HasErrors() {
		t.Fatalf("Namer reported errors: %v", prog.Errors.Report(nil))
	}

	bind, ok := named.(*ast.BindStatement)
	if !ok {
		t.Fatalf("Namer returned %T, want *ast.BindStatement", named)
	}
	namedFunctor, ok := bind.Right.(*ast.FunctorExpression)
	if !ok {
		t.Fatalf("bind's right-hand side is %T, want *ast.FunctorExpression", bind.Right)
	}
	if namedFunctor.Imports[0].Symbol == nil {
		t.Fatal("Namer left Imports[0].Symbol nil")
	}
	importSym := namedFunctor.Imports[0].Symbol
	if importSym.Owner() != nil {
		t.Fatal("Namer should leave the import symbol unowned; DesugarFunctor places it")
	}

	exportVar, ok := namedFunctor.Exports[0].Local.(*ast.Variable)
	if !ok {
		t.Fatalf("export's Local is %T, want *ast.Variable", namedFunctor.Exports[0].Local)
	}
	if exportVar.Symbol != importSym {
		t.Fatal("export should resolve to the same symbol Imports[0].Symbol carries")
	}

	desugared := DesugarFunctor(prog, named)
	if prog.Errors.HasErrors() {
		t.Fatalf("DesugarFunctor reported errors: %v", prog.Errors.Report(nil))
	}
	if importSym.Owner() == nil {
		t.Fatal("DesugarFunctor should place the import symbol in the functor's abstraction")
	}

	desugaredBind, ok := desugared.(*ast.BindStatement)
	if !ok {
		t.Fatalf("DesugarFunctor returned %T, want *ast.BindStatement", desugared)
	}
	fun, ok := desugaredBind.Right.(*ast.FunExpression)
	if !ok {
		t.Fatalf("desugared functor is %T, want *ast.FunExpression", desugaredBind.Right)
	}
	if importSym.Owner() != fun.Abstraction {
		t.Fatal("import symbol should be owned by the functor's own abstraction")
	}

	found := findVariableNamed(fun.Result, "M")
	if found == nil {
		t.Fatal("export record's value should reference the import symbol by name M")
	}
	if found.Symbol != importSym {
		t.Fatal("export record's value should be the exact same symbol the import-record bind produced, not a disconnected copy")
	}
}
