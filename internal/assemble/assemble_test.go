package assemble

import (
	"testing"

	"github.com/ozboot/ozc/internal/ast"
)

func TestModuleURLUsesSystemAllowList(t *testing.T) {
	if got, want := ModuleURL("Base"), "x-oz://system/Base.ozf"; got != want {
		t.Fatalf("ModuleURL(Base) = %q, want %q", got, want)
	}
	if got, want := ModuleURL("MyApp"), "MyApp.ozf"; got != want {
		t.Fatalf("ModuleURL(MyApp) = %q, want %q", got, want)
	}
}

func TestModuleBuildsRegisterFunctorCall(t *testing.T) {
	pos := ast.Position{File: "Foo.oz"}
	functor := &ast.FunctorExpression{Name: "Foo"}
	stmt := Module(pos, "Foo.ozf", functor)

	call, ok := stmt.(*ast.CallStatement)
	if !ok {
		t.Fatalf("Module returned %T, want *ast.CallStatement", stmt)
	}
	if len(call.Args) != 2 {
		t.Fatalf("registerFunctor call has %d args, want 2", len(call.Args))
	}
	url, ok := call.Args[0].(*ast.Constant)
	if !ok || url.Kind != ast.ConstAtom || url.Atom != "Foo.ozf" {
		t.Fatalf("first arg is not the atom 'Foo.ozf': %#v", call.Args[0])
	}
	if call.Args[1] != ast.Expression(functor) {
		t.Fatal("second arg is not the functor passed in")
	}
}

func TestLinkerBuildsRunCall(t *testing.T) {
	pos := ast.Position{File: "M.ozf"}
	stmt := Linker(pos, "M.ozf")
	call, ok := stmt.(*ast.CallStatement)
	if !ok {
		t.Fatalf("Linker returned %T, want *ast.CallStatement", stmt)
	}
	if len(call.Args) != 1 {
		t.Fatalf("run call has %d args, want 1", len(call.Args))
	}
}

func TestMergeBaseFunctorsConcatenatesExports(t *testing.T) {
	f1 := &ast.FunctorExpression{
		Name:    "Base1",
		Exports: []ast.ExportSpec{{Feature: "A"}},
	}
	f2 := &ast.FunctorExpression{
		Exports: []ast.ExportSpec{{Feature: "B"}},
	}
	merged := mergeBaseFunctors([]*ast.FunctorExpression{f1, f2})

	if merged.Name != "Base1" {
		t.Fatalf("merged.Name = %q, want %q (first non-empty)", merged.Name, "Base1")
	}
	if len(merged.Exports) != 2 {
		t.Fatalf("merged has %d exports, want 2", len(merged.Exports))
	}
	decls := BaseDeclarations(merged)
	if len(decls) != 2 || decls[0] != "A" || decls[1] != "B" {
		t.Fatalf("BaseDeclarations = %v, want [A B]", decls)
	}

	// mutating the merge result must not alias either input's slice.
	merged.Exports[0].Feature = "Changed"
	if f1.Exports[0].Feature != "A" {
		t.Fatal("mergeBaseFunctors aliased f1's Exports slice")
	}
}

func TestMergeStatementConcatenatesRawLocals(t *testing.T) {
	pos := ast.Position{}
	a := ast.AtPos(pos, &ast.RawLocalStatement{Decls: []string{"X"}})
	b := ast.AtPos(pos, &ast.RawLocalStatement{Decls: []string{"Y"}})
	merged := mergeStatement(a, b)

	local, ok := merged.(*ast.RawLocalStatement)
	if !ok {
		t.Fatalf("mergeStatement returned %T, want *ast.RawLocalStatement", merged)
	}
	if len(local.Decls) != 2 || local.Decls[0] != "X" || local.Decls[1] != "Y" {
		t.Fatalf("merged.Decls = %v, want [X Y]", local.Decls)
	}
}

func TestMergeStatementNilHandling(t *testing.T) {
	pos := ast.Position{}
	a := ast.AtPos(pos, &ast.RawLocalStatement{Decls: []string{"X"}})
	if mergeStatement(nil, a) != ast.Statement(a) {
		t.Fatal("mergeStatement(nil, a) should return a unchanged")
	}
	if mergeStatement(a, nil) != ast.Statement(a) {
		t.Fatal("mergeStatement(a, nil) should return a unchanged")
	}
}
