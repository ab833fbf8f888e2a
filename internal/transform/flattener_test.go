package transform

import (
	"testing"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// captureRoot builds `local X Foo in local P in P = proc {$} {Foo X} end end end` so
// the nested proc's body references the outer local X, making X free
// inside the proc and forcing closure conversion to capture it.
func captureRoot(pos ast.Position) ast.Statement {
	innerCall := ast.AtPos(pos, &ast.CallStatement{
		Proc: ast.AtPos(pos, &ast.RawVariable{Name: "Foo"}),
		Args: []ast.Expression{ast.AtPos(pos, &ast.RawVariable{Name: "X"})},
	})
	proc := ast.AtPos(pos, &ast.ProcExpression{Body: innerCall})
	bindProc := ast.AtPos(pos, &ast.RawLocalStatement{
		Decls: []string{"P"},
		Body: ast.AtPos(pos, &ast.BindStatement{
			Left:  ast.AtPos(pos, &ast.RawVariable{Name: "P"}),
			Right: proc,
		}),
	})
	return ast.AtPos(pos, &ast.RawLocalStatement{
		Decls: []string{"X", "Foo"},
		Body:  bindProc,
	})
}

func TestFlattenerHoistsNestedProcAndCapturesFreeVariable(t *testing.T) {
	prog := symtab.NewProgram()
	pos := ast.Position{}
	root := Namer(prog, captureRoot(pos))
	if prog.Errors.HasErrors() {
		t.Fatalf("Namer reported errors: %v", prog.Errors.Report(nil))
	}

	Flattener(prog, root)
	if prog.Errors.HasErrors() {
		t.Fatalf("Flattener reported errors: %v", prog.Errors.Report(nil))
	}

	if len(prog.Flat) != 1 {
		t.Fatalf("prog.Flat has %d abstractions, want 1", len(prog.Flat))
	}
	abs := prog.Flat[0]
	if len(abs.Globals) != 2 {
		t.Fatalf("hoisted abstraction captured %d globals, want 2 (X and Foo)", len(abs.Globals))
	}
	names := map[string]bool{abs.Globals[0].Name: true, abs.Globals[1].Name: true}
	if !names["X"] || !names["Foo"] {
		t.Fatalf("captured globals = %v, want X and Foo", names)
	}
}
