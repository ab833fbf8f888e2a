package transform

import (
	"testing"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

func TestUnnesterHoistsNestedRecordArgumentIntoABind(t *testing.T) {
	prog := symtab.NewProgram()
	prog.TopLevel = symtab.NewTopLevelAbstraction(nil)
	pos := ast.Position{}

	nestedRecord := ast.AtPos(pos, &ast.RecordExpr{
		Label: ast.AtomConst(pos, "point"),
		Fields: []ast.RecordField{
			{Feature: ast.IntConst(pos, 1), Value: ast.IntConst(pos, 10)},
		},
	})
	call := ast.AtPos(pos, &ast.CallStatement{
		Proc: ast.AtPos(pos, &ast.Variable{Symbol: symtab.NewVariableSymbol(prog, "Foo")}),
		Args: []ast.Expression{nestedRecord},
	})

	out := Unnester(prog, call)
	seq, ok := out.(*ast.SeqStatement)
	if !ok {
		t.Fatalf("Unnester returned %T, want *ast.SeqStatement (a bind followed by the call)", out)
	}
	if len(seq.Stmts) != 2 {
		t.Fatalf("sequence has %d statements, want 2 (one bind, then the call)", len(seq.Stmts))
	}

	bind, ok := seq.Stmts[0].(*ast.BindStatement)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.BindStatement", seq.Stmts[0])
	}
	if _, ok := bind.Right.(*ast.RecordExpr); !ok {
		t.Fatalf("bind's right-hand side is %T, want *ast.RecordExpr", bind.Right)
	}

	flatCall, ok := seq.Stmts[1].(*ast.CallStatement)
	if !ok {
		t.Fatalf("second statement is %T, want *ast.CallStatement", seq.Stmts[1])
	}
	if _, ok := flatCall.Args[0].(*ast.Variable); !ok {
		t.Fatalf("call argument is %T, want *ast.Variable (the synthetic binding)", flatCall.Args[0])
	}
}

func TestUnnesterHoistsBareProcLiteralArgumentIntoABind(t *testing.T) {
	prog := symtab.NewProgram()
	prog.TopLevel = symtab.NewTopLevelAbstraction(nil)
	pos := ast.Position{}

	proc := ast.AtPos(pos, &ast.ProcExpression{Abstraction: symtab.NewAbstraction(), Body: ast.AtPos(pos, &ast.SkipStatement{})})
	call := ast.AtPos(pos, &ast.CallStatement{
		Proc: ast.AtPos(pos, &ast.Variable{Symbol: symtab.NewVariableSymbol(prog, "ForAll")}),
		Args: []ast.Expression{ast.AtPos(pos, &ast.Variable{Symbol: symtab.NewVariableSymbol(prog, "L")}), proc},
	})

	out := Unnester(prog, call)
	seq, ok := out.(*ast.SeqStatement)
	if !ok {
		t.Fatalf("Unnester returned %T, want *ast.SeqStatement (a bind followed by the call)", out)
	}
	if len(seq.Stmts) != 2 {
		t.Fatalf("sequence has %d statements, want 2 (one bind, then the call)", len(seq.Stmts))
	}

	bind, ok := seq.Stmts[0].(*ast.BindStatement)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.BindStatement", seq.Stmts[0])
	}
	if _, ok := bind.Right.(*ast.ProcExpression); !ok {
		t.Fatalf("bind's right-hand side is %T, want *ast.ProcExpression", bind.Right)
	}

	flatCall, ok := seq.Stmts[1].(*ast.CallStatement)
	if !ok {
		t.Fatalf("second statement is %T, want *ast.CallStatement", seq.Stmts[1])
	}
	if _, ok := flatCall.Args[1].(*ast.Variable); !ok {
		t.Fatalf("proc-literal argument is %T, want *ast.Variable (the synthetic binding)", flatCall.Args[1])
	}
}

func TestUnnesterLeavesTrivialArgumentsUntouched(t *testing.T) {
	prog := symtab.NewProgram()
	prog.TopLevel = symtab.NewTopLevelAbstraction(nil)
	pos := ast.Position{}
	call := ast.AtPos(pos, &ast.CallStatement{
		Proc: ast.AtPos(pos, &ast.Variable{Symbol: symtab.NewVariableSymbol(prog, "Foo")}),
		Args: []ast.Expression{ast.IntConst(pos, 5)},
	})

	out := Unnester(prog, call)
	flatCall, ok := out.(*ast.CallStatement)
	if !ok {
		t.Fatalf("Unnester returned %T, want *ast.CallStatement (no binds needed)", out)
	}
	if flatCall.Args[0].(*ast.Constant).Int != 5 {
		t.Fatal("trivial argument should pass through unchanged")
	}
}
