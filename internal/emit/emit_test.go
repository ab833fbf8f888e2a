package emit

import (
	"strings"
	"testing"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/codegen"
)

func TestOpcodeLiteralMove(t *testing.T) {
	op := &codegen.Opcode{
		Code: codegen.OpMove,
		Dst:  codegen.Reg{Class: codegen.RegX, Index: 1},
		Src:  codegen.Reg{Class: codegen.RegX, Index: 0},
	}
	got := opcodeLiteral(op)
	want := "ByteCode::Move(X(1), X(0))"
	if got != want {
		t.Fatalf("opcodeLiteral(Move) = %q, want %q", got, want)
	}
}

func TestOpcodeLiteralCallBuiltinListsRegisters(t *testing.T) {
	op := &codegen.Opcode{
		Code:  codegen.OpCallBuiltin,
		Const: codegen.Reg{Class: codegen.RegK, Index: 2},
		Regs:  []codegen.Reg{{Class: codegen.RegX, Index: 0}, {Class: codegen.RegX, Index: 1}},
	}
	got := opcodeLiteral(op)
	want := "ByteCode::CallBuiltin(K(2), {X(0), X(1)})"
	if got != want {
		t.Fatalf("opcodeLiteral(CallBuiltin) = %q, want %q", got, want)
	}
}

func TestOpcodeLiteralReturnHasNoOperands(t *testing.T) {
	got := opcodeLiteral(&codegen.Opcode{Code: codegen.OpReturn})
	if got != "ByteCode::Return()" {
		t.Fatalf("opcodeLiteral(Return) = %q", got)
	}
}

func TestOpcodeLiteralMakeTupleOmitsLabelWhenZero(t *testing.T) {
	op := &codegen.Opcode{
		Code: codegen.OpMakeTuple,
		Dst:  codegen.Reg{Class: codegen.RegX, Index: 0},
		Regs: []codegen.Reg{{Class: codegen.RegX, Index: 1}},
	}
	got := opcodeLiteral(op)
	if !strings.Contains(got, "MakeTuple(X(0), 0, {X(1)})") {
		t.Fatalf("opcodeLiteral(MakeTuple, no label) = %q", got)
	}
}

func TestConstantInitAtomEscapesQuotes(t *testing.T) {
	k := ast.AtomConst(ast.Position{}, `say "hi"`)
	got := constantInit(0, k, nil, nil)
	if !strings.Contains(got, `\"hi\"`) {
		t.Fatalf("constantInit(atom) did not escape quotes: %q", got)
	}
}

func TestConstantInitInt(t *testing.T) {
	k := ast.IntConst(ast.Position{}, 42)
	got := constantInit(3, k, nil, nil)
	want := "codeArea->constants[3] = trivialBuild(vm, OZ_makeInt(vm, 42));"
	if got != want {
		t.Fatalf("constantInit(int) = %q, want %q", got, want)
	}
}

func TestConstantInitUnit(t *testing.T) {
	k := ast.UnitConst(ast.Position{})
	got := constantInit(0, k, nil, nil)
	if !strings.Contains(got, "OZ_unit(vm)") {
		t.Fatalf("constantInit(unit) = %q", got)
	}
}

func TestCppStringEscapesBackslashAndNewline(t *testing.T) {
	got := cppString("a\\b\nc")
	want := `"a\\b\nc"`
	if got != want {
		t.Fatalf("cppString = %q, want %q", got, want)
	}
}

func TestRegListJoinsWithCommaSpace(t *testing.T) {
	got := regList([]codegen.Reg{{Class: codegen.RegY, Index: 0}, {Class: codegen.RegG, Index: 2}})
	if got != "Y(0), G(2)" {
		t.Fatalf("regList = %q, want %q", got, "Y(0), G(2)")
	}
}
