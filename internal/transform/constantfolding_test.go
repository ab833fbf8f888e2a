package transform

import (
	"testing"

	"github.com/ozboot/ozc/internal/ast"
)

func TestConstantFoldingCollapsesSequentialIntFeaturesToTuple(t *testing.T) {
	pos := ast.Position{}
	rec := ast.AtPos(pos, &ast.RecordExpr{
		Label: ast.AtomConst(pos, "point"),
		Fields: []ast.RecordField{
			{Feature: ast.IntConst(pos, 2), Value: ast.IntConst(pos, 20)},
			{Feature: ast.IntConst(pos, 1), Value: ast.IntConst(pos, 10)},
		},
	})
	bind := ast.AtPos(pos, &ast.BindStatement{
		Left:  ast.AtPos(pos, &ast.RawVariable{Name: "P"}),
		Right: rec,
	})

	folded := ConstantFolding(nil, bind)
	out, ok := folded.(*ast.BindStatement)
	if !ok {
		t.Fatalf("ConstantFolding returned %T, want *ast.BindStatement", folded)
	}
	tup, ok := out.Right.(*ast.TupleExpr)
	if !ok {
		t.Fatalf("Right is %T, want *ast.TupleExpr", out.Right)
	}
	if len(tup.Elements) != 2 {
		t.Fatalf("tuple has %d elements, want 2", len(tup.Elements))
	}
	v0, ok := tup.Elements[0].(*ast.Constant)
	if !ok || v0.Int != 10 {
		t.Fatalf("Elements[0] = %#v, want IntConst(10) (feature 1 goes first)", tup.Elements[0])
	}
	v1, ok := tup.Elements[1].(*ast.Constant)
	if !ok || v1.Int != 20 {
		t.Fatalf("Elements[1] = %#v, want IntConst(20) (feature 2 goes second)", tup.Elements[1])
	}
}

func TestConstantFoldingKeepsNonSequentialRecordAsRecord(t *testing.T) {
	pos := ast.Position{}
	rec := ast.AtPos(pos, &ast.RecordExpr{
		Label: ast.AtomConst(pos, "point"),
		Fields: []ast.RecordField{
			{Feature: ast.AtomConst(pos, "x"), Value: ast.IntConst(pos, 10)},
			{Feature: ast.AtomConst(pos, "y"), Value: ast.IntConst(pos, 20)},
		},
	})
	folded := ConstantFolding(nil, ast.AtPos(pos, &ast.RecordCreateStatement{
		Var:   ast.AtPos(pos, &ast.RawVariable{Name: "P"}),
		Label: rec.Label,
		Fields: rec.Fields,
	}))
	if _, ok := folded.(*ast.RecordCreateStatement); !ok {
		t.Fatalf("a record with atom features must stay a record, got %T", folded)
	}
}

func TestConstantFoldingKeepsSparseIntFeaturesAsRecord(t *testing.T) {
	pos := ast.Position{}
	folded := ConstantFolding(nil, ast.AtPos(pos, &ast.RecordCreateStatement{
		Var:   ast.AtPos(pos, &ast.RawVariable{Name: "P"}),
		Label: ast.AtomConst(pos, "point"),
		Fields: []ast.RecordField{
			{Feature: ast.IntConst(pos, 1), Value: ast.IntConst(pos, 10)},
			{Feature: ast.IntConst(pos, 3), Value: ast.IntConst(pos, 30)},
		},
	}))
	if _, ok := folded.(*ast.RecordCreateStatement); !ok {
		t.Fatalf("features 1,3 (not 1..n) must stay a record, got %T", folded)
	}
}
