package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// ConstantFolding resolves the record-vs-tuple representation
// decision: a record whose features are exactly the positive integers
// 1..n collapses to a TupleExpr. It does not evaluate operations on
// constant operands, and no record or tuple literal is reduced to a
// single Constant, even when its label and values are all Constants.
func ConstantFolding(prog *symtab.Program, root ast.Statement) ast.Statement {
	f := &constantFolder{}
	return f.stmt(root)
}

type constantFolder struct{}

func (f *constantFolder) stmt(s ast.Statement) ast.Statement {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.SeqStatement:
		out := make([]ast.Statement, len(s.Stmts))
		for i, c := range s.Stmts {
			out[i] = f.stmt(c)
		}
		return ast.AtPos(s.Pos(), &ast.SeqStatement{Stmts: out})
	case *ast.LocalStatement:
		return ast.AtPos(s.Pos(), &ast.LocalStatement{Decls: s.Decls, Body: f.stmt(s.Body)})
	case *ast.BindStatement:
		return ast.AtPos(s.Pos(), &ast.BindStatement{Left: s.Left, Right: f.expr(s.Right)})
	case *ast.CallStatement:
		args := make([]ast.Expression, len(s.Args))
		for i, a := range s.Args {
			args[i] = f.expr(a)
		}
		return ast.AtPos(s.Pos(), &ast.CallStatement{Proc: f.expr(s.Proc), Args: args})
	case *ast.IfStatement:
		return ast.AtPos(s.Pos(), &ast.IfStatement{Cond: f.expr(s.Cond), Then: f.stmt(s.Then), Else: f.stmt(s.Else)})
	case *ast.RecordCreateStatement:
		return f.recordCreate(s)
	case *ast.ThreadStatement:
		return ast.AtPos(s.Pos(), &ast.ThreadStatement{Body: f.stmt(s.Body)})
	case *ast.TryStatement:
		return ast.AtPos(s.Pos(), &ast.TryStatement{Body: f.stmt(s.Body), ExnName: s.ExnName, ExnVar: s.ExnVar, Catch: f.stmt(s.Catch)})
	case *ast.RaiseStatement:
		return ast.AtPos(s.Pos(), &ast.RaiseStatement{Value: f.expr(s.Value)})
	default:
		return s
	}
}

func (f *constantFolder) recordCreate(s *ast.RecordCreateStatement) ast.Statement {
	fields := make([]ast.RecordField, len(s.Fields))
	for i, field := range s.Fields {
		fields[i] = ast.RecordField{Feature: f.expr(field.Feature), Value: f.expr(field.Value)}
	}
	rec := ast.AtPos(s.Pos(), &ast.RecordExpr{Label: f.expr(s.Label), Fields: fields})
	folded := f.foldRecord(rec)
	if tup, ok := folded.(*ast.TupleExpr); ok {
		return ast.AtPos(s.Pos(), &ast.BindStatement{Left: s.Var, Right: ast.AtPos(s.Pos(), tup)})
	}
	return ast.AtPos(s.Pos(), &ast.RecordCreateStatement{Var: s.Var, Label: rec.Label, Fields: fields})
}

func (f *constantFolder) expr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.RecordExpr:
		fields := make([]ast.RecordField, len(e.Fields))
		for i, field := range e.Fields {
			fields[i] = ast.RecordField{Feature: f.expr(field.Feature), Value: f.expr(field.Value)}
		}
		return f.foldRecord(ast.AtPos(e.Pos(), &ast.RecordExpr{Label: f.expr(e.Label), Fields: fields}))
	case *ast.TupleExpr:
		elems := make([]ast.Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = f.expr(el)
		}
		return ast.AtPos(e.Pos(), &ast.TupleExpr{Label: f.expr(e.Label), Elements: elems})
	case *ast.FeatureAccessExpr:
		return ast.AtPos(e.Pos(), &ast.FeatureAccessExpr{Record: f.expr(e.Record), Feature: f.expr(e.Feature)})
	case *ast.ProcExpression:
		return ast.AtPos(e.Pos(), &ast.ProcExpression{FormalNames: e.FormalNames, Formals: e.Formals, Body: f.stmt(e.Body), Abstraction: e.Abstraction})
	default:
		return e
	}
}

// foldRecord decides whether rec's feature set is the positive
// integers 1..n (every feature statically known, since this pass runs
// after PatternMatcher introduces no new unresolved features): if so
// it rewrites to a TupleExpr in feature order; otherwise the record
// form is kept as-is (its own *RecordExpr, feature order irrelevant).
func (f *constantFolder) foldRecord(rec *ast.RecordExpr) ast.Expression {
	n := len(rec.Fields)
	if n == 0 {
		return rec
	}
	ordered := make([]ast.Expression, n)
	seen := make([]bool, n)
	for _, field := range rec.Fields {
		c, ok := field.Feature.(*ast.Constant)
		if !ok || c.Kind != ast.ConstInt {
			return rec
		}
		idx := c.Int
		if idx < 1 || idx > int64(n) || seen[idx-1] {
			return rec
		}
		seen[idx-1] = true
		ordered[idx-1] = field.Value
	}
	return ast.AtPos(rec.Pos(), &ast.TupleExpr{Label: rec.Label, Elements: ordered})
}
