package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// Desugar lowers the remaining surface sugar the design describes
// for this bootstrap subset: function definitions become procedures
// that bind an extra out-parameter to their tail value. `for` loops
// and operator forms are parser-level sugar the frontend interface
// is specified to desugar before handing statements to
// this pipeline, so this pass's AST never contains them; its only
// normalization here is the fun->proc lowering.
func Desugar(prog *symtab.Program, root ast.Statement) ast.Statement {
	d := &desugarer{prog: prog}
	return d.stmt(root)
}

type desugarer struct {
	prog *symtab.Program
}

func (d *desugarer) stmt(s ast.Statement) ast.Statement {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.SeqStatement:
		out := make([]ast.Statement, len(s.Stmts))
		for i, c := range s.Stmts {
			out[i] = d.stmt(c)
		}
		return ast.AtPos(s.Pos(), &ast.SeqStatement{Stmts: out})
	case *ast.LocalStatement:
		return ast.AtPos(s.Pos(), &ast.LocalStatement{Decls: s.Decls, Body: d.stmt(s.Body)})
	case *ast.BindStatement:
		return ast.AtPos(s.Pos(), &ast.BindStatement{Left: s.Left, Right: d.expr(s.Right)})
	case *ast.CallStatement:
		args := make([]ast.Expression, len(s.Args))
		for i, a := range s.Args {
			args[i] = d.expr(a)
		}
		return ast.AtPos(s.Pos(), &ast.CallStatement{Proc: d.expr(s.Proc), Args: args})
	case *ast.IfStatement:
		return ast.AtPos(s.Pos(), &ast.IfStatement{Cond: d.expr(s.Cond), Then: d.stmt(s.Then), Else: d.stmt(s.Else)})
	case *ast.CaseStatement:
		return ast.AtPos(s.Pos(), &ast.CaseStatement{Scrutinee: d.expr(s.Scrutinee), Arms: d.arms(s.Arms), Default: d.stmt(s.Default)})
	case *ast.RecordCreateStatement:
		fields := make([]ast.RecordField, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = ast.RecordField{Feature: d.expr(f.Feature), Value: d.expr(f.Value)}
		}
		return ast.AtPos(s.Pos(), &ast.RecordCreateStatement{Var: s.Var, Label: d.expr(s.Label), Fields: fields})
	case *ast.ThreadStatement:
		return ast.AtPos(s.Pos(), &ast.ThreadStatement{Body: d.stmt(s.Body)})
	case *ast.TryStatement:
		return ast.AtPos(s.Pos(), &ast.TryStatement{Body: d.stmt(s.Body), ExnName: s.ExnName, ExnVar: s.ExnVar, Catch: d.stmt(s.Catch)})
	case *ast.RaiseStatement:
		return ast.AtPos(s.Pos(), &ast.RaiseStatement{Value: d.expr(s.Value)})
	default:
		return s
	}
}

func (d *desugarer) arms(arms []ast.CaseArm) []ast.CaseArm {
	out := make([]ast.CaseArm, len(arms))
	for i, a := range arms {
		out[i] = ast.CaseArm{Pattern: a.Pattern, Guard: d.expr(a.Guard), Body: d.stmt(a.Body)}
	}
	return out
}

func (d *desugarer) expr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.RecordExpr:
		fields := make([]ast.RecordField, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = ast.RecordField{Feature: d.expr(f.Feature), Value: d.expr(f.Value)}
		}
		return ast.AtPos(e.Pos(), &ast.RecordExpr{Label: d.expr(e.Label), Fields: fields})
	case *ast.TupleExpr:
		elems := make([]ast.Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = d.expr(el)
		}
		return ast.AtPos(e.Pos(), &ast.TupleExpr{Label: d.expr(e.Label), Elements: elems})
	case *ast.FeatureAccessExpr:
		return ast.AtPos(e.Pos(), &ast.FeatureAccessExpr{Record: d.expr(e.Record), Feature: d.expr(e.Feature)})
	case *ast.ProcExpression:
		return ast.AtPos(e.Pos(), &ast.ProcExpression{FormalNames: e.FormalNames, Formals: e.Formals, Body: d.stmt(e.Body), Abstraction: e.Abstraction})
	case *ast.FunExpression:
		return d.fun(e)
	case *ast.CaseExpr:
		var def ast.Expression
		if e.Default != nil {
			def = d.expr(e.Default)
		}
		arms := make([]ast.CaseExprArm, len(e.Arms))
		for i, a := range e.Arms {
			arms[i] = ast.CaseExprArm{Pattern: a.Pattern, Guard: d.expr(a.Guard), Result: d.expr(a.Result)}
		}
		return ast.AtPos(e.Pos(), &ast.CaseExpr{Scrutinee: d.expr(e.Scrutinee), Arms: arms, Default: def})
	default:
		return e
	}
}

// fun lowers a FunExpression into the ProcExpression form CodeGen
// understands: an extra trailing formal receives the function's
// result, bound by a final assignment of the (recursively desugared)
// tail expression.
func (d *desugarer) fun(e *ast.FunExpression) ast.Expression {
	body := d.stmt(e.Body)
	resultSym := symtab.NewSyntheticVariable(d.prog, "Result")
	e.Abstraction.AddFormal(resultSym)
	resultVar := ast.NewVariable(e.Pos(), resultSym)

	bind := ast.AtPos(e.Pos(), &ast.BindStatement{Left: resultVar, Right: d.expr(e.Result)})
	newBody := ast.Seq(e.Pos(), body, bind)
	e.Abstraction.Body = newBody

	return ast.AtPos(e.Pos(), &ast.ProcExpression{
		FormalNames: append(append([]string{}, e.FormalNames...), resultSym.Name),
		Formals: append(append([]*symtab.VariableSymbol{}, e.Formals...), resultSym),
		Body: newBody,
		Abstraction: e.Abstraction,
	})
}
