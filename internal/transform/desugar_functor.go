package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// DesugarFunctor lowers every FunctorExpression into a FunExpression
// taking one formal (the import record) and returning the export
// record; Desugar later turns that into a ProcExpression. No
// FunctorExpression survives this pass.
func DesugarFunctor(prog *symtab.Program, root ast.Statement) ast.Statement {
	d := &functorDesugarer{prog: prog}
	return d.stmt(root)
}

type functorDesugarer struct {
	prog *symtab.Program
}

func (d *functorDesugarer) stmt(s ast.Statement) ast.Statement {
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
	case *ast.FunctorApplyStatement:
		// `Result = {Functor.apply Import}` becomes a plain call of the
		// now-procedure functor value against the import record.
		return ast.AtPos(s.Pos(), &ast.CallStatement{
			Proc: d.expr(s.Functor),
			Args: []ast.Expression{d.expr(s.Import), s.Result},
		})
	default:
		return s
	}
}

func (d *functorDesugarer) arms(arms []ast.CaseArm) []ast.CaseArm {
	out := make([]ast.CaseArm, len(arms))
	for i, a := range arms {
		out[i] = ast.CaseArm{Pattern: a.Pattern, Guard: d.expr(a.Guard), Body: d.stmt(a.Body)}
	}
	return out
}

func (d *functorDesugarer) expr(e ast.Expression) ast.Expression {
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
		return ast.AtPos(e.Pos(), &ast.FunExpression{FormalNames: e.FormalNames, Formals: e.Formals, Body: d.stmt(e.Body), Result: d.expr(e.Result), Abstraction: e.Abstraction})
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
	case *ast.FunctorExpression:
		return d.functor(e)
	default:
		return e
	}
}

// functor builds the procedure-of-one-import-record form of f. The
// importVar formal stands for the application-supplied import record;
// require entries bind eagerly from the same record (the driver
// resolves `require` URLs into that record before calling); prepare
// and define run in sequence; the result builds an export record from
// Exports.
func (d *functorDesugarer) functor(f *ast.FunctorExpression) ast.Expression {
	importSym := symtab.NewSyntheticVariable(d.prog, "Import")
	abs := symtab.NewAbstraction()
	abs.AddFormal(importSym)
	importVar := ast.NewVariable(f.Pos(), importSym)

	var body []ast.Statement
	for _, imp := range append(append([]ast.ImportSpec{}, f.Require...), f.Imports...) {
		body = append(body, d.bindImport(f.Pos(), imp, importVar, abs)...)
	}
	if f.Prepare != nil {
		body = append(body, d.stmt(f.Prepare))
	}
	if f.Define != nil {
		body = append(body, d.stmt(f.Define))
	}

	fields := make([]ast.RecordField, len(f.Exports))
	for i, ex := range f.Exports {
		fields[i] = ast.RecordField{
			Feature: ast.AtomConst(f.Pos(), ex.Feature),
			Value: d.expr(ex.Local),
		}
	}
	exportRecord := ast.AtPos(f.Pos(), &ast.RecordExpr{Label: ast.AtomConst(f.Pos(), d.exportLabel(f)), Fields: fields})

	funBody := ast.Seq(f.Pos(), body...)
	abs.Body = funBody
	return ast.AtPos(f.Pos(), &ast.FunExpression{
		FormalNames: []string{importSym.Name},
		Formals: []*symtab.VariableSymbol{importSym},
		Body: funBody,
		Result: exportRecord,
		Abstraction: abs,
	})
}

// exportLabel picks a record label for a functor's export record: its
// own name when non-empty, otherwise a synthetic placeholder. The
// label never drives dispatch (export records are read by feature
// only), so any stable atom is correct.
func (d *functorDesugarer) exportLabel(f *ast.FunctorExpression) string {
	if f.Name != "" {
		return f.Name
	}
	return d.prog.SyntheticName("functor")
}

// bindImport emits the statements that pull imp's features out of
// importVar and bind them to the local names imp declares, or binds
// the whole record to LocalName when imp requests no specific
// features. moduleSym reuses imp.Symbol, the VariableSymbol the Namer
// already resolved every reference inside the functor's Prepare/Define
// (and Exports) against, rather than minting a second symbol the body
// never reads; abs is the functor's own Abstraction, the first place
// either symbol is actually owned.
func (d *functorDesugarer) bindImport(pos ast.Position, imp ast.ImportSpec, importVar *ast.Variable, abs *symtab.Abstraction) []ast.Statement {
	moduleSym := imp.Symbol
	abs.AddLocal(moduleSym)
	moduleVar := ast.NewVariable(pos, moduleSym)
	stmts := []ast.Statement{
		ast.AtPos(pos, &ast.BindStatement{
			Left: moduleVar,
			Right: ast.AtPos(pos, &ast.FeatureAccessExpr{Record: importVar, Feature: ast.AtomConst(pos, imp.LocalName)}),
		}),
	}
	for _, feat := range imp.Features {
		local := feat.Local
		if local == "" {
			local = feat.Feature
		}
		sym := symtab.NewVariableSymbol(d.prog, local)
		abs.AddLocal(sym)
		stmts = append(stmts, ast.AtPos(pos, &ast.BindStatement{
			Left: ast.NewVariable(pos, sym),
			Right: ast.AtPos(pos, &ast.FeatureAccessExpr{Record: moduleVar, Feature: ast.AtomConst(pos, feat.Feature)}),
		}))
	}
	return stmts
}
