package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// Flattener performs closure conversion: for every
// nested ProcExpression it computes the free variables referenced
// from an enclosing abstraction, records them as the nested
// abstraction's globals in first-reference order, hoists the
// abstraction into prog.Flat, and replaces the inline expression with
// a CreateAbstraction referencing it. Modeled directly on a prior
// closure-capture walk (optimizer.go: analyzeClosures /
// analyzeClosuresExpr / collectCapturedVariables), generalized from a
// read-only analysis over an already-flat tree into the pass that
// performs the hoist.
func Flattener(prog *symtab.Program, root ast.Statement) ast.Statement {
	f := &flattener{prog: prog}
	flat := f.stmtIn(prog.TopLevel.Abstraction, root)
	prog.TopLevel.Body = flat
	return flat
}

type flattener struct {
	prog *symtab.Program
}

// stmtIn rewrites s as it appears inside owner's body, hoisting any
// nested abstraction it finds and returning the rewritten statement.
func (f *flattener) stmtIn(owner *symtab.Abstraction, s ast.Statement) ast.Statement {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.SeqStatement:
		out := make([]ast.Statement, len(s.Stmts))
		for i, c := range s.Stmts {
			out[i] = f.stmtIn(owner, c)
		}
		return ast.AtPos(s.Pos(), &ast.SeqStatement{Stmts: out})
	case *ast.LocalStatement:
		return ast.AtPos(s.Pos(), &ast.LocalStatement{Decls: s.Decls, Body: f.stmtIn(owner, s.Body)})
	case *ast.BindStatement:
		return ast.AtPos(s.Pos(), &ast.BindStatement{Left: s.Left, Right: f.exprIn(owner, s.Right)})
	case *ast.CallStatement:
		args := make([]ast.Expression, len(s.Args))
		for i, a := range s.Args {
			args[i] = f.exprIn(owner, a)
		}
		return ast.AtPos(s.Pos(), &ast.CallStatement{Proc: f.exprIn(owner, s.Proc), Args: args})
	case *ast.IfStatement:
		return ast.AtPos(s.Pos(), &ast.IfStatement{Cond: f.exprIn(owner, s.Cond), Then: f.stmtIn(owner, s.Then), Else: f.stmtIn(owner, s.Else)})
	case *ast.RecordCreateStatement:
		fields := make([]ast.RecordField, len(s.Fields))
		for i, field := range s.Fields {
			fields[i] = ast.RecordField{Feature: f.exprIn(owner, field.Feature), Value: f.exprIn(owner, field.Value)}
		}
		return ast.AtPos(s.Pos(), &ast.RecordCreateStatement{Var: s.Var, Label: f.exprIn(owner, s.Label), Fields: fields})
	case *ast.ThreadStatement:
		return ast.AtPos(s.Pos(), &ast.ThreadStatement{Body: f.stmtIn(owner, s.Body)})
	case *ast.TryStatement:
		return ast.AtPos(s.Pos(), &ast.TryStatement{Body: f.stmtIn(owner, s.Body), ExnName: s.ExnName, ExnVar: s.ExnVar, Catch: f.stmtIn(owner, s.Catch)})
	case *ast.RaiseStatement:
		return ast.AtPos(s.Pos(), &ast.RaiseStatement{Value: f.exprIn(owner, s.Value)})
	default:
		return s
	}
}

func (f *flattener) exprIn(owner *symtab.Abstraction, e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.Variable:
		f.recordReference(owner, e.Symbol, e.Pos())
		return e
	case *ast.Constant:
		return e
	case *ast.TupleExpr:
		elems := make([]ast.Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = f.exprIn(owner, el)
		}
		return ast.AtPos(e.Pos(), &ast.TupleExpr{Label: f.exprIn(owner, e.Label), Elements: elems})
	case *ast.RecordExpr:
		fields := make([]ast.RecordField, len(e.Fields))
		for i, field := range e.Fields {
			fields[i] = ast.RecordField{Feature: f.exprIn(owner, field.Feature), Value: f.exprIn(owner, field.Value)}
		}
		return ast.AtPos(e.Pos(), &ast.RecordExpr{Label: f.exprIn(owner, e.Label), Fields: fields})
	case *ast.FeatureAccessExpr:
		return ast.AtPos(e.Pos(), &ast.FeatureAccessExpr{Record: f.exprIn(owner, e.Record), Feature: f.exprIn(owner, e.Feature)})
	case *ast.ProcExpression:
		return f.hoist(owner, e)
	default:
		return e
	}
}

// recordReference notes that owner's body references sym. If sym's
// defining abstraction is not owner, sym is free in owner: record it
// as a global of owner (and, transitively, of every abstraction
// between owner and the defining one — handled by each enclosing
// call to hoist threading the same bookkeeping up the stack via
// hoist's own recordReference call on its own owner).
func (f *flattener) recordReference(owner *symtab.Abstraction, sym *symtab.VariableSymbol, pos ast.Position) {
	if sym == nil {
		return
	}
	def := sym.Owner()
	if def == nil {
		f.prog.Errors.Fatalf(pos, "flattener: variable %q has no owner", sym.Name)
		return
	}
	if def == owner {
		return
	}
	owner.AddGlobal(sym)
}

// hoist closure-converts e: computes e's Abstraction's free variables
// by walking its body with owner set to the nested abstraction itself
// (so references resolving outside it are caught by recordReference
// and added to *its* globals), appends the abstraction to
// prog.Flat, and returns a CreateAbstraction capturing each global's
// current value from owner's perspective.
func (f *flattener) hoist(owner *symtab.Abstraction, e *ast.ProcExpression) ast.Expression {
	abs := e.Abstraction
	abs.Body = f.stmtIn(abs, e.Body)
	f.prog.AddAbstraction(abs)

	captured := make([]*ast.Variable, len(abs.Globals))
	for i, g := range abs.Globals {
		captured[i] = ast.NewVariable(e.Pos(), g)
		// A global captured by abs may itself be free with respect to
		// owner (multi-level nesting): record it against owner too so
		// the capture chain reaches every abstraction in between.
		f.recordReference(owner, g, e.Pos())
	}
	return ast.AtPos(e.Pos(), &ast.CreateAbstraction{Abstraction: abs, Captured: captured})
}
