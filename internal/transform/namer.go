package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// namer resolves RawVariable/RawLocalStatement against a lexical-scope
// stack, generalizing the prior code's analyzeClosures family
// (optimizer.go) from a closure-capture *analysis* over an already-
// named tree to the actual name-binding pass that produces one.
type namer struct {
	prog *symtab.Program
	scopes []map[string]*symtab.VariableSymbol
	abstractions []*symtab.Abstraction // stack; top is the current owner
}

// Namer is the first pass of the pipeline.
func Namer(prog *symtab.Program, root ast.Statement) ast.Statement {
	top := symtab.NewAbstraction()
	prog.TopLevel = &symtab.TopLevelAbstraction{Abstraction: top}

	n := &namer{prog: prog, abstractions: []*symtab.Abstraction{top}}
	n.pushScope()
	result := n.stmt(root)
	n.popScope()

	top.Body = result
	return result
}

func (n *namer) pushScope() {
	n.scopes = append(n.scopes, map[string]*symtab.VariableSymbol{})
}

func (n *namer) popScope() {
	n.scopes = n.scopes[:len(n.scopes)-1]
}

func (n *namer) currentAbstraction() *symtab.Abstraction {
	return n.abstractions[len(n.abstractions)-1]
}

// declare mints a fresh VariableSymbol for name, binds it in the
// innermost scope frame, and places it as a local of the current
// abstraction. A name already declared in that exact frame is a
// duplicate-declaration error.
func (n *namer) declare(name string, pos ast.Position) *symtab.VariableSymbol {
	frame := n.scopes[len(n.scopes)-1]
	if _, dup := frame[name]; dup {
		n.prog.Errors.Errorf(pos, "duplicate declaration of %q in this scope", name)
	}
	sym := symtab.NewVariableSymbol(n.prog, name)
	frame[name] = sym
	n.currentAbstraction().AddLocal(sym)
	return sym
}

// declareUnplaced mints a fresh VariableSymbol for name and binds it
// in the innermost scope frame, like declare, but leaves it without an
// owning abstraction. Used where the abstraction the symbol belongs to
// doesn't exist yet at Namer time (a functor's import names are placed
// into the Abstraction DesugarFunctor builds, not whichever abstraction
// happens to be current while naming the functor body).
func (n *namer) declareUnplaced(name string, pos ast.Position) *symtab.VariableSymbol {
	frame := n.scopes[len(n.scopes)-1]
	if _, dup := frame[name]; dup {
		n.prog.Errors.Errorf(pos, "duplicate declaration of %q in this scope", name)
	}
	sym := symtab.NewVariableSymbol(n.prog, name)
	frame[name] = sym
	return sym
}

// resolve searches the scope stack top-down for name. An unresolved
// reference is recorded as a semantic error; resolve returns nil so
// the (aborted) remainder of this pass has a value to carry, matching
// "accumulate, don't raise" policy.
func (n *namer) resolve(name string, pos ast.Position) *symtab.VariableSymbol {
	for i := len(n.scopes) - 1; i >= 0; i-- {
		if sym, ok := n.scopes[i][name]; ok {
			return sym
		}
	}
	if suggestion := closestName(name, n.visibleNames()); suggestion != "" {
		n.prog.Errors.Errorf(pos, "%q is not declared in this scope (did you mean %q?)", name, suggestion)
	} else {
		n.prog.Errors.Errorf(pos, "%q is not declared in this scope", name)
	}
	return nil
}

// visibleNames collects every name bound in any currently open scope
// frame, for the unresolved-reference suggestion above.
func (n *namer) visibleNames() []string {
	var names []string
	for _, frame := range n.scopes {
		for name := range frame {
			names = append(names, name)
		}
	}
	return names
}

func (n *namer) stmt(s ast.Statement) ast.Statement {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.SeqStatement:
		out := make([]ast.Statement, len(s.Stmts))
		for i, c := range s.Stmts {
			out[i] = n.stmt(c)
		}
		return ast.AtPos(s.Pos(), &ast.SeqStatement{Stmts: out})
	case *ast.RawLocalStatement:
		n.pushScope()
		decls := make([]*symtab.VariableSymbol, len(s.Decls))
		for i, name := range s.Decls {
			decls[i] = n.declare(name, s.Pos())
		}
		body := n.stmt(s.Body)
		n.popScope()
		return ast.AtPos(s.Pos(), &ast.LocalStatement{Decls: decls, Body: body})
	case *ast.LocalStatement:
		return s // already named (constructed directly by a test or earlier pass)
	case *ast.BindStatement:
		return ast.AtPos(s.Pos(), &ast.BindStatement{Left: n.variable(s.Left), Right: n.expr(s.Right)})
	case *ast.CallStatement:
		args := make([]ast.Expression, len(s.Args))
		for i, a := range s.Args {
			args[i] = n.expr(a)
		}
		return ast.AtPos(s.Pos(), &ast.CallStatement{Proc: n.expr(s.Proc), Args: args})
	case *ast.IfStatement:
		return ast.AtPos(s.Pos(), &ast.IfStatement{Cond: n.expr(s.Cond), Then: n.stmt(s.Then), Else: n.stmt(s.Else)})
	case *ast.CaseStatement:
		return ast.AtPos(s.Pos(), &ast.CaseStatement{Scrutinee: n.expr(s.Scrutinee), Arms: n.arms(s.Arms), Default: n.stmt(s.Default)})
	case *ast.RecordCreateStatement:
		fields := make([]ast.RecordField, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = ast.RecordField{Feature: n.expr(f.Feature), Value: n.expr(f.Value)}
		}
		return ast.AtPos(s.Pos(), &ast.RecordCreateStatement{Var: n.variable(s.Var), Label: n.expr(s.Label), Fields: fields})
	case *ast.SkipStatement:
		return s
	case *ast.ThreadStatement:
		return ast.AtPos(s.Pos(), &ast.ThreadStatement{Body: n.stmt(s.Body)})
	case *ast.TryStatement:
		body := n.stmt(s.Body)
		n.pushScope()
		exn := n.declare(s.ExnName, s.Pos())
		catch := n.stmt(s.Catch)
		n.popScope()
		return ast.AtPos(s.Pos(), &ast.TryStatement{Body: body, ExnName: s.ExnName, ExnVar: exn, Catch: catch})
	case *ast.RaiseStatement:
		return ast.AtPos(s.Pos(), &ast.RaiseStatement{Value: n.expr(s.Value)})
	case *ast.FunctorApplyStatement:
		return ast.AtPos(s.Pos(), &ast.FunctorApplyStatement{Result: n.variable(s.Result), Functor: n.expr(s.Functor), Import: n.expr(s.Import)})
	default:
		n.prog.Errors.Fatalf(s.Pos(), "namer: unhandled statement type %T", s)
		return s
	}
}

// variable resolves a variable-position expression: a *RawVariable
// becomes a resolved *Variable, an already-resolved *Variable passes
// through unchanged.
func (n *namer) variable(e ast.Expression) ast.Expression {
	switch v := e.(type) {
	case nil:
		return nil
	case *ast.RawVariable:
		return ast.NewVariable(v.Pos(), n.resolve(v.Name, v.Pos()))
	case *ast.Variable:
		return v
	default:
		n.prog.Errors.Fatalf(e.Pos(), "namer: expected a variable, got %T", e)
		return e
	}
}

func (n *namer) arms(arms []ast.CaseArm) []ast.CaseArm {
	out := make([]ast.CaseArm, len(arms))
	for i, a := range arms {
		n.pushScope()
		pat := n.pattern(a.Pattern)
		var guard ast.Expression
		if a.Guard != nil {
			guard = n.expr(a.Guard)
		}
		body := n.stmt(a.Body)
		n.popScope()
		out[i] = ast.CaseArm{Pattern: pat, Guard: guard, Body: body}
	}
	return out
}

func (n *namer) exprArms(arms []ast.CaseExprArm) []ast.CaseExprArm {
	out := make([]ast.CaseExprArm, len(arms))
	for i, a := range arms {
		n.pushScope()
		pat := n.pattern(a.Pattern)
		var guard ast.Expression
		if a.Guard != nil {
			guard = n.expr(a.Guard)
		}
		result := n.expr(a.Result)
		n.popScope()
		out[i] = ast.CaseExprArm{Pattern: pat, Guard: guard, Result: result}
	}
	return out
}

func (n *namer) pattern(p ast.Pattern) ast.Pattern {
	switch p := p.(type) {
	case nil:
		return nil
	case *ast.WildcardPattern:
		return p
	case *ast.BindingPattern:
		sym := n.declare(p.Name, p.Pos())
		return ast.AtPos(p.Pos(), &ast.BindingPattern{Name: p.Name, Symbol: sym})
	case *ast.LiteralPattern:
		return p
	case *ast.RecordPattern:
		feats := make([]ast.FeaturePattern, len(p.Features))
		for i, f := range p.Features {
			feats[i] = ast.FeaturePattern{Feature: f.Feature, Pattern: n.pattern(f.Pattern)}
		}
		var tail *ast.BindingPattern
		if p.Tail != nil {
			tail, _ = n.pattern(p.Tail).(*ast.BindingPattern)
		}
		return ast.AtPos(p.Pos(), &ast.RecordPattern{Label: p.Label, Features: feats, Tail: tail})
	default:
		n.prog.Errors.Fatalf(p.Pos(), "namer: unhandled pattern type %T", p)
		return p
	}
}

func (n *namer) expr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.RawVariable:
		return ast.NewVariable(e.Pos(), n.resolve(e.Name, e.Pos()))
	case *ast.Variable, *ast.Constant:
		return e
	case *ast.RecordExpr:
		fields := make([]ast.RecordField, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = ast.RecordField{Feature: n.expr(f.Feature), Value: n.expr(f.Value)}
		}
		return ast.AtPos(e.Pos(), &ast.RecordExpr{Label: n.expr(e.Label), Fields: fields})
	case *ast.TupleExpr:
		elems := make([]ast.Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = n.expr(el)
		}
		return ast.AtPos(e.Pos(), &ast.TupleExpr{Label: n.expr(e.Label), Elements: elems})
	case *ast.FeatureAccessExpr:
		return ast.AtPos(e.Pos(), &ast.FeatureAccessExpr{Record: n.expr(e.Record), Feature: n.expr(e.Feature)})
	case *ast.ProcExpression:
		return n.abstractionLiteral(e.Pos(), e.FormalNames, e.Body, nil, false)
	case *ast.FunExpression:
		lit := n.abstractionLiteral(e.Pos(), e.FormalNames, e.Body, e.Result, true)
		return lit
	case *ast.CaseExpr:
		var def ast.Expression
		if e.Default != nil {
			def = n.expr(e.Default)
		}
		return ast.AtPos(e.Pos(), &ast.CaseExpr{Scrutinee: n.expr(e.Scrutinee), Arms: n.exprArms(e.Arms), Default: def})
	case *ast.FunctorExpression:
		return n.functor(e)
	default:
		n.prog.Errors.Fatalf(e.Pos(), "namer: unhandled expression type %T", e)
		return e
	}
}

// abstractionLiteral names a nested proc/fun body in a fresh
// abstraction scope. asFun controls whether the result is a
// FunExpression (with a Result tail expression named in the same
// scope) or a ProcExpression.
func (n *namer) abstractionLiteral(pos ast.Position, formalNames []string, body ast.Statement, result ast.Expression, asFun bool) ast.Expression {
	abs := symtab.NewAbstraction()
	n.abstractions = append(n.abstractions, abs)
	n.pushScope()

	formals := make([]*symtab.VariableSymbol, len(formalNames))
	for i, name := range formalNames {
		sym := n.declare(name, pos)
		abs.AddFormal(sym)
		formals[i] = sym
	}
	namedBody := n.stmt(body)
	var namedResult ast.Expression
	if asFun {
		namedResult = n.expr(result)
	}

	n.popScope()
	n.abstractions = n.abstractions[:len(n.abstractions)-1]
	abs.Body = namedBody

	if asFun {
		return ast.AtPos(pos, &ast.FunExpression{FormalNames: formalNames, Formals: formals, Body: namedBody, Result: namedResult, Abstraction: abs})
	}
	return ast.AtPos(pos, &ast.ProcExpression{FormalNames: formalNames, Formals: formals, Body: namedBody, Abstraction: abs})
}

func (n *namer) functor(f *ast.FunctorExpression) *ast.FunctorExpression {
	n.pushScope()
	imports := make([]ast.ImportSpec, len(f.Imports))
	for i, imp := range f.Imports {
		imp.Symbol = n.declareUnplaced(imp.LocalName, f.Pos())
		imports[i] = imp
	}
	require := make([]ast.ImportSpec, len(f.Require))
	for i, req := range f.Require {
		req.Symbol = n.declareUnplaced(req.LocalName, f.Pos())
		require[i] = req
	}

	var prepare, define ast.Statement
	if f.Prepare != nil {
		prepare = n.stmt(f.Prepare)
	}
	if f.Define != nil {
		define = n.stmt(f.Define)
	}

	exports := make([]ast.ExportSpec, len(f.Exports))
	for i, ex := range f.Exports {
		exports[i] = ast.ExportSpec{Feature: ex.Feature, Local: n.variable(ex.Local)}
	}
	n.popScope()

	return ast.AtPos(f.Pos(), &ast.FunctorExpression{
		Name: f.Name, Require: require, Imports: imports,
		Prepare: prepare, Define: define, Exports: exports,
	})
}
