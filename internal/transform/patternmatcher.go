package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// recordTestBuiltin and valueEqBuiltin name two VM primitives the
// pattern compiler relies on unconditionally, independent of any
// loaded *-builtin.json descriptor: testing a value's record label
// and arity, and testing structural equality of two values. Every Oz
// VM ships these regardless of which optional boot modules a program
// imports, so PatternMatcher references them directly rather than
// through Program.LookupBuiltin.
var (
	recordTestBuiltin = symtab.NewBuiltinSymbol("Record.test", "OZ_recordTest", 4)
	valueEqBuiltin = symtab.NewBuiltinSymbol("Value.eq", "OZ_valueEq", 3)
)

func init() {
	recordTestBuiltin.OutParamIdx = []int{3}
	valueEqBuiltin.OutParamIdx = []int{2}
}

// PatternMatcher compiles CaseStatement/CaseExpr into a decision tree
// of record-tag/feature tests and bindings. After this pass no
// CaseStatement or CaseExpr survives in the AST.
func PatternMatcher(prog *symtab.Program, root ast.Statement) ast.Statement {
	m := &patternMatcher{prog: prog}
	return m.stmt(root)
}

type patternMatcher struct {
	prog *symtab.Program
	// bindStmt is set by materialize when it had to introduce a binding
	// for a non-trivial scrutinee expression; compileCaseStatement
	// prepends it (nil-safe via ast.Seq) to the compiled decision tree.
	bindStmt ast.Statement
}

func (m *patternMatcher) stmt(s ast.Statement) ast.Statement {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.SeqStatement:
		out := make([]ast.Statement, len(s.Stmts))
		for i, c := range s.Stmts {
			out[i] = m.stmt(c)
		}
		return ast.AtPos(s.Pos(), &ast.SeqStatement{Stmts: out})
	case *ast.LocalStatement:
		return ast.AtPos(s.Pos(), &ast.LocalStatement{Decls: s.Decls, Body: m.stmt(s.Body)})
	case *ast.BindStatement:
		if ce, ok := s.Right.(*ast.CaseExpr); ok {
			return m.compileCaseExprBind(s.Left, ce)
		}
		return ast.AtPos(s.Pos(), &ast.BindStatement{Left: s.Left, Right: m.expr(s.Right)})
	case *ast.CallStatement:
		args := make([]ast.Expression, len(s.Args))
		for i, a := range s.Args {
			args[i] = m.expr(a)
		}
		return ast.AtPos(s.Pos(), &ast.CallStatement{Proc: m.expr(s.Proc), Args: args})
	case *ast.IfStatement:
		return ast.AtPos(s.Pos(), &ast.IfStatement{Cond: m.expr(s.Cond), Then: m.stmt(s.Then), Else: m.stmt(s.Else)})
	case *ast.CaseStatement:
		return m.compileCaseStatement(s)
	case *ast.RecordCreateStatement:
		fields := make([]ast.RecordField, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = ast.RecordField{Feature: m.expr(f.Feature), Value: m.expr(f.Value)}
		}
		return ast.AtPos(s.Pos(), &ast.RecordCreateStatement{Var: s.Var, Label: m.expr(s.Label), Fields: fields})
	case *ast.ThreadStatement:
		return ast.AtPos(s.Pos(), &ast.ThreadStatement{Body: m.stmt(s.Body)})
	case *ast.TryStatement:
		return ast.AtPos(s.Pos(), &ast.TryStatement{Body: m.stmt(s.Body), ExnName: s.ExnName, ExnVar: s.ExnVar, Catch: m.stmt(s.Catch)})
	case *ast.RaiseStatement:
		return ast.AtPos(s.Pos(), &ast.RaiseStatement{Value: m.expr(s.Value)})
	default:
		return s
	}
}

func (m *patternMatcher) expr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.RecordExpr:
		fields := make([]ast.RecordField, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = ast.RecordField{Feature: m.expr(f.Feature), Value: m.expr(f.Value)}
		}
		return ast.AtPos(e.Pos(), &ast.RecordExpr{Label: m.expr(e.Label), Fields: fields})
	case *ast.TupleExpr:
		elems := make([]ast.Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = m.expr(el)
		}
		return ast.AtPos(e.Pos(), &ast.TupleExpr{Label: m.expr(e.Label), Elements: elems})
	case *ast.FeatureAccessExpr:
		return ast.AtPos(e.Pos(), &ast.FeatureAccessExpr{Record: m.expr(e.Record), Feature: m.expr(e.Feature)})
	case *ast.ProcExpression:
		return ast.AtPos(e.Pos(), &ast.ProcExpression{FormalNames: e.FormalNames, Formals: e.Formals, Body: m.stmt(e.Body), Abstraction: e.Abstraction})
	case *ast.CreateAbstraction:
		return e
	case *ast.CaseExpr:
		// Every CaseExpr this pass can lower is caught by the
		// BindStatement special case above; one reaching here was used
		// in a position other than the right side of a plain bind
		// (e.g. nested inside a call argument), which this bootstrap
		// subset does not support.
		m.prog.Errors.Errorf(e.Pos(), "case expression must be the right side of a binding")
		return e
	default:
		return e
	}
}

// compileCaseStatement turns a CaseStatement into nested
// record-test/if statements, folding arms right-to-left so each arm's
// failure branch is "try the remaining arms, else Default".
func (m *patternMatcher) compileCaseStatement(s *ast.CaseStatement) ast.Statement {
	scrutineeVar := m.materialize(s.Scrutinee, s.Pos())
	fail := m.stmt(s.Default)
	if fail == nil {
		fail = ast.AtPos(s.Pos(), &ast.RaiseStatement{Value: ast.AtomConst(s.Pos(), "patternMatchFailure")})
	}
	for i := len(s.Arms) - 1; i >= 0; i-- {
		arm := s.Arms[i]
		body := m.stmt(arm.Body)
		if arm.Guard != nil {
			body = ast.AtPos(arm.Pattern.Pos(), &ast.IfStatement{Cond: m.expr(arm.Guard), Then: body, Else: fail})
		}
		fail = m.compilePattern(arm.Pattern, scrutineeVar, body, fail)
	}
	return ast.Seq(s.Pos(), m.bindStmt, fail)
}

// materialize returns e directly if it is already a Variable/Constant
// (a value already addressable by reference), otherwise binds it to a
// fresh synthetic variable first and records the binding in
// m.bindStmt for the caller to prepend.
func (m *patternMatcher) materialize(e ast.Expression, pos ast.Position) ast.Expression {
	switch e.(type) {
	case *ast.Variable, *ast.Constant:
		m.bindStmt = nil
		return m.expr(e)
	default:
		sym := symtab.NewSyntheticVariable(m.prog, "Scrutinee")
		v := ast.NewVariable(pos, sym)
		m.bindStmt = ast.AtPos(pos, &ast.BindStatement{Left: v, Right: m.expr(e)})
		return v
	}
}

// compilePattern returns a statement that tests scrutinee against pat
// and runs success on a match, binding every name pat introduces
// along the way, or runs fail otherwise.
func (m *patternMatcher) compilePattern(pat ast.Pattern, scrutinee ast.Expression, success, fail ast.Statement) ast.Statement {
	switch p := pat.(type) {
	case nil, *ast.WildcardPattern:
		return success
	case *ast.BindingPattern:
		bind := ast.AtPos(p.Pos(), &ast.BindStatement{Left: ast.NewVariable(p.Pos(), p.Symbol), Right: scrutinee})
		return ast.Seq(p.Pos(), bind, success)
	case *ast.LiteralPattern:
		ok := symtab.NewSyntheticVariable(m.prog, "Eq")
		test := ast.AtPos(p.Pos(), &ast.CallStatement{
			Proc: ast.BuiltinConst(p.Pos(), valueEqBuiltin),
			Args: []ast.Expression{p.Value, scrutinee, ast.NewVariable(p.Pos(), ok)},
		})
		ifStmt := ast.AtPos(p.Pos(), &ast.IfStatement{Cond: ast.NewVariable(p.Pos(), ok), Then: success, Else: fail})
		return ast.Seq(p.Pos(), test, ifStmt)
	case *ast.RecordPattern:
		return m.compileRecordPattern(p, scrutinee, success, fail)
	default:
		m.prog.Errors.Fatalf(pat.Pos(), "patternmatcher: unhandled pattern type %T", pat)
		return fail
	}
}

// compileCaseExprBind lowers `target = case Scrutinee of ... end` the
// same way compileCaseStatement lowers a case statement, except each
// arm's effect is binding target to its Result rather than running an
// arbitrary body.
func (m *patternMatcher) compileCaseExprBind(target ast.Expression, ce *ast.CaseExpr) ast.Statement {
	scrutineeVar := m.materialize(ce.Scrutinee, ce.Pos())
	bindScrutinee := m.bindStmt

	var fail ast.Statement
	if ce.Default != nil {
		fail = ast.AtPos(ce.Pos(), &ast.BindStatement{Left: target, Right: m.expr(ce.Default)})
	} else {
		fail = ast.AtPos(ce.Pos(), &ast.RaiseStatement{Value: ast.AtomConst(ce.Pos(), "patternMatchFailure")})
	}
	for i := len(ce.Arms) - 1; i >= 0; i-- {
		arm := ce.Arms[i]
		body := ast.Statement(ast.AtPos(arm.Pattern.Pos(), &ast.BindStatement{Left: target, Right: m.expr(arm.Result)}))
		if arm.Guard != nil {
			body = ast.AtPos(arm.Pattern.Pos(), &ast.IfStatement{Cond: m.expr(arm.Guard), Then: body, Else: fail})
		}
		fail = m.compilePattern(arm.Pattern, scrutineeVar, body, fail)
	}
	return ast.Seq(ce.Pos(), bindScrutinee, fail)
}

func (m *patternMatcher) compileRecordPattern(p *ast.RecordPattern, scrutinee ast.Expression, success, fail ast.Statement) ast.Statement {
	ok := symtab.NewSyntheticVariable(m.prog, "Tag")
	test := ast.AtPos(p.Pos(), &ast.CallStatement{
		Proc: ast.BuiltinConst(p.Pos(), recordTestBuiltin),
		Args: []ast.Expression{
			scrutinee,
			ast.AtomConst(p.Pos(), p.Label),
			ast.IntConst(p.Pos(), int64(len(p.Features))),
			ast.NewVariable(p.Pos(), ok),
		},
	})

	matched := success
	if p.Tail != nil {
		// Open patterns bind the tail variable to the whole record; a
		// faithful implementation would bind it to a residual record of
		// the unlisted features, which the VM has no primitive for in
		// this bootstrap subset.
		bind := ast.AtPos(p.Tail.Pos(), &ast.BindStatement{Left: ast.NewVariable(p.Tail.Pos(), p.Tail.Symbol), Right: scrutinee})
		matched = ast.Seq(p.Pos(), bind, matched)
	}
	for i := len(p.Features) - 1; i >= 0; i-- {
		feat := p.Features[i]
		fieldSym := symtab.NewSyntheticVariable(m.prog, "Field")
		fieldVar := ast.NewVariable(p.Pos(), fieldSym)
		access := ast.AtPos(p.Pos(), &ast.BindStatement{
			Left: fieldVar,
			Right: ast.AtPos(p.Pos(), &ast.FeatureAccessExpr{Record: scrutinee, Feature: featureConst(p.Pos(), feat.Feature)}),
		})
		matched = ast.Seq(p.Pos(), access, m.compilePattern(feat.Pattern, fieldVar, matched, fail))
	}

	ifStmt := ast.AtPos(p.Pos(), &ast.IfStatement{Cond: ast.NewVariable(p.Pos(), ok), Then: matched, Else: fail})
	return ast.Seq(p.Pos(), test, ifStmt)
}

func featureConst(pos ast.Position, f ast.Feature) *ast.Constant {
	if f.IsInt {
		return ast.IntConst(pos, f.Int)
	}
	return ast.AtomConst(pos, f.Atom)
}
