package transform

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// Unnester enforces A-normal form : every
// call argument, every primitive operand, and every record field value
// is a Variable or a Constant. Where not, a synthetic local and a
// preceding binding are introduced.
func Unnester(prog *symtab.Program, root ast.Statement) ast.Statement {
	u := &unnester{prog: prog, abstractions: []*symtab.Abstraction{prog.TopLevel.Abstraction}}
	return u.stmt(root)
}

// unnester tracks the enclosing abstraction stack so every synthetic
// variable it mints is placed (AddLocal) in the right frame, keeping
// the "owner != NoSymbol" invariant intact through this
// pass, not just immediately after the Namer.
type unnester struct {
	prog *symtab.Program
	abstractions []*symtab.Abstraction
}

func (u *unnester) current() *symtab.Abstraction {
	return u.abstractions[len(u.abstractions)-1]
}

func (u *unnester) fresh(base string) *symtab.VariableSymbol {
	v := symtab.NewSyntheticVariable(u.prog, base)
	u.current().AddLocal(v)
	return v
}

// atom holds the pending bindings a subexpression's flattening
// produced, in order, alongside the now-trivial (Variable or
// Constant) expression that stands for it.
type atom struct {
	binds []ast.Statement
	value ast.Expression
}

func wrap(pos ast.Position, binds []ast.Statement, tail ast.Statement) ast.Statement {
	all := append(append([]ast.Statement{}, binds...), tail)
	return ast.Seq(pos, all...)
}

func (u *unnester) stmt(s ast.Statement) ast.Statement {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.SeqStatement:
		out := make([]ast.Statement, len(s.Stmts))
		for i, c := range s.Stmts {
			out[i] = u.stmt(c)
		}
		return ast.AtPos(s.Pos(), &ast.SeqStatement{Stmts: out})
	case *ast.LocalStatement:
		return ast.AtPos(s.Pos(), &ast.LocalStatement{Decls: s.Decls, Body: u.stmt(s.Body)})
	case *ast.BindStatement:
		a := u.atomize(s.Right)
		bind := ast.AtPos(s.Pos(), &ast.BindStatement{Left: s.Left, Right: a.value})
		return wrap(s.Pos(), a.binds, bind)
	case *ast.CallStatement:
		var binds []ast.Statement
		proc := u.atomizeInto(s.Proc, &binds)
		args := make([]ast.Expression, len(s.Args))
		for i, arg := range s.Args {
			args[i] = u.atomizeInto(arg, &binds)
		}
		call := ast.AtPos(s.Pos(), &ast.CallStatement{Proc: proc, Args: args})
		return wrap(s.Pos(), binds, call)
	case *ast.IfStatement:
		a := u.atomize(s.Cond)
		ifStmt := ast.AtPos(s.Pos(), &ast.IfStatement{Cond: a.value, Then: u.stmt(s.Then), Else: u.stmt(s.Else)})
		return wrap(s.Pos(), a.binds, ifStmt)
	case *ast.RecordCreateStatement:
		var binds []ast.Statement
		label := u.atomizeInto(s.Label, &binds)
		fields := make([]ast.RecordField, len(s.Fields))
		for i, field := range s.Fields {
			fields[i] = ast.RecordField{Feature: u.atomizeInto(field.Feature, &binds), Value: u.atomizeInto(field.Value, &binds)}
		}
		create := ast.AtPos(s.Pos(), &ast.RecordCreateStatement{Var: s.Var, Label: label, Fields: fields})
		return wrap(s.Pos(), binds, create)
	case *ast.ThreadStatement:
		return ast.AtPos(s.Pos(), &ast.ThreadStatement{Body: u.stmt(s.Body)})
	case *ast.TryStatement:
		return ast.AtPos(s.Pos(), &ast.TryStatement{Body: u.stmt(s.Body), ExnName: s.ExnName, ExnVar: s.ExnVar, Catch: u.stmt(s.Catch)})
	case *ast.RaiseStatement:
		a := u.atomize(s.Value)
		raise := ast.AtPos(s.Pos(), &ast.RaiseStatement{Value: a.value})
		return wrap(s.Pos(), a.binds, raise)
	default:
		return s
	}
}

// atomizeInto flattens e and appends any bindings it required to
// *binds, returning the now-trivial expression.
func (u *unnester) atomizeInto(e ast.Expression, binds *[]ast.Statement) ast.Expression {
	if e == nil {
		return nil
	}
	a := u.atomize(e)
	*binds = append(*binds, a.binds...)
	return a.value
}

// atomize reduces e to a Variable/Constant, recursively flattening any
// nested TupleExpr/RecordExpr/FeatureAccessExpr/CreateAbstraction
// first and collecting a synthetic binding for the result unless e is
// already trivial.
func (u *unnester) atomize(e ast.Expression) atom {
	switch e := e.(type) {
	case nil:
		return atom{value: nil}
	case *ast.Variable, *ast.Constant:
		return atom{value: e}
	case *ast.TupleExpr:
		var binds []ast.Statement
		label := u.atomizeInto(e.Label, &binds)
		elems := make([]ast.Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = u.atomizeInto(el, &binds)
		}
		flat := ast.AtPos(e.Pos(), &ast.TupleExpr{Label: label, Elements: elems})
		return u.bind(e.Pos(), "Tuple", flat, binds)
	case *ast.RecordExpr:
		var binds []ast.Statement
		label := u.atomizeInto(e.Label, &binds)
		fields := make([]ast.RecordField, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = ast.RecordField{Feature: u.atomizeInto(f.Feature, &binds), Value: u.atomizeInto(f.Value, &binds)}
		}
		flat := ast.AtPos(e.Pos(), &ast.RecordExpr{Label: label, Fields: fields})
		return u.bind(e.Pos(), "Record", flat, binds)
	case *ast.FeatureAccessExpr:
		var binds []ast.Statement
		rec := u.atomizeInto(e.Record, &binds)
		feat := u.atomizeInto(e.Feature, &binds)
		flat := ast.AtPos(e.Pos(), &ast.FeatureAccessExpr{Record: rec, Feature: feat})
		return u.bind(e.Pos(), "Field", flat, binds)
	case *ast.CreateAbstraction:
		captured := append([]*ast.Variable{}, e.Captured...)
		flat := ast.AtPos(e.Pos(), &ast.CreateAbstraction{Abstraction: e.Abstraction, Captured: captured})
		return u.bind(e.Pos(), "Closure", flat, nil)
	case *ast.ProcExpression:
		u.abstractions = append(u.abstractions, e.Abstraction)
		body := u.stmt(e.Body)
		u.abstractions = u.abstractions[:len(u.abstractions)-1]
		flat := ast.AtPos(e.Pos(), &ast.ProcExpression{FormalNames: e.FormalNames, Formals: e.Formals, Body: body, Abstraction: e.Abstraction})
		return u.bind(e.Pos(), "Closure", flat, nil)
	default:
		return atom{value: e}
	}
}

func (u *unnester) bind(pos ast.Position, base string, value ast.Expression, priorBinds []ast.Statement) atom {
	v := ast.NewVariable(pos, u.fresh(base))
	bind := ast.AtPos(pos, &ast.BindStatement{Left: v, Right: value})
	return atom{binds: append(priorBinds, bind), value: v}
}
