package ast

// CopyStatement reproduces stmt with freshly copied children,
// preserving its position. It is the structure-preserving rewrite
// primitive this design calls the TreeCopier: passes that need to
// change a handful of children deep in a subtree call this to get an
// independent copy, then mutate the fields they care about, rather
// than aliasing the input tree.
func CopyStatement(stmt Statement) Statement {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *SeqStatement:
		stmts := make([]Statement, len(s.Stmts))
		for i, c := range s.Stmts {
			stmts[i] = CopyStatement(c)
		}
		return AtPos(s.Pos(), &SeqStatement{Stmts: stmts})
	case *RawLocalStatement:
		decls := append([]string(nil), s.Decls...)
		return AtPos(s.Pos(), &RawLocalStatement{Decls: decls, Body: CopyStatement(s.Body)})
	case *LocalStatement:
		return AtPos(s.Pos(), &LocalStatement{Decls: s.Clone().Decls, Body: CopyStatement(s.Body)})
	case *BindStatement:
		return AtPos(s.Pos(), &BindStatement{Left: CopyExpression(s.Left), Right: CopyExpression(s.Right)})
	case *CallStatement:
		args := make([]Expression, len(s.Args))
		for i, a := range s.Args {
			args[i] = CopyExpression(a)
		}
		return AtPos(s.Pos(), &CallStatement{Proc: CopyExpression(s.Proc), Args: args})
	case *IfStatement:
		return AtPos(s.Pos(), &IfStatement{Cond: CopyExpression(s.Cond), Then: CopyStatement(s.Then), Else: CopyStatement(s.Else)})
	case *CaseStatement:
		arms := make([]CaseArm, len(s.Arms))
		for i, a := range s.Arms {
			arms[i] = CaseArm{Pattern: a.Pattern, Guard: CopyExpression(a.Guard), Body: CopyStatement(a.Body)}
		}
		return AtPos(s.Pos(), &CaseStatement{Scrutinee: CopyExpression(s.Scrutinee), Arms: arms, Default: CopyStatement(s.Default)})
	case *RecordCreateStatement:
		fields := make([]RecordField, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = RecordField{Feature: CopyExpression(f.Feature), Value: CopyExpression(f.Value)}
		}
		return AtPos(s.Pos(), &RecordCreateStatement{Var: CopyExpression(s.Var), Label: CopyExpression(s.Label), Fields: fields})
	case *SkipStatement:
		return AtPos(s.Pos(), &SkipStatement{})
	case *ThreadStatement:
		return AtPos(s.Pos(), &ThreadStatement{Body: CopyStatement(s.Body)})
	case *TryStatement:
		return AtPos(s.Pos(), &TryStatement{Body: CopyStatement(s.Body), ExnName: s.ExnName, ExnVar: s.ExnVar, Catch: CopyStatement(s.Catch)})
	case *RaiseStatement:
		return AtPos(s.Pos(), &RaiseStatement{Value: CopyExpression(s.Value)})
	case *FunctorApplyStatement:
		return AtPos(s.Pos(), &FunctorApplyStatement{Result: CopyExpression(s.Result), Functor: CopyExpression(s.Functor), Import: CopyExpression(s.Import)})
	default:
		return stmt
	}
}

// CopyExpression reproduces expr with freshly copied children,
// preserving its position.
func CopyExpression(expr Expression) Expression {
	switch e := expr.(type) {
	case nil:
		return nil
	case *RawVariable, *Variable, *Constant:
		return e // leaves: immutable, safe to share
	case *RecordExpr:
		fields := make([]RecordField, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = RecordField{Feature: CopyExpression(f.Feature), Value: CopyExpression(f.Value)}
		}
		return AtPos(e.Pos(), &RecordExpr{Label: CopyExpression(e.Label), Fields: fields})
	case *TupleExpr:
		elems := make([]Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = CopyExpression(el)
		}
		return AtPos(e.Pos(), &TupleExpr{Label: CopyExpression(e.Label), Elements: elems})
	case *FeatureAccessExpr:
		return AtPos(e.Pos(), &FeatureAccessExpr{Record: CopyExpression(e.Record), Feature: CopyExpression(e.Feature)})
	case *ProcExpression:
		return AtPos(e.Pos(), &ProcExpression{FormalNames: e.FormalNames, Formals: e.Formals, Body: CopyStatement(e.Body), Abstraction: e.Abstraction})
	case *FunExpression:
		return AtPos(e.Pos(), &FunExpression{FormalNames: e.FormalNames, Formals: e.Formals, Body: CopyStatement(e.Body), Result: CopyExpression(e.Result), Abstraction: e.Abstraction})
	case *CaseExpr:
		arms := make([]CaseExprArm, len(e.Arms))
		for i, a := range e.Arms {
			arms[i] = CaseExprArm{Pattern: a.Pattern, Guard: CopyExpression(a.Guard), Result: CopyExpression(a.Result)}
		}
		return AtPos(e.Pos(), &CaseExpr{Scrutinee: CopyExpression(e.Scrutinee), Arms: arms, Default: CopyExpression(e.Default)})
	case *CreateAbstraction:
		vars := append([]*Variable(nil), e.Captured...)
		return AtPos(e.Pos(), &CreateAbstraction{Abstraction: e.Abstraction, Captured: vars})
	case *FunctorExpression:
		return e.Clone()
	default:
		return expr
	}
}
