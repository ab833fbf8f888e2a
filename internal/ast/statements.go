package ast

import "github.com/ozboot/ozc/internal/symtab"

// SeqStatement is sequential composition: run Stmts in order.
type SeqStatement struct {
	StmtNode
	Stmts []Statement
}

// Clone returns a shallow copy with an independent Stmts slice, for
// passes that rewrite a subset of the children in place (the
// TreeCopier role).
func (s *SeqStatement) Clone() *SeqStatement {
	c := *s
	c.Stmts = append([]Statement(nil), s.Stmts...)
	return &c
}

// Seq builds a SeqStatement, flattening nested SeqStatements and
// dropping Skip so the flattener never has to deal with them.
func Seq(pos Position, stmts ...Statement) Statement {
	flat := make([]Statement, 0, len(stmts))
	for _, s := range stmts {
		switch v := s.(type) {
		case nil:
			continue
		case *SkipStatement:
			continue
		case *SeqStatement:
			flat = append(flat, v.Stmts...)
		default:
			flat = append(flat, s)
		}
	}
	if len(flat) == 0 {
		return AtPos(pos, &SkipStatement{})
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return AtPos(pos, &SeqStatement{Stmts: flat})
}

// RawLocalStatement is the pre-Namer form: textual declarations whose
// names have not yet been resolved to symbols.
type RawLocalStatement struct {
	StmtNode
	Decls []string
	Body Statement
}

// LocalStatement is the post-Namer (and post-Unnester) form: each
// declared name already has a fresh VariableSymbol.
type LocalStatement struct {
	StmtNode
	Decls []*symtab.VariableSymbol
	Body Statement
}

func (s *LocalStatement) Clone() *LocalStatement {
	c := *s
	c.Decls = append([]*symtab.VariableSymbol(nil), s.Decls...)
	return &c
}

// BindStatement is `Left = Right`: pattern-free binding of an already
// resolved variable (or, pre-Unnester, an arbitrary expression target
// is never valid — binding targets are always variables by the time
// this node exists).
type BindStatement struct {
	StmtNode
	Left Expression // *RawVariable pre-Namer, *Variable after
	Right Expression
}

// CallStatement is a procedure call statement: `{Proc Args...}`.
type CallStatement struct {
	StmtNode
	Proc Expression
	Args []Expression
}

func (s *CallStatement) Clone() *CallStatement {
	c := *s
	c.Args = append([]Expression(nil), s.Args...)
	return &c
}

// IfStatement is a conditional: `if Cond then Then else Else end`.
type IfStatement struct {
	StmtNode
	Cond Expression
	Then Statement
	Else Statement // nil means an implicit `skip`
}

// CaseArm is one arm of a CaseStatement: a pattern, an
// optional guard, and the body to run when both match.
type CaseArm struct {
	Pattern Pattern
	Guard Expression // nil if unguarded
	Body Statement
}

// CaseStatement is the pre-PatternMatcher `case` construct in
// statement position. The PatternMatcher pass replaces it with a
// decision tree of IfStatement/feature tests; after that pass no
// CaseStatement survives in the tree.
type CaseStatement struct {
	StmtNode
	Scrutinee Expression
	Arms []CaseArm
	// Default runs when no arm matches; nil means "raise a
	// pattern-match failure", filled in by the PatternMatcher.
	Default Statement
}

// RecordCreateStatement declares Var bound to a freshly constructed
// record: `Var = Label(Features)`. ConstantFolding rewrites one whose
// features are exactly 1..n into a BindStatement of a TupleExpr.
type RecordCreateStatement struct {
	StmtNode
	Var Expression // *RawVariable pre-Namer, *Variable after
	Label Expression
	Fields []RecordField
}

// SkipStatement is the no-op statement.
type SkipStatement struct {
	StmtNode
}

// ThreadStatement runs Body in a new (conceptual) thread.
type ThreadStatement struct {
	StmtNode
	Body Statement
}

// TryStatement is `try Body catch ExnName then Catch end`. ExnName is
// the raw exception-variable name until the Namer declares it and
// fills ExnVar.
type TryStatement struct {
	StmtNode
	Body Statement
	ExnName string
	ExnVar *symtab.VariableSymbol // bound to the raised value within Catch
	Catch Statement
}

// RaiseStatement raises Value as an exception.
type RaiseStatement struct {
	StmtNode
	Value Expression
}

// FunctorApplyStatement is a functor application expressed as a
// statement: `Result = {Functor.apply Import}`, pre-DesugarFunctor.
type FunctorApplyStatement struct {
	StmtNode
	Result Expression // *RawVariable pre-Namer, *Variable after
	Functor Expression
	Import Expression
}
