package ast

import "github.com/ozboot/ozc/internal/symtab"

// WildcardPattern matches anything and binds nothing: `_`.
type WildcardPattern struct {
	PatNode
}

// BindingPattern matches anything and binds it to a fresh variable.
// Pre-Namer it carries only Name; the Namer fills Symbol.
type BindingPattern struct {
	PatNode
	Name string
	Symbol *symtab.VariableSymbol
}

// LiteralPattern matches only records/values equal to Value.
type LiteralPattern struct {
	PatNode
	Value *Constant
}

// FeaturePattern is one feature of a RecordPattern.
type FeaturePattern struct {
	Feature Feature
	Pattern Pattern
}

// RecordPattern matches a record with the given label and features.
// Tail is non-nil for an open pattern (`...`) that permits additional,
// unlisted features.
type RecordPattern struct {
	PatNode
	Label string
	Features []FeaturePattern
	Tail *BindingPattern
}

func (p *RecordPattern) Clone() *RecordPattern {
	c := *p
	c.Features = append([]FeaturePattern(nil), p.Features...)
	return &c
}
