package ast

import "github.com/ozboot/ozc/internal/symtab"

// ImportFeature binds one feature of an imported module's export
// record to a local name: `import M(f1 f2:Alias)`.
type ImportFeature struct {
	Feature string
	Local string // defaults to Feature when no `:Alias` is given
}

// ImportSpec is one entry of a functor's `import` clause: a local
// module name bound to a URL, optionally narrowed to specific
// features.
type ImportSpec struct {
	LocalName string
	ModuleURL string
	Features []ImportFeature // empty means "import the whole record"

	// Symbol is the VariableSymbol the Namer declared for LocalName,
	// filled in once resolution runs. DesugarFunctor reuses it when
	// extracting the module's value out of the import record, instead
	// of minting a second, disconnected symbol that the functor body's
	// own references never see.
	Symbol *symtab.VariableSymbol
}

// ExportSpec is one entry of a functor's `export` clause: a feature of
// the returned export record bound to a local variable.
type ExportSpec struct {
	Feature string
	Local Expression // *RawVariable pre-Namer, *Variable after
}

// FunctorExpression is an Oz functor: `functor Name require ... import
// ... prepare ... define ... export ... end`. DesugarFunctor lowers it
// into a procedure taking an import record and returning an export
// record ; no FunctorExpression survives that pass.
type FunctorExpression struct {
	ExprNode
	Name string
	Require []ImportSpec // modules required unconditionally at load time
	Imports []ImportSpec // modules required through the application's import record
	Prepare Statement // nil if the functor has no `prepare` clause
	Define Statement // nil if the functor has no `define` clause
	Exports []ExportSpec
}

// Clone returns a shallow copy with independent slices, used by
// mergeBaseFunctors (package assemble) to build a combined functor
// without aliasing either input's slices.
func (f *FunctorExpression) Clone() *FunctorExpression {
	c := *f
	c.Require = append([]ImportSpec(nil), f.Require...)
	c.Imports = append([]ImportSpec(nil), f.Imports...)
	c.Exports = append([]ExportSpec(nil), f.Exports...)
	return &c
}
