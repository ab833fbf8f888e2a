package symtab

import (
	"fmt"

	"github.com/ozboot/ozc/internal/diag"
)

// Program is the mutable aggregate the whole pipeline operates on. It
// owns the AST root (via TopLevel), the hoisted abstractions the
// Flattener produces, the builtin registry, and the running error
// list. Generalizes the prior code's CompilerState: one long-lived object
// the driver constructs once and every pass mutates in place.
type Program struct {
	TopLevel *TopLevelAbstraction

	// Flat is the Flattener's output: every hoisted abstraction in the
	// program, in the order they were created. TopLevel is not part of
	// this list; it is the root, not a hoisted closure.
	Flat []*Abstraction

	// Builtins is the registry of known builtins, keyed by name.
	Builtins map[string]*BuiltinSymbol

	// BaseEnvSymbol is the Base module variable; BootMMSymbol is the
	// boot module manager variable. No pass assigns them; both stay nil
	// unless a caller sets them.
	BaseEnvSymbol *VariableSymbol
	BootMMSymbol *VariableSymbol

	// BaseDeclarations holds the names exported by the base
	// environment, mutated by base-env assembly as functors merge.
	BaseDeclarations []string

	// IsBaseEnvironment marks base-env assembly mode. The driver sets
	// it; no transform pass reads it.
	IsBaseEnvironment bool

	Errors *diag.Collector

	// nextVarID and syntheticCounters back NewVariableSymbol/
	// SyntheticName. Attached to the Program rather than kept
	// process-global so two Programs (chiefly two tests running in the
	// same process) never share an id space: ids and synthetic suffixes
	// are reproducible from a Program's own call sequence alone.
	nextVarID int64
	syntheticCounters map[string]int
}

// NewProgram constructs an empty Program ready for the Namer.
func NewProgram() *Program {
	return &Program{
		Builtins: make(map[string]*BuiltinSymbol),
		Errors: diag.NewCollector(),
		syntheticCounters: make(map[string]int),
	}
}

// freshVarID hands out this Program's next variable-symbol id. Not
// safe for concurrent use: the pipeline names one Program
// single-threaded, same as every other Program method.
func (p *Program) freshVarID() int64 {
	p.nextVarID++
	return p.nextVarID
}

// SyntheticName mints a fresh compiler-generated name of the form
// `base$N`, scoped to this Program. Names are unique only in
// combination with the symbol's own id — two synthetic variables may
// legitimately share a textual name if minted far apart, since
// identity is by Symbol, never by name.
func (p *Program) SyntheticName(base string) string {
	n := p.syntheticCounters[base]
	p.syntheticCounters[base] = n + 1
	return fmt.Sprintf("%s$%d", base, n)
}

// RegisterBuiltin adds b to the registry. A builtin with a name that
// is already registered replaces the earlier entry; no error is
// reported.
func (p *Program) RegisterBuiltin(b *BuiltinSymbol) {
	p.Builtins[b.Name] = b
}

// LookupBuiltin returns the builtin named name, or nil if none exists.
func (p *Program) LookupBuiltin(name string) *BuiltinSymbol {
	return p.Builtins[name]
}

// AddAbstraction appends a to the flat abstraction list. Called by the
// Flattener once per hoisted ProcExpression/FunExpression.
func (p *Program) AddAbstraction(a *Abstraction) {
	p.Flat = append(p.Flat, a)
}

// AllAbstractions returns every abstraction in the program: the
// top-level one first, then every hoisted one in creation order.
func (p *Program) AllAbstractions() []*Abstraction {
	out := make([]*Abstraction, 0, len(p.Flat)+1)
	if p.TopLevel != nil {
		out = append(out, p.TopLevel.Abstraction)
	}
	out = append(out, p.Flat...)
	return out
}
