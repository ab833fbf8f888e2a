package symtab

import "testing"

func TestSymbolIDsAreUnique(t *testing.T) {
	prog := NewProgram()
	a := NewVariableSymbol(prog, "X")
	b := NewVariableSymbol(prog, "X")
	if a.ID() == b.ID() {
		t.Fatalf("two distinct symbols got the same id %d", a.ID())
	}
}

func TestSymbolIDsAreScopedPerProgram(t *testing.T) {
	p1 := NewProgram()
	p2 := NewProgram()
	a := NewVariableSymbol(p1, "X")
	b := NewVariableSymbol(p2, "X")
	if a.ID() != b.ID() {
		t.Fatalf("two fresh Programs' first variable ids diverged: %d vs %d", a.ID(), b.ID())
	}
}

func TestSetOwnerTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second SetOwner call")
		}
	}()
	prog := NewProgram()
	v := NewVariableSymbol(prog, "X")
	abs1 := NewAbstraction()
	abs2 := NewAbstraction()
	v.SetOwner(abs1)
	v.SetOwner(abs2)
}

func TestSyntheticNameIsUnique(t *testing.T) {
	prog := NewProgram()
	n1 := prog.SyntheticName("tmp")
	n2 := prog.SyntheticName("tmp")
	if n1 == n2 {
		t.Fatalf("two synthetic names collided: %q", n1)
	}
}

func TestSyntheticNameIsScopedPerProgram(t *testing.T) {
	p1 := NewProgram()
	p2 := NewProgram()
	if p1.SyntheticName("tmp") != p2.SyntheticName("tmp") {
		t.Fatal("two fresh Programs' first synthetic name for the same base should match")
	}
}

func TestNoSymbolIsNeverDefined(t *testing.T) {
	if NoSymbol().IsDefined() {
		t.Fatal("NoSymbol().IsDefined() should always be false")
	}
	if NoSymbol().Owner() != nil {
		t.Fatal("NoSymbol().Owner() should be nil")
	}
}

func TestAbstractionAddFormalSetsOwner(t *testing.T) {
	prog := NewProgram()
	abs := NewAbstraction()
	v := NewVariableSymbol(prog, "X")
	abs.AddFormal(v)
	if v.Owner() != abs {
		t.Fatal("AddFormal did not set the formal's owner")
	}
	if !v.Formal {
		t.Fatal("AddFormal did not mark the symbol as a formal")
	}
}

func TestAbstractionAddGlobalDedupsAndPreservesOrder(t *testing.T) {
	prog := NewProgram()
	abs := NewAbstraction()
	owner := NewAbstraction()
	a := NewVariableSymbol(prog, "A")
	owner.AddLocal(a)
	b := NewVariableSymbol(prog, "B")
	owner.AddLocal(b)

	abs.AddGlobal(a)
	abs.AddGlobal(b)
	abs.AddGlobal(a) // duplicate, must not move or re-append

	if len(abs.Globals) != 2 {
		t.Fatalf("expected 2 globals after duplicate AddGlobal, got %d", len(abs.Globals))
	}
	if abs.Globals[0] != a || abs.Globals[1] != b {
		t.Fatal("AddGlobal did not preserve first-encounter order")
	}
	idx, ok := abs.GlobalIndex(a)
	if !ok || idx != 0 {
		t.Fatalf("GlobalIndex(a) = %d, %v; want 0, true", idx, ok)
	}
	if a.Owner() != owner {
		t.Fatal("AddGlobal must not reassign the defining abstraction's ownership")
	}
}
