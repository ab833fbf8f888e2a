package ast

import "testing"

func TestConstantKeyEqualForEqualValues(t *testing.T) {
	a := IntConst(Position{}, 7)
	b := IntConst(Position{}, 7)
	if a.Key() != b.Key() {
		t.Fatalf("two IntConst(7) produced unequal keys: %v != %v", a.Key(), b.Key())
	}

	c := IntConst(Position{}, 8)
	if a.Key() == c.Key() {
		t.Fatal("IntConst(7) and IntConst(8) produced equal keys")
	}
}

func TestConstantKeyDistinguishesKinds(t *testing.T) {
	atom := AtomConst(Position{}, "x")
	unit := UnitConst(Position{})
	if atom.Key() == unit.Key() {
		t.Fatal("AtomConst and UnitConst produced equal keys")
	}
}

func TestConstantKeyArityDistinguishesFeatureLists(t *testing.T) {
	a := ArityConst(Position{}, "point", []Feature{{IsInt: true, Int: 1}, {IsInt: true, Int: 2}})
	b := ArityConst(Position{}, "point", []Feature{{IsInt: true, Int: 1}, {IsInt: true, Int: 2}})
	if a.Key() != b.Key() {
		t.Fatalf("two identical arities produced unequal keys: %v != %v", a.Key(), b.Key())
	}

	c := ArityConst(Position{}, "point", []Feature{{IsInt: true, Int: 1}, {IsInt: true, Int: 3}})
	if a.Key() == c.Key() {
		t.Fatal("arities with different feature lists produced equal keys")
	}
}

func TestFeatureLessOrdersIntsBeforeAtoms(t *testing.T) {
	intFeature := Feature{IsInt: true, Int: 5}
	atomFeature := Feature{Atom: "a"}
	if !intFeature.Less(atomFeature) {
		t.Fatal("an int feature must sort before any atom feature")
	}
	if atomFeature.Less(intFeature) {
		t.Fatal("an atom feature must never sort before an int feature")
	}
}

func TestFunctorExpressionCloneIsIndependent(t *testing.T) {
	f := &FunctorExpression{
		Name:    "Orig",
		Require: []ImportSpec{{LocalName: "X", ModuleURL: "X.ozf"}},
		Exports: []ExportSpec{{Feature: "A"}},
	}
	c := f.Clone()

	c.Require[0].LocalName = "Changed"
	if f.Require[0].LocalName != "X" {
		t.Fatal("Clone aliased the Require slice with its source")
	}

	c.Exports = append(c.Exports, ExportSpec{Feature: "B"})
	if len(f.Exports) != 1 {
		t.Fatal("Clone aliased the Exports slice's backing array with its source")
	}
}
