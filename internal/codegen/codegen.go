package codegen

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/diag"
	"github.com/ozboot/ozc/internal/symtab"
)

// Result is CodeGen's output: one CodeArea per abstraction in the
// program, keyed by abstraction identity (the side table
// symtab/abstraction.go's doc comment calls for, to avoid a
// symtab<->codegen import cycle).
type Result struct {
	Areas map[*symtab.Abstraction]*CodeArea
	// Order preserves prog.AllAbstractions()'s order (top-level first,
	// then each hoisted abstraction in creation order), for the
	// emitter to walk deterministically.
	Order []*symtab.Abstraction
}

// AreaFor returns the CodeArea generated for abs.
func (r *Result) AreaFor(abs *symtab.Abstraction) *CodeArea {
	return r.Areas[abs]
}

// Generate walks every abstraction in prog (post-Flattener: no
// ProcExpression survives in any body) and
// emits its opcodes into a fresh CodeArea. Errors are recorded on
// prog.Errors as CategoryInternal, since any AST shape CodeGen cannot
// handle at this point is a shape no earlier pass should have left
// behind.
func Generate(prog *symtab.Program) *Result {
	res := &Result{Areas: make(map[*symtab.Abstraction]*CodeArea)}
	for _, abs := range prog.AllAbstractions() {
		area := NewCodeArea(abs)
		res.Areas[abs] = area
		res.Order = append(res.Order, abs)

		g := &gen{prog: prog, area: area}
		for _, f := range abs.Formals {
			area.YFor(f) // formals occupy the low Y-registers, declaration order
		}
		pos := diag.Position{}
		if abs.Body != nil {
			if n, ok := abs.Body.(ast.Statement); ok {
				g.stmt(n)
				pos = n.Pos()
			}
		}
		area.Emit(&Opcode{Code: OpReturn, Size: opcodeSize(0, false, false)})
		for _, h := range g.holes {
			if !h.filled {
				prog.Errors.Fatalf(pos, "codegen: unpatched jump hole in abstraction")
			}
		}
	}
	return res
}

type gen struct {
	prog *symtab.Program
	area *CodeArea
	holes []*Hole
}

func (g *gen) fatalf(pos ast.Position, format string, args ...any) {
	g.prog.Errors.Fatalf(pos, format, args...)
}

// stmt emits the opcodes for s, resetting the X bump allocator
// between top-level statements of a sequence.
func (g *gen) stmt(s ast.Statement) {
	switch s := s.(type) {
	case nil, *ast.SkipStatement:
		return
	case *ast.SeqStatement:
		for _, c := range s.Stmts {
			g.stmt(c)
		}
	case *ast.LocalStatement:
		for _, d := range s.Decls {
			g.area.YFor(d)
		}
		g.stmt(s.Body)
	case *ast.BindStatement:
		g.area.ResetX()
		g.emitBind(s)
	case *ast.CallStatement:
		g.area.ResetX()
		g.emitCall(s)
	case *ast.IfStatement:
		g.emitIf(s)
	case *ast.RecordCreateStatement:
		g.area.ResetX()
		g.emitRecordCreate(s)
	case *ast.ThreadStatement:
		g.area.Emit(&Opcode{Code: OpThreadBegin, Size: opcodeSize(0, false, false)})
		g.stmt(s.Body)
		g.area.Emit(&Opcode{Code: OpThreadEnd, Size: opcodeSize(0, false, false)})
	case *ast.TryStatement:
		g.emitTry(s)
	case *ast.RaiseStatement:
		g.area.ResetX()
		src := g.value(s.Value)
		g.area.Emit(&Opcode{Code: OpRaise, Src: src, Size: opcodeSize(1, false, false)})
	default:
		g.fatalf(s.Pos(), "codegen: unsupported statement %T reached CodeGen", s)
	}
}

// value returns a register holding e's value. e is always a Variable
// or Constant here: every other shape was eliminated by the Unnester
// before CodeGen runs.
func (g *gen) value(e ast.Expression) Reg {
	switch e := e.(type) {
	case *ast.Variable:
		return g.regFor(e.Symbol)
	case *ast.Constant:
		return g.area.RegisterFor(e)
	default:
		g.fatalf(e.Pos(), "codegen: expected an atomized operand, got %T", e)
		return Reg{}
	}
}

// regFor returns sym's register: Y if it's a formal/local of the
// current abstraction, G if it's a captured global.
func (g *gen) regFor(sym *symtab.VariableSymbol) Reg {
	if sym.Owner() == g.area.Abstraction {
		return g.area.YFor(sym)
	}
	return g.area.GFor(sym)
}

func (g *gen) emitBind(s *ast.BindStatement) {
	dstVar, ok := s.Left.(*ast.Variable)
	if !ok {
		g.fatalf(s.Pos(), "codegen: bind target is not a resolved Variable: %T", s.Left)
		return
	}
	dst := g.regFor(dstVar.Symbol)

	switch rhs := s.Right.(type) {
	case *ast.Variable, *ast.Constant:
		src := g.value(rhs)
		g.emitMoveOrLoad(dst, src)
	case *ast.TupleExpr:
		g.emitMakeTuple(dst, rhs)
	case *ast.RecordExpr:
		g.emitMakeRecord(dst, rhs)
	case *ast.FeatureAccessExpr:
		rec := g.value(rhs.Record)
		g.emitGetFeature(dst, rec, rhs.Feature)
	case *ast.CreateAbstraction:
		g.emitCreateAbstraction(dst, rhs)
	default:
		g.fatalf(s.Pos(), "codegen: unsupported bind right-hand side %T", rhs)
	}
}

func (g *gen) emitMoveOrLoad(dst, src Reg) {
	if src.Class == RegK {
		g.area.Emit(&Opcode{Code: OpLoadConst, Dst: dst, Const: src, Size: opcodeSize(1, true, false)})
		return
	}
	g.area.Emit(&Opcode{Code: OpMove, Dst: dst, Src: src, Size: opcodeSize(2, false, false)})
}

func (g *gen) emitMakeTuple(dst Reg, e *ast.TupleExpr) {
	var label Reg
	hasLabel := e.Label != nil
	if hasLabel {
		label = g.value(e.Label)
	}
	elems := make([]Reg, len(e.Elements))
	for i, el := range e.Elements {
		elems[i] = g.value(el)
	}
	op := &Opcode{Code: OpMakeTuple, Dst: dst, Regs: elems, Size: opcodeSize(len(elems)+1, hasLabel, false)}
	if hasLabel {
		op.Const = label
	}
	g.area.Emit(op)
}

func (g *gen) emitMakeRecord(dst Reg, e *ast.RecordExpr) {
	features := make([]ast.Feature, len(e.Fields))
	values := make([]Reg, len(e.Fields))
	for i, field := range e.Fields {
		features[i] = constFeature(field.Feature)
		values[i] = g.value(field.Value)
	}
	arity := ast.ArityConst(e.Pos(), labelAtom(e.Label), features)
	k := g.area.RegisterFor(arity)
	op := &Opcode{Code: OpMakeRecord, Dst: dst, Const: k, Regs: values, Size: opcodeSize(len(values)+1, true, false)}
	g.area.Emit(op)
}

func labelAtom(label ast.Expression) string {
	if c, ok := label.(*ast.Constant); ok && c.Kind == ast.ConstAtom {
		return c.Atom
	}
	return ""
}

func constFeature(e ast.Expression) ast.Feature {
	c, ok := e.(*ast.Constant)
	if !ok {
		return ast.Feature{}
	}
	if c.Kind == ast.ConstInt {
		return ast.Feature{IsInt: true, Int: c.Int}
	}
	return ast.Feature{Atom: c.Atom}
}

func (g *gen) emitGetFeature(dst, rec Reg, feature ast.Expression) {
	op := &Opcode{Code: OpGetFeature, Dst: dst, Src: rec, Size: opcodeSize(2, false, false)}
	if c, ok := feature.(*ast.Constant); ok {
		op.Const = g.area.RegisterFor(c)
		op.Size = opcodeSize(2, true, false)
	} else {
		op.Regs = []Reg{g.value(feature)}
		op.Size = opcodeSize(3, false, false)
	}
	g.area.Emit(op)
}

func (g *gen) emitCreateAbstraction(dst Reg, e *ast.CreateAbstraction) {
	k := g.area.RegisterFor(ast.CodeAreaConst(e.Pos(), e.Abstraction))
	captured := make([]Reg, len(e.Captured))
	for i, v := range e.Captured {
		captured[i] = g.value(v)
	}
	op := &Opcode{Code: OpCreateAbstraction, Dst: dst, Const: k, Regs: captured, Size: opcodeSize(len(captured)+1, true, false)}
	g.area.Emit(op)
}

func (g *gen) emitCall(s *ast.CallStatement) {
	if c, ok := s.Proc.(*ast.Constant); ok && c.Kind == ast.ConstBuiltin {
		g.emitBuiltinCall(c, s.Args)
		return
	}
	proc := g.value(s.Proc)
	args := make([]Reg, len(s.Args))
	for i, a := range s.Args {
		args[i] = g.value(a)
	}
	g.area.Emit(&Opcode{Code: OpCall, Src: proc, Regs: args, Size: opcodeSize(len(args)+1, false, false)})
}

func (g *gen) emitBuiltinCall(c *ast.Constant, args []ast.Expression) {
	k := g.area.RegisterFor(c)
	regs := make([]Reg, len(args))
	for i, a := range args {
		regs[i] = g.value(a)
	}
	g.area.Emit(&Opcode{Code: OpCallBuiltin, Const: k, Regs: regs, Size: opcodeSize(len(regs)+1, true, false)})
}

// emitIf compiles `if Cond then Then else Else end` as: evaluate Cond,
// JumpIfFalse to a hole patched to the Else branch's start, emit Then,
// Jump to a hole patched past Else, emit Else.
func (g *gen) emitIf(s *ast.IfStatement) {
	g.area.ResetX()
	cond := g.value(s.Cond)
	elseJump := &Opcode{Code: OpJumpIfFalse, Src: cond, Size: opcodeSize(1, false, true)}
	elseHole := g.area.NewHole(elseJump)
	g.holes = append(g.holes, elseHole)

	g.stmt(s.Then)

	endJump := &Opcode{Code: OpJump, Size: opcodeSize(0, false, true)}
	endHole := g.area.NewHole(endJump)
	g.holes = append(g.holes, endHole)

	elseHole.Patch(g.area.PC())
	g.stmt(s.Else)
	endHole.Patch(g.area.PC())
}

// emitTry compiles `try Body catch ExnName then Catch end` as:
// PushCatch (hole patched to the catch handler's start, binding the
// raised value into ExnVar's register), Body, PopCatch, Jump past the
// handler, the handler itself.
func (g *gen) emitTry(s *ast.TryStatement) {
	exnReg := g.regFor(s.ExnVar)
	pushCatch := &Opcode{Code: OpPushCatch, Dst: exnReg, Size: opcodeSize(1, false, true)}
	catchHole := g.area.NewHole(pushCatch)
	g.holes = append(g.holes, catchHole)

	g.stmt(s.Body)
	g.area.Emit(&Opcode{Code: OpPopCatch, Size: opcodeSize(0, false, false)})

	endJump := &Opcode{Code: OpJump, Size: opcodeSize(0, false, true)}
	endHole := g.area.NewHole(endJump)
	g.holes = append(g.holes, endHole)

	catchHole.Patch(g.area.PC())
	g.stmt(s.Catch)
	endHole.Patch(g.area.PC())
}

func (g *gen) emitRecordCreate(s *ast.RecordCreateStatement) {
	dstVar, ok := s.Var.(*ast.Variable)
	if !ok {
		g.fatalf(s.Pos(), "codegen: record-create target is not a resolved Variable: %T", s.Var)
		return
	}
	dst := g.regFor(dstVar.Symbol)
	features := make([]ast.Feature, len(s.Fields))
	values := make([]Reg, len(s.Fields))
	for i, field := range s.Fields {
		features[i] = constFeature(field.Feature)
		values[i] = g.value(field.Value)
	}
	arity := ast.ArityConst(s.Pos(), labelAtom(s.Label), features)
	k := g.area.RegisterFor(arity)
	g.area.Emit(&Opcode{Code: OpMakeRecord, Dst: dst, Const: k, Regs: values, Size: opcodeSize(len(values)+1, true, false)})
}
