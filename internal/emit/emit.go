// Package emit serializes a compiled Program plus its CodeAreas into
// C++ source text : one createCodeArea<id> function per
// abstraction, a distinguished entry function for the top-level
// abstraction, and per-constant initializers. Pure transformation: it
// never mutates the AST or the CodeAreas it reads.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/codegen"
	"github.com/ozboot/ozc/internal/symtab"
)

// Options configures one emission run: the additional headers the
// driver requested (-h/--header, repeatable, order preserved) and the
// name the top-level abstraction's function should take, which varies
// by assembly strategy (createFunctor_<name>, createBaseEnv,
// createRunThread — depending on assembly mode).
type Options struct {
	Headers []string
	EntryFn string
}

// Emit renders prog's top-level and every hoisted abstraction's
// CodeArea (res) as one C++ translation unit.
func Emit(prog *symtab.Program, res *codegen.Result, opts Options) string {
	out := newCppBuffer("translation-unit")
	out.WriteString("// Generated by ozc. Do not edit by hand.\n")
	out.WriteString("#include \"ozvm.h\"\n")
	for _, h := range opts.Headers {
		out.WriteString(fmt.Sprintf("#include %q\n", h))
	}
	out.WriteString("\n")

	for _, abs := range res.Order {
		area := res.AreaFor(abs)
		name := fnName(abs, prog)
		if abs == prog.TopLevel.Abstraction && opts.EntryFn != "" {
			name = opts.EntryFn
		}
		out.WriteString(emitCodeArea(name, area, prog, res))
		out.WriteString("\n")
	}

	return out.Commit()
}

// fnName is the default createCodeArea<id> name for a non-entry
// abstraction.
func fnName(abs *symtab.Abstraction, prog *symtab.Program) string {
	return fmt.Sprintf("createCodeArea%d", abs.ID())
}

func emitCodeArea(fn string, area *codegen.CodeArea, prog *symtab.Program, res *codegen.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CodeArea* %s(VM* vm) {\n", fn)

	fmt.Fprintf(&b, " static ByteCode codeBlock[] = {\n")
	for _, op := range area.Opcodes {
		fmt.Fprintf(&b, " %s,\n", opcodeLiteral(op))
	}
	fmt.Fprintf(&b, " };\n")

	fmt.Fprintf(&b, " CodeArea* codeArea = vm->allocCodeArea(%d, codeBlock, sizeof(codeBlock), %d);\n",
		len(area.Constants), area.XCount())

	for i, k := range area.Constants {
		fmt.Fprintf(&b, " %s\n", constantInit(i, k, prog, res))
	}

	fmt.Fprintf(&b, " return codeArea;\n")
	fmt.Fprintf(&b, "}\n")
	return b.String()
}

// regLiteral renders r as the C++ register-constructor call the VM
// header exposes for each register class.
func regLiteral(r codegen.Reg) string {
	return fmt.Sprintf("%s(%d)", r.Class.String(), r.Index)
}

func regList(rs []codegen.Reg) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = regLiteral(r)
	}
	return strings.Join(parts, ", ")
}

// opcodeLiteral renders one opcode as a `ByteCode` aggregate
// initializer, one per "opcode-specific textual form
// (opCode.code)".
func opcodeLiteral(op *codegen.Opcode) string {
	switch op.Code {
	case codegen.OpMove:
		return fmt.Sprintf("ByteCode::Move(%s, %s)", regLiteral(op.Dst), regLiteral(op.Src))
	case codegen.OpLoadConst:
		return fmt.Sprintf("ByteCode::LoadConst(%s, %s)", regLiteral(op.Dst), regLiteral(op.Const))
	case codegen.OpCallBuiltin:
		return fmt.Sprintf("ByteCode::CallBuiltin(%s, {%s})", regLiteral(op.Const), regList(op.Regs))
	case codegen.OpCall:
		return fmt.Sprintf("ByteCode::Call(%s, {%s})", regLiteral(op.Src), regList(op.Regs))
	case codegen.OpReturn:
		return "ByteCode::Return()"
	case codegen.OpJump:
		return fmt.Sprintf("ByteCode::Jump(%d)", op.Imm)
	case codegen.OpJumpIfFalse:
		return fmt.Sprintf("ByteCode::JumpIfFalse(%s, %d)", regLiteral(op.Src), op.Imm)
	case codegen.OpMakeTuple:
		label := "0"
		if op.Const != (codegen.Reg{}) {
			label = regLiteral(op.Const)
		}
		return fmt.Sprintf("ByteCode::MakeTuple(%s, %s, {%s})", regLiteral(op.Dst), label, regList(op.Regs))
	case codegen.OpMakeRecord:
		return fmt.Sprintf("ByteCode::MakeRecord(%s, %s, {%s})", regLiteral(op.Dst), regLiteral(op.Const), regList(op.Regs))
	case codegen.OpGetFeature:
		if len(op.Regs) > 0 {
			return fmt.Sprintf("ByteCode::GetFeature(%s, %s, %s)", regLiteral(op.Dst), regLiteral(op.Src), regLiteral(op.Regs[0]))
		}
		return fmt.Sprintf("ByteCode::GetFeature(%s, %s, %s)", regLiteral(op.Dst), regLiteral(op.Src), regLiteral(op.Const))
	case codegen.OpCreateAbstraction:
		return fmt.Sprintf("ByteCode::CreateAbstraction(%s, %s, {%s})", regLiteral(op.Dst), regLiteral(op.Const), regList(op.Regs))
	case codegen.OpPushCatch:
		return fmt.Sprintf("ByteCode::PushCatch(%s, %d)", regLiteral(op.Dst), op.Imm)
	case codegen.OpPopCatch:
		return "ByteCode::PopCatch()"
	case codegen.OpRaise:
		return fmt.Sprintf("ByteCode::Raise(%s)", regLiteral(op.Src))
	case codegen.OpThreadBegin:
		return "ByteCode::ThreadBegin()"
	case codegen.OpThreadEnd:
		return "ByteCode::ThreadEnd()"
	default:
		return fmt.Sprintf("/* unknown opcode %s */", op.Code)
	}
}

// constantInit renders the initializer that installs the constant at
// K-register index i into codeArea's constant pool, dispatching on
// kind exactly as the design calls for (atom, int, float, bool,
// unit, builtin reference, nested code area, arity).
func constantInit(i int, k *ast.Constant, prog *symtab.Program, res *codegen.Result) string {
	switch k.Kind {
	case ast.ConstAtom:
		return fmt.Sprintf("codeArea->constants[%d] = trivialBuild(vm, OZ_makeAtom(vm, %s));", i, cppString(k.Atom))
	case ast.ConstInt:
		return fmt.Sprintf("codeArea->constants[%d] = trivialBuild(vm, OZ_makeInt(vm, %d));", i, k.Int)
	case ast.ConstFloat:
		return fmt.Sprintf("codeArea->constants[%d] = trivialBuild(vm, OZ_makeFloat(vm, %s));", i, strconv.FormatFloat(k.Float, 'g', -1, 64))
	case ast.ConstBool:
		return fmt.Sprintf("codeArea->constants[%d] = trivialBuild(vm, OZ_makeBool(vm, %t));", i, k.Bool)
	case ast.ConstUnit:
		return fmt.Sprintf("codeArea->constants[%d] = trivialBuild(vm, OZ_unit(vm));", i)
	case ast.ConstBuiltin:
		return fmt.Sprintf("codeArea->constants[%d] = trivialBuild(vm, OZ_builtinRef(vm, &%s));", i, k.Builtin.CppName)
	case ast.ConstCodeArea:
		return fmt.Sprintf("codeArea->constants[%d] = trivialBuild(vm, OZ_codeAreaRef(vm, %s(vm)));", i, fnName(k.CodeAreaOf, prog))
	case ast.ConstArity:
		return fmt.Sprintf("codeArea->constants[%d] = buildArity(vm, %s, {%s});", i, cppString(k.ArityLabel), featureList(k.ArityFeatures))
	default:
		return fmt.Sprintf("/* unsupported constant kind %d at %d */", k.Kind, i)
	}
}

func featureList(features []ast.Feature) string {
	parts := make([]string, len(features))
	for i, f := range features {
		if f.IsInt {
			parts[i] = fmt.Sprintf("Feature::Int(%d)", f.Int)
		} else {
			parts[i] = fmt.Sprintf("Feature::Atom(%s)", cppString(f.Atom))
		}
	}
	return strings.Join(parts, ", ")
}

// cppString renders s as a C++ string literal, escaping quotes and
// backslashes.
func cppString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
