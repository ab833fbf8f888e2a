// Package assemble implements the design: the three driver-selected
// top-level program shapes (module, base-env, linker), each producing
// the raw (pre-Namer) statement that becomes the program's rawCode —
// fed into the same Namer-onward pipeline as any other parsed
// program, so BootMM/Base references resolve and closure-convert
// exactly like user code.
package assemble

import (
	"github.com/ozboot/ozc/internal/ast"
)

// SystemModules is "fixed allow-list" identifying the
// boot modules a base environment always needs, made concrete: the
// conventional Oz system module names. The driver may extend this map
// with names discovered from `-m/--module` descriptors.
var SystemModules = map[string]bool{
	"Base": true,
	"System": true,
	"OS": true,
	"Pickle": true,
	"Property": true,
	"Module": true,
	"Error": true,
	"Exception": true,
	"Object": true,
	"File": true,
	"URL": true,
	"Connection": true,
	"Component": true,
	"Pointer": true,
	"Tk": true,
	"Boot": true,
}

// ModuleURL applies URL convention: system modules live
// under x-oz://system/<name>.ozf; user modules are just <name>.ozf.
func ModuleURL(name string) string {
	if SystemModules[name] {
		return "x-oz://system/" + name + ".ozf"
	}
	return name + ".ozf"
}

func bootMM(pos ast.Position) ast.Expression {
	return ast.AtPos(pos, &ast.RawVariable{Name: "BootMM"})
}

func feature(pos ast.Position, record ast.Expression, name string) ast.Expression {
	return ast.AtPos(pos, &ast.FeatureAccessExpr{Record: record, Feature: ast.AtomConst(pos, name)})
}

// Module wraps a single parsed functor into
// `{BootMM.registerFunctor '<url>' <functor>}`.
func Module(pos ast.Position, url string, functor ast.Expression) ast.Statement {
	return ast.AtPos(pos, &ast.CallStatement{
		Proc: feature(pos, bootMM(pos), "registerFunctor"),
		Args: []ast.Expression{ast.AtomConst(pos, url), functor},
	})
}

// Linker emits `{BootMM.run '<mainURL>'}`.
func Linker(pos ast.Position, mainURL string) ast.Statement {
	return ast.AtPos(pos, &ast.CallStatement{
		Proc: feature(pos, bootMM(pos), "run"),
		Args: []ast.Expression{ast.AtomConst(pos, mainURL)},
	})
}
