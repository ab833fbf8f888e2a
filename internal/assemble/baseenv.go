package assemble

import (
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/builtin"
	"github.com/ozboot/ozc/internal/symtab"
)

// mergeBaseFunctors combines several base functors into one,
// concatenating require/imports/exports and merging prepare/define by
// concatenating declarations and sequencing statements, taking the
// first non-empty Name.
func mergeBaseFunctors(functors []*ast.FunctorExpression) *ast.FunctorExpression {
	if len(functors) == 0 {
		return &ast.FunctorExpression{}
	}
	merged := functors[0].Clone()
	for _, f := range functors[1:] {
		merged.Require = append(merged.Require, f.Require...)
		merged.Imports = append(merged.Imports, f.Imports...)
		merged.Exports = append(merged.Exports, f.Exports...)
		merged.Prepare = mergeStatement(merged.Prepare, f.Prepare)
		merged.Define = mergeStatement(merged.Define, f.Define)
		if merged.Name == "" {
			merged.Name = f.Name
		}
	}
	return merged
}

// mergeStatement concatenates two optional prepare/define bodies. Two
// RawLocalStatements merge into one (declarations concatenated into a
// single scope, bodies sequenced); anything else is just sequenced.
func mergeStatement(a, b ast.Statement) ast.Statement {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	al, aok := a.(*ast.RawLocalStatement)
	bl, bok := b.(*ast.RawLocalStatement)
	if aok && bok {
		return ast.AtPos(a.Pos(), &ast.RawLocalStatement{
			Decls: append(append([]string{}, al.Decls...), bl.Decls...),
			Body: ast.Seq(a.Pos(), al.Body, bl.Body),
		})
	}
	return ast.Seq(a.Pos(), a, b)
}

// BaseDeclarations returns the exported feature names of merged, in
// order — what Program.BaseDeclarations should hold after a base-env
// assembly.
func BaseDeclarations(merged *ast.FunctorExpression) []string {
	names := make([]string, len(merged.Exports))
	for i, e := range merged.Exports {
		names[i] = e.Feature
	}
	return names
}

// BaseEnv builds the base-environment program body :
// merge the supplied base functors, build an import record from the
// boot-module map, apply the merged functor and bind its result to
// the base-env variable, bind the conventional Base feature to
// itself, fetch $BootMM from the result, and register each boot
// module.
//
// The "bind the conventional Base feature to itself" step is
// underspecified beyond that one sentence; this implementation
// expresses it as a record-create of BaseWithSelf that copies every
// exported field out of the base-env variable plus an added 'Base'
// feature whose value is BaseWithSelf, the new record itself.
func BaseEnv(pos ast.Position, prog *symtab.Program, functors []*ast.FunctorExpression, bootModules []*builtin.Module) ast.Statement {
	merged := mergeBaseFunctors(functors)
	prog.BaseDeclarations = BaseDeclarations(merged)

	importRec := buildImportRecord(pos, merged, bootModules)

	baseEnvName := "BaseEnv"
	baseEnvVar := &ast.RawVariable{Name: baseEnvName}
	apply := ast.AtPos(pos, &ast.FunctorApplyStatement{
		Result: ast.AtPos(pos, baseEnvVar),
		Functor: ast.AtPos(pos, merged),
		Import: importRec,
	})

	withSelf := ast.AtPos(pos, &ast.RawLocalStatement{
		Decls: []string{"BaseWithSelf", "BootMMVar"},
		Body: ast.Seq(pos,
			recordCreateWithBase(pos, merged, baseEnvName),
			ast.AtPos(pos, &ast.BindStatement{
				Left: ast.AtPos(pos, &ast.RawVariable{Name: "BootMMVar"}),
				Right: feature(pos, ast.AtPos(pos, &ast.RawVariable{Name: "BaseWithSelf"}), "$BootMM"),
			}),
			registerModules(pos, bootModules),
		),
	})

	return ast.Seq(pos, apply, withSelf)
}

func recordCreateWithBase(pos ast.Position, merged *ast.FunctorExpression, baseEnvName string) ast.Statement {
	fields := make([]ast.RecordField, 0, len(merged.Exports)+1)
	for _, e := range merged.Exports {
		fields = append(fields, ast.RecordField{
			Feature: ast.AtomConst(pos, e.Feature),
			Value: feature(pos, ast.AtPos(pos, &ast.RawVariable{Name: baseEnvName}), e.Feature),
		})
	}
	fields = append(fields, ast.RecordField{
		Feature: ast.AtomConst(pos, "Base"),
		Value: ast.AtPos(pos, &ast.RawVariable{Name: "BaseWithSelf"}),
	})
	return ast.AtPos(pos, &ast.RecordCreateStatement{
		Var: ast.AtPos(pos, &ast.RawVariable{Name: "BaseWithSelf"}),
		Label: ast.AtomConst(pos, "baseEnvironment"),
		Fields: fields,
	})
}

// buildImportRecord looks up each required boot-module URL in the
// supplied modules and builds the record the merged functor's import
// clause expects.
func buildImportRecord(pos ast.Position, merged *ast.FunctorExpression, bootModules []*builtin.Module) ast.Expression {
	byURL := make(map[string]*builtin.Module, len(bootModules))
	for _, m := range bootModules {
		byURL[m.URL] = m
	}
	fields := make([]ast.RecordField, 0, len(merged.Require))
	for _, req := range merged.Require {
		mod, ok := byURL[req.ModuleURL]
		if !ok {
			continue
		}
		fields = append(fields, ast.RecordField{
			Feature: ast.AtomConst(pos, req.LocalName),
			Value: mod.ExportRecord(pos),
		})
	}
	return ast.AtPos(pos, &ast.RecordExpr{Label: ast.AtomConst(pos, "import"), Fields: fields})
}

func registerModules(pos ast.Position, bootModules []*builtin.Module) ast.Statement {
	stmts := make([]ast.Statement, len(bootModules))
	for i, m := range bootModules {
		stmts[i] = ast.AtPos(pos, &ast.CallStatement{
			Proc: feature(pos, ast.AtPos(pos, &ast.RawVariable{Name: "BootMMVar"}), "registerModule"),
			Args: []ast.Expression{ast.AtomConst(pos, m.URL), m.ExportRecord(pos)},
		})
	}
	return ast.Seq(pos, stmts...)
}
