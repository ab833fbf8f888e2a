// Package builtin consumes the pre-parsed *-builtin.json descriptors
// and turns them into registered symtab.BuiltinSymbols
// plus the synthetic functor-export record each boot module presents
// to the program under its x-oz://boot/<name> URL.
//
// No JSON library appears anywhere in the retrieved example corpus
// (see DESIGN.md), so this package uses the standard library's
// encoding/json, which is the only option the corpus leaves open.
package builtin

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// ParamKind is a builtin parameter's direction.
type ParamKind string

const (
	ParamIn ParamKind = "In"
	ParamOut ParamKind = "Out"
)

// paramDescriptor mirrors one element of a builtin's "params" array.
type paramDescriptor struct {
	Kind ParamKind `json:"kind"`
}

// builtinDescriptor mirrors one element of a module descriptor's
// "builtins" array.
type builtinDescriptor struct {
	FullCppName string `json:"fullCppName"`
	Name string `json:"name"`
	Inlineable bool `json:"inlineable"`
	InlineOpCode int `json:"inlineOpCode"`
	Params []paramDescriptor `json:"params"`
}

// moduleDescriptor mirrors the top-level shape of a *-builtin.json file.
type moduleDescriptor struct {
	Name string `json:"name"`
	Builtins []builtinDescriptor `json:"builtins"`
}

// Module is a loaded builtin module: its boot URL, and the
// BuiltinSymbols it contributes, in descriptor order.
type Module struct {
	Name string
	URL string // x-oz://boot/<name>
	Builtins []*symtab.BuiltinSymbol
}

// BootURL returns the conventional boot-module URL for name.
func BootURL(name string) string {
	return "x-oz://boot/" + name
}

// ParseDescriptor decodes a single *-builtin.json payload into a
// Module and registers every builtin it names on prog. The caller is
// responsible for locating the file; this function only consumes
// already-read bytes, matching framing of the on-disk
// JSON loader as an external collaborator — the decoding of its
// fixed schema, and the registration it drives, are in scope.
func ParseDescriptor(data []byte, prog *symtab.Program) (*Module, error) {
	var desc moduleDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("builtin: decode descriptor: %w", err)
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("builtin: descriptor missing \"name\"")
	}

	mod := &Module{Name: desc.Name, URL: BootURL(desc.Name)}
	for _, bd := range desc.Builtins {
		if bd.Name == "" || bd.FullCppName == "" {
			return nil, fmt.Errorf("builtin: module %s: builtin missing name or fullCppName", desc.Name)
		}
		sym := symtab.NewBuiltinSymbol(bd.Name, bd.FullCppName, len(bd.Params))
		sym.Inlineable = bd.Inlineable
		sym.InlineOp = bd.InlineOpCode
		for i, p := range bd.Params {
			if p.Kind == ParamOut {
				sym.OutParamIdx = append(sym.OutParamIdx, i)
			}
		}
		prog.RegisterBuiltin(sym)
		mod.Builtins = append(mod.Builtins, sym)
	}
	return mod, nil
}

// ExportRecord builds the synthetic functor-export record a boot
// module presents when another functor `require`s it: a record whose
// features are the builtin names, in descriptor order (deterministic
// because json.Unmarshal preserves array order), and whose values are
// Constant(Builtin) references.
func (m *Module) ExportRecord(pos ast.Position) *ast.RecordExpr {
	fields := make([]ast.RecordField, 0, len(m.Builtins))
	for _, b := range m.Builtins {
		fields = append(fields, ast.RecordField{
			Feature: ast.AtomConst(pos, b.Name),
			Value: ast.BuiltinConst(pos, b),
		})
	}
	return ast.AtPos(pos, &ast.RecordExpr{
		Label: ast.AtomConst(pos, m.Name),
		Fields: fields,
	})
}

// LoadPath loads either a single *-builtin.json file or every such
// file directly inside a directory (the `-m/--module` CLI flag accepts
// both per the design), registering every builtin it finds on prog.
func LoadPath(fsys fs.FS, path string, prog *symtab.Program) ([]*Module, error) {
	info, err := fs.Stat(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("builtin: %w", err)
	}
	if !info.IsDir() {
		return loadFile(fsys, path, prog)
	}

	entries, err := fs.ReadDir(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("builtin: read dir %s: %w", path, err)
	}
	var mods []*Module
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "-builtin.json") {
			continue
		}
		got, err := loadFile(fsys, filepath.Join(path, e.Name()), prog)
		if err != nil {
			return nil, err
		}
		mods = append(mods, got...)
	}
	return mods, nil
}

func loadFile(fsys fs.FS, path string, prog *symtab.Program) ([]*Module, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("builtin: read %s: %w", path, err)
	}
	mod, err := ParseDescriptor(data, prog)
	if err != nil {
		return nil, fmt.Errorf("builtin: %s: %w", path, err)
	}
	return []*Module{mod}, nil
}
