// Command ozc is the bootstrap compiler driver : it wires
// the external parser, the builtin-module loader, the transform
// pipeline, CodeGen and the C++ emitter together, in the three
// program-assembly shapes the design calls for.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ozboot/ozc/internal/assemble"
	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/builtin"
	"github.com/ozboot/ozc/internal/codegen"
	"github.com/ozboot/ozc/internal/emit"
	"github.com/ozboot/ozc/internal/frontend"
	"github.com/ozboot/ozc/internal/symtab"
	"github.com/ozboot/ozc/internal/transform"
)

// VerboseMode mirrors the prior code's global verbosity flag
// (main.go's `VerboseMode`), gating the plain-stderr progress logging
// this driver does between pipeline stages.
var VerboseMode bool

// stringList is a repeatable flag.Value, the idiomatic way to collect
// -h/--header and -m/--module into ordered slices with the standard
// flag package (no repeatable-flag support is built in).
type stringList struct{ values *[]string }

func (s stringList) String() string {
	if s.values == nil {
		return ""
	}
	return strings.Join(*s.values, ",")
}

func (s stringList) Set(v string) error {
	*s.values = append(*s.values, v)
	return nil
}

// parserFactory must be supplied by linking in a concrete Oz parser:
// the parser is an external collaborator, out of this core's scope. A
// build with no parser linked in fails fast with exit code 2, the same
// code a real parse failure returns, rather than silently producing
// empty output.
var parserFactory func() (frontend.Parser, error)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := defaultConfig()

	flags := flag.NewFlagSet("ozc", flag.ContinueOnError)
	baseEnvFlag := flags.Bool("baseenv", false, "assemble in base-environment mode")
	linkerFlag := flags.Bool("linker", false, "assemble in linker mode (default: module)")
	flags.StringVar(&cfg.Output, "o", cfg.Output, "output C++ file")
	flags.StringVar(&cfg.Output, "output", cfg.Output, "output C++ file")
	flags.Var(stringList{&cfg.Headers}, "h", "additional C++ header (repeatable)")
	flags.Var(stringList{&cfg.Headers}, "header", "additional C++ header (repeatable)")
	flags.Var(stringList{&cfg.Modules}, "m", "builtin-module descriptor file or directory (repeatable)")
	flags.Var(stringList{&cfg.Modules}, "module", "builtin-module descriptor file or directory (repeatable)")
	flags.StringVar(&cfg.Base, "b", cfg.Base, "base-declarations file")
	flags.StringVar(&cfg.Base, "base", cfg.Base, "base-declarations file")
	flags.Var(stringList{&cfg.Defines}, "D", "conditional compilation symbol (repeatable)")
	flags.Var(stringList{&cfg.Defines}, "define", "conditional compilation symbol (repeatable)")
	flags.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose mode")
	flags.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "verbose mode")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: ozc [flags] file...\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 1
	}
	cfg.BaseEnv = *baseEnvFlag
	cfg.Linker = *linkerFlag
	cfg.Inputs = flags.Args()
	VerboseMode = cfg.Verbose

	if len(cfg.Inputs) == 0 {
		fmt.Fprintln(os.Stderr, "ozc: no input files")
		return 1
	}
	if cfg.BaseEnv && cfg.Linker {
		fmt.Fprintln(os.Stderr, "ozc: --baseenv and --linker are mutually exclusive")
		return 1
	}

	if err := compile(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "ozc:", err)
		return 2
	}
	return 0
}

func logf(format string, args ...any) {
	if VerboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func compile(cfg Config) error {
	prog := symtab.NewProgram()
	prog.IsBaseEnvironment = cfg.BaseEnv

	mods, err := loadModules(cfg.Modules, prog)
	if err != nil {
		return err
	}
	if cfg.Base != "" {
		if err := loadBaseDeclarations(cfg.Base, prog); err != nil {
			return err
		}
	}

	root, entryFn, err := assembleRoot(cfg, prog, mods)
	if err != nil {
		return err
	}

	logf("ozc: running transform pipeline\n")
	_, pipeline := transform.Run(prog, root, cfg.Verbose)
	if prog.Errors.HasErrors() {
		printErrors(prog)
		return fmt.Errorf("compilation failed at stage %s", pipeline.CurrentStage())
	}

	logf("ozc: running codegen\n")
	res := codegen.Generate(prog)
	if prog.Errors.HasErrors() {
		printErrors(prog)
		return fmt.Errorf("codegen failed")
	}

	out := emit.Emit(prog, res, emit.Options{Headers: cfg.Headers, EntryFn: entryFn})
	if err := os.WriteFile(cfg.Output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	logf("ozc: wrote %s\n", cfg.Output)
	return nil
}

func loadModules(paths []string, prog *symtab.Program) ([]*builtin.Module, error) {
	var all []*builtin.Module
	for _, p := range paths {
		mods, err := builtin.LoadPath(os.DirFS(filepath.Dir(p)), filepath.Base(p), prog)
		if err != nil {
			return nil, err
		}
		all = append(all, mods...)
	}
	return all, nil
}

func loadBaseDeclarations(path string, prog *symtab.Program) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	decls, err := builtin.ReadBaseDeclarations(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	prog.BaseDeclarations = decls
	return nil
}

// assembleRoot parses the input files and builds the raw program
// statement for whichever of the three modes cfg selects, returning the entry function name the emitter should give
// the top-level abstraction.
func assembleRoot(cfg Config, prog *symtab.Program, mods []*builtin.Module) (ast.Statement, string, error) {
	parser, err := newParser()
	if err != nil {
		return nil, "", err
	}

	pos := ast.Position{File: cfg.Inputs[0]}

	switch {
	case cfg.Linker:
		mainURL := cfg.Inputs[0]
		return assemble.Linker(pos, mainURL), "createRunThread", nil

	case cfg.BaseEnv:
		functors := make([]*ast.FunctorExpression, 0, len(cfg.Inputs))
		for _, in := range cfg.Inputs {
			f, err := parseFunctorFile(parser, in, cfg.Defines)
			if err != nil {
				return nil, "", err
			}
			functors = append(functors, f)
		}
		return assemble.BaseEnv(pos, prog, functors, mods), "createBaseEnv", nil

	default: // module mode
		in := cfg.Inputs[0]
		f, err := parseFunctorFile(parser, in, cfg.Defines)
		if err != nil {
			return nil, "", err
		}
		name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		url := assemble.ModuleURL(name)
		return assemble.Module(pos, url, f), "createFunctor_" + name, nil
	}
}

func parseFunctorFile(p frontend.Parser, path string, defines []string) (*ast.FunctorExpression, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	expr, err := p.ParseExpression(f, path, defines)
	if err != nil {
		return nil, err
	}
	functor, ok := expr.(*ast.FunctorExpression)
	if !ok {
		return nil, fmt.Errorf("%s: top-level expression is not a functor", path)
	}
	return functor, nil
}

func newParser() (frontend.Parser, error) {
	if parserFactory == nil {
		return nil, fmt.Errorf("no Oz parser linked into this build")
	}
	return parserFactory()
}

func printErrors(prog *symtab.Program) {
	fmt.Fprint(os.Stderr, prog.Errors.Report(nil))
}
