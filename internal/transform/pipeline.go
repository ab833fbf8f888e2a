// Package transform implements the nine-pass lowering pipeline that
// turns a raw parsed AST into the flat, closure-converted form CodeGen
// consumes: Namer, DesugarFunctor, DesugarClass, Desugar,
// PatternMatcher, ConstantFolding, Unnester, Flattener, and (outside
// this package) CodeGen itself.
package transform

import (
	"fmt"

	"github.com/ozboot/ozc/internal/ast"
	"github.com/ozboot/ozc/internal/symtab"
)

// Stage names one step of the pipeline, generalizing the prior code's
// CompilationStage (compilation_pipeline.go) from its fixed ELF-build
// sequence to the nine named passes of the design.
type Stage int

const (
	StageInit Stage = iota
	StageNamer
	StageDesugarFunctor
	StageDesugarClass
	StageDesugar
	StagePatternMatcher
	StageConstantFolding
	StageUnnester
	StageFlattener
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageNamer:
		return "Namer"
	case StageDesugarFunctor:
		return "DesugarFunctor"
	case StageDesugarClass:
		return "DesugarClass"
	case StageDesugar:
		return "Desugar"
	case StagePatternMatcher:
		return "PatternMatcher"
	case StageConstantFolding:
		return "ConstantFolding"
	case StageUnnester:
		return "Unnester"
	case StageFlattener:
		return "Flattener"
	case StageComplete:
		return "Complete"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// order is the one valid sequence of stage transitions, fixed per
// the design — the pipeline never branches or repeats a stage.
var order = []Stage{
	StageInit, StageNamer, StageDesugarFunctor, StageDesugarClass, StageDesugar,
	StagePatternMatcher, StageConstantFolding, StageUnnester, StageFlattener, StageComplete,
}

// Pipeline tracks the current stage and rejects out-of-order
// transitions, generalizing the prior code's CompilationPipeline
// (compilation_pipeline.go: AdvanceTo/ValidateStage) from a panic-on-
// misuse debugging aid to a pipeline whose only caller is Run below.
type Pipeline struct {
	current Stage
	history []Stage
	Verbose bool
}

// NewPipeline returns a Pipeline positioned at StageInit.
func NewPipeline(verbose bool) *Pipeline {
	return &Pipeline{current: StageInit, history: []Stage{StageInit}, Verbose: verbose}
}

// CurrentStage returns the stage most recently advanced to.
func (p *Pipeline) CurrentStage() Stage { return p.current }

// AdvanceTo moves the pipeline to stage, or returns an error if stage
// is not the one immediate successor of the current stage in order.
func (p *Pipeline) AdvanceTo(stage Stage) error {
	next, ok := p.nextStage()
	if !ok || next != stage {
		return fmt.Errorf("transform: invalid stage transition %s -> %s", p.current, stage)
	}
	p.current = stage
	p.history = append(p.history, stage)
	return nil
}

func (p *Pipeline) nextStage() (Stage, bool) {
	for i, s := range order {
		if s == p.current && i+1 < len(order) {
			return order[i+1], true
		}
	}
	return StageInit, false
}

// Pass is one lowering step: it consumes and produces an AST,
// recording any semantic errors on prog.Errors rather than returning
// them.
type Pass func(prog *symtab.Program, root ast.Statement) ast.Statement

// namedPass pairs a Pass with the Stage it advances to, so Run can
// both execute passes and keep the Pipeline's stage history accurate.
type namedPass struct {
	stage Stage
	run Pass
}

// Run executes every pass of the pipeline in order against root,
// aborting immediately after the first pass that records an error.
// It returns the final AST
// (valid only if the returned Pipeline's CurrentStage is
// StageComplete) and the Pipeline used, so callers can inspect where
// compilation stopped.
func Run(prog *symtab.Program, root ast.Statement, verbose bool) (ast.Statement, *Pipeline) {
	pipeline := NewPipeline(verbose)
	passes := []namedPass{
		{StageNamer, Namer},
		{StageDesugarFunctor, DesugarFunctor},
		{StageDesugarClass, DesugarClass},
		{StageDesugar, Desugar},
		{StagePatternMatcher, PatternMatcher},
		{StageConstantFolding, ConstantFolding},
		{StageUnnester, Unnester},
		{StageFlattener, Flattener},
	}

	for _, np := range passes {
		root = np.run(prog, root)
		if err := pipeline.AdvanceTo(np.stage); err != nil {
			prog.Errors.Fatalf(ast.Position{}, "%v", err)
			return root, pipeline
		}
		if prog.Errors.HasErrors() {
			return root, pipeline
		}
	}
	_ = pipeline.AdvanceTo(StageComplete)
	return root, pipeline
}
