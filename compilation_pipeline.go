// compilation_pipeline.go - Explicit compilation stages with validation
package main

import (
	"fmt"
	"io"
)

// CompilationStage represents a stage in the compilation pipeline
type CompilationStage int

const (
	StageInit CompilationStage = iota
	StageParsing
	StageSharing
	StageMapping
	StageCodegen
	StageSealing
	StageComplete
)

func (s CompilationStage) String() string {
	switch s {
	case StageInit:
		return "Initialization"
	case StageParsing:
		return "Parsing and Rewriting"
	case StageSharing:
		return "Sharing Analysis"
	case StageMapping:
		return "Memory Mapping"
	case StageCodegen:
		return "Code Generation"
	case StageSealing:
		return "Sealing"
	case StageComplete:
		return "Compilation Complete"
	default:
		return fmt.Sprintf("Unknown Stage %d", int(s))
	}
}

// CompilationPipeline tracks the current stage and validates state transitions
type CompilationPipeline struct {
	currentStage CompilationStage
	stages       []CompilationStage // History of stages
	trace        io.Writer
}

func NewCompilationPipeline(trace io.Writer) *CompilationPipeline {
	return &CompilationPipeline{
		currentStage: StageInit,
		stages:       []CompilationStage{StageInit},
		trace:        trace,
	}
}

// AdvanceTo moves to the next stage. Stages run strictly in order, so any
// other transition is a bug in the compiler.
func (cp *CompilationPipeline) AdvanceTo(stage CompilationStage) {
	if cp.currentStage == StageComplete || stage != cp.currentStage+1 {
		panic(FatalError(fmt.Sprintf("invalid compilation stage transition: %s -> %s (history %v)", cp.currentStage, stage, cp.stages)))
	}

	cp.currentStage = stage
	cp.stages = append(cp.stages, stage)

	if cp.trace != nil {
		fmt.Fprintf(cp.trace, "PIPELINE: Advanced to stage: %s\n", stage)
	}
}

func (cp *CompilationPipeline) CurrentStage() CompilationStage {
	return cp.currentStage
}

// History returns every stage reached so far, in order
func (cp *CompilationPipeline) History() []CompilationStage {
	return cp.stages
}

func (cp *CompilationPipeline) ValidateStage(expected CompilationStage, operation string) {
	if cp.currentStage != expected {
		panic(FatalError(fmt.Sprintf("invalid operation '%s' at stage %s, expected %s", operation, cp.currentStage, expected)))
	}
}
