// compiler_state.go - Central state management for compilation
package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/xyproto/expjit/internal/engine"
)

// CompilerState owns everything one compilation mutates: the node pool, the
// pipeline stage and, once code generation starts, the memory region. It is
// never shared, so independent compilations can run concurrently.
type CompilerState struct {
	config   Config
	trace    io.Writer // nil unless verbose
	pool     *NodePool
	pipeline *CompilationPipeline
}

// NewCompilerState creates the state for one compilation. trace receives
// the verbose log and may be nil.
func NewCompilerState(config Config, trace io.Writer) *CompilerState {
	if !config.Verbose {
		trace = nil
	}
	pool := NewNodePool(config.MaxNodes)
	pool.SetTrace(trace)
	return &CompilerState{
		config:   config,
		trace:    trace,
		pool:     pool,
		pipeline: NewCompilationPipeline(trace),
	}
}

// CurrentPhase returns the current compilation stage
func (cs *CompilerState) CurrentPhase() CompilationStage {
	return cs.pipeline.CurrentStage()
}

// Compile runs the whole pipeline on src. On success the returned program
// owns a memory region and must be closed.
func Compile(config Config, src string, trace io.Writer) (*Program, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewCompilerState(config, trace).Compile(src)
}

// Compile parses, rewrites and generates code for src
func (cs *CompilerState) Compile(src string) (*Program, error) {
	cs.pipeline.AdvanceTo(StageParsing)
	root, err := NewParser(src, cs.pool).Parse()
	if err != nil {
		return nil, err
	}

	cs.pipeline.AdvanceTo(StageSharing)
	cs.pool.MarkShared(root)
	if cs.trace != nil {
		fmt.Fprintf(cs.trace, "DEBUG: %d nodes in pool, %d reachable, %d shared\n",
			cs.pool.Len(), len(cs.pool.Reachable(root)), cs.pool.SharedBinaries(root))
	}

	prog := &Program{
		Arch:   cs.config.Arch,
		Source: src,
		Pool:   cs.pool,
		Root:   root,
	}
	if err := cs.generate(prog); err != nil {
		prog.Close()
		return nil, err
	}
	cs.pipeline.AdvanceTo(StageComplete)
	return prog, nil
}

// generate maps memory, emits code for the program's arch and seals it
func (cs *CompilerState) generate(prog *Program) error {
	cs.pipeline.ValidateStage(StageSharing, "code generation")
	cs.pipeline.AdvanceTo(StageMapping)
	native := !cs.config.Emulate && cs.config.Arch == engine.HostArch() && nativeMappingSupported
	if native {
		mem, err := MapExecMemory(cs.config.CodeSize, cs.config.CacheSlots, cs.trace)
		if err != nil {
			return err
		}
		prog.mem = mem
	} else {
		prog.mem = NewHeapMemory(cs.config.CodeSize, cs.config.CacheSlots)
	}

	cs.pipeline.AdvanceTo(StageCodegen)
	buf := NewSafeBuffer("code buffer", prog.mem.Code())
	buf.SetTrace(cs.trace)
	out := NewOut(cs.config.Arch, buf, cs.trace)

	switch cs.config.Arch {
	case engine.ArchX86_64:
		gen := NewX86_64CodeGen(cs.pool, out, prog.mem.Data(), cs.config.MaxStackDepth, cs.trace)
		if err := gen.Generate(prog.Root); err != nil {
			return err
		}
		prog.Stats.CacheSlots = gen.SlotsUsed()
		prog.Stats.StackDepth = gen.MaxStackDepth()
	case engine.ArchARM64:
		gen := NewARM64CodeGen(cs.pool, out, prog.mem.Data(), cs.config.Registers, cs.trace)
		if err := gen.Generate(prog.Root); err != nil {
			return err
		}
		prog.Stats.Registers = gen.MaxRegisters()
	default:
		return FatalError("no code generator for " + cs.config.Arch.String())
	}
	buf.Commit()
	prog.codeLen = buf.Len()
	prog.Stats.Instructions = out.Instructions()
	prog.Stats.CodeBytes = buf.Len()

	if cs.trace != nil {
		fmt.Fprintf(cs.trace, "DEBUG: %s: %d instructions in %s\n",
			cs.config.Arch, prog.Stats.Instructions, humanize.IBytes(uint64(prog.Stats.CodeBytes)))
	}

	cs.pipeline.AdvanceTo(StageSealing)
	if err := checkGeneratedCode(cs.config.Arch, prog.Code(), prog.Stats.Instructions, prog.mem.Data()); err != nil {
		return err
	}
	return prog.mem.Seal()
}
