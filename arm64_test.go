package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyproto/expjit/internal/engine"
)

// newARM64Gen parses src, marks sharing and returns a generator over heap memory
func newARM64Gen(t *testing.T, src string, poolSize int, trace io.Writer) (*ARM64CodeGen, *NodePool, NodeRef) {
	t.Helper()
	p := NewNodePool(DefaultMaxNodes)
	root, err := NewParser(src, p).Parse()
	require.NoError(t, err)
	p.MarkShared(root)

	mem := NewHeapMemory(DefaultCodeSize, 0)
	out := NewOut(engine.ArchARM64, NewSafeBuffer("code buffer", mem.Code()), nil)
	return NewARM64CodeGen(p, out, mem.Data(), poolSize, trace), p, root
}

func TestARM64Scenarios(t *testing.T) {
	tests := []struct {
		src          string
		instructions int
		registers    int
		value        int64
	}{
		{"1+2", 2, 0, 3},
		{"x", 2, 0, 2},
		{"x+x", 4, 2, 4},
		{"(x+1)*(x+1)", 5, 2, 9},
		{DefaultExpression, 11, 3, 1521},
		{"(x+1)*(y+2)", 8, 3, 15},
	}

	env := DefaultEnvironment()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, err := compileEmulated(t, engine.ArchARM64, tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.instructions, prog.Instructions())
			assert.Equal(t, tt.registers, prog.Stats.Registers)
			assert.Equal(t, 4*tt.instructions, prog.Stats.CodeBytes)

			got, err := prog.Run(&env)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestARM64Listing(t *testing.T) {
	tests := map[string][]string{
		"x+x": {
			"movz x1, #0x2",
			"ldr x2, [x0, #960]",
			"mul x0, x2, x1",
			"ret",
		},
		"(x+1)*(x+1)": {
			"movz x1, #0x1",
			"ldr x2, [x0, #960]",
			"add x2, x2, x1",
			"mul x0, x2, x2",
			"ret",
		},
		"65536": {
			"movz x0, #0x1, lsl #16",
			"ret",
		},
	}
	for src, want := range tests {
		prog, err := compileEmulated(t, engine.ArchARM64, src, nil)
		require.NoError(t, err, src)
		assert.Equal(t, want, disassembly(t, prog), src)
	}
}

func TestARM64RegisterExhaustion(t *testing.T) {
	_, err := compileEmulated(t, engine.ArchARM64, "(x+1)*(y+2)", func(c *Config) { c.Registers = 2 })
	require.Error(t, err)
	assert.True(t, IsCategory(err, CategoryRegisters))

	var ce *CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, LevelFatal, ce.Level)

	prog, err := compileEmulated(t, engine.ArchARM64, "(x+1)*(y+2)", func(c *Config) { c.Registers = 3 })
	require.NoError(t, err)
	assert.Equal(t, 3, prog.Stats.Registers)

	// The accumulator backend has no register pool to run out of
	_, err = compileEmulated(t, engine.ArchX86_64, "(x+1)*(y+2)", func(c *Config) { c.Registers = 2 })
	assert.NoError(t, err)
}

func TestARM64AllRegistersReleased(t *testing.T) {
	for _, src := range []string{"x+x", "(x+1)*(x+1)", DefaultExpression, "x*y+x*y+x*y", "a*b+c*d+e*f"} {
		g, _, root := newARM64Gen(t, src, DefaultRegisters, nil)
		require.NoError(t, g.Generate(root), src)
		assert.Equal(t, 0, g.LiveRegisters(), src)
		assert.LessOrEqual(t, g.MaxRegisters(), DefaultRegisters, src)
	}
}

func TestARM64UseAfterLastReferencePanics(t *testing.T) {
	g, p, root := newARM64Gen(t, "(x+1)*(x+1)", DefaultRegisters, nil)
	require.NoError(t, g.Generate(root))

	shared := p.At(root).Left
	require.True(t, p.At(shared).IsShared())
	assert.Panics(t, func() { g.use(shared) })
}

func TestARM64SharedNodeStaysLive(t *testing.T) {
	var trace bytes.Buffer
	g, _, root := newARM64Gen(t, "(x+1)*(x+1)", DefaultRegisters, &trace)
	require.NoError(t, g.Generate(root))

	// Every pool register handed out comes back, the root lives in x0
	log := trace.String()
	assert.Equal(t, 3, strings.Count(log, "REGS: alloc"))
	assert.Equal(t, 3, strings.Count(log, "REGS: free"))
	assert.NotContains(t, log, "x0")
}

func TestRegisterTracker(t *testing.T) {
	rt := NewRegisterTracker(ARM64PoolRegisters(3), nil)
	if rt.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", rt.Size())
	}

	var got []string
	for i := 0; i < 3; i++ {
		reg, ok := rt.Alloc("test")
		if !ok {
			t.Fatalf("Alloc failed with %d in use", rt.InUse())
		}
		got = append(got, reg)
	}
	if strings.Join(got, ",") != "x1,x2,x3" {
		t.Errorf("allocation order = %v, want x1,x2,x3", got)
	}
	if _, ok := rt.Alloc("test"); ok {
		t.Error("Alloc succeeded on an empty pool")
	}

	rt.Free("x2")
	if rt.IsInUse("x2") {
		t.Error("x2 still in use after Free")
	}
	if reg, _ := rt.Alloc("again"); reg != "x2" {
		t.Errorf("Alloc after Free(x2) = %s, want x2", reg)
	}
	if rt.MaxUsed() != 3 {
		t.Errorf("MaxUsed() = %d, want 3", rt.MaxUsed())
	}

	defer func() {
		if recover() == nil {
			t.Error("double free did not panic")
		}
	}()
	rt.Free("x1")
	rt.Free("x1")
}

func TestARM64EmulatorFaults(t *testing.T) {
	mem := NewHeapMemory(DefaultCodeSize, 0)

	// ldr x1, [x2] with x2 zero reads outside the data area
	code := le32(arm64LDR | 2<<5 | 1)
	_, err := NewARM64Emulator(code, mem.Data()).Run()
	assert.Error(t, err)

	// Running off the end of the code without ret
	_, err = NewARM64Emulator(le32(arm64MOVZ|1), mem.Data()).Run()
	assert.Error(t, err)
}
