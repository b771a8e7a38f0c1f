package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyproto/expjit/internal/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, engine.DefaultArch(), cfg.Arch)
	assert.Equal(t, DefaultRegisters, cfg.Registers)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Emulate)
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"no arch":        func(c *Config) { c.Arch = engine.ArchUnknown },
		"empty pool":     func(c *Config) { c.MaxNodes = 0 },
		"no code":        func(c *Config) { c.CodeSize = 0 },
		"no stack":       func(c *Config) { c.MaxStackDepth = 0 },
		"no registers":   func(c *Config) { c.Registers = 0 },
		"x16 and up":     func(c *Config) { c.Registers = 16 },
		"negative slots": func(c *Config) { c.CacheSlots = -1 },
	}
	for name, tweak := range tests {
		cfg := DefaultConfig()
		tweak(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}

	cfg := DefaultConfig()
	cfg.CacheSlots = 0
	cfg.Registers = 1
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("EXPJIT_ARCH", "aarch64")
	t.Setenv("EXPJIT_VERBOSE", "1")
	t.Setenv("EXPJIT_EMULATE", "true")
	t.Setenv("EXPJIT_REGISTERS", "4")
	t.Setenv("EXPJIT_MAX_NODES", "100")
	t.Setenv("EXPJIT_CACHE_SLOTS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, engine.ArchARM64, cfg.Arch)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Emulate)
	assert.Equal(t, 4, cfg.Registers)
	assert.Equal(t, 100, cfg.MaxNodes)
	assert.Equal(t, 8, cfg.CacheSlots)
	assert.Equal(t, DefaultCodeSize, cfg.CodeSize)
}

func TestLoadConfigSeesLaterChanges(t *testing.T) {
	t.Setenv("EXPJIT_REGISTERS", "4")
	t.Setenv("EXPJIT_VERBOSE", "1")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Registers)
	assert.True(t, cfg.Verbose)

	t.Setenv("EXPJIT_REGISTERS", "")
	t.Setenv("EXPJIT_VERBOSE", "")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultRegisters, cfg.Registers)
	assert.False(t, cfg.Verbose)

	// A quiet CLI run after the variables are gone writes no trace
	code, _, stderr := runCLI(t, "--emulate", "x+1")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("EXPJIT_ARCH", "mips")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "EXPJIT_ARCH")

	t.Setenv("EXPJIT_ARCH", "")
	t.Setenv("EXPJIT_REGISTERS", "40")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestEnvironmentOverridesCLIDefaults(t *testing.T) {
	t.Setenv("EXPJIT_ARCH", "arm64")
	t.Setenv("EXPJIT_EMULATE", "1")

	code, stdout, stderr := runCLI(t, "x+x")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "4 instructions")

	// Flags win over the environment
	code, stdout, stderr = runCLI(t, "--arch", "amd64", "x+x")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "8 instructions")
}

func TestCLIRegisterExhaustion(t *testing.T) {
	t.Setenv("EXPJIT_REGISTERS", "2")
	code, stdout, stderr := runCLI(t, "--arch", "arm64", "--emulate", "(x+1)*(y+2)")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "all 2 pool registers are live")
}
