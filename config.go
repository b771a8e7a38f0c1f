// Completion: 100% - Configuration complete
package main

import (
	"fmt"

	"github.com/xyproto/env/v2"
	"github.com/xyproto/expjit/internal/engine"
)

// Limits and defaults of one compilation
const (
	DefaultMaxNodes      = 4096
	DefaultCodeSize      = 64 * 1024
	DefaultMaxStackDepth = 64
	DefaultRegisters     = 15
	DefaultCacheSlots    = 512
)

// Config holds the settings of a compilation. The zero value is not usable,
// start from DefaultConfig or LoadConfig.
type Config struct {
	Arch          engine.Arch
	Verbose       bool
	MaxNodes      int // node pool capacity
	CodeSize      int // code buffer size in bytes, rounded up to whole pages
	MaxStackDepth int // pushes the accumulator backend may nest
	Registers     int // size of the arm64 register pool, x1 upwards
	CacheSlots    int // memory slots for shared values in the accumulator backend
	Emulate       bool
	NoColor       bool
}

// DefaultConfig returns the built-in defaults, targeting the host when possible
func DefaultConfig() Config {
	return Config{
		Arch:          engine.DefaultArch(),
		MaxNodes:      DefaultMaxNodes,
		CodeSize:      DefaultCodeSize,
		MaxStackDepth: DefaultMaxStackDepth,
		Registers:     DefaultRegisters,
		CacheSlots:    DefaultCacheSlots,
	}
}

// LoadConfig returns the defaults overridden by EXPJIT_* environment variables.
// The environment is read again on every call.
func LoadConfig() (Config, error) {
	env.Load()
	cfg := DefaultConfig()
	if name := env.Str("EXPJIT_ARCH"); name != "" {
		arch, err := engine.ParseArch(name)
		if err != nil {
			return cfg, fmt.Errorf("EXPJIT_ARCH: %w", err)
		}
		cfg.Arch = arch
	}
	cfg.Verbose = env.Bool("EXPJIT_VERBOSE")
	cfg.MaxNodes = env.Int("EXPJIT_MAX_NODES", cfg.MaxNodes)
	cfg.CodeSize = env.Int("EXPJIT_CODE_SIZE", cfg.CodeSize)
	cfg.MaxStackDepth = env.Int("EXPJIT_MAX_STACK", cfg.MaxStackDepth)
	cfg.Registers = env.Int("EXPJIT_REGISTERS", cfg.Registers)
	cfg.CacheSlots = env.Int("EXPJIT_CACHE_SLOTS", cfg.CacheSlots)
	cfg.Emulate = env.Bool("EXPJIT_EMULATE")
	cfg.NoColor = env.Bool("EXPJIT_NO_COLOR") || env.Has("NO_COLOR")
	return cfg, cfg.Validate()
}

// Validate checks that every limit is usable
func (c Config) Validate() error {
	switch {
	case c.Arch == engine.ArchUnknown:
		return fmt.Errorf("no target architecture")
	case c.MaxNodes < 1:
		return fmt.Errorf("node pool capacity must be positive, got %d", c.MaxNodes)
	case c.CodeSize < 1:
		return fmt.Errorf("code size must be positive, got %d", c.CodeSize)
	case c.MaxStackDepth < 1:
		return fmt.Errorf("stack depth must be positive, got %d", c.MaxStackDepth)
	case c.Registers < 1 || c.Registers > DefaultRegisters:
		return fmt.Errorf("register pool size must be between 1 and %d, got %d", DefaultRegisters, c.Registers)
	case c.CacheSlots < 0:
		return fmt.Errorf("cache slots must not be negative, got %d", c.CacheSlots)
	}
	return nil
}
