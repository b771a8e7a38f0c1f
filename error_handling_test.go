package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntaxErrorFormat(t *testing.T) {
	err := SyntaxError("x + )", 5, ")", ")")
	assert.Equal(t, `syntax error at 1:5: unexpected )`, err.Error())

	out := err.Format(false)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "error: unexpected )", lines[0])
	assert.Equal(t, "  --> 1:5", lines[1])
	assert.Equal(t, " 1 | x + )", lines[3])
	assert.Equal(t, "   |     ^", lines[4])
	assert.Equal(t, `   unconsumed: ")"`, lines[5])
}

func TestSyntaxErrorAtEndOfInput(t *testing.T) {
	err := SyntaxError("x+", 3, "", "")
	assert.Contains(t, err.Message, "end of input")
	assert.Contains(t, err.Format(false), `unconsumed: ""`)
}

func TestFormatWithColor(t *testing.T) {
	plain := CapacityError("node pool", 3).Format(false)
	colored := CapacityError("node pool", 3).Format(true)
	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, plain, "note: ")
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		err *CompilerError
		cat ErrorCategory
		lvl ErrorLevel
	}{
		{SyntaxError("x", 1, "x", "x"), CategorySyntax, LevelError},
		{CapacityError("node pool", 10), CategoryCapacity, LevelError},
		{RegisterExhaustionError(15, 7), CategoryRegisters, LevelFatal},
		{ResourceError("mmap failed", errors.New("ENOMEM")), CategoryResource, LevelFatal},
		{FatalError("broken"), CategoryInternal, LevelFatal},
	}

	for _, tt := range tests {
		t.Run(tt.cat.String(), func(t *testing.T) {
			assert.Equal(t, tt.cat, tt.err.Category)
			assert.Equal(t, tt.lvl, tt.err.Level)

			wrapped := fmt.Errorf("compiling: %w", tt.err)
			assert.True(t, IsCategory(wrapped, tt.cat))
			for _, other := range []ErrorCategory{CategorySyntax, CategoryCapacity, CategoryRegisters, CategoryResource, CategoryInternal} {
				if other != tt.cat {
					assert.False(t, IsCategory(wrapped, other))
				}
			}
		})
	}
	assert.False(t, IsCategory(errors.New("plain"), CategorySyntax))
}

func TestResourceErrorUnwraps(t *testing.T) {
	cause := errors.New("cannot allocate memory")
	err := ResourceError("mmap of executable memory failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "resource error: mmap of executable memory failed: cannot allocate memory", err.Error())
}

func TestRegisterExhaustionMessage(t *testing.T) {
	err := RegisterExhaustionError(2, 5)
	assert.Contains(t, err.Error(), "all 2 pool registers")
	assert.Contains(t, err.Error(), "node 5")
	assert.Equal(t, "<generated>", err.Location.String())
}
