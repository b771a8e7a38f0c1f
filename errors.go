// Completion: 100% - Error handling complete, clear and helpful messages
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel indicates the severity of an error
type ErrorLevel int

const (
	LevelError ErrorLevel = iota
	LevelFatal
)

func (l ErrorLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// ErrorCategory classifies the type of error
type ErrorCategory int

const (
	CategorySyntax ErrorCategory = iota
	CategoryCapacity
	CategoryRegisters
	CategoryResource
	CategoryInternal
)

func (c ErrorCategory) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategoryCapacity:
		return "capacity"
	case CategoryRegisters:
		return "register exhaustion"
	case CategoryResource:
		return "resource"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// SourceLocation represents a position in the (single line) source
type SourceLocation struct {
	Column int // 1-based, 0 when the error has no source position
	Length int // Length of the problematic token
}

func (loc SourceLocation) String() string {
	if loc.Column == 0 {
		return "<generated>"
	}
	return fmt.Sprintf("1:%d", loc.Column)
}

// ErrorContext provides additional context for an error
type ErrorContext struct {
	SourceLine string // The expression being compiled
	Remainder  string // Unconsumed source, for syntax errors
	HelpText   string // Explanatory help text
}

// CompilerError represents a single compilation error
type CompilerError struct {
	Level    ErrorLevel
	Category ErrorCategory
	Message  string
	Location SourceLocation
	Context  ErrorContext
	Err      error // underlying cause, if any
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Category.String())
	sb.WriteString(" error")
	if e.Location.Column > 0 {
		sb.WriteString(" at ")
		sb.WriteString(e.Location.String())
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause
func (e *CompilerError) Unwrap() error {
	return e.Err
}

// Format returns a nicely formatted error message with context
func (e *CompilerError) Format(useColor bool) string {
	red := color.New(color.FgRed, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	for _, c := range []*color.Color{red, blue, cyan} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var sb strings.Builder
	sb.WriteString(red.Sprint(e.Level.String() + ":"))
	sb.WriteString(" ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	sb.WriteString("\n")

	sb.WriteString(blue.Sprint("  --> "))
	sb.WriteString(e.Location.String())
	sb.WriteString("\n")

	if e.Context.SourceLine != "" {
		sb.WriteString("   |\n")
		sb.WriteString(" 1 | ")
		sb.WriteString(e.Context.SourceLine)
		sb.WriteString("\n")
		if e.Location.Column > 0 {
			sb.WriteString("   | ")
			sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			n := e.Location.Length
			if n < 1 {
				n = 1
			}
			sb.WriteString(red.Sprint(strings.Repeat("^", n)))
			sb.WriteString("\n")
		}
	}

	if e.Category == CategorySyntax {
		sb.WriteString(cyan.Sprint("   unconsumed: "))
		sb.WriteString(fmt.Sprintf("%q", e.Context.Remainder))
		sb.WriteString("\n")
	}

	if e.Context.HelpText != "" {
		sb.WriteString(cyan.Sprint("   note: "))
		sb.WriteString(e.Context.HelpText)
		sb.WriteString("\n")
	}

	return sb.String()
}

// IsCategory reports whether err is a CompilerError of the given category
func IsCategory(err error, cat ErrorCategory) bool {
	var ce *CompilerError
	return errors.As(err, &ce) && ce.Category == cat
}

// Helper functions for creating common errors

// SyntaxError creates an error for an unexpected token. The remainder is the
// source text that was not consumed when parsing stopped.
func SyntaxError(source string, column int, found string, remainder string) *CompilerError {
	length := len(found)
	if found == "" {
		found = "end of input"
	}
	return &CompilerError{
		Level:    LevelError,
		Category: CategorySyntax,
		Message:  fmt.Sprintf("unexpected %s", found),
		Location: SourceLocation{Column: column, Length: length},
		Context: ErrorContext{
			SourceLine: source,
			Remainder:  remainder,
		},
	}
}

// CapacityError creates an error for a bounded resource that would overflow
func CapacityError(what string, limit int) *CompilerError {
	return &CompilerError{
		Level:    LevelError,
		Category: CategoryCapacity,
		Message:  fmt.Sprintf("%s exceeds its capacity of %d", what, limit),
		Context: ErrorContext{
			HelpText: "simplify the expression or raise the limit (see EXPJIT_* environment variables)",
		},
	}
}

// RegisterExhaustionError creates an error for an empty register pool
func RegisterExhaustionError(size int, node NodeRef) *CompilerError {
	return &CompilerError{
		Level:    LevelFatal,
		Category: CategoryRegisters,
		Message:  fmt.Sprintf("all %d pool registers are live when allocating for node %d", size, node),
		Context: ErrorContext{
			HelpText: "spilling is not supported; use the accumulator backend (--arch amd64) for this expression",
		},
	}
}

// ResourceError creates an error for an operating system resource failure
func ResourceError(what string, err error) *CompilerError {
	return &CompilerError{
		Level:    LevelFatal,
		Category: CategoryResource,
		Message:  what,
		Err:      err,
	}
}

// FatalError creates a fatal internal error
func FatalError(message string) *CompilerError {
	return &CompilerError{
		Level:    LevelFatal,
		Category: CategoryInternal,
		Message:  message,
		Context: ErrorContext{
			HelpText: "This is an internal compiler error. Please report this bug.",
		},
	}
}
