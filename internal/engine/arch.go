// Completion: 100% - Utility module complete
package engine

import (
	"fmt"
	"runtime"
	"strings"
)

// Architecture type
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_64
	ArchARM64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchARM64:
		return "aarch64"
	default:
		return "unknown"
	}
}

// GoName returns the GOARCH spelling of the architecture
func (a Arch) GoName() string {
	switch a {
	case ArchX86_64:
		return "amd64"
	case ArchARM64:
		return "arm64"
	default:
		return "unknown"
	}
}

// Discipline names the code generation strategy used for the architecture
func (a Arch) Discipline() string {
	switch a {
	case ArchX86_64:
		return "accumulator"
	case ArchARM64:
		return "register pool"
	default:
		return "none"
	}
}

// ParseArch parses an architecture string (like GOARCH values)
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x86_64", "amd64", "x86-64":
		return ArchX86_64, nil
	case "aarch64", "arm64":
		return ArchARM64, nil
	default:
		return ArchUnknown, fmt.Errorf("unsupported architecture: %s (supported: amd64, arm64)", s)
	}
}

// HostArch returns the architecture the process is running on,
// or ArchUnknown when no code generator targets it.
func HostArch() Arch {
	switch runtime.GOARCH {
	case "amd64":
		return ArchX86_64
	case "arm64":
		return ArchARM64
	default:
		return ArchUnknown
	}
}

// DefaultArch returns the host architecture when it is supported, x86_64 otherwise
func DefaultArch() Arch {
	if a := HostArch(); a != ArchUnknown {
		return a
	}
	return ArchX86_64
}

// All lists every architecture with a code generator
func All() []Arch {
	return []Arch{ArchX86_64, ArchARM64}
}
