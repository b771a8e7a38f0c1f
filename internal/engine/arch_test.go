package engine

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArch(t *testing.T) {
	tests := []struct {
		in   string
		want Arch
	}{
		{"amd64", ArchX86_64},
		{"x86_64", ArchX86_64},
		{"X86-64", ArchX86_64},
		{"arm64", ArchARM64},
		{" aarch64 ", ArchARM64},
	}
	for _, tt := range tests {
		got, err := ParseArch(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseArch("riscv64")
	assert.Error(t, err)
}

func TestHostArch(t *testing.T) {
	switch runtime.GOARCH {
	case "amd64":
		assert.Equal(t, ArchX86_64, HostArch())
	case "arm64":
		assert.Equal(t, ArchARM64, HostArch())
	default:
		assert.Equal(t, ArchUnknown, HostArch())
		assert.Equal(t, ArchX86_64, DefaultArch())
	}
}

func TestArchNames(t *testing.T) {
	assert.Equal(t, "amd64", ArchX86_64.GoName())
	assert.Equal(t, "arm64", ArchARM64.GoName())
	assert.Equal(t, "aarch64", ArchARM64.String())
	assert.Equal(t, "accumulator", ArchX86_64.Discipline())
	assert.Equal(t, "register pool", ArchARM64.Discipline())
	assert.Len(t, All(), 2)
}
