package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// runCLI runs the command line with args and returns the exit code and both outputs
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := RunCLI(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLIDefaultExpression(t *testing.T) {
	tests := []struct {
		arch         string
		instructions string
	}{
		{"amd64", "25 instructions"},
		{"arm64", "11 instructions"},
	}
	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, "--arch", tt.arch, "--emulate")
			require.Equal(t, 0, code, stderr)
			assert.Empty(t, stderr)
			assert.Equal(t, []string{
				"((!(x*3)+((y*4)+21))*(!(x*3)+((y*4)+21)))",
				tt.instructions,
				"value 1521",
			}, strings.Split(strings.TrimSuffix(stdout, "\n"), "\n"))
		})
	}
}

func TestCLIExpressions(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"1+2"}, "3\n4 instructions\nvalue 3\n"},
		{[]string{"x+x"}, "(x*2)\n8 instructions\nvalue 4\n"},
		{[]string{"(x+1)*(x+1)"}, "((!x+1)*(!x+1))\n13 instructions\nvalue 9\n"},
		{[]string{"--env", "x=5,y=7", "x*y+1"}, "((x*y)+1)\n12 instructions\nvalue 36\n"},
	}
	for _, tt := range tests {
		args := append([]string{"--arch", "x86_64", "--emulate"}, tt.args...)
		code, stdout, stderr := runCLI(t, args...)
		require.Equal(t, 0, code, stderr)
		assert.Equal(t, tt.want, stdout, strings.Join(tt.args, " "))
	}
}

func TestCLISyntaxError(t *testing.T) {
	code, stdout, stderr := runCLI(t, "--emulate", "x+")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "error: unexpected end of input")
	assert.Contains(t, stderr, `unconsumed: ""`)
	assert.NotContains(t, stderr, "\x1b[", "diagnostics to a buffer are never colored")

	code, _, stderr = runCLI(t, "--emulate", "x+1)*2")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unconsumed: ")*2"`)
}

func TestCLIRejectsBadInput(t *testing.T) {
	tests := [][]string{
		{"--arch", "sparc", "x"},
		{"--pool-format", "json", "x"},
		{"--env", "1x=3", "x"},
		{"x", "y"},
	}
	for _, args := range tests {
		code, stdout, stderr := runCLI(t, args...)
		assert.Equal(t, 1, code, args)
		assert.Empty(t, stdout, args)
		assert.NotEmpty(t, stderr, args)
	}

	_, _, stderr := runCLI(t, "--arch", "sparc", "x")
	assert.Contains(t, stderr, "Error: unsupported architecture: sparc")
}

func TestCLIVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, versionString+"\n", stdout)
}

func TestCLIPoolYAML(t *testing.T) {
	code, stdout, stderr := runCLI(t, "--emulate", "--pool", "--pool-format", "yaml", "(x+1)*(x+1)")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "value 9")

	var dump struct {
		Nodes    []PoolEntry `yaml:"nodes"`
		Capacity int         `yaml:"capacity"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stderr), &dump))
	assert.Equal(t, DefaultMaxNodes, dump.Capacity)
	require.Len(t, dump.Nodes, 4)

	var shared, roots int
	for _, n := range dump.Nodes {
		if n.Shares > 1 {
			shared++
			assert.Equal(t, "add", strings.ToLower(n.Kind))
		}
		if n.Root {
			roots++
			assert.True(t, n.Reachable)
		}
	}
	assert.Equal(t, 1, shared)
	assert.Equal(t, 1, roots)
}

func TestCLIPoolTable(t *testing.T) {
	code, stdout, stderr := runCLI(t, "--emulate", "--pool", "(x+1)+2")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "(x+3)\n", strings.SplitAfter(stdout, "\n")[0])
	assert.Contains(t, strings.ToLower(stderr), "node pool")
	assert.Contains(t, stderr, "(root)")
	// 1, 2 and x+1 are left behind by the reassociation
	assert.Contains(t, strings.ToLower(stderr), "3 orphaned")
}

func TestCLIAsm(t *testing.T) {
	code, stdout, stderr := runCLI(t, "--arch", "arm64", "--emulate", "--asm", "x+x")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "value 4")
	assert.Contains(t, strings.ToLower(stderr), "aarch64 (register pool)")
	assert.Contains(t, stderr, "mul x0, x2, x1")
}

func TestCLICheck(t *testing.T) {
	code, stdout, stderr := runCLI(t, "--check", "--env", "z=-4", "(x+z)*(x+z)+y")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "value 7")
	assert.Equal(t, 2, strings.Count(stderr, "check: x86_64")+strings.Count(stderr, "check: aarch64"))
	assert.Contains(t, stderr, "check: evaluator 7, all architectures agree")
}

func TestCLIVerbose(t *testing.T) {
	code, _, stderr := runCLI(t, "-v", "--emulate", "--arch", "amd64", "x*3")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "PIPELINE: Advanced to stage: Parsing and Rewriting")
	assert.Contains(t, stderr, "imul rax, rbx: 48 f af c3")
	assert.Contains(t, stderr, "STACK: push rbx, depth now 1")
}
