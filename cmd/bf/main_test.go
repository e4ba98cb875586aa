package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execBF(t *testing.T, args []string, input string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeSource(t *testing.T, name, source string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

// TestNoArgumentsShowsUsage tests that a bare invocation prints usage
// and succeeds
func TestNoArgumentsShowsUsage(t *testing.T) {
	code, stdout, stderr := execBF(t, nil, "")

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, usageText, stdout)
	assert.Empty(t, stderr)
}

// TestTooManyArgumentsShowsUsage tests that extra arguments fall back
// to usage with a zero exit code
func TestTooManyArgumentsShowsUsage(t *testing.T) {
	code, stdout, _ := execBF(t, []string{"one.b", "two.b"}, "")

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, usageText, stdout)
}

// TestHelpFlagShowsUsage tests both help spellings print usage on
// stdout
func TestHelpFlagShowsUsage(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		t.Run(flag, func(t *testing.T) {
			code, stdout, stderr := execBF(t, []string{flag}, "")

			assert.Equal(t, exitSuccess, code)
			assert.Equal(t, usageText, stdout)
			assert.Empty(t, stderr)
		})
	}
}

// TestRunProgramFile tests running a program from a file
func TestRunProgramFile(t *testing.T) {
	path := writeSource(t, "three.b", "+++.")

	code, stdout, stderr := execBF(t, []string{path}, "")

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "\x03", stdout)
	assert.Empty(t, stderr)
}

// TestRunProgramReadsStdin tests input flowing into the program
func TestRunProgramReadsStdin(t *testing.T) {
	path := writeSource(t, "echo.b", ",.")

	code, stdout, _ := execBF(t, []string{path}, "A\n")

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "A", stdout)
}

// TestMissingFileDiagnostics tests the two stdout diagnostic lines and
// the failure exit code
func TestMissingFileDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.b")

	code, stdout, stderr := execBF(t, []string{path}, "")

	assert.Equal(t, exitFailure, code)
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Error occurred while reading a file: "+path, lines[0])
	assert.Contains(t, lines[1], "no such file")
	assert.NotContains(t, stdout, "Did you mean")
	assert.Empty(t, stderr)
}

// TestMissingFileSuggestsClosest tests the fuzzy file name hint
func TestMissingFileSuggestsClosest(t *testing.T) {
	actual := writeSource(t, "hello.b", "+.")
	missing := filepath.Join(filepath.Dir(actual), "helo.b")

	code, stdout, _ := execBF(t, []string{missing}, "")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "Error occurred while reading a file: "+missing)
	assert.Contains(t, stdout, "Did you mean '"+actual+"'?")
}

// TestMissingFileHintPrefersClosestName tests that the hint picks the
// nearest name, not the first directory entry that matches
func TestMissingFileHintPrefersClosestName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a_hello.b", "hello.b"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("+."), 0o644))
	}

	_, stdout, _ := execBF(t, []string{filepath.Join(dir, "helo.b")}, "")

	assert.Contains(t, stdout, "Did you mean '"+filepath.Join(dir, "hello.b")+"'?")
	assert.NotContains(t, stdout, "a_hello.b")
}

// TestUnbalancedSourceFails tests that validation failures report on
// stderr with a failure exit code
func TestUnbalancedSourceFails(t *testing.T) {
	path := writeSource(t, "broken.b", "+]")

	code, stdout, stderr := execBF(t, []string{path}, "")

	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: ")
	assert.Contains(t, stderr, "unbalanced loop")
}

// TestInputExhaustedFails tests the exit code for reading past the end
// of input
func TestInputExhaustedFails(t *testing.T) {
	path := writeSource(t, "read.b", ",")

	code, _, stderr := execBF(t, []string{path}, "")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "input exhausted")
}

// TestAstFlagDumpsTree tests --ast printing the instruction tree
// without running the program
func TestAstFlagDumpsTree(t *testing.T) {
	path := writeSource(t, "transfer.b", "+[>+<-].")

	code, stdout, stderr := execBF(t, []string{"--ast", path}, "")

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "Increment\nRepeat:\n  ShiftRight\n  Increment\n  ShiftLeft\n  Decrement\nPrintChar\n", stdout)
	assert.Empty(t, stderr)
}

// TestAstWithWatchRejected tests the mode conflict
func TestAstWithWatchRejected(t *testing.T) {
	path := writeSource(t, "prog.b", "+.")

	code, _, stderr := execBF(t, []string{"--ast", "--watch", path}, "")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "--ast cannot be combined with --watch")
}

// TestTelemetryFlagPrintsSummary tests the --telemetry report on
// stderr
func TestTelemetryFlagPrintsSummary(t *testing.T) {
	path := writeSource(t, "three.b", "+++.")

	code, stdout, stderr := execBF(t, []string{"--telemetry", path}, "")

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "\x03", stdout)
	assert.Contains(t, stderr, "[telemetry] steps: 4")
	assert.Contains(t, stderr, "[telemetry] output writes: 1")
	assert.Contains(t, stderr, "[telemetry] Increment: 3")
}

// TestDebugFlagTracesToStderr tests the --debug trace
func TestDebugFlagTracesToStderr(t *testing.T) {
	path := writeSource(t, "one.b", "+.")

	code, stdout, stderr := execBF(t, []string{"--debug", path}, "")

	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "\x01", stdout)
	assert.Contains(t, stderr, "[DEBUG] op Increment cursor=0 cell=1")
}

// TestUnknownFlagFails tests that an unknown flag is a reported error
func TestUnknownFlagFails(t *testing.T) {
	code, _, stderr := execBF(t, []string{"--bogus"}, "")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "unknown flag")
}
