package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerrors "github.com/felixgeelhaar/releng/internal/errors"
	"github.com/felixgeelhaar/releng/internal/exitcode"
)

var traceScripts = map[string]string{
	"iib.sh": `echo "querying index $1 for $2"
echo "### RESULT ###"
echo "BUNDLE_IMAGE: registry.io/b:1"
`,
	"convert_to_sha.sh": `echo "### RESULT ###"
echo "sha256:abc"
`,
	"bundle.sh": `echo "### RESULT ###"
echo "COMPONENT_A: registry.io/a@sha256:1"
echo "BUNDLE_SEEN: $1"
`,
	"component.sh": `echo "### RESULT ###"
case "$1" in
  registry.io/a@sha256:1) echo "COMMIT: deadbeef" ;;
esac
`,
}

func writeScripts(t *testing.T, scripts map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func traceArgs(dir string, extra ...string) []string {
	args := []string{
		"-i", "registry.io/iib:1",
		"-v", "2.9.0",
		"--scripts-dir", dir,
		"--interpreter", "sh",
	}
	return append(args, extra...)
}

func TestTraceEndToEnd(t *testing.T) {
	dir := writeScripts(t, traceScripts)

	stdout, _, err := run(t, traceArgs(dir)...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "querying index registry.io/iib:1 for 2.9.0")
	assert.Contains(t, stdout, "Converting tag to sha...")
	assert.True(t, strings.HasSuffix(stdout, "\n\nCommits\nCOMPONENT_A: deadbeef\nBUNDLE_SEEN: \n"), stdout)
}

func TestTraceBundleIsPinned(t *testing.T) {
	scripts := map[string]string{}
	for k, v := range traceScripts {
		scripts[k] = v
	}
	scripts["component.sh"] = `echo "### RESULT ###"
echo "COMMIT: $1"
`
	dir := writeScripts(t, scripts)

	stdout, _, err := run(t, traceArgs(dir, "-o", "json")...)
	require.NoError(t, err)

	report := stdout[strings.LastIndex(stdout, "\n["):]
	var entries []map[string]string
	require.NoError(t, json.Unmarshal([]byte(report), &entries))

	assert.Equal(t, []map[string]string{
		{"component": "COMPONENT_A", "commit": "registry.io/a@sha256:1"},
		{"component": "BUNDLE_SEEN", "commit": "registry.io/b@sha256:abc"},
	}, entries)
}

func TestTraceTableOutput(t *testing.T) {
	dir := writeScripts(t, traceScripts)

	stdout, _, err := run(t, traceArgs(dir, "--output", "table")...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "COMPONENT")
	assert.Contains(t, stdout, "deadbeef")
	assert.NotContains(t, stdout, "\n\nCommits\n")
}

func TestTraceEmptyIIB(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"iib.sh": `echo "nothing found"`,
	})

	stdout, stderr, err := run(t, traceArgs(dir)...)
	require.Error(t, err)

	assert.True(t, relerrors.IsCode(err, relerrors.ErrCodeEmptyResult))
	assert.Equal(t, exitcode.EmptyResult, exitcode.DetermineExitCode(err))
	assert.Contains(t, stdout, "Was unable to find BUNDLE image in specified IIB")
	assert.NotContains(t, stdout+stderr, "Usage:")
	assert.NotContains(t, stderr, "operation failed")
}

func TestTraceFailureLoggedAtDebug(t *testing.T) {
	dir := writeScripts(t, map[string]string{
		"iib.sh": `echo "nothing found"`,
	})

	_, stderr, err := run(t, traceArgs(dir, "--log-level", "debug")...)
	require.Error(t, err)

	assert.Contains(t, stderr, "operation failed")
	assert.Contains(t, stderr, "error_code=RELENG-003")
}

func TestTraceMissingScript(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, "-i", "registry.io/iib:1", "-v", "2.9.0", "--scripts-dir", dir, "--interpreter", filepath.Join(dir, "no-such-shell"))
	require.Error(t, err)
	assert.Equal(t, exitcode.LaunchFailure, exitcode.DetermineExitCode(err))
}

func TestTraceEmptyIIBValue(t *testing.T) {
	dir := writeScripts(t, traceScripts)

	_, _, err := run(t, "-i", "", "-v", "2.9.0", "--scripts-dir", dir, "--interpreter", "sh")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "IIB URL was not supplied")
	assert.Equal(t, exitcode.MissingInput, exitcode.DetermineExitCode(err))
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no flags", []string{}},
		{"missing version", []string{"-i", "registry.io/iib:1"}},
		{"missing iib", []string{"--version", "2.9.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))

			usage := stdout + stderr
			assert.Contains(t, usage, "Usage:")
			assert.Contains(t, usage, "--iib")
			assert.Contains(t, usage, "--version")
		})
	}
}

func TestConfigFile(t *testing.T) {
	dir := writeScripts(t, traceScripts)
	configPath := filepath.Join(dir, "releng.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
scripts:
  dir: `+dir+`
  interpreter: sh
output:
  format: yaml
`), 0o600))

	stdout, _, err := run(t, "-i", "registry.io/iib:1", "-v", "2.9.0", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "- component: COMPONENT_A\n  commit: deadbeef")

	stdout, _, err = run(t, "-i", "registry.io/iib:1", "-v", "2.9.0", "--config", configPath, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n\nCommits\nCOMPONENT_A: deadbeef\n")
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, "-i", "registry.io/iib:1", "-v", "2.9.0", "--config", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitcode.InvalidConfig, exitcode.DetermineExitCode(err))

	_, _, err = run(t, "-i", "registry.io/iib:1", "-v", "2.9.0", "--digest-backend", "skopeo")
	require.Error(t, err)
	assert.Equal(t, exitcode.InvalidConfig, exitcode.DetermineExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "releng "))
	assert.NotContains(t, stdout, "scripts:")

	stdout, _, err = run(t, "version", "--json")
	require.NoError(t, err)

	var info struct {
		Version   string            `json:"version"`
		GoVersion string            `json:"go_version"`
		Setup     map[string]string `json:"setup"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Equal(t, map[string]string{
		"scripts_dir":     "scripts",
		"interpreter":     "bash",
		"digest_backend":  "script",
		"remap_threshold": "2.8.6",
	}, info.Setup)
}

func TestVersionShowsConfiguredSetup(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "releng.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
scripts:
  dir: /opt/releng
  interpreter: sh
remap:
  enabled: false
digest:
  backend: registry
`), 0o600))

	stdout, _, err := run(t, "version", "--verbose", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "scripts: /opt/releng (run with sh), digest backend: registry, remap: off")

	_, _, err = run(t, "version", "--verbose", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitcode.InvalidConfig, exitcode.DetermineExitCode(err))
}
