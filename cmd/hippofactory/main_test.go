package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
)

const localFacts = `
[bindle]
name = "weather"
version = "1.2.3"

[[handler]]
name = "out/weather.wasm"
route = "/"
files = ["assets/*.css"]
`

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BINDLE_URL", "")
	t.Setenv("HIPPOFACTORY_REGISTRY_URL", "")
	t.Setenv("HIPPOFACTORY_LOGGING_LEVEL", "error")
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"HIPPOFACTS":       localFacts,
		"out/weather.wasm": "weather module",
		"assets/site.css":  "body{}",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestExpand_Production(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t)

	stdout, _, err := execute(t, "-V", "production", dir)
	require.NoError(t, err)

	inv, err := bindle.Unmarshal([]byte(stdout), bindle.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "weather/1.2.3", inv.ID())
	assert.Len(t, inv.Parcel, 2)
	require.Len(t, inv.Group, 1)
	assert.Equal(t, "out/weather.wasm-files", inv.Group[0].Name)
}

func TestExpand_DevVersion(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t)

	stdout, _, err := execute(t, "expand", dir)
	require.NoError(t, err)

	inv, err := bindle.Unmarshal([]byte(stdout), bindle.FormatTOML)
	require.NoError(t, err)
	assert.NotEqual(t, "1.2.3", inv.Bindle.Version)
	assert.Contains(t, inv.Bindle.Version, "1.2.3-")
}

func TestExpand_JSON(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t)

	stdout, _, err := execute(t, "expand", "--format", "json", "-V", "production", filepath.Join(dir, "HIPPOFACTS"))
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
}

func TestExpand_OutFile(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "invoice.toml")

	stdout, _, err := execute(t, "-V", "production", "-o", out, dir)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	inv, err := bindle.Unmarshal(data, bindle.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "weather/1.2.3", inv.ID())
}

func TestExpand_Errors(t *testing.T) {
	isolateEnv(t)

	t.Run("missing manifest", func(t *testing.T) {
		_, _, err := execute(t, t.TempDir())
		assert.Error(t, err)
	})

	t.Run("invalid server", func(t *testing.T) {
		_, _, err := execute(t, "-s", "ftp://bindle", writeProject(t))
		assert.Error(t, err)
	})

	t.Run("too many args", func(t *testing.T) {
		_, _, err := execute(t, "a", "b")
		assert.Error(t, err)
	})
}

func TestPrepare(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "bindle")

	stdout, _, err := execute(t, "prepare", "-V", "production", "--dir", out, dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Prepared weather/1.2.3")
	assert.Contains(t, stdout, "written:  2 parcels")
	assert.FileExists(t, filepath.Join(out, "invoice.toml"))

	_, _, err = execute(t, "prepare", "-V", "production", "--dir", out, dir)
	assert.Error(t, err)

	stdout, _, err = execute(t, "prepare", "-V", "production", "--dir", out, "--force", "--report", dir)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "weather/1.2.3", report["invoice"])
}

func TestPrepare_DryRun(t *testing.T) {
	isolateEnv(t)
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "bindle")

	stdout, _, err := execute(t, "prepare", "--dry-run", "--dir", out, dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[dry run]")
	assert.NoDirExists(t, out)
}

func TestDoctor(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "registry: OK")
	assert.Contains(t, stdout, "All checks passed!")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "hippofactory")
}
