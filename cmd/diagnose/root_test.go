package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiagnoseFromStdin(t *testing.T) {
	out, err := execute(t, `{"q_main_concern":"shoulders","q_shoulder_level":9}`)
	require.NoError(t, err)

	var got output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Result)
	assert.Equal(t, "bear", got.Result.Animal.ID)
	assert.Equal(t, "shoulder_neck_spa_50", got.Result.PrimaryMenu.MenuID)
	assert.Equal(t, "skipped", got.Outcome)
}

func TestDiagnoseEmptyStdin(t *testing.T) {
	out, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "owl"`)
}

func TestValidateCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"x"}`), 0o644))

	_, err := execute(t, "", "--catalog", path, "--validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog data integrity")
}

func TestStrictAnswers(t *testing.T) {
	_, err := execute(t, `{"q_main_concern":"teeth"}`, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q_main_concern")
}

func TestUnknownProvider(t *testing.T) {
	_, err := execute(t, `{}`, "--provider", "llama")
	require.Error(t, err)
}
