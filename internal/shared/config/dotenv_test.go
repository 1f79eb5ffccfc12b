package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line   string
		key    string
		val    string
		wantOK bool
	}{
		{line: "PORT=9090", key: "PORT", val: "9090", wantOK: true},
		{line: "export LLM_PROVIDER=gemini", key: "LLM_PROVIDER", val: "gemini", wantOK: true},
		{line: `GEMINI_API_KEY="abc=def"`, key: "GEMINI_API_KEY", val: "abc=def", wantOK: true},
		{line: "S3_PREFIX='catalog/'", key: "S3_PREFIX", val: "catalog/", wantOK: true},
		{line: "# comment", wantOK: false},
		{line: "   ", wantOK: false},
		{line: "NOEQUALS", wantOK: false},
		{line: "=value", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, val, ok := parseEnvLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.val, val)
		})
	}
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOTENV_TEST_A=from-file\nDOTENV_TEST_B=from-file\n"), 0o600))

	t.Setenv("DOTENV_TEST_A", "from-env")
	t.Setenv("DOTENV_TEST_B", "")
	require.NoError(t, os.Unsetenv("DOTENV_TEST_B"))

	loadEnvFiles(path)
	t.Cleanup(func() { _ = os.Unsetenv("DOTENV_TEST_B") })

	assert.Equal(t, "from-env", os.Getenv("DOTENV_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("DOTENV_TEST_B"))
}
