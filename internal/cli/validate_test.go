package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	stdout, _, err := execute(t, "validate", "--catalog", testCatalog, ordersQuery)
	require.NoError(t, err)
	assert.Equal(t, "✓ Query valid (2 tables)\n", stdout)
}

func TestValidate_ValidJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "validate", "--catalog", testCatalog, ordersQuery)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "orders per user", resp.Data.Query)
	assert.Equal(t, []string{"users", "orders"}, resp.Data.Tables)
}

func TestValidate_VerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "-v", "validate", "--catalog", testCatalog, ordersQuery)
	require.NoError(t, err)
	assert.Equal(t, "✓ Query valid (2 tables)\n", stdout)
	assert.Contains(t, stderr, "Loaded 2 table(s) from testdata/catalog")
}

func TestValidate_UnknownColumn(t *testing.T) {
	stdout, _, err := execute(t, "validate", "--catalog", testCatalog, "testdata/queries/bad_column.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ Validation failed")
	assert.Contains(t, stdout, "E102: UNRESOLVED_TABLE_REFERENCE")
	assert.Contains(t, stdout, "email")
}

func TestValidate_UnknownColumnJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "validate", "--catalog", testCatalog, "testdata/queries/bad_column.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnresolved, resp.Error.Code)
	assert.Equal(t, map[string]any{"valid": false}, resp.Error.Details)
}

func TestValidate_CommandErrors(t *testing.T) {
	dir := t.TempDir()
	badQuery := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badQuery, []byte("from: users\nstagez: []\n"), 0o644))
	emptyCatalog := t.TempDir()

	tests := []struct {
		name    string
		catalog string
		query   string
		code    string
	}{
		{"missing catalog", filepath.Join(dir, "nope"), ordersQuery, ErrCodeNotFound},
		{"missing query", testCatalog, filepath.Join(dir, "nope.yaml"), ErrCodeNotFound},
		{"empty catalog", emptyCatalog, ordersQuery, ErrCodeCatalog},
		{"malformed query", testCatalog, badQuery, ErrCodeQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "validate", "--catalog", tt.catalog, tt.query)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stdout, "Error ["+tt.code+"]")
		})
	}
}
