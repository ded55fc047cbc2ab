package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDictFromJSONFile(t *testing.T) {
	path := writeTempFile(t, "schema.json", `{"orders": ["id", "amount"], "analytics.users": ["user_id"]}`)

	provider, err := LoadDictFromFile(path)
	require.NoError(t, err)

	cols, ok := provider.ColumnsOf("", "", "orders")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "amount"}, cols)

	assert.True(t, provider.ColumnExists("", "analytics", "users", "user_id"))
	assert.False(t, provider.ColumnExists("", "", "orders", "nope"))
}

func TestLoadDictFromYAMLFile(t *testing.T) {
	path := writeTempFile(t, "schema.yaml", "orders:\n  - id\n  - amount\n")

	provider, err := LoadDictFromFile(path)
	require.NoError(t, err)

	cols, ok := provider.ColumnsOf("", "", "ORDERS")
	require.True(t, ok, "table keys match case-insensitively")
	assert.Equal(t, []string{"id", "amount"}, cols)
}

func TestLoadDictFromMissingFileFails(t *testing.T) {
	_, err := LoadDictFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadDictFromMalformedJSONFails(t *testing.T) {
	path := writeTempFile(t, "broken.json", `{"orders": "not-a-list"}`)
	_, err := LoadDictFromFile(path)
	require.Error(t, err)
}
