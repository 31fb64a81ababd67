package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_Idempotent(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "loader_test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, InitDatabase(db))
	require.NoError(t, InitDatabase(db))

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('stores', 'sales_transactions') ORDER BY name`))
	assert.Equal(t, []string{"sales_transactions", "stores"}, tables)
}
