package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/discrepancy-api/internal/config"
)

func TestNew_CSV(t *testing.T) {
	s, err := New(config.StoreConfig{Driver: "csv", Path: "data/database.csv"})
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, s)
}

func TestNew_DefaultDriver(t *testing.T) {
	s, err := New(config.StoreConfig{Path: "data/database.csv"})
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, s)
}

func TestNew_SQLite(t *testing.T) {
	s, err := New(config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "db.sqlite")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())
}

func TestNew_XLSX(t *testing.T) {
	s, err := New(config.StoreConfig{Driver: "xlsx", Path: "data/database.xlsx"})
	require.NoError(t, err)
	assert.IsType(t, &XLSXStore{}, s)
}

func TestNew_MissingPath(t *testing.T) {
	_, err := New(config.StoreConfig{Driver: "csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(config.StoreConfig{Driver: "postgres", Path: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "postgres"`)
}
