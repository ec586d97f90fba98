package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/discrepancy-api/internal/model"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTable() *model.Table {
	tbl := model.NewTable()

	r1 := model.NewRecord()
	r1.Set("Company Name", "RetailCo")
	r1.Set("Location", "Chicago")
	r1.Set("Debt (in millions)", float64(100))
	r1.Set("CEO", nil)
	tbl.Append(r1)

	r2 := model.NewRecord()
	r2.Set("Company Name", "HealthInc")
	r2.Set("Location", "Boston")
	r2.Set("Debt (in millions)", 50.5)
	r2.Set("CEO", "Jane Smith")
	tbl.Append(r2)

	return tbl
}

func TestSQLite_EmptyDatabase(t *testing.T) {
	s := newSQLiteStore(t)

	table, err := s.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	require.NoError(t, s.SaveTable(ctx, sampleTable()))

	table, err := s.LoadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	rec := table.Records[0]
	assert.Equal(t, []string{"Company Name", "Location", "Debt (in millions)", "CEO"}, rec.Fields())

	// Types survive: numbers stay float64, nils stay nil.
	v, _ := rec.Get("Debt (in millions)")
	assert.Equal(t, float64(100), v)
	v, ok := rec.Get("CEO")
	assert.True(t, ok)
	assert.Nil(t, v)

	v, _ = table.Records[1].Get("CEO")
	assert.Equal(t, "Jane Smith", v)
}

func TestSQLite_NumericStringStaysString(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	tbl := model.NewTable()
	rec := model.NewRecord()
	rec.Set("Company Name", "ZipCo")
	rec.Set("Zip", "02134")
	tbl.Append(rec)
	require.NoError(t, s.SaveTable(ctx, tbl))

	reloaded, err := s.LoadTable(ctx)
	require.NoError(t, err)

	// The kind tag preserves the string type even for numeric-looking cells.
	v, _ := reloaded.Records[0].Get("Zip")
	assert.Equal(t, "02134", v)
}

func TestSQLite_SaveReplacesPreviousTable(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	require.NoError(t, s.SaveTable(ctx, sampleTable()))

	smaller := model.NewTable()
	rec := model.NewRecord()
	rec.Set("Company Name", "OnlyCo")
	smaller.Append(rec)
	require.NoError(t, s.SaveTable(ctx, smaller))

	table, err := s.LoadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	v, _ := table.Records[0].Get("Company Name")
	assert.Equal(t, "OnlyCo", v)
}
