package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/arrests/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() model.ArrestRecord {
	return model.ArrestRecord{
		Datetime:         "test_datetime",
		CaseNumber:       "test_case_number",
		ArrestsLocation:  "test_arrests_location",
		Offense:          "test_offense",
		Arrestee:         "test_arrestee",
		ArresteeBirthday: "test_arrestee_birthday",
		ArresteeAddress:  "test_arrestee_address",
		City:             "test_city",
		State:            "test_state",
		ZipCode:          "test_zip_code",
		Status:           "test_status",
		Officers:         "test_officers",
	}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Create(context.Background(), filepath.Join(t.TempDir(), "arrests.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table'")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestCreate_MakesTable(t *testing.T) {
	s := newStore(t)

	assert.Contains(t, tableNames(t, s.DB()), TableName)

	rows, err := s.DB().Query("SELECT * FROM " + TableName)
	require.NoError(t, err)
	cols, err := rows.Columns()
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	assert.Equal(t, model.Columns[:], cols)
}

func TestCreate_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrests.db")
	require.NoError(t, os.WriteFile(path, []byte("DELETE ME!"), 0o644))

	s, err := Create(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	assert.Contains(t, tableNames(t, s.DB()), TableName)
}

func TestCreate_TwiceYieldsEmptyTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "arrests.db")

	first, err := Create(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Populate(ctx, []model.ArrestRecord{testRecord(), testRecord()}))
	require.NoError(t, first.Close())

	second, err := Create(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	n, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_EmptyPath(t *testing.T) {
	_, err := Create(context.Background(), "")
	assert.Error(t, err)
}

func TestPopulate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	in := testRecord()

	require.NoError(t, s.Populate(ctx, []model.ArrestRecord{in}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// read back with a direct query, independent of the store helpers
	fields := make([]string, model.FieldCount)
	dest := make([]any, model.FieldCount)
	for i := range fields {
		dest[i] = &fields[i]
	}
	require.NoError(t, s.DB().QueryRow("SELECT * FROM arrests LIMIT 1").Scan(dest...))

	out, err := model.RecordFromFields(fields)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPopulate_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var in []model.ArrestRecord
	for i := 0; i < 20; i++ {
		rec := testRecord()
		rec.CaseNumber = fmt.Sprintf("2019-%08d", i)
		in = append(in, rec)
	}
	require.NoError(t, s.Populate(ctx, in))

	out, err := s.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	first, err := s.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, in[0], first)
}

func TestPopulate_Empty(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Populate(ctx, nil))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPopulate_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// a canceled context fails the batch before commit
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err := s.Populate(canceled, []model.ArrestRecord{testRecord(), testRecord()})
	require.Error(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFirst_EmptyTable(t *testing.T) {
	s := newStore(t)

	_, err := s.First(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	s, err := Create(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())
	assert.FileExists(t, path)
}

func TestOpen_ExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "arrests.db")

	s, err := Create(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Populate(ctx, []model.ArrestRecord{testRecord()}))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	first, err := reopened.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, testRecord(), first)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
