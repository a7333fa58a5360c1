package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaul/airportscript/internal/config"
	"github.com/skyhaul/airportscript/internal/model"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{Host: "db", Port: "5432", Username: "u", Password: "p", Database: "journal"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=journal sslmode=disable", dsn)
}

func TestOpenSQLite_MemoryIsPrivate(t *testing.T) {
	a, err := OpenSQLite("")
	require.NoError(t, err)
	b, err := OpenSQLite("")
	require.NoError(t, err)

	require.NoError(t, Migrate(a))
	require.NoError(t, Migrate(b))
	require.NoError(t, a.Create(&model.Session{UUID: "one", StartedAt: time.Now()}).Error)

	var count int64
	require.NoError(t, b.Model(&model.Session{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMigrate_NilDB(t *testing.T) {
	assert.Error(t, Migrate(nil))
}

func TestManager_SetupAndDump(t *testing.T) {
	db, err := OpenSQLite("")
	require.NoError(t, err)

	m := NewManager(config.DBConfig{}, zerolog.Nop())
	m.DB = db
	m.SqliteFilePath = filepath.Join(t.TempDir(), "journal.db")

	require.NoError(t, m.Setup())
	require.NoError(t, db.Create(&model.Session{UUID: "s", StartedAt: time.Now()}).Error)

	require.NoError(t, m.DumpMemoryToDisk())
	// a second dump replaces the first
	require.NoError(t, m.DumpMemoryToDisk())

	onDisk, err := OpenSQLite(m.SqliteFilePath)
	require.NoError(t, err)
	var count int64
	require.NoError(t, onDisk.Model(&model.Session{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryDBToDisk_Errors(t *testing.T) {
	db, err := OpenSQLite("")
	require.NoError(t, err)

	assert.Error(t, DumpMemoryDBToDisk(db, ""))
	assert.Error(t, DumpMemoryDBToDisk(db, "it's.db"))
}

func TestGetBackupDBPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.db"), 0o755))

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.db"), filepath.Join(dir, "b.db")}, paths)
}
