package sqlitestorage

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaul/airportscript/internal/database"
	"github.com/skyhaul/airportscript/internal/model"
	"github.com/skyhaul/airportscript/pkg/core"
)

func TestEndSession_DumpsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	b, err := New(Config{DumpPath: path}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSession(&core.SessionInfo{ID: uuid.New(), MapSizeX: 32, MapSizeY: 32, StartedAt: time.Now()}))
	require.NoError(t, b.RecordRequest(&core.Request{ID: uuid.New(), Kind: core.CmdLandscapeClear, Tile: 40}))
	require.NoError(t, b.EndSession())
	assert.Equal(t, path, b.GetExportedFilePath())

	disk, err := database.OpenSQLite(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, disk.Model(&model.Command{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	b, err := New(Config{DumpPath: path, DumpInterval: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())

	assert.Eventually(t, func() bool {
		paths, err := database.GetBackupDBPaths(filepath.Dir(path))
		return err == nil && len(paths) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}

func TestDump_NoPath(t *testing.T) {
	b, err := New(Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer b.Close()

	assert.NoError(t, b.Dump())
	assert.Empty(t, b.GetExportedFilePath())
}
