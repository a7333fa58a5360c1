package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skyhaul/airportscript/internal/config"
	"github.com/skyhaul/airportscript/internal/storage"
	gormstorage "github.com/skyhaul/airportscript/internal/storage/gorm"
	"github.com/skyhaul/airportscript/internal/storage/memory"
	sqlitestorage "github.com/skyhaul/airportscript/internal/storage/sqlite"
	wsstorage "github.com/skyhaul/airportscript/internal/storage/websocket"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Exportable = (*memory.Backend)(nil)
	_ storage.Backend    = (*gormstorage.Backend)(nil)
	_ storage.Backend    = (*sqlitestorage.Backend)(nil)
	_ storage.Exportable = (*sqlitestorage.Backend)(nil)
	_ storage.Backend    = (*wsstorage.Backend)(nil)
)

func TestWebsocketIsNotExportable(t *testing.T) {
	var b storage.Backend = wsstorage.New(wsstorage.Config{}, nil)
	_, ok := b.(storage.Exportable)
	assert.False(t, ok)
}

func TestMemoryExportPathEmptyBeforeExport(t *testing.T) {
	b := memory.New(config.MemoryConfig{})
	assert.Empty(t, b.GetExportedFilePath())
}
