package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/skyhaul/airportscript/internal/database"
	"github.com/skyhaul/airportscript/internal/storage"
	gormstorage "github.com/skyhaul/airportscript/internal/storage/gorm"
	"github.com/skyhaul/airportscript/internal/storage/memory"
	sqlitestorage "github.com/skyhaul/airportscript/internal/storage/sqlite"
	wsstorage "github.com/skyhaul/airportscript/internal/storage/websocket"
)

func (a *app) createStorageBackend() (storage.Backend, error) {
	storageCfg := a.cfg.Storage

	switch storageCfg.Type {
	case "postgres":
		mgr := database.NewManager(a.cfg.DB, a.zlog)
		if err := mgr.Connect(); err != nil {
			return nil, err
		}
		if err := mgr.Setup(); err != nil {
			return nil, err
		}
		if mgr.ShouldSaveLocal {
			mgr.SqliteFilePath = timestampedPath(storageCfg.SQLite.Path, a.start)
		}
		a.dbManager = mgr
		a.Logger.Info("Postgres storage backend initialized", "local", mgr.ShouldSaveLocal)
		return gormstorage.New(gormstorage.Dependencies{
			DB:     mgr.DB,
			Logger: a.Logger,
		}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     timestampedPath(storageCfg.SQLite.Path, a.start),
		}, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		a.Logger.Info("SQLite storage backend initialized")
		return backend, nil

	case "websocket":
		a.Logger.Info("WebSocket storage backend initialized", "url", a.cfg.Websocket.URL)
		return wsstorage.New(wsstorage.Config{
			URL:    httpToWS(a.cfg.Websocket.URL),
			Secret: a.cfg.Websocket.Secret,
		}, a.Logger), nil

	case "memory", "":
		a.Logger.Info("Memory storage backend initialized")
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// timestampedPath inserts the session start time before the extension:
// journal.db becomes journal_20060102_150405.db.
func timestampedPath(path string, start time.Time) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(path, ext), start.Format("20060102_150405"), ext)
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
