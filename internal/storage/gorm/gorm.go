// Package gormstorage implements the journal on GORM with internal queues
// and a background DB writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skyhaul/airportscript/internal/config"
	"github.com/skyhaul/airportscript/internal/database"
	"github.com/skyhaul/airportscript/internal/model"
	"github.com/skyhaul/airportscript/internal/model/convert"
	"github.com/skyhaul/airportscript/internal/queue"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

const defaultFlushInterval = 2 * time.Second

// ErrNoSession is returned by journal writes before StartSession.
var ErrNoSession = errors.New("no active session")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	// DB is used as-is when set; otherwise Init connects to Postgres.
	DB            *gorm.DB
	Postgres      config.DBConfig
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Commands *queue.Queue[model.Command]
	Outcomes *queue.Queue[model.CommandOutcome]
	Stations *queue.Queue[model.StationSnapshot]
}

func newQueues() *queues {
	return &queues{
		Commands: queue.New[model.Command](),
		Outcomes: queue.New[model.CommandOutcome](),
		Stations: queue.New[model.StationSnapshot](),
	}
}

// Backend journals to a SQL database with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	log       *slog.Logger
	queues    *queues
	sessionID atomic.Uint64

	mu      sync.Mutex // guards gameMap
	gameMap world.Map

	writeMu  sync.Mutex // serializes flushes
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		deps:   deps,
		log:    log.With("component", "gorm"),
		queues: newQueues(),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the DB writer goroutine. If no DB
// was injected via Dependencies, it connects to Postgres.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.OpenPostgres(b.deps.Postgres)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.log.Info("Migrating schema", "dialect", b.deps.DB.Name())
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine after a final flush.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() {
		if b.stopChan == nil {
			return
		}
		close(b.stopChan)
		<-b.done
	})
	return b.Flush()
}

// StartSession inserts the session row synchronously so queued rows can
// reference it.
func (b *Backend) StartSession(s *core.SessionInfo) error {
	if b.deps.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := b.Flush(); err != nil {
		return err
	}

	row := convert.CoreToSession(*s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	b.sessionID.Store(uint64(row.ID))

	m, err := world.NewMap(s.MapSizeX, s.MapSizeY)
	if err != nil {
		b.log.Warn("Session has no usable map size, station geometry disabled", "error", err)
	}
	b.mu.Lock()
	b.gameMap = m
	b.mu.Unlock()

	b.log.Info("Session started", "session", row.ID, "uuid", row.UUID)
	return nil
}

// SessionID returns the database ID of the current session, 0 if none.
func (b *Backend) SessionID() uint {
	return uint(b.sessionID.Load())
}

// EndSession flushes pending rows and stamps the session end time.
func (b *Backend) EndSession() error {
	id := b.SessionID()
	if id == 0 {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}
	err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).
		Update("ended_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	b.sessionID.Store(0)
	return nil
}

// RecordRequest converts and queues a request.
func (b *Backend) RecordRequest(r *core.Request) error {
	if b.SessionID() == 0 {
		return ErrNoSession
	}
	b.queues.Commands.Push(convert.CoreToCommand(*r))
	return nil
}

// RecordOutcome converts and queues an outcome.
func (b *Backend) RecordOutcome(o *core.Outcome) error {
	if b.SessionID() == 0 {
		return ErrNoSession
	}
	b.queues.Outcomes.Push(convert.CoreToOutcome(*o))
	return nil
}

// RecordStation converts and queues a station snapshot with its geometry.
func (b *Backend) RecordStation(s *core.StationSnapshot) error {
	if b.SessionID() == 0 {
		return ErrNoSession
	}
	b.mu.Lock()
	m := b.gameMap
	b.mu.Unlock()

	row, err := convert.CoreToStationSnapshot(*s, m)
	if err != nil {
		b.log.Warn("Station geometry unavailable", "station", s.Station, "error", err)
	}
	b.queues.Stations.Push(row)
	return nil
}

// Pending returns the number of queued rows not yet written.
func (b *Backend) Pending() int {
	return b.queues.Commands.Len() + b.queues.Outcomes.Len() + b.queues.Stations.Len()
}

// Flush writes every queued row now.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return nil
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	sessionID := b.SessionID()
	return errors.Join(
		writeQueue(b.deps.DB, b.queues.Commands, "commands", b.log, func(items []model.Command) {
			for i := range items {
				items[i].SessionID = sessionID
			}
		}),
		writeQueue(b.deps.DB, b.queues.Outcomes, "outcomes", b.log, func(items []model.CommandOutcome) {
			for i := range items {
				items[i].SessionID = sessionID
			}
		}),
		writeQueue(b.deps.DB, b.queues.Stations, "station snapshots", b.log, func(items []model.StationSnapshot) {
			for i := range items {
				items[i].SessionID = sessionID
			}
		}),
	)
}

// writeQueue writes all items from a queue to the database in a
// transaction. Failed batches go back on the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) error {
	if q.Empty() {
		return nil
	}

	items := q.Drain()
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		log.Error("Error creating rows", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tx.Commit().Error; err != nil {
		q.Push(items...)
		return fmt.Errorf("commit %s: %w", name, err)
	}
	log.Debug("Wrote rows", "table", name, "count", len(items))
	return nil
}

// writerLoop periodically drains the queues into the DB.
func (b *Backend) writerLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			// errors are logged by writeQueue and retried next tick
			_ = b.Flush()
		}
	}
}
