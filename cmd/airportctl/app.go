package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyhaul/airportscript/internal/airport"
	"github.com/skyhaul/airportscript/internal/api"
	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/config"
	"github.com/skyhaul/airportscript/internal/database"
	"github.com/skyhaul/airportscript/internal/dispatcher"
	"github.com/skyhaul/airportscript/internal/executor"
	"github.com/skyhaul/airportscript/internal/influx"
	"github.com/skyhaul/airportscript/internal/logging"
	"github.com/skyhaul/airportscript/internal/monitor"
	otelprovider "github.com/skyhaul/airportscript/internal/otel"
	"github.com/skyhaul/airportscript/internal/scenario"
	"github.com/skyhaul/airportscript/internal/session"
	"github.com/skyhaul/airportscript/internal/storage"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/pkg/core"
)

// app holds everything a command needs once a session is loaded.
type app struct {
	cfg   config.Config
	start time.Time

	slogManager *logging.SlogManager
	Logger      *slog.Logger
	zlog        zerolog.Logger
	otel        *otelprovider.Provider
	files       []io.Closer

	session    *session.Context
	backend    storage.Backend
	dbManager  *database.Manager
	influx     *influx.Manager
	dispatcher *dispatcher.Dispatcher
	executor   *executor.Manager
	facade     *airport.Facade
	monitor    *monitor.Service
}

// newApp sets up logging and telemetry. Logs go to a file in LogsDir when
// one is configured, to the console otherwise.
func newApp(cfg config.Config) (*app, error) {
	a := &app{
		cfg:         cfg,
		start:       time.Now(),
		slogManager: logging.NewSlogManager(),
		session:     session.NewContext(),
	}

	var logFile io.Writer
	var otelFile io.Writer
	if cfg.LogsDir != "" {
		if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
			return nil, fmt.Errorf("create logs dir: %w", err)
		}
		f, err := a.createFile(logging.LogFilePath(cfg.LogsDir, appName, a.start))
		if err != nil {
			return nil, err
		}
		logFile = f
		if cfg.OTel.Enabled {
			if otelFile, err = a.createFile(logging.LogFilePath(cfg.LogsDir, appName+".otel", a.start)); err != nil {
				return nil, err
			}
		}
	}

	provider, err := otelprovider.New(cfg.OTel, otelFile)
	if err != nil {
		return nil, fmt.Errorf("set up OTel: %w", err)
	}
	a.otel = provider

	a.slogManager.Setup(logFile, cfg.LogLevel, provider.LoggerProvider(), a.session.LogAttrs)
	a.Logger = a.slogManager.Logger()

	zlogOut := logFile
	if zlogOut == nil {
		zlogOut = os.Stderr
	}
	a.zlog = logging.NewZerolog(zlogOut, cfg.LogLevel)
	return a, nil
}

func (a *app) createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	a.files = append(a.files, f)
	return f, nil
}

// catalogSettings derives the catalog rules for a session in year.
func catalogSettings(c config.CatalogConfig, year int) catalog.Settings {
	disabled := make([]core.AirportType, 0, len(c.Disabled))
	for _, t := range c.Disabled {
		if t >= 0 && t < core.NumAirportTypes {
			disabled = append(disabled, core.AirportType(t))
		}
	}
	return catalog.Settings{
		BaseAirportPrice:    core.Money(c.BasePrice),
		CurrentYear:         year,
		NeverExpireAirports: c.NeverExpire,
		ModifiedCatchment:   c.ModifiedCatchment,
		Disabled:            disabled,
	}
}

// loadCatalog loads the configured catalog file, or the built-in table.
func loadCatalog(c config.CatalogConfig, year int) (*catalog.Catalog, error) {
	settings := catalogSettings(c, year)
	if c.Path == "" {
		return catalog.Default(settings)
	}
	return catalog.Load(c.Path, settings)
}

// worldSettings maps the configured game rules.
func worldSettings(g config.GameConfig) world.Settings {
	return world.Settings{
		NoiseLevel:           g.NoiseLevel,
		TownCouncilTolerance: g.TownCouncilTolerance,
		StationSpread:        g.StationSpread,
		DistantJoinStations:  g.DistantJoinStations,
	}
}

// openSession loads the scenario at path and starts a journaled session
// with a registered executor and a façade.
func (a *app) openSession(ctx context.Context, path string) error {
	file, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}
	year := a.cfg.Game.Year
	if file.Year > 0 {
		year = file.Year
	}

	cat, err := loadCatalog(a.cfg.Catalog, year)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	w, err := file.Build(cat, worldSettings(a.cfg.Game))
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}

	name := file.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	info := a.session.Load(name, path, year, w, cat)
	a.Logger.Info("Session loaded",
		"map", fmt.Sprintf("%dx%d", info.MapSizeX, info.MapSizeY),
		"year", year,
		"airportTypes", info.CatalogSize)

	backend, err := a.createStorageBackend()
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	a.backend = backend
	if err := backend.StartSession(&info); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	var recorder executor.Recorder
	if a.cfg.Influx.Enabled {
		backup := filepath.Join(a.cfg.LogsDir, fmt.Sprintf("influx_%s.lp.gz", a.start.Format("20060102_150405")))
		a.influx = influx.NewManager(a.cfg.Influx, a.zlog, backup)
		if err := a.influx.Connect(ctx); err != nil {
			a.Logger.Warn("InfluxDB unavailable, outcome metrics disabled", "error", err)
		} else {
			recorder = a.influx
		}
	}

	mode, err := executor.ParseMode(a.cfg.Executor.Mode)
	if err != nil {
		return err
	}
	d, err := dispatcher.New(logging.NewDispatcherLogger(a.zlog, a.session.LogAttrs))
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}
	a.dispatcher = d
	a.executor = executor.NewManager(executor.Dependencies{
		World:            w,
		Catalog:          cat,
		Backend:          backend,
		Recorder:         recorder,
		Logger:           a.Logger,
		Mode:             mode,
		BufferSize:       a.cfg.Executor.BufferSize,
		ClearCostPerTile: core.Money(a.cfg.Game.ClearCostPerTile),
	})
	a.executor.RegisterHandlers(d)
	a.facade = airport.NewFacade(a.session.Query(), a.executor, a.Logger)

	if a.cfg.Monitor.Enabled && a.cfg.LogsDir != "" {
		journal, _ := backend.(monitor.Journal)
		a.monitor = monitor.NewService(monitor.Dependencies{
			Executor:   a.executor,
			Journal:    journal,
			Logger:     a.Logger,
			Scenario:   name,
			StatusPath: filepath.Join(a.cfg.LogsDir, "status.json"),
			Interval:   a.cfg.Monitor.Interval,
		})
		if err := a.monitor.Start(); err != nil {
			return fmt.Errorf("start monitor: %w", err)
		}
	}
	return nil
}

// settle applies everything submitted so far and returns the outcomes in
// the order they were applied. The executor accepts no more requests
// afterwards.
func (a *app) settle(ctx context.Context) ([]core.Outcome, error) {
	var tickErr error
	if a.executor.Mode() == executor.ModeDeferred {
		_, tickErr = a.executor.Tick(ctx)
	}
	a.dispatcher.Close()
	a.executor.Close()

	var out []core.Outcome
	for o := range a.executor.Outcomes() {
		out = append(out, o)
	}
	if _, _, unsent := a.executor.Stats(); unsent > 0 {
		a.Logger.Warn("Outcomes dropped", "count", unsent)
	}
	return out, tickErr
}

// close ends the session and releases every resource. It is safe to call
// on a partially opened app.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.executor != nil {
		a.executor.Close()
	}
	if a.backend != nil {
		errs = append(errs, a.backend.EndSession(), a.backend.Close())
		if e, ok := a.backend.(storage.Exportable); ok && e.GetExportedFilePath() != "" {
			a.Logger.Info("Journal exported", "path", e.GetExportedFilePath())
			if a.cfg.API.Upload {
				errs = append(errs, a.upload(ctx, e.GetExportedFilePath()))
			}
		}
	}
	if a.dbManager != nil && a.dbManager.ShouldSaveLocal {
		errs = append(errs, a.dbManager.DumpMemoryToDisk())
		a.Logger.Info("Journal saved locally", "path", a.dbManager.SqliteFilePath)
	}
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	errs = append(errs, a.slogManager.Flush(ctx), a.otel.Shutdown(ctx))
	for _, f := range a.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// upload sends the exported journal to the journal server. A failed upload
// leaves the local export in place.
func (a *app) upload(ctx context.Context, path string) error {
	client := api.New(a.cfg.API.ServerURL, a.cfg.API.APIKey)
	if err := client.Healthcheck(ctx); err != nil {
		a.Logger.Warn("Journal server unavailable, keeping local export", "path", path, "error", err)
		return nil
	}

	info := a.session.Info()
	meta := api.UploadMetadata{
		SessionID: info.ID.String(),
		Scenario:  info.Scenario,
		Company:   uint8(a.session.Company()),
	}
	if a.executor != nil {
		applied, _, _ := a.executor.Stats()
		meta.Commands = int(applied)
	}
	if err := client.Upload(ctx, path, meta); err != nil {
		return fmt.Errorf("upload journal: %w", err)
	}
	a.Logger.Info("Journal uploaded", "path", path, "server", a.cfg.API.ServerURL)
	return nil
}
