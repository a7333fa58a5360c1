// Package session holds the session built once at load time: the
// scenario's world, the catalog, the query layer and the active company.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skyhaul/airportscript/internal/airport"
	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/world/memory"
	"github.com/skyhaul/airportscript/pkg/core"
)

// Context holds the current session
type Context struct {
	mu      sync.RWMutex
	info    core.SessionInfo
	world   *memory.World
	catalog *catalog.Catalog
	query   *airport.Query
	company core.CompanyID
	loaded  bool
}

// NewContext creates a new Context with no session loaded
func NewContext() *Context {
	return &Context{
		info:    core.SessionInfo{Name: "No session loaded"},
		company: core.InvalidCompany,
	}
}

// Load starts a session over w and cat and returns its description.
func (c *Context) Load(name, scenario string, year int, w *memory.World, cat *catalog.Catalog) core.SessionInfo {
	m := w.Map()
	settings := w.Settings()
	info := core.SessionInfo{
		ID:          uuid.New(),
		Name:        name,
		Scenario:    scenario,
		MapSizeX:    m.SizeX,
		MapSizeY:    m.SizeY,
		Year:        year,
		NoiseLevel:  settings.NoiseLevel,
		Tolerance:   settings.TownCouncilTolerance,
		StartedAt:   time.Now(),
		CatalogSize: len(cat.Types()),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = info
	c.world = w
	c.catalog = cat
	c.query = airport.NewQuery(w, cat)
	c.loaded = true
	return info
}

// Loaded reports whether a session is active
func (c *Context) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Info returns the current session description
func (c *Context) Info() core.SessionInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

// World returns the session world, nil before Load
func (c *Context) World() *memory.World {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.world
}

// Catalog returns the session catalog, nil before Load
func (c *Context) Catalog() *catalog.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

// Query returns the query layer over the session world, nil before Load
func (c *Context) Query() *airport.Query {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// SetCompany sets the company the running script acts for
func (c *Context) SetCompany(id core.CompanyID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.company = id
}

// Company returns the active company, InvalidCompany if none
func (c *Context) Company() core.CompanyID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.company
}

// LogAttrs returns the attributes every log record of the session carries.
// It is a logging.ContextProvider.
func (c *Context) LogAttrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil
	}
	attrs := []slog.Attr{
		slog.String("session", c.info.ID.String()),
		slog.String("scenario", c.info.Name),
	}
	if c.company != core.InvalidCompany {
		attrs = append(attrs, slog.Int("company", int(c.company)))
	}
	return attrs
}
