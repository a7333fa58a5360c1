package session

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaul/airportscript/internal/catalog"
	"github.com/skyhaul/airportscript/internal/logging"
	"github.com/skyhaul/airportscript/internal/world"
	"github.com/skyhaul/airportscript/internal/world/memory"
	"github.com/skyhaul/airportscript/pkg/core"
)

func TestNewContext(t *testing.T) {
	c := NewContext()
	assert.False(t, c.Loaded())
	assert.Equal(t, "No session loaded", c.Info().Name)
	assert.Nil(t, c.World())
	assert.Nil(t, c.Query())
	assert.Equal(t, core.InvalidCompany, c.Company())
	assert.Empty(t, c.LogAttrs())
}

func TestLoad(t *testing.T) {
	m, err := world.NewMap(32, 16)
	require.NoError(t, err)
	w := memory.New(m, world.DefaultSettings())
	cat, err := catalog.Default(catalog.Settings{BaseAirportPrice: 1, CurrentYear: 1950})
	require.NoError(t, err)

	c := NewContext()
	info := c.Load("Valley", "valley.yaml", 1950, w, cat)

	assert.True(t, c.Loaded())
	assert.Equal(t, info, c.Info())
	assert.Equal(t, uint32(32), info.MapSizeX)
	assert.Equal(t, uint32(16), info.MapSizeY)
	assert.True(t, info.NoiseLevel)
	assert.Equal(t, len(cat.Types()), info.CatalogSize)
	assert.NotEqual(t, [16]byte{}, [16]byte(info.ID))
	assert.Same(t, w, c.World())
	assert.Same(t, cat, c.Catalog())
	require.NotNil(t, c.Query())

	attrs := c.LogAttrs()
	require.Len(t, attrs, 2)
	assert.Equal(t, "session", attrs[0].Key)

	c.SetCompany(3)
	attrs = c.LogAttrs()
	require.Len(t, attrs, 3)
	assert.Equal(t, int64(3), attrs[2].Value.Int64())
}

func TestLogAttrs_ReachLogOutput(t *testing.T) {
	m, err := world.NewMap(32, 16)
	require.NoError(t, err)
	cat, err := catalog.Default(catalog.Settings{BaseAirportPrice: 1, CurrentYear: 1950})
	require.NoError(t, err)

	c := NewContext()
	info := c.Load("Valley", "valley.yaml", 1950, memory.New(m, world.DefaultSettings()), cat)
	c.SetCompany(3)

	var text bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&text, nil), c.LogAttrs))
	logger.Info("airport built")
	logger.With("company", 5).Info("script print")

	lines := bytes.Split(bytes.TrimSpace(text.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "session="+info.ID.String())
	assert.Contains(t, string(lines[0]), "scenario=Valley")
	assert.Contains(t, string(lines[0]), "company=3")
	assert.Contains(t, string(lines[1]), "company=5")
	assert.NotContains(t, string(lines[1]), "company=3")

	var js bytes.Buffer
	logging.NewDispatcherLogger(zerolog.New(&js), c.LogAttrs).Info("handler registered", "command", "build")
	var got map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &got))
	assert.Equal(t, info.ID.String(), got["session"])
	assert.Equal(t, "Valley", got["scenario"])
	assert.Equal(t, float64(3), got["company"])
	assert.Equal(t, "build", got["command"])
}
