package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaul/airportscript/internal/config"
	"github.com/skyhaul/airportscript/pkg/core"
)

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
}

func TestServerURL(t *testing.T) {
	m := NewManager(config.InfluxConfig{Protocol: "https", Host: "metrics", Port: "8086"}, zerolog.Nop(), "")
	assert.Equal(t, "https://metrics:8086", m.ServerURL())
}

func TestOutcomePoint(t *testing.T) {
	at := time.Unix(1700000000, 0)
	tests := []struct {
		name     string
		outcome  core.Outcome
		contains []string
	}{
		{
			name:    "success",
			outcome: core.Outcome{Kind: core.CmdBuildAirport, Company: 2, Tile: 650, Station: 4, Cost: 5000, AppliedAt: at},
			contains: []string{
				"command_outcome,command=build_airport,company=2,succeeded=true",
				"cost=5000i",
				"station=4i",
				"tile=650i",
			},
		},
		{
			name:     "failure",
			outcome:  core.Outcome{Kind: core.CmdLandscapeClear, Err: errors.New("nothing to clear"), AppliedAt: at},
			contains: []string{"succeeded=false", `error="nothing to clear"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := influxdb2_write.PointToLineProtocol(OutcomePoint(tt.outcome), time.Second)
			for _, want := range tt.contains {
				assert.Contains(t, line, want)
			}
			assert.True(t, strings.HasSuffix(strings.TrimSpace(line), " 1700000000"))
		})
	}
}

func TestRecordOutcome_Backup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), path)
	require.NoError(t, m.OpenBackup())

	require.NoError(t, m.RecordOutcome(core.Outcome{Kind: core.CmdBuildAirport, Cost: 1}))
	require.NoError(t, m.RecordOutcome(core.Outcome{Kind: core.CmdLandscapeClear, Cost: 2}))
	require.NoError(t, m.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "command=build_airport")
	assert.Contains(t, lines[1], "command=landscape_clear")
}

func TestWritePoint_NoTarget(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	assert.Error(t, m.RecordOutcome(core.Outcome{}))
	assert.Error(t, m.OpenBackup())
	assert.NoError(t, m.Close())
}

func TestConnect_UnreachableFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.gz")
	m := NewManager(config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Org:      "org",
		Bucket:   "commands",
	}, zerolog.Nop(), path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)
	assert.NotNil(t, m.BackupWriter)
	require.NoError(t, m.Close())
}
