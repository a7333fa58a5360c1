package logging

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		app     string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "airportlogs",
			app:     "airportctl",
			want:    filepath.Join("airportlogs", "airportctl.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./airportlogs",
			app:     "airportctl",
			want:    filepath.Join(".", "airportlogs", "airportctl.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "airportscript"),
			app:     "airportctl",
			want:    filepath.Join("/var", "log", "airportscript", "airportctl.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.app, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewZerolog(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewZerolog(&buf, tt.level)
			assert.Equal(t, tt.want, l.GetLevel())

			l.WithLevel(tt.want).Msg("hello")
			assert.Contains(t, buf.String(), `"message":"hello"`)
			assert.Contains(t, buf.String(), `"time"`)
		})
	}
}
