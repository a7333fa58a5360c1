// Package monitor periodically writes the executor and journal backlog to a
// status file.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultInterval is used when Dependencies.Interval is zero.
const DefaultInterval = time.Second

// Executor is the part of the command executor the monitor reads.
type Executor interface {
	Pending() int
	Stats() (applied, failed, unsent int64)
}

// Journal is implemented by storage backends with a write backlog.
type Journal interface {
	Pending() int
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Executor   Executor
	Journal    Journal // optional
	Logger     *slog.Logger
	Scenario   string
	StatusPath string
	Interval   time.Duration
}

// Status is one snapshot of the program state.
type Status struct {
	Time           time.Time `json:"time"`
	Scenario       string    `json:"scenario"`
	Pending        int       `json:"pending"`
	Applied        int64     `json:"applied"`
	Failed         int64     `json:"failed"`
	Unsent         int64     `json:"unsent"`
	JournalPending int       `json:"journalPending"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status returns the current program status.
func (s *Service) Status() Status {
	applied, failed, unsent := s.deps.Executor.Stats()
	st := Status{
		Time:     time.Now(),
		Scenario: s.deps.Scenario,
		Pending:  s.deps.Executor.Pending(),
		Applied:  applied,
		Failed:   failed,
		Unsent:   unsent,
	}
	if s.deps.Journal != nil {
		st.JournalPending = s.deps.Journal.Pending()
	}
	return st
}

// WriteStatus replaces the status file with the current status.
func (s *Service) WriteStatus() error {
	data, err := json.MarshalIndent(s.Status(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := os.WriteFile(s.deps.StatusPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if s.deps.Executor == nil {
		s.mu.Unlock()
		return fmt.Errorf("monitor: no executor")
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.Logger
		logger.Debug("Starting status monitor", "path", s.deps.StatusPath, "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				if err := s.WriteStatus(); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for the final status write.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	stop, done := s.stopChan, s.done
	s.isRunning = false
	s.mu.Unlock()

	close(stop)
	<-done
}
