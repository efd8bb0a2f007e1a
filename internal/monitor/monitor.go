// Package monitor periodically writes the planner's status to a file so an
// operator can see what the planner is doing without reading the logs.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

const defaultInterval = time.Second

// Status is one snapshot of the planner.
type Status struct {
	Time          time.Time `json:"time"`
	Frame         int64     `json:"frame"`
	Situation     string    `json:"situation"`
	TicksParsed   uint64    `json:"ticksParsed"`
	TicksRejected uint64    `json:"ticksRejected"`
	Recording     string    `json:"recording,omitempty"`
	LastTick      float64   `json:"lastTickMs"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger     *slog.Logger
	StatusFile string
	Interval   time.Duration
	Status     func() Status
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
		deps.Interval = defaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus returns the current status and its indented JSON form.
func (s *Service) GetProgramStatus() (output string, status Status) {
	status = s.deps.Status()
	if status.Time.IsZero() {
		status.Time = time.Now()
	}
	b, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		b = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	return string(b), status
}

// WriteStatus replaces the status file with the current status.
func (s *Service) WriteStatus() error {
	out, _ := s.GetProgramStatus()
	return os.WriteFile(s.deps.StatusFile, []byte(out+"\n"), 0644)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "file", s.deps.StatusFile)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		failing := false
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				err := s.WriteStatus()
				switch {
				case err != nil && !failing:
					logger.Error("Error writing status file", "error", err)
					failing = true
				case err == nil && failing:
					logger.Info("Status file writable again")
					failing = false
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for its goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
