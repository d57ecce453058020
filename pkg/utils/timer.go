package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase represents a single timed phase.
type Phase struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	completed bool
}

// PhaseTimer provides a fluent API for timing a single phase; it is safe to
// Stop via defer.
type PhaseTimer struct {
	timer     *Timer
	phaseName string
}

// Stop stops the phase timer and records the duration.
// Safe to call multiple times; only the first call has effect.
func (pt *PhaseTimer) Stop() time.Duration {
	return pt.timer.StopPhase(pt.phaseName)
}

// Timer records a sequence of named phases (one per solver batch) and can
// summarize them at the end of a run. Concurrent use is allowed.
type Timer struct {
	mu         sync.RWMutex
	name       string
	startTime  time.Time
	phases     map[string]*Phase
	phaseOrder []string
	logger     Logger
	enabled    bool
}

// TimerOption configures a Timer instance.
type TimerOption func(*Timer)

// WithLogger sets the logger the summary is written to.
func WithLogger(logger Logger) TimerOption {
	return func(t *Timer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithEnabled sets whether the timer is enabled.
// When disabled, all operations are no-ops for zero overhead.
func WithEnabled(enabled bool) TimerOption {
	return func(t *Timer) {
		t.enabled = enabled
	}
}

// NewTimer creates a new Timer with the given name and options.
func NewTimer(name string, opts ...TimerOption) *Timer {
	t := &Timer{
		name:    name,
		phases:  make(map[string]*Phase),
		logger:  &NullLogger{},
		enabled: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.startTime = time.Now()
	return t
}

// Start starts timing a new phase and returns its PhaseTimer.
func (t *Timer) Start(phaseName string) *PhaseTimer {
	if !t.enabled {
		return &PhaseTimer{timer: t, phaseName: phaseName}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.phases[phaseName]; !exists {
		t.phaseOrder = append(t.phaseOrder, phaseName)
	}
	t.phases[phaseName] = &Phase{
		Name:      phaseName,
		StartTime: time.Now(),
	}
	return &PhaseTimer{timer: t, phaseName: phaseName}
}

// StopPhase stops a phase by name and returns its duration.
func (t *Timer) StopPhase(phaseName string) time.Duration {
	if !t.enabled {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	phase, ok := t.phases[phaseName]
	if !ok || phase.completed {
		return 0
	}
	phase.EndTime = time.Now()
	phase.Duration = phase.EndTime.Sub(phase.StartTime)
	phase.completed = true
	return phase.Duration
}

// Elapsed returns the time since the timer was created.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Summary logs every completed phase in insertion order plus the total.
func (t *Timer) Summary() {
	if !t.enabled {
		return
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s timing:", t.name))
	for _, name := range t.phaseOrder {
		phase := t.phases[name]
		if phase.completed {
			sb.WriteString(fmt.Sprintf(" %s=%s", name, phase.Duration.Round(time.Millisecond)))
		}
	}
	sb.WriteString(fmt.Sprintf(" total=%s", t.Elapsed().Round(time.Millisecond)))
	t.logger.Info("%s", sb.String())
}
