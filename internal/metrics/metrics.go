// =============================================================================
// File: internal/metrics/metrics.go
// Simulation-level bookkeeping that doesn't fit a Prometheus gauge well:
// round counts, a capped mode-switch history, and uptime.
// =============================================================================
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// SimMetrics tracks aggregate state across a single cmd/spline-sim run.
type SimMetrics struct {
	roundsProcessed uint64
	lossEvents      uint64
	modeSwitches    uint64
	switchHistory   []ModeSwitchRecord

	startTime time.Time
	mu        sync.RWMutex
}

// ModeSwitchRecord is one phase-machine transition, timestamped.
type ModeSwitchRecord struct {
	Timestamp time.Time
	FromMode  string
	ToMode    string
}

// New creates a SimMetrics with its clock started.
func New() *SimMetrics {
	return &SimMetrics{
		startTime:     time.Now(),
		switchHistory: make([]ModeSwitchRecord, 0, 100),
	}
}

// IncRounds records one CongControl call.
func (m *SimMetrics) IncRounds() {
	atomic.AddUint64(&m.roundsProcessed, 1)
}

// GetRoundsProcessed returns the number of CongControl calls observed.
func (m *SimMetrics) GetRoundsProcessed() uint64 {
	return atomic.LoadUint64(&m.roundsProcessed)
}

// RecordLossEvent records one round where the host reported CA_Loss.
func (m *SimMetrics) RecordLossEvent() {
	atomic.AddUint64(&m.lossEvents, 1)
}

// GetLossEvents returns the number of loss rounds observed.
func (m *SimMetrics) GetLossEvents() uint64 {
	return atomic.LoadUint64(&m.lossEvents)
}

// RecordModeSwitch records a phase-machine transition, keeping only the
// most recent 100 in history.
func (m *SimMetrics) RecordModeSwitch(fromMode, toMode string) {
	atomic.AddUint64(&m.modeSwitches, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	record := ModeSwitchRecord{
		Timestamp: time.Now(),
		FromMode:  fromMode,
		ToMode:    toMode,
	}
	if len(m.switchHistory) >= 100 {
		m.switchHistory = m.switchHistory[1:]
	}
	m.switchHistory = append(m.switchHistory, record)
}

// GetModeSwitches returns the total number of transitions observed.
func (m *SimMetrics) GetModeSwitches() uint64 {
	return atomic.LoadUint64(&m.modeSwitches)
}

// GetSwitchHistory returns up to limit of the most recent transitions,
// newest first. limit <= 0 returns the full history.
func (m *SimMetrics) GetSwitchHistory(limit int) []ModeSwitchRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.switchHistory) {
		limit = len(m.switchHistory)
	}
	result := make([]ModeSwitchRecord, limit)
	for i := 0; i < limit; i++ {
		result[i] = m.switchHistory[len(m.switchHistory)-1-i]
	}
	return result
}

// GetUptime returns the time since New was called.
func (m *SimMetrics) GetUptime() time.Duration {
	return time.Since(m.startTime)
}

// GetStats returns a JSON-friendly summary; cmd/spline-sim prints it
// when the simulation ends.
func (m *SimMetrics) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"uptime":           m.GetUptime().String(),
		"rounds_processed": m.GetRoundsProcessed(),
		"loss_events":      m.GetLossEvents(),
		"mode_switches":    m.GetModeSwitches(),
	}
}
