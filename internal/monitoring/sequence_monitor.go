package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/shopdesk-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// EventSequenceLow is published when the invoice sequence crosses the warn
// ratio.
const EventSequenceLow = "invoice.sequence.low"

// SequenceReader reports how far the invoice sequence has advanced.
type SequenceReader interface {
	Current(ctx context.Context) (int64, error)
	Capacity() int64
}

// SequenceStatus is the result of one headroom check.
type SequenceStatus struct {
	Current   int64   `json:"current"`
	Capacity  int64   `json:"capacity"`
	Remaining int64   `json:"remaining"`
	Ratio     float64 `json:"ratio"`
	Exhausted bool    `json:"exhausted"`
}

// SequenceMonitor periodically checks how many invoice identifiers are left
// and warns before the sequence runs out.
type SequenceMonitor struct {
	seq       SequenceReader
	events    services.EventPublisher
	schedule  cron.Schedule
	warnRatio float64
	timeout   time.Duration
	cron      *cron.Cron
}

// NewSequenceMonitor parses spec as a standard five-field cron expression.
// events may be nil.
func NewSequenceMonitor(seq SequenceReader, events services.EventPublisher, spec string, warnRatio float64) (*SequenceMonitor, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	if warnRatio <= 0 || warnRatio > 1 {
		return nil, fmt.Errorf("warn ratio must be in (0, 1], got %v", warnRatio)
	}
	return &SequenceMonitor{
		seq:       seq,
		events:    events,
		schedule:  schedule,
		warnRatio: warnRatio,
		timeout:   30 * time.Second,
	}, nil
}

// Start runs one check immediately and then one per schedule tick.
func (m *SequenceMonitor) Start() {
	log.Info().Msg("Starting invoice sequence monitor...")
	m.cron = cron.New()
	m.cron.Schedule(m.schedule, cron.FuncJob(m.run))
	m.cron.Start()
	go m.run()
}

// Stop halts the schedule and waits for a running check to finish or ctx
// to end.
func (m *SequenceMonitor) Stop(ctx context.Context) {
	if m.cron == nil {
		return
	}
	log.Info().Msg("Stopping invoice sequence monitor.")
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (m *SequenceMonitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if _, err := m.Check(ctx); err != nil {
		log.Error().Err(err).Msg("Invoice sequence check failed")
	}
}

// Check reads the current sequence position and logs at warn level past
// the warn ratio and at error level once exhausted.
func (m *SequenceMonitor) Check(ctx context.Context) (SequenceStatus, error) {
	current, err := m.seq.Current(ctx)
	if err != nil {
		return SequenceStatus{}, err
	}
	capacity := m.seq.Capacity()
	status := SequenceStatus{
		Current:   current,
		Capacity:  capacity,
		Remaining: max(capacity-current, 0),
		Ratio:     float64(current) / float64(capacity),
		Exhausted: current >= capacity,
	}

	switch {
	case status.Exhausted:
		log.Error().Int64("capacity", capacity).Msg("Invoice id sequence exhausted; new invoices cannot be numbered")
	case status.Ratio >= m.warnRatio:
		log.Warn().Int64("current", current).Int64("remaining", status.Remaining).Float64("ratio", status.Ratio).Msg("Invoice id sequence running low")
	default:
		log.Debug().Int64("current", current).Int64("remaining", status.Remaining).Msg("Invoice id sequence ok")
		return status, nil
	}

	if m.events != nil {
		m.events.Publish(EventSequenceLow, status)
	}
	return status, nil
}
