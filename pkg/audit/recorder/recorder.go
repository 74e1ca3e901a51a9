package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shengxinking/tempesta/pkg/audit"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording.
	Enabled bool

	// Buffer is the size of the async write channel.
	// Default: 256
	Buffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		Buffer:       256,
		WriteTimeout: 5 * time.Second,
	}
}

// Cycle describes one finished lifecycle cycle to be recorded.
type Cycle struct {
	// Trigger identifies what initiated the cycle (audit.TriggerControl, ...).
	Trigger string

	// Source describes where the configuration came from.
	Source string

	// Config is the raw configuration text. Empty for shutdown cycles;
	// only its SHA-256 ends up in the record.
	Config string

	// Modules is the number of registered modules the cycle touched.
	Modules int

	// Duration is how long the cycle took.
	Duration time.Duration

	// Err is the cycle error, nil on success.
	Err error
}

// Recorder writes audit records for configuration lifecycle cycles.
// Records are written asynchronously so storage latency never blocks
// a configuration transition.
type Recorder struct {
	storage audit.Storage
	config  *Config
	records chan *audit.Record
	wg      sync.WaitGroup
	done    chan struct{}
	logger  *slog.Logger
}

// NewRecorder creates a new audit recorder with the provided storage
// backend and configuration.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		records: make(chan *audit.Record, config.Buffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("audit recorder initialized",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// RecordApply enqueues an audit record for a finished apply cycle.
// It returns immediately and does not block on storage writes.
func (r *Recorder) RecordApply(cycle *Cycle) error {
	return r.record(audit.EventApply, cycle)
}

// RecordShutdown enqueues an audit record for a finished shutdown cycle.
// It returns immediately and does not block on storage writes.
func (r *Recorder) RecordShutdown(cycle *Cycle) error {
	return r.record(audit.EventShutdown, cycle)
}

func (r *Recorder) record(event string, cycle *Cycle) error {
	if !r.config.Enabled {
		return nil
	}

	record := &audit.Record{
		ID:         uuid.New().String(),
		Time:       time.Now(),
		Event:      event,
		Trigger:    cycle.Trigger,
		Outcome:    audit.OutcomeOK,
		Duration:   cycle.Duration,
		ConfigHash: HashString(cycle.Config),
		Source:     cycle.Source,
		Modules:    cycle.Modules,
	}
	if cycle.Err != nil {
		record.Outcome = audit.OutcomeError
		record.Error = cycle.Err.Error()
	}

	// Once shutdown has begun the worker is draining or gone; a send
	// on the buffered channel could still succeed and the record would
	// be lost silently. Reject it instead.
	select {
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"event", record.Event,
		)
		return audit.NewRecorderError(record.ID, context.Canceled)
	default:
	}

	select {
	case r.records <- record:
		r.logger.Debug("audit record enqueued",
			"record_id", record.ID,
			"event", record.Event,
			"outcome", record.Outcome,
		)
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("audit channel full, dropping record",
			"record_id", record.ID,
			"event", record.Event,
			"channel_capacity", r.config.Buffer,
		)
		return audit.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"event", record.Event,
		)
		return audit.NewRecorderError(record.ID, context.Canceled)
	}

	return nil
}

// Close gracefully shuts down the recorder by draining the async
// channel and waiting for pending writes to complete.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	r.logger.Debug("audit recorder shut down")
	return nil
}

// worker is the background goroutine that drains the record channel
// and writes to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.records:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit.
			if pending := len(r.records); pending > 0 {
				r.logger.Info("draining audit channel before shutdown",
					"pending_count", pending,
				)
			}
			for {
				select {
				case record := <-r.records:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"event", record.Event,
			"error", err,
		)
		return
	}

	elapsed := time.Since(start)

	r.logger.Debug("audit record written",
		"record_id", record.ID,
		"event", record.Event,
		"outcome", record.Outcome,
		"duration_ms", elapsed.Milliseconds(),
	)

	if elapsed > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", elapsed.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
