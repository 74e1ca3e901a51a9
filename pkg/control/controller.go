package control

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shengxinking/tempesta/pkg/audit"
	"github.com/shengxinking/tempesta/pkg/lifecycle"
	"github.com/shengxinking/tempesta/pkg/source"
	"github.com/shengxinking/tempesta/pkg/telemetry/metrics"
)

// Control words accepted in the state file.
const (
	StateStart = "start"
	StateStop  = "stop"
)

// DefaultDebounce is the quiet period after the last state file write
// before the file is read.
const DefaultDebounce = 200 * time.Millisecond

// Cycle describes one finished configuration transition. Observers
// receive it after the registry settled, successful or not.
type Cycle struct {
	// Event is audit.EventApply or audit.EventShutdown.
	Event string

	// Trigger names what initiated the transition, one of the
	// audit.Trigger* values.
	Trigger string

	// Source describes where the document came from.
	Source string

	// Text is the document that was applied. Empty for shutdowns and
	// for applies that failed before the source loaded.
	Text string

	// Modules counts the registered modules the cycle dispatched over.
	Modules int

	// Duration covers the full cycle including the source load.
	Duration time.Duration

	// Err is the apply failure, nil on success. Shutdowns cannot fail.
	Err error
}

// CycleFunc observes finished transitions. Calls arrive serially from
// the transition under way; implementations should hand off quickly.
type CycleFunc func(Cycle)

// Options configures a Controller. StateFile, Source and Registry are
// mandatory.
type Options struct {
	// StateFile is the watched control file, e.g. /run/tempesta/state.
	StateFile string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// Source yields the configuration document for every start.
	Source source.Source

	// Registry holds the modules driven by the transitions.
	Registry *lifecycle.Registry

	// Metrics counts control events when set.
	Metrics *metrics.Collector

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnCycle, when set, receives every finished transition.
	OnCycle CycleFunc
}

// Controller turns writes to the state file into configuration
// transitions and offers the same transitions programmatically for
// boot-time autostart and signal-driven shutdown. Transitions are
// serialized: a word observed while an apply is under way waits for
// it to finish.
type Controller struct {
	stateFile string
	source    source.Source
	registry  *lifecycle.Registry
	metrics   *metrics.Collector
	logger    *slog.Logger
	onCycle   CycleFunc
	debounce  *Debouncer

	// mu serializes transitions.
	mu sync.Mutex

	runMu   sync.Mutex
	running bool
}

// New creates a Controller. It does not touch the state file.
func New(opts Options) (*Controller, error) {
	if opts.StateFile == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("configuration source is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("module registry is required")
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		stateFile: filepath.Clean(opts.StateFile),
		source:    opts.Source,
		registry:  opts.Registry,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "control"),
		onCycle:   opts.OnCycle,
		debounce:  NewDebouncer(debounce),
	}, nil
}

// Run watches the state file until ctx is cancelled. The file does
// not have to exist yet, but its directory does: the watch is placed
// on the directory so that writers that replace the file instead of
// rewriting it in place are still seen. Run is good for one call per
// Controller.
func (c *Controller) Run(ctx context.Context) error {
	c.runMu.Lock()
	if c.running {
		c.runMu.Unlock()
		return fmt.Errorf("controller is already running")
	}
	c.running = true
	c.runMu.Unlock()

	defer func() {
		c.runMu.Lock()
		c.running = false
		c.runMu.Unlock()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create state watcher: %w", err)
	}
	defer watcher.Close()
	defer c.debounce.Stop()

	dir := filepath.Dir(c.stateFile)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	c.logger.Info("watching state file",
		"path", c.stateFile,
		"debounce", c.debounce.Interval())

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("state watcher stopping")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("state watcher event channel closed")
			}
			if !c.shouldProcess(event) {
				continue
			}
			c.logger.Debug("state file event", "op", event.Op.String())
			c.debounce.Trigger(func() { c.processStateFile(ctx) })

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("state watcher error channel closed")
			}
			c.logger.Error("state watcher error", "error", err)
		}
	}
}

// shouldProcess filters directory events down to content-changing
// operations on the state file itself.
func (c *Controller) shouldProcess(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != c.stateFile {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// processStateFile reads the state file and executes the word in it.
// Errors are logged, not returned: the watch loop must survive bad
// writes.
func (c *Controller) processStateFile(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(c.stateFile)
	if err != nil {
		c.logger.Error("failed to read state file", "path", c.stateFile, "error", err)
		return
	}

	word := normalize(string(data))
	if word == "" {
		c.logger.Debug("state file is empty, ignoring")
		return
	}

	if err := c.Transition(ctx, word); err != nil {
		c.logger.Error("state transition failed", "state", word, "error", err)
	}
}

// Transition executes one control word against the current state.
// The word is normalized first: surrounding whitespace is trimmed and
// case is ignored. Writing the current state again is a no-op;
// anything besides "start" and "stop" is an error.
func (c *Controller) Transition(ctx context.Context, word string) error {
	switch normalize(word) {
	case StateStart:
		c.metrics.IncControlEvent(StateStart)
		return c.Start(ctx, audit.TriggerControl)
	case StateStop:
		c.metrics.IncControlEvent(StateStop)
		return c.Stop(audit.TriggerControl)
	default:
		return fmt.Errorf("unknown control state %q (expected %q or %q)",
			strings.TrimSpace(word), StateStart, StateStop)
	}
}

// Start loads the document from the source and applies it. It is a
// no-op when a configuration is already running. A failed apply
// leaves the registry stopped; the next start retries from a clean
// slate.
func (c *Controller) Start(ctx context.Context, trigger string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registry.Started() {
		c.logger.Debug("already started, ignoring", "trigger", trigger)
		return nil
	}

	begin := time.Now()

	text, err := c.source.Load(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load configuration: %w", err)
		c.finishCycle(Cycle{
			Event:    audit.EventApply,
			Trigger:  trigger,
			Source:   c.source.Describe(),
			Modules:  len(c.registry.Modules()),
			Duration: time.Since(begin),
			Err:      err,
		})
		return err
	}

	err = c.registry.Apply(text)
	c.finishCycle(Cycle{
		Event:    audit.EventApply,
		Trigger:  trigger,
		Source:   c.source.Describe(),
		Text:     text,
		Modules:  len(c.registry.Modules()),
		Duration: time.Since(begin),
		Err:      err,
	})
	return err
}

// Stop shuts the running configuration down. It is a no-op when
// nothing is running.
func (c *Controller) Stop(trigger string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.Started() {
		c.logger.Debug("already stopped, ignoring", "trigger", trigger)
		return nil
	}

	begin := time.Now()
	c.registry.Shutdown()
	c.finishCycle(Cycle{
		Event:    audit.EventShutdown,
		Trigger:  trigger,
		Source:   c.source.Describe(),
		Modules:  len(c.registry.Modules()),
		Duration: time.Since(begin),
	})
	return nil
}

// finishCycle logs the settled transition and hands it to the
// observer. Called with mu held, so observers see cycles in order.
func (c *Controller) finishCycle(cycle Cycle) {
	if cycle.Err != nil {
		c.logger.Error("transition failed",
			"event", cycle.Event,
			"trigger", cycle.Trigger,
			"source", cycle.Source,
			"duration", cycle.Duration,
			"error", cycle.Err)
	} else {
		c.logger.Info("transition complete",
			"event", cycle.Event,
			"trigger", cycle.Trigger,
			"source", cycle.Source,
			"modules", cycle.Modules,
			"duration", cycle.Duration)
	}

	if c.onCycle != nil {
		c.onCycle(cycle)
	}
}

// WriteState validates word and writes it to the state file at path.
// The running daemon picks the write up through its watcher; this is
// what the state subcommand uses.
func WriteState(path, word string) error {
	word = normalize(word)
	if word != StateStart && word != StateStop {
		return fmt.Errorf("unknown control state %q (expected %q or %q)",
			word, StateStart, StateStop)
	}
	if err := os.WriteFile(path, []byte(word+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
