package typeahead

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/timerz"
)

// DefaultDebounce is the keystroke silence before a buffer resets when
// neither the registry nor the call site sets one.
const DefaultDebounce = 500 * time.Millisecond

// Option configures a Registry during creation.
type Option func(*config)

// config holds internal configuration for registry creation.
type config struct {
	clock           clockz.Clock // Time abstraction for deterministic testing
	logger          timerz.Logger
	debouncer       *timerz.Debouncer
	defaultDebounce time.Duration
	workers         int
	queueSize       int
	listenerTimeout time.Duration
}

// WithClock sets the clock used by the settle timers and listener
// timeouts. Default is clockz.RealClock. Ignored for the settle timers
// when WithDebouncer supplies a debouncer.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the diagnostics sink. Default is timerz.NopLogger.
func WithLogger(logger timerz.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDebouncer schedules settle timers on an existing debouncer instead
// of one owned by the registry. The registry does not close it.
func WithDebouncer(d *timerz.Debouncer) Option {
	return func(c *config) {
		c.debouncer = d
	}
}

// WithDefaultDebounce sets the debounce time for sessions and calls that
// do not set one. Default is DefaultDebounce.
func WithDefaultDebounce(d time.Duration) Option {
	return func(c *config) {
		c.defaultDebounce = d
	}
}

// WithWorkers sets the number of goroutines delivering listener events.
// Default is 2.
func WithWorkers(count int) Option {
	return func(c *config) {
		c.workers = count
	}
}

// WithQueueSize sets the listener dispatch queue size.
// Default is 0, which auto-calculates as workers * 32.
func WithQueueSize(size int) Option {
	return func(c *config) {
		c.queueSize = size
	}
}

// WithListenerTimeout bounds the context every listener call receives.
// Default is no timeout.
func WithListenerTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.listenerTimeout = timeout
	}
}

// Registry maps session names to sessions for the lifetime of the process.
//
// Sessions are created on first reference and live until Remove, Clear or
// Close. There is no automatic eviction.
//
// Thread Safety:
// All methods are safe for concurrent use.
type Registry[T any] struct {
	logger          timerz.Logger
	debouncer       *timerz.Debouncer
	ownsDebouncer   bool
	defaultDebounce time.Duration
	dispatch        *dispatcher[T]

	// ctx is handed to listener calls and cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session[T]
	closed   bool

	// Metrics field - zero initialization provides safe defaults
	metrics Metrics
}

// NewRegistry creates an empty registry.
//
// Example:
//
//	reg := typeahead.NewRegistry[Contact](
//	    typeahead.WithDefaultDebounce(300*time.Millisecond),
//	    typeahead.WithLogger(timerz.NewSlogLogger(logger)),
//	)
//	defer reg.Close()
func NewRegistry[T any](opts ...Option) *Registry[T] {
	cfg := config{
		clock:           clockz.RealClock,
		logger:          timerz.NopLogger,
		defaultDebounce: DefaultDebounce,
		workers:         2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	if cfg.logger == nil {
		cfg.logger = timerz.NopLogger
	}
	if cfg.defaultDebounce <= 0 {
		cfg.defaultDebounce = DefaultDebounce
	}
	if cfg.workers <= 0 {
		cfg.workers = 1
	}
	if cfg.queueSize <= 0 {
		cfg.queueSize = cfg.workers * 32
	}

	r := &Registry[T]{
		logger:          cfg.logger,
		debouncer:       cfg.debouncer,
		defaultDebounce: cfg.defaultDebounce,
		sessions:        make(map[string]*Session[T]),
	}
	if r.debouncer == nil {
		r.debouncer = timerz.NewDebouncer(timerz.WithClock(cfg.clock), timerz.WithLogger(cfg.logger))
		r.ownsDebouncer = true
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.dispatch = newDispatcher[T](cfg, &r.metrics)
	return r
}

// GetOrCreate returns the session registered under name, creating it with
// strategy and debounceTime when absent. An existing session is returned
// unchanged.
func (r *Registry[T]) GetOrCreate(name string, strategy Strategy[T], debounceTime time.Duration) (*Session[T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if s, ok := r.sessions[name]; ok {
		return s, nil
	}

	s := newSession(r, name, strategy, debounceTime)
	r.sessions[name] = s
	r.logger.Debug("typeahead", "create", "session created", "session", name, "id", s.id)
	return s, nil
}

// Handle is the entry point for an input layer. It fetches or creates the
// session for name, replaces its configuration with cfg, feeds key in and
// returns the session.
func (r *Registry[T]) Handle(name, key string, cfg *Config[T]) (*Session[T], error) {
	var (
		strategy     Strategy[T]
		debounceTime time.Duration
	)
	if cfg != nil {
		strategy, debounceTime = cfg.Strategy, cfg.DebounceTime
	}

	s, err := r.GetOrCreate(name, strategy, debounceTime)
	if err != nil {
		return nil, err
	}
	s.Configure(cfg)
	s.HandleKeystroke(key)
	return s, nil
}

// Get returns the session registered under name.
func (r *Registry[T]) Get(name string) (*Session[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[name]
	return s, ok
}

// Remove unregisters the session under name and resets it, cancelling its
// pending settle. Callers still holding the session can keep using it.
func (r *Registry[T]) Remove(name string) bool {
	r.mu.Lock()
	s, ok := r.sessions[name]
	if ok {
		delete(r.sessions, name)
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("typeahead", "remove", "no session under name", "session", name)
		return false
	}
	s.Reset()
	return true
}

// Clear unregisters and resets every session and returns how many were
// removed.
func (r *Registry[T]) Clear() int {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session[T])
	r.mu.Unlock()

	for _, s := range sessions {
		s.Reset()
	}
	return len(sessions)
}

// Names returns the registered session names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered sessions.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Metrics returns current registry metrics.
func (r *Registry[T]) Metrics() Metrics {
	return r.metrics.snapshot(int64(r.Len()), r.dispatch.capacity())
}

// Close cancels every pending settle, cancels the context listeners
// receive, delivers the queued listener events and shuts the registry down.
// Listeners still running or queued see a cancelled context, so one that
// waits on ctx.Done() cannot hold Close up. Callers still holding a session can feed it
// keystrokes, but listener events are dropped and, unless WithDebouncer
// supplied the debouncer, no settle is scheduled.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrAlreadyClosed
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*Session[T])
	r.mu.Unlock()

	if r.ownsDebouncer {
		_ = r.debouncer.Close()
	} else {
		for _, s := range sessions {
			r.debouncer.Cancel(s.id)
		}
	}

	r.cancel()
	// Shutdown dispatch - this waits for queued listener calls to complete
	r.dispatch.close()

	r.logger.Debug("typeahead", "close", "registry closed", "sessions", len(sessions))
	return nil
}
