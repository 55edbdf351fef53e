package typeahead

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/timerz"
)

// Session is a named, reusable unit of incremental match accumulation.
//
// A session is Idle (empty buffer, nothing pending) or Accumulating
// (non-empty buffer, exactly one settle pending on the registry's
// debouncer under the session ID). There is no terminal state.
//
// Every transition goes through one state-transition function. Keystrokes
// from callers and settle notifications from the timer are posted to the
// session's mailbox and applied in arrival order, one at a time.
//
// Thread Safety:
// All methods are safe for concurrent use. The Strategy and OnMatch run
// while the session is applying a message; they may read the session
// (Buffer, State, Items) but must not call HandleKeystroke, Reset or
// Registry.Handle for the same session synchronously. A panic from either
// surfaces on the goroutine whose message was being applied: the caller of
// HandleKeystroke for a keystroke, the settle timer (which logs it) for a
// settle.
type Session[T any] struct {
	id   string
	name string
	reg  *Registry[T]

	mu           sync.Mutex
	buffer       string
	state        State
	items        []T
	strategy     Strategy[T]
	debounceTime time.Duration
	listeners    map[listenerKey]*listenerEntry[T]
	settleToken  uint64 // identifies the latest settle schedule

	stepMu sync.Mutex // serializes step
	inbox  *mailbox
}

func newSession[T any](reg *Registry[T], name string, strategy Strategy[T], debounceTime time.Duration) *Session[T] {
	if strategy == nil {
		strategy = never[T]{}
	}
	if debounceTime <= 0 {
		debounceTime = reg.defaultDebounce
	}
	return &Session[T]{
		id:           uuid.NewString(),
		name:         name,
		reg:          reg,
		strategy:     strategy,
		debounceTime: debounceTime,
		listeners:    make(map[listenerKey]*listenerEntry[T]),
		inbox:        newMailbox(),
	}
}

// Name returns the session name.
func (s *Session[T]) Name() string { return s.name }

// ID returns the stable identity the settle timer is keyed by.
func (s *Session[T]) ID() string { return s.id }

// Buffer returns the characters typed since the last reset.
func (s *Session[T]) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// State returns the current phase.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Items returns a copy of the current candidate snapshot.
func (s *Session[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// DebounceTime returns the configured keystroke silence before reset.
func (s *Session[T]) DebounceTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debounceTime
}

// ListenerCount returns the number of registered listeners.
func (s *Session[T]) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Configure replaces items, strategy, debounce time and listeners. Nothing
// is merged with the previous configuration; a nil cfg installs defaults.
// The buffer and any pending settle are untouched.
func (s *Session[T]) Configure(cfg *Config[T]) {
	var c Config[T]
	if cfg != nil {
		c = *cfg
	}

	strategy := c.Strategy
	if strategy == nil {
		strategy = never[T]{}
	}
	debounceTime := c.DebounceTime
	if debounceTime <= 0 {
		debounceTime = s.reg.defaultDebounce
	}

	listeners := make(map[listenerKey]*listenerEntry[T], len(c.Listeners))
	for _, spec := range c.Listeners {
		if spec.Callback == nil {
			s.reg.logger.Warn("typeahead", "configure", "listener without callback skipped",
				"session", s.name, "listener", spec.Name)
			continue
		}
		entry := newListenerEntry(spec)
		listeners[entry.key] = entry
	}

	s.mu.Lock()
	s.items = slices.Clone(c.Items)
	s.strategy = strategy
	s.debounceTime = debounceTime
	s.listeners = listeners
	s.mu.Unlock()
}

// AddListener registers a listener. A listener with the same name and
// options is replaced.
func (s *Session[T]) AddListener(spec ListenerSpec[T]) (Listener, error) {
	if spec.Callback == nil {
		return Listener{}, ErrNilListener
	}
	entry := newListenerEntry(spec)

	s.mu.Lock()
	s.listeners[entry.key] = entry
	s.mu.Unlock()

	return Listener{
		remove: func() error {
			return s.removeListener(entry.key, entry.id)
		},
	}, nil
}

func (s *Session[T]) removeListener(key listenerKey, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.listeners[key]
	if !ok || entry.id != id {
		return ErrListenerNotFound
	}
	delete(s.listeners, key)
	return nil
}

// HandleKeystroke feeds one key press into the session using the
// configured debounce time.
//
// Anything other than a single character is ignored. Otherwise the key is
// appended to the buffer, the items are scanned for the first match,
// OnMatch runs synchronously when there is one, and the settle is
// rescheduled. A panic from the strategy propagates to the caller.
func (s *Session[T]) HandleKeystroke(key string) {
	s.HandleKeystrokeAfter(key, 0)
}

// HandleKeystrokeAfter is HandleKeystroke with a settle delay overriding
// the debounce time for this keystroke. A zero delay means no override.
func (s *Session[T]) HandleKeystrokeAfter(key string, delay time.Duration) {
	if !isCharacter(key) {
		atomic.AddInt64(&s.reg.metrics.KeystrokesIgnored, 1)
		s.reg.logger.Verbose("typeahead", "keystroke", "ignored non-character key",
			"session", s.name, "key", key)
		return
	}
	s.post(keystrokeMsg{key: key, delay: delay})
}

// Reset clears the buffer without a settle scan and cancels the pending
// settle.
func (s *Session[T]) Reset() {
	s.post(clearMsg{})
}

// post queues msg, applies everything queued and returns once msg has been
// applied. A panic raised while applying msg is re-raised here, on the
// goroutine that posted it, whichever goroutine did the applying.
func (s *Session[T]) post(msg message) {
	env := newEnvelope(msg)
	s.inbox.put(env)
	s.drain()
	if r := <-env.done; r != nil {
		panic(r)
	}
}

// drain applies queued messages until the mailbox is empty. Whoever holds
// stepMu applies messages posted by others as well, so a message is always
// applied before the call that posted it returns.
func (s *Session[T]) drain() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	for {
		env, ok := s.inbox.take()
		if !ok {
			return
		}
		s.apply(env)
	}
}

// apply runs step for one envelope and hands the outcome to its poster.
func (s *Session[T]) apply(env envelope) {
	defer func() {
		env.done <- recover()
	}()
	s.step(env.msg)
}

// step is the state-transition function.
func (s *Session[T]) step(msg message) {
	switch m := msg.(type) {
	case keystrokeMsg:
		s.applyKeystroke(m)
	case settleMsg:
		s.applySettle(m)
	case clearMsg:
		s.applyClear()
	}
}

func (s *Session[T]) applyKeystroke(m keystrokeMsg) {
	s.mu.Lock()
	s.buffer += m.key
	s.state = Accumulating
	buffer, items, strategy := s.buffer, s.items, s.strategy
	delay := m.delay
	if delay <= 0 {
		delay = s.debounceTime
	}
	s.mu.Unlock()

	atomic.AddInt64(&s.reg.metrics.KeystrokesHandled, 1)
	s.emit(Event[T]{Kind: EventKeystroke, Session: s.name, Key: m.key, Buffer: buffer})

	if item, ok := scan(strategy, buffer, items); ok {
		s.matched(strategy, item, m.key, buffer)
	}

	s.scheduleSettle(delay)
}

// applySettle runs the settle scan and clears the buffer. Settles from a
// superseded schedule are ignored.
func (s *Session[T]) applySettle(m settleMsg) {
	s.mu.Lock()
	if m.token != s.settleToken || s.state != Accumulating {
		s.mu.Unlock()
		return
	}
	buffer, items, strategy := s.buffer, s.items, s.strategy
	s.mu.Unlock()

	// The same buffer was already scanned by the last keystroke. Scanning
	// again lets a predicate that has since changed its mind still report,
	// at the price of a second OnMatch for an unchanged match.
	if item, ok := scan(strategy, buffer, items); ok {
		s.matched(strategy, item, "", buffer)
	}

	s.mu.Lock()
	s.buffer = ""
	s.state = Idle
	s.mu.Unlock()

	atomic.AddInt64(&s.reg.metrics.Resets, 1)
	s.reg.logger.Debug("typeahead", "settle", "buffer cleared", "session", s.name, "buffer", buffer)
	s.emit(Event[T]{Kind: EventReset, Session: s.name, Buffer: buffer})
}

func (s *Session[T]) applyClear() {
	s.reg.debouncer.Cancel(s.id)

	s.mu.Lock()
	s.settleToken++
	buffer, was := s.buffer, s.state
	s.buffer = ""
	s.state = Idle
	s.mu.Unlock()

	if was != Accumulating {
		return
	}
	atomic.AddInt64(&s.reg.metrics.Resets, 1)
	s.emit(Event[T]{Kind: EventReset, Session: s.name, Buffer: buffer})
}

func (s *Session[T]) matched(strategy Strategy[T], item T, key, buffer string) {
	strategy.OnMatch(item)
	atomic.AddInt64(&s.reg.metrics.Matches, 1)
	s.emit(Event[T]{Kind: EventMatch, Session: s.name, Key: key, Buffer: buffer, Item: item})
}

// scheduleSettle (re)arms the settle timer. The debouncer replaces the
// previous timer, so the buffer only clears after a contiguous quiet
// period.
func (s *Session[T]) scheduleSettle(delay time.Duration) {
	s.mu.Lock()
	s.settleToken++
	token := s.settleToken
	s.mu.Unlock()

	err := s.reg.debouncer.Debounce(s.id, delay, timerz.Guard(func() error {
		s.post(settleMsg{token: token})
		return nil
	}))
	if err != nil {
		s.reg.logger.Warn("typeahead", "keystroke", "settle not scheduled",
			"session", s.name, "error", err)
	}
}

// emit hands ev to every listener accepting its kind. Once listeners are
// removed as they are selected.
func (s *Session[T]) emit(ev Event[T]) {
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	targets := make([]*listenerEntry[T], 0, len(s.listeners))
	for key, entry := range s.listeners {
		if !key.opts.accepts(ev.Kind) {
			continue
		}
		targets = append(targets, entry)
		if key.opts.Once {
			delete(s.listeners, key)
		}
	}
	s.mu.Unlock()

	for _, entry := range targets {
		err := s.reg.dispatch.submit(delivery[T]{ctx: s.reg.ctx, event: ev, listener: entry})
		if err != nil {
			s.reg.logger.Warn("typeahead", "dispatch", "event dropped",
				"session", s.name, "listener", entry.key.name, "event", ev.Kind.String(), "error", err)
		}
	}
}

// scan returns the first item the strategy accepts, in list order.
func scan[T any](strategy Strategy[T], buffer string, items []T) (T, bool) {
	for i, item := range items {
		if strategy.Match(item, buffer, i, items) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func newListenerEntry[T any](spec ListenerSpec[T]) *listenerEntry[T] {
	return &listenerEntry[T]{
		id:       uuid.NewString(),
		key:      listenerKey{name: spec.Name, opts: spec.Options},
		callback: spec.Callback,
	}
}
