package typeahead

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// message is an input to a session's state-transition function.
type message interface {
	isMessage()
}

// keystrokeMsg appends key and reschedules the settle timer. A zero delay
// uses the session's debounce time.
type keystrokeMsg struct {
	key   string
	delay time.Duration
}

// settleMsg is posted by the settle timer. token identifies which schedule
// posted it; only the latest schedule may settle the buffer.
type settleMsg struct {
	token uint64
}

// clearMsg drops the buffer without a settle scan.
type clearMsg struct{}

func (keystrokeMsg) isMessage() {}
func (settleMsg) isMessage()    {}
func (clearMsg) isMessage()     {}

// envelope carries a message and reports how applying it ended. done
// receives nil, or the value recovered from a panic, exactly once.
type envelope struct {
	msg  message
	done chan any
}

func newEnvelope(msg message) envelope {
	return envelope{msg: msg, done: make(chan any, 1)}
}

// mailbox is a FIFO of pending messages. Keystrokes from callers and
// settles from timer goroutines land here and are applied in arrival
// order.
type mailbox struct {
	mu sync.Mutex
	q  *queue.Queue
}

func newMailbox() *mailbox {
	return &mailbox{q: queue.New()}
}

func (m *mailbox) put(env envelope) {
	m.mu.Lock()
	m.q.Add(env)
	m.mu.Unlock()
}

// take pops the oldest envelope, reporting false when empty.
func (m *mailbox) take() (envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q.Length() == 0 {
		return envelope{}, false
	}
	return m.q.Remove().(envelope), true
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Length()
}
