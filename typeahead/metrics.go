package typeahead

import "sync/atomic"

// Metrics provides observability data for a typeahead registry.
// All counter fields use atomic operations for thread safety.
type Metrics struct {
	// Session Counters
	Sessions          int64 // Sessions currently registered (snapshot)
	KeystrokesHandled int64 // Keystrokes appended to a buffer
	KeystrokesIgnored int64 // Keystrokes dropped as not a single character
	Matches           int64 // OnMatch invocations, keystroke and settle scans
	Resets            int64 // Buffers cleared by a settle or Reset

	// Listener Dispatch
	QueueDepth          int64 // Current events waiting for a worker
	QueueCapacity       int64 // Dispatch queue capacity (static)
	ListenersDispatched int64 // Listener calls that returned nil
	ListenersFailed     int64 // Listener calls that failed or panicked
	ListenersRejected   int64 // Deliveries dropped on a full queue
	ListenersExpired    int64 // Deliveries abandoned on context cancellation
}

func (m *Metrics) snapshot(sessions, capacity int64) Metrics {
	return Metrics{
		Sessions:            sessions,
		KeystrokesHandled:   atomic.LoadInt64(&m.KeystrokesHandled),
		KeystrokesIgnored:   atomic.LoadInt64(&m.KeystrokesIgnored),
		Matches:             atomic.LoadInt64(&m.Matches),
		Resets:              atomic.LoadInt64(&m.Resets),
		QueueDepth:          atomic.LoadInt64(&m.QueueDepth),
		QueueCapacity:       capacity,
		ListenersDispatched: atomic.LoadInt64(&m.ListenersDispatched),
		ListenersFailed:     atomic.LoadInt64(&m.ListenersFailed),
		ListenersRejected:   atomic.LoadInt64(&m.ListenersRejected),
		ListenersExpired:    atomic.LoadInt64(&m.ListenersExpired),
	}
}
