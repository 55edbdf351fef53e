package timerz

import "fmt"

// Guard wraps action so that a panic is recovered and returned as an error
// wrapping ErrActionPanicked.
//
// Registries log the errors their actions return, so a guarded action
// scheduled on a Registry reports a panic like any other failure instead
// of taking the timer goroutine down:
//
//	timers.Timeout.Set("flush", time.Second, timerz.Guard(flush))
func Guard(action Action) Action {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrActionPanicked, r)
			}
		}()
		return action()
	}
}
