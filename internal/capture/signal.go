package capture

import "sync"

// StopSignal is a set-once cooperative cancellation flag shared between the
// capture goroutine and the response loop. Set is idempotent and safe from
// any goroutine; once set it never reverts.
type StopSignal struct {
	once sync.Once
	done chan struct{}
}

func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

func (s *StopSignal) Set() {
	s.once.Do(func() { close(s.done) })
}

func (s *StopSignal) IsSet() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the signal is set.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}
