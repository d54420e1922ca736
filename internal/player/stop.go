package player

import "sync"

// Stopper is the process-wide stop-playback broadcast. Any component may
// raise it to force teardown of whatever session is live, foregrounded or
// not. Subscribers get a buffered channel; delivery is non-blocking so a
// slow or abandoned subscriber never stalls the signaller.
type Stopper struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// NewStopper creates a new stop broadcast.
func NewStopper() *Stopper {
	return &Stopper{subs: make(map[chan struct{}]struct{})}
}

// Subscribe registers a listener channel. The caller must Unsubscribe when
// done with it.
func (st *Stopper) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	st.mu.Lock()
	st.subs[ch] = struct{}{}
	st.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel.
func (st *Stopper) Unsubscribe(ch chan struct{}) {
	st.mu.Lock()
	delete(st.subs, ch)
	st.mu.Unlock()
}

// Signal notifies every subscriber. Safe to call repeatedly and from any
// goroutine.
func (st *Stopper) Signal() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for ch := range st.subs {
		select {
		case ch <- struct{}{}:
		default: // already pending
		}
	}
}
