package portal

import "sync"

// inflight is the double-submit guard: while one mutating action is
// outstanding, a second invocation of the same action fails fast instead
// of producing a duplicate request.
type inflight struct {
	mu   sync.Mutex
	busy map[Action]bool
}

func (f *inflight) begin(a Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy == nil {
		f.busy = make(map[Action]bool)
	}
	if f.busy[a] {
		return ErrRequestInFlight
	}
	f.busy[a] = true
	return nil
}

func (f *inflight) end(a Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.busy, a)
}
