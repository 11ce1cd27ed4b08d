package detent

import "sync"

// Rejection records a candidate that a Confirmer pipeline refused.
type Rejection struct {
	ParameterID string
	Candidate   float64
	Err         error
}

// rejectionRing is a thread-safe ring buffer of recent rejections.
type rejectionRing struct {
	mu    sync.RWMutex
	items []Rejection
	head  int
	count int
}

// newRejectionRing creates a ring with the given capacity.
// If size is 0, the ring is disabled and every method is a no-op.
func newRejectionRing(size int) *rejectionRing {
	if size <= 0 {
		return nil
	}
	return &rejectionRing{items: make([]Rejection, size)}
}

func (r *rejectionRing) push(rej Rejection) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.head] = rej
	r.head = (r.head + 1) % len(r.items)
	if r.count < len(r.items) {
		r.count++
	}
}

func (r *rejectionRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.items)
	r.head = 0
	r.count = 0
}

// all returns the retained rejections, oldest first.
func (r *rejectionRing) all() []Rejection {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	size := len(r.items)
	out := make([]Rejection, r.count)
	start := (r.head - r.count + size) % size
	for i := range out {
		out[i] = r.items[(start+i)%size]
	}
	return out
}
