package rc

// Weak is a non-owning handle to a reference-counted allocation.
//
// A weak handle never keeps the value alive. Before use it must be
// validated by Upgrade, which either returns a fresh strong handle or
// reports that the value already died. This is the standard escape hatch
// from strong-reference cycles: back-edges (child → parent links, cache
// entries, observer lists) hold Weak handles so the forward edges alone
// decide the value's lifetime.
type Weak[T any] struct {
	shared   *allocation[T]
	released bool
}

// Upgrade attempts to promote the weak handle into a strong one.
//
// If the value is still alive, Upgrade increments the strong count and
// returns (handle, true); the returned handle must be dropped like any
// other. If the last strong handle was already dropped, Upgrade returns
// (nil, false). A dead target is a normal, expected state — it is the
// reason Upgrade exists — so it is reported, not panicked on.
func (w *Weak[T]) Upgrade() (*Rc[T], bool) {
	w.mustBeLive("Upgrade")
	if w.shared.dead {
		return nil, false
	}
	w.shared.strong++
	return &Rc[T]{shared: w.shared}, true
}

// Alive reports whether the referenced value still has strong owners.
// Between Alive and a subsequent Upgrade nothing can change (the package
// is single-goroutine), so Alive is safe to use as a pre-check in
// teaching output.
func (w *Weak[T]) Alive() bool {
	w.mustBeLive("Alive")
	return !w.shared.dead
}

// StrongCount returns the number of live strong handles to the
// referenced allocation. Zero once the value has died.
func (w *Weak[T]) StrongCount() int {
	w.mustBeLive("StrongCount")
	return w.shared.strong
}

// WeakCount returns the number of live weak handles to the referenced
// allocation, including this one.
func (w *Weak[T]) WeakCount() int {
	w.mustBeLive("WeakCount")
	return w.shared.weak
}

// Drop releases this weak handle and decrements the weak count.
// Dropping the same weak handle twice panics.
func (w *Weak[T]) Drop() {
	if w.released {
		panic("rc: weak handle already released")
	}
	w.released = true
	w.shared.weak--
}

// mustBeLive panics when the weak handle has already been released.
func (w *Weak[T]) mustBeLive(op string) {
	if w.released {
		panic("rc: " + op + " on released weak handle")
	}
}
