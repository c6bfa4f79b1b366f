package rc

// allocation is the shared header behind every handle of one value.
// All Rc and Weak handles created from the same New call point at the
// same allocation and observe the same counts.
type allocation[T any] struct {
	// value is the shared payload. Zeroed when the allocation dies so
	// that finalized resources are not reachable through stale headers.
	value T

	// strong is the number of live Rc handles. The value dies when this
	// reaches zero.
	strong int

	// weak is the number of live Weak handles. Weak handles never keep
	// the value alive; the count exists for introspection and teaching
	// output.
	weak int

	// finalizer runs exactly once, at the moment strong reaches zero.
	// May be nil.
	finalizer func(T)

	// dead records that strong reached zero and the finalizer ran.
	// Upgrade checks this flag; it can never be unset.
	dead bool
}

// Rc is an owning handle to a reference-counted allocation.
//
// Each handle participates in the count exactly once: Clone increments,
// Drop decrements. A handle is single-use on the way out — dropping it
// twice, or using it after dropping it, is a programming error and
// panics. This mirrors the abort-on-violation semantics of the borrow
// machinery in package cell.
type Rc[T any] struct {
	shared   *allocation[T]
	released bool
}

// New creates an allocation holding v and returns its first strong handle.
// The strong count starts at 1 and the weak count at 0.
func New[T any](v T) *Rc[T] {
	return NewWithFinalizer(v, nil)
}

// NewWithFinalizer is New with a finalizer that runs when the last strong
// handle is dropped. The finalizer receives the value and runs exactly
// once, synchronously, inside the Drop call that took the strong count
// to zero.
func NewWithFinalizer[T any](v T, fin func(T)) *Rc[T] {
	return &Rc[T]{
		shared: &allocation[T]{
			value:     v,
			strong:    1,
			finalizer: fin,
		},
	}
}

// Clone returns a new co-owning handle and increments the strong count.
// The new handle must itself be dropped eventually; cloning does not
// consume or invalidate the receiver.
func (r *Rc[T]) Clone() *Rc[T] {
	r.mustBeLive("Clone")
	r.shared.strong++
	return &Rc[T]{shared: r.shared}
}

// Value returns the shared value.
// Panics if the handle has been released.
func (r *Rc[T]) Value() T {
	r.mustBeLive("Value")
	return r.shared.value
}

// Drop releases this handle's ownership. If it was the last strong
// handle, the allocation's finalizer runs and the value is dead: weak
// handles can no longer be upgraded.
//
// Dropping the same handle twice panics. Dropping is per-handle, not
// per-allocation — every handle returned by New, Clone, or Upgrade must
// be dropped exactly once.
func (r *Rc[T]) Drop() {
	if r.released {
		panic("rc: handle already released")
	}
	r.released = true

	r.shared.strong--
	if r.shared.strong > 0 {
		return
	}

	// Last owner gone: finalize once and kill the allocation. The weak
	// count is untouched — weak handles outlive the value and observe
	// its death through Upgrade.
	r.shared.dead = true
	if fin := r.shared.finalizer; fin != nil {
		r.shared.finalizer = nil
		fin(r.shared.value)
	}
	var zero T
	r.shared.value = zero
}

// Downgrade returns a new weak handle to the same allocation and
// increments the weak count. The weak handle does not keep the value
// alive and must be upgraded before use.
func (r *Rc[T]) Downgrade() *Weak[T] {
	r.mustBeLive("Downgrade")
	r.shared.weak++
	return &Weak[T]{shared: r.shared}
}

// StrongCount returns the number of live strong handles to this
// allocation.
func (r *Rc[T]) StrongCount() int {
	r.mustBeLive("StrongCount")
	return r.shared.strong
}

// WeakCount returns the number of live weak handles to this allocation.
func (r *Rc[T]) WeakCount() int {
	r.mustBeLive("WeakCount")
	return r.shared.weak
}

// mustBeLive panics when the handle has already been released.
// op names the offending method for the panic message.
func (r *Rc[T]) mustBeLive(op string) {
	if r.released {
		panic("rc: " + op + " on released handle")
	}
}
