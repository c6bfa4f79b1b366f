package cell

import "fmt"

// borrow-state encoding for Cell.state:
//
//	 0  free — no guards live
//	>0  shared — that many read guards live
//	-1  exclusive — one write guard live
const exclusive = -1

// BorrowError describes a rejected borrow: the access that was requested
// and the state of the cell that made it impossible.
type BorrowError struct {
	// Requested is the access that was asked for: "shared" or "exclusive".
	Requested string

	// Held describes the live guards blocking the request, e.g.
	// "an exclusive borrow" or "2 shared borrows".
	Held string
}

// Error implements the error interface for BorrowError.
func (e *BorrowError) Error() string {
	return fmt.Sprintf("cell: cannot take %s borrow while %s is live", e.Requested, e.Held)
}

// Cell is a runtime borrow-checked container for a single value.
// The zero value is not usable; create cells with NewCell.
type Cell[T any] struct {
	value T
	state int
}

// NewCell returns a cell holding v with no live borrows.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// TryBorrow takes a shared (read) guard, or returns a *BorrowError if an
// exclusive guard is live.
func (c *Cell[T]) TryBorrow() (*Ref[T], error) {
	if c.state == exclusive {
		return nil, &BorrowError{Requested: "shared", Held: "an exclusive borrow"}
	}
	c.state++
	return &Ref[T]{cell: c}, nil
}

// Borrow takes a shared (read) guard. Panics with a *BorrowError if an
// exclusive guard is live. Use TryBorrow to observe the conflict as an
// error instead.
func (c *Cell[T]) Borrow() *Ref[T] {
	ref, err := c.TryBorrow()
	if err != nil {
		panic(err)
	}
	return ref
}

// TryBorrowMut takes the exclusive (write) guard, or returns a
// *BorrowError if any guard is live.
func (c *Cell[T]) TryBorrowMut() (*RefMut[T], error) {
	switch {
	case c.state == exclusive:
		return nil, &BorrowError{Requested: "exclusive", Held: "an exclusive borrow"}
	case c.state > 0:
		return nil, &BorrowError{Requested: "exclusive", Held: fmt.Sprintf("%d shared borrow(s)", c.state)}
	}
	c.state = exclusive
	return &RefMut[T]{cell: c}, nil
}

// BorrowMut takes the exclusive (write) guard. Panics with a *BorrowError
// if any guard is live — two simultaneous exclusive accesses to the same
// cell are the canonical violation this package exists to catch.
func (c *Cell[T]) BorrowMut() *RefMut[T] {
	ref, err := c.TryBorrowMut()
	if err != nil {
		panic(err)
	}
	return ref
}

// Borrows returns the number of live shared guards, or -1 while the
// exclusive guard is live. Zero means the cell is free.
func (c *Cell[T]) Borrows() int {
	return c.state
}

// Get returns a copy of the value via a short-lived shared borrow.
// Panics if the exclusive guard is live.
func (c *Cell[T]) Get() T {
	ref := c.Borrow()
	defer ref.Release()
	return ref.Value()
}

// Set stores v via a short-lived exclusive borrow.
// Panics if any guard is live.
func (c *Cell[T]) Set(v T) {
	ref := c.BorrowMut()
	defer ref.Release()
	ref.Set(v)
}

// Replace stores v and returns the previous value, via a short-lived
// exclusive borrow.
func (c *Cell[T]) Replace(v T) T {
	ref := c.BorrowMut()
	defer ref.Release()
	old := ref.Value()
	ref.Set(v)
	return old
}

// Take returns the current value and leaves the zero value behind, via a
// short-lived exclusive borrow.
func (c *Cell[T]) Take() T {
	var zero T
	return c.Replace(zero)
}

// Update applies f to the current value and stores the result, all under
// one exclusive borrow. Panics if any guard is live.
func (c *Cell[T]) Update(f func(T) T) {
	ref := c.BorrowMut()
	defer ref.Release()
	ref.Set(f(ref.Value()))
}

// Ref is a live shared (read) guard. It must be released exactly once;
// while any Ref is live the cell rejects exclusive borrows.
type Ref[T any] struct {
	cell     *Cell[T]
	released bool
}

// Value returns the guarded value. Panics if the guard was released.
func (r *Ref[T]) Value() T {
	if r.released {
		panic("cell: use of released borrow")
	}
	return r.cell.value
}

// Release ends the borrow. Releasing twice panics.
func (r *Ref[T]) Release() {
	if r.released {
		panic("cell: borrow already released")
	}
	r.released = true
	r.cell.state--
}

// RefMut is the live exclusive (write) guard. It must be released exactly
// once; while it is live the cell rejects every other borrow.
type RefMut[T any] struct {
	cell     *Cell[T]
	released bool
}

// Value returns the guarded value. Panics if the guard was released.
func (r *RefMut[T]) Value() T {
	if r.released {
		panic("cell: use of released borrow")
	}
	return r.cell.value
}

// Set stores v in the cell. Panics if the guard was released.
func (r *RefMut[T]) Set(v T) {
	if r.released {
		panic("cell: use of released borrow")
	}
	r.cell.value = v
}

// Release ends the borrow and frees the cell. Releasing twice panics.
func (r *RefMut[T]) Release() {
	if r.released {
		panic("cell: borrow already released")
	}
	r.released = true
	r.cell.state = 0
}
