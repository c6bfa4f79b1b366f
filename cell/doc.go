// Package cell implements a runtime borrow-checked mutable cell —
// interior mutability with the access rules enforced at run time instead
// of compile time.
//
// A Cell holds a single value and hands out guards: any number of shared
// (read) guards may be live at once, or exactly one exclusive (write)
// guard, never both. Borrow and BorrowMut panic on a conflict; TryBorrow
// and TryBorrowMut report the same conflict as a *BorrowError instead.
// The panic path exists because an access-rule violation is a bug in the
// calling code, not a runtime condition to retry.
//
// Like package rc, this package is single-goroutine by design: the borrow
// state is a plain counter and guards are expected to be taken and
// released on one goroutine. The classic pairing is rc.Rc pointing at a
// *cell.Cell — many owners, each able to borrow mutable access to shared
// state for a bounded scope.
package cell
