// Package rc implements single-goroutine reference-counted handles with
// strong and weak counts.
//
// An allocation is created with New (or NewWithFinalizer) and owned by one
// or more Rc handles. Clone adds a co-owner, Drop removes one. When the
// last strong handle is dropped, the allocation's finalizer runs exactly
// once and the value is dead. Weak handles (created with Downgrade) do not
// keep the value alive and must be upgraded before use.
//
// The package models explicit ownership for teaching purposes: Go's
// garbage collector still reclaims the memory, but the counts, finalizers,
// and handle lifecycle behave exactly like classic reference-counting
// smart pointers — including the ability to leak a value by forming a
// cycle of strong handles (see the Weak type for the way out).
//
// All types in this package are single-goroutine by design. The ownership
// model being taught is explicitly single-threaded; counts are plain ints
// and no synchronization is performed. Sharing an allocation across
// goroutines requires external synchronization or an atomic variant this
// package deliberately does not provide.
package rc
