// Package interp executes ownership scenarios against the real rc and
// cell packages and records what happened.
//
// Every allocation in a scenario becomes a live reference-counted value;
// link steps make one allocation genuinely own handles to another, so a
// parent's finalizer cascades through its strong edges exactly as true
// reference counting dictates — and a strong cycle genuinely leaks. The
// interpreter's job is to make the counts observable: each step emits a
// trace event with the strong/weak counts after the step, borrow
// conflicts are recorded as violations, and a leak report at the end
// names every allocation whose finalizer never ran.
//
// At end of input all still-bound handles and guards are released in
// reverse binding order, modeling the end of a lexical scope.
package interp
