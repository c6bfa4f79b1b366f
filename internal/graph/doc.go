// Package graph builds the static ownership graph of a scenario and
// detects strong-reference cycles — the shape that makes reference
// counting leak and that weak references exist to break.
//
// Nodes are allocations; edges come from link steps. Only strong edges
// participate in cycle detection: weak edges are recorded for reporting
// but by definition cannot keep anything alive. Acyclicity is proven
// with Kahn's algorithm; when that fails, a deterministic DFS extracts
// one stable cycle witness and the analysis suggests the edge to demote
// to weak.
package graph
