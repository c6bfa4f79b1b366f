package interp

import (
	"fmt"
	"strings"

	"github.com/mmr-tortoise/refcell/cell"
	"github.com/mmr-tortoise/refcell/internal/model"
	"github.com/mmr-tortoise/refcell/rc"
)

// node is the live value behind one scenario allocation. Link steps give
// a node real handles to other nodes, so ownership cascades (and cycles)
// behave exactly as the counts dictate.
type node struct {
	name    string
	payload any

	// c is non-nil for allocations created with cell: true.
	c *cell.Cell[any]

	// strong and weak are the handles this node owns (forward and back
	// edges created by link steps). The node's finalizer drops them.
	strong []*rc.Rc[*node]
	weak   []*rc.Weak[*node]
}

// binding is one live entry of the run-time symbol table.
type binding struct {
	alloc  string
	strong *rc.Rc[*node]
	weak   *rc.Weak[*node]
	ref    *cell.Ref[any]
	refMut *cell.RefMut[any]
}

// interpreter holds the mutable state of one scenario run.
type interpreter struct {
	trace    *Trace
	bindings map[string]*binding

	// order records binding names in bind order; end-of-scope walks it
	// in reverse. A name may appear more than once after rebinding —
	// only the entry still present in bindings is acted on.
	order []string

	// alive tracks which allocations have not been finalized yet, and
	// allocOrder preserves creation order for the leak report.
	alive      map[string]bool
	allocOrder []string
}

// Execute runs a validated scenario and returns its trace.
//
// Scenarios are expected to have passed scenario.Validate; binding
// errors found here (a symptom of a validator/interpreter mismatch) are
// returned as plain errors. Borrow conflicts and leaks are not errors —
// they are outcomes, recorded in the trace for the CLI to judge.
func Execute(s *model.Scenario) (*Trace, error) {
	it := &interpreter{
		trace:    &Trace{Scenario: s.Name},
		bindings: map[string]*binding{},
		alive:    map[string]bool{},
	}

	for i, st := range s.Steps {
		if err := it.step(i+1, st); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
	}

	it.endOfScope()

	for _, name := range it.allocOrder {
		if it.alive[name] {
			it.trace.Leaked = append(it.trace.Leaked, name)
		}
	}
	return it.trace, nil
}

// finalize is installed as every allocation's finalizer. It records the
// death and releases the handles the node owns, cascading through
// strong edges.
func (it *interpreter) finalize(n *node) {
	it.alive[n.name] = false
	it.trace.Freed = append(it.trace.Freed, n.name)
	for _, h := range n.strong {
		h.Drop()
	}
	for _, w := range n.weak {
		w.Drop()
	}
}

// bind installs a new symbol-table entry.
func (it *interpreter) bind(name string, b *binding) {
	it.bindings[name] = b
	it.order = append(it.order, name)
}

// get resolves a live binding or fails.
func (it *interpreter) get(name string) (*binding, error) {
	b, ok := it.bindings[name]
	if !ok {
		return nil, fmt.Errorf("handle %q is not bound", name)
	}
	return b, nil
}

// step executes one scenario step and appends its event to the trace.
func (it *interpreter) step(n int, st model.Step) error {
	ev := Event{
		Step:   n,
		Op:     st.Op.String(),
		Target: st.Target,
		From:   st.From,
	}
	freedBefore := len(it.trace.Freed)

	switch st.Op {
	case model.OpAlloc:
		nd := &node{name: st.Target, payload: st.Value}
		if st.Cell {
			nd.c = cell.NewCell[any](st.Value)
		}
		h := rc.NewWithFinalizer(nd, it.finalize)
		it.bind(st.Target, &binding{alloc: st.Target, strong: h})
		it.alive[st.Target] = true
		it.allocOrder = append(it.allocOrder, st.Target)
		it.recordCounts(&ev, st.Target, h)

	case model.OpClone:
		from, err := it.get(st.From)
		if err != nil {
			return err
		}
		if from.strong == nil {
			return fmt.Errorf("clone requires a strong handle, %q is not one", st.From)
		}
		h := from.strong.Clone()
		it.bind(st.Target, &binding{alloc: from.alloc, strong: h})
		it.recordCounts(&ev, from.alloc, h)

	case model.OpDowngrade:
		from, err := it.get(st.From)
		if err != nil {
			return err
		}
		if from.strong == nil {
			return fmt.Errorf("downgrade requires a strong handle, %q is not one", st.From)
		}
		w := from.strong.Downgrade()
		it.bind(st.Target, &binding{alloc: from.alloc, weak: w})
		it.recordCounts(&ev, from.alloc, from.strong)

	case model.OpUpgrade:
		from, err := it.get(st.From)
		if err != nil {
			return err
		}
		if from.weak == nil {
			return fmt.Errorf("upgrade requires a weak handle, %q is not one", st.From)
		}
		h, ok := from.weak.Upgrade()
		if !ok {
			ev.Note = "upgrade failed: value already freed"
			ev.Alloc = from.alloc
			ev.Strong = from.weak.StrongCount()
			ev.Weak = from.weak.WeakCount()
			ev.HasCounts = true
			break
		}
		it.bind(st.Target, &binding{alloc: from.alloc, strong: h})
		it.recordCounts(&ev, from.alloc, h)

	case model.OpLink:
		from, err := it.get(st.From)
		if err != nil {
			return err
		}
		to, err := it.get(st.To)
		if err != nil {
			return err
		}
		if from.strong == nil || to.strong == nil {
			return fmt.Errorf("link endpoints must be strong handles")
		}
		kind, err := model.ParseLinkKind(st.Kind)
		if err != nil {
			return err
		}
		owner := from.strong.Value()
		if kind == model.LinkStrong {
			owner.strong = append(owner.strong, to.strong.Clone())
		} else {
			owner.weak = append(owner.weak, to.strong.Downgrade())
		}
		it.recordCounts(&ev, to.alloc, to.strong)
		ev.Note = fmt.Sprintf("%s edge %s → %s", kind, from.alloc, to.alloc)

	case model.OpBorrow, model.OpBorrowMut:
		from, err := it.get(st.From)
		if err != nil {
			return err
		}
		if from.strong == nil {
			return fmt.Errorf("borrow requires a strong handle, %q is not one", st.From)
		}
		c := from.strong.Value().c
		if c == nil {
			return fmt.Errorf("allocation %q was not created with cell: true", from.alloc)
		}
		if st.Op == model.OpBorrow {
			g, err := c.TryBorrow()
			if err != nil {
				ev.Violation = err.Error()
				break
			}
			it.bind(st.Target, &binding{alloc: from.alloc, ref: g})
		} else {
			g, err := c.TryBorrowMut()
			if err != nil {
				ev.Violation = err.Error()
				break
			}
			it.bind(st.Target, &binding{alloc: from.alloc, refMut: g})
		}
		it.recordCounts(&ev, from.alloc, from.strong)

	case model.OpSet:
		b, err := it.get(st.Target)
		if err != nil {
			return err
		}
		if b.refMut == nil {
			return fmt.Errorf("set requires an exclusive borrow guard, %q is not one", st.Target)
		}
		b.refMut.Set(st.Value)
		ev.Alloc = b.alloc
		ev.Note = fmt.Sprintf("value set to %v", st.Value)

	case model.OpRelease:
		b, err := it.get(st.Target)
		if err != nil {
			return err
		}
		switch {
		case b.ref != nil:
			b.ref.Release()
		case b.refMut != nil:
			b.refMut.Release()
		default:
			return fmt.Errorf("%q is not a borrow guard", st.Target)
		}
		delete(it.bindings, st.Target)
		ev.Alloc = b.alloc

	case model.OpCount:
		b, err := it.get(st.Target)
		if err != nil {
			return err
		}
		switch {
		case b.strong != nil:
			it.recordCounts(&ev, b.alloc, b.strong)
		case b.weak != nil:
			ev.Alloc = b.alloc
			ev.Strong = b.weak.StrongCount()
			ev.Weak = b.weak.WeakCount()
			ev.HasCounts = true
		default:
			return fmt.Errorf("count requires a strong or weak handle, %q is a borrow guard", st.Target)
		}

	case model.OpDrop:
		b, err := it.get(st.Target)
		if err != nil {
			return err
		}
		switch {
		case b.strong != nil:
			b.strong.Drop()
		case b.weak != nil:
			b.weak.Drop()
		default:
			return fmt.Errorf("%q is a borrow guard; use release, not drop", st.Target)
		}
		delete(it.bindings, st.Target)
		ev.Alloc = b.alloc

	default:
		return fmt.Errorf("unknown op %q", string(st.Op))
	}

	if newly := it.trace.Freed[freedBefore:]; len(newly) > 0 {
		note := "freed: " + strings.Join(newly, ", ")
		if ev.Note != "" {
			ev.Note += "; " + note
		} else {
			ev.Note = note
		}
	}
	it.trace.Events = append(it.trace.Events, ev)
	return nil
}

// recordCounts fills the event's allocation counts through a live strong
// handle.
func (it *interpreter) recordCounts(ev *Event, alloc string, h *rc.Rc[*node]) {
	ev.Alloc = alloc
	ev.Strong = h.StrongCount()
	ev.Weak = h.WeakCount()
	ev.HasCounts = true
}

// endOfScope releases every binding still live, newest first, modeling
// the end of a lexical scope. Guards release before the handles they
// borrowed from because they were necessarily bound later.
func (it *interpreter) endOfScope() {
	for i := len(it.order) - 1; i >= 0; i-- {
		name := it.order[i]
		b, ok := it.bindings[name]
		if !ok {
			continue
		}
		delete(it.bindings, name)

		ev := Event{Op: "drop", Target: name, Alloc: b.alloc, Note: "end of scope"}
		freedBefore := len(it.trace.Freed)

		switch {
		case b.ref != nil:
			b.ref.Release()
			ev.Op = "release"
		case b.refMut != nil:
			b.refMut.Release()
			ev.Op = "release"
		case b.strong != nil:
			b.strong.Drop()
		case b.weak != nil:
			b.weak.Drop()
		}

		if newly := it.trace.Freed[freedBefore:]; len(newly) > 0 {
			ev.Note += "; freed: " + strings.Join(newly, ", ")
		}
		it.trace.Events = append(it.trace.Events, ev)
	}
}
