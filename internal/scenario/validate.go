// validate.go performs static validation of a scenario before any step
// runs. The checks mirror the interpreter's binding rules so that a
// scenario which validates cleanly can only fail at run time for the two
// reasons the tool exists to demonstrate: borrow conflicts and leaks.
package scenario

import (
	"fmt"

	"github.com/mmr-tortoise/refcell/internal/model"
)

// ValidationError represents a specific validation failure in a scenario.
type ValidationError struct {
	// Step is the 1-based index of the offending step, or 0 for
	// scenario-level problems (name, empty step list).
	Step int

	// Field is the step field that failed validation (e.g. "target").
	Field string

	// Message describes what's wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Step == 0 {
		return fmt.Sprintf("scenario validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("scenario validation error: step %d: %s: %s", e.Step, e.Field, e.Message)
}

// bindingKind classifies what a live handle name is bound to.
// The validator tracks bindings symbolically, assuming every step
// succeeds; runtime-only outcomes (borrow conflicts, failed upgrades)
// are deliberately not modeled here.
type bindingKind int

const (
	bindStrong bindingKind = iota
	bindWeak
	bindRef    // shared borrow guard
	bindRefMut // exclusive borrow guard
)

// binding is one live symbol-table entry.
type binding struct {
	kind bindingKind

	// alloc is the allocation name (the original alloc target) this
	// binding ultimately refers to. Guards refer to the borrowed
	// allocation.
	alloc string
}

// Validate performs static checks on a parsed scenario and returns a
// list of validation errors (empty list = valid scenario). All problems
// are collected in one pass rather than failing fast, so an author sees
// every mistake at once.
func Validate(s *model.Scenario) []ValidationError {
	var errs []ValidationError
	fail := func(step int, field, format string, args ...any) {
		errs = append(errs, ValidationError{Step: step, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if err := model.ValidateName(s.Name); err != nil {
		fail(0, "name", "%v", err)
	}
	if len(s.Steps) == 0 {
		fail(0, "steps", "scenario has no steps")
		return errs
	}

	// Symbol table of live bindings, plus per-allocation metadata.
	bindings := map[string]binding{}
	isCell := map[string]bool{}

	// resolve looks up a live binding for a From/Target reference and
	// reports the failure itself; callers check ok.
	resolve := func(step int, field, name string) (binding, bool) {
		if name == "" {
			fail(step, field, "required for op")
			return binding{}, false
		}
		b, ok := bindings[name]
		if !ok {
			fail(step, field, "handle %q is not bound at this point", name)
			return binding{}, false
		}
		return b, true
	}

	for i, st := range s.Steps {
		n := i + 1

		if !st.Op.IsValid() {
			fail(n, "op", "unknown op %q", string(st.Op))
			continue
		}

		// Ops that create a new binding must use a fresh, valid name.
		if st.Op.BindsTarget() {
			if st.Target == "" {
				fail(n, "target", "required for op %s", st.Op)
				continue
			}
			if err := model.ValidateName(st.Target); err != nil {
				fail(n, "target", "%v", err)
				continue
			}
			if _, live := bindings[st.Target]; live {
				fail(n, "target", "handle %q is already bound; drop or release it first", st.Target)
				continue
			}
		}

		switch st.Op {
		case model.OpAlloc:
			bindings[st.Target] = binding{kind: bindStrong, alloc: st.Target}
			isCell[st.Target] = st.Cell

		case model.OpClone:
			from, ok := resolve(n, "from", st.From)
			if !ok {
				continue
			}
			if from.kind != bindStrong {
				fail(n, "from", "clone requires a strong handle, %q is not one", st.From)
				continue
			}
			bindings[st.Target] = binding{kind: bindStrong, alloc: from.alloc}

		case model.OpDowngrade:
			from, ok := resolve(n, "from", st.From)
			if !ok {
				continue
			}
			if from.kind != bindStrong {
				fail(n, "from", "downgrade requires a strong handle, %q is not one", st.From)
				continue
			}
			bindings[st.Target] = binding{kind: bindWeak, alloc: from.alloc}

		case model.OpUpgrade:
			from, ok := resolve(n, "from", st.From)
			if !ok {
				continue
			}
			if from.kind != bindWeak {
				fail(n, "from", "upgrade requires a weak handle, %q is not one", st.From)
				continue
			}
			// Optimistic: a failed upgrade simply leaves the target
			// unbound at run time.
			bindings[st.Target] = binding{kind: bindStrong, alloc: from.alloc}

		case model.OpDrop:
			b, ok := resolve(n, "target", st.Target)
			if !ok {
				continue
			}
			if b.kind == bindRef || b.kind == bindRefMut {
				fail(n, "target", "%q is a borrow guard; use release, not drop", st.Target)
				continue
			}
			delete(bindings, st.Target)

		case model.OpLink:
			if _, err := model.ParseLinkKind(st.Kind); err != nil {
				fail(n, "kind", "%v", err)
			}
			from, okFrom := resolve(n, "from", st.From)
			to, okTo := resolve(n, "to", st.To)
			if !okFrom || !okTo {
				continue
			}
			if from.kind != bindStrong {
				fail(n, "from", "link owner %q must be a strong handle", st.From)
			}
			if to.kind != bindStrong {
				fail(n, "to", "link target %q must be a strong handle", st.To)
			}

		case model.OpBorrow, model.OpBorrowMut:
			from, ok := resolve(n, "from", st.From)
			if !ok {
				continue
			}
			if from.kind != bindStrong {
				fail(n, "from", "borrow requires a strong handle, %q is not one", st.From)
				continue
			}
			if !isCell[from.alloc] {
				fail(n, "from", "allocation %q was not created with cell: true", from.alloc)
				continue
			}
			kind := bindRef
			if st.Op == model.OpBorrowMut {
				kind = bindRefMut
			}
			bindings[st.Target] = binding{kind: kind, alloc: from.alloc}

		case model.OpSet:
			b, ok := resolve(n, "target", st.Target)
			if !ok {
				continue
			}
			if b.kind != bindRefMut {
				fail(n, "target", "set requires an exclusive borrow guard, %q is not one", st.Target)
			}

		case model.OpRelease:
			b, ok := resolve(n, "target", st.Target)
			if !ok {
				continue
			}
			if b.kind != bindRef && b.kind != bindRefMut {
				fail(n, "target", "%q is not a borrow guard; use drop for handles", st.Target)
				continue
			}
			delete(bindings, st.Target)

		case model.OpCount:
			b, ok := resolve(n, "target", st.Target)
			if !ok {
				continue
			}
			if b.kind != bindStrong && b.kind != bindWeak {
				fail(n, "target", "count requires a strong or weak handle, %q is a borrow guard", st.Target)
			}
		}
	}

	return errs
}
