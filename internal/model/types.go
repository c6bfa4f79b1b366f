// Package model defines the domain types for the refcell CLI.
//
// A scenario is an ordered list of ownership operations replayed against
// the rc and cell library packages. The types here are the decoded form
// shared by the loader (internal/scenario), the static analyses
// (internal/graph), and the interpreter (internal/interp).
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// OpKind identifies one scenario operation. The vocabulary mirrors the
// library surface: allocation lifecycle (alloc/clone/drop), weak handles
// (downgrade/upgrade), ownership edges (link), borrow-checked access
// (borrow/borrow-mut/set/release), and trace snapshots (count).
type OpKind string

const (
	// OpAlloc creates a new allocation and binds its first strong handle
	// to Target. Value carries an optional payload; Cell wraps the
	// payload in a borrow-checked cell.
	OpAlloc OpKind = "alloc"

	// OpClone binds Target to a new co-owning strong handle of the
	// allocation behind From.
	OpClone OpKind = "clone"

	// OpDrop releases the handle (strong, weak, or borrow guard is NOT
	// included — guards use OpRelease) bound to Target.
	OpDrop OpKind = "drop"

	// OpDowngrade binds Target to a new weak handle of the allocation
	// behind From.
	OpDowngrade OpKind = "downgrade"

	// OpUpgrade attempts to promote the weak handle behind From and bind
	// the resulting strong handle to Target. A dead target is recorded
	// in the trace, not treated as a failure.
	OpUpgrade OpKind = "upgrade"

	// OpLink records an ownership edge: the allocation behind From holds
	// a handle (strong or weak per Kind) to the allocation behind To.
	// Strong links are what make cycles leak.
	OpLink OpKind = "link"

	// OpBorrow takes a shared borrow guard on From's cell and binds it
	// to Target.
	OpBorrow OpKind = "borrow"

	// OpBorrowMut takes the exclusive borrow guard on From's cell and
	// binds it to Target. A conflict is recorded as a violation.
	OpBorrowMut OpKind = "borrow-mut"

	// OpSet stores Value through the exclusive guard bound to Target.
	OpSet OpKind = "set"

	// OpRelease releases the borrow guard bound to Target.
	OpRelease OpKind = "release"

	// OpCount emits a strong/weak count snapshot for the allocation
	// behind Target.
	OpCount OpKind = "count"
)

// String returns the string representation of OpKind.
// This satisfies fmt.Stringer for trace and error output.
func (k OpKind) String() string {
	return string(k)
}

// IsValid checks whether the OpKind value is one of the defined
// operations.
func (k OpKind) IsValid() bool {
	switch k {
	case OpAlloc, OpClone, OpDrop, OpDowngrade, OpUpgrade,
		OpLink, OpBorrow, OpBorrowMut, OpSet, OpRelease, OpCount:
		return true
	default:
		return false
	}
}

// NeedsFrom reports whether the operation reads an existing binding via
// the From field.
func (k OpKind) NeedsFrom() bool {
	switch k {
	case OpClone, OpDowngrade, OpUpgrade, OpBorrow, OpBorrowMut:
		return true
	default:
		return false
	}
}

// BindsTarget reports whether the operation creates a new binding under
// the Target name (as opposed to consuming or inspecting one).
func (k OpKind) BindsTarget() bool {
	switch k {
	case OpAlloc, OpClone, OpDowngrade, OpUpgrade, OpBorrow, OpBorrowMut:
		return true
	default:
		return false
	}
}

// ParseOpKind converts a string to an OpKind.
// Returns an error if the string does not match any defined operation.
func ParseOpKind(s string) (OpKind, error) {
	k := OpKind(strings.ToLower(s))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid op %q (valid: alloc, clone, drop, downgrade, upgrade, link, borrow, borrow-mut, set, release, count)", s)
	}
	return k, nil
}

// LinkKind is the strength of an ownership edge created by OpLink.
type LinkKind string

const (
	// LinkStrong edges keep the child alive; a cycle of strong edges
	// leaks every allocation on it.
	LinkStrong LinkKind = "strong"

	// LinkWeak edges are back-references that must be upgraded before
	// use and never extend the child's lifetime.
	LinkWeak LinkKind = "weak"
)

// String returns the string representation of LinkKind.
func (k LinkKind) String() string {
	return string(k)
}

// IsValid checks whether the LinkKind is one of the defined strengths.
func (k LinkKind) IsValid() bool {
	return k == LinkStrong || k == LinkWeak
}

// ParseLinkKind converts a string to a LinkKind. An empty string
// defaults to strong, matching what an unsuspecting author gets — the
// leak-prone default is the teaching point.
func ParseLinkKind(s string) (LinkKind, error) {
	if s == "" {
		return LinkStrong, nil
	}
	k := LinkKind(strings.ToLower(s))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid link kind %q (valid: strong, weak)", s)
	}
	return k, nil
}

// Step is one decoded scenario operation. Which fields are meaningful
// depends on Op; the loader's validation enforces the combinations.
type Step struct {
	// Op is the operation kind.
	Op OpKind `json:"op" yaml:"op"`

	// Target is the handle name the operation binds, consumes, or
	// inspects. Unused by link.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// From is the existing binding the operation reads (clone source,
	// downgrade/upgrade source, borrowed cell). For link it names the
	// owning allocation.
	From string `json:"from,omitempty" yaml:"from,omitempty"`

	// To is the owned allocation of a link edge.
	To string `json:"to,omitempty" yaml:"to,omitempty"`

	// Kind is the link strength ("strong"/"weak", default strong).
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Value is the payload for alloc and set. Scenario files may use any
	// scalar or structured YAML/JSON value.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Cell marks an alloc whose payload is wrapped in a borrow-checked
	// cell, enabling borrow/borrow-mut/set against it.
	Cell bool `json:"cell,omitempty" yaml:"cell,omitempty"`
}

// Scenario is a named, ordered list of ownership operations.
type Scenario struct {
	// Name identifies the scenario in output and must be a valid handle
	// name (same alphabet as handle names, see ValidateName).
	Name string `json:"name" yaml:"name"`

	// Description is optional free-form text shown by the demos command.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Steps are executed strictly in order.
	Steps []Step `json:"steps" yaml:"steps"`
}

// nameRegex validates handle and scenario names: alphanumeric + hyphens,
// must start and end with alphanumeric.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)

// ValidateName checks if the given name is a valid handle or scenario
// name. Valid names contain only alphanumeric characters and hyphens,
// and must start/end with an alphanumeric character.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid name %q: must contain only alphanumeric characters and hyphens, and start/end with alphanumeric", name)
	}
	return nil
}

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitScenarioNotFound indicates the scenario file does not exist.
	ExitScenarioNotFound ExitCode = 2

	// ExitParseError indicates the scenario file is not valid YAML/JSONC.
	ExitParseError ExitCode = 3

	// ExitValidationFailed indicates the scenario failed static
	// validation before any step ran.
	ExitValidationFailed ExitCode = 4

	// ExitBorrowViolation indicates the run hit a conflicting borrow.
	ExitBorrowViolation ExitCode = 5

	// ExitLeakDetected indicates allocations survived end-of-scope
	// (a strong-reference cycle).
	ExitLeakDetected ExitCode = 6

	// ExitUnknownDemo indicates the requested built-in demo does not
	// exist.
	ExitUnknownDemo ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
