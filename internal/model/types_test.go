package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpKind_String verifies that OpKind values produce the expected
// string representations for trace output and error messages.
func TestOpKind_String(t *testing.T) {
	tests := []struct {
		op       OpKind
		expected string
	}{
		{OpAlloc, "alloc"},
		{OpClone, "clone"},
		{OpDrop, "drop"},
		{OpDowngrade, "downgrade"},
		{OpUpgrade, "upgrade"},
		{OpLink, "link"},
		{OpBorrow, "borrow"},
		{OpBorrowMut, "borrow-mut"},
		{OpSet, "set"},
		{OpRelease, "release"},
		{OpCount, "count"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.op.String())
		})
	}
}

// TestOpKind_IsValid checks that only defined operations pass validation.
func TestOpKind_IsValid(t *testing.T) {
	assert.True(t, OpAlloc.IsValid())
	assert.True(t, OpBorrowMut.IsValid())
	assert.True(t, OpCount.IsValid())
	assert.False(t, OpKind("borrow_mut").IsValid())
	assert.False(t, OpKind("free").IsValid())
	assert.False(t, OpKind("").IsValid())
}

// TestParseOpKind verifies string-to-op conversion, including case
// normalization and error cases.
func TestParseOpKind(t *testing.T) {
	tests := []struct {
		input    string
		expected OpKind
		hasError bool
	}{
		{"alloc", OpAlloc, false},
		{"borrow-mut", OpBorrowMut, false},
		{"ALLOC", OpAlloc, false}, // case insensitive
		{"Drop", OpDrop, false},   // case insensitive
		{"borrowmut", "", true},   // unknown value
		{"", "", true},            // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseOpKind(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestOpKind_FieldRequirements verifies the From/Target classification
// the validator relies on.
func TestOpKind_FieldRequirements(t *testing.T) {
	t.Run("needs from", func(t *testing.T) {
		assert.True(t, OpClone.NeedsFrom())
		assert.True(t, OpDowngrade.NeedsFrom())
		assert.True(t, OpUpgrade.NeedsFrom())
		assert.True(t, OpBorrow.NeedsFrom())
		assert.True(t, OpBorrowMut.NeedsFrom())
		assert.False(t, OpAlloc.NeedsFrom())
		assert.False(t, OpDrop.NeedsFrom())
		assert.False(t, OpLink.NeedsFrom(), "link uses From/To as edge endpoints, validated separately")
	})

	t.Run("binds target", func(t *testing.T) {
		assert.True(t, OpAlloc.BindsTarget())
		assert.True(t, OpUpgrade.BindsTarget())
		assert.False(t, OpDrop.BindsTarget())
		assert.False(t, OpSet.BindsTarget())
		assert.False(t, OpCount.BindsTarget())
	})
}

// TestParseLinkKind verifies link strength parsing, including the
// strong-by-default rule.
func TestParseLinkKind(t *testing.T) {
	tests := []struct {
		input    string
		expected LinkKind
		hasError bool
	}{
		{"strong", LinkStrong, false},
		{"weak", LinkWeak, false},
		{"WEAK", LinkWeak, false}, // case insensitive
		{"", LinkStrong, false},   // default is strong
		{"soft", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseLinkKind(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestValidateName checks handle/scenario name validation rules:
// - Must not be empty
// - Alphanumeric + hyphens only
// - Must start and end with alphanumeric
func TestValidateName(t *testing.T) {
	tests := []struct {
		name     string
		hasError bool
	}{
		{"leaf-node", false},  // valid: alphanumeric with hyphen
		{"a", false},          // valid: single character
		{"node-2-b", false},   // valid: multiple hyphens
		{"abc123", false},     // valid: alphanumeric
		{"", true},            // invalid: empty
		{"-leaf", true},       // invalid: starts with hyphen
		{"leaf-", true},       // invalid: ends with hyphen
		{"leaf node", true},   // invalid: space
		{"leaf_node", true},   // invalid: underscore
		{"leaf.node", true},   // invalid: dot
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestCLIError verifies the custom error type used for exit code mapping.
func TestCLIError(t *testing.T) {
	t.Run("simple error", func(t *testing.T) {
		err := NewCLIError(ExitLeakDetected, "2 allocations leaked")
		assert.Equal(t, ExitLeakDetected, err.Code)
		assert.Equal(t, "2 allocations leaked", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := errors.New("yaml: line 3: mapping values are not allowed")
		err := WrapCLIError(ExitParseError, "failed to parse scenario", inner)
		assert.Equal(t, ExitParseError, err.Code)
		assert.Contains(t, err.Error(), "mapping values")
		assert.Equal(t, inner, err.Unwrap())
	})

	t.Run("errors.Is chain", func(t *testing.T) {
		inner := errors.New("no such file")
		err := WrapCLIError(ExitScenarioNotFound, "scenario not found", inner)
		assert.True(t, errors.Is(err, inner))
	})
}
