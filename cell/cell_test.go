package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/refcell/rc"
)

// TestCell_SharedBorrowsCoexist verifies the read side of the access
// rules: any number of shared guards may be live at once.
func TestCell_SharedBorrowsCoexist(t *testing.T) {
	c := NewCell(10)

	r1 := c.Borrow()
	r2 := c.Borrow()
	r3 := c.Borrow()
	assert.Equal(t, 3, c.Borrows())
	assert.Equal(t, 10, r1.Value())
	assert.Equal(t, 10, r2.Value())

	r1.Release()
	r2.Release()
	r3.Release()
	assert.Equal(t, 0, c.Borrows())
}

// TestCell_ExclusiveExcludesEverything verifies the write side: the
// exclusive guard conflicts with shared guards in both directions.
func TestCell_ExclusiveExcludesEverything(t *testing.T) {
	t.Run("mut blocked by shared", func(t *testing.T) {
		c := NewCell("v")
		r := c.Borrow()

		_, err := c.TryBorrowMut()
		require.Error(t, err)
		var be *BorrowError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "exclusive", be.Requested)
		assert.Contains(t, be.Held, "shared")

		r.Release()
		m, err := c.TryBorrowMut()
		require.NoError(t, err)
		m.Release()
	})

	t.Run("shared blocked by mut", func(t *testing.T) {
		c := NewCell("v")
		m := c.BorrowMut()

		_, err := c.TryBorrow()
		require.Error(t, err)

		m.Release()
		r, err := c.TryBorrow()
		require.NoError(t, err)
		r.Release()
	})

	t.Run("second mut blocked by first", func(t *testing.T) {
		c := NewCell("v")
		m := c.BorrowMut()
		_, err := c.TryBorrowMut()
		assert.Error(t, err)
		m.Release()
	})
}

// TestCell_ConflictPanics pins the abort-on-violation behavior of the
// non-Try methods: a conflicting borrow is a bug, and the panic payload
// is the same *BorrowError the Try variants return.
func TestCell_ConflictPanics(t *testing.T) {
	t.Run("two exclusive borrows", func(t *testing.T) {
		c := NewCell(0)
		m := c.BorrowMut()
		defer m.Release()
		assert.PanicsWithError(t,
			"cell: cannot take exclusive borrow while an exclusive borrow is live",
			func() { c.BorrowMut() })
	})

	t.Run("exclusive over shared", func(t *testing.T) {
		c := NewCell(0)
		r := c.Borrow()
		defer r.Release()
		assert.Panics(t, func() { c.BorrowMut() })
	})

	t.Run("shared over exclusive", func(t *testing.T) {
		c := NewCell(0)
		m := c.BorrowMut()
		defer m.Release()
		assert.Panics(t, func() { c.Borrow() })
	})
}

// TestCell_MutationThroughGuard exercises the write guard end to end.
func TestCell_MutationThroughGuard(t *testing.T) {
	c := NewCell([]int{1})

	m := c.BorrowMut()
	m.Set(append(m.Value(), 2))
	m.Release()

	assert.Equal(t, []int{1, 2}, c.Get())
}

// TestCell_Conveniences covers the whole-borrow helpers, including their
// interaction with the borrow state.
func TestCell_Conveniences(t *testing.T) {
	t.Run("get and set", func(t *testing.T) {
		c := NewCell(1)
		c.Set(2)
		assert.Equal(t, 2, c.Get())
		assert.Equal(t, 0, c.Borrows(), "helpers release their borrow")
	})

	t.Run("replace returns old value", func(t *testing.T) {
		c := NewCell("old")
		assert.Equal(t, "old", c.Replace("new"))
		assert.Equal(t, "new", c.Get())
	})

	t.Run("take leaves zero value", func(t *testing.T) {
		c := NewCell(9)
		assert.Equal(t, 9, c.Take())
		assert.Equal(t, 0, c.Get())
	})

	t.Run("update applies under one borrow", func(t *testing.T) {
		c := NewCell(10)
		c.Update(func(v int) int { return v + 5 })
		assert.Equal(t, 15, c.Get())
	})

	t.Run("helpers panic while borrowed", func(t *testing.T) {
		c := NewCell(1)
		m := c.BorrowMut()
		defer m.Release()
		assert.Panics(t, func() { c.Get() })
		assert.Panics(t, func() { c.Set(2) })
	})
}

// TestCell_GuardMisusePanics covers the guard lifecycle rules, matching
// the handle rules in package rc.
func TestCell_GuardMisusePanics(t *testing.T) {
	t.Run("double release shared", func(t *testing.T) {
		c := NewCell(0)
		r := c.Borrow()
		r.Release()
		assert.PanicsWithValue(t, "cell: borrow already released", r.Release)
	})

	t.Run("double release exclusive", func(t *testing.T) {
		c := NewCell(0)
		m := c.BorrowMut()
		m.Release()
		assert.PanicsWithValue(t, "cell: borrow already released", m.Release)
	})

	t.Run("use after release", func(t *testing.T) {
		c := NewCell(0)
		m := c.BorrowMut()
		m.Release()
		assert.Panics(t, func() { m.Value() })
		assert.Panics(t, func() { m.Set(1) })
	})
}

// TestCell_SharedMutableState is the classic pairing: multiple rc owners
// of a single cell, each able to mutate the shared value through a
// bounded exclusive borrow.
func TestCell_SharedMutableState(t *testing.T) {
	shared := NewCell([]int{})

	a := rc.New(shared)
	b := a.Clone()
	require.Equal(t, 2, a.StrongCount())

	a.Value().Update(func(v []int) []int { return append(v, 1) })
	b.Value().Update(func(v []int) []int { return append(v, 2) })

	assert.Equal(t, []int{1, 2}, shared.Get())

	a.Drop()
	b.Drop()
}
