package hook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hookkit/internal/hook"
)

func TestTable_AddCreatesNestedBuckets(t *testing.T) {
	tbl := hook.NewTable()
	cb := hook.NewCallback(func(args ...any) any { return args[0] })

	tbl.Add("x", 10, hook.Entry{Function: cb, AcceptedArgs: 3})

	want := hook.Table{
		"x": {10: {{Function: cb, AcceptedArgs: 3}}},
	}
	assert.Equal(t, want, tbl)
}

func TestTable_FIFOWithinPriority(t *testing.T) {
	tbl := hook.NewTable()
	a := hook.Named("a", nil)
	b := hook.Named("b", nil)
	c := hook.Named("c", nil)

	tbl.Add("h", 10, hook.Entry{Function: a, AcceptedArgs: 1})
	tbl.Add("h", 5, hook.Entry{Function: c, AcceptedArgs: 1})
	tbl.Add("h", 10, hook.Entry{Function: b, AcceptedArgs: 1})

	entries := tbl.Entries("h")
	require.Len(t, entries, 3)
	assert.Same(t, c, entries[0].Function)
	assert.Same(t, a, entries[1].Function)
	assert.Same(t, b, entries[2].Function)
	assert.Equal(t, []int{5, 10}, tbl.Priorities("h"))
}

func TestTable_RemoveByIdentity(t *testing.T) {
	tbl := hook.NewTable()
	a := hook.Named("a", nil)
	b := hook.Named("b", nil)
	tbl.Add("h", 10, hook.Entry{Function: a, AcceptedArgs: 1})
	tbl.Add("h", 10, hook.Entry{Function: b, AcceptedArgs: 1})

	assert.False(t, tbl.Remove("h", a, 20), "wrong priority")
	assert.False(t, tbl.Remove("other", a, 10), "wrong name")
	assert.True(t, tbl.Remove("h", a, 10))
	assert.Equal(t, 1, tbl.Len())

	assert.True(t, tbl.Remove("h", b, 10))
	assert.False(t, tbl.Has("h"), "empty names are pruned")
	assert.Empty(t, tbl)
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := hook.NewTable()
	cb := hook.Named("a", nil)
	tbl.Add("h", 10, hook.Entry{Function: cb, AcceptedArgs: 1})

	cp := tbl.Clone()
	cp.Add("h", 10, hook.Entry{Function: cb, AcceptedArgs: 2})

	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 2, cp.Len())
	assert.Equal(t, []string{"h"}, cp.Names())
}
