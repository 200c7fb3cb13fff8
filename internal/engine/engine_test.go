package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hookkit/internal/engine"
	"github.com/dshills/hookkit/internal/hook"
)

func suffix(s string) *hook.Callback {
	return hook.NewCallback(func(args ...any) any {
		return args[0].(string) + s
	})
}

func TestApplyFilters_PriorityOrder(t *testing.T) {
	e := engine.New()

	e.AddFilter("title", suffix("_second"), 15, 1)
	e.AddFilter("title", suffix("_first"), 5, 1)

	assert.Equal(t, "orig_first_second", e.ApplyFilters("title", "orig"))
}

func TestApplyFilters_FIFOWithinPriority(t *testing.T) {
	e := engine.New()

	e.AddFilter("title", suffix("_a"), 10, 1)
	e.AddFilter("title", suffix("_b"), 10, 1)
	e.AddFilter("title", suffix("_c"), 10, 1)

	assert.Equal(t, "v_a_b_c", e.ApplyFilters("title", "v"))
}

func TestConfig(t *testing.T) {
	assert.Equal(t, engine.DefaultConfig(), engine.New().Config())
	assert.Equal(t, 3, engine.New(engine.WithConfig(engine.Config{MaxDepth: 3})).Config().MaxDepth)
}

func TestApplyFilters_NoCallbacksReturnsValue(t *testing.T) {
	e := engine.New()
	assert.Equal(t, 42, e.ApplyFilters("missing", 42))
	assert.Equal(t, 1, e.DidFilter("missing"))
}

func TestApplyFilters_AcceptedArgs(t *testing.T) {
	e := engine.New()
	var seen []int

	for _, n := range []int{0, 1, 3, 10} {
		n := n
		e.AddFilter("h", hook.NewCallback(func(args ...any) any {
			seen = append(seen, len(args))
			if len(args) == 0 {
				return "reset"
			}
			return args[0]
		}), 10, n)
	}

	got := e.ApplyFilters("h", "v", "a", "b")
	assert.Equal(t, "reset", got)
	assert.Equal(t, []int{0, 1, 3, 3}, seen)
}

func TestDoAction_ArgsAndOrder(t *testing.T) {
	e := engine.New()
	var order []string

	e.AddAction("save", hook.Action(func(args ...any) { order = append(order, "second") }), 15, 0)
	e.AddAction("save", hook.Action(func(args ...any) {
		order = append(order, "first:"+args[0].(string)+args[1].(string))
	}), 5, 2)

	e.DoAction("save", "foo", "bar")

	assert.Equal(t, []string{"first:foobar", "second"}, order)
	assert.Equal(t, 1, e.DidAction("save"))
}

func TestDoAction_CallbackCannotMutateArgs(t *testing.T) {
	e := engine.New()
	var seen any

	e.AddAction("save", hook.Action(func(args ...any) { args[0] = "mutated" }), 5, 1)
	e.AddAction("save", hook.Action(func(args ...any) { seen = args[0] }), 10, 1)

	args := []any{"post", "extra"}
	e.DoAction("save", args...)

	assert.Equal(t, "post", seen)
	assert.Equal(t, []any{"post", "extra"}, args)
}

func TestDispatch_RemovedDuringDispatchIsSkipped(t *testing.T) {
	e := engine.New()
	var ran []string

	victim := hook.Action(func(args ...any) { ran = append(ran, "victim") })
	e.AddAction("h", hook.Action(func(args ...any) {
		ran = append(ran, "remover")
		e.RemoveAction("h", victim, 20)
	}), 10, 0)
	e.AddAction("h", victim, 20, 0)

	e.DoAction("h")

	assert.Equal(t, []string{"remover"}, ran)
	assert.Equal(t, 1, e.Count("h"))
}

func TestDispatch_SelfRemovalDuringDispatch(t *testing.T) {
	e := engine.New()
	calls := 0

	var self *hook.Callback
	self = hook.NewCallback(func(args ...any) any {
		e.RemoveFilter("h", self, 10)
		calls++
		return args[0].(string) + "_once"
	})
	e.AddFilter("h", self, 10, 1)
	e.AddFilter("h", suffix("_after"), 10, 1)

	assert.Equal(t, "v_once_after", e.ApplyFilters("h", "v"))
	assert.Equal(t, "v_after", e.ApplyFilters("h", "v"))
	assert.Equal(t, 1, calls)
}

func TestDispatch_AddedAtLaterPriorityRuns(t *testing.T) {
	e := engine.New()

	e.AddFilter("h", hook.NewCallback(func(args ...any) any {
		e.AddFilter("h", suffix("_late"), 50, 1)
		return args[0].(string) + "_early"
	}), 10, 1)

	assert.Equal(t, "v_early_late", e.ApplyFilters("h", "v"))
}

func TestDispatch_CurrentAndDoing(t *testing.T) {
	e := engine.New()
	var current []string

	e.AddAction("outer", hook.Action(func(args ...any) {
		current = append(current, e.Current())
		e.DoAction("inner")
		assert.False(t, e.Doing("inner"))
	}), 10, 0)
	e.AddAction("inner", hook.Action(func(args ...any) {
		current = append(current, e.Current())
		assert.True(t, e.Doing("outer"))
	}), 10, 0)

	e.DoAction("outer")

	assert.Equal(t, []string{"outer", "inner"}, current)
	assert.Empty(t, e.Current())
}

func TestDispatch_MaxDepth(t *testing.T) {
	e := engine.New(engine.WithConfig(engine.Config{MaxDepth: 3}))
	depth := 0

	e.AddFilter("loop", hook.NewCallback(func(args ...any) any {
		depth++
		return e.ApplyFilters("loop", args[0].(int)+1)
	}), 10, 1)

	assert.Equal(t, 3, e.ApplyFilters("loop", 0))
	assert.Equal(t, 3, depth)
}

func TestAdd_RejectsInvalid(t *testing.T) {
	e := engine.New()
	assert.False(t, e.AddFilter("", suffix("x"), 10, 1))
	assert.False(t, e.AddAction("h", nil, 10, 1))
	assert.False(t, e.HasFilter("h"))
}

func TestConsume_PendingEntriesComeFirst(t *testing.T) {
	pending := hook.NewTable()
	early := suffix("_early")
	pending.Add("h", 10, hook.Entry{Function: early, AcceptedArgs: 1})
	pending.Add("h", 5, hook.Entry{Function: suffix("_five"), AcceptedArgs: 1})

	e := engine.New()
	e.AddFilter("h", suffix("_late"), 10, 1)
	e.Consume(pending)

	assert.Equal(t, "v_five_early_late", e.ApplyFilters("h", "v"))

	prio, ok := e.HasFilterCallback("h", early)
	require.True(t, ok)
	assert.Equal(t, 10, prio)
}

func TestNewFromTable_Snapshot(t *testing.T) {
	cb := suffix("_x")
	pending := hook.Table{"x": {10: {{Function: cb, AcceptedArgs: 3}}}}

	e := engine.NewFromTable(pending)

	assert.Equal(t, pending, e.Snapshot())
	assert.True(t, e.RemoveAllFilters("x"))
	assert.False(t, e.HasFilter("x"))
	assert.Equal(t, 1, pending.Len(), "snapshot and source stay independent")
}
