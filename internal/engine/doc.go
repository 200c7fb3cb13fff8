// Package engine is the host event engine hookkit registers into.
//
// Callbacks live in a name -> priority -> entries registry, the same shape
// as hook.Table, so a table filled before boot is consumed as-is:
//
//	pending := hook.NewTable()
//	pending.Add("the_title", 10, hook.Entry{Function: cb, AcceptedArgs: 1})
//	e := engine.NewFromTable(pending)
//	title := e.ApplyFilters("the_title", "Hello")
//
// # Dispatch Order
//
// Priorities run in ascending numeric order. Within one priority, callbacks
// run in registration order. Each callback receives the dispatch arguments
// truncated to its accepted-argument count; for filters the first argument
// is the current value and the return value replaces it.
//
// # Mutation During Dispatch
//
// A callback removed while a dispatch is in flight is skipped for the rest
// of that dispatch. A callback added at a priority that has not been reached
// yet runs in the same dispatch. Callbacks run without the engine lock held,
// so they may add, remove, or dispatch recursively up to Config.MaxDepth.
package engine
