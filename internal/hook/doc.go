// Package hook defines the vocabulary shared by the registrar and the host
// event engine: callbacks, hook kinds, the pre-initialization table and the
// host contract.
//
// # Callbacks
//
// A Callback is a pointer, so its identity survives being stored in the
// host registry or the pre-init table. Removal always matches by identity:
//
//	cb := hook.NewCallback(func(args ...any) any {
//	    return args[0].(string) + "_filtered"
//	})
//	host.AddFilter("the_title", cb, hook.DefaultPriority, hook.DefaultAcceptedArgs)
//	host.RemoveFilter("the_title", cb, hook.DefaultPriority)
//
// Plain functions, bound methods and closures are all wrapped the same way.
//
// # Pre-initialization Table
//
// Table is the structure a host consumes when it boots:
//
//	name -> priority -> []Entry{Function, AcceptedArgs}
//
// Entries at one priority keep insertion order. Priorities are visited in
// ascending order.
package hook
