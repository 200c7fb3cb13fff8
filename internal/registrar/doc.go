// Package registrar registers filters and actions against the host event
// system whether or not the host has booted yet.
//
// # Dual-mode Registration
//
// Every registration takes one of two paths:
//
//   - Delegate: the host's registration entry point is callable (or can be
//     loaded from the defined base path). The call goes straight to the
//     host, and the registrar remembers the host for good.
//   - Pre-init: the host is not available. The entry is appended to the
//     environment's pending table under name -> priority, the exact
//     structure the host adopts when it boots. No replay step exists.
//
// Once a host has been found the registrar never probes again, even if the
// environment is later reset. Reset exists for tests.
//
// # Wrappers
//
// The Once variants register a wrapper that removes itself from the host by
// name, priority and identity before calling through. The SideEffect
// variants register a wrapper that calls through and hands back its first
// argument, leaving the filtered value untouched.
//
//	r := registrar.New(bootstrap.Default())
//	r.AddFilter("the_title", hook.NewCallback(addSuffix), registrar.WithPriority(5))
//	r.AddActionOnce("init", hook.Action(setup))
//	r.AddFilterSideEffect("the_content", hook.NewCallback(record), registrar.WithAcceptedArgs(3))
package registrar
