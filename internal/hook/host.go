package hook

// Host is the registration surface of the host event system.
// Implementations own dispatch; callers only add and remove.
type Host interface {
	// AddFilter registers a value-transforming callback.
	AddFilter(name string, cb *Callback, priority, acceptedArgs int) bool

	// AddAction registers a side-effect callback.
	AddAction(name string, cb *Callback, priority, acceptedArgs int) bool

	// RemoveFilter removes cb from name at priority.
	RemoveFilter(name string, cb *Callback, priority int) bool

	// RemoveAction removes cb from name at priority.
	RemoveAction(name string, cb *Callback, priority int) bool
}

// Dispatcher is implemented by hosts that can run their hooks.
type Dispatcher interface {
	// ApplyFilters threads value through every filter on name.
	ApplyFilters(name string, value any, args ...any) any

	// DoAction runs every action on name.
	DoAction(name string, args ...any)
}
