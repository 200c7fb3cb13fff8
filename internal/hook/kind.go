package hook

import "fmt"

// Kind distinguishes value-transforming filters from side-effect actions.
type Kind int

const (
	// KindFilter transforms and returns a value.
	KindFilter Kind = iota

	// KindAction runs for side effects only.
	KindAction
)

// Registration defaults.
const (
	DefaultPriority     = 10
	DefaultAcceptedArgs = 1
)

// String returns "filter" or "action".
func (k Kind) String() string {
	switch k {
	case KindFilter:
		return "filter"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// ParseKind parses "filter" or "action".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "filter", "filters":
		return KindFilter, nil
	case "action", "actions":
		return KindAction, nil
	default:
		return 0, fmt.Errorf("unknown hook kind %q", s)
	}
}
