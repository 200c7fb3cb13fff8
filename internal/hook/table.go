package hook

import "sort"

// Entry is one callback stored at a priority.
type Entry struct {
	Function     *Callback `json:"function" yaml:"function" toml:"function"`
	AcceptedArgs int       `json:"accepted_args" yaml:"accepted_args" toml:"accepted_args"`
}

// Table is the pre-initialization hook storage:
// hook name -> priority -> entries in registration order.
//
// Table is not safe for concurrent use; owners guard it.
type Table map[string]map[int][]Entry

// NewTable returns an empty table.
func NewTable() Table {
	return make(Table)
}

// Add appends e to name at priority, creating the buckets as needed.
func (t Table) Add(name string, priority int, e Entry) {
	buckets, ok := t[name]
	if !ok {
		buckets = make(map[int][]Entry)
		t[name] = buckets
	}
	buckets[priority] = append(buckets[priority], e)
}

// Remove deletes the first entry for cb at name and priority.
// Empty buckets and names are pruned.
func (t Table) Remove(name string, cb *Callback, priority int) bool {
	buckets, ok := t[name]
	if !ok {
		return false
	}
	entries := buckets[priority]
	for i, e := range entries {
		if e.Function != cb {
			continue
		}
		rest := make([]Entry, 0, len(entries)-1)
		rest = append(rest, entries[:i]...)
		rest = append(rest, entries[i+1:]...)
		if len(rest) == 0 {
			delete(buckets, priority)
		} else {
			buckets[priority] = rest
		}
		if len(buckets) == 0 {
			delete(t, name)
		}
		return true
	}
	return false
}

// Has reports whether any entry is stored for name.
func (t Table) Has(name string) bool {
	return len(t[name]) > 0
}

// Priorities returns the priorities registered for name in ascending order.
func (t Table) Priorities(name string) []int {
	buckets := t[name]
	if len(buckets) == 0 {
		return nil
	}
	prios := make([]int, 0, len(buckets))
	for p := range buckets {
		prios = append(prios, p)
	}
	sort.Ints(prios)
	return prios
}

// Entries returns name's entries flattened in dispatch order.
func (t Table) Entries(name string) []Entry {
	var out []Entry
	for _, p := range t.Priorities(name) {
		out = append(out, t[name][p]...)
	}
	return out
}

// Names returns the hook names in the table, sorted.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of entries.
func (t Table) Len() int {
	n := 0
	for _, buckets := range t {
		for _, entries := range buckets {
			n += len(entries)
		}
	}
	return n
}

// Clone returns a deep copy of the table structure. Callbacks are shared.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for name, buckets := range t {
		cp := make(map[int][]Entry, len(buckets))
		for p, entries := range buckets {
			cp[p] = append([]Entry(nil), entries...)
		}
		out[name] = cp
	}
	return out
}
