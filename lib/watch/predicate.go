package watch

import "github.com/tkv-io/tkv/lib/value"

// Predicate is a condition over a key's snapshot used to decide when a
// waiter should be woken.
type Predicate struct {
	name string
	eval func(s Snapshot) bool
}

// Name returns the predicate's diagnostic name.
func (p Predicate) Name() string {
	return p.name
}

// Holds evaluates the predicate against a snapshot.
func (p Predicate) Holds(s Snapshot) bool {
	return p.eval(s)
}

// Exists is satisfied as soon as the key has a value.
func Exists() Predicate {
	return Predicate{
		name: "exists",
		eval: func(s Snapshot) bool { return s.Exists },
	}
}

// Absent is satisfied as soon as the key has no value.
func Absent() Predicate {
	return Predicate{
		name: "absent",
		eval: func(s Snapshot) bool { return !s.Exists },
	}
}

// ValueEquals is satisfied when the key holds a value equal to want
// (same variant, same contents; NaN floats never compare equal).
func ValueEquals(want *value.Value) Predicate {
	return Predicate{
		name: "equals",
		eval: func(s Snapshot) bool { return s.Exists && s.Value.Equal(want) },
	}
}

// VersionChanged is satisfied by any state differing from version since:
// a newer (or recreated) entry as well as a deletion.
func VersionChanged(since uint64) Predicate {
	return Predicate{
		name: "version",
		eval: func(s Snapshot) bool { return !s.Exists || s.Version != since },
	}
}

// Custom wraps an arbitrary snapshot condition. The name is used for
// diagnostics only.
func Custom(name string, fn func(s Snapshot) bool) Predicate {
	return Predicate{name: name, eval: fn}
}
