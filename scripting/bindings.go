// Package scripting defines the host side of script language plugins: the
// variable bindings a host exchanges with a script, the engine and language
// contracts, a registry of languages, and a service that runs script files.
package scripting

import (
	"errors"
	"iter"
)

// ErrUnsupportedOperation is returned by mutations a view does not allow.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// Bindings is a mutable mapping from variable names to values that a host
// uses to inject values into a script and read results back out.
type Bindings interface {
	Size() int
	IsEmpty() bool
	// Get returns the value bound to name, or nil.
	Get(name string) any
	ContainsKey(name string) bool
	ContainsValue(value any) bool
	// Put binds name to value and returns the previous value.
	Put(name string, value any) any
	// Remove unbinds name and returns the previous value.
	Remove(name string) any
	// PutAll calls Put for each pair, in the order entries yields them.
	PutAll(entries iter.Seq2[string, any])
	Clear()
	KeySet() map[string]struct{}
	Values() []any
	EntrySet() []Entry
}

// Entry is one name/value pair of a Bindings.
type Entry interface {
	Key() string
	Value() any
	// SetValue replaces the value and returns the previous one.
	SetValue(value any) (any, error)
}

// All iterates the entries of b.
func All(b Bindings) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, e := range b.EntrySet() {
			if !yield(e.Key(), e.Value()) {
				return
			}
		}
	}
}
