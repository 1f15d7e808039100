package scripting

import (
	"iter"
	"reflect"
	"slices"
	"sync"
)

// SimpleBindings is a map-backed Bindings. Iteration follows insertion order.
// It is safe for concurrent use, so one instance can serve as the global
// scope of several engines.
type SimpleBindings struct {
	mu     sync.RWMutex
	values map[string]any
	order  []string
}

var _ Bindings = (*SimpleBindings)(nil)

func NewSimpleBindings() *SimpleBindings {
	return &SimpleBindings{values: make(map[string]any)}
}

func (b *SimpleBindings) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}

func (b *SimpleBindings) IsEmpty() bool { return b.Size() == 0 }

func (b *SimpleBindings) Get(name string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.values[name]
}

// ContainsKey reports whether name is bound, even to nil.
func (b *SimpleBindings) ContainsKey(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.values[name]
	return ok
}

func (b *SimpleBindings) ContainsValue(value any) bool {
	return slices.ContainsFunc(b.Values(), func(v any) bool { return reflect.DeepEqual(v, value) })
}

func (b *SimpleBindings) Put(name string, value any) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, ok := b.values[name]
	if !ok {
		b.order = append(b.order, name)
	}
	b.values[name] = value
	return prev
}

func (b *SimpleBindings) Remove(name string) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, ok := b.values[name]
	if !ok {
		return nil
	}
	delete(b.values, name)
	b.order = slices.DeleteFunc(b.order, func(n string) bool { return n == name })
	return prev
}

func (b *SimpleBindings) PutAll(entries iter.Seq2[string, any]) {
	for name, value := range entries {
		b.Put(name, value)
	}
}

func (b *SimpleBindings) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string]any)
	b.order = nil
}

func (b *SimpleBindings) KeySet() map[string]struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make(map[string]struct{}, len(b.values))
	for name := range b.values {
		keys[name] = struct{}{}
	}
	return keys
}

func (b *SimpleBindings) Values() []any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]any, len(b.order))
	for i, name := range b.order {
		out[i] = b.values[name]
	}
	return out
}

func (b *SimpleBindings) EntrySet() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.order))
	for i, name := range b.order {
		out[i] = simpleEntry{bindings: b, key: name}
	}
	return out
}

type simpleEntry struct {
	bindings *SimpleBindings
	key      string
}

func (e simpleEntry) Key() string { return e.key }

func (e simpleEntry) Value() any { return e.bindings.Get(e.key) }

// SetValue writes through to the bindings.
func (e simpleEntry) SetValue(value any) (any, error) {
	return e.bindings.Put(e.key, value), nil
}
