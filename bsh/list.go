package bsh

import (
	"slices"
	"sync"
)

// List is the growable list scripts create with `new ArrayList()`. Its
// methods are reached from scripts through reflection (list.add(x)).
type List struct {
	mu    sync.RWMutex
	elems []any
}

// NewList returns a List holding elems.
func NewList(elems ...any) *List {
	return &List{elems: slices.Clone(elems)}
}

func (l *List) Add(v any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.elems = append(l.elems, v)
	return true
}

func (l *List) Get(i int) (any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.elems) {
		return nil, &indexOutOfBounds{index: i, length: len(l.elems)}
	}
	return l.elems[i], nil
}

// Set replaces element i and returns the previous element.
func (l *List) Set(i int, v any) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.elems) {
		return nil, &indexOutOfBounds{index: i, length: len(l.elems)}
	}
	prev := l.elems[i]
	l.elems[i] = v
	return prev, nil
}

// Remove deletes element i and returns it.
func (l *List) Remove(i int) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.elems) {
		return nil, &indexOutOfBounds{index: i, length: len(l.elems)}
	}
	prev := l.elems[i]
	l.elems = slices.Delete(l.elems, i, i+1)
	return prev, nil
}

func (l *List) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.elems)
}

func (l *List) IsEmpty() bool { return l.Size() == 0 }

func (l *List) Contains(v any) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.ContainsFunc(l.elems, func(el any) bool { return valuesEqual(el, v) })
}

func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.elems = nil
}

func (l *List) items() []any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.elems)
}

func (l *List) String() string {
	return FormatValue(l.items())
}
