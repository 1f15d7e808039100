// Package beanshell plugs the bsh interpreter into the scripting host: a
// Bindings view over an interpreter namespace, and a ScriptLanguage that
// builds engines around fresh interpreters.
package beanshell

import (
	"iter"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/scijava/scripting-beanshell/bsh"
	"github.com/scijava/scripting-beanshell/scripting"
)

// Bindings presents the global namespace of an interpreter as
// scripting.Bindings. It holds no state of its own: every call reads or
// writes the namespace.
//
// Lookup and assignment failures are absorbed. Reads yield nil and writes
// are dropped, so callers cannot tell an undefined variable from one whose
// lookup failed. Use WithErrorHandler to observe the absorbed errors.
//
// ContainsKey is Get(name) != nil. A variable bound to Go nil therefore
// reports false, the same as an undefined one.
type Bindings struct {
	interp  *bsh.Interpreter
	ns      *bsh.NameSpace
	log     *zap.Logger
	onError func(op, name string, err error)
}

var _ scripting.Bindings = (*Bindings)(nil)

type BindingsOption func(*Bindings)

// WithLogger sets where absorbed errors are logged, at debug level.
func WithLogger(logger *zap.Logger) BindingsOption {
	return func(b *Bindings) { b.log = logger }
}

// WithErrorHandler reports every absorbed error to fn. op is the Bindings
// method that absorbed it.
func WithErrorHandler(fn func(op, name string, err error)) BindingsOption {
	return func(b *Bindings) { b.onError = fn }
}

// NewBindings returns a view over the global namespace of interp. The view
// is only valid while interp is.
func NewBindings(interp *bsh.Interpreter, opts ...BindingsOption) *Bindings {
	b := &Bindings{
		interp: interp,
		ns:     interp.NameSpace(),
		log:    interp.Config().Logger.Named("bindings"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bindings) absorb(op, name string, err error) {
	b.log.Debug("absorbed binding error",
		zap.String("op", op),
		zap.String("name", name),
		zap.Error(err))
	if b.onError != nil {
		b.onError(op, name, err)
	}
}

func (b *Bindings) Size() int { return len(b.ns.VariableNames()) }

func (b *Bindings) IsEmpty() bool { return b.Size() == 0 }

// Get returns the value of name, evaluated by the interpreter. Dotted names
// read through fields and map keys.
func (b *Bindings) Get(name string) any {
	return b.get("get", name)
}

func (b *Bindings) get(op, name string) any {
	val, err := b.ns.Get(name, b.interp)
	if err != nil {
		b.absorb(op, name, err)
		return nil
	}
	return val
}

func (b *Bindings) ContainsKey(name string) bool {
	return b.get("containsKey", name) != nil
}

func (b *Bindings) ContainsValue(value any) bool {
	return slices.ContainsFunc(b.Values(), func(v any) bool { return reflect.DeepEqual(value, v) })
}

// Put assigns name loosely and returns the previous value.
func (b *Bindings) Put(name string, value any) any {
	prev := b.get("put", name)
	if err := b.ns.SetVariable(name, value, false); err != nil {
		b.absorb("put", name, err)
	}
	return prev
}

func (b *Bindings) Remove(name string) any {
	prev := b.get("remove", name)
	b.ns.UnsetVariable(name)
	return prev
}

// PutAll puts each pair in turn. A rejected value does not stop the rest.
func (b *Bindings) PutAll(entries iter.Seq2[string, any]) {
	for name, value := range entries {
		b.Put(name, value)
	}
}

// Clear removes every variable. Scripted methods survive.
func (b *Bindings) Clear() { b.ns.Clear() }

func (b *Bindings) KeySet() map[string]struct{} {
	names := b.ns.VariableNames()
	keys := make(map[string]struct{}, len(names))
	for _, name := range names {
		keys[name] = struct{}{}
	}
	return keys
}

// Values lists the variable values in declaration order. Variables whose
// lookup fails are left out.
func (b *Bindings) Values() []any {
	names := b.ns.VariableNames()
	out := make([]any, 0, len(names))
	for _, name := range names {
		val, err := b.ns.Get(name, b.interp)
		if err != nil {
			b.absorb("values", name, err)
			continue
		}
		out = append(out, val)
	}
	return out
}

// EntrySet returns an entry per variable. Entry values are read when asked
// for; entries cannot be written.
func (b *Bindings) EntrySet() []scripting.Entry {
	names := b.ns.VariableNames()
	out := make([]scripting.Entry, len(names))
	for i, name := range names {
		out[i] = entry{bindings: b, name: name}
	}
	return out
}

type entry struct {
	bindings *Bindings
	name     string
}

func (e entry) Key() string { return e.name }

func (e entry) Value() any { return e.bindings.Get(e.name) }

func (e entry) SetValue(any) (any, error) {
	return nil, scripting.ErrUnsupportedOperation
}
