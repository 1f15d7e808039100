package bsh

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Variable is a namespace entry. Type is nil for loosely typed variables.
type Variable struct {
	Name  string
	Type  *TypeRef
	Value any
}

// Method is a scripted method bound to the namespace it was declared in.
type Method struct {
	Decl *MethodDecl
	ns   *NameSpace
}

func (m *Method) Name() string { return m.Decl.Name }

// NameSpace is a scope of variables and methods. Variables and methods live
// in separate tables; clearing or unsetting variables leaves methods alone.
//
// Block namespaces hold the typed declarations of a block. Loosely typed
// assignments inside a block land in the nearest enclosing non-block
// namespace.
type NameSpace struct {
	mu      sync.RWMutex
	name    string
	parent  *NameSpace
	isBlock bool
	vars    map[string]*Variable
	order   []string
	methods map[string][]*Method
}

// NewNameSpace creates a namespace whose lookups fall back to parent.
func NewNameSpace(parent *NameSpace, name string) *NameSpace {
	return &NameSpace{
		name:    name,
		parent:  parent,
		vars:    make(map[string]*Variable),
		methods: make(map[string][]*Method),
	}
}

func newBlockNameSpace(parent *NameSpace) *NameSpace {
	ns := NewNameSpace(parent, parent.name+"/block")
	ns.isBlock = true
	return ns
}

func (ns *NameSpace) Name() string { return ns.name }

func (ns *NameSpace) Parent() *NameSpace { return ns.parent }

// VariableNames lists the variables defined directly in ns, in the order
// they were first defined.
func (ns *NameSpace) VariableNames() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return slices.Clone(ns.order)
}

// Get returns the value of name, resolving parent namespaces. A dotted name
// such as a.b.c reads fields and map keys of the value bound to a. An
// undefined first segment yields (nil, nil); any later failure is an error.
func (ns *NameSpace) Get(name string, interp *Interpreter) (any, error) {
	first, rest, compound := strings.Cut(name, ".")
	v, _, ok := ns.lookup(first)
	if !ok {
		return nil, nil
	}
	value, err := resolveValue(v.Value, interp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", first, err)
	}
	if !compound {
		return value, nil
	}
	for _, field := range strings.Split(rest, ".") {
		value, err = memberValue(value, field)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return value, nil
}

func resolveValue(v any, interp *Interpreter) (any, error) {
	if getter, ok := v.(Getter); ok {
		return getter.Get(interp)
	}
	return v, nil
}

// lookup finds the variable and the namespace that owns it.
func (ns *NameSpace) lookup(name string) (Variable, *NameSpace, bool) {
	for cur := ns; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.vars[name]
		var snapshot Variable
		if ok {
			snapshot = *v
		}
		cur.mu.RUnlock()
		if ok {
			return snapshot, cur, true
		}
	}
	return Variable{}, nil, false
}

// SetVariable assigns name, defining it if it does not exist. Typed
// variables keep their type and reject incompatible values. In strict mode
// assigning an undeclared name is an error.
func (ns *NameSpace) SetVariable(name string, value any, strict bool) error {
	_, err := ns.assign(name, value, strict)
	return err
}

func (ns *NameSpace) assign(name string, value any, strict bool) (any, error) {
	if _, owner, ok := ns.lookup(name); ok {
		return owner.store(name, value)
	}
	if strict {
		return nil, fmt.Errorf("undeclared variable: %s", name)
	}
	if value == Void {
		return nil, fmt.Errorf("cannot assign void value to %s", name)
	}
	target := ns
	for target.isBlock && target.parent != nil {
		target = target.parent
	}
	target.define(name, nil, value)
	return value, nil
}

func (ns *NameSpace) store(name string, value any) (any, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	v, ok := ns.vars[name]
	if !ok {
		v = &Variable{Name: name}
		ns.vars[name] = v
		ns.order = append(ns.order, name)
	}
	converted, err := coerce(value, v.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	v.Value = converted
	return converted, nil
}

// DeclareVariable defines name directly in ns with an optional type,
// replacing an earlier definition in ns.
func (ns *NameSpace) DeclareVariable(name string, t *TypeRef, value any) error {
	converted, err := coerce(value, t)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	ns.define(name, t, converted)
	return nil
}

func (ns *NameSpace) define(name string, t *TypeRef, value any) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if _, exists := ns.vars[name]; !exists {
		ns.order = append(ns.order, name)
	}
	ns.vars[name] = &Variable{Name: name, Type: t, Value: value}
}

// VariableType returns the declared type of a variable visible from ns, or
// nil when it is loosely typed or undefined.
func (ns *NameSpace) VariableType(name string) *TypeRef {
	v, _, _ := ns.lookup(name)
	return v.Type
}

// UnsetVariable removes name from ns. Parent namespaces are not touched.
func (ns *NameSpace) UnsetVariable(name string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if _, ok := ns.vars[name]; !ok {
		return
	}
	delete(ns.vars, name)
	ns.order = slices.DeleteFunc(ns.order, func(n string) bool { return n == name })
}

// Clear removes every variable defined in ns. Methods are kept.
func (ns *NameSpace) Clear() {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.vars = make(map[string]*Variable)
	ns.order = nil
}

// SetMethod declares m in ns, replacing a method with the same name and
// parameter count.
func (ns *NameSpace) SetMethod(m *Method) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	name := m.Decl.Name
	overloads := ns.methods[name]
	for i, existing := range overloads {
		if len(existing.Decl.Params) == len(m.Decl.Params) {
			overloads[i] = m
			return
		}
	}
	ns.methods[name] = append(overloads, m)
}

// Method finds a method by name and arity in ns or its parents.
func (ns *NameSpace) Method(name string, arity int) (*Method, bool) {
	for cur := ns; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		overloads := cur.methods[name]
		cur.mu.RUnlock()
		for _, m := range overloads {
			if len(m.Decl.Params) == arity {
				return m, true
			}
		}
	}
	return nil, false
}

func (ns *NameSpace) hasMethod(name string) bool {
	for cur := ns; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		n := len(cur.methods[name])
		cur.mu.RUnlock()
		if n > 0 {
			return true
		}
	}
	return false
}

// MethodNames lists the methods declared directly in ns, sorted.
func (ns *NameSpace) MethodNames() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	names := make([]string, 0, len(ns.methods))
	for name := range ns.methods {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
