package bsh

import (
	"errors"
	"fmt"
	"reflect"
)

func (exec *Execution) evalArgs(exprs []Expression, ns *NameSpace) ([]any, error) {
	args := make([]any, len(exprs))
	for i, expr := range exprs {
		val, err := exec.evalExpression(expr, ns)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return args, nil
}

func (exec *Execution) evalCall(e *CallExpr, ns *NameSpace) (any, error) {
	switch callee := e.Callee.(type) {
	case *Identifier:
		args, err := exec.evalArgs(e.Args, ns)
		if err != nil {
			return nil, err
		}
		return exec.callNamed(callee.Name, args, ns, e.Pos())
	case *MemberExpr:
		obj, err := exec.evalExpression(callee.Object, ns)
		if err != nil {
			return nil, err
		}
		args, err := exec.evalArgs(e.Args, ns)
		if err != nil {
			return nil, err
		}
		return exec.callMember(obj, callee.Property, args, e.Pos())
	default:
		fn, err := exec.evalExpression(e.Callee, ns)
		if err != nil {
			return nil, err
		}
		args, err := exec.evalArgs(e.Args, ns)
		if err != nil {
			return nil, err
		}
		return exec.callValue(fn, args, e.Pos())
	}
}

// callNamed resolves a bare call: scripted methods first, then built-ins,
// then a variable holding a Go function.
func (exec *Execution) callNamed(name string, args []any, ns *NameSpace, pos Position) (any, error) {
	if m, ok := ns.Method(name, len(args)); ok {
		return exec.invokeMethod(m, args, pos)
	}
	if builtin, ok := lookupBuiltin(name); ok {
		return builtin(exec, ns, args, pos)
	}
	if v, _, ok := ns.lookup(name); ok {
		return exec.callValue(v.Value, args, pos)
	}
	if r := exec.interp.resolver; r != nil {
		if v, ok := r.Resolve(name); ok {
			return exec.callValue(v, args, pos)
		}
	}
	if ns.hasMethod(name) {
		return nil, exec.errorAt(pos, "no method %s taking %d arguments", name, len(args))
	}
	return nil, exec.errorAt(pos, "undefined method: %s", name)
}

func (exec *Execution) callValue(fn any, args []any, pos Position) (any, error) {
	if IsNull(fn) {
		return nil, exec.throwAt(pos, "NullPointerException", "cannot call null")
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, exec.errorAt(pos, "%s is not callable", TypeName(fn))
	}
	return exec.callHost(rv, args, pos)
}

func (exec *Execution) callHost(fn reflect.Value, args []any, pos Position) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, exec.errorAt(pos, "host call panicked: %v", r)
		}
	}()
	val, err := callFunc(fn, args)
	if err != nil {
		if inner, ok := asHostError(err); ok {
			var oob *indexOutOfBounds
			if errors.As(inner, &oob) {
				return nil, exec.indexError(oob, pos)
			}
			return nil, &TargetError{Value: inner, Pos: pos}
		}
		return nil, exec.wrapError(err, pos)
	}
	return val, nil
}

func (exec *Execution) invokeMethod(m *Method, args []any, pos Position) (any, error) {
	decl := m.Decl
	if len(exec.callStack) >= exec.recursionCap {
		return nil, exec.newEvalError(fmt.Sprintf("%s (%d)", ErrRecursionLimit, exec.recursionCap), pos, ErrRecursionLimit)
	}

	callNS := NewNameSpace(m.ns, decl.Name)
	for i, param := range decl.Params {
		if err := callNS.DeclareVariable(param.Name, param.Type, args[i]); err != nil {
			return nil, exec.errorAt(pos, "%s: argument %d: %v", decl.Name, i+1, err)
		}
	}

	exec.callStack = append(exec.callStack, StackFrame{Method: decl.Name, Pos: pos})
	defer func() { exec.callStack = exec.callStack[:len(exec.callStack)-1] }()

	val, returned, err := exec.evalStatements(decl.Body.Statements, callNS)
	if err != nil {
		if isLoopSignal(err) {
			return nil, exec.errorAt(decl.Pos(), "break or continue outside of loop in %s", decl.Name)
		}
		return nil, err
	}
	if !returned {
		val = Void
	}

	rt := decl.ReturnType
	switch {
	case rt == nil:
		return val, nil
	case rt.Name == "void" && rt.Dims == 0:
		return Void, nil
	case !returned:
		return nil, exec.errorAt(decl.Pos(), "%s: missing return value", decl.Name)
	}
	out, err := coerce(val, rt)
	if err != nil {
		return nil, exec.errorAt(pos, "%s: bad return value: %v", decl.Name, err)
	}
	return out, nil
}

// callMember dispatches obj.name(args).
func (exec *Execution) callMember(obj any, name string, args []any, pos Position) (any, error) {
	if IsNull(obj) {
		return nil, exec.throwAt(pos, "NullPointerException", "cannot call %s on null", name)
	}

	if s, ok := obj.(string); ok {
		val, found, err := stringMethod(s, name, args)
		if err != nil {
			return nil, exec.indexError(err, pos)
		}
		if found {
			return val, nil
		}
	}

	if rv := reflect.ValueOf(obj); rv.Kind() == reflect.Map {
		val, found, err := mapMethod(rv, name, args)
		if err != nil {
			return nil, exec.wrapError(err, pos)
		}
		if found {
			return val, nil
		}
	}

	if fn, ok := findMethod(obj, name); ok {
		return exec.callHost(fn, args, pos)
	}

	switch {
	case name == "toString" && len(args) == 0:
		return FormatValue(obj), nil
	case name == "equals" && len(args) == 1:
		return valuesEqual(obj, args[0]), nil
	case name == "getClass" && len(args) == 0:
		return TypeName(obj), nil
	}
	return nil, exec.errorAt(pos, "no method %s on %s", name, TypeName(obj))
}

// mapMethod gives Go maps the java.util.Map methods.
func mapMethod(rv reflect.Value, name string, args []any) (any, bool, error) {
	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("Map.%s expects %d arguments, got %d", name, n, len(args))
		}
		return nil
	}
	key := func() (reflect.Value, error) {
		return convertArg(args[0], rv.Type().Key())
	}

	switch name {
	case "get", "containsKey", "remove":
		if err := want(1); err != nil {
			return nil, true, err
		}
		k, err := key()
		if err != nil {
			return nil, true, err
		}
		val := rv.MapIndex(k)
		switch name {
		case "containsKey":
			return val.IsValid(), true, nil
		case "remove":
			if val.IsValid() {
				rv.SetMapIndex(k, reflect.Value{})
			}
		}
		if !val.IsValid() {
			return Null, true, nil
		}
		return fromReflect(val), true, nil
	case "put":
		if err := want(2); err != nil {
			return nil, true, err
		}
		k, err := key()
		if err != nil {
			return nil, true, err
		}
		v, err := convertArg(args[1], rv.Type().Elem())
		if err != nil {
			return nil, true, err
		}
		prev := rv.MapIndex(k)
		rv.SetMapIndex(k, v)
		if !prev.IsValid() {
			return Null, true, nil
		}
		return fromReflect(prev), true, nil
	case "size":
		if err := want(0); err != nil {
			return nil, true, err
		}
		return rv.Len(), true, nil
	case "isEmpty":
		if err := want(0); err != nil {
			return nil, true, err
		}
		return rv.Len() == 0, true, nil
	case "keySet":
		if err := want(0); err != nil {
			return nil, true, err
		}
		return sortedKeys(rv), true, nil
	case "values":
		if err := want(0); err != nil {
			return nil, true, err
		}
		keys := sortedKeys(rv)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = fromReflect(rv.MapIndex(reflect.ValueOf(k)))
		}
		return out, true, nil
	default:
		return nil, false, nil
	}
}
