package bsh

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

type indexOutOfBounds struct {
	index  int
	length int
}

func (e *indexOutOfBounds) Error() string {
	return fmt.Sprintf("index %d out of bounds for length %d", e.index, e.length)
}

func errNotIterable(v any) error {
	return fmt.Errorf("cannot iterate over %s", TypeName(v))
}

// exportedName capitalizes a script member name so that size matches Size.
func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func derefValue(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv
		}
		rv = rv.Elem()
	}
	return rv
}

// memberValue reads a field, map key or array length.
func memberValue(obj any, name string) (any, error) {
	if IsNull(obj) {
		return nil, fmt.Errorf("cannot read %s of null", name)
	}
	if l, ok := obj.(*List); ok && name == "length" {
		return l.Size(), nil
	}
	rv := derefValue(reflect.ValueOf(obj))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if name == "length" {
			return rv.Len(), nil
		}
	case reflect.Map:
		key, err := convertArg(name, rv.Type().Key())
		if err != nil {
			return nil, err
		}
		val := rv.MapIndex(key)
		if !val.IsValid() {
			return Null, nil
		}
		return fromReflect(val), nil
	case reflect.Struct:
		for _, candidate := range []string{name, exportedName(name)} {
			field, ok := rv.Type().FieldByName(candidate)
			if ok && field.IsExported() {
				return fromReflect(rv.FieldByIndex(field.Index)), nil
			}
		}
	}
	return nil, fmt.Errorf("no field %s on %s", name, TypeName(obj))
}

func setMember(obj any, name string, value any) error {
	rv := derefValue(reflect.ValueOf(obj))
	switch rv.Kind() {
	case reflect.Map:
		key, err := convertArg(name, rv.Type().Key())
		if err != nil {
			return err
		}
		val, err := convertArg(value, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.SetMapIndex(key, val)
		return nil
	case reflect.Struct:
		for _, candidate := range []string{name, exportedName(name)} {
			field, ok := rv.Type().FieldByName(candidate)
			if !ok || !field.IsExported() {
				continue
			}
			fv := rv.FieldByIndex(field.Index)
			if !fv.CanSet() {
				return fmt.Errorf("field %s of %s is not settable", name, TypeName(obj))
			}
			val, err := convertArg(value, fv.Type())
			if err != nil {
				return err
			}
			fv.Set(val)
			return nil
		}
	}
	return fmt.Errorf("no field %s on %s", name, TypeName(obj))
}

func indexValue(obj, idx any) (any, error) {
	switch o := obj.(type) {
	case string:
		runes := []rune(o)
		i, err := intIndex(idx, len(runes))
		if err != nil {
			return nil, err
		}
		return Char(runes[i]), nil
	case *List:
		return o.Get(idxInt(idx))
	}
	rv := derefValue(reflect.ValueOf(obj))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := intIndex(idx, rv.Len())
		if err != nil {
			return nil, err
		}
		return fromReflect(rv.Index(i)), nil
	case reflect.Map:
		key, err := convertArg(idx, rv.Type().Key())
		if err != nil {
			return nil, err
		}
		val := rv.MapIndex(key)
		if !val.IsValid() {
			return Null, nil
		}
		return fromReflect(val), nil
	default:
		return nil, fmt.Errorf("cannot index %s", TypeName(obj))
	}
}

func setIndex(obj, idx, value any) error {
	if l, ok := obj.(*List); ok {
		_, err := l.Set(idxInt(idx), value)
		return err
	}
	rv := derefValue(reflect.ValueOf(obj))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := intIndex(idx, rv.Len())
		if err != nil {
			return err
		}
		el := rv.Index(i)
		if !el.CanSet() {
			return fmt.Errorf("cannot assign into %s", TypeName(obj))
		}
		val, err := convertArg(value, el.Type())
		if err != nil {
			return err
		}
		el.Set(val)
		return nil
	case reflect.Map:
		key, err := convertArg(idx, rv.Type().Key())
		if err != nil {
			return err
		}
		val, err := convertArg(value, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.SetMapIndex(key, val)
		return nil
	default:
		return fmt.Errorf("cannot index %s", TypeName(obj))
	}
}

func idxInt(idx any) int {
	if numericRank(idx) == rankInt {
		return int(toInt64(idx))
	}
	return -1
}

func intIndex(idx any, length int) (int, error) {
	if numericRank(idx) != rankInt {
		return 0, fmt.Errorf("index must be int, got %s", TypeName(idx))
	}
	i := int(toInt64(idx))
	if i < 0 || i >= length {
		return 0, &indexOutOfBounds{index: i, length: length}
	}
	return i, nil
}

func sortedKeys(rv reflect.Value) []any {
	keys := rv.MapKeys()
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k.Interface()
	}
	slices.SortFunc(out, func(a, b any) int {
		return strings.Compare(FormatValue(a), FormatValue(b))
	})
	return out
}

var errorType = reflect.TypeFor[error]()

// convertArg converts a script value to t for a host call or store.
func convertArg(v any, t reflect.Type) (reflect.Value, error) {
	if IsNull(v) {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use null as %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if numericRank(v) != rankNone && isNumericKind(t.Kind()) {
		return rv.Convert(t), nil
	}
	if c, ok := v.(Char); ok && t.Kind() == reflect.String {
		return reflect.ValueOf(string(rune(c))).Convert(t), nil
	}
	if rv.Kind() == reflect.String && t.Kind() == reflect.String {
		return rv.Convert(t), nil
	}
	if s, ok := v.([]any); ok && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, len(s), len(s))
		for i, el := range s {
			ev, err := convertArg(el, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", TypeName(v), t)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// fromReflect unwraps a reflected value, mapping nil references to Null.
func fromReflect(rv reflect.Value) any {
	if !rv.IsValid() {
		return Null
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return Null
		}
	}
	if !rv.CanInterface() {
		return Null
	}
	return rv.Interface()
}

// callFunc invokes a Go function with script arguments. A trailing error
// result that is non-nil is returned as the call's error.
func callFunc(fn reflect.Value, args []any) (any, error) {
	ft := fn.Type()
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		val, err := convertArg(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in[i] = val
	}

	out := fn.Call(in)
	if len(out) > 0 && ft.Out(len(out)-1) == errorType {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return nil, &hostError{err: errVal.Interface().(error)}
		}
		out = out[:len(out)-1]
	}
	switch len(out) {
	case 0:
		return Void, nil
	case 1:
		return fromReflect(out[0]), nil
	default:
		vals := make([]any, len(out))
		for i, o := range out {
			vals[i] = fromReflect(o)
		}
		return vals, nil
	}
}

// hostError marks an error returned by host code, which scripts may catch.
type hostError struct {
	err error
}

func (e *hostError) Error() string { return e.err.Error() }

func (e *hostError) Unwrap() error { return e.err }

func asHostError(err error) (error, bool) {
	var he *hostError
	if errors.As(err, &he) {
		return he.err, true
	}
	return nil, false
}

// findMethod resolves a method on obj by the script name or its capitalized
// Go form.
func findMethod(obj any, name string) (reflect.Value, bool) {
	rv := reflect.ValueOf(obj)
	for _, candidate := range []string{name, exportedName(name)} {
		if m := rv.MethodByName(candidate); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}
