package bsh

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Primitive is an interpreter-internal marker. Void is the value of a
// statement or method that produces nothing; Null is the value of the null
// literal. Hosts normalize both away at their boundary.
type Primitive struct {
	name string
}

func (p *Primitive) String() string { return p.name }

var (
	Void = &Primitive{name: "void"}
	Null = &Primitive{name: "null"}
)

// Char is the value of a char literal or a char-typed variable.
type Char rune

func (c Char) String() string { return string(rune(c)) }

// Getter is implemented by variable values that are computed when read.
// Lookup failures surface as evaluation errors.
type Getter interface {
	Get(interp *Interpreter) (any, error)
}

// GetterFunc adapts a function to Getter.
type GetterFunc func(interp *Interpreter) (any, error)

func (f GetterFunc) Get(interp *Interpreter) (any, error) { return f(interp) }

// IsNull reports whether v is Go nil or the Null sentinel.
func IsNull(v any) bool {
	return v == nil || v == Null
}

type numRank int

const (
	rankNone numRank = iota
	rankInt
	rankLong
	rankFloat
	rankDouble
)

func numericRank(v any) numRank {
	switch v.(type) {
	case int, int8, int16, int32, uint8, uint16, Char:
		return rankInt
	case int64, uint32, uint, uint64:
		return rankLong
	case float32:
		return rankFloat
	case float64:
		return rankDouble
	default:
		return rankNone
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint:
		return int64(n)
	case uint64:
		return int64(n)
	case Char:
		return int64(n)
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return float64(toInt64(v))
	}
}

func fromRank(rank numRank, i int64, f float64) any {
	switch rank {
	case rankInt:
		return int(i)
	case rankLong:
		return i
	case rankFloat:
		return float32(f)
	default:
		return f
	}
}

// FormatValue renders v the way print() does.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case *Primitive:
		return val.name
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatFloat(val, 64)
	case float32:
		return formatFloat(float64(val), 32)
	case Char:
		return val.String()
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// TypeName returns the script-level type name of v.
func TypeName(v any) string {
	switch v {
	case nil, Null:
		return "null"
	case Void:
		return "void"
	}
	if _, ok := v.(Char); ok {
		return "char"
	}
	if ex, ok := v.(*Exception); ok {
		return ex.Type
	}
	if _, ok := v.(error); ok {
		if name := reflectTypeName(reflect.TypeOf(v)); name != "" {
			return name
		}
		return "Exception"
	}
	return reflectTypeName(reflect.TypeOf(v))
}

func reflectTypeName(rt reflect.Type) string {
	switch rt.Kind() {
	case reflect.Int, reflect.Int32, reflect.Uint8, reflect.Uint16:
		if rt.Kind() == reflect.Uint8 {
			return "byte"
		}
		return "int"
	case reflect.Int64, reflect.Uint32, reflect.Uint, reflect.Uint64:
		return "long"
	case reflect.Int8:
		return "byte"
	case reflect.Int16:
		return "short"
	case reflect.Float32:
		return "float"
	case reflect.Float64:
		return "double"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "String"
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Interface {
			return "Object[]"
		}
		return reflectTypeName(rt.Elem()) + "[]"
	case reflect.Map:
		return "Map"
	case reflect.Func:
		return "Function"
	case reflect.Pointer:
		return reflectTypeName(rt.Elem())
	default:
		if rt.Name() != "" {
			return rt.Name()
		}
		return rt.String()
	}
}

// matchesType implements instanceof and catch clause matching.
func matchesType(v any, t *TypeRef) bool {
	if t == nil {
		return true
	}
	if IsNull(v) || v == Void {
		return false
	}
	name := t.String()
	if TypeName(v) == name {
		return true
	}
	if ex, ok := v.(*Exception); ok && exceptionParents[ex.Type] == name {
		return true
	}
	rt := reflect.TypeOf(v)
	switch name {
	case "Object":
		return true
	case "Number":
		_, isChar := v.(Char)
		return numericRank(v) != rankNone && !isChar
	case "Exception", "Throwable":
		_, ok := v.(error)
		return ok
	case "Map":
		return rt.Kind() == reflect.Map
	case "List", "ArrayList", "Collection", "Iterable":
		if _, ok := v.(*List); ok {
			return true
		}
		return rt.Kind() == reflect.Slice || rt.Kind() == reflect.Array
	}
	simple := simpleName(name)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name() == simple
}

// exceptionParents maps the runtime exceptions the interpreter raises to the
// class scripts commonly catch them by.
var exceptionParents = map[string]string{
	"ArithmeticException":            "RuntimeException",
	"NullPointerException":           "RuntimeException",
	"ArrayIndexOutOfBoundsException": "RuntimeException",
	"IndexOutOfBoundsException":      "RuntimeException",
	"ClassCastException":             "RuntimeException",
	"IllegalArgumentException":       "RuntimeException",
}

var primitiveTypes = map[string]bool{
	"int": true, "long": true, "double": true, "float": true,
	"boolean": true, "char": true, "byte": true, "short": true,
}

// defaultValue is the value of a typed variable declared without an
// initializer.
func defaultValue(t *TypeRef) any {
	if t == nil || t.Dims > 0 {
		return Null
	}
	switch t.Name {
	case "int":
		return 0
	case "long":
		return int64(0)
	case "double":
		return float64(0)
	case "float":
		return float32(0)
	case "boolean":
		return false
	case "char":
		return Char(0)
	case "byte":
		return int8(0)
	case "short":
		return int16(0)
	default:
		return Null
	}
}

// coerce applies assignment conversion: widening is allowed, narrowing is
// not. Unknown reference types accept any value.
func coerce(v any, t *TypeRef) (any, error) {
	if v == Void {
		return nil, fmt.Errorf("cannot assign void value")
	}
	if t == nil {
		return v, nil
	}
	if t.Dims > 0 {
		if IsNull(v) {
			return v, nil
		}
		kind := reflect.TypeOf(v).Kind()
		if kind != reflect.Slice && kind != reflect.Array {
			return nil, assignError(v, t)
		}
		return v, nil
	}
	if !primitiveTypes[t.Name] {
		if t.Name == "String" && !IsNull(v) {
			if _, ok := v.(string); !ok {
				return nil, assignError(v, t)
			}
		}
		return v, nil
	}
	if IsNull(v) {
		return nil, assignError(v, t)
	}

	rank := numericRank(v)
	switch t.Name {
	case "boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "int":
		if rank == rankInt {
			return int(toInt64(v)), nil
		}
	case "long":
		if rank == rankInt || rank == rankLong {
			return toInt64(v), nil
		}
	case "float":
		if rank != rankNone && rank <= rankFloat {
			return float32(toFloat64(v)), nil
		}
	case "double":
		if rank != rankNone {
			return toFloat64(v), nil
		}
	case "char":
		if c, ok := v.(Char); ok {
			return c, nil
		}
		if rank == rankInt {
			if n := toInt64(v); n >= 0 && n <= 0xFFFF {
				return Char(n), nil
			}
		}
	case "short":
		if rank == rankInt {
			if n := toInt64(v); n >= math.MinInt16 && n <= math.MaxInt16 {
				return int16(n), nil
			}
		}
	case "byte":
		if rank == rankInt {
			if n := toInt64(v); n >= math.MinInt8 && n <= math.MaxInt8 {
				return int8(n), nil
			}
		}
	}
	return nil, assignError(v, t)
}

func assignError(v any, t *TypeRef) error {
	return fmt.Errorf("cannot assign %s to %s", TypeName(v), t)
}

// cast applies an explicit conversion, which unlike coerce permits narrowing
// between numeric types.
func cast(v any, t *TypeRef) (any, error) {
	if t.Dims > 0 || !primitiveTypes[t.Name] {
		return coerce(v, t)
	}
	if t.Name == "boolean" {
		return coerce(v, t)
	}
	if numericRank(v) == rankNone {
		return nil, fmt.Errorf("cannot cast %s to %s", TypeName(v), t)
	}
	switch t.Name {
	case "int":
		return int(int32(toInt64(v))), nil
	case "long":
		return toInt64(v), nil
	case "float":
		return float32(toFloat64(v)), nil
	case "double":
		return toFloat64(v), nil
	case "char":
		return Char(uint16(toInt64(v))), nil
	case "short":
		return int16(toInt64(v)), nil
	default:
		return int8(toInt64(v)), nil
	}
}

// valuesEqual implements ==. Numbers compare by value across widths.
func valuesEqual(left, right any) bool {
	if IsNull(left) || IsNull(right) {
		return IsNull(left) && IsNull(right)
	}
	lr, rr := numericRank(left), numericRank(right)
	if lr != rankNone && rr != rankNone {
		if max(lr, rr) >= rankFloat {
			return toFloat64(left) == toFloat64(right)
		}
		return toInt64(left) == toInt64(right)
	}
	lt, rt := reflect.TypeOf(left), reflect.TypeOf(right)
	if lt != rt {
		return false
	}
	if lt.Comparable() {
		return left == right
	}
	return reflect.DeepEqual(left, right)
}
