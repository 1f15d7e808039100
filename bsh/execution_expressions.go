package bsh

import (
	"reflect"
	"strings"
)

func (exec *Execution) evalExpression(expr Expression, ns *NameSpace) (any, error) {
	if err := exec.step(); err != nil {
		return nil, exec.wrapError(err, expr.Pos())
	}
	switch e := expr.(type) {
	case *IntegerLiteral:
		if e.Long {
			return e.Value, nil
		}
		return int(e.Value), nil
	case *FloatLiteral:
		if e.Single {
			return float32(e.Value), nil
		}
		return e.Value, nil
	case *StringLiteral:
		return e.Value, nil
	case *CharLiteral:
		return Char(e.Value), nil
	case *BoolLiteral:
		return e.Value, nil
	case *NullLiteral:
		return Null, nil
	case *VoidLiteral:
		return Void, nil
	case *Identifier:
		return exec.lookupIdentifier(e, ns)
	case *ArrayLiteral:
		return exec.evalArrayLiteral(e, ns)
	case *UnaryExpr:
		return exec.evalUnary(e, ns)
	case *BinaryExpr:
		return exec.evalBinary(e, ns)
	case *AssignExpr:
		return exec.evalAssign(e, ns)
	case *IncDecExpr:
		return exec.evalIncDec(e, ns)
	case *TernaryExpr:
		cond, err := exec.evalCondition(e.Condition, ns)
		if err != nil {
			return nil, err
		}
		if cond {
			return exec.evalExpression(e.Then, ns)
		}
		return exec.evalExpression(e.Else, ns)
	case *InstanceofExpr:
		val, err := exec.evalExpression(e.Left, ns)
		if err != nil {
			return nil, err
		}
		return matchesType(val, e.Type), nil
	case *CastExpr:
		val, err := exec.evalExpression(e.Value, ns)
		if err != nil {
			return nil, err
		}
		out, err := cast(val, e.Type)
		if err != nil {
			return nil, exec.throwAt(e.Pos(), "ClassCastException", "%s", err.Error())
		}
		return out, nil
	case *CallExpr:
		return exec.evalCall(e, ns)
	case *MemberExpr:
		obj, err := exec.evalExpression(e.Object, ns)
		if err != nil {
			return nil, err
		}
		if IsNull(obj) {
			return nil, exec.throwAt(e.Pos(), "NullPointerException", "cannot read %s of null", e.Property)
		}
		val, err := memberValue(obj, e.Property)
		if err != nil {
			return nil, exec.wrapError(err, e.Pos())
		}
		return val, nil
	case *IndexExpr:
		return exec.evalIndex(e, ns)
	case *NewExpr:
		return exec.evalNew(e, ns)
	default:
		return nil, exec.errorAt(expr.Pos(), "unsupported expression %T", expr)
	}
}

func (exec *Execution) lookupIdentifier(id *Identifier, ns *NameSpace) (any, error) {
	if v, _, ok := ns.lookup(id.Name); ok {
		val, err := resolveValue(v.Value, exec.interp)
		if err != nil {
			return nil, exec.wrapError(err, id.Pos())
		}
		return val, nil
	}
	if r := exec.interp.resolver; r != nil {
		if val, ok := r.Resolve(id.Name); ok {
			return val, nil
		}
	}
	return nil, exec.errorAt(id.Pos(), "undefined variable: %s", id.Name)
}

func (exec *Execution) evalArrayLiteral(lit *ArrayLiteral, ns *NameSpace) (any, error) {
	out := make([]any, len(lit.Elements))
	for i, el := range lit.Elements {
		val, err := exec.evalExpression(el, ns)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func (exec *Execution) evalIndex(e *IndexExpr, ns *NameSpace) (any, error) {
	obj, err := exec.evalExpression(e.Object, ns)
	if err != nil {
		return nil, err
	}
	idx, err := exec.evalExpression(e.Index, ns)
	if err != nil {
		return nil, err
	}
	if IsNull(obj) {
		return nil, exec.throwAt(e.Pos(), "NullPointerException", "cannot index null")
	}
	val, err := indexValue(obj, idx)
	if err != nil {
		return nil, exec.indexError(err, e.Pos())
	}
	return val, nil
}

func (exec *Execution) indexError(err error, pos Position) error {
	if oob, ok := err.(*indexOutOfBounds); ok {
		return exec.throwAt(pos, "ArrayIndexOutOfBoundsException", "index %d out of bounds for length %d", oob.index, oob.length)
	}
	return exec.wrapError(err, pos)
}

// evalNew builds exceptions, maps and arrays. Other classes are not
// available to scripts.
func (exec *Execution) evalNew(e *NewExpr, ns *NameSpace) (any, error) {
	if e.Type.Dims > 0 {
		if e.Init != nil {
			return exec.evalArrayLiteral(e.Init, ns)
		}
		sizes := make([]int, len(e.Sizes))
		for i, sizeExpr := range e.Sizes {
			val, err := exec.evalExpression(sizeExpr, ns)
			if err != nil {
				return nil, err
			}
			if numericRank(val) != rankInt {
				return nil, exec.errorAt(sizeExpr.Pos(), "array size must be int, got %s", TypeName(val))
			}
			n := int(toInt64(val))
			if n < 0 {
				return nil, exec.throwAt(sizeExpr.Pos(), "NegativeArraySizeException", "%d", n)
			}
			sizes[i] = n
		}
		elem := &TypeRef{Name: e.Type.Name, Dims: e.Type.Dims - len(sizes)}
		return makeArray(sizes, elem), nil
	}

	args := make([]any, len(e.Args))
	for i, arg := range e.Args {
		val, err := exec.evalExpression(arg, ns)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	name := e.Type.Name
	switch {
	case isExceptionClass(name):
		ex := &Exception{Type: simpleName(name)}
		if len(args) > 0 {
			ex.Message = FormatValue(args[0])
		}
		return ex, nil
	case name == "HashMap" || name == "java.util.HashMap" || name == "Map":
		return map[any]any{}, nil
	case name == "ArrayList" || name == "java.util.ArrayList":
		return &List{}, nil
	case name == "Object":
		return &struct{}{}, nil
	case name == "String":
		if len(args) == 0 {
			return "", nil
		}
		return FormatValue(args[0]), nil
	default:
		return nil, exec.errorAt(e.Pos(), "class not found: %s", name)
	}
}

func makeArray(sizes []int, elem *TypeRef) []any {
	out := make([]any, sizes[0])
	for i := range out {
		if len(sizes) > 1 {
			out[i] = makeArray(sizes[1:], elem)
		} else {
			out[i] = defaultValue(elem)
		}
	}
	return out
}

func isExceptionClass(name string) bool {
	simple := simpleName(name)
	return simple == "Throwable" || strings.HasSuffix(simple, "Exception") || strings.HasSuffix(simple, "Error")
}

func simpleName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// iterate lists the elements an enhanced for loop visits.
func iterate(v any) ([]any, error) {
	switch val := v.(type) {
	case []any:
		return val, nil
	case *List:
		return val.items(), nil
	case string:
		out := make([]any, 0, len(val))
		for _, r := range val {
			out = append(out, Char(r))
		}
		return out, nil
	}
	if IsNull(v) {
		return nil, &Exception{Type: "NullPointerException", Message: "cannot iterate null"}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		return sortedKeys(rv), nil
	default:
		return nil, errNotIterable(v)
	}
}
