package bsh

func (exec *Execution) evalAssign(e *AssignExpr, ns *NameSpace) (any, error) {
	op, compound := compoundOperator(e.Operator)

	var current any
	if compound {
		val, err := exec.evalExpression(e.Target, ns)
		if err != nil {
			return nil, err
		}
		current = val
	}

	value, err := exec.evalExpression(e.Value, ns)
	if err != nil {
		return nil, err
	}
	if compound {
		value, err = exec.binaryOp(op, current, value, e.Pos())
		if err != nil {
			return nil, err
		}
	}
	return exec.assignTo(e.Target, value, compound, ns)
}

func (exec *Execution) evalIncDec(e *IncDecExpr, ns *NameSpace) (any, error) {
	current, err := exec.evalExpression(e.Target, ns)
	if err != nil {
		return nil, err
	}
	if numericRank(current) == rankNone {
		return nil, exec.errorAt(e.Pos(), "operator %s not defined for %s", e.Operator, TypeName(current))
	}
	op := tokenPlus
	if e.Operator == tokenDecrement {
		op = tokenMinus
	}
	next, err := exec.binaryOp(op, current, 1, e.Pos())
	if err != nil {
		return nil, err
	}
	if _, ok := current.(Char); ok {
		next = Char(toInt64(next))
	}
	stored, err := exec.assignTo(e.Target, next, true, ns)
	if err != nil {
		return nil, err
	}
	if e.Prefix {
		return stored, nil
	}
	return current, nil
}

// assignTo stores value into a variable, field, map entry or element.
// Compound assignment narrows to the variable's declared primitive type the
// way Java does.
func (exec *Execution) assignTo(target Expression, value any, narrow bool, ns *NameSpace) (any, error) {
	switch t := target.(type) {
	case *Identifier:
		if narrow {
			if typ := ns.VariableType(t.Name); typ != nil && primitiveTypes[typ.Name] && typ.Dims == 0 {
				if narrowed, err := cast(value, typ); err == nil {
					value = narrowed
				}
			}
		}
		stored, err := ns.assign(t.Name, value, exec.strict)
		if err != nil {
			return nil, exec.wrapError(err, t.Pos())
		}
		return stored, nil
	case *MemberExpr:
		obj, err := exec.evalExpression(t.Object, ns)
		if err != nil {
			return nil, err
		}
		if IsNull(obj) {
			return nil, exec.throwAt(t.Pos(), "NullPointerException", "cannot set %s of null", t.Property)
		}
		if err := setMember(obj, t.Property, value); err != nil {
			return nil, exec.wrapError(err, t.Pos())
		}
		return value, nil
	case *IndexExpr:
		obj, err := exec.evalExpression(t.Object, ns)
		if err != nil {
			return nil, err
		}
		idx, err := exec.evalExpression(t.Index, ns)
		if err != nil {
			return nil, err
		}
		if IsNull(obj) {
			return nil, exec.throwAt(t.Pos(), "NullPointerException", "cannot index null")
		}
		if err := setIndex(obj, idx, value); err != nil {
			return nil, exec.indexError(err, t.Pos())
		}
		return value, nil
	default:
		return nil, exec.errorAt(target.Pos(), "invalid assignment target")
	}
}
