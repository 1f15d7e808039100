package bsh

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type Execution struct {
	interp       *Interpreter
	ctx          context.Context
	source       string
	fileName     string
	quota        int
	recursionCap int
	steps        int
	strict       bool
	callStack    []StackFrame
}

func (exec *Execution) runProgram(program *Program, ns *NameSpace) (any, error) {
	val, _, err := exec.evalStatements(program.Statements, ns)
	exec.interp.log.Debug("eval finished",
		zap.String("file", exec.fileName),
		zap.Int("steps", exec.steps),
		zap.Error(err))
	if err != nil {
		if errors.Is(err, errLoopBreak) {
			return nil, exec.errorAt(program.Pos(), "break outside of loop")
		}
		if errors.Is(err, errLoopContinue) {
			return nil, exec.errorAt(program.Pos(), "continue outside of loop")
		}
		return nil, err
	}
	return val, nil
}

// evalStatements runs stmts in ns and returns the value of the last one.
func (exec *Execution) evalStatements(stmts []Statement, ns *NameSpace) (any, bool, error) {
	var result any = Void
	for _, stmt := range stmts {
		val, returned, err := exec.evalStatement(stmt, ns)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return val, true, nil
		}
		result = val
	}
	return result, false, nil
}

func (exec *Execution) evalStatement(stmt Statement, ns *NameSpace) (any, bool, error) {
	if err := exec.step(); err != nil {
		return nil, false, exec.wrapError(err, stmt.Pos())
	}
	switch s := stmt.(type) {
	case *ExprStmt:
		val, err := exec.evalExpression(s.Expr, ns)
		return val, false, err
	case *VarDeclStmt:
		val, err := exec.evalVarDecl(s, ns)
		return val, false, err
	case *MethodDecl:
		ns.SetMethod(&Method{Decl: s, ns: ns})
		return Void, false, nil
	case *BlockStmt:
		return exec.evalStatements(s.Statements, newBlockNameSpace(ns))
	case *EmptyStmt:
		return Void, false, nil
	case *IfStmt:
		return exec.evalIf(s, ns)
	case *WhileStmt:
		return exec.evalWhile(s, ns)
	case *DoWhileStmt:
		return exec.evalDoWhile(s, ns)
	case *ForStmt:
		return exec.evalFor(s, ns)
	case *ForEachStmt:
		return exec.evalForEach(s, ns)
	case *ReturnStmt:
		if s.Value == nil {
			return Void, true, nil
		}
		val, err := exec.evalExpression(s.Value, ns)
		if err != nil {
			return nil, false, err
		}
		return val, true, nil
	case *BreakStmt:
		return nil, false, errLoopBreak
	case *ContinueStmt:
		return nil, false, errLoopContinue
	case *ThrowStmt:
		val, err := exec.evalExpression(s.Value, ns)
		if err != nil {
			return nil, false, err
		}
		if IsNull(val) {
			return nil, false, exec.throwAt(s.Pos(), "NullPointerException", "cannot throw null")
		}
		return nil, false, &TargetError{Value: val, Pos: s.Pos()}
	case *TryStmt:
		return exec.evalTry(s, ns)
	default:
		return nil, false, exec.errorAt(stmt.Pos(), "unsupported statement %T", stmt)
	}
}

func (exec *Execution) evalVarDecl(stmt *VarDeclStmt, ns *NameSpace) (any, error) {
	var last any = Void
	for _, decl := range stmt.Vars {
		value := defaultValue(stmt.Type)
		if decl.Init != nil {
			val, err := exec.evalExpression(decl.Init, ns)
			if err != nil {
				return nil, err
			}
			value = val
		}
		if err := ns.DeclareVariable(decl.Name, stmt.Type, value); err != nil {
			return nil, exec.wrapError(err, decl.position)
		}
		v, _, _ := ns.lookup(decl.Name)
		last = v.Value
	}
	return last, nil
}

func (exec *Execution) evalCondition(expr Expression, ns *NameSpace) (bool, error) {
	val, err := exec.evalExpression(expr, ns)
	if err != nil {
		return false, err
	}
	b, ok := val.(bool)
	if !ok {
		return false, exec.errorAt(expr.Pos(), "condition must be boolean, got %s", TypeName(val))
	}
	return b, nil
}

func (exec *Execution) evalIf(stmt *IfStmt, ns *NameSpace) (any, bool, error) {
	cond, err := exec.evalCondition(stmt.Condition, ns)
	if err != nil {
		return nil, false, err
	}
	if cond {
		return exec.evalStatement(stmt.Then, ns)
	}
	if stmt.Else != nil {
		return exec.evalStatement(stmt.Else, ns)
	}
	return Void, false, nil
}

// loopBody runs one iteration. It reports whether the loop should stop and
// whether a return is propagating.
func (exec *Execution) loopBody(body Statement, ns *NameSpace) (val any, stop bool, returned bool, err error) {
	val, returned, err = exec.evalStatement(body, ns)
	if err != nil {
		if errors.Is(err, errLoopBreak) {
			return Void, true, false, nil
		}
		if errors.Is(err, errLoopContinue) {
			return Void, false, false, nil
		}
		return nil, true, false, err
	}
	return val, returned, returned, nil
}

func (exec *Execution) evalWhile(stmt *WhileStmt, ns *NameSpace) (any, bool, error) {
	for {
		cond, err := exec.evalCondition(stmt.Condition, ns)
		if err != nil {
			return nil, false, err
		}
		if !cond {
			return Void, false, nil
		}
		val, stop, returned, err := exec.loopBody(stmt.Body, ns)
		if err != nil || returned {
			return val, returned, err
		}
		if stop {
			return Void, false, nil
		}
	}
}

func (exec *Execution) evalDoWhile(stmt *DoWhileStmt, ns *NameSpace) (any, bool, error) {
	for {
		val, stop, returned, err := exec.loopBody(stmt.Body, ns)
		if err != nil || returned {
			return val, returned, err
		}
		if stop {
			return Void, false, nil
		}
		cond, err := exec.evalCondition(stmt.Condition, ns)
		if err != nil {
			return nil, false, err
		}
		if !cond {
			return Void, false, nil
		}
	}
}

func (exec *Execution) evalFor(stmt *ForStmt, ns *NameSpace) (any, bool, error) {
	loopNS := newBlockNameSpace(ns)
	for _, init := range stmt.Init {
		if _, _, err := exec.evalStatement(init, loopNS); err != nil {
			return nil, false, err
		}
	}
	for {
		if stmt.Condition != nil {
			cond, err := exec.evalCondition(stmt.Condition, loopNS)
			if err != nil {
				return nil, false, err
			}
			if !cond {
				return Void, false, nil
			}
		}
		val, stop, returned, err := exec.loopBody(stmt.Body, loopNS)
		if err != nil || returned {
			return val, returned, err
		}
		if stop {
			return Void, false, nil
		}
		for _, update := range stmt.Update {
			if _, err := exec.evalExpression(update, loopNS); err != nil {
				return nil, false, err
			}
		}
	}
}

func (exec *Execution) evalForEach(stmt *ForEachStmt, ns *NameSpace) (any, bool, error) {
	iterable, err := exec.evalExpression(stmt.Iterable, ns)
	if err != nil {
		return nil, false, err
	}
	items, err := iterate(iterable)
	if err != nil {
		return nil, false, exec.wrapError(err, stmt.Iterable.Pos())
	}
	for _, item := range items {
		loopNS := newBlockNameSpace(ns)
		if err := loopNS.DeclareVariable(stmt.Name, stmt.Type, item); err != nil {
			return nil, false, exec.wrapError(err, stmt.Pos())
		}
		val, stop, returned, err := exec.loopBody(stmt.Body, loopNS)
		if err != nil || returned {
			return val, returned, err
		}
		if stop {
			break
		}
	}
	return Void, false, nil
}

func (exec *Execution) evalTry(stmt *TryStmt, ns *NameSpace) (any, bool, error) {
	val, returned, err := exec.evalStatements(stmt.Body.Statements, newBlockNameSpace(ns))

	var target *TargetError
	if err != nil && errors.As(err, &target) {
		for _, clause := range stmt.Catches {
			if !matchesType(target.Value, clause.Type) {
				continue
			}
			catchNS := newBlockNameSpace(ns)
			if declErr := catchNS.DeclareVariable(clause.Name, nil, target.Value); declErr != nil {
				return nil, false, exec.wrapError(declErr, stmt.Pos())
			}
			exec.interp.log.Debug("exception caught",
				zap.String("type", TypeName(target.Value)),
				zap.Int("line", target.Pos.Line))
			val, returned, err = exec.evalStatements(clause.Body.Statements, catchNS)
			break
		}
	}

	if stmt.Finally != nil {
		fval, freturned, ferr := exec.evalStatements(stmt.Finally.Statements, newBlockNameSpace(ns))
		if ferr != nil {
			return nil, false, ferr
		}
		if freturned {
			return fval, true, nil
		}
	}
	return val, returned, err
}
