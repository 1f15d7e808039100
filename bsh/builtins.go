package bsh

import (
	"fmt"
	"io"
	"os"
	"slices"
)

type builtinFunc func(exec *Execution, ns *NameSpace, args []any, pos Position) (any, error)

// BuiltinNames lists the built-in commands, for completion.
func BuiltinNames() []string {
	return []string{"eval", "print", "println", "source", "typeof", "unset"}
}

// lookupBuiltin is a switch: a package-level table would form an
// initialization cycle through eval and source.
func lookupBuiltin(name string) (builtinFunc, bool) {
	switch name {
	case "print", "println":
		return builtinPrint, true
	case "unset":
		return builtinUnset, true
	case "typeof":
		return builtinTypeof, true
	case "source":
		return builtinSource, true
	case "eval":
		return builtinEval, true
	default:
		return nil, false
	}
}

func builtinPrint(exec *Execution, ns *NameSpace, args []any, pos Position) (any, error) {
	if len(args) > 1 {
		return nil, exec.errorAt(pos, "print expects at most one argument")
	}
	line := ""
	if len(args) == 1 {
		line = FormatValue(args[0])
	}
	if _, err := io.WriteString(exec.interp.out, line+"\n"); err != nil {
		return nil, exec.wrapError(fmt.Errorf("print: %w", err), pos)
	}
	return Void, nil
}

func builtinUnset(exec *Execution, ns *NameSpace, args []any, pos Position) (any, error) {
	name, err := stringArg(exec, "unset", args, pos)
	if err != nil {
		return nil, err
	}
	if _, owner, ok := ns.lookup(name); ok {
		owner.UnsetVariable(name)
	}
	return Void, nil
}

func builtinTypeof(exec *Execution, ns *NameSpace, args []any, pos Position) (any, error) {
	if len(args) != 1 {
		return nil, exec.errorAt(pos, "typeof expects one argument")
	}
	return TypeName(args[0]), nil
}

func builtinSource(exec *Execution, ns *NameSpace, args []any, pos Position) (any, error) {
	path, err := stringArg(exec, "source", args, pos)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TargetError{Value: &Exception{Type: "FileNotFoundException", Message: err.Error()}, Pos: pos}
	}
	return exec.evalNested(string(data), path, ns, pos)
}

func builtinEval(exec *Execution, ns *NameSpace, args []any, pos Position) (any, error) {
	code, err := stringArg(exec, "eval", args, pos)
	if err != nil {
		return nil, err
	}
	return exec.evalNested(code, exec.fileName, ns, pos)
}

// evalNested runs source in ns as part of the current execution, sharing its
// step quota and call stack.
func (exec *Execution) evalNested(source, fileName string, ns *NameSpace, pos Position) (any, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, exec.newEvalError(err.Error(), pos, err)
	}

	nested := &Execution{
		interp:       exec.interp,
		ctx:          exec.ctx,
		source:       source,
		fileName:     fileName,
		quota:        exec.quota,
		recursionCap: exec.recursionCap,
		steps:        exec.steps,
		strict:       exec.strict,
		callStack:    slices.Clone(exec.callStack),
	}
	val, _, err := nested.evalStatements(program.Statements, ns)
	exec.steps = nested.steps
	if err != nil {
		return nil, err
	}
	return val, nil
}

func stringArg(exec *Execution, name string, args []any, pos Position) (string, error) {
	if len(args) != 1 {
		return "", exec.errorAt(pos, "%s expects one argument", name)
	}
	s, ok := args[0].(string)
	if !ok {
		return "", exec.errorAt(pos, "%s expects a string, got %s", name, TypeName(args[0]))
	}
	return s, nil
}
