package bsh

import (
	"errors"
	"fmt"
	"strings"
)

type StackFrame struct {
	Method string
	Pos    Position
}

// EvalError is a script failure that scripts cannot catch: an undefined
// name, a type error, an exhausted quota.
type EvalError struct {
	Message   string
	FileName  string
	Pos       Position
	CodeFrame string
	Frames    []StackFrame
	cause     error
}

const (
	evalErrorFrameHead = 8
	evalErrorFrameTail = 8
)

var (
	errLoopBreak         = errors.New("loop break")
	errLoopContinue      = errors.New("loop continue")
	ErrStepQuotaExceeded = errors.New("step quota exceeded")
	ErrRecursionLimit    = errors.New("recursion limit exceeded")
)

func (e *EvalError) Error() string {
	var b strings.Builder
	if e.FileName != "" {
		fmt.Fprintf(&b, "%s: ", e.FileName)
	}
	b.WriteString(e.Message)
	if e.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(e.CodeFrame)
	}
	renderFrame := func(frame StackFrame) {
		if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Method, frame.Pos.Line, frame.Pos.Column)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Method)
		}
	}

	if len(e.Frames) <= evalErrorFrameHead+evalErrorFrameTail {
		for _, frame := range e.Frames {
			renderFrame(frame)
		}
		return b.String()
	}
	for _, frame := range e.Frames[:evalErrorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(e.Frames) - (evalErrorFrameHead + evalErrorFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range e.Frames[len(e.Frames)-evalErrorFrameTail:] {
		renderFrame(frame)
	}
	return b.String()
}

func (e *EvalError) Unwrap() error { return e.cause }

// TargetError carries a value thrown by a script, or an error returned by a
// host method, out of the interpreter. try/catch only catches these.
type TargetError struct {
	Value any
	Pos   Position
}

func (e *TargetError) Error() string {
	if err, ok := e.Value.(error); ok {
		return "uncaught exception: " + err.Error()
	}
	return "uncaught exception: " + FormatValue(e.Value)
}

func (e *TargetError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Exception is an error value created by scripts with `new` or raised by
// the interpreter for runtime faults such as division by zero.
type Exception struct {
	Type    string
	Message string
}

func (e *Exception) Error() string {
	if e.Message == "" {
		return e.Type
	}
	return e.Type + ": " + e.Message
}

func (e *Exception) GetMessage() string { return e.Message }

func newException(kind, format string, args ...any) *Exception {
	return &Exception{Type: kind, Message: fmt.Sprintf(format, args...)}
}

func (exec *Execution) step() error {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return fmt.Errorf("%w (%d)", ErrStepQuotaExceeded, exec.quota)
	}
	if exec.ctx != nil {
		select {
		case <-exec.ctx.Done():
			return exec.ctx.Err()
		default:
		}
	}
	return nil
}

func (exec *Execution) errorAt(pos Position, format string, args ...any) error {
	return exec.newEvalError(fmt.Sprintf(format, args...), pos, nil)
}

// throwAt raises a catchable runtime exception.
func (exec *Execution) throwAt(pos Position, kind, format string, args ...any) error {
	return &TargetError{Value: newException(kind, format, args...), Pos: pos}
}

func (exec *Execution) newEvalError(message string, pos Position, cause error) error {
	frames := make([]StackFrame, 0, len(exec.callStack)+1)
	if len(exec.callStack) > 0 {
		current := exec.callStack[len(exec.callStack)-1]
		frames = append(frames, StackFrame{Method: current.Method, Pos: pos})
		for i := len(exec.callStack) - 1; i >= 0; i-- {
			frames = append(frames, exec.callStack[i])
		}
	} else {
		frames = append(frames, StackFrame{Method: "<script>", Pos: pos})
	}
	return &EvalError{
		Message:   message,
		FileName:  exec.fileName,
		Pos:       pos,
		CodeFrame: formatCodeFrame(exec.source, pos),
		Frames:    frames,
		cause:     cause,
	}
}

// wrapError attaches a position to a plain Go error. Control signals and
// errors that already carry a position pass through.
func (exec *Execution) wrapError(err error, pos Position) error {
	if err == nil || isLoopSignal(err) {
		return err
	}
	switch err.(type) {
	case *EvalError, *TargetError:
		return err
	}
	return exec.newEvalError(err.Error(), pos, err)
}

func isLoopSignal(err error) bool {
	return errors.Is(err, errLoopBreak) || errors.Is(err, errLoopContinue)
}
