package scripting

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds of ScriptError. Match them with errors.Is.
var (
	ErrParse           = errors.New("parse error")
	ErrEval            = errors.New("evaluation error")
	ErrIO              = errors.New("i/o error")
	ErrUnknownLanguage = errors.New("unknown language")
)

// ScriptError reports a failure running a script. Line and Column are zero
// when the position is unknown.
type ScriptError struct {
	Kind     error
	Message  string
	FileName string
	Line     int
	Column   int
	Cause    error
}

func (e *ScriptError) Error() string {
	var b strings.Builder
	if e.FileName != "" {
		b.WriteString(e.FileName)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
			if e.Column > 0 {
				fmt.Fprintf(&b, ":%d", e.Column)
			}
		}
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

func (e *ScriptError) Unwrap() error { return e.Cause }

func (e *ScriptError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func unknownLanguage(format string, args ...any) error {
	return &ScriptError{Kind: ErrUnknownLanguage, Message: fmt.Sprintf(format, args...)}
}
