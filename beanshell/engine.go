package beanshell

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/scijava/scripting-beanshell/bsh"
	"github.com/scijava/scripting-beanshell/internal/zapctx"
	"github.com/scijava/scripting-beanshell/scripting"
)

// Engine evaluates BeanShell in its own interpreter. Its engine scope is a
// live Bindings view of the interpreter namespace. Names the namespace does
// not define are looked up in the context, so global scope bindings are
// visible to scripts.
type Engine struct {
	lang     *Language
	interp   *bsh.Interpreter
	bindings *Bindings
	sc       *scripting.ScriptContext
}

var _ scripting.ScriptEngine = (*Engine)(nil)

func newEngine(lang *Language) *Engine {
	interp := bsh.New(lang.config)
	e := &Engine{lang: lang, interp: interp}
	e.bindings = NewBindings(interp, lang.bindingOpts...)
	e.sc = scripting.NewScriptContext(e.bindings)
	interp.SetResolver(bsh.ResolverFunc(e.resolve))
	return e
}

func (e *Engine) resolve(name string) (any, bool) {
	val, _, ok := e.sc.Attribute(name)
	return val, ok
}

// Interpreter returns the interpreter behind the engine.
func (e *Engine) Interpreter() *bsh.Interpreter { return e.interp }

// Eval runs script and returns its raw result. Pass the result to
// Language.Decode to turn void and null into nil.
func (e *Engine) Eval(ctx context.Context, script string) (any, error) {
	sc := e.sc
	if sc.Writer != nil {
		e.interp.SetOut(sc.Writer)
	}
	if sc.ErrorWriter != nil {
		e.interp.SetErr(sc.ErrorWriter)
	}
	e.interp.SetFileName(sc.FileName)

	val, err := e.interp.Eval(ctx, script)
	if err != nil {
		zapctx.FromContext(ctx).Debug("eval failed", zap.String("file", sc.FileName), zap.Error(err))
		return nil, scriptError(sc.FileName, err)
	}
	return val, nil
}

func (e *Engine) EvalReader(ctx context.Context, r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &scripting.ScriptError{Kind: scripting.ErrIO, Message: err.Error(), FileName: e.sc.FileName, Cause: err}
	}
	return e.Eval(ctx, string(data))
}

func (e *Engine) Get(name string) any { return e.bindings.Get(name) }

func (e *Engine) Put(name string, value any) { e.bindings.Put(name, value) }

func (e *Engine) Bindings(scope scripting.Scope) scripting.Bindings {
	return e.sc.Bindings(scope)
}

func (e *Engine) Context() *scripting.ScriptContext { return e.sc }

func (e *Engine) Language() scripting.ScriptLanguage { return e.lang }

// scriptError converts an interpreter error into a *scripting.ScriptError
// that keeps the original as its cause.
func scriptError(fileName string, err error) error {
	se := &scripting.ScriptError{Kind: scripting.ErrEval, Message: err.Error(), FileName: fileName, Cause: err}

	switch e := err.(type) {
	case *multierror.Error:
		var parseErr *bsh.ParseError
		if !errors.As(e, &parseErr) {
			break
		}
		se.Kind = scripting.ErrParse
		se.Message = parseErr.Msg
		if len(e.Errors) > 1 {
			se.Message = fmt.Sprintf("%s (and %d more)", parseErr.Msg, len(e.Errors)-1)
		}
		se.Line, se.Column = parseErr.Pos.Line, parseErr.Pos.Column
	case *bsh.TargetError:
		se.Line, se.Column = e.Pos.Line, e.Pos.Column
	case *bsh.EvalError:
		se.Message = e.Message
		se.Line, se.Column = e.Pos.Line, e.Pos.Column
	}
	return se
}
