package scripting

import (
	"context"
	"io"
)

// ScriptEngine evaluates scripts of one language. Results are returned as
// the interpreter produced them; hosts pass them through
// ScriptLanguage.Decode.
type ScriptEngine interface {
	Eval(ctx context.Context, script string) (any, error)
	EvalReader(ctx context.Context, r io.Reader) (any, error)
	Get(name string) any
	Put(name string, value any)
	Bindings(scope Scope) Bindings
	Context() *ScriptContext
	Language() ScriptLanguage
}

// ScriptLanguage describes a script language and builds engines for it.
type ScriptLanguage interface {
	LanguageName() string
	// Names lists aliases the language can be looked up by.
	Names() []string
	Extensions() []string
	MIMETypes() []string
	EngineName() string
	EngineVersion() string
	LanguageVersion() string

	// ScriptEngine returns a new engine with its own interpreter session.
	ScriptEngine() ScriptEngine
	// Decode converts an evaluation result into a plain host value.
	Decode(value any) any

	OutputStatement(text string) string
	MethodCallSyntax(obj, method string, args ...string) string
	Program(statements ...string) string
}
