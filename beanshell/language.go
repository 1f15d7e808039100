package beanshell

import (
	"strconv"
	"strings"

	"github.com/scijava/scripting-beanshell/bsh"
	"github.com/scijava/scripting-beanshell/scripting"
)

// Name is the name the language registers under.
const Name = "BeanShell"

func init() {
	scripting.Register(Name, func() scripting.ScriptLanguage { return NewLanguage() })
}

// Language describes BeanShell to the scripting host.
type Language struct {
	config      bsh.Config
	bindingOpts []BindingsOption
}

var _ scripting.ScriptLanguage = (*Language)(nil)

type LanguageOption func(*Language)

// WithInterpreterConfig configures the interpreter of every engine the
// language builds.
func WithInterpreterConfig(cfg bsh.Config) LanguageOption {
	return func(l *Language) { l.config = cfg }
}

// WithBindingsOptions applies opts to the engine scope bindings of every
// engine the language builds.
func WithBindingsOptions(opts ...BindingsOption) LanguageOption {
	return func(l *Language) { l.bindingOpts = append(l.bindingOpts, opts...) }
}

func NewLanguage(opts ...LanguageOption) *Language {
	l := &Language{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Language) LanguageName() string { return Name }

func (l *Language) Names() []string { return []string{"beanshell", "bsh", "java"} }

// Extensions returns the file suffixes BeanShell scripts use.
func (l *Language) Extensions() []string { return []string{"bsh", "bs"} }

func (l *Language) MIMETypes() []string {
	return []string{"application/x-beanshell", "application/x-bsh", "application/x-java-source"}
}

func (l *Language) EngineName() string { return "BeanShell Engine" }

func (l *Language) EngineVersion() string { return bsh.Version }

func (l *Language) LanguageVersion() string { return bsh.Version }

// ScriptEngine returns a new engine around a new interpreter. Engines share
// nothing.
func (l *Language) ScriptEngine() scripting.ScriptEngine {
	return newEngine(l)
}

// Decode maps the interpreter's void and null results to nil and returns
// every other value unchanged.
func (l *Language) Decode(value any) any {
	if p, ok := value.(*bsh.Primitive); ok && (p == bsh.Void || p == bsh.Null) {
		return nil
	}
	return value
}

func (l *Language) OutputStatement(text string) string {
	return "print(" + strconv.Quote(text) + ");"
}

func (l *Language) MethodCallSyntax(obj, method string, args ...string) string {
	return obj + "." + method + "(" + strings.Join(args, ", ") + ")"
}

func (l *Language) Program(statements ...string) string {
	var b strings.Builder
	for i, stmt := range statements {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(stmt)
		if !strings.HasSuffix(stmt, ";") {
			b.WriteString(";")
		}
	}
	return b.String()
}
