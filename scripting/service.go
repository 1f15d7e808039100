package scripting

import (
	"context"
	"io"
	"iter"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/scijava/scripting-beanshell/internal/zapctx"
)

// Service runs scripts: it picks the language, builds a fresh engine, binds
// the inputs, evaluates, and decodes the result.
type Service struct {
	registry *Registry
	globals  Bindings
	stdout   io.Writer
	stderr   io.Writer
}

type ServiceOption func(*Service)

// WithRegistry resolves languages from r instead of the default registry.
func WithRegistry(r *Registry) ServiceOption {
	return func(s *Service) { s.registry = r }
}

// WithGlobals shares b as the global scope of every engine the service
// builds.
func WithGlobals(b Bindings) ServiceOption {
	return func(s *Service) { s.globals = b }
}

func WithOutput(stdout, stderr io.Writer) ServiceOption {
	return func(s *Service) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		registry: defaultRegistry,
		globals:  NewSimpleBindings(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Registry() *Registry { return s.registry }

func (s *Service) Globals() Bindings { return s.globals }

// Engine builds a new engine for the named language, wired to the service
// globals and output.
func (s *Service) Engine(language string) (ScriptEngine, error) {
	lang, err := s.registry.Lookup(language)
	if err != nil {
		return nil, err
	}
	return s.newEngine(lang)
}

func (s *Service) newEngine(lang ScriptLanguage) (ScriptEngine, error) {
	engine := lang.ScriptEngine()
	sc := engine.Context()
	if err := sc.SetBindings(s.globals, GlobalScope); err != nil {
		return nil, err
	}
	sc.Writer = s.stdout
	sc.ErrorWriter = s.stderr
	return engine, nil
}

// Run evaluates the script file at path. The language is chosen by the file
// extension. inputs may be nil.
func (s *Service) Run(ctx context.Context, path string, inputs iter.Seq2[string, any]) (any, error) {
	lang, err := s.registry.ForFile(path)
	if err != nil {
		return nil, err
	}
	return s.RunWith(ctx, lang, path, inputs)
}

// RunWith evaluates the script file at path in lang, whatever its extension.
func (s *Service) RunWith(ctx context.Context, lang ScriptLanguage, path string, inputs iter.Seq2[string, any]) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ScriptError{Kind: ErrIO, Message: err.Error(), FileName: path, Cause: err}
	}
	defer f.Close()

	return s.run(ctx, lang, path, inputs, func(ctx context.Context, engine ScriptEngine) (any, error) {
		return engine.EvalReader(ctx, f)
	})
}

// Eval evaluates source in the named language.
func (s *Service) Eval(ctx context.Context, language, source string, inputs iter.Seq2[string, any]) (any, error) {
	lang, err := s.registry.Lookup(language)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, lang, "", inputs, func(ctx context.Context, engine ScriptEngine) (any, error) {
		return engine.Eval(ctx, source)
	})
}

func (s *Service) run(ctx context.Context, lang ScriptLanguage, fileName string, inputs iter.Seq2[string, any], eval func(context.Context, ScriptEngine) (any, error)) (any, error) {
	ctx, logger := zapctx.With(ctx,
		zap.String("language", lang.LanguageName()),
		zap.String("script", fileName))

	engine, err := s.newEngine(lang)
	if err != nil {
		return nil, err
	}
	if inputs != nil {
		engine.Bindings(EngineScope).PutAll(inputs)
	}
	engine.Context().FileName = fileName

	start := time.Now()
	result, err := eval(ctx, engine)
	if err != nil {
		logger.Debug("script failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return nil, err
	}
	logger.Debug("script finished", zap.Duration("took", time.Since(start)))
	return lang.Decode(result), nil
}
