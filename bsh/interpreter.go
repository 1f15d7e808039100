package bsh

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Version is reported as both the engine and the language version.
const Version = "2.1.1"

// Config controls interpreter execution bounds and output.
type Config struct {
	StepQuota      int
	RecursionLimit int
	// StrictJava rejects assignment to undeclared variables.
	StrictJava bool
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *zap.Logger
	// FileName labels errors raised by Eval.
	FileName string
}

// Resolver supplies values for names the namespace does not define.
type Resolver interface {
	Resolve(name string) (any, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (any, bool)

func (f ResolverFunc) Resolve(name string) (any, bool) { return f(name) }

// Interpreter is a single scripting session with its own global namespace.
type Interpreter struct {
	config   Config
	global   *NameSpace
	out      io.Writer
	errOut   io.Writer
	resolver Resolver
	log      *zap.Logger
}

// New constructs an Interpreter with defaults applied to zero fields.
func New(cfg Config) *Interpreter {
	if cfg.StepQuota <= 0 {
		cfg.StepQuota = 1_000_000
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = 256
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Interpreter{
		config: cfg,
		global: NewNameSpace(nil, "global"),
		out:    cfg.Stdout,
		errOut: cfg.Stderr,
		log:    cfg.Logger,
	}
}

// NameSpace returns the live global namespace.
func (in *Interpreter) NameSpace() *NameSpace { return in.global }

func (in *Interpreter) Config() Config { return in.config }

func (in *Interpreter) SetOut(w io.Writer) { in.out = w }

func (in *Interpreter) SetErr(w io.Writer) { in.errOut = w }

func (in *Interpreter) Out() io.Writer { return in.out }

func (in *Interpreter) Err() io.Writer { return in.errOut }

func (in *Interpreter) SetResolver(r Resolver) { in.resolver = r }

func (in *Interpreter) SetFileName(name string) { in.config.FileName = name }

// Get reads a variable, resolving dotted names.
func (in *Interpreter) Get(name string) (any, error) {
	return in.global.Get(name, in)
}

// Set assigns a variable in the global namespace.
func (in *Interpreter) Set(name string, value any) error {
	return in.global.SetVariable(name, value, in.config.StrictJava)
}

func (in *Interpreter) Unset(name string) {
	in.global.UnsetVariable(name)
}

// Eval parses and runs source in the global namespace. The result is the
// value of the last statement, or of a top-level return.
func (in *Interpreter) Eval(ctx context.Context, source string) (any, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return in.Run(ctx, program)
}

// EvalReader reads r to the end and evaluates it.
func (in *Interpreter) EvalReader(ctx context.Context, r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return in.Eval(ctx, string(data))
}

// Source evaluates the file at path in the global namespace.
func (in *Interpreter) Source(ctx context.Context, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", path, err)
	}
	program, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	exec := in.newExecution(ctx, program.source, path)
	return exec.runProgram(program, in.global)
}

// Run executes an already parsed program.
func (in *Interpreter) Run(ctx context.Context, program *Program) (any, error) {
	exec := in.newExecution(ctx, program.source, in.config.FileName)
	return exec.runProgram(program, in.global)
}

func (in *Interpreter) newExecution(ctx context.Context, source, fileName string) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Execution{
		interp:       in,
		ctx:          ctx,
		source:       source,
		fileName:     fileName,
		quota:        in.config.StepQuota,
		recursionCap: in.config.RecursionLimit,
		strict:       in.config.StrictJava,
	}
}
