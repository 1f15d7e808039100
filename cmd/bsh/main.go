package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/scijava/scripting-beanshell/beanshell"
	"github.com/scijava/scripting-beanshell/bsh"
	"github.com/scijava/scripting-beanshell/internal/zapctx"
	"github.com/scijava/scripting-beanshell/scripting"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return replCommand(nil)
		}
		return stdinCommand(os.Stdin, os.Stdout)
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "check":
		return checkCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "languages":
		return languagesCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	fs.SortFlags = false
	return fs
}

func runCommand(args []string) error {
	fs := newFlagSet("run")
	var common commonFlags
	common.register(fs)
	sets := fs.StringArray("set", nil, "bind a variable before running, as name=value (repeatable)")
	language := fs.String("language", "", "language to run the script as, instead of guessing from its extension")
	checkOnly := fs.Bool("check", false, "only parse the script without executing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("bsh run: script path required")
	}
	scriptPath := remaining[0]

	if *checkOnly {
		return checkFile(scriptPath)
	}

	inputs, err := parseAssignments(*sets)
	if err != nil {
		return err
	}
	inputs = append(inputs, binding{name: "args", value: stringArgs(remaining[1:])})

	svc, logger, err := setup(&common, fs, os.Stdout)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zapctx.ToContext(ctx, logger)

	var result any
	if *language != "" {
		lang, err := svc.Registry().Lookup(*language)
		if err != nil {
			return err
		}
		result, err = svc.RunWith(ctx, lang, scriptPath, bindingSeq(inputs))
		if err != nil {
			return scriptFailure("execution failed", err)
		}
	} else {
		result, err = svc.Run(ctx, scriptPath, bindingSeq(inputs))
		if err != nil {
			return scriptFailure("execution failed", err)
		}
	}
	if result != nil {
		fmt.Println(bsh.FormatValue(result))
	}
	return nil
}

func checkCommand(args []string) error {
	fs := newFlagSet("check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("bsh check: script path required")
	}
	for _, path := range fs.Args() {
		if err := checkFile(path); err != nil {
			return err
		}
	}
	return nil
}

func checkFile(path string) error {
	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if _, err := bsh.Parse(string(input)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func languagesCommand(args []string) error {
	fs := newFlagSet("languages")
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	svc, _, err := setup(&common, fs, os.Stdout)
	if err != nil {
		return err
	}
	for _, lang := range svc.Registry().Languages() {
		fmt.Printf("%s (%s)\n", lang.LanguageName(), strings.Join(lang.Names(), ", "))
		fmt.Printf("  extensions: %s\n", strings.Join(lang.Extensions(), ", "))
		fmt.Printf("  engine:     %s %s\n", lang.EngineName(), lang.EngineVersion())
		fmt.Printf("  mime types: %s\n", strings.Join(lang.MIMETypes(), ", "))
	}
	return nil
}

// stdinCommand evaluates a script piped to bsh.
func stdinCommand(r io.Reader, w io.Writer) error {
	fs := newFlagSet("stdin")
	var common commonFlags
	common.register(fs)
	svc, logger, err := setup(&common, fs, w)
	if err != nil {
		return err
	}
	defer logger.Sync()

	input, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	ctx := zapctx.ToContext(context.Background(), logger)
	result, err := svc.Eval(ctx, beanshell.Name, string(input), nil)
	if err != nil {
		return scriptFailure("execution failed", err)
	}
	if result != nil {
		fmt.Fprintln(w, bsh.FormatValue(result))
	}
	return nil
}

// scriptFailure adds the code frame of an interpreter error to err.
func scriptFailure(stage string, err error) error {
	var evalErr *bsh.EvalError
	if errors.As(err, &evalErr) && evalErr.CodeFrame != "" {
		return fmt.Errorf("%s: %w\n%s", stage, err, evalErr.CodeFrame)
	}
	var scriptErr *scripting.ScriptError
	if errors.As(err, &scriptErr) && errors.Is(err, scripting.ErrParse) {
		return fmt.Errorf("%s: %w", stage, scriptErr.Cause)
	}
	return fmt.Errorf("%s: %w", stage, err)
}

type binding struct {
	name  string
	value any
}

func bindingSeq(bindings []binding) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, b := range bindings {
			if !yield(b.name, b.value) {
				return
			}
		}
	}
}

// parseAssignments turns name=value flags into bindings, keeping their
// order. Values that parse as int, double or boolean bind as such.
func parseAssignments(raw []string) ([]binding, error) {
	out := make([]binding, 0, len(raw))
	for _, assignment := range raw {
		name, value, ok := strings.Cut(assignment, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", assignment)
		}
		out = append(out, binding{name: name, value: parseLiteral(value)})
	}
	return out, nil
}

func parseLiteral(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if strings.ContainsAny(raw, "0123456789") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func stringArgs(raw []string) []any {
	out := make([]any, len(raw))
	for i, s := range raw {
		out[i] = s
	}
	return out
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args...]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run <script> [args...]   run a script; args are bound to `args`")
	fmt.Fprintln(os.Stderr, "  check <script>...        parse scripts without running them")
	fmt.Fprintln(os.Stderr, "  analyze <script>         report unreachable statements")
	fmt.Fprintln(os.Stderr, "  languages                list registered script languages")
	fmt.Fprintln(os.Stderr, "  repl                     start an interactive session")
	fmt.Fprintln(os.Stderr, "With no command, bsh starts the REPL on a terminal and runs stdin otherwise.")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  --set name=value")
	fmt.Fprintln(os.Stderr, "    bind a variable before running (repeatable)")
	fmt.Fprintln(os.Stderr, "  --language name")
	fmt.Fprintln(os.Stderr, "    run as the named language instead of guessing from the extension")
	fmt.Fprintln(os.Stderr, "  --check")
	fmt.Fprintln(os.Stderr, "    only parse the script without executing")
	fmt.Fprintln(os.Stderr, "  --config, --step-quota, --recursion-limit, --log-level, --surface-binding-errors")
	fmt.Fprintln(os.Stderr, "    override "+configFile+" settings")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
