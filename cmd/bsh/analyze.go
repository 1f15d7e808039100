package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/scijava/scripting-beanshell/bsh"
)

type lintWarning struct {
	Method  string
	Pos     bsh.Position
	Message string
}

const topLevel = "<script>"

func analyzeCommand(args []string) error {
	fs := newFlagSet("analyze")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("bsh analyze: script path required")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	program, err := bsh.Parse(string(input))
	if err != nil {
		return fmt.Errorf("analysis parse failed: %w", err)
	}

	warnings := analyzeProgram(program)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		line := max(warning.Pos.Line, 1)
		column := max(warning.Pos.Column, 1)
		fmt.Printf("%s:%d:%d: %s (%s)\n", scriptPath, line, column, warning.Message, warning.Method)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

func analyzeProgram(program *bsh.Program) []lintWarning {
	warnings := make([]lintWarning, 0)
	lintStatements(topLevel, program.Statements, &warnings)

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Pos.Line != warnings[j].Pos.Line {
			return warnings[i].Pos.Line < warnings[j].Pos.Line
		}
		if warnings[i].Pos.Column != warnings[j].Pos.Column {
			return warnings[i].Pos.Column < warnings[j].Pos.Column
		}
		return warnings[i].Method < warnings[j].Method
	})

	return warnings
}

// lintStatements reports statements that follow one which always leaves the
// block, and reports whether the block always leaves.
func lintStatements(method string, statements []bsh.Statement, warnings *[]lintWarning) bool {
	terminated := false
	for _, stmt := range statements {
		if terminated {
			*warnings = append(*warnings, lintWarning{
				Method:  method,
				Pos:     stmt.Pos(),
				Message: "unreachable statement",
			})
			continue
		}
		if statementTerminates(method, stmt, warnings) {
			terminated = true
		}
	}
	return terminated
}

func statementTerminates(method string, stmt bsh.Statement, warnings *[]lintWarning) bool {
	switch typed := stmt.(type) {
	case *bsh.ReturnStmt, *bsh.ThrowStmt, *bsh.BreakStmt, *bsh.ContinueStmt:
		return true
	case *bsh.BlockStmt:
		return lintStatements(method, typed.Statements, warnings)
	case *bsh.MethodDecl:
		lintStatements(typed.Name, typed.Body.Statements, warnings)
		return false
	case *bsh.IfStmt:
		thenTerminated := lintBody(method, typed.Then, warnings)
		if typed.Else == nil {
			return false
		}
		elseTerminated := lintBody(method, typed.Else, warnings)
		return thenTerminated && elseTerminated
	case *bsh.WhileStmt:
		lintBody(method, typed.Body, warnings)
		return false
	case *bsh.DoWhileStmt:
		lintBody(method, typed.Body, warnings)
		return false
	case *bsh.ForStmt:
		lintBody(method, typed.Body, warnings)
		return false
	case *bsh.ForEachStmt:
		lintBody(method, typed.Body, warnings)
		return false
	case *bsh.TryStmt:
		bodyTerminated := lintStatements(method, typed.Body.Statements, warnings)
		catchesTerminated := len(typed.Catches) > 0
		for _, c := range typed.Catches {
			if !lintStatements(method, c.Body.Statements, warnings) {
				catchesTerminated = false
			}
		}
		if typed.Finally != nil && lintStatements(method, typed.Finally.Statements, warnings) {
			return true
		}
		if len(typed.Catches) == 0 {
			return false
		}
		return bodyTerminated && catchesTerminated
	default:
		return false
	}
}

func lintBody(method string, body bsh.Statement, warnings *[]lintWarning) bool {
	if body == nil {
		return false
	}
	return statementTerminates(method, body, warnings)
}
