package bsh

import (
	"fmt"
	"regexp"
	"strings"
)

// stringMethod implements the java.lang.String methods scripts use most.
// ok is false when the method is unknown.
func stringMethod(s, name string, args []any) (result any, ok bool, err error) {
	runes := []rune(s)
	arity := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("String.%s expects %d arguments, got %d", name, n, len(args))
		}
		return nil
	}
	textArg := func(i int) (string, error) {
		switch v := args[i].(type) {
		case string:
			return v, nil
		case Char:
			return string(rune(v)), nil
		default:
			return "", fmt.Errorf("String.%s expects a string argument, got %s", name, TypeName(args[i]))
		}
	}
	intArg := func(i int) (int, error) {
		if numericRank(args[i]) != rankInt {
			return 0, fmt.Errorf("String.%s expects an int argument, got %s", name, TypeName(args[i]))
		}
		return int(toInt64(args[i])), nil
	}

	switch name {
	case "length":
		if err := arity(0); err != nil {
			return nil, true, err
		}
		return len(runes), true, nil
	case "isEmpty":
		if err := arity(0); err != nil {
			return nil, true, err
		}
		return len(runes) == 0, true, nil
	case "charAt":
		if err := arity(1); err != nil {
			return nil, true, err
		}
		i, err := intArg(0)
		if err != nil {
			return nil, true, err
		}
		if i < 0 || i >= len(runes) {
			return nil, true, &indexOutOfBounds{index: i, length: len(runes)}
		}
		return Char(runes[i]), true, nil
	case "substring":
		if len(args) != 1 && len(args) != 2 {
			return nil, true, fmt.Errorf("String.substring expects 1 or 2 arguments, got %d", len(args))
		}
		begin, err := intArg(0)
		if err != nil {
			return nil, true, err
		}
		end := len(runes)
		if len(args) == 2 {
			if end, err = intArg(1); err != nil {
				return nil, true, err
			}
		}
		if begin < 0 || end > len(runes) || begin > end {
			return nil, true, &indexOutOfBounds{index: max(begin, end), length: len(runes)}
		}
		return string(runes[begin:end]), true, nil
	case "indexOf", "lastIndexOf":
		if err := arity(1); err != nil {
			return nil, true, err
		}
		needle, err := textArg(0)
		if err != nil {
			return nil, true, err
		}
		var byteIdx int
		if name == "indexOf" {
			byteIdx = strings.Index(s, needle)
		} else {
			byteIdx = strings.LastIndex(s, needle)
		}
		if byteIdx < 0 {
			return -1, true, nil
		}
		return len([]rune(s[:byteIdx])), true, nil
	case "contains", "startsWith", "endsWith", "equalsIgnoreCase", "concat":
		if err := arity(1); err != nil {
			return nil, true, err
		}
		other, err := textArg(0)
		if err != nil {
			return nil, true, err
		}
		switch name {
		case "contains":
			return strings.Contains(s, other), true, nil
		case "startsWith":
			return strings.HasPrefix(s, other), true, nil
		case "endsWith":
			return strings.HasSuffix(s, other), true, nil
		case "equalsIgnoreCase":
			return strings.EqualFold(s, other), true, nil
		default:
			return s + other, true, nil
		}
	case "equals":
		if err := arity(1); err != nil {
			return nil, true, err
		}
		other, isString := args[0].(string)
		return isString && other == s, true, nil
	case "compareTo":
		if err := arity(1); err != nil {
			return nil, true, err
		}
		other, err := textArg(0)
		if err != nil {
			return nil, true, err
		}
		return strings.Compare(s, other), true, nil
	case "toUpperCase":
		if err := arity(0); err != nil {
			return nil, true, err
		}
		return strings.ToUpper(s), true, nil
	case "toLowerCase":
		if err := arity(0); err != nil {
			return nil, true, err
		}
		return strings.ToLower(s), true, nil
	case "trim":
		if err := arity(0); err != nil {
			return nil, true, err
		}
		return strings.TrimSpace(s), true, nil
	case "replace":
		if err := arity(2); err != nil {
			return nil, true, err
		}
		old, err := textArg(0)
		if err != nil {
			return nil, true, err
		}
		repl, err := textArg(1)
		if err != nil {
			return nil, true, err
		}
		return strings.ReplaceAll(s, old, repl), true, nil
	case "split":
		if err := arity(1); err != nil {
			return nil, true, err
		}
		pattern, err := textArg(0)
		if err != nil {
			return nil, true, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, true, fmt.Errorf("String.split: %w", err)
		}
		parts := re.Split(s, -1)
		for len(parts) > 0 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, true, nil
	case "toString":
		if err := arity(0); err != nil {
			return nil, true, err
		}
		return s, true, nil
	default:
		return nil, false, nil
	}
}
