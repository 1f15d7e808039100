// Package bsh implements an embedded interpreter for a BeanShell-flavoured
// subset of Java:
//   - Typed declarations (`int x = 1;`) and loosely typed assignment (`x = 1;`).
//   - Methods, typed or untyped, with overloading by parameter count.
//   - if/else, while, do/while, classic and enhanced for, break/continue.
//   - throw and try/catch/finally, with `new Exception("...")`.
//   - Java numeric promotion, string concatenation, casts and instanceof.
//   - Field, method and index access on Go host values through reflection.
//   - Built-ins print, println, unset, typeof, source and eval.
//
// Variables live in a NameSpace owned by the Interpreter. The namespace is
// safe for concurrent reads while a script runs, but a session has one writer
// at a time. Statements with no value evaluate to Void and the null literal
// evaluates to Null; hosts map both to nil.
package bsh
