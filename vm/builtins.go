package vm

import (
	"fmt"
	"io"

	"github.com/chazu/rickroll/pkg/lang"
)

// BuiltinFunc implements a built-in function. Arguments arrive in call
// order; the interpreter provides itself for I/O access.
type BuiltinFunc func(in *Interpreter, args []lang.Value) (lang.Value, *lang.Error)

// Builtin describes one built-in function. Arity -1 means variadic.
type Builtin struct {
	Arity int
	Fn    BuiltinFunc
}

// Builtins is the built-in function table. User functions with the same
// name shadow these.
var Builtins = map[string]Builtin{
	"ArrayOf":      {Arity: -1, Fn: builtinArrayOf},
	"ArrayLength":  {Arity: 1, Fn: builtinArrayLength},
	"ArrayPush":    {Arity: 3, Fn: builtinArrayPush},
	"ArrayPop":     {Arity: 2, Fn: builtinArrayPop},
	"ArrayReplace": {Arity: 3, Fn: builtinArrayReplace},
	"PutChar":      {Arity: 1, Fn: builtinPutChar},
	"ReadLine":     {Arity: 0, Fn: builtinReadLine},
}

// IsBuiltin reports whether name is a built-in function.
func IsBuiltin(name string) bool {
	_, ok := Builtins[name]
	return ok
}

func wrongType(name string) *lang.Error {
	return lang.Errorf(lang.IllegalArgumentError, 0, "Wrong type of arguments for %s", name)
}

func builtinArrayOf(_ *Interpreter, args []lang.Value) (lang.Value, *lang.Error) {
	out := make([]lang.Value, len(args))
	copy(out, args)
	return lang.ArrayValue(out), nil
}

func builtinArrayLength(_ *Interpreter, args []lang.Value) (lang.Value, *lang.Error) {
	if args[0].Kind != lang.KindArray {
		return lang.Undefined, wrongType("ArrayLength")
	}
	return lang.IntValue(int32(len(args[0].Array))), nil
}

// builtinArrayPush returns a new array with the value inserted at the
// index; the input array is never mutated. Valid indices are [0, len].
func builtinArrayPush(_ *Interpreter, args []lang.Value) (lang.Value, *lang.Error) {
	arr, idx, val := args[0], args[1], args[2]
	if arr.Kind != lang.KindArray || idx.Kind != lang.KindInt {
		return lang.Undefined, wrongType("ArrayPush")
	}
	i := int(idx.Int)
	if i < 0 || i > len(arr.Array) {
		return lang.Undefined, lang.NewError(lang.IllegalArgumentError, "Array index out of bounds", 0)
	}
	out := make([]lang.Value, 0, len(arr.Array)+1)
	out = append(out, arr.Array[:i]...)
	out = append(out, val)
	out = append(out, arr.Array[i:]...)
	return lang.ArrayValue(out), nil
}

func builtinArrayPop(_ *Interpreter, args []lang.Value) (lang.Value, *lang.Error) {
	arr, idx := args[0], args[1]
	if arr.Kind != lang.KindArray || idx.Kind != lang.KindInt {
		return lang.Undefined, wrongType("ArrayPop")
	}
	i := int(idx.Int)
	if i < 0 || i >= len(arr.Array) {
		return lang.Undefined, lang.NewError(lang.IllegalArgumentError, "Array index out of bounds", 0)
	}
	out := make([]lang.Value, 0, len(arr.Array)-1)
	out = append(out, arr.Array[:i]...)
	out = append(out, arr.Array[i+1:]...)
	return lang.ArrayValue(out), nil
}

func builtinArrayReplace(_ *Interpreter, args []lang.Value) (lang.Value, *lang.Error) {
	arr, idx, val := args[0], args[1], args[2]
	if arr.Kind != lang.KindArray || idx.Kind != lang.KindInt {
		return lang.Undefined, wrongType("ArrayReplace")
	}
	i := int(idx.Int)
	if i < 0 || i >= len(arr.Array) {
		return lang.Undefined, lang.NewError(lang.IllegalArgumentError, "Array index out of bounds", 0)
	}
	out := make([]lang.Value, len(arr.Array))
	copy(out, arr.Array)
	out[i] = val
	return lang.ArrayValue(out), nil
}

func builtinPutChar(in *Interpreter, args []lang.Value) (lang.Value, *lang.Error) {
	if args[0].Kind != lang.KindChar {
		return lang.Undefined, wrongType("PutChar")
	}
	fmt.Fprintf(in.stdout, "%c", args[0].Char)
	return lang.Undefined, nil
}

// builtinReadLine reads one line from stdin, strips the trailing newline,
// and returns it as an array of chars. At end of input it returns an
// empty array.
func builtinReadLine(in *Interpreter, args []lang.Value) (lang.Value, *lang.Error) {
	line, err := in.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, 0, "Could not read from stdin: %v", err)
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	chars := make([]lang.Value, 0, len(line))
	for _, r := range line {
		chars = append(chars, lang.CharValue(r))
	}
	return lang.ArrayValue(chars), nil
}
