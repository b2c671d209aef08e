package vm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/chazu/rickroll/pkg/bytecode"
	"github.com/chazu/rickroll/pkg/lang"
)

const (
	// MaxRecursionDepth bounds the number of live activations.
	MaxRecursionDepth = 10000

	// maxUnwindFrames caps traceback wrapping during stack unwind.
	maxUnwindFrames = 8
)

// frame is one activation on the call stack: the function being executed
// and its instruction pointer.
type frame struct {
	fn *bytecode.Function
	ip int
}

// Interpreter executes a compiled program. It owns all mutable runtime
// state: the scope, the call stack, the saved caller contexts, and the
// FIFO argument queue that carries values across call/scall.
type Interpreter struct {
	prog     *bytecode.Program
	scope    *Scope
	frames   []frame
	saved    [][]Context
	argQueue []lang.Value

	stdout io.Writer
	stdin  *bufio.Reader

	// captureGlobal makes the dctx that empties the running activation
	// merge its bindings into the global context. Set while [Global]
	// runs so Intro variables outlive it.
	captureGlobal bool
}

// New creates an interpreter over the given program and I/O streams.
func New(prog *bytecode.Program, stdout io.Writer, stdin io.Reader) *Interpreter {
	return &Interpreter{
		prog:   prog,
		scope:  NewScope(),
		stdout: stdout,
		stdin:  bufio.NewReader(stdin),
	}
}

// NewSession creates an interpreter sharing a caller-owned global context.
// Used by the REPL to keep bindings alive across inputs.
func NewSession(prog *bytecode.Program, globals Context, stdout io.Writer, stdin io.Reader) *Interpreter {
	return &Interpreter{
		prog:   prog,
		scope:  NewScopeWith(globals),
		stdout: stdout,
		stdin:  bufio.NewReader(stdin),
	}
}

// Globals returns the process-lifetime global context.
func (in *Interpreter) Globals() Context {
	return in.scope.Global()
}

// EvalExpr evaluates a tokenised expression against the current scope.
func (in *Interpreter) EvalExpr(tokens []lang.Token) (lang.Value, *lang.Error) {
	return Eval(tokens, in.scope)
}

// Execute runs the program: [Global] first when present (its base scope
// survives as the global context), then [Main]. The returned value is
// [Main]'s result.
func (in *Interpreter) Execute() (lang.Value, *lang.Error) {
	if !in.prog.HasMain() {
		return lang.Undefined, lang.NewError(lang.NameError, "Could not find a [Chorus] to execute", 0)
	}
	if err := in.RunGlobal(); err != nil {
		return lang.Undefined, err
	}
	return in.RunMain()
}

// RunMain executes [Main] and returns its result.
func (in *Interpreter) RunMain() (lang.Value, *lang.Error) {
	if !in.prog.HasMain() {
		return lang.Undefined, lang.NewError(lang.NameError, "Could not find a [Chorus] to execute", 0)
	}
	result, err := in.run(bytecode.MainName)
	if err != nil {
		return lang.Undefined, in.unwind(err)
	}
	return result, nil
}

// RunGlobal executes [Global] with global-context capture enabled.
func (in *Interpreter) RunGlobal() *lang.Error {
	if !in.prog.HasGlobal() {
		return nil
	}
	in.captureGlobal = true
	_, err := in.run(bytecode.GlobalName)
	in.captureGlobal = false
	if err != nil {
		return in.unwind(err)
	}
	return nil
}

// run executes the named function to completion. Calls are handled
// iteratively within the single dispatch loop, so Go stack depth stays
// constant regardless of program recursion.
func (in *Interpreter) run(name string) (lang.Value, *lang.Error) {
	fn := in.prog.Get(name)
	if fn == nil {
		return lang.Undefined, lang.Errorf(lang.NameError, 0, "Function name %s doesn't exist", name)
	}
	in.frames = in.frames[:0]
	in.saved = in.saved[:0]
	in.argQueue = in.argQueue[:0]

	in.frames = append(in.frames, frame{fn: fn})
	ip := 0

	for {
		if ip >= fn.Len() {
			return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, 0,
				"Instruction pointer out of range in %s", fn.Name)
		}
		instr := fn.Code[ip]
		line := fn.DebugLine(ip)
		in.frames[len(in.frames)-1].ip = ip

		switch instr.Op {
		case bytecode.OpPctx:
			in.scope.Push()

		case bytecode.OpDctx:
			popped := in.scope.Pop()
			if in.captureGlobal && in.scope.Depth() == 1 && len(in.frames) == 1 {
				global := in.scope.Global()
				for k, v := range popped {
					global[k] = v
				}
			}

		case bytecode.OpLet:
			top := in.scope.Top()
			if _, exists := top[instr.Name]; exists {
				return lang.Undefined, lang.Errorf(lang.NameError, line,
					"Variable name %s already exists", instr.Name)
			}
			top[instr.Name] = lang.Undefined

		case bytecode.OpSet:
			v, err := in.evalAt(instr.Expr, line)
			if err != nil {
				return lang.Undefined, err
			}
			if !in.scope.Set(instr.Name, v) {
				return lang.Undefined, lang.Errorf(lang.NameError, line,
					"No such variable %s", instr.Name)
			}

		case bytecode.OpPut:
			v, err := in.evalAt(instr.Expr, line)
			if err != nil {
				return lang.Undefined, err
			}
			fmt.Fprintln(in.stdout, v)

		case bytecode.OpJmp:
			ip = instr.Addr
			continue

		case bytecode.OpJmpif:
			v, err := in.evalAt(instr.Expr, line)
			if err != nil {
				return lang.Undefined, err
			}
			if v.Kind != lang.KindBool {
				return lang.Undefined, lang.NewError(lang.IllegalArgumentError,
					"Unexpected non-boolean argument", line)
			}
			if v.Bool {
				ip = instr.Addr
				continue
			}

		case bytecode.OpPushq:
			v, ok := in.scope.Get(instr.Name)
			if !ok {
				return lang.Undefined, lang.Errorf(lang.NameError, line,
					"No such variable %s", instr.Name)
			}
			in.argQueue = append(in.argQueue, v.Clone())

		case bytecode.OpExp:
			if len(in.argQueue) == 0 {
				return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, line,
					"Missing argument for %s", instr.Name)
			}
			v := in.argQueue[0]
			in.argQueue = in.argQueue[1:]
			in.scope.Top()[instr.Name] = v

		case bytecode.OpCall, bytecode.OpScall:
			// User functions shadow built-ins with the same name.
			if callee := in.prog.Get(instr.Func); callee != nil {
				if len(in.frames) >= MaxRecursionDepth {
					return lang.Undefined, lang.Errorf(lang.OverflowError, line,
						"Too many recursive calls for function %s", instr.Func)
				}
				if len(in.argQueue) != callee.Arity() {
					return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, line,
						"Wrong number of arguments for %s", instr.Func)
				}
				in.frames[len(in.frames)-1].ip = ip
				in.saved = append(in.saved, in.scope.Behead())
				fn = callee
				ip = 0
				in.frames = append(in.frames, frame{fn: fn})
				continue
			}

			b, ok := Builtins[instr.Func]
			if !ok {
				return lang.Undefined, lang.Errorf(lang.NameError, line,
					"Function name %s doesn't exist", instr.Func)
			}
			args := make([]lang.Value, len(in.argQueue))
			copy(args, in.argQueue)
			in.argQueue = in.argQueue[:0]
			if b.Arity >= 0 && len(args) != b.Arity {
				return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, line,
					"Wrong number of arguments for %s", instr.Func)
			}
			result, err := b.Fn(in, args)
			if err != nil {
				if err.Line == 0 {
					err.Line = line
				}
				return lang.Undefined, err
			}
			if instr.Op == bytecode.OpScall {
				if !in.scope.Set(instr.Name, result) {
					return lang.Undefined, lang.Errorf(lang.NameError, line,
						"No such variable %s", instr.Name)
				}
			}

		case bytecode.OpRet:
			result, err := in.evalAt(instr.Expr, line)
			if err != nil {
				return lang.Undefined, err
			}
			in.scope.Behead()
			in.frames = in.frames[:len(in.frames)-1]
			if len(in.frames) == 0 {
				return result, nil
			}
			in.scope.PushAll(in.saved[len(in.saved)-1])
			in.saved = in.saved[:len(in.saved)-1]
			top := in.frames[len(in.frames)-1]
			fn = top.fn
			ip = top.ip
			caller := fn.Code[ip]
			if caller.Op == bytecode.OpScall {
				if !in.scope.Set(caller.Name, result) {
					return lang.Undefined, lang.Errorf(lang.NameError, fn.DebugLine(ip),
						"No such variable %s", caller.Name)
				}
			}
		}

		ip++
	}
}

// evalAt evaluates an expression and stamps the instruction's source line
// onto any error that lacks one.
func (in *Interpreter) evalAt(tokens []lang.Token, line int) (lang.Value, *lang.Error) {
	v, err := Eval(tokens, in.scope)
	if err != nil && err.Line == 0 {
		err.Line = line
	}
	return v, err
}

// unwind wraps err in one traceback per live activation, innermost first,
// capped at maxUnwindFrames. Each wrapper names the function and the line
// of its pending instruction.
func (in *Interpreter) unwind(err *lang.Error) *lang.Error {
	count := 0
	for len(in.frames) > 0 && count < maxUnwindFrames {
		f := in.frames[len(in.frames)-1]
		in.frames = in.frames[:len(in.frames)-1]
		err = lang.Traceback(fmt.Sprintf("in %s", f.fn.Name), f.fn.DebugLine(f.ip), err)
		count++
	}
	in.frames = in.frames[:0]
	in.saved = in.saved[:0]
	in.argQueue = in.argQueue[:0]
	in.scope.Behead()
	return err
}
