package compiler

import (
	"github.com/chazu/rickroll/pkg/bytecode"
	"github.com/chazu/rickroll/pkg/lang"
	"github.com/chazu/rickroll/vm"
)

// pendingBlock remembers an open Check: the address of its pctx (the
// while back-jump target) and the address of the placeholder jump to be
// patched when the block's end terminator arrives.
type pendingBlock struct {
	checkAddr int
	patchAddr int
}

// codegen lowers IR statements into bytecode. A function's name is
// registered in the program as soon as its body opens, so a Verse can
// call itself; any other forward reference is an error.
type codegen struct {
	prog    *bytecode.Program
	cur     *bytecode.Function
	pending []pendingBlock
}

// Compile lowers a full IR sequence into a fresh program.
func Compile(stmts []Statement) (*bytecode.Program, *lang.Error) {
	prog := bytecode.NewProgram()
	if err := CompileInto(prog, stmts); err != nil {
		return nil, err
	}
	return prog, nil
}

// CompileInto lowers IR into an existing program, extending its function
// table. Used by the REPL to accumulate definitions across inputs.
func CompileInto(prog *bytecode.Program, stmts []Statement) *lang.Error {
	c := &codegen{prog: prog}
	for _, s := range stmts {
		if err := c.statement(s); err != nil {
			return err
		}
	}
	return c.closeFunction(0)
}

func (c *codegen) statement(s Statement) *lang.Error {
	if s.IsBlockHeader() {
		if err := c.closeFunction(s.Line); err != nil {
			return err
		}
		switch s.Kind {
		case StmtIntro:
			c.open(bytecode.NewFunction(bytecode.GlobalName, nil), s.Line)
		case StmtChorus:
			c.open(bytecode.NewFunction(bytecode.MainName, nil), s.Line)
		default:
			if c.prog.Has(s.Name) {
				return lang.Errorf(lang.NameError, s.Line, "Function named %s already exists", s.Name)
			}
			c.open(bytecode.NewFunction(s.Name, s.Params), s.Line)
		}
		return nil
	}

	if c.cur == nil {
		return lang.NewError(lang.SyntaxError, "Statement not in function", s.Line)
	}

	switch s.Kind {
	case StmtLet:
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpLet, Name: s.Name}, s.Line)

	case StmtAssign:
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpSet, Name: s.Name, Expr: s.Expr}, s.Line)

	case StmtSay:
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpPut, Expr: s.Expr}, s.Line)

	case StmtCheck:
		// The compiler cannot yet know whether this opens an if or a
		// while; both lower to the same prologue. The condition is
		// evaluated inside the fresh scope, and the placeholder jump
		// always lands on a dctx that closes it (see the terminators).
		checkAddr := c.cur.Emit(bytecode.Instruction{Op: bytecode.OpPctx}, s.Line)
		jmpifAddr := c.cur.Emit(bytecode.Instruction{Op: bytecode.OpJmpif, Expr: s.Expr}, s.Line)
		c.cur.Patch(jmpifAddr, jmpifAddr+2)
		patchAddr := c.cur.Emit(bytecode.Instruction{Op: bytecode.OpJmp, Addr: -1}, s.Line)
		c.pending = append(c.pending, pendingBlock{checkAddr: checkAddr, patchAddr: patchAddr})

	case StmtIfEnd:
		blk, err := c.popPending(s.Line)
		if err != nil {
			return err
		}
		end := c.cur.Emit(bytecode.Instruction{Op: bytecode.OpDctx}, s.Line)
		c.cur.Patch(blk.patchAddr, end)

	case StmtWhileEnd:
		blk, err := c.popPending(s.Line)
		if err != nil {
			return err
		}
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpDctx}, s.Line)
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpJmp, Addr: blk.checkAddr}, s.Line)
		exit := c.cur.Emit(bytecode.Instruction{Op: bytecode.OpDctx}, s.Line)
		c.cur.Patch(blk.patchAddr, exit)

	case StmtRun:
		if err := c.checkCallee(s.Name, s.Line); err != nil {
			return err
		}
		for _, arg := range s.Args {
			c.cur.Emit(bytecode.Instruction{Op: bytecode.OpPushq, Name: arg}, s.Line)
		}
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpCall, Func: s.Name}, s.Line)

	case StmtRunAssign:
		if err := c.checkCallee(s.Name, s.Line); err != nil {
			return err
		}
		for _, arg := range s.Args {
			c.cur.Emit(bytecode.Instruction{Op: bytecode.OpPushq, Name: arg}, s.Line)
		}
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpScall, Name: s.Var, Func: s.Name}, s.Line)

	case StmtReturn:
		c.cur.Emit(bytecode.Instruction{Op: bytecode.OpRet, Expr: s.Expr}, s.Line)
	}
	return nil
}

// open begins a new function: register its name, push its scope, and bind
// each parameter from the argument queue.
func (c *codegen) open(f *bytecode.Function, line int) {
	c.cur = f
	c.prog.Add(f)
	f.Emit(bytecode.Instruction{Op: bytecode.OpPctx}, 0)
	for _, p := range f.Params {
		f.Emit(bytecode.Instruction{Op: bytecode.OpExp, Name: p}, line)
	}
}

// closeFunction seals the current function with the fallthrough return.
func (c *codegen) closeFunction(line int) *lang.Error {
	if c.cur == nil {
		return nil
	}
	if len(c.pending) > 0 {
		return lang.NewError(lang.SyntaxError, "Unbalanced statements", line)
	}
	c.cur.Emit(bytecode.Instruction{Op: bytecode.OpDctx}, 0)
	c.cur.Emit(bytecode.Instruction{Op: bytecode.OpRet,
		Expr: []lang.Token{lang.ValueToken(lang.Undefined)}}, 0)
	c.cur = nil
	return nil
}

func (c *codegen) popPending(line int) (pendingBlock, *lang.Error) {
	if len(c.pending) == 0 {
		return pendingBlock{}, lang.NewError(lang.SyntaxError, "Unbalanced statements", line)
	}
	blk := c.pending[len(c.pending)-1]
	c.pending = c.pending[:len(c.pending)-1]
	return blk, nil
}

// checkCallee enforces that call targets are already bound: user functions
// must exist in the table (a Verse is registered before its body compiles,
// so self-calls resolve); built-ins are always bound.
func (c *codegen) checkCallee(name string, line int) *lang.Error {
	if c.prog.Has(name) || vm.IsBuiltin(name) {
		return nil
	}
	return lang.Errorf(lang.NameError, line, "Function name %s doesn't exist", name)
}
