package compiler

import (
	"testing"

	"github.com/chazu/rickroll/pkg/bytecode"
	"github.com/chazu/rickroll/pkg/lang"
)

func compileSrc(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	stmts, err := NewLexer(src).Lex()
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	prog, cerr := Compile(stmts)
	if cerr != nil {
		t.Fatalf("Compile error: %v", cerr)
	}
	return prog
}

func opSequence(f *bytecode.Function) []bytecode.Op {
	ops := make([]bytecode.Op, len(f.Code))
	for i, in := range f.Code {
		ops[i] = in.Op
	}
	return ops
}

func TestCompileIfShape(t *testing.T) {
	prog := compileSrc(t, `[Chorus]
Never gonna let a down
Inside we both know TRUE
Never gonna give a 1
Your heart's been aching but you're too shy to say it
`)
	main := prog.Get(bytecode.MainName)
	if main == nil {
		t.Fatal("no [Main] compiled")
	}

	want := []bytecode.Op{
		bytecode.OpPctx,  // 0 function scope
		bytecode.OpLet,   // 1
		bytecode.OpPctx,  // 2 block scope
		bytecode.OpJmpif, // 3 -> 5
		bytecode.OpJmp,   // 4 -> 6 (the closing dctx)
		bytecode.OpSet,   // 5
		bytecode.OpDctx,  // 6 closes the block scope on both paths
		bytecode.OpDctx,  // 7 function epilogue
		bytecode.OpRet,   // 8
	}
	got := opSequence(main)
	if len(got) != len(want) {
		t.Fatalf("got %d instructions, want %d:\n%s", len(got), len(want), main.Disassemble())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d = %v, want %v", i, got[i], want[i])
		}
	}
	if main.Code[3].Addr != 5 {
		t.Errorf("jmpif target = %d, want 5", main.Code[3].Addr)
	}
	if main.Code[4].Addr != 6 {
		t.Errorf("placeholder jmp target = %d, want 6", main.Code[4].Addr)
	}
}

func TestCompileWhileShape(t *testing.T) {
	prog := compileSrc(t, `[Chorus]
Never gonna let a down
Never gonna give a 0
Inside we both know a < 3
Never gonna give a a + 1
We know the game and we're gonna play it
`)
	main := prog.Get(bytecode.MainName)

	want := []bytecode.Op{
		bytecode.OpPctx,  // 0
		bytecode.OpLet,   // 1
		bytecode.OpSet,   // 2
		bytecode.OpPctx,  // 3 loop scope, re-entered each iteration
		bytecode.OpJmpif, // 4 -> 6
		bytecode.OpJmp,   // 5 -> 9 (loop exit dctx)
		bytecode.OpSet,   // 6
		bytecode.OpDctx,  // 7
		bytecode.OpJmp,   // 8 -> 3 back to the check's pctx
		bytecode.OpDctx,  // 9 exit pop
		bytecode.OpDctx,  // 10
		bytecode.OpRet,   // 11
	}
	got := opSequence(main)
	if len(got) != len(want) {
		t.Fatalf("got %d instructions, want %d:\n%s", len(got), len(want), main.Disassemble())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d = %v, want %v", i, got[i], want[i])
		}
	}
	if main.Code[4].Addr != 6 {
		t.Errorf("jmpif target = %d, want 6", main.Code[4].Addr)
	}
	if main.Code[5].Addr != 9 {
		t.Errorf("exit jmp target = %d, want 9", main.Code[5].Addr)
	}
	if main.Code[8].Addr != 3 {
		t.Errorf("back jmp target = %d, want 3", main.Code[8].Addr)
	}
}

func TestCompileVersePrologue(t *testing.T) {
	prog := compileSrc(t, `[Verse add]
(Ooh give you a, b)
(Ooh) Never gonna give, never gonna give (give you a + b)

[Chorus]
Never gonna say 1
`)
	f := prog.Get("add")
	if f == nil {
		t.Fatal("verse add not compiled")
	}
	if f.Arity() != 2 {
		t.Fatalf("arity = %d, want 2", f.Arity())
	}
	if f.Code[0].Op != bytecode.OpPctx {
		t.Errorf("prologue does not begin with pctx")
	}
	if f.Code[1].Op != bytecode.OpExp || f.Code[1].Name != "a" {
		t.Errorf("param a not bound: %v", f.Code[1])
	}
	if f.Code[2].Op != bytecode.OpExp || f.Code[2].Name != "b" {
		t.Errorf("param b not bound: %v", f.Code[2])
	}
	// Fallthrough return after the explicit one.
	last := f.Code[f.Len()-1]
	if last.Op != bytecode.OpRet {
		t.Errorf("function does not end with ret")
	}
}

func TestCompileCallLowering(t *testing.T) {
	prog := compileSrc(t, `[Verse f]
(Ooh give you a, b)
Never gonna say a

[Chorus]
Never gonna let x down
Never gonna let y down
Never gonna let r down
(Ooh give you r) Never gonna run f and desert x, y
`)
	main := prog.Get(bytecode.MainName)

	var pushq []string
	var scall *bytecode.Instruction
	for i := range main.Code {
		in := main.Code[i]
		switch in.Op {
		case bytecode.OpPushq:
			pushq = append(pushq, in.Name)
		case bytecode.OpScall:
			scall = &main.Code[i]
		}
	}
	if len(pushq) != 2 || pushq[0] != "x" || pushq[1] != "y" {
		t.Errorf("pushq order = %v, want [x y]", pushq)
	}
	if scall == nil || scall.Name != "r" || scall.Func != "f" {
		t.Errorf("scall = %v, want scall r f", scall)
	}
}

func TestCompileSelfRecursion(t *testing.T) {
	compileSrc(t, `[Verse loop]
(Ooh give you up)
Never gonna run loop and desert you

[Chorus]
Never gonna run loop and desert you
`)
}

func TestCompileBuiltinCall(t *testing.T) {
	compileSrc(t, `[Chorus]
Never gonna let a down
(Ooh give you a) Never gonna run ArrayOf and desert you
`)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind lang.ErrorKind
	}{
		{
			"forward reference",
			"[Chorus]\nNever gonna run f and desert you\n\n[Verse f]\n(Ooh give you up)\nNever gonna say 1\n",
			lang.NameError,
		},
		{
			"unknown function",
			"[Chorus]\nNever gonna run nope and desert you\n",
			lang.NameError,
		},
		{
			"if end without check",
			"[Chorus]\nYour heart's been aching but you're too shy to say it\n",
			lang.SyntaxError,
		},
		{
			"while end without check",
			"[Chorus]\nWe know the game and we're gonna play it\n",
			lang.SyntaxError,
		},
		{
			"unclosed check",
			"[Chorus]\nInside we both know TRUE\nNever gonna say 1\n",
			lang.SyntaxError,
		},
		{
			"duplicate verse",
			"[Verse f]\n(Ooh give you up)\nNever gonna say 1\n\n[Verse f]\n(Ooh give you up)\nNever gonna say 2\n",
			lang.NameError,
		},
	}

	for _, tc := range tests {
		stmts, err := NewLexer(tc.src).Lex()
		if err != nil {
			t.Errorf("%s: unexpected lex error: %v", tc.name, err)
			continue
		}
		_, cerr := Compile(stmts)
		if cerr == nil {
			t.Errorf("%s: expected compile error", tc.name)
			continue
		}
		if cerr.Kind != tc.kind {
			t.Errorf("%s: kind = %v, want %v", tc.name, cerr.Kind, tc.kind)
		}
	}
}

func TestCompileDebugLines(t *testing.T) {
	prog := compileSrc(t, `[Chorus]
Never gonna let a down
Never gonna give a 1
`)
	main := prog.Get(bytecode.MainName)
	if got := main.DebugLine(1); got != 2 {
		t.Errorf("let line = %d, want 2", got)
	}
	if got := main.DebugLine(2); got != 3 {
		t.Errorf("set line = %d, want 3", got)
	}
	// Synthetic prologue and epilogue carry line 0.
	if got := main.DebugLine(0); got != 0 {
		t.Errorf("pctx line = %d, want 0", got)
	}
}
