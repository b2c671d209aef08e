package bytecode

import (
	"strings"
	"testing"

	"github.com/chazu/rickroll/pkg/lang"
)

func sampleProgram() *Program {
	prog := NewProgram()

	f := NewFunction("double", []string{"n"})
	f.Emit(Instruction{Op: OpPctx}, 0)
	f.Emit(Instruction{Op: OpExp, Name: "n"}, 1)
	f.Emit(Instruction{Op: OpRet, Expr: []lang.Token{
		lang.NameToken("n"),
		lang.OpToken(lang.OpMul),
		lang.ValueToken(lang.IntValue(2)),
	}}, 2)
	prog.Add(f)

	m := NewFunction(MainName, nil)
	m.Emit(Instruction{Op: OpPctx}, 0)
	m.Emit(Instruction{Op: OpLet, Name: "r"}, 4)
	m.Emit(Instruction{Op: OpPushq, Name: "r"}, 5)
	m.Emit(Instruction{Op: OpScall, Name: "r", Func: "double"}, 5)
	m.Emit(Instruction{Op: OpPut, Expr: []lang.Token{lang.NameToken("r")}}, 6)
	m.Emit(Instruction{Op: OpDctx}, 0)
	m.Emit(Instruction{Op: OpRet, Expr: []lang.Token{lang.ValueToken(lang.Undefined)}}, 0)
	prog.Add(m)

	return prog
}

func TestSerializeRoundTrip(t *testing.T) {
	prog := sampleProgram()

	data, err := prog.Serialize()
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if string(data[0:4]) != string(FormatMagic) {
		t.Errorf("serialized data does not start with magic %q", FormatMagic)
	}

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}

	if len(got.Order) != 2 || got.Order[0] != "double" || got.Order[1] != MainName {
		t.Errorf("Order = %v, want [double %s]", got.Order, MainName)
	}
	if !got.HasMain() {
		t.Errorf("round trip lost [Main]")
	}
	if got.Get("double").Arity() != 1 {
		t.Errorf("round trip lost parameters")
	}
	if got.Disassemble() != prog.Disassemble() {
		t.Errorf("disassembly differs after round trip:\n--- before\n%s\n--- after\n%s",
			prog.Disassemble(), got.Disassemble())
	}
}

func TestDeserializeErrors(t *testing.T) {
	if _, err := Deserialize([]byte{'R', 'R'}); err == nil {
		t.Error("short data: expected error")
	}
	if _, err := Deserialize([]byte{'X', 'X', 'X', 'X', 0, 1, 0}); err == nil {
		t.Error("bad magic: expected error")
	}
	newer := append([]byte{}, FormatMagic...)
	newer = append(newer, 0xFF, 0xFF)
	if _, err := Deserialize(newer); err == nil {
		t.Error("newer version: expected error")
	}
}

func TestOpcodeMetadata(t *testing.T) {
	for op, info := range opInfoTable {
		if info.Name == "" {
			t.Errorf("opcode %d has no name", op)
		}
	}
	if OpcodeCount() != 12 {
		t.Errorf("OpcodeCount() = %d, want 12", OpcodeCount())
	}
	if !OpJmp.IsJump() || !OpJmpif.IsJump() || OpRet.IsJump() {
		t.Error("IsJump misclassifies opcodes")
	}
	if !OpCall.IsCall() || !OpScall.IsCall() || OpPushq.IsCall() {
		t.Error("IsCall misclassifies opcodes")
	}
}

func TestDisassemble(t *testing.T) {
	prog := sampleProgram()
	listing := prog.Disassemble()

	for _, want := range []string{
		"; === double ===",
		"; Parameters (1): n",
		"; === [Main] ===",
		"scall r double",
		"put r",
		"; line 5",
		"ret n * 2",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("disassembly missing %q:\n%s", want, listing)
		}
	}
}
