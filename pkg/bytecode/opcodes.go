package bytecode

import (
	"fmt"
	"strings"

	"github.com/chazu/rickroll/pkg/lang"
)

// Op identifies a bytecode instruction.
type Op uint8

const (
	OpPctx  Op = iota // push a new scope
	OpDctx            // pop the innermost scope
	OpLet             // declare Name in the innermost scope as UNDEFINED
	OpSet             // evaluate Expr, assign to Name
	OpPut             // evaluate Expr, print with trailing newline
	OpJmp             // unconditional jump to Addr
	OpJmpif           // evaluate Expr, jump to Addr when TRUE
	OpRet             // evaluate Expr, return from the activation
	OpExp             // pop the argument queue head, bind as Name
	OpPushq           // push the value of Name onto the argument queue
	OpCall            // call Func, discard the result
	OpScall           // call Func, assign the result to Name
)

// OpInfo describes an opcode's operands for validation and disassembly.
type OpInfo struct {
	Name    string
	HasName bool // variable-name operand
	HasFunc bool // function-name operand
	HasAddr bool // jump-target operand
	HasExpr bool // expression operand
}

var opInfoTable = map[Op]OpInfo{
	OpPctx:  {Name: "pctx"},
	OpDctx:  {Name: "dctx"},
	OpLet:   {Name: "let", HasName: true},
	OpSet:   {Name: "set", HasName: true, HasExpr: true},
	OpPut:   {Name: "put", HasExpr: true},
	OpJmp:   {Name: "jmp", HasAddr: true},
	OpJmpif: {Name: "jmpif", HasAddr: true, HasExpr: true},
	OpRet:   {Name: "ret", HasExpr: true},
	OpExp:   {Name: "exp", HasName: true},
	OpPushq: {Name: "pushq", HasName: true},
	OpCall:  {Name: "call", HasFunc: true},
	OpScall: {Name: "scall", HasName: true, HasFunc: true},
}

// Info returns operand metadata for an opcode.
func (op Op) Info() OpInfo {
	if info, ok := opInfoTable[op]; ok {
		return info
	}
	return OpInfo{Name: fmt.Sprintf("UNKNOWN(%d)", uint8(op))}
}

func (op Op) String() string {
	return op.Info().Name
}

// IsJump reports whether the opcode transfers control.
func (op Op) IsJump() bool {
	return op == OpJmp || op == OpJmpif
}

// IsCall reports whether the opcode invokes a function.
func (op Op) IsCall() bool {
	return op == OpCall || op == OpScall
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opInfoTable)
}

// Instruction is one flat bytecode operation. Operand fields beyond those
// named by the opcode's OpInfo are zero.
type Instruction struct {
	Op   Op           `cbor:"op"`
	Name string       `cbor:"name,omitempty"`
	Func string       `cbor:"func,omitempty"`
	Addr int          `cbor:"addr,omitempty"`
	Expr []lang.Token `cbor:"expr,omitempty"`
}

func (in Instruction) String() string {
	info := in.Op.Info()
	var sb strings.Builder
	sb.WriteString(info.Name)
	if info.HasName {
		sb.WriteByte(' ')
		sb.WriteString(in.Name)
	}
	if info.HasFunc {
		sb.WriteByte(' ')
		sb.WriteString(in.Func)
	}
	if info.HasExpr {
		sb.WriteByte(' ')
		sb.WriteString(lang.ExprString(in.Expr))
	}
	if info.HasAddr {
		fmt.Fprintf(&sb, " -> %d", in.Addr)
	}
	return sb.String()
}
