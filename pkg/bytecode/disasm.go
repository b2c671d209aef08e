package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of every function in
// definition order.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i, name := range p.Order {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Funcs[name].Disassemble())
	}
	return sb.String()
}

// Disassemble returns a human-readable listing of a single function.
func (f *Function) Disassemble() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "; === %s ===\n", f.Name)
	if len(f.Params) > 0 {
		fmt.Fprintf(&sb, "; Parameters (%d): %s\n", len(f.Params), strings.Join(f.Params, ", "))
	}

	for addr, in := range f.Code {
		fmt.Fprintf(&sb, "%04d  %-40s", addr, in.String())
		if line := f.DebugLine(addr); line > 0 {
			fmt.Fprintf(&sb, "; line %d", line)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
