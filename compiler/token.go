package compiler

import (
	"fmt"
	"strings"

	"github.com/chazu/rickroll/pkg/lang"
)

// StatementKind identifies an IR item produced by the lexer.
type StatementKind uint8

const (
	StmtIntro StatementKind = iota
	StmtChorus
	StmtVerse
	StmtLet
	StmtAssign
	StmtSay
	StmtCheck
	StmtIfEnd
	StmtWhileEnd
	StmtRun
	StmtRunAssign
	StmtReturn
)

var stmtNames = map[StatementKind]string{
	StmtIntro:     "INTRO",
	StmtChorus:    "CHORUS",
	StmtVerse:     "VERSE",
	StmtLet:       "LET",
	StmtAssign:    "ASSIGN",
	StmtSay:       "SAY",
	StmtCheck:     "CHECK",
	StmtIfEnd:     "IF_END",
	StmtWhileEnd:  "WHILE_END",
	StmtRun:       "RUN",
	StmtRunAssign: "RUN_ASSIGN",
	StmtReturn:    "RETURN",
}

func (k StatementKind) String() string {
	if name, ok := stmtNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Statement(%d)", k)
}

// Statement is one line-tagged IR item. Which fields are meaningful depends
// on Kind: Name holds the Verse/function name for VERSE/RUN/RUN_ASSIGN and
// the variable for LET/ASSIGN; Var holds the RUN_ASSIGN target; Params the
// Verse parameter list; Args the bare variable names of a call; Expr the
// tokenised expression of ASSIGN/SAY/CHECK/RETURN.
type Statement struct {
	Kind   StatementKind
	Line   int
	Name   string
	Var    string
	Params []string
	Args   []string
	Expr   []lang.Token
}

// IsBlockHeader reports whether the statement opens a block.
func (s Statement) IsBlockHeader() bool {
	return s.Kind == StmtIntro || s.Kind == StmtChorus || s.Kind == StmtVerse
}

func (s Statement) String() string {
	var sb strings.Builder
	sb.WriteString(s.Kind.String())
	if s.Name != "" {
		sb.WriteByte(' ')
		sb.WriteString(s.Name)
	}
	if s.Var != "" {
		fmt.Fprintf(&sb, " -> %s", s.Var)
	}
	if len(s.Params) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(s.Params, ", "))
	}
	if len(s.Args) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(s.Args, ", "))
	}
	if len(s.Expr) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(lang.ExprString(s.Expr))
	}
	return sb.String()
}
