package lang

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a language error.
type ErrorKind uint8

const (
	SyntaxError ErrorKind = iota
	NameError
	IllegalArgumentError
	OverflowError
	TracebackError
)

var errorKindNames = map[ErrorKind]string{
	SyntaxError:          "Syntax",
	NameError:            "Name",
	IllegalArgumentError: "Illegal Argument",
	OverflowError:        "Overflow",
	TracebackError:       "Traceback",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error is the single error value used by the lexer, compiler, evaluator,
// and interpreter. Line is 1-based; 0 means unknown. Cause chains deeper
// errors through Traceback wrappers.
type Error struct {
	Kind  ErrorKind
	Desc  string
	Line  int
	Cause *Error
}

// NewError makes a non-traceback error.
func NewError(kind ErrorKind, desc string, line int) *Error {
	return &Error{Kind: kind, Desc: desc, Line: line}
}

// Errorf makes a non-traceback error with a formatted description.
func Errorf(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Desc: fmt.Sprintf(format, args...), Line: line}
}

// Traceback wraps cause with caller context.
func Traceback(desc string, line int, cause *Error) *Error {
	return &Error{Kind: TracebackError, Desc: desc, Line: line, Cause: cause}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(" Error")
	if e.Desc != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Desc)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", e.Line)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Format renders the error and its cause chain, one indented
// "caused by:" line per cause.
func (e *Error) Format() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	indent := "  "
	for c := e.Cause; c != nil; c = c.Cause {
		sb.WriteByte('\n')
		sb.WriteString(indent)
		sb.WriteString("caused by: ")
		sb.WriteString(c.Error())
		indent += "  "
	}
	return sb.String()
}

// Root returns the innermost non-traceback error of the chain.
func (e *Error) Root() *Error {
	c := e
	for c.Cause != nil {
		c = c.Cause
	}
	return c
}
