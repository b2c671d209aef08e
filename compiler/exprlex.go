package compiler

import (
	"math"
	"strconv"

	"github.com/chazu/rickroll/pkg/lang"
)

// opChars are the characters multi-character operators are built from.
const opChars = "!&|<>="

// constantValue maps reserved identifiers to their literal values.
func constantValue(name string) (lang.Value, bool) {
	switch name {
	case "TRUE":
		return lang.BoolValue(true), true
	case "FALSE":
		return lang.BoolValue(false), true
	case "UNDEFINED":
		return lang.Undefined, true
	case "ARRAY":
		return lang.ArrayValue(nil), true
	}
	return lang.Undefined, false
}

// exprLexer is the single-pass expression tokeniser.
type exprLexer struct {
	raw    []rune
	ptr    int
	line   int
	tokens []lang.Token
}

// TokenizeExpr scans an expression substring into a flat token sequence.
// Errors carry the given source line.
func TokenizeExpr(src string, line int) ([]lang.Token, *lang.Error) {
	l := &exprLexer{raw: []rune(src), line: line}
	return l.run()
}

func (l *exprLexer) hasMore() bool {
	return l.ptr < len(l.raw)
}

func (l *exprLexer) run() ([]lang.Token, *lang.Error) {
	parenBalance := 0
	for l.hasMore() {
		chr := l.raw[l.ptr]
		switch {
		case chr == ' ' || chr == '\t':
			l.ptr++

		case chr >= '0' && chr <= '9':
			if err := l.lexNumber(); err != nil {
				return nil, err
			}

		case isIdentRune(chr):
			l.lexIdent()

		case chr == '\'':
			if err := l.lexChar(); err != nil {
				return nil, err
			}

		case containsRune(opChars, chr):
			if err := l.lexOperator(); err != nil {
				return nil, err
			}

		case chr == '+':
			l.push(lang.OpToken(lang.OpAdd))
			l.ptr++

		case chr == '-':
			// Unary iff nothing precedes it, or an operator or '(' does.
			op := lang.OpSub
			if len(l.tokens) == 0 {
				op = lang.OpNeg
			} else {
				switch prev := l.tokens[len(l.tokens)-1]; prev.Kind {
				case lang.TokenOperator, lang.TokenLParen:
					op = lang.OpNeg
				}
			}
			l.push(lang.OpToken(op))
			l.ptr++

		case chr == '*':
			l.push(lang.OpToken(lang.OpMul))
			l.ptr++
		case chr == '/':
			l.push(lang.OpToken(lang.OpDiv))
			l.ptr++
		case chr == '%':
			l.push(lang.OpToken(lang.OpMod))
			l.ptr++
		case chr == ':':
			l.push(lang.OpToken(lang.OpIndex))
			l.ptr++

		case chr == '(':
			parenBalance++
			l.push(lang.LParenToken())
			l.ptr++
		case chr == ')':
			parenBalance--
			if parenBalance < 0 {
				return nil, lang.NewError(lang.SyntaxError, "Unbalanced parenthesis", l.line)
			}
			l.push(lang.RParenToken())
			l.ptr++

		default:
			return nil, lang.Errorf(lang.SyntaxError, l.line, "Illegal character %q in expression", chr)
		}
	}
	if parenBalance != 0 {
		return nil, lang.NewError(lang.SyntaxError, "Unbalanced parenthesis", l.line)
	}
	if len(l.tokens) == 0 {
		return nil, lang.NewError(lang.SyntaxError, "Unexpected end of statement", l.line)
	}
	return l.tokens, nil
}

func (l *exprLexer) push(t lang.Token) {
	l.tokens = append(l.tokens, t)
}

// lexNumber scans a decimal integer or a float (integer part, '.', decimal
// fraction). Integer literals outside int32 are rejected.
func (l *exprLexer) lexNumber() *lang.Error {
	start := l.ptr
	isFloat := false
	for l.hasMore() {
		chr := l.raw[l.ptr]
		if chr == '.' {
			if isFloat {
				return lang.NewError(lang.SyntaxError, "Unknown character '.'", l.line)
			}
			isFloat = true
		} else if chr < '0' || chr > '9' {
			break
		}
		l.ptr++
	}
	raw := string(l.raw[start:l.ptr])
	if isFloat {
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return lang.NewError(lang.IllegalArgumentError, "Improper floating point literal", l.line)
		}
		l.push(lang.ValueToken(lang.FloatValue(float32(f))))
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n > math.MaxInt32 {
		return lang.NewError(lang.IllegalArgumentError, "Integer literal too large", l.line)
	}
	l.push(lang.ValueToken(lang.IntValue(int32(n))))
	return nil
}

// lexIdent scans an identifier and resolves reserved constants.
func (l *exprLexer) lexIdent() {
	start := l.ptr
	for l.hasMore() && isIdentRune(l.raw[l.ptr]) {
		l.ptr++
	}
	name := string(l.raw[start:l.ptr])
	if v, ok := constantValue(name); ok {
		l.push(lang.ValueToken(v))
		return
	}
	l.push(lang.NameToken(name))
}

// lexChar scans a single-quoted character literal with the standard
// escapes \n \t \\ \' \".
func (l *exprLexer) lexChar() *lang.Error {
	l.ptr++ // opening quote
	if !l.hasMore() {
		return lang.NewError(lang.SyntaxError, "Trailing character literal", l.line)
	}
	chr := l.raw[l.ptr]
	if chr == '\'' {
		return lang.NewError(lang.SyntaxError, "Empty character literal", l.line)
	}
	if chr == '\\' {
		l.ptr++
		if !l.hasMore() {
			return lang.NewError(lang.SyntaxError, "Trailing character literal", l.line)
		}
		switch l.raw[l.ptr] {
		case 'n':
			chr = '\n'
		case 't':
			chr = '\t'
		case '\\':
			chr = '\\'
		case '\'':
			chr = '\''
		case '"':
			chr = '"'
		default:
			return lang.Errorf(lang.SyntaxError, l.line, "Unknown escape sequence \\%c", l.raw[l.ptr])
		}
	}
	l.ptr++
	if !l.hasMore() {
		return lang.NewError(lang.SyntaxError, "Trailing character literal", l.line)
	}
	if l.raw[l.ptr] != '\'' {
		return lang.NewError(lang.SyntaxError, "More than one character in literal", l.line)
	}
	l.ptr++ // closing quote
	l.push(lang.ValueToken(lang.CharValue(chr)))
	return nil
}

// lexOperator scans a run of operator characters, longest match first.
func (l *exprLexer) lexOperator() *lang.Error {
	start := l.ptr
	for l.hasMore() && containsRune(opChars, l.raw[l.ptr]) {
		l.ptr++
	}
	name := string(l.raw[start:l.ptr])
	ops := map[string]lang.Operator{
		"&&": lang.OpAnd,
		"||": lang.OpOr,
		">":  lang.OpGreater,
		"<":  lang.OpLess,
		">=": lang.OpGreaterEq,
		"<=": lang.OpLessEq,
		"==": lang.OpEq,
		"!=": lang.OpNotEq,
		"!":  lang.OpNot,
	}
	op, ok := ops[name]
	if !ok {
		return lang.Errorf(lang.SyntaxError, l.line, "Operator %s not found", name)
	}
	l.push(lang.OpToken(op))
	return nil
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
