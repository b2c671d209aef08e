package compiler

import (
	"testing"

	"github.com/chazu/rickroll/pkg/lang"
)

// render flattens a token sequence for comparison.
func render(tokens []lang.Token) string {
	return lang.ExprString(tokens)
}

func TestTokenizeSimple(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2", "1 + 2"},
		{"1  + 2- 3 *45", "1 + 2 - 3 * 45"},
		{"72 * 4.0 + 1.5", "72 * 4.0 + 1.5"},
		{"a / b % c", "a / b % c"},
		{"arr : 3", "arr : 3"},
		{"(3 * 4)", "( 3 * 4 )"},
		{"2 % (1 + 2 * 3 ) + 5", "2 % ( 1 + 2 * 3 ) + 5"},
	}

	for _, tc := range tests {
		tokens, err := TokenizeExpr(tc.input, 1)
		if err != nil {
			t.Errorf("TokenizeExpr(%q) error: %v", tc.input, err)
			continue
		}
		if got := render(tokens); got != tc.want {
			t.Errorf("TokenizeExpr(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTokenizeConstants(t *testing.T) {
	tokens, err := TokenizeExpr("TRUE || FALSE", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Kind != lang.TokenValue || tokens[0].Val.Kind != lang.KindBool || !tokens[0].Val.Bool {
		t.Errorf("TRUE did not tokenize to a boolean value: %v", tokens[0])
	}

	tokens, err = TokenizeExpr("UNDEFINED", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Val.Kind != lang.KindUndefined {
		t.Errorf("UNDEFINED did not tokenize to the undefined value: %v", tokens[0])
	}

	tokens, err = TokenizeExpr("ARRAY : 0", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Val.Kind != lang.KindArray {
		t.Errorf("ARRAY did not tokenize to an array value: %v", tokens[0])
	}
}

func TestTokenizeChars(t *testing.T) {
	tests := []struct {
		input string
		want  rune
	}{
		{`'x'`, 'x'},
		{`'\n'`, '\n'},
		{`'\t'`, '\t'},
		{`'\\'`, '\\'},
		{`'\''`, '\''},
		{`'\"'`, '"'},
	}

	for _, tc := range tests {
		tokens, err := TokenizeExpr(tc.input, 1)
		if err != nil {
			t.Errorf("TokenizeExpr(%s) error: %v", tc.input, err)
			continue
		}
		if len(tokens) != 1 || tokens[0].Val.Kind != lang.KindChar || tokens[0].Val.Char != tc.want {
			t.Errorf("TokenizeExpr(%s) = %v, want char %q", tc.input, tokens, tc.want)
		}
	}
}

func TestTokenizeUnaryMinus(t *testing.T) {
	tests := []struct {
		input string
		// operator kind expected for each '-' in order of appearance
		want []lang.Operator
	}{
		{"-1", []lang.Operator{lang.OpNeg}},
		{"3 - 1", []lang.Operator{lang.OpSub}},
		{"3 - -1", []lang.Operator{lang.OpSub, lang.OpNeg}},
		{"(-1)", []lang.Operator{lang.OpNeg}},
		{"2 * -3", []lang.Operator{lang.OpNeg}},
		{"a - b", []lang.Operator{lang.OpSub}},
	}

	for _, tc := range tests {
		tokens, err := TokenizeExpr(tc.input, 1)
		if err != nil {
			t.Errorf("TokenizeExpr(%q) error: %v", tc.input, err)
			continue
		}
		var got []lang.Operator
		for _, tok := range tokens {
			if tok.Kind == lang.TokenOperator && (tok.Op == lang.OpNeg || tok.Op == lang.OpSub) {
				got = append(got, tok.Op)
			}
		}
		if len(got) != len(tc.want) {
			t.Errorf("TokenizeExpr(%q): %d minus operators, want %d", tc.input, len(got), len(tc.want))
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("TokenizeExpr(%q): minus %d = %v, want %v", tc.input, i, got[i], tc.want[i])
			}
		}
	}
}

func TestTokenizeMultiCharOperators(t *testing.T) {
	tokens, err := TokenizeExpr("a >= b <= c == d != e && f || g > h < i", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []lang.Operator{
		lang.OpGreaterEq, lang.OpLessEq, lang.OpEq, lang.OpNotEq,
		lang.OpAnd, lang.OpOr, lang.OpGreater, lang.OpLess,
	}
	var got []lang.Operator
	for _, tok := range tokens {
		if tok.Kind == lang.TokenOperator {
			got = append(got, tok.Op)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d operators, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("operator %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  lang.ErrorKind
	}{
		{"", lang.SyntaxError},
		{"   ", lang.SyntaxError},
		{"'a", lang.SyntaxError},
		{"''", lang.SyntaxError},
		{"'ab'", lang.SyntaxError},
		{"3 + (()()", lang.SyntaxError},
		{"a ) b", lang.SyntaxError},
		{"1 @ 2", lang.SyntaxError},
		{"a &| b", lang.SyntaxError},
		{"1.2.3", lang.SyntaxError},
		{"99999999999999999999", lang.IllegalArgumentError},
	}

	for _, tc := range tests {
		_, err := TokenizeExpr(tc.input, 7)
		if err == nil {
			t.Errorf("TokenizeExpr(%q): expected error", tc.input)
			continue
		}
		if err.Kind != tc.kind {
			t.Errorf("TokenizeExpr(%q): kind = %v, want %v", tc.input, err.Kind, tc.kind)
		}
		if err.Line != 7 {
			t.Errorf("TokenizeExpr(%q): line = %d, want 7", tc.input, err.Line)
		}
	}
}
