package vm

import "github.com/chazu/rickroll/pkg/lang"

// Eval evaluates a tokenised expression against a scope using the
// shunting-yard algorithm with two stacks: pending values and pending
// operators. Variables resolve as their tokens are consumed; binary
// operators are left-associative, unary operators bind right.
func Eval(tokens []lang.Token, scope *Scope) (lang.Value, *lang.Error) {
	if len(tokens) == 0 {
		return lang.Undefined, lang.NewError(lang.SyntaxError, "Unexpected end of statement", 0)
	}

	var vals []lang.Value
	var ops []lang.Token

	apply := func(t lang.Token) *lang.Error {
		op := t.Op
		if op.IsUnary() {
			if len(vals) < 1 {
				return lang.NewError(lang.IllegalArgumentError, "Not enough arguments", 0)
			}
			res, err := applyUnary(op, vals[len(vals)-1])
			if err != nil {
				return err
			}
			vals[len(vals)-1] = res
			return nil
		}
		if len(vals) < 2 {
			return lang.NewError(lang.IllegalArgumentError, "Not enough arguments", 0)
		}
		a, b := vals[len(vals)-2], vals[len(vals)-1]
		res, err := applyBinary(op, a, b)
		if err != nil {
			return err
		}
		vals = vals[:len(vals)-1]
		vals[len(vals)-1] = res
		return nil
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case lang.TokenValue:
			vals = append(vals, tok.Val)

		case lang.TokenName:
			v, ok := scope.Get(tok.Name)
			if !ok {
				return lang.Undefined, lang.Errorf(lang.NameError, 0, "No such variable %s", tok.Name)
			}
			vals = append(vals, v)

		case lang.TokenLParen:
			ops = append(ops, tok)

		case lang.TokenRParen:
			closed := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.Kind == lang.TokenLParen {
					closed = true
					break
				}
				if err := apply(top); err != nil {
					return lang.Undefined, err
				}
			}
			if !closed {
				return lang.Undefined, lang.NewError(lang.SyntaxError, "Unbalanced parenthesis", 0)
			}

		case lang.TokenOperator:
			// Unary operators bind right: push without resolving anything.
			if !tok.Op.IsUnary() {
				for len(ops) > 0 {
					top := ops[len(ops)-1]
					if top.Kind == lang.TokenLParen || top.Op.Precedence() > tok.Op.Precedence() {
						break
					}
					ops = ops[:len(ops)-1]
					if err := apply(top); err != nil {
						return lang.Undefined, err
					}
				}
			}
			ops = append(ops, tok)
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.Kind == lang.TokenLParen {
			return lang.Undefined, lang.NewError(lang.SyntaxError, "Unbalanced parenthesis", 0)
		}
		if err := apply(top); err != nil {
			return lang.Undefined, err
		}
	}

	if len(vals) != 1 {
		return lang.Undefined, lang.NewError(lang.SyntaxError, "Illegal expression", 0)
	}
	return vals[0], nil
}
