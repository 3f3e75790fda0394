package cpp

import (
	"fmt"
	"strconv"
	"strings"
)

type expressionError struct {
	token string
	msg   string
}

func (e *expressionError) Error() string {
	return e.msg
}

// evaluate computes the value of an #if expression. Supported: integer literals,
// identifiers (object-like macros evaluate their body, anything else is 0),
// defined NAME, defined(NAME), parentheses, ! && || == != < > <= >=.
func (p *Preprocessor) evaluate(expr string) (int64, error) {
	return p.evaluateWith(expr, map[string]bool{})
}

func (p *Preprocessor) evaluateWith(expr string, disabled map[string]bool) (int64, error) {
	tokens, err := tokenizeExpression(expr)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, &expressionError{msg: "#if with no expression"}
	}
	e := &exprParser{p: p, tokens: tokens, disabled: disabled}
	value, err := e.or()
	if err != nil {
		return 0, err
	}
	if e.pos < len(e.tokens) {
		tok := e.tokens[e.pos]
		return 0, &expressionError{token: tok, msg: fmt.Sprintf("unexpected token '%s' in preprocessor expression", tok)}
	}
	return value, nil
}

func tokenizeExpression(expr string) ([]string, error) {
	var tokens []string
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isIdentStart(c):
			end := i + 1
			for end < len(expr) && isIdentChar(expr[end]) {
				end++
			}
			tokens = append(tokens, expr[i:end])
			i = end
		case isDigit(c):
			end := i + 1
			for end < len(expr) && isIdentChar(expr[end]) {
				end++
			}
			tokens = append(tokens, expr[i:end])
			i = end
		default:
			if i+1 < len(expr) {
				two := expr[i : i+2]
				switch two {
				case "&&", "||", "==", "!=", "<=", ">=":
					tokens = append(tokens, two)
					i += 2
					continue
				}
			}
			switch c {
			case '!', '(', ')', '<', '>':
				tokens = append(tokens, string(c))
				i++
			default:
				return nil, &expressionError{token: string(c), msg: fmt.Sprintf("invalid token '%c' in preprocessor expression", c)}
			}
		}
	}
	return tokens, nil
}

type exprParser struct {
	p        *Preprocessor
	tokens   []string
	pos      int
	disabled map[string]bool
}

func (e *exprParser) peek() string {
	if e.pos < len(e.tokens) {
		return e.tokens[e.pos]
	}
	return ""
}

func (e *exprParser) next() string {
	tok := e.peek()
	if tok != "" {
		e.pos++
	}
	return tok
}

func (e *exprParser) or() (int64, error) {
	left, err := e.and()
	if err != nil {
		return 0, err
	}
	for e.peek() == "||" {
		e.next()
		right, err := e.and()
		if err != nil {
			return 0, err
		}
		left = boolValue(left != 0 || right != 0)
	}
	return left, nil
}

func (e *exprParser) and() (int64, error) {
	left, err := e.equality()
	if err != nil {
		return 0, err
	}
	for e.peek() == "&&" {
		e.next()
		right, err := e.equality()
		if err != nil {
			return 0, err
		}
		left = boolValue(left != 0 && right != 0)
	}
	return left, nil
}

func (e *exprParser) equality() (int64, error) {
	left, err := e.relational()
	if err != nil {
		return 0, err
	}
	for e.peek() == "==" || e.peek() == "!=" {
		op := e.next()
		right, err := e.relational()
		if err != nil {
			return 0, err
		}
		if op == "==" {
			left = boolValue(left == right)
		} else {
			left = boolValue(left != right)
		}
	}
	return left, nil
}

func (e *exprParser) relational() (int64, error) {
	left, err := e.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := e.peek()
		if op != "<" && op != ">" && op != "<=" && op != ">=" {
			return left, nil
		}
		e.next()
		right, err := e.unary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "<":
			left = boolValue(left < right)
		case ">":
			left = boolValue(left > right)
		case "<=":
			left = boolValue(left <= right)
		case ">=":
			left = boolValue(left >= right)
		}
	}
}

func (e *exprParser) unary() (int64, error) {
	if e.peek() == "!" {
		e.next()
		v, err := e.unary()
		if err != nil {
			return 0, err
		}
		return boolValue(v == 0), nil
	}
	return e.primary()
}

func (e *exprParser) primary() (int64, error) {
	tok := e.next()
	switch {
	case tok == "":
		return 0, &expressionError{msg: "expected value in preprocessor expression"}
	case tok == "(":
		v, err := e.or()
		if err != nil {
			return 0, err
		}
		if e.next() != ")" {
			return 0, &expressionError{token: "(", msg: "missing ')' in preprocessor expression"}
		}
		return v, nil
	case tok == "defined":
		return e.defined()
	case isDigit(tok[0]):
		return parseInteger(tok)
	case isIdentStart(tok[0]):
		m, ok := e.p.macros[tok]
		if !ok || m.functionLike || e.disabled[tok] || strings.TrimSpace(m.body) == "" {
			return 0, nil
		}
		inner := make(map[string]bool, len(e.disabled)+1)
		for k := range e.disabled {
			inner[k] = true
		}
		inner[tok] = true
		return e.p.evaluateWith(m.body, inner)
	default:
		return 0, &expressionError{token: tok, msg: fmt.Sprintf("unexpected token '%s' in preprocessor expression", tok)}
	}
}

func (e *exprParser) defined() (int64, error) {
	parens := e.peek() == "("
	if parens {
		e.next()
	}
	name := e.next()
	if !isIdentifier(name) {
		return 0, &expressionError{token: "defined", msg: "macro name missing after 'defined'"}
	}
	if parens && e.next() != ")" {
		return 0, &expressionError{token: "defined", msg: "missing ')' after 'defined'"}
	}
	_, ok := e.p.macros[name]
	return boolValue(ok), nil
}

func parseInteger(tok string) (int64, error) {
	digits := strings.TrimRight(tok, "uUlL")
	v, err := strconv.ParseInt(digits, 0, 64)
	if err != nil {
		return 0, &expressionError{token: tok, msg: fmt.Sprintf("invalid integer constant '%s'", tok)}
	}
	return v, nil
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
