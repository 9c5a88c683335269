package utils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// EvaluateExpression evaluates an arithmetic rate expression such as "1/60"
// or "2*(3+1)". Supported: numbers, + - * /, parentheses and unary minus.
func EvaluateExpression(expression string) (float64, error) {
	p := &expressionParser{input: strings.TrimSpace(expression)}
	if p.input == "" {
		return 0, fmt.Errorf("empty expression")
	}

	value, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d in %q", p.input[p.pos], p.pos, expression)
	}
	if !IsFinite(value) {
		return 0, fmt.Errorf("expression %q does not evaluate to a finite number", expression)
	}
	return value, nil
}

type expressionParser struct {
	input string
	pos   int
}

func (p *expressionParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *expressionParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// sum := product (('+' | '-') product)*
func (p *expressionParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// product := unary (('*' | '/') unary)*
func (p *expressionParser) parseProduct() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
			continue
		}
		if right == 0 {
			return 0, fmt.Errorf("division by zero in %q", p.input)
		}
		left /= right
	}
}

// unary := '-' unary | '+' unary | primary
func (p *expressionParser) parseUnary() (float64, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parsePrimary()
}

// primary := number | '(' sum ')'
func (p *expressionParser) parsePrimary() (float64, error) {
	c := p.peek()
	if c == '(' {
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis in %q", p.input)
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] == '.' || (p.input[p.pos] >= '0' && p.input[p.pos] <= '9')) {
		p.pos++
	}
	if start == p.pos {
		if c == 0 {
			return 0, fmt.Errorf("unexpected end of expression %q", p.input)
		}
		return 0, fmt.Errorf("unexpected %q at position %d in %q", c, start, p.input)
	}

	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", p.input[start:p.pos], err)
	}
	return v, nil
}
