// Package stdlib provides the grammar of lexical building blocks other
// grammars link to: blanks and comments, numbers, identifiers, character and
// string literals.
package stdlib

import (
	"strconv"
	"strings"

	"github.com/dhamidi/cmparse/parsing"
)

const Name = "cmparse.parsing.stdlib"

// Definition builds the stdlib grammar. Other grammars reference it with
// g.Reference(stdlib.Definition) and link rules as "stdlib.identifier".
var Definition = parsing.Def{QualifiedName: Name, Rules: createRules}

// Create returns the stdlib grammar of domain.
func Create(domain *parsing.ParsingDomain) (*parsing.Grammar, error) {
	return parsing.Create(domain, Definition)
}

type frame[T any] struct {
	value T
}

// valueRule defines a rule that converts the text matched by definition into
// its synthesized value. A failed conversion rejects the match.
func valueRule[T any](g *parsing.Grammar, name, valueType string, push func(T) parsing.Value, convert func(string) (T, bool), definition parsing.Parser) {
	parsing.Define(g, parsing.RuleDef[frame[T]]{
		Name:      name,
		ValueType: valueType,
		Leave: func(c *frame[T], stack *parsing.ValueStack) {
			stack.Push(push(c.value))
		},
		Actions: map[string]func(*frame[T], *parsing.ActionArgs){
			"A0": func(c *frame[T], a *parsing.ActionArgs) {
				v, ok := convert(a.String())
				c.value = v
				a.Pass = ok
			},
		},
	}, parsing.Action("A0", definition))
}

func parseInt(bits int) func(string) (int64, bool) {
	return func(s string) (int64, bool) {
		v, err := strconv.ParseInt(s, 10, bits)
		return v, err == nil
	}
}

func parseUint(base, bits int) func(string) (uint64, bool) {
	return func(s string) (uint64, bool) {
		v, err := strconv.ParseUint(s, base, bits)
		return v, err == nil
	}
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func text(s string) (string, bool) { return s, true }

func sign() parsing.Parser { return parsing.Optional(parsing.CharSet("+-")) }
func digits() parsing.Parser { return parsing.Positive(parsing.Digit()) }

func exponent() parsing.Parser {
	return parsing.Sequence(parsing.CharSet("eE"), sign(), digits())
}

func createRules(g *parsing.Grammar) {
	g.AddRule(parsing.NewRule("spaces", parsing.Positive(parsing.Space())))
	g.AddRule(parsing.NewRule("newline", parsing.Alternative(parsing.String("\r\n"), parsing.String("\n"), parsing.String("\r"))))
	g.AddRule(parsing.NewRule("comment", parsing.Alternative(parsing.Call("line_comment"), parsing.Call("block_comment"))))
	g.AddRule(parsing.NewRule("line_comment", parsing.Token(parsing.Sequence(
		parsing.String("//"),
		parsing.KleeneStar(parsing.NegatedCharSet("\r\n")),
		parsing.Optional(parsing.Call("newline")),
	))))
	g.AddRule(parsing.NewRule("block_comment", parsing.Token(parsing.Sequence(
		parsing.String("/*"),
		parsing.KleeneStar(parsing.Difference(parsing.AnyChar(), parsing.String("*/"))),
		parsing.String("*/"),
	))))
	g.AddRule(parsing.NewRule("spaces_and_comments", parsing.Positive(parsing.Alternative(parsing.Call("spaces"), parsing.Call("comment")))))

	valueRule(g, "int", "int32", parsing.IntValue, parseInt(32), parsing.Token(parsing.Sequence(sign(), digits())))
	valueRule(g, "uint", "uint32", parsing.UintValue, parseUint(10, 32), parsing.Token(digits()))
	valueRule(g, "long", "int64", parsing.IntValue, parseInt(64), parsing.Token(parsing.Sequence(sign(), digits())))
	valueRule(g, "ulong", "uint64", parsing.UintValue, parseUint(10, 64), parsing.Token(digits()))
	valueRule(g, "hexuint", "uint32", parsing.UintValue, parseUint(16, 32), parsing.Token(parsing.Positive(parsing.HexDigit())))
	valueRule(g, "hex", "uint64", parsing.UintValue, parseUint(16, 64), parsing.Token(parsing.Positive(parsing.HexDigit())))

	parsing.Define(g, parsing.RuleDef[frame[uint64]]{
		Name:      "hex_literal",
		ValueType: "uint64",
		Leave: func(c *frame[uint64], stack *parsing.ValueStack) {
			stack.Push(parsing.UintValue(c.value))
		},
		PostCalls: map[string]func(*frame[uint64], *parsing.ValueStack, bool){
			"hex": parsing.Capture(func(c *frame[uint64], v parsing.Value) { c.value = v.Uint() }),
		},
	}, parsing.Token(parsing.Sequence(parsing.Alternative(parsing.String("0x"), parsing.String("0X")), parsing.Call("hex"))))

	ureal := parsing.Alternative(
		parsing.Sequence(parsing.Optional(digits()), parsing.Char('.'), digits(), parsing.Optional(exponent())),
		parsing.Sequence(digits(), exponent()),
	)
	valueRule(g, "ureal", "double", parsing.FloatValue, parseFloat, parsing.Token(ureal))
	valueRule(g, "real", "double", parsing.FloatValue, parseFloat, parsing.Token(parsing.Sequence(sign(), ureal)))
	valueRule(g, "num", "double", parsing.FloatValue, parseFloat, parsing.Token(parsing.Sequence(
		sign(),
		digits(),
		parsing.Optional(parsing.Sequence(parsing.Char('.'), digits())),
		parsing.Optional(exponent()),
	)))
	valueRule(g, "bool", "bool", parsing.BoolValue, func(s string) (bool, bool) { return s == "true", true },
		parsing.Alternative(parsing.Keyword("true"), parsing.Keyword("false")))

	valueRule(g, "identifier", "string", parsing.StringValue, text, parsing.Token(parsing.Sequence(parsing.IDStart(), parsing.KleeneStar(parsing.IDCont()))))
	valueRule(g, "qualified_id", "string", parsing.StringValue, text, parsing.Token(parsing.Sequence(
		parsing.Call("identifier"),
		parsing.KleeneStar(parsing.Sequence(parsing.Char('.'), parsing.Call("identifier"))),
	)))

	createEscapeRule(g)
	createCharRule(g)
	createStringRule(g)
}

var escapes = map[rune]rune{
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v', '0': 0,
}

func createEscapeRule(g *parsing.Grammar) {
	parsing.Define(g, parsing.RuleDef[frame[rune]]{
		Name:      "escape",
		ValueType: "char",
		Leave: func(c *frame[rune], stack *parsing.ValueStack) {
			stack.Push(parsing.CharValue(c.value))
		},
		Actions: map[string]func(*frame[rune], *parsing.ActionArgs){
			"A0": func(c *frame[rune], a *parsing.ActionArgs) {
				r := a.Text[0]
				if e, ok := escapes[r]; ok {
					r = e
				}
				c.value = r
			},
		},
		PostCalls: map[string]func(*frame[rune], *parsing.ValueStack, bool){
			"x": parsing.Capture(func(c *frame[rune], v parsing.Value) { c.value = rune(v.Uint()) }),
			"d": parsing.Capture(func(c *frame[rune], v parsing.Value) { c.value = rune(v.Uint()) }),
		},
	}, parsing.Token(parsing.Sequence(
		parsing.Char('\\'),
		parsing.Alternative(
			parsing.Sequence(parsing.CharSet("xX"), parsing.Nonterminal("x", "hex", 0)),
			parsing.Sequence(parsing.CharSet("dD"), parsing.Nonterminal("d", "uint", 0)),
			parsing.Action("A0", parsing.NegatedCharSet("dDxX")),
		),
	)))
}

func createCharRule(g *parsing.Grammar) {
	parsing.Define(g, parsing.RuleDef[frame[rune]]{
		Name:      "char",
		ValueType: "char",
		Leave: func(c *frame[rune], stack *parsing.ValueStack) {
			stack.Push(parsing.CharValue(c.value))
		},
		Actions: map[string]func(*frame[rune], *parsing.ActionArgs){
			"A0": func(c *frame[rune], a *parsing.ActionArgs) { c.value = a.Text[0] },
		},
		PostCalls: map[string]func(*frame[rune], *parsing.ValueStack, bool){
			"escape": parsing.Capture(func(c *frame[rune], v parsing.Value) { c.value = v.Char() }),
		},
	}, parsing.Token(parsing.Sequence(
		parsing.Char('\''),
		parsing.Alternative(parsing.Action("A0", parsing.NegatedCharSet(`\\`+"\r\n'")), parsing.Call("escape")),
		parsing.Expectation(parsing.Char('\'')),
	)))
}

type stringFrame struct {
	b strings.Builder
}

func createStringRule(g *parsing.Grammar) {
	parsing.Define(g, parsing.RuleDef[stringFrame]{
		Name:      "string",
		ValueType: "string",
		Leave: func(c *stringFrame, stack *parsing.ValueStack) {
			stack.Push(parsing.StringValue(c.b.String()))
		},
		Actions: map[string]func(*stringFrame, *parsing.ActionArgs){
			"A0": func(c *stringFrame, a *parsing.ActionArgs) { c.b.WriteString(a.String()) },
		},
		PostCalls: map[string]func(*stringFrame, *parsing.ValueStack, bool){
			"escape": parsing.Capture(func(c *stringFrame, v parsing.Value) { c.b.WriteRune(v.Char()) }),
		},
	}, parsing.Token(parsing.Sequence(
		parsing.Char('"'),
		parsing.KleeneStar(parsing.Alternative(parsing.Action("A0", parsing.Positive(parsing.NegatedCharSet(`\\`+"\r\n\""))), parsing.Call("escape"))),
		parsing.Expectation(parsing.Char('"')),
	)))
}
