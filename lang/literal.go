package lang

import (
	"strings"

	"github.com/dhamidi/cmparse/parsing"
	"github.com/dhamidi/cmparse/parsing/stdlib"
)

const LiteralGrammarName = "cmparse.lang.LiteralGrammar"

// LiteralDefinition builds the grammar of boolean, integer, floating,
// character, string and null literals. Each rule synthesizes a *Node.
var LiteralDefinition = parsing.Def{
	QualifiedName: LiteralGrammarName,
	Refs:          referenceStdlib,
	Rules:         createLiteralRules,
}

func referenceStdlib(g *parsing.Grammar) error {
	_, err := g.Reference(stdlib.Definition)
	return err
}

type literalFrame struct {
	value   *Node
	integer uint64
	real    float64
	char    rune
	str     string
}

func leaveLiteral(c *literalFrame, stack *parsing.ValueStack) {
	stack.Push(parsing.NodeValue(c.value))
}

func createLiteralRules(g *parsing.Grammar) {
	g.AddRuleLink("hex_literal", "stdlib.hex_literal")
	g.AddRuleLink("ulong", "stdlib.ulong")
	g.AddRuleLink("ureal", "stdlib.ureal")
	g.AddRuleLink("char", "stdlib.char")
	g.AddRuleLink("string", "stdlib.string")
	g.AddRuleLink("spaces_and_comments", "stdlib.spaces_and_comments")
	g.SetSkipRule("spaces_and_comments")

	setValue := parsing.Capture(func(c *literalFrame, v parsing.Value) { c.value = parsing.As[*Node](v) })
	parsing.Define(g, parsing.RuleDef[literalFrame]{
		Name:      "Literal",
		ValueType: "*Node",
		Leave:     leaveLiteral,
		PostCalls: map[string]func(*literalFrame, *parsing.ValueStack, bool){
			"BooleanLiteral":  setValue,
			"FloatingLiteral": setValue,
			"IntegerLiteral":  setValue,
			"CharLiteral":     setValue,
			"StringLiteral":   setValue,
			"NullLiteral":     setValue,
		},
	}, parsing.Alternative(
		parsing.Call("BooleanLiteral"),
		parsing.Call("FloatingLiteral"),
		parsing.Call("IntegerLiteral"),
		parsing.Call("CharLiteral"),
		parsing.Call("StringLiteral"),
		parsing.Call("NullLiteral"),
	))

	parsing.Define(g, parsing.RuleDef[literalFrame]{
		Name:      "BooleanLiteral",
		ValueType: "*Node",
		Leave:     leaveLiteral,
		Actions: map[string]func(*literalFrame, *parsing.ActionArgs){
			"A0": func(c *literalFrame, a *parsing.ActionArgs) {
				c.value = &Node{Kind: KindBooleanLiteral, Span: a.Span, Text: a.String(), Value: true}
			},
			"A1": func(c *literalFrame, a *parsing.ActionArgs) {
				c.value = &Node{Kind: KindBooleanLiteral, Span: a.Span, Text: a.String(), Value: false}
			},
		},
	}, parsing.Alternative(
		parsing.Action("A0", parsing.Keyword("true")),
		parsing.Action("A1", parsing.Keyword("false")),
	))

	// A trailing f or F rounds the value to single precision.
	parsing.Define(g, parsing.RuleDef[literalFrame]{
		Name:      "FloatingLiteral",
		ValueType: "*Node",
		Leave:     leaveLiteral,
		Actions: map[string]func(*literalFrame, *parsing.ActionArgs){
			"A0": func(c *literalFrame, a *parsing.ActionArgs) {
				text := a.String()
				v := c.real
				if strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
					v = float64(float32(v))
				}
				c.value = &Node{Kind: KindFloatingLiteral, Span: a.Span, Text: text, Value: v}
			},
		},
		PostCalls: map[string]func(*literalFrame, *parsing.ValueStack, bool){
			"ureal": parsing.Capture(func(c *literalFrame, v parsing.Value) { c.real = v.Float() }),
		},
	}, parsing.Action("A0", parsing.Token(parsing.Sequence(
		parsing.Call("ureal"),
		parsing.Optional(parsing.CharSet("fF")),
	))))

	// Integer literals are unsigned 64-bit values; a u or U suffix is kept
	// in the node text.
	capture := parsing.Capture(func(c *literalFrame, v parsing.Value) { c.integer = v.Uint() })
	parsing.Define(g, parsing.RuleDef[literalFrame]{
		Name:      "IntegerLiteral",
		ValueType: "*Node",
		Leave:     leaveLiteral,
		Actions: map[string]func(*literalFrame, *parsing.ActionArgs){
			"A0": func(c *literalFrame, a *parsing.ActionArgs) {
				c.value = &Node{Kind: KindIntegerLiteral, Span: a.Span, Text: a.String(), Value: c.integer}
			},
		},
		PostCalls: map[string]func(*literalFrame, *parsing.ValueStack, bool){
			"hex_literal": capture,
			"ulong":       capture,
		},
	}, parsing.Action("A0", parsing.Token(parsing.Sequence(
		parsing.Alternative(parsing.Call("hex_literal"), parsing.Call("ulong")),
		parsing.Optional(parsing.CharSet("uU")),
	))))

	parsing.Define(g, parsing.RuleDef[literalFrame]{
		Name:      "CharLiteral",
		ValueType: "*Node",
		Leave:     leaveLiteral,
		Actions: map[string]func(*literalFrame, *parsing.ActionArgs){
			"A0": func(c *literalFrame, a *parsing.ActionArgs) {
				c.value = &Node{Kind: KindCharLiteral, Span: a.Span, Text: a.String(), Value: c.char}
			},
		},
		PostCalls: map[string]func(*literalFrame, *parsing.ValueStack, bool){
			"char": parsing.Capture(func(c *literalFrame, v parsing.Value) { c.char = v.Char() }),
		},
	}, parsing.Action("A0", parsing.Call("char")))

	parsing.Define(g, parsing.RuleDef[literalFrame]{
		Name:      "StringLiteral",
		ValueType: "*Node",
		Leave:     leaveLiteral,
		Actions: map[string]func(*literalFrame, *parsing.ActionArgs){
			"A0": func(c *literalFrame, a *parsing.ActionArgs) {
				c.value = &Node{Kind: KindStringLiteral, Span: a.Span, Text: a.String(), Value: c.str}
			},
		},
		PostCalls: map[string]func(*literalFrame, *parsing.ValueStack, bool){
			"string": parsing.Capture(func(c *literalFrame, v parsing.Value) { c.str = v.Str() }),
		},
	}, parsing.Action("A0", parsing.Call("string")))

	parsing.Define(g, parsing.RuleDef[literalFrame]{
		Name:      "NullLiteral",
		ValueType: "*Node",
		Leave:     leaveLiteral,
		Actions: map[string]func(*literalFrame, *parsing.ActionArgs){
			"A0": func(c *literalFrame, a *parsing.ActionArgs) {
				c.value = &Node{Kind: KindNullLiteral, Span: a.Span, Text: a.String()}
			},
		},
	}, parsing.Action("A0", parsing.Keyword("null")))
}
