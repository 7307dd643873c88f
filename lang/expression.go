package lang

import (
	"fmt"

	"github.com/dhamidi/cmparse/parsing"
)

const ExpressionGrammarName = "cmparse.lang.ExpressionGrammar"

// ExpressionDefinition builds the expression grammar. Every rule except
// Identifier takes the *ParsingContext as its inherited attribute and
// synthesizes a *Node.
var ExpressionDefinition = parsing.Def{
	QualifiedName: ExpressionGrammarName,
	Refs: func(g *parsing.Grammar) error {
		for _, def := range []parsing.Definition{LiteralDefinition, KeywordDefinition} {
			if _, err := g.Reference(def); err != nil {
				return err
			}
		}
		return referenceStdlib(g)
	},
	Rules: createExpressionRules,
}

var contextAttribute = []parsing.Attribute{{Type: "*ParsingContext", Name: "ctx"}}

type exprFrame struct {
	ctx     *ParsingContext
	value   *Node
	op      string
	opStart int
	invoke  *Node
}

func enterExpr(c *exprFrame, stack *parsing.ValueStack) {
	c.ctx = parsing.As[*ParsingContext](stack.Pop())
}

func leaveExpr(c *exprFrame, stack *parsing.ValueStack) {
	stack.Push(parsing.NodeValue(c.value))
}

func passExprContext(c *exprFrame, stack *parsing.ValueStack) {
	stack.Push(parsing.RefValue(c.ctx))
}

func setExpr(c *exprFrame, v parsing.Value) {
	c.value = parsing.As[*Node](v)
}

func createExpressionRules(g *parsing.Grammar) {
	g.AddRuleLink("identifier", "stdlib.identifier")
	g.AddRuleLink("spaces_and_comments", "stdlib.spaces_and_comments")
	g.AddRuleLink("Keyword", "KeywordGrammar.Keyword")
	g.AddRuleLink("Literal", "LiteralGrammar.Literal")
	g.SetSkipRule("spaces_and_comments")

	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      "Expression",
		ValueType: "*Node",
		Inherited: contextAttribute,
		Enter:     enterExpr,
		Leave:     leaveExpr,
		PreCalls:  map[string]func(*exprFrame, *parsing.ValueStack){"Equality": passExprContext},
		PostCalls: map[string]func(*exprFrame, *parsing.ValueStack, bool){"Equality": parsing.Capture(setExpr)},
	}, parsing.Nonterminal("Equality", "Equality", 1))

	binaryRule(g, "Equality", "Relational", nil, "==", "!=")
	binaryRule(g, "Relational", "Additive", (*ParsingContext).relationalAllowed, "<=", ">=", "<", ">")
	binaryRule(g, "Additive", "Multiplicative", nil, "+", "-")
	binaryRule(g, "Multiplicative", "Prefix", nil, "*", "/", "%")

	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      "Prefix",
		ValueType: "*Node",
		Inherited: contextAttribute,
		Enter:     enterExpr,
		Leave:     leaveExpr,
		Actions: map[string]func(*exprFrame, *parsing.ActionArgs){
			"A0": func(c *exprFrame, a *parsing.ActionArgs) {
				c.op = a.String()
				c.opStart = a.Span.Start
			},
		},
		PreCalls: map[string]func(*exprFrame, *parsing.ValueStack){
			"operand": passExprContext,
			"Postfix": passExprContext,
		},
		PostCalls: map[string]func(*exprFrame, *parsing.ValueStack, bool){
			"operand": parsing.Capture(func(c *exprFrame, v parsing.Value) {
				operand := parsing.As[*Node](v)
				span := operand.Span
				span.Start = c.opStart
				c.value = &Node{Kind: KindUnaryExpr, Span: span, Text: c.op, Children: []*Node{operand}}
			}),
			"Postfix": parsing.Capture(setExpr),
		},
	}, parsing.Alternative(
		parsing.Sequence(parsing.Action("A0", parsing.CharSet("-!")), parsing.Nonterminal("operand", "Prefix", 1)),
		parsing.Nonterminal("Postfix", "Postfix", 1),
	))

	// The invocation node is only installed as the value once its closing
	// parenthesis has been read.
	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      "Postfix",
		ValueType: "*Node",
		Inherited: contextAttribute,
		Enter:     enterExpr,
		Leave:     leaveExpr,
		Actions: map[string]func(*exprFrame, *parsing.ActionArgs){
			"A0": func(c *exprFrame, a *parsing.ActionArgs) {
				c.invoke = &Node{Kind: KindInvokeExpr, Span: c.value.Span, Children: []*Node{c.value}}
			},
			"A1": func(c *exprFrame, a *parsing.ActionArgs) {
				c.invoke.Span.End = a.Span.End
				c.value, c.invoke = c.invoke, nil
			},
		},
		PreCalls: map[string]func(*exprFrame, *parsing.ValueStack){
			"Primary": passExprContext,
			"ArgumentList": func(c *exprFrame, stack *parsing.ValueStack) {
				stack.Push(parsing.RefValue(c.ctx))
				stack.Push(parsing.NodeValue(c.invoke))
			},
		},
		PostCalls: map[string]func(*exprFrame, *parsing.ValueStack, bool){
			"Primary": parsing.Capture(setExpr),
		},
	}, parsing.Sequence(
		parsing.Nonterminal("Primary", "Primary", 1),
		parsing.KleeneStar(parsing.Sequence(
			parsing.Action("A0", parsing.Char('(')),
			parsing.Nonterminal("ArgumentList", "ArgumentList", 2),
			parsing.Action("A1", parsing.Expectation(parsing.Char(')'))),
		)),
	))

	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      "Primary",
		ValueType: "*Node",
		Inherited: contextAttribute,
		Enter:     enterExpr,
		Leave:     leaveExpr,
		PreCalls:  map[string]func(*exprFrame, *parsing.ValueStack){"inner": passExprContext},
		PostCalls: map[string]func(*exprFrame, *parsing.ValueStack, bool){
			"inner":      parsing.Capture(setExpr),
			"Literal":    parsing.Capture(setExpr),
			"Identifier": parsing.Capture(setExpr),
		},
	}, parsing.Alternative(
		parsing.Sequence(parsing.Char('('), parsing.Nonterminal("inner", "Expression", 1), parsing.Expectation(parsing.Char(')'))),
		parsing.Call("Literal"),
		parsing.Call("Identifier"),
	))

	argsAttributes := []parsing.Attribute{{Type: "*ParsingContext", Name: "ctx"}, {Type: "*Node", Name: "invoke"}}
	enterArgs := func(c *exprFrame, stack *parsing.ValueStack) {
		c.invoke = parsing.As[*Node](stack.Pop())
		c.ctx = parsing.As[*ParsingContext](stack.Pop())
	}
	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      "ArgumentList",
		Inherited: argsAttributes,
		Enter:     enterArgs,
		PreCalls: map[string]func(*exprFrame, *parsing.ValueStack){
			"ExpressionList": func(c *exprFrame, stack *parsing.ValueStack) {
				stack.Push(parsing.RefValue(c.ctx))
				stack.Push(parsing.NodeValue(c.invoke))
			},
		},
	}, parsing.Optional(parsing.Nonterminal("ExpressionList", "ExpressionList", 2)))

	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      "ExpressionList",
		Inherited: argsAttributes,
		Enter:     enterArgs,
		Actions: map[string]func(*exprFrame, *parsing.ActionArgs){
			"A0": func(c *exprFrame, a *parsing.ActionArgs) { c.ctx.BeginParsingArguments() },
			"A1": func(c *exprFrame, a *parsing.ActionArgs) { c.ctx.EndParsingArguments() },
		},
		FailureActions: map[string]func(*exprFrame){
			"A1": func(c *exprFrame) { c.ctx.EndParsingArguments() },
		},
		PreCalls: map[string]func(*exprFrame, *parsing.ValueStack){"arg": passExprContext},
		PostCalls: map[string]func(*exprFrame, *parsing.ValueStack, bool){
			"arg": parsing.Capture(func(c *exprFrame, v parsing.Value) { c.invoke.AddChild(parsing.As[*Node](v)) }),
		},
	}, parsing.Sequence(
		parsing.Action("A0", parsing.Empty()),
		parsing.Action("A1", parsing.List(parsing.Nonterminal("arg", "Expression", 1), parsing.Char(','))),
	))

	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      "Identifier",
		ValueType: "*Node",
		Leave:     leaveExpr,
		Actions: map[string]func(*exprFrame, *parsing.ActionArgs){
			"A0": func(c *exprFrame, a *parsing.ActionArgs) {
				c.value = &Node{Kind: KindIdentifier, Span: a.Span, Text: a.String()}
			},
		},
	}, parsing.Action("A0", parsing.Token(parsing.Difference(parsing.Call("identifier"), parsing.Call("Keyword")))))
}

// binaryRule defines a left-associative operator level over operand. An
// operator is rejected when allowed reports false for the current context.
// The right operand is expected once an operator has been read.
func binaryRule(g *parsing.Grammar, name, operand string, allowed func(*ParsingContext) bool, ops ...string) {
	actions := make(map[string]func(*exprFrame, *parsing.ActionArgs), len(ops))
	alternatives := make([]parsing.Parser, len(ops))
	for i, op := range ops {
		actionName := fmt.Sprintf("A%d", i)
		alternatives[i] = parsing.Action(actionName, parsing.String(op))
		actions[actionName] = func(c *exprFrame, a *parsing.ActionArgs) {
			if allowed != nil && !allowed(c.ctx) {
				a.Pass = false
				return
			}
			c.op = op
		}
	}
	parsing.Define(g, parsing.RuleDef[exprFrame]{
		Name:      name,
		ValueType: "*Node",
		Inherited: contextAttribute,
		Enter:     enterExpr,
		Leave:     leaveExpr,
		Actions:   actions,
		PreCalls: map[string]func(*exprFrame, *parsing.ValueStack){
			"left":  passExprContext,
			"right": passExprContext,
		},
		PostCalls: map[string]func(*exprFrame, *parsing.ValueStack, bool){
			"left": parsing.Capture(setExpr),
			"right": parsing.Capture(func(c *exprFrame, v parsing.Value) {
				right := parsing.As[*Node](v)
				c.value = &Node{Kind: KindBinaryExpr, Span: spanOf(c.value, right), Text: c.op, Children: []*Node{c.value, right}}
			}),
		},
	}, parsing.Sequence(
		parsing.Nonterminal("left", operand, 1),
		parsing.KleeneStar(parsing.Sequence(
			parsing.Alternative(alternatives...),
			parsing.Expectation(parsing.Nonterminal("right", operand, 1)),
		)),
	))
}
