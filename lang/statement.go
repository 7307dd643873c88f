package lang

import "github.com/dhamidi/cmparse/parsing"

const StatementGrammarName = "cmparse.lang.StatementGrammar"

var StatementDefinition = parsing.Def{
	QualifiedName: StatementGrammarName,
	Refs: func(g *parsing.Grammar) error {
		if _, err := g.Reference(ExpressionDefinition); err != nil {
			return err
		}
		return referenceStdlib(g)
	},
	Rules: createStatementRules,
}

type stmtFrame struct {
	ctx   *ParsingContext
	value *Node
	expr  *Node
	nodes []*Node

	// pending holds a node parsed by a call whose enclosing sequence may
	// still fail. An action moves it into place once the sequence commits.
	pending    *Node
	labels     []*Node
	targetExpr *Node
}

func enterStmt(c *stmtFrame, stack *parsing.ValueStack) {
	c.ctx = parsing.As[*ParsingContext](stack.Pop())
}

func leaveStmt(c *stmtFrame, stack *parsing.ValueStack) {
	stack.Push(parsing.NodeValue(c.value))
}

func passStmtContext(c *stmtFrame, stack *parsing.ValueStack) {
	stack.Push(parsing.RefValue(c.ctx))
}

var (
	setStmtValue = parsing.Capture(func(c *stmtFrame, v parsing.Value) { c.value = parsing.As[*Node](v) })
	setStmtExpr  = parsing.Capture(func(c *stmtFrame, v parsing.Value) { c.expr = parsing.As[*Node](v) })
	addStmtNode  = parsing.Capture(func(c *stmtFrame, v parsing.Value) { c.nodes = append(c.nodes, parsing.As[*Node](v)) })
	setPending   = parsing.Capture(func(c *stmtFrame, v parsing.Value) { c.pending = parsing.As[*Node](v) })
)

// calls builds pre-call hooks that pass the parsing context to each of the
// named call sites.
func calls(names ...string) map[string]func(*stmtFrame, *parsing.ValueStack) {
	m := make(map[string]func(*stmtFrame, *parsing.ValueStack), len(names))
	for _, name := range names {
		m[name] = passStmtContext
	}
	return m
}

type stmtRule struct {
	name      string
	actions   map[string]func(*stmtFrame, *parsing.ActionArgs)
	failures  map[string]func(*stmtFrame)
	calls     []string
	postCalls map[string]func(*stmtFrame, *parsing.ValueStack, bool)
}

func defineStmt(g *parsing.Grammar, r stmtRule, definition parsing.Parser) {
	parsing.Define(g, parsing.RuleDef[stmtFrame]{
		Name:           r.name,
		ValueType:      "*Node",
		Inherited:      contextAttribute,
		Enter:          enterStmt,
		Leave:          leaveStmt,
		Actions:        r.actions,
		FailureActions: r.failures,
		PreCalls:       calls(r.calls...),
		PostCalls:      r.postCalls,
	}, definition)
}

func stmt(instance string) *parsing.NonterminalParser {
	return parsing.Nonterminal(instance, "Statement", 1)
}

func expression(instance string) *parsing.NonterminalParser {
	return parsing.Nonterminal(instance, "Expression", 1)
}

func createStatementRules(g *parsing.Grammar) {
	g.AddRuleLink("Expression", "ExpressionGrammar.Expression")
	g.AddRuleLink("spaces_and_comments", "stdlib.spaces_and_comments")
	g.SetSkipRule("spaces_and_comments")

	defineStmt(g, stmtRule{
		name:  "Statement",
		calls: []string{"ControlStatement", "ExpressionStatement", "AssignmentStatement", "EmptyStatement"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){
			"ControlStatement":    setStmtValue,
			"ExpressionStatement": setStmtValue,
			"AssignmentStatement": setStmtValue,
			"EmptyStatement":      setStmtValue,
		},
	}, parsing.Alternative(
		parsing.Nonterminal("ControlStatement", "ControlStatement", 1),
		parsing.Nonterminal("ExpressionStatement", "ExpressionStatement", 1),
		parsing.Nonterminal("AssignmentStatement", "AssignmentStatement", 1),
		parsing.Nonterminal("EmptyStatement", "EmptyStatement", 1),
	))

	control := []string{
		"CompoundStatement", "ReturnStatement", "IfStatement", "WhileStatement",
		"BreakStatement", "ContinueStatement", "SwitchStatement",
	}
	controlCalls := make([]parsing.Parser, len(control))
	controlPosts := make(map[string]func(*stmtFrame, *parsing.ValueStack, bool), len(control))
	for i, name := range control {
		controlCalls[i] = parsing.Nonterminal(name, name, 1)
		controlPosts[name] = setStmtValue
	}
	defineStmt(g, stmtRule{
		name:      "ControlStatement",
		calls:     control,
		postCalls: controlPosts,
	}, parsing.Alternative(controlCalls...))

	defineStmt(g, stmtRule{
		name: "CompoundStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = newNode(KindCompoundStatement, a.Span)
			},
			"A1": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value.Span.End = a.Span.End
			},
		},
		calls: []string{"stmt"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){
			"stmt": parsing.Capture(func(c *stmtFrame, v parsing.Value) { c.value.AddChild(parsing.As[*Node](v)) }),
		},
	}, parsing.Sequence(
		parsing.Action("A0", parsing.Char('{')),
		parsing.KleeneStar(stmt("stmt")),
		parsing.Action("A1", parsing.Expectation(parsing.Char('}'))),
	))

	defineStmt(g, stmtRule{
		name: "ReturnStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = newNode(KindReturnStatement, a.Span, c.expr)
			},
		},
		calls:     []string{"Expression"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){"Expression": setStmtExpr},
	}, parsing.Action("A0", parsing.Sequence(
		parsing.Keyword("return"),
		parsing.Optional(expression("Expression")),
		parsing.Expectation(parsing.Char(';')),
	)))

	// Once the condition has been read the branches are expected.
	defineStmt(g, stmtRule{
		name: "IfStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = newNode(KindIfStatement, a.Span, append([]*Node{c.expr}, c.nodes...)...)
			},
		},
		calls: []string{"Expression", "thens", "elses"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){
			"Expression": setStmtExpr,
			"thens":      addStmtNode,
			"elses":      addStmtNode,
		},
	}, parsing.Action("A0", parsing.Sequence(
		parsing.Keyword("if"),
		parsing.Char('('),
		expression("Expression"),
		parsing.Char(')'),
		parsing.Expectation(stmt("thens")),
		parsing.Optional(parsing.Sequence(parsing.Keyword("else"), parsing.Expectation(stmt("elses")))),
	)))

	defineStmt(g, stmtRule{
		name: "WhileStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = newNode(KindWhileStatement, a.Span, append([]*Node{c.expr}, c.nodes...)...)
			},
		},
		calls: []string{"Expression", "body"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){
			"Expression": setStmtExpr,
			"body":       addStmtNode,
		},
	}, parsing.Action("A0", parsing.Sequence(
		parsing.Keyword("while"),
		parsing.Expectation(parsing.Char('(')),
		parsing.Expectation(expression("Expression")),
		parsing.Expectation(parsing.Char(')')),
		parsing.Expectation(stmt("body")),
	)))

	jump := func(name, keyword string, kind NodeKind) {
		defineStmt(g, stmtRule{
			name: name,
			actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
				"A0": func(c *stmtFrame, a *parsing.ActionArgs) { c.value = newNode(kind, a.Span) },
			},
		}, parsing.Action("A0", parsing.Sequence(parsing.Keyword(keyword), parsing.Expectation(parsing.Char(';')))))
	}
	jump("BreakStatement", "break", KindBreakStatement)
	jump("ContinueStatement", "continue", KindContinueStatement)

	addCase := parsing.Capture(func(c *stmtFrame, v parsing.Value) { c.value.AddChild(parsing.As[*Node](v)) })
	defineStmt(g, stmtRule{
		name: "SwitchStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = newNode(KindSwitchStatement, a.Span, c.expr)
			},
			"A1": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value.Span.End = a.Span.End
			},
		},
		calls: []string{"Expression", "CaseStatement", "DefaultStatement"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){
			"Expression":       setStmtExpr,
			"CaseStatement":    addCase,
			"DefaultStatement": addCase,
		},
	}, parsing.Sequence(
		parsing.Action("A0", parsing.Sequence(
			parsing.Keyword("switch"),
			parsing.Expectation(parsing.Char('(')),
			parsing.Expectation(expression("Expression")),
			parsing.Expectation(parsing.Char(')')),
		)),
		parsing.Expectation(parsing.Char('{')),
		parsing.KleeneStar(parsing.Alternative(
			parsing.Nonterminal("CaseStatement", "CaseStatement", 1),
			parsing.Nonterminal("DefaultStatement", "DefaultStatement", 1),
		)),
		parsing.Action("A1", parsing.Expectation(parsing.Char('}'))),
	))

	// A label joins the case only when its colon follows, so a label
	// parsed by an abandoned iteration is never kept.
	defineStmt(g, stmtRule{
		name: "CaseStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				labels := newNode(KindCaseLabels, spanOf(c.labels[0], c.labels[len(c.labels)-1]), c.labels...)
				c.value = newNode(KindCaseStatement, a.Span, append([]*Node{labels}, c.nodes...)...)
			},
			"A1": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.labels = append(c.labels, c.pending)
				c.pending = nil
			},
		},
		calls: []string{"Expression", "stmt"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){
			"Expression": setPending,
			"stmt":       addStmtNode,
		},
	}, parsing.Action("A0", parsing.Sequence(
		parsing.Positive(parsing.Sequence(
			parsing.Keyword("case"),
			expression("Expression"),
			parsing.Action("A1", parsing.Char(':')),
		)),
		parsing.KleeneStar(stmt("stmt")),
	)))

	defineStmt(g, stmtRule{
		name: "DefaultStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = newNode(KindDefaultStatement, a.Span, c.nodes...)
			},
		},
		calls:     []string{"stmt"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){"stmt": addStmtNode},
	}, parsing.Action("A0", parsing.Sequence(
		parsing.Keyword("default"),
		parsing.Expectation(parsing.Char(':')),
		parsing.KleeneStar(stmt("stmt")),
	)))

	// The target is parsed with the lvalue flag set. A0 pushes the flag and
	// A2 pops it whether or not a target is found; targetExpr owns the
	// target until A1 installs it into the assignment.
	defineStmt(g, stmtRule{
		name: "AssignmentStatementExpr",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.ctx.PushParsingLvalue(true)
			},
			"A1": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = newNode(KindAssignmentStatement, a.Span, c.targetExpr, c.expr)
				c.targetExpr = nil
			},
			"A2": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.ctx.PopParsingLvalue()
				c.targetExpr, c.pending = c.pending, nil
			},
		},
		failures: map[string]func(*stmtFrame){
			"A2": func(c *stmtFrame) { c.ctx.PopParsingLvalue() },
		},
		calls: []string{"target", "source"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){
			"target": setPending,
			"source": setStmtExpr,
		},
	}, parsing.Sequence(
		parsing.Action("A0", parsing.Empty()),
		parsing.Action("A1", parsing.Sequence(
			parsing.Action("A2", expression("target")),
			parsing.Char('='),
			expression("source"),
		)),
	))

	defineStmt(g, stmtRule{
		name: "AssignmentStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.value = c.expr
				c.value.Span = a.Span
			},
		},
		calls:     []string{"AssignmentStatementExpr"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){"AssignmentStatementExpr": setStmtExpr},
	}, parsing.Action("A0", parsing.Sequence(
		parsing.Nonterminal("AssignmentStatementExpr", "AssignmentStatementExpr", 1),
		parsing.Char(';'),
	)))

	defineStmt(g, stmtRule{
		name: "ExpressionStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.ctx.PushParsingExpressionStatement(true)
			},
			"A1": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.ctx.PopParsingExpressionStatement()
				c.value = newNode(KindExpressionStatement, a.Span, c.expr)
			},
			"A2": func(c *stmtFrame, a *parsing.ActionArgs) {
				c.expr, c.pending = c.pending, nil
			},
		},
		failures: map[string]func(*stmtFrame){
			"A1": func(c *stmtFrame) { c.ctx.PopParsingExpressionStatement() },
		},
		calls:     []string{"Expression"},
		postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){"Expression": setPending},
	}, parsing.Sequence(
		parsing.Action("A0", parsing.Empty()),
		parsing.Action("A1", parsing.Sequence(
			parsing.Action("A2", expression("Expression")),
			parsing.Char(';'),
		)),
	))

	defineStmt(g, stmtRule{
		name: "EmptyStatement",
		actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
			"A0": func(c *stmtFrame, a *parsing.ActionArgs) { c.value = newNode(KindEmptyStatement, a.Span) },
		},
	}, parsing.Action("A0", parsing.Char(';')))
}
