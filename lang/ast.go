package lang

import (
	"fmt"
	"strings"

	"github.com/dhamidi/cmparse/parsing"
)

type NodeKind int

const (
	KindBooleanLiteral NodeKind = iota
	KindIntegerLiteral
	KindFloatingLiteral
	KindCharLiteral
	KindStringLiteral
	KindNullLiteral

	// Expressions
	KindIdentifier
	KindBinaryExpr
	KindUnaryExpr
	KindInvokeExpr

	// Statements
	KindCompoundStatement
	KindReturnStatement
	KindIfStatement
	KindWhileStatement
	KindBreakStatement
	KindContinueStatement
	KindSwitchStatement
	KindCaseStatement
	KindDefaultStatement
	KindAssignmentStatement
	KindExpressionStatement
	KindEmptyStatement

	KindCaseLabels
	KindProgram
)

var nodeKindNames = map[NodeKind]string{
	KindBooleanLiteral:      "BooleanLiteral",
	KindIntegerLiteral:      "IntegerLiteral",
	KindFloatingLiteral:     "FloatingLiteral",
	KindCharLiteral:         "CharLiteral",
	KindStringLiteral:       "StringLiteral",
	KindNullLiteral:         "NullLiteral",
	KindIdentifier:          "Identifier",
	KindBinaryExpr:          "BinaryExpr",
	KindUnaryExpr:           "UnaryExpr",
	KindInvokeExpr:          "InvokeExpr",
	KindCompoundStatement:   "CompoundStatement",
	KindReturnStatement:     "ReturnStatement",
	KindIfStatement:         "IfStatement",
	KindWhileStatement:      "WhileStatement",
	KindBreakStatement:      "BreakStatement",
	KindContinueStatement:   "ContinueStatement",
	KindSwitchStatement:     "SwitchStatement",
	KindCaseStatement:       "CaseStatement",
	KindDefaultStatement:    "DefaultStatement",
	KindAssignmentStatement: "AssignmentStatement",
	KindExpressionStatement: "ExpressionStatement",
	KindEmptyStatement:      "EmptyStatement",
	KindCaseLabels:          "CaseLabels",
	KindProgram:             "Program",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is a syntax tree node. Text holds the source text of literals, the
// name of identifiers and the operator of unary and binary expressions.
// Value holds the decoded value of literals.
//
// Children are positional for fixed shapes:
//
//	BinaryExpr          left, right
//	UnaryExpr           operand
//	InvokeExpr          subject, arguments...
//	IfStatement         condition, then, [else]
//	WhileStatement      condition, body
//	ReturnStatement     [expression]
//	SwitchStatement     condition, cases...
//	CaseStatement       CaseLabels, statements...
//	AssignmentStatement target, source
type Node struct {
	Kind     NodeKind
	Span     parsing.Span
	Text     string
	Value    any
	Children []*Node
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

// Child returns the i-th child, or nil when there is none.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, indent int) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind.String())
	if n.Text != "" {
		b.WriteString(" " + n.Text)
	}
	if n.Value != nil && fmt.Sprint(n.Value) != n.Text {
		fmt.Fprintf(b, " = %v", n.Value)
	}
	b.WriteString("\n")
	for _, child := range n.Children {
		child.write(b, indent+1)
	}
}

func newNode(kind NodeKind, span parsing.Span, children ...*Node) *Node {
	n := &Node{Kind: kind, Span: span}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

func spanOf(first, last *Node) parsing.Span {
	return parsing.Span{FileIndex: first.Span.FileIndex, Start: first.Span.Start, End: last.Span.End}
}
