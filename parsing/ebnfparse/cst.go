// Package ebnfparse compiles EBNF grammars into parsing grammars that produce
// concrete syntax trees.
package ebnfparse

import (
	"strconv"
	"strings"

	"github.com/dhamidi/cmparse/parsing"
)

// Node represents a node in the concrete syntax tree.
// Nodes of lexical productions and literal tokens carry Text; nodes of
// syntactic productions have Children.
type Node struct {
	Kind     string       // Production name, or the quoted literal of a token
	Children []*Node      // Child nodes (nil for terminals)
	Text     string       // Matched text of terminals
	Span     parsing.Span // Source span covering this node
}

// IsTerminal returns true if this is a leaf node (token or lexical production).
func (n *Node) IsTerminal() bool {
	return n.Children == nil
}

// AddChild appends a child node and updates the span.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
	if len(n.Children) == 1 {
		n.Span.Start = child.Span.Start
	}
	n.Span.End = child.Span.End
}

// Find returns the nodes of the given kind in depth-first order.
func (n *Node) Find(kind string) []*Node {
	var found []*Node
	n.walk(func(m *Node) {
		if m.Kind == kind {
			found = append(found, m)
		}
	})
	return found
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, indent int) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind)
	if n.Text != "" && !isTokenKind(n.Kind) {
		b.WriteString(" " + strconv.Quote(n.Text))
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		c.write(b, indent+1)
	}
}

func newTerminal(kind, text string, span parsing.Span) *Node {
	return &Node{Kind: kind, Text: text, Span: span}
}

func newNonTerminal(kind string, span parsing.Span) *Node {
	return &Node{Kind: kind, Children: make([]*Node, 0), Span: span}
}

func isTokenKind(kind string) bool {
	return strings.HasPrefix(kind, `"`)
}
