// Package format renders syntax trees produced by ahi's parsers.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/cmparse/lang"
	"github.com/dhamidi/cmparse/parsing"
	"github.com/dhamidi/cmparse/parsing/ebnfparse"
	"github.com/dhamidi/cmparse/source"
)

// Node is the printable form shared by the language AST and the concrete
// syntax trees of compiled EBNF grammars.
type Node struct {
	Kind     string
	Text     string
	Value    any
	Span     parsing.Span
	Children []*Node
}

// FromLang converts a language syntax tree.
func FromLang(n *lang.Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind.String(), Text: n.Text, Value: n.Value, Span: n.Span}
	for _, c := range n.Children {
		out.Children = append(out.Children, FromLang(c))
	}
	return out
}

// FromCST converts a concrete syntax tree. Literal tokens keep their quoted
// text as kind and carry no separate text.
func FromCST(n *ebnfparse.Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Span: n.Span}
	if n.IsTerminal() && n.Kind != fmt.Sprintf("%q", n.Text) {
		out.Text = n.Text
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, FromCST(c))
	}
	return out
}

type Encoder interface {
	Encode(n *Node) error
}

// Formats lists the names accepted by New.
var Formats = []string{"json", "tree", "line"}

// New returns the encoder for the named format. When file is not nil,
// spans are rendered as lines and columns of file.
func New(name string, w io.Writer, file *source.File) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w, file), nil
	case "tree":
		return NewTreeEncoder(w), nil
	case "line":
		return NewLineEncoder(w, file), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}
