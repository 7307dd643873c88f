package format

import (
	"fmt"
	"io"
	"strings"
)

// TreeEncoder writes an indented outline of the tree.
type TreeEncoder struct {
	w io.Writer
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(n *Node) error {
	var sb strings.Builder
	writeTree(&sb, n, 0)
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func writeTree(sb *strings.Builder, n *Node, indent int) {
	if n == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Kind)
	if n.Text != "" {
		fmt.Fprintf(sb, " %q", n.Text)
	}
	if n.Value != nil && fmt.Sprint(n.Value) != n.Text {
		fmt.Fprintf(sb, " = %v", n.Value)
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		writeTree(sb, c, indent+1)
	}
}
