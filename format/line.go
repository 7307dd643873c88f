package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/cmparse/source"
)

// LineEncoder writes one tab separated line per node: depth, kind,
// position and text. It is meant for grep and awk.
type LineEncoder struct {
	w    io.Writer
	file *source.File
}

func NewLineEncoder(w io.Writer, file *source.File) *LineEncoder {
	return &LineEncoder{w: w, file: file}
}

func (e *LineEncoder) Encode(n *Node) error {
	text, err := e.MarshalText(n)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(n *Node) ([]byte, error) {
	var sb strings.Builder
	e.writeNode(&sb, n, 0)
	return []byte(sb.String()), nil
}

func (e *LineEncoder) writeNode(sb *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	fmt.Fprintf(sb, "%d\t%s\t%s\t%s\n", depth, n.Kind, e.position(n), escapeText(n.Text))
	for _, c := range n.Children {
		e.writeNode(sb, c, depth+1)
	}
}

func (e *LineEncoder) position(n *Node) string {
	if e.file == nil {
		return fmt.Sprintf("%d-%d", n.Span.Start, n.Span.End)
	}
	from, to := e.file.Range(n.Span)
	return fmt.Sprintf("%d:%d-%d:%d", from.Line, from.Column, to.Line, to.Column)
}

var textEscaper = strings.NewReplacer("\\", `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
