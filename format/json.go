package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/cmparse/source"
)

type JSONEncoder struct {
	w    io.Writer
	file *source.File
}

func NewJSONEncoder(w io.Writer, file *source.File) *JSONEncoder {
	return &JSONEncoder{w: w, file: file}
}

func (e *JSONEncoder) Encode(n *Node) error {
	text, err := e.MarshalText(n)
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText(n *Node) ([]byte, error) {
	return json.MarshalIndent(e.nodeToJSON(n), "", "  ")
}

type jsonNode struct {
	Kind     string      `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Value    any         `json:"value,omitempty"`
	Span     jsonSpan    `json:"span"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start int           `json:"start"`
	End   int           `json:"end"`
	From  *jsonPosition `json:"from,omitempty"`
	To    *jsonPosition `json:"to,omitempty"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (e *JSONEncoder) nodeToJSON(n *Node) *jsonNode {
	if n == nil {
		return nil
	}
	jn := &jsonNode{
		Kind:  n.Kind,
		Text:  n.Text,
		Value: n.Value,
		Span:  jsonSpan{Start: n.Span.Start, End: n.Span.End},
	}
	if n.Value != nil {
		if s, ok := n.Value.(string); ok && s == n.Text {
			jn.Value = nil
		}
	}

	if e.file != nil {
		from, to := e.file.Range(n.Span)
		jn.Span.From = &jsonPosition{Line: from.Line, Column: from.Column}
		jn.Span.To = &jsonPosition{Line: to.Line, Column: to.Column}
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = e.nodeToJSON(child)
		}
	}

	return jn
}
