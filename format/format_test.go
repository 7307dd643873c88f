package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/cmparse/lang"
	"github.com/dhamidi/cmparse/parsing"
	"github.com/dhamidi/cmparse/parsing/ebnfparse"
	"github.com/dhamidi/cmparse/source"
)

func sampleTree() *Node {
	return &Node{
		Kind: "AssignmentStatement",
		Span: parsing.Span{Start: 0, End: 6},
		Children: []*Node{
			{Kind: "Identifier", Text: "x", Value: "x", Span: parsing.Span{Start: 0, End: 1}},
			{Kind: "IntegerLiteral", Text: "42", Value: int64(42), Span: parsing.Span{Start: 4, End: 6}},
		},
	}
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	file := source.NewFile(0, "a.cm", []rune("x\n= 42"))
	if err := NewJSONEncoder(&buf, file).Encode(sampleTree()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got struct {
		Kind string `json:"kind"`
		Span struct {
			End int `json:"end"`
			To  struct {
				Line   int `json:"line"`
				Column int `json:"column"`
			} `json:"to"`
		} `json:"span"`
		Children []map[string]any `json:"children"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Kind != "AssignmentStatement" || got.Span.End != 6 {
		t.Errorf("got %+v", got)
	}
	if got.Span.To.Line != 2 || got.Span.To.Column != 5 {
		t.Errorf("end position = %d:%d, want 2:5", got.Span.To.Line, got.Span.To.Column)
	}
	if len(got.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(got.Children))
	}
	if _, ok := got.Children[0]["value"]; ok {
		t.Errorf("identifier repeats its text as value")
	}
	if v := got.Children[1]["value"]; v != float64(42) {
		t.Errorf("literal value = %v, want 42", v)
	}
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	tree := sampleTree()
	tree.Children[0].Text = "a\tb"
	if err := NewLineEncoder(&buf, nil).Encode(tree); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "0\tAssignmentStatement\t0-6\t\n" +
		"1\tIdentifier\t0-1\ta\\tb\n" +
		"1\tIntegerLiteral\t4-6\t42\n"
	if got := buf.String(); got != want {
		t.Errorf("got\n%q\nwant\n%q", got, want)
	}
}

func TestTreeEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTreeEncoder(&buf).Encode(sampleTree()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "AssignmentStatement\n  Identifier \"x\"\n  IntegerLiteral \"42\"\n"
	if got := buf.String(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Formats {
		if _, err := New(name, &bytes.Buffer{}, nil); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("xml", &bytes.Buffer{}, nil); err == nil {
		t.Errorf("New accepted an unknown format")
	}
}

func TestFromLang(t *testing.T) {
	n, err := lang.ParseProgram([]rune("x = 1;"), "a.cm")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := FromLang(n)
	if got.Kind != "Program" || len(got.Children) != 1 || got.Children[0].Kind != "AssignmentStatement" {
		t.Errorf("got %+v", got)
	}
	if FromLang(nil) != nil {
		t.Errorf("FromLang(nil) is not nil")
	}
}

func TestFromCST(t *testing.T) {
	leaf := &ebnfparse.Node{Kind: `"+"`, Text: "+"}
	number := &ebnfparse.Node{Kind: "number", Text: "7"}
	root := &ebnfparse.Node{Kind: "Expr", Children: []*ebnfparse.Node{number, leaf}}

	got := FromCST(root)
	if len(got.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(got.Children))
	}
	if got.Children[0].Text != "7" {
		t.Errorf("lexical production lost its text")
	}
	if got.Children[1].Kind != `"+"` || got.Children[1].Text != "" {
		t.Errorf("literal token = %+v", got.Children[1])
	}
}

func TestError(t *testing.T) {
	src := []rune("x = 1;\nif (x) ")
	_, err := lang.ParseProgram(src, "a.cm")
	if err == nil {
		t.Fatalf("parse succeeded")
	}
	got := Error(err, source.NewFile(0, "a.cm", src))
	if !strings.HasPrefix(got, "a.cm:2:8: Statement expected\n") {
		t.Errorf("got %q", got)
	}
	if got := Error(err, nil); !strings.HasPrefix(got, "a.cm:2:8: ") {
		t.Errorf("without file: %q", got)
	}
}
