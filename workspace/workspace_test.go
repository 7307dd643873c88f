package workspace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/cmparse/config"
	"github.com/dhamidi/cmparse/parsing"
)

const arithmetic = `
Expr   = Term { ( "+" | "-" ) Term } .
Term   = number | "(" Expr ")" .
number = digit { digit } .
digit  = "0" … "9" .
blank  = " " | "\t" | "\n" .
`

func newWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "arith.ebnf")
	if err := os.WriteFile(path, []byte(arithmetic), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Grammars: []config.Grammar{{
		Name:       "test.Arith",
		File:       path,
		Skip:       "blank",
		Extensions: []string{".arith"},
	}}}
	return New(cfg), path
}

func TestCheckSelectsGrammarByExtension(t *testing.T) {
	w, _ := newWorkspace(t)

	_, n, err := w.Check("a.arith", []byte("1 + 2"))
	if err != nil {
		t.Fatalf("check arith: %v", err)
	}
	if n.Kind != "Expr" {
		t.Errorf("root kind = %s, want Expr", n.Kind)
	}

	_, n, err = w.Check("b.cm", []byte("x = 1;"))
	if err != nil {
		t.Fatalf("check cm: %v", err)
	}
	if n.Kind != "Program" {
		t.Errorf("root kind = %s, want Program", n.Kind)
	}

	if _, _, err := w.Check("c.txt", []byte("")); err == nil {
		t.Errorf("a file without grammar parsed")
	}
}

func TestCheckReportsExpectationFailures(t *testing.T) {
	w, _ := newWorkspace(t)
	file, _, err := w.Check("a.arith", []byte("1 +"))
	var ef *parsing.ExpectationFailure
	if !errors.As(err, &ef) {
		t.Fatalf("got %v, want *parsing.ExpectationFailure", err)
	}
	if ef.Span.FileIndex != file.Index {
		t.Errorf("failure in file %d, want %d", ef.Span.FileIndex, file.Index)
	}
}

func TestHandles(t *testing.T) {
	w, path := newWorkspace(t)
	tests := []struct {
		name string
		want bool
	}{
		{"a.arith", true},
		{"a.cm", true},
		{"a.go", false},
	}
	for _, tt := range tests {
		if got := w.Handles(tt.name); got != tt.want {
			t.Errorf("Handles(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if !w.IsGrammarFile(path) || w.IsGrammarFile("a.arith") {
		t.Errorf("IsGrammarFile misclassifies")
	}
}

func TestReloadPicksUpGrammarChanges(t *testing.T) {
	w, path := newWorkspace(t)
	if _, _, err := w.Check("a.arith", []byte("1*2")); err == nil {
		t.Fatalf("'*' parsed before it was added to the grammar")
	}

	extended := `
Expr   = Term { ( "+" | "-" | "*" ) Term } .
Term   = number | "(" Expr ")" .
number = digit { digit } .
digit  = "0" … "9" .
blank  = " " | "\t" | "\n" .
`
	if err := os.WriteFile(path, []byte(extended), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := w.Check("a.arith", []byte("1*2")); err == nil {
		t.Fatalf("compiled grammar was not cached")
	}
	w.Reload()
	if _, _, err := w.Check("a.arith", []byte("1*2")); err != nil {
		t.Errorf("after reload: %v", err)
	}
}

func TestGrammarErrors(t *testing.T) {
	w := New(&config.Config{Grammars: []config.Grammar{{
		Name: "test.Missing",
		File: filepath.Join(t.TempDir(), "missing.ebnf"),
	}}})
	if _, err := w.Grammar("test.Missing"); err == nil {
		t.Errorf("missing grammar file compiled")
	}
	if _, err := w.Grammar("test.Unknown"); err == nil {
		t.Errorf("unknown grammar name compiled")
	}
}

func TestTraceIsPerWorkspace(t *testing.T) {
	w, _ := newWorkspace(t)
	var buf bytes.Buffer
	w.SetTrace(&buf)

	for name, src := range map[string]string{"a.arith": "1 + 2", "b.cm": "x = 1;"} {
		buf.Reset()
		if _, _, err := w.Check(name, []byte(src)); err != nil {
			t.Fatalf("check %s: %v", name, err)
		}
		if !strings.Contains(buf.String(), `<rule name="`) {
			t.Errorf("%s: no trace written:\n%s", name, buf.String())
		}
	}

	other := New(w.Config())
	other.domain = w.domain
	buf.Reset()
	if _, _, err := other.Check("c.arith", []byte("3")); err != nil {
		t.Fatalf("check: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("untraced workspace wrote to the trace:\n%s", buf.String())
	}

	w.SetTrace(nil)
	if _, _, err := w.Check("a.arith", []byte("1")); err != nil {
		t.Fatalf("check: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("trace written after SetTrace(nil)")
	}
}
