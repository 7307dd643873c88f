package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cmparse/config"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	cfg = config.Default()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseProgram(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.cm", "x = 1;")
	out, _, err := execute(t, newParseCmd(), path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.HasPrefix(out, "Program\n  AssignmentStatement\n") {
		t.Errorf("got\n%s", out)
	}
}

func TestParseWithGrammar(t *testing.T) {
	dir := t.TempDir()
	grammar := writeFile(t, dir, "pair.ebnf", `Pair = "(" "x" ")" .`)
	input := writeFile(t, dir, "in.txt", "(x)")

	out, _, err := execute(t, newParseCmd(), "--grammar", grammar, "--format", "line", input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.HasPrefix(out, "0\tPair\t1:1-1:4\t\n") {
		t.Errorf("got\n%q", out)
	}
}

func TestParseFailurePrintsLocation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.cm", "if (x) ")
	_, errOut, err := execute(t, newParseCmd(), path)
	if err != errParseFailed {
		t.Fatalf("got %v, want errParseFailed", err)
	}
	if !strings.Contains(errOut, "a.cm:1:8: Statement expected") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestEbnfCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ebnf", `A = "a" { "a" } .`)
	bad := writeFile(t, dir, "bad.ebnf", `A = B "x" . B = [ "y" ] A .`)

	if _, _, err := execute(t, newEbnfCmd(), "check", good); err != nil {
		t.Errorf("check good grammar: %v", err)
	}
	_, errOut, err := execute(t, newEbnfCmd(), "check", bad)
	if err == nil {
		t.Fatalf("check accepted a left recursive grammar")
	}
	if !strings.Contains(errOut, "left recursive") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestEbnfPrint(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.ebnf", `A = "a" { "a" } .`)
	out, _, err := execute(t, newEbnfCmd(), "print", path)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.HasPrefix(out, "grammar cmparse.ebnf.Grammar\n") {
		t.Errorf("got\n%s", out)
	}
}

func TestGrammars(t *testing.T) {
	out, _, err := execute(t, newGrammarsCmd())
	if err != nil {
		t.Fatalf("grammars: %v", err)
	}
	for _, name := range []string{"cmparse.lang.ProgramGrammar", "cmparse.parsing.stdlib"} {
		if !strings.Contains(out, name) {
			t.Errorf("output does not list %s:\n%s", name, out)
		}
	}
}

func TestParseWithRule(t *testing.T) {
	path := writeFile(t, t.TempDir(), "e.txt", "1 + 2")
	out, _, err := execute(t, newParseCmd(), "--rule", "ExpressionGrammar.Expression", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.HasPrefix(out, "BinaryExpr \"+\"\n") {
		t.Errorf("got\n%s", out)
	}
}
