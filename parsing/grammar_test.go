package parsing

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

var wordsDef = Def{
	QualifiedName: "test.lex.WordGrammar",
	Rules: func(g *Grammar) {
		g.AddRule(NewRule("word", Token(Positive(Letter()))))
		g.AddRule(NewRule("blanks", Positive(Space())))
	},
}

var listDef = Def{
	QualifiedName: "test.ListGrammar",
	Refs: func(g *Grammar) error {
		_, err := g.Reference(wordsDef)
		return err
	},
	Rules: func(g *Grammar) {
		g.AddRuleLink("word", "WordGrammar.word")
		g.AddRuleLink("blanks", "test.lex.WordGrammar.blanks")
		g.AddRule(NewRule("Words", List(Call("word"), Char(','))))
		g.SetSkipRule("blanks")
	},
}

func TestCreateMemoizesGrammars(t *testing.T) {
	domain := NewParsingDomain()
	g1, err := Create(domain, listDef)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	g2, err := Create(domain, listDef)
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if g1 != g2 {
		t.Errorf("second Create built a new grammar")
	}
	if got := len(domain.Grammars()); got != 2 {
		t.Errorf("domain has %d grammars, want 2", got)
	}
	if domain.Grammar("test.lex.WordGrammar") == nil {
		t.Errorf("referenced grammar not registered")
	}
	if got := domain.NumRules(); got != 3 {
		t.Errorf("rule ids handed out = %d, want 3", got)
	}
	if g1.Name() != "ListGrammar" || g1.Namespace() != "test" {
		t.Errorf("name = %q namespace = %q", g1.Name(), g1.Namespace())
	}
}

func TestRuleLinks(t *testing.T) {
	g, err := Create(nil, listDef)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	words := g.References()[0]
	for _, l := range g.RuleLinks() {
		if l.Rule() == nil || l.Rule().Grammar() != words {
			t.Errorf("link %s not resolved into %s", l.Alias, words.FullName())
		}
	}
	if g.SkipRule() != words.Rule("blanks") {
		t.Errorf("skip rule not linked")
	}
	if _, err := g.ParseString("  alpha , beta,gamma  ", "test"); err != nil {
		t.Errorf("parse: %v", err)
	}
}

func TestParseNotFullyConsumed(t *testing.T) {
	g, err := Create(nil, listDef)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = g.ParseString("alpha, beta\ngamma", "words.txt")
	var ef *ExpectationFailure
	if !errors.As(err, &ef) {
		t.Fatalf("err = %v, want *ExpectationFailure", err)
	}
	if ef.Span.Start != 12 {
		t.Errorf("failure at %d, want 12", ef.Span.Start)
	}
	want := "parsing file 'words.txt' failed at line 2:\nWords expected:\ngamma\n^"
	if err.Error() != want {
		t.Errorf("message =\n%s\nwant\n%s", err.Error(), want)
	}
}

func TestParseNoMatch(t *testing.T) {
	g, err := Create(nil, listDef)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := g.ParseString("123", "test"); err == nil {
		t.Errorf("want error")
	}
}

func TestParseWithoutStartRule(t *testing.T) {
	g, err := Create(nil, Def{QualifiedName: "test.Empty"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = g.ParseString("x", "test")
	if err == nil || !strings.Contains(err.Error(), "has no start rule") {
		t.Errorf("err = %v", err)
	}
}

func TestNonParsePanicsPropagate(t *testing.T) {
	g, err := Create(nil, Def{
		QualifiedName: "test.Panicky",
		Rules: func(g *Grammar) {
			a := Action("A0", Char('x'))
			a.SetAction(func(*ActionArgs) { panic("boom") })
			g.AddRule(NewRule("X", a))
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recovered %v, want boom", r)
		}
	}()
	g.ParseString("x", "test")
	t.Errorf("panic was swallowed")
}

func TestXmlLog(t *testing.T) {
	g, err := Create(nil, listDef)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var buf bytes.Buffer
	if _, err := g.ParseTraced(&Trace{Out: &buf}, []rune("a<b"), 0, "test"); err == nil {
		t.Fatalf("want error")
	}
	out := buf.String()
	for _, want := range []string{`<rule name="Words">`, "<try>a&lt;b</try>", "<success>a</success>", "</rule>"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if _, err := g.ParseString("a", "test"); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("untraced parse wrote to an earlier trace:\n%s", buf.String())
	}
}

func TestXmlLogEscapesRuleNames(t *testing.T) {
	g, err := Create(nil, Def{
		QualifiedName: "test.InfoGrammar",
		Rules: func(g *Grammar) {
			Define(g, RuleDef[flagFrame]{Name: "A", Info: `a <b> "c"`}, Char('a'))
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var buf bytes.Buffer
	if _, err := g.ParseTraced(&Trace{Out: &buf}, []rune("a"), 0, "test"); err != nil {
		t.Fatalf("parse: %v", err)
	}
	dec := xml.NewDecoder(&buf)
	var names []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("trace is not well formed: %v", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "rule" {
			names = append(names, se.Attr[0].Value)
		}
	}
	if len(names) != 1 || names[0] != `a <b> "c"` {
		t.Errorf("rule names = %q", names)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestXmlLogReportsWriteErrors(t *testing.T) {
	l := NewXmlLog(failingWriter{}, 0)
	l.BeginRule("A")
	l.Fail()
	l.EndRule("A")
	if err := l.Flush(); err == nil || err.Error() != "disk full" {
		t.Errorf("flush = %v, want disk full", err)
	}
}

func TestFailedCreateIsNotRegistered(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		def  Def
		want string
	}{
		{
			name: "references",
			def: Def{
				QualifiedName: "test.RefFail",
				Refs:          func(g *Grammar) error { return boom },
				Rules: func(g *Grammar) {
					g.AddRule(NewRule("A", Char('a')))
				},
			},
			want: "boom",
		},
		{
			name: "link",
			def: Def{
				QualifiedName: "test.LinkFail",
				Rules: func(g *Grammar) {
					g.AddRule(NewRule("A", Call("missing")))
				},
			},
			want: "rule 'missing' not found",
		},
		{
			name: "referenced grammar",
			def: Def{
				QualifiedName: "test.Outer",
				Refs: func(g *Grammar) error {
					_, err := g.Reference(Def{
						QualifiedName: "test.Inner",
						Rules: func(g *Grammar) {
							g.AddRule(NewRule("B", Call("missing")))
						},
					})
					return err
				},
			},
			want: "rule 'missing' not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain := NewParsingDomain()
			for i := 0; i < 2; i++ {
				g, err := Create(domain, tt.def)
				if err == nil || !strings.Contains(err.Error(), tt.want) {
					t.Fatalf("create #%d: grammar %v, error %v, want %q", i+1, g, err, tt.want)
				}
			}
			if got := domain.Grammars(); len(got) != 0 {
				t.Errorf("domain kept %d broken grammars", len(got))
			}
		})
	}
}

func TestGrammarString(t *testing.T) {
	g, err := Create(nil, listDef)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	out := g.String()
	for _, want := range []string{"grammar test.ListGrammar", "using WordGrammar.word", "skip blanks", "Words ::= word % ','"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}
