package parsing

import (
	"errors"
	"testing"
)

func blanks() Parser {
	return Positive(Space())
}

func TestAlternativeOrderedChoice(t *testing.T) {
	var chosen []string
	a := Action("a", String("ab"))
	a.SetAction(func(*ActionArgs) { chosen = append(chosen, "a") })
	b := Action("b", String("abc"))
	b.SetAction(func(*ActionArgs) { chosen = append(chosen, "b") })

	m, s := run(Alternative(a, b), "abc", nil)
	if !m.Hit || m.Length != 2 || s.Pos() != 2 {
		t.Fatalf("got %+v pos=%d, want hit of length 2", m, s.Pos())
	}
	if len(chosen) != 1 || chosen[0] != "a" {
		t.Errorf("chosen = %v, want [a]", chosen)
	}
}

func TestAlternativeRewindsBetweenAlternatives(t *testing.T) {
	p := Alternative(Sequence(Char('a'), Char('x')), Sequence(Char('a'), Char('b')))
	m, s := run(p, "ab", nil)
	if !m.Hit || s.Pos() != 2 {
		t.Errorf("got %+v pos=%d, want hit at 2", m, s.Pos())
	}
}

func TestSequenceAtomicity(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"second element missing", "a"},
		{"second element wrong", "a c"},
		{"third element wrong", "a b d"},
	}
	p := Sequence(Char('a'), Char('b'), Char('c'))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := run(p, tt.input, blanks())
			if m.Hit {
				t.Fatalf("unexpected hit")
			}
			if s.Pos() != 0 {
				t.Errorf("pos = %d, want 0", s.Pos())
			}
		})
	}
}

func TestSequenceSkipsBetweenElements(t *testing.T) {
	p := Sequence(Char('a'), Char('b'), Char('c'))
	m, s := run(p, "a  b\tc", blanks())
	if !m.Hit || s.Pos() != 6 {
		t.Errorf("got %+v pos=%d, want hit at 6", m, s.Pos())
	}
}

func TestSequenceLeavesTrailingBlanks(t *testing.T) {
	p := Sequence(Char('a'), Optional(Char('b')))
	m, s := run(p, "a  ", blanks())
	if !m.Hit || s.Pos() != 1 {
		t.Errorf("got %+v pos=%d, want hit at 1", m, s.Pos())
	}
}

func TestTokenOpacity(t *testing.T) {
	word := Token(Sequence(Char('"'), KleeneStar(NegatedCharSet(`"`)), Char('"')))
	m, s := run(word, `"a   b"`, blanks())
	if !m.Hit || s.Pos() != 7 {
		t.Fatalf("got %+v pos=%d, want hit at 7", m, s.Pos())
	}

	// The skip rule must not run between the characters of a token.
	tight := Token(Sequence(Char('a'), Char('b')))
	if m, _ := run(tight, "a b", blanks()); m.Hit {
		t.Errorf("token matched across a blank")
	}
	if m, _ := run(Sequence(Char('a'), Char('b')), "a b", blanks()); !m.Hit {
		t.Errorf("sequence did not skip the blank")
	}
}

func TestOptional(t *testing.T) {
	m, s := run(Optional(String("xy")), "xz", nil)
	if !m.Hit || m.Length != 0 || s.Pos() != 0 {
		t.Errorf("got %+v pos=%d, want empty hit at 0", m, s.Pos())
	}
}

func TestKleeneAndPositive(t *testing.T) {
	tests := []struct {
		name    string
		parser  Parser
		input   string
		wantHit bool
		wantPos int
	}{
		{"kleene none", KleeneStar(Char('a')), "b", true, 0},
		{"kleene many", KleeneStar(Char('a')), "aaab", true, 3},
		{"kleene skips", KleeneStar(Char('a')), "a a  a", true, 6},
		{"kleene partial iteration", KleeneStar(Sequence(Char('a'), Char('b'))), "ababa", true, 4},
		{"kleene zero length child", KleeneStar(Optional(Char('a'))), "b", true, 0},
		{"positive none", Positive(Char('a')), "b", false, 0},
		{"positive one", Positive(Char('a')), "ab", true, 1},
		{"positive many", Positive(Digit()), "123x", true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := run(tt.parser, tt.input, blanks())
			if m.Hit != tt.wantHit || s.Pos() != tt.wantPos {
				t.Errorf("got hit=%v pos=%d, want hit=%v pos=%d", m.Hit, s.Pos(), tt.wantHit, tt.wantPos)
			}
		})
	}
}

func TestDifference(t *testing.T) {
	ident := Token(Sequence(IDStart(), KleeneStar(IDCont())))
	p := Difference(ident, KeywordList(ident, "if", "else"))
	tests := []struct {
		input   string
		wantHit bool
		wantPos int
	}{
		{"x", true, 1},
		{"iffy", true, 4},
		{"if", false, 0},
		{"else", false, 0},
		{"1x", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, s := run(p, tt.input, nil)
			if m.Hit != tt.wantHit || s.Pos() != tt.wantPos {
				t.Errorf("got hit=%v pos=%d, want hit=%v pos=%d", m.Hit, s.Pos(), tt.wantHit, tt.wantPos)
			}
		})
	}
}

func TestDifferenceShorterRight(t *testing.T) {
	p := Difference(String("abc"), String("ab"))
	if m, s := run(p, "abc", nil); !m.Hit || s.Pos() != 3 {
		t.Errorf("got %+v pos=%d, want hit at 3", m, s.Pos())
	}
}

func TestExclusiveOrAndIntersection(t *testing.T) {
	tests := []struct {
		name    string
		parser  Parser
		input   string
		wantHit bool
		wantPos int
	}{
		{"xor left only", ExclusiveOr(Char('a'), Char('b')), "a", true, 1},
		{"xor right only", ExclusiveOr(Char('a'), Char('b')), "b", true, 1},
		{"xor both", ExclusiveOr(Letter(), Char('a')), "a", false, 0},
		{"xor neither", ExclusiveOr(Char('a'), Char('b')), "c", false, 0},
		{"intersection both", Intersection(Letter(), LowerLetter()), "q", true, 1},
		{"intersection one", Intersection(Letter(), LowerLetter()), "Q", false, 0},
		{"intersection lengths differ", Intersection(String("ab"), Char('a')), "ab", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := run(tt.parser, tt.input, nil)
			if m.Hit != tt.wantHit || s.Pos() != tt.wantPos {
				t.Errorf("got hit=%v pos=%d, want hit=%v pos=%d", m.Hit, s.Pos(), tt.wantHit, tt.wantPos)
			}
		})
	}
}

func TestList(t *testing.T) {
	var items []string
	item := Action("item", Positive(Digit()))
	item.SetAction(func(a *ActionArgs) { items = append(items, a.String()) })
	m, s := run(List(item, Char(',')), "1, 22 ,333,", blanks())
	if !m.Hit || s.Pos() != 10 {
		t.Fatalf("got %+v pos=%d, want hit at 10", m, s.Pos())
	}
	want := []string{"1", "22", "333"}
	if len(items) != len(want) {
		t.Fatalf("items = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestExpectationPanicsWithFailure(t *testing.T) {
	p := Sequence(Char('('), Expectation(Char(')')))
	var got any
	func() {
		defer func() { got = recover() }()
		run(p, "( x", blanks())
	}()
	ef, ok := got.(*ExpectationFailure)
	if !ok {
		t.Fatalf("recovered %v, want *ExpectationFailure", got)
	}
	if ef.Info != "')'" {
		t.Errorf("info = %q, want %q", ef.Info, "')'")
	}
	if ef.Span.Start != 2 {
		t.Errorf("span start = %d, want 2", ef.Span.Start)
	}
	var err error = ef
	var target *ExpectationFailure
	if !errors.As(err, &target) {
		t.Errorf("errors.As failed")
	}
}

func TestExpectationHitDoesNotPanic(t *testing.T) {
	m, s := run(Expectation(Char('a')), "a", nil)
	if !m.Hit || s.Pos() != 1 {
		t.Errorf("got %+v pos=%d", m, s.Pos())
	}
}

func TestActionVetoRewinds(t *testing.T) {
	failed := false
	p := Action("A0", Positive(Digit()))
	p.SetAction(func(a *ActionArgs) { a.Pass = len(a.Text) < 3 })
	p.SetFailureAction(func(*ParsingData) { failed = true })

	m, s := run(p, "1234", nil)
	if m.Hit || s.Pos() != 0 {
		t.Errorf("got %+v pos=%d, want miss at 0", m, s.Pos())
	}
	if failed {
		t.Errorf("failure action ran on veto")
	}
	if m, _ := run(p, "12", nil); !m.Hit {
		t.Errorf("short number was vetoed")
	}
}

func TestActionArgs(t *testing.T) {
	var got ActionArgs
	p := Sequence(Char('x'), Action("A0", String("abc")))
	p.parsers[1].(*ActionParser).SetAction(func(a *ActionArgs) { got = *a })
	run(p, "x abc", blanks())
	if string(got.Text) != "abc" {
		t.Errorf("text = %q, want abc", string(got.Text))
	}
	if got.Span.Start != 2 || got.Span.End != 5 {
		t.Errorf("span = %v, want 0:2-5", got.Span)
	}
	if got.FileName != "test" {
		t.Errorf("file name = %q", got.FileName)
	}
}
