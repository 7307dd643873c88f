package parsing

import "testing"

func run(p Parser, input string, skip Parser) (Match, *Scanner) {
	s := NewScanner([]rune(input), 0, "test", skip)
	s.attach(NewValueStack(), NewParsingData(8))
	return p.Parse(s, s.stack, s.data), s
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name    string
		parser  Parser
		input   string
		wantHit bool
		wantLen int
	}{
		{"char hit", Char('a'), "abc", true, 1},
		{"char miss", Char('a'), "bc", false, 0},
		{"char at end", Char('a'), "", false, 0},
		{"string hit", String("abc"), "abcd", true, 3},
		{"string partial", String("abc"), "abx", false, 0},
		{"string short input", String("abc"), "ab", false, 0},
		{"charset range", CharSet("a-z"), "q", true, 1},
		{"charset list", CharSet("+-"), "-", true, 1},
		{"charset escape", CharSet(`\-x`), "-", true, 1},
		{"charset miss", CharSet("0-7"), "8", false, 0},
		{"negated charset", NegatedCharSet(`"\`), "x", true, 1},
		{"negated charset miss", NegatedCharSet(`"\`), `"`, false, 0},
		{"range", Range('0', '9'), "5", true, 1},
		{"codepoint", CodePoint(0x3bb), "λ", true, 1},
		{"anychar", AnyChar(), "\n", true, 1},
		{"digit", Digit(), "7", true, 1},
		{"digit miss", Digit(), "x", false, 0},
		{"hexdigit", HexDigit(), "F", true, 1},
		{"space", Space(), "\t", true, 1},
		{"letter unicode", Letter(), "ä", true, 1},
		{"upper letter miss", UpperLetter(), "a", false, 0},
		{"decimal number", DecimalNumber(), "٣", true, 1},
		{"punctuation", Punctuation(), "!", true, 1},
		{"idstart underscore", IDStart(), "_", true, 1},
		{"idcont digit", IDCont(), "1", true, 1},
		{"empty", Empty(), "abc", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := run(tt.parser, tt.input, nil)
			if m.Hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", m.Hit, tt.wantHit)
			}
			if m.Length != tt.wantLen {
				t.Errorf("length = %d, want %d", m.Length, tt.wantLen)
			}
			if s.Pos() != tt.wantLen {
				t.Errorf("pos = %d, want %d", s.Pos(), tt.wantLen)
			}
		})
	}
}

func TestKeyword(t *testing.T) {
	tests := []struct {
		input   string
		wantHit bool
	}{
		{"if", true},
		{"if(x)", true},
		{"if x", true},
		{"iffy", false},
		{"if_", false},
		{"if2", false},
		{"i", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, s := run(Keyword("if"), tt.input, nil)
			if m.Hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", m.Hit, tt.wantHit)
			}
			if !m.Hit && s.Pos() != 0 {
				t.Errorf("pos = %d after miss, want 0", s.Pos())
			}
		})
	}
}

func TestKeywordWithContinuation(t *testing.T) {
	kw := KeywordWith("end", Char('-'))
	if m, _ := run(kw, "end-", nil); m.Hit {
		t.Errorf("end- matched, want miss")
	}
	if m, _ := run(kw, "endx", nil); !m.Hit {
		t.Errorf("endx missed, want hit")
	}
}

func TestKeywordList(t *testing.T) {
	ident := Token(Sequence(IDStart(), KleeneStar(IDCont())))
	kw := KeywordList(ident, "if", "while", "return")
	tests := []struct {
		input   string
		wantHit bool
		wantLen int
	}{
		{"while(", true, 5},
		{"return x", true, 6},
		{"whiles", false, 0},
		{"foo", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, s := run(kw, tt.input, nil)
			if m.Hit != tt.wantHit || s.Pos() != tt.wantLen {
				t.Errorf("got hit=%v pos=%d, want hit=%v pos=%d", m.Hit, s.Pos(), tt.wantHit, tt.wantLen)
			}
		})
	}
}
