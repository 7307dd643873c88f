// Package parsing implements a PEG parsing engine whose grammars are built
// from parser combinators. Named rules carry inherited and synthesized
// attributes that cross rule boundaries through a ValueStack, and per-call
// state lives in context frames keyed by rule id.
package parsing

import "fmt"

// Span is a region of a source file expressed as rune offsets.
type Span struct {
	FileIndex int
	Start     int
	End       int
}

func (s Span) IsValid() bool {
	return s.FileIndex >= 0 && s.Start <= s.End
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Extend moves the end of the span forward when a production finishes later
// than it started.
func (s *Span) Extend(end int) {
	if end > s.End {
		s.End = end
	}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.FileIndex, s.Start, s.End)
}

// Match is the result of running a parser: whether it hit and how many runes
// it consumed.
type Match struct {
	Hit    bool
	Length int
}

func Hit(length int) Match {
	return Match{Hit: true, Length: length}
}

func Nothing() Match {
	return Match{}
}

func EmptyMatch() Match {
	return Match{Hit: true}
}

func (m *Match) Concatenate(that Match) {
	m.Length += that.Length
}
