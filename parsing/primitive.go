package parsing

import (
	"fmt"
	"strconv"
	"unicode"
)

type CharParser struct {
	parserBase
	c rune
}

func Char(c rune) *CharParser {
	return &CharParser{parserBase: parserBase{name: "char", info: strconv.QuoteRune(c)}, c: c}
}

func (p *CharParser) Char() rune { return p.c }

func (p *CharParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	if r, ok := s.Peek(); ok && r == p.c {
		s.Advance(1)
		return Hit(1)
	}
	return Nothing()
}

type StringParser struct {
	parserBase
	s []rune
}

func String(str string) *StringParser {
	return &StringParser{parserBase: parserBase{name: "string", info: strconv.Quote(str)}, s: []rune(str)}
}

func (p *StringParser) Text() string { return string(p.s) }

func (p *StringParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	rest := s.Remaining()
	if len(rest) < len(p.s) {
		return Nothing()
	}
	for i, r := range p.s {
		if rest[i] != r {
			return Nothing()
		}
	}
	s.Advance(len(p.s))
	return Hit(len(p.s))
}

type runeRange struct {
	lo, hi rune
}

// CharSetParser matches one rune in (or, when inverse, not in) a set. The set
// is written as a list of runes and lo-hi ranges; a backslash makes the next
// rune literal, so `\-` is a dash.
type CharSetParser struct {
	parserBase
	set     string
	inverse bool
	ranges  []runeRange
}

func CharSet(set string) *CharSetParser {
	return newCharSet(set, false)
}

func NegatedCharSet(set string) *CharSetParser {
	return newCharSet(set, true)
}

func newCharSet(set string, inverse bool) *CharSetParser {
	info := "[" + set + "]"
	if inverse {
		info = "[^" + set + "]"
	}
	return &CharSetParser{
		parserBase: parserBase{name: "charset", info: info},
		set:        set,
		inverse:    inverse,
		ranges:     parseCharSet([]rune(set)),
	}
}

func parseCharSet(set []rune) []runeRange {
	var ranges []runeRange
	for i := 0; i < len(set); i++ {
		lo := set[i]
		if lo == '\\' && i+1 < len(set) {
			i++
			lo = set[i]
		}
		hi := lo
		if i+2 < len(set) && set[i+1] == '-' {
			i += 2
			hi = set[i]
			if hi == '\\' && i+1 < len(set) {
				i++
				hi = set[i]
			}
		}
		ranges = append(ranges, runeRange{lo, hi})
	}
	return ranges
}

func (p *CharSetParser) Set() string { return p.set }
func (p *CharSetParser) Inverse() bool { return p.inverse }

func (p *CharSetParser) contains(r rune) bool {
	for _, rr := range p.ranges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

func (p *CharSetParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	r, ok := s.Peek()
	if !ok || p.contains(r) == p.inverse {
		return Nothing()
	}
	s.Advance(1)
	return Hit(1)
}

// RangeParser matches one rune in the closed interval [lo, hi].
type RangeParser struct {
	parserBase
	lo, hi rune
}

func Range(lo, hi rune) *RangeParser {
	return &RangeParser{
		parserBase: parserBase{name: "range", info: fmt.Sprintf("range(%d,%d)", lo, hi)},
		lo:         lo,
		hi:         hi,
	}
}

func (p *RangeParser) Bounds() (rune, rune) { return p.lo, p.hi }

func (p *RangeParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	if r, ok := s.Peek(); ok && r >= p.lo && r <= p.hi {
		s.Advance(1)
		return Hit(1)
	}
	return Nothing()
}

// CodePoint matches exactly one code point, written by number.
func CodePoint(c rune) *RangeParser {
	p := Range(c, c)
	p.name = "codepoint"
	p.info = fmt.Sprintf("U+%04X", c)
	return p
}

// ClassParser matches one rune accepted by a classification predicate.
// AnyChar, Digit, Letter and the other Unicode category parsers are
// ClassParsers.
type ClassParser struct {
	parserBase
	accept func(rune) bool
}

func Class(name string, accept func(rune) bool) *ClassParser {
	return &ClassParser{parserBase: parserBase{name: name, info: name}, accept: accept}
}

func (p *ClassParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	if r, ok := s.Peek(); ok && p.accept(r) {
		s.Advance(1)
		return Hit(1)
	}
	return Nothing()
}

func AnyChar() *ClassParser {
	return Class("anychar", func(rune) bool { return true })
}

func Digit() *ClassParser {
	return Class("digit", func(r rune) bool { return r >= '0' && r <= '9' })
}

func HexDigit() *ClassParser {
	return Class("hexdigit", func(r rune) bool {
		return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
	})
}

func Space() *ClassParser {
	return Class("space", unicode.IsSpace)
}

type EmptyParser struct {
	parserBase
}

func Empty() *EmptyParser {
	return &EmptyParser{parserBase{name: "empty", info: "empty"}}
}

func (p *EmptyParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	return EmptyMatch()
}
