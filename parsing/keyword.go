package parsing

import (
	"sort"
	"strconv"
	"strings"
)

// KeywordParser matches a word that is not immediately continued by another
// identifier character, so "if" matches in "if(" but not in "iffy". A
// continuation parser replaces the default identifier-continuation check.
type KeywordParser struct {
	parserBase
	keyword      *StringParser
	continuation Parser
}

func Keyword(word string) *KeywordParser {
	return KeywordWith(word, nil)
}

func KeywordWith(word string, continuation Parser) *KeywordParser {
	return &KeywordParser{
		parserBase:   parserBase{name: "keyword", info: strconv.Quote(word)},
		keyword:      String(word),
		continuation: continuation,
	}
}

func (p *KeywordParser) Keyword() string { return p.keyword.Text() }

func (p *KeywordParser) Children() []Parser {
	if p.continuation == nil {
		return nil
	}
	return []Parser{p.continuation}
}

func (p *KeywordParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	m := p.keyword.Parse(s, stack, data)
	if !m.Hit {
		return m
	}
	if p.continuation == nil {
		if r, ok := s.Peek(); ok && IsIDCont(r) {
			s.SetPos(start)
			return Nothing()
		}
		return m
	}
	end := s.Pos()
	depth := stack.Len()
	s.BeginToken()
	cont := p.continuation.Parse(s, stack, data)
	s.EndToken()
	stack.Truncate(depth)
	if cont.Hit && s.Pos() > end {
		s.SetPos(start)
		return Nothing()
	}
	s.SetPos(end)
	return m
}

// KeywordListParser runs a selector (typically an identifier rule) and
// accepts its match only when the matched text is one of the keywords.
// A value synthesized by the selector is discarded.
type KeywordListParser struct {
	parserBase
	selector Parser
	keywords map[string]struct{}
}

func KeywordList(selector Parser, words ...string) *KeywordListParser {
	keywords := make(map[string]struct{}, len(words))
	for _, w := range words {
		keywords[w] = struct{}{}
	}
	return &KeywordListParser{
		parserBase: parserBase{name: "keyword_list", info: "keyword"},
		selector:   selector,
		keywords:   keywords,
	}
}

func (p *KeywordListParser) Keywords() []string {
	words := make([]string, 0, len(p.keywords))
	for w := range p.keywords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func (p *KeywordListParser) Children() []Parser { return []Parser{p.selector} }

func (p *KeywordListParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	depth := stack.Len()
	m := p.selector.Parse(s, stack, data)
	stack.Truncate(depth)
	if m.Hit {
		if _, ok := p.keywords[string(s.Input()[start:s.Pos()])]; ok {
			return m
		}
	}
	s.SetPos(start)
	return Nothing()
}

func (p *KeywordListParser) String() string {
	return "keyword_list(" + strings.Join(p.Keywords(), ", ") + ")"
}
