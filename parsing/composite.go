package parsing

// SequenceParser matches its parsers one after another, running the skip
// rule between them. It is atomic: when any element misses, the cursor goes
// back to where the sequence started.
type SequenceParser struct {
	parserBase
	parsers []Parser
}

func Sequence(parsers ...Parser) *SequenceParser {
	return &SequenceParser{parserBase: parserBase{name: "sequence", info: "sequence"}, parsers: parsers}
}

func (p *SequenceParser) Children() []Parser { return p.parsers }

func (p *SequenceParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	for i, child := range p.parsers {
		beforeSkip := s.Pos()
		if i > 0 {
			s.Skip()
		}
		afterSkip := s.Pos()
		m := child.Parse(s, stack, data)
		if !m.Hit {
			s.SetPos(start)
			return Nothing()
		}
		if s.Pos() == afterSkip {
			// keep trailing blanks out of the match when nothing followed them
			s.SetPos(beforeSkip)
		}
	}
	return Hit(s.Pos() - start)
}

// AlternativeParser is ordered choice: the first alternative that hits wins
// and later alternatives are never tried.
type AlternativeParser struct {
	parserBase
	parsers []Parser
}

func Alternative(parsers ...Parser) *AlternativeParser {
	return &AlternativeParser{parserBase: parserBase{name: "alternative", info: "alternative"}, parsers: parsers}
}

func (p *AlternativeParser) Children() []Parser { return p.parsers }

func (p *AlternativeParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	for _, child := range p.parsers {
		if m := child.Parse(s, stack, data); m.Hit {
			return m
		}
		s.SetPos(start)
	}
	return Nothing()
}

type unaryParser struct {
	parserBase
	child Parser
}

func (p *unaryParser) Child() Parser { return p.child }
func (p *unaryParser) Children() []Parser { return []Parser{p.child} }

type OptionalParser struct{ unaryParser }

func Optional(child Parser) *OptionalParser {
	return &OptionalParser{unaryParser{parserBase{name: "optional", info: child.Info()}, child}}
}

func (p *OptionalParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	if m := p.child.Parse(s, stack, data); m.Hit {
		return m
	}
	s.SetPos(start)
	return EmptyMatch()
}

type KleeneStarParser struct{ unaryParser }

func KleeneStar(child Parser) *KleeneStarParser {
	return &KleeneStarParser{unaryParser{parserBase{name: "kleene", info: child.Info()}, child}}
}

func (p *KleeneStarParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	repeat(s, stack, data, p.child, false)
	return Hit(s.Pos() - start)
}

// repeat runs child until it misses or stops advancing. Each failed
// iteration rewinds only itself.
func repeat(s *Scanner, stack *ValueStack, data *ParsingData, child Parser, skipFirst bool) {
	for first := true; ; first = false {
		save := s.Pos()
		if !first || skipFirst {
			s.Skip()
		}
		afterSkip := s.Pos()
		m := child.Parse(s, stack, data)
		if !m.Hit || s.Pos() == afterSkip {
			s.SetPos(save)
			return
		}
	}
}

type PositiveParser struct{ unaryParser }

func Positive(child Parser) *PositiveParser {
	return &PositiveParser{unaryParser{parserBase{name: "positive", info: child.Info()}, child}}
}

func (p *PositiveParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	if m := p.child.Parse(s, stack, data); !m.Hit {
		s.SetPos(start)
		return Nothing()
	}
	if s.Pos() > start {
		repeat(s, stack, data, p.child, true)
	}
	return Hit(s.Pos() - start)
}

type binaryParser struct {
	parserBase
	left  Parser
	right Parser
}

func (p *binaryParser) Left() Parser { return p.left }
func (p *binaryParser) Right() Parser { return p.right }
func (p *binaryParser) Children() []Parser { return []Parser{p.left, p.right} }

// DifferenceParser matches left unless right matches at the same place at
// least as far, so Difference(identifier, keyword) accepts "iffy" but not
// "if".
type DifferenceParser struct{ binaryParser }

func Difference(left, right Parser) *DifferenceParser {
	return &DifferenceParser{binaryParser{parserBase{name: "difference", info: left.Info()}, left, right}}
}

func (p *DifferenceParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	lm := p.left.Parse(s, stack, data)
	if !lm.Hit {
		s.SetPos(start)
		return Nothing()
	}
	end := s.Pos()
	s.SetPos(start)
	depth := stack.Len()
	rm := p.right.Parse(s, stack, data)
	stack.Truncate(depth)
	rightEnd := s.Pos()
	if !rm.Hit || rightEnd-start < end-start {
		s.SetPos(end)
		return lm
	}
	s.SetPos(start)
	return Nothing()
}

// ExclusiveOrParser matches when exactly one of left and right matches.
type ExclusiveOrParser struct{ binaryParser }

func ExclusiveOr(left, right Parser) *ExclusiveOrParser {
	return &ExclusiveOrParser{binaryParser{parserBase{name: "xor", info: "xor"}, left, right}}
}

func (p *ExclusiveOrParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	lm := p.left.Parse(s, stack, data)
	leftEnd := s.Pos()
	s.SetPos(start)
	rm := p.right.Parse(s, stack, data)
	switch {
	case lm.Hit && !rm.Hit:
		s.SetPos(leftEnd)
		return lm
	case rm.Hit && !lm.Hit:
		return rm
	}
	s.SetPos(start)
	return Nothing()
}

// IntersectionParser matches when left and right both match the same text.
type IntersectionParser struct{ binaryParser }

func Intersection(left, right Parser) *IntersectionParser {
	return &IntersectionParser{binaryParser{parserBase{name: "intersection", info: "intersection"}, left, right}}
}

func (p *IntersectionParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	lm := p.left.Parse(s, stack, data)
	if lm.Hit {
		end := s.Pos()
		s.SetPos(start)
		rm := p.right.Parse(s, stack, data)
		if rm.Hit && s.Pos() == end {
			return lm
		}
	}
	s.SetPos(start)
	return Nothing()
}

// ListParser matches item (sep item)*.
type ListParser struct {
	binaryParser
	impl Parser
}

func List(item, sep Parser) *ListParser {
	return &ListParser{
		binaryParser: binaryParser{parserBase{name: "list", info: item.Info()}, item, sep},
		impl:         Sequence(item, KleeneStar(Sequence(sep, item))),
	}
}

func (p *ListParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	return p.impl.Parse(s, stack, data)
}

// TokenParser matches its child with the skip rule switched off.
type TokenParser struct{ unaryParser }

func Token(child Parser) *TokenParser {
	return &TokenParser{unaryParser{parserBase{name: "token", info: child.Info()}, child}}
}

func (p *TokenParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	s.BeginToken()
	m := p.child.Parse(s, stack, data)
	s.EndToken()
	return m
}

// ExpectationParser turns a miss of its child into an *ExpectationFailure
// that aborts the parse.
type ExpectationParser struct{ unaryParser }

func Expectation(child Parser) *ExpectationParser {
	return &ExpectationParser{unaryParser{parserBase{name: "expectation", info: child.Info()}, child}}
}

func (p *ExpectationParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	m := p.parseChild(s, stack, data, start)
	if !m.Hit {
		s.SetPos(start)
		panic(newExpectationFailure(p.child.Info(), s.FileName(), s.Span(), s.Input()))
	}
	return m
}

// parseChild runs the child; a failure raised by a nested expectation at the
// position where this one started gets this expectation's info prepended.
func (p *ExpectationParser) parseChild(s *Scanner, stack *ValueStack, data *ParsingData, start int) Match {
	defer func() {
		if r := recover(); r != nil {
			if ef, ok := r.(*ExpectationFailure); ok && ef.Span.Start == start {
				ef.CombineInfo(p.child.Info())
			}
			panic(r)
		}
	}()
	return p.child.Parse(s, stack, data)
}
