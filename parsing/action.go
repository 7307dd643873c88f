package parsing

// ActionArgs is what a semantic action sees of the match it runs on.
type ActionArgs struct {
	Text     []rune
	Span     Span
	FileName string
	Data     *ParsingData
	// Pass may be cleared to reject the match.
	Pass bool
}

func (a *ActionArgs) String() string { return string(a.Text) }

type ParsingAction func(a *ActionArgs)

// FailureAction undoes side effects of earlier actions when the wrapped
// parser does not match.
type FailureAction func(data *ParsingData)

// ActionParser runs a callback when its child matches and an optional
// failure callback when it does not. The failure callback also runs when an
// *ExpectationFailure unwinds through the child. A match rejected by the
// action itself does not run it.
type ActionParser struct {
	unaryParser
	action        ParsingAction
	failureAction FailureAction
}

func Action(name string, child Parser) *ActionParser {
	return &ActionParser{unaryParser: unaryParser{parserBase{name: name, info: child.Info()}, child}}
}

func (p *ActionParser) SetAction(fn ParsingAction) { p.action = fn }
func (p *ActionParser) SetFailureAction(fn FailureAction) { p.failureAction = fn }

func (p *ActionParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	start := s.Pos()
	m := p.parseChild(s, stack, data)
	if !m.Hit {
		if p.failureAction != nil {
			p.failureAction(data)
		}
		return m
	}
	if p.action == nil {
		return m
	}
	args := &ActionArgs{
		Text:     s.Input()[start:s.Pos()],
		Span:     s.SpanFrom(start),
		FileName: s.FileName(),
		Data:     data,
		Pass:     true,
	}
	p.action(args)
	if !args.Pass {
		s.SetPos(start)
		return Nothing()
	}
	return m
}

func (p *ActionParser) parseChild(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	if p.failureAction == nil {
		return p.child.Parse(s, stack, data)
	}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*ExpectationFailure); ok {
				p.failureAction(data)
			}
			panic(r)
		}
	}()
	return p.child.Parse(s, stack, data)
}
