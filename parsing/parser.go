package parsing

// Parser is implemented by every combinator. Parse runs the parser at the
// scanner's cursor; on a miss the cursor is left where it was.
type Parser interface {
	Name() string
	Info() string
	Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match
}

// composite is implemented by parsers that own child parsers.
type composite interface {
	Children() []Parser
}

type parserBase struct {
	name string
	info string
}

func (p *parserBase) Name() string { return p.name }
func (p *parserBase) Info() string { return p.info }

// Walk visits p and its descendants depth first. Rules are visited but not
// descended into, since a rule is reached by reference from its callers.
// Returning false from fn skips the children of the visited parser.
func Walk(p Parser, fn func(Parser) bool) {
	if p == nil || !fn(p) {
		return
	}
	if _, ok := p.(*Rule); ok {
		return
	}
	if c, ok := p.(composite); ok {
		for _, child := range c.Children() {
			Walk(child, fn)
		}
	}
}
