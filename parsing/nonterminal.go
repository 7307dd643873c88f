package parsing

// PreCall pushes the inherited attributes of a rule call onto the stack.
type PreCall func(stack *ValueStack, data *ParsingData)

// PostCall receives the outcome of a rule call. When matched is true the
// synthesized value is on top of the stack and the hook must pop it.
type PostCall func(stack *ValueStack, data *ParsingData, matched bool)

// NonterminalParser calls a rule by name. The name is resolved to a *Rule
// when the owning grammar is linked.
type NonterminalParser struct {
	parserBase
	ruleName string
	numArgs  int
	rule     *Rule
	preCall  PreCall
	postCall PostCall
}

// Nonterminal creates a call of ruleName passing numArgs inherited values.
// The instance name identifies the call site for hook binding.
func Nonterminal(instanceName, ruleName string, numArgs int) *NonterminalParser {
	return &NonterminalParser{
		parserBase: parserBase{name: instanceName, info: ruleName},
		ruleName:   ruleName,
		numArgs:    numArgs,
	}
}

// Call is Nonterminal with the instance name equal to the rule name.
func Call(ruleName string) *NonterminalParser {
	return Nonterminal(ruleName, ruleName, 0)
}

func (p *NonterminalParser) RuleName() string { return p.ruleName }
func (p *NonterminalParser) NumArgs() int { return p.numArgs }
func (p *NonterminalParser) Rule() *Rule { return p.rule }
func (p *NonterminalParser) SetRule(r *Rule) { p.rule = r }
func (p *NonterminalParser) SetPreCall(fn PreCall) { p.preCall = fn }
func (p *NonterminalParser) SetPostCall(fn PostCall) { p.postCall = fn }

func (p *NonterminalParser) Parse(s *Scanner, stack *ValueStack, data *ParsingData) Match {
	if p.preCall != nil {
		p.preCall(stack, data)
	}
	m := p.rule.Parse(s, stack, data)
	switch {
	case p.postCall != nil:
		p.postCall(stack, data, m.Hit)
	case m.Hit && p.rule.HasValue():
		stack.Pop()
	}
	return m
}
