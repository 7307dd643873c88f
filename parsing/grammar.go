package parsing

import (
	"io"
	"strings"
)

// Definition describes how to build a grammar. Create calls References to
// obtain the grammars it depends on, then CreateRules to declare its rules
// and rule links, then links the result.
type Definition interface {
	// Name is the qualified grammar name, such as "cmparse.lang.StatementGrammar".
	Name() string
	References(g *Grammar) error
	CreateRules(g *Grammar)
}

// Create returns the grammar of def registered in domain, building it first
// when the domain does not have it yet. A nil domain creates a private one.
func Create(domain *ParsingDomain, def Definition) (*Grammar, error) {
	if domain == nil {
		domain = NewParsingDomain()
	}
	g, created := domain.register(newGrammar(def.Name(), domain))
	if !created {
		return g, nil
	}
	if err := build(g, def); err != nil {
		domain.unregister(g)
		return nil, err
	}
	return g, nil
}

func build(g *Grammar, def Definition) error {
	if err := def.References(g); err != nil {
		return err
	}
	def.CreateRules(g)
	return g.Link()
}

// RuleLink makes a rule of another grammar callable under a local alias.
type RuleLink struct {
	Alias  string
	Target string
	rule   *Rule
}

func (l *RuleLink) Rule() *Rule { return l.rule }

// Grammar owns a set of rules, a start rule and an optional skip rule. It is
// read-only once linked and may be shared between concurrent parses.
type Grammar struct {
	name      string
	namespace string
	domain    *ParsingDomain

	rules      []*Rule
	ruleMap    map[string]*Rule
	links      []*RuleLink
	linkMap    map[string]*RuleLink
	references []*Grammar

	startRuleName string
	skipRuleName  string
	start         *Rule
	skip          *Rule
	linked        bool
}

func newGrammar(fullName string, domain *ParsingDomain) *Grammar {
	g := &Grammar{
		name:    fullName,
		domain:  domain,
		ruleMap: make(map[string]*Rule),
		linkMap: make(map[string]*RuleLink),
	}
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		g.namespace = fullName[:i]
		g.name = fullName[i+1:]
	}
	return g
}

func (g *Grammar) Name() string { return g.name }
func (g *Grammar) Namespace() string { return g.namespace }
func (g *Grammar) Domain() *ParsingDomain { return g.domain }
func (g *Grammar) Rules() []*Rule { return g.rules }
func (g *Grammar) RuleLinks() []*RuleLink { return g.links }
func (g *Grammar) References() []*Grammar { return g.references }
func (g *Grammar) StartRule() *Rule { return g.start }
func (g *Grammar) SkipRule() *Rule { return g.skip }

func (g *Grammar) FullName() string {
	if g.namespace == "" {
		return g.name
	}
	return g.namespace + "." + g.name
}

// Rule returns the rule declared in g under name, or nil.
func (g *Grammar) Rule(name string) *Rule { return g.ruleMap[name] }

// AddRule adds r to g and assigns its id. The first rule added is the start
// rule unless SetStartRule names another.
func (g *Grammar) AddRule(r *Rule) *Rule {
	r.grammar = g
	r.id = g.domain.NextRuleID()
	g.rules = append(g.rules, r)
	g.ruleMap[r.name] = r
	return r
}

// AddRuleLink lets rules of g call target, a rule of a referenced grammar
// written as "Grammar.rule" or "namespace.Grammar.rule", as alias.
func (g *Grammar) AddRuleLink(alias, target string) {
	l := &RuleLink{Alias: alias, Target: target}
	g.links = append(g.links, l)
	g.linkMap[alias] = l
}

func (g *Grammar) SetStartRule(name string) { g.startRuleName = name }
func (g *Grammar) SetSkipRule(name string) { g.skipRuleName = name }

// Reference creates or looks up the grammar of def in g's domain and records
// it as a dependency of g.
func (g *Grammar) Reference(def Definition) (*Grammar, error) {
	ref, err := Create(g.domain, def)
	if err != nil {
		return nil, err
	}
	for _, r := range g.references {
		if r == ref {
			return ref, nil
		}
	}
	g.references = append(g.references, ref)
	return ref, nil
}

const maxLinkDepth = 32

// resolve finds the rule a name refers to from inside g: a local rule, a
// rule link, or a qualified Grammar.rule reference.
func (g *Grammar) resolve(name string, depth int) (*Rule, error) {
	if depth > maxLinkDepth {
		return nil, configError("rule link cycle resolving '%s' in grammar '%s'", name, g.FullName())
	}
	if r, ok := g.ruleMap[name]; ok {
		return r, nil
	}
	if l, ok := g.linkMap[name]; ok {
		if l.rule != nil {
			return l.rule, nil
		}
		return g.resolve(l.Target, depth+1)
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return nil, configError("rule '%s' not found in grammar '%s'", name, g.FullName())
	}
	grammarName, ruleName := name[:i], name[i+1:]
	target := g.grammar(grammarName)
	if target == nil {
		return nil, configError("grammar '%s' referenced from grammar '%s' not found", grammarName, g.FullName())
	}
	return target.resolve(ruleName, depth+1)
}

func (g *Grammar) grammar(name string) *Grammar {
	if name == g.name || name == g.FullName() {
		return g
	}
	for _, ref := range g.references {
		if ref.FullName() == name || ref.Name() == name {
			return ref
		}
	}
	if g.namespace != "" {
		if ref := g.domain.lookup(g.namespace + "." + name); ref != nil {
			return ref
		}
	}
	return g.domain.lookup(name)
}

// Link resolves rule links and nonterminal calls, binds the action and call
// hooks of typed rules and settles the start and skip rules.
func (g *Grammar) Link() error {
	if g.linked {
		return nil
	}
	for _, l := range g.links {
		r, err := g.resolve(l.Target, 0)
		if err != nil {
			return err
		}
		l.rule = r
	}
	for _, r := range g.rules {
		for _, nt := range r.CallSites() {
			target, err := g.resolve(nt.RuleName(), 0)
			if err != nil {
				return err
			}
			if nt.NumArgs() != len(target.Inherited()) {
				return configError("rule '%s' takes %d inherited attributes, called with %d in rule '%s'",
					target.FullName(), len(target.Inherited()), nt.NumArgs(), r.FullName())
			}
			nt.SetRule(target)
		}
		if r.link != nil {
			if err := r.link(); err != nil {
				return err
			}
		}
		for _, nt := range r.CallSites() {
			if nt.NumArgs() > 0 && nt.preCall == nil {
				return configError("call of '%s' in rule '%s' has no pre-call hook", nt.RuleName(), r.FullName())
			}
		}
	}
	switch {
	case g.startRuleName != "":
		r, err := g.resolve(g.startRuleName, 0)
		if err != nil {
			return err
		}
		g.start = r
	case len(g.rules) > 0:
		g.start = g.rules[0]
	}
	if g.skipRuleName != "" {
		r, err := g.resolve(g.skipRuleName, 0)
		if err != nil {
			return err
		}
		g.skip = r
	}
	g.linked = true
	log.Debugf("linked grammar %s: %d rules, %d links", g.FullName(), len(g.rules), len(g.links))
	return nil
}

// Trace sends an XML trace of every rule call of one parse to Out. Text
// longer than MaxLineLength runes is cut; zero means 80.
type Trace struct {
	Out           io.Writer
	MaxLineLength int
}

// Parse matches the whole input against the start rule. The args are the
// start rule's inherited attributes in declaration order. The result is the
// start rule's synthesized value, or the zero Value for rules without one.
func (g *Grammar) Parse(input []rune, fileIndex int, fileName string, args ...Value) (Value, error) {
	return g.ParseTraced(nil, input, fileIndex, fileName, args...)
}

// ParseTraced is Parse with a trace of the rule calls written to tr. A nil
// tr traces nothing.
func (g *Grammar) ParseTraced(tr *Trace, input []rune, fileIndex int, fileName string, args ...Value) (result Value, err error) {
	if !g.linked {
		if err := g.Link(); err != nil {
			return Value{}, err
		}
	}
	if g.start == nil {
		return Value{}, configError("grammar '%s' has no start rule", g.FullName())
	}
	if want := len(g.start.Inherited()); len(args) != want {
		return Value{}, configError("start rule '%s' takes %d inherited attributes, got %d", g.start.FullName(), want, len(args))
	}
	var skip Parser
	if g.skip != nil {
		skip = g.skip
	}
	stack := NewValueStack()
	data := NewParsingData(g.domain.NumRules())
	s := NewScanner(input, fileIndex, fileName, skip)
	s.attach(stack, data)
	if tr != nil && tr.Out != nil {
		xlog := NewXmlLog(tr.Out, tr.MaxLineLength)
		s.SetLog(xlog)
		defer func() {
			if err := xlog.Flush(); err != nil {
				log.Warningf("trace of %s: %s", fileName, err)
			}
		}()
	}
	for _, arg := range args {
		stack.Push(arg)
	}

	defer func() {
		if r := recover(); r != nil {
			ef, ok := r.(*ExpectationFailure)
			if !ok {
				panic(r)
			}
			result, err = Value{}, ef
		}
	}()

	s.Skip()
	m := g.start.Parse(s, stack, data)
	if m.Hit {
		s.Skip()
	}
	if !m.Hit || !s.AtEnd() {
		pos := max(s.Pos(), s.Farthest())
		return Value{}, newExpectationFailure(g.start.Info(), fileName, Span{FileIndex: fileIndex, Start: pos, End: pos}, input)
	}
	if g.start.HasValue() {
		return stack.Pop(), nil
	}
	return Value{}, nil
}

// ParseString is Parse for string input.
func (g *Grammar) ParseString(input, fileName string, args ...Value) (Value, error) {
	return g.Parse([]rune(input), 0, fileName, args...)
}

func (g *Grammar) String() string {
	var b strings.Builder
	b.WriteString("grammar " + g.FullName() + "\n")
	for _, l := range g.links {
		b.WriteString("  using " + l.Target)
		if !strings.HasSuffix(l.Target, "."+l.Alias) {
			b.WriteString(" as " + l.Alias)
		}
		b.WriteString("\n")
	}
	if g.skip != nil {
		b.WriteString("  skip " + g.skip.Name() + "\n")
	}
	for _, r := range g.rules {
		b.WriteString("  " + r.String() + " ::= " + Print(r.Definition()) + "\n")
	}
	return b.String()
}

// Def is a Definition assembled from functions.
type Def struct {
	QualifiedName string
	Refs          func(g *Grammar) error
	Rules         func(g *Grammar)
}

func (d Def) Name() string { return d.QualifiedName }

func (d Def) References(g *Grammar) error {
	if d.Refs == nil {
		return nil
	}
	return d.Refs(g)
}

func (d Def) CreateRules(g *Grammar) {
	if d.Rules != nil {
		d.Rules(g)
	}
}
