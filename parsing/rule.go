package parsing

import (
	"sort"
	"strings"
)

// Attribute is a declared inherited attribute or local variable of a rule.
type Attribute struct {
	Type string
	Name string
}

func (a Attribute) String() string { return a.Type + " " + a.Name }

// Rule is a named parser with an attribute signature. Calling a rule pushes
// a context frame keyed by the rule id, runs the definition and pops the
// frame again on every exit path.
type Rule struct {
	name       string
	id         int
	info       string
	grammar    *Grammar
	definition Parser
	valueType  string
	hasValue   bool
	inherited  []Attribute
	locals     []Attribute

	actions      map[string]*ActionParser
	nonterminals map[string][]*NonterminalParser

	enter func(stack *ValueStack, data *ParsingData)
	leave func(stack *ValueStack, data *ParsingData, matched bool)
	link  func() error
}

// NewRule creates a rule without attributes or context frame.
func NewRule(name string, definition Parser) *Rule {
	r := &Rule{name: name, info: name, id: -1}
	r.SetDefinition(definition)
	return r
}

func (r *Rule) Name() string { return r.name }
func (r *Rule) ID() int { return r.id }
func (r *Rule) Info() string { return r.info }
func (r *Rule) SetInfo(info string) { r.info = info }
func (r *Rule) Grammar() *Grammar { return r.grammar }
func (r *Rule) Definition() Parser { return r.definition }
func (r *Rule) ValueType() string { return r.valueType }
func (r *Rule) Inherited() []Attribute { return r.inherited }
func (r *Rule) Locals() []Attribute { return r.locals }

// HasValue reports whether a successful call leaves a synthesized value on
// the stack.
func (r *Rule) HasValue() bool { return r.hasValue }

func (r *Rule) FullName() string {
	if r.grammar == nil {
		return r.name
	}
	return r.grammar.FullName() + "." + r.name
}

// SetDefinition installs the rule body and indexes its named actions and
// nonterminal call sites.
func (r *Rule) SetDefinition(definition Parser) {
	r.definition = definition
	r.actions = make(map[string]*ActionParser)
	r.nonterminals = make(map[string][]*NonterminalParser)
	Walk(definition, func(p Parser) bool {
		switch p := p.(type) {
		case *ActionParser:
			r.actions[p.Name()] = p
		case *NonterminalParser:
			r.nonterminals[p.Name()] = append(r.nonterminals[p.Name()], p)
		}
		return true
	})
}

// Action returns the action parser with the given name, or nil.
func (r *Rule) Action(name string) *ActionParser { return r.actions[name] }

// Nonterminals returns the call sites with the given instance name.
func (r *Rule) Nonterminals(name string) []*NonterminalParser { return r.nonterminals[name] }

// CallSites lists every nonterminal in the definition, ordered by instance
// name.
func (r *Rule) CallSites() []*NonterminalParser {
	names := make([]string, 0, len(r.nonterminals))
	for name := range r.nonterminals {
		names = append(names, name)
	}
	sort.Strings(names)
	var sites []*NonterminalParser
	for _, name := range names {
		sites = append(sites, r.nonterminals[name]...)
	}
	return sites
}

func (r *Rule) Parse(s *Scanner, stack *ValueStack, data *ParsingData) (m Match) {
	xlog := s.Log()
	if xlog != nil {
		xlog.BeginRule(r.info)
		xlog.Try(s.Remaining())
	}
	start := s.Pos()
	if r.enter != nil {
		r.enter(stack, data)
	}
	defer func() {
		if r.leave != nil {
			r.leave(stack, data, m.Hit)
		}
		if xlog != nil {
			if m.Hit {
				xlog.Success(s.Input()[start:s.Pos()])
			} else {
				xlog.Fail()
			}
			xlog.EndRule(r.info)
		}
	}()
	return r.definition.Parse(s, stack, data)
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.name)
	if len(r.inherited) > 0 {
		b.WriteString("(")
		for i, a := range r.inherited {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteString(")")
	}
	if r.valueType != "" {
		b.WriteString(" : " + r.valueType)
	}
	return b.String()
}

// RuleDef declares a rule whose calls carry a context frame of type C.
// Hooks are bound by name to the Action and Nonterminal parsers of the
// definition when the grammar is linked.
type RuleDef[C any] struct {
	Name      string
	Info      string
	ValueType string
	Inherited []Attribute
	Locals    []Attribute

	// Enter pops the inherited attributes into the fresh frame.
	Enter func(c *C, stack *ValueStack)
	// Leave pushes the synthesized value. It runs only on a match.
	Leave func(c *C, stack *ValueStack)

	Actions        map[string]func(c *C, a *ActionArgs)
	FailureActions map[string]func(c *C)
	PreCalls       map[string]func(c *C, stack *ValueStack)
	PostCalls      map[string]func(c *C, stack *ValueStack, matched bool)
}

// Define adds a typed rule to g.
func Define[C any](g *Grammar, def RuleDef[C], definition Parser) *Rule {
	r := NewRule(def.Name, definition)
	if def.Info != "" {
		r.info = def.Info
	}
	r.valueType = def.ValueType
	r.hasValue = def.Leave != nil
	r.inherited = def.Inherited
	r.locals = def.Locals
	r.enter = func(stack *ValueStack, data *ParsingData) {
		c := new(C)
		data.PushContext(r.id, c)
		if def.Enter != nil {
			def.Enter(c, stack)
		}
	}
	r.leave = func(stack *ValueStack, data *ParsingData, matched bool) {
		if matched && def.Leave != nil {
			def.Leave(Frame[C](data, r.id), stack)
		}
		data.PopContext(r.id)
	}
	r.link = func() error { return bindHooks(r, def) }
	g.AddRule(r)
	return r
}

func bindHooks[C any](r *Rule, def RuleDef[C]) error {
	for name, fn := range def.Actions {
		a := r.Action(name)
		if a == nil {
			return configError("rule '%s': no action '%s'", r.FullName(), name)
		}
		a.SetAction(func(args *ActionArgs) { fn(Frame[C](args.Data, r.id), args) })
	}
	for name, fn := range def.FailureActions {
		a := r.Action(name)
		if a == nil {
			return configError("rule '%s': no action '%s'", r.FullName(), name)
		}
		a.SetFailureAction(func(data *ParsingData) { fn(Frame[C](data, r.id)) })
	}
	for name, fn := range def.PreCalls {
		sites := r.Nonterminals(name)
		if len(sites) == 0 {
			return configError("rule '%s': no nonterminal '%s'", r.FullName(), name)
		}
		for _, nt := range sites {
			nt.SetPreCall(func(stack *ValueStack, data *ParsingData) { fn(Frame[C](data, r.id), stack) })
		}
	}
	for name, fn := range def.PostCalls {
		sites := r.Nonterminals(name)
		if len(sites) == 0 {
			return configError("rule '%s': no nonterminal '%s'", r.FullName(), name)
		}
		for _, nt := range sites {
			nt.SetPostCall(func(stack *ValueStack, data *ParsingData, matched bool) {
				fn(Frame[C](data, r.id), stack, matched)
			})
		}
	}
	return nil
}

// Capture returns a post-call hook that pops the synthesized value of a
// successful call into the caller's frame.
func Capture[C any](set func(c *C, v Value)) func(c *C, stack *ValueStack, matched bool) {
	return func(c *C, stack *ValueStack, matched bool) {
		if matched {
			set(c, stack.Pop())
		}
	}
}

// Pass returns a pre-call hook that pushes inherited values taken from the
// caller's frame, in declaration order.
func Pass[C any](get func(c *C) []Value) func(c *C, stack *ValueStack) {
	return func(c *C, stack *ValueStack) {
		for _, v := range get(c) {
			stack.Push(v)
		}
	}
}
