package ebnfparse

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/cmparse/parsing"
)

var log = commonlog.GetLogger("cmparse.ebnfparse")

// DefaultName is the qualified name given to compiled grammars when Options
// do not name one.
const DefaultName = "cmparse.ebnf.Grammar"

// Options control how an EBNF grammar is compiled.
type Options struct {
	// Name is the qualified grammar name in the parsing domain. A domain
	// holds one grammar per name.
	Name string
	// Start is the start production. Empty means the first production of
	// the grammar source.
	Start string
	// Skip names a production that is run between the elements of syntactic
	// productions, typically blanks and comments.
	Skip string
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	return grammar, nil
}

// Load reads, verifies and compiles the EBNF grammar in filename.
func Load(domain *parsing.ParsingDomain, filename string, opts Options) (*parsing.Grammar, error) {
	g, err := LoadGrammar(filename)
	if err != nil {
		return nil, err
	}
	return Compile(domain, g, opts)
}

// FirstProduction returns the name of the production that appears first in
// the grammar source.
func FirstProduction(g ebnf.Grammar) string {
	var first *ebnf.Production
	for _, prod := range g {
		if first == nil || prod.Pos().Offset < first.Pos().Offset {
			first = prod
		}
	}
	if first == nil {
		return ""
	}
	return first.Name.String
}

// Verify checks g with ebnf.Verify. The skip production counts as reachable
// alongside start.
func Verify(g ebnf.Grammar, start, skip string) error {
	if skip == "" {
		return ebnf.Verify(g, start)
	}
	if _, ok := g[skip]; !ok {
		return fmt.Errorf("no skip production %s", skip)
	}
	root := "Root"
	for g[root] != nil {
		root += "_"
	}
	rooted := make(ebnf.Grammar, len(g)+1)
	for name, prod := range g {
		rooted[name] = prod
	}
	rooted[root] = &ebnf.Production{
		Name: &ebnf.Name{String: root},
		Expr: ebnf.Alternative{&ebnf.Name{String: start}, &ebnf.Name{String: skip}},
	}
	return ebnf.Verify(rooted, root)
}

// Compile turns g into a parsing grammar registered in domain.
//
// Productions whose name starts with a lower-case letter are lexical: they
// match as a single token and yield a terminal node holding the matched
// text. The other productions are syntactic and yield a node whose children
// are the nodes of the productions and literal tokens they matched.
// Alternatives are ordered: the first alternative that matches wins.
func Compile(domain *parsing.ParsingDomain, g ebnf.Grammar, opts Options) (*parsing.Grammar, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Start == "" {
		opts.Start = FirstProduction(g)
	}
	if err := Verify(g, opts.Start, opts.Skip); err != nil {
		return nil, err
	}
	if err := checkLeftRecursion(g); err != nil {
		return nil, err
	}

	c := &compiler{grammar: g}
	pg, err := parsing.Create(domain, parsing.Def{
		QualifiedName: opts.Name,
		Rules: func(pg *parsing.Grammar) {
			for _, name := range sortedNames(g) {
				c.define(pg, name)
			}
			pg.SetStartRule(opts.Start)
			if opts.Skip != "" {
				pg.SetSkipRule(opts.Skip)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile grammar %s: %w", opts.Name, err)
	}
	log.Debugf("compiled grammar %s: %d productions, start %s", opts.Name, len(g), opts.Start)
	return pg, nil
}

// Parse runs g over src and returns the tree of its start production.
func Parse(g *parsing.Grammar, src []rune, fileIndex int, fileName string) (*Node, error) {
	return ParseTraced(g, nil, src, fileIndex, fileName)
}

// ParseTraced is Parse with the rule calls traced to tr.
func ParseTraced(g *parsing.Grammar, tr *parsing.Trace, src []rune, fileIndex int, fileName string) (*Node, error) {
	v, err := g.ParseTraced(tr, src, fileIndex, fileName)
	if err != nil {
		return nil, err
	}
	return parsing.As[*Node](v), nil
}

func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

func sortedNames(g ebnf.Grammar) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type frame struct {
	node     *Node
	children []*Node
}

type ruleRef struct {
	rule *parsing.Rule
}

type compiler struct {
	grammar ebnf.Grammar

	// state of the production being compiled
	ref     *ruleRef
	lexical bool
	actions map[string]func(*frame, *parsing.ActionArgs)
	calls   map[string]bool
}

func (c *compiler) define(pg *parsing.Grammar, name string) {
	lexical := isLexical(name)
	c.ref = &ruleRef{}
	c.lexical = lexical
	c.actions = make(map[string]func(*frame, *parsing.ActionArgs))
	c.calls = make(map[string]bool)

	body := c.compile(c.grammar[name].Expr)
	if lexical {
		body = parsing.Token(body)
	}
	c.actions["A0"] = func(f *frame, a *parsing.ActionArgs) {
		if lexical {
			f.node = newTerminal(name, a.String(), a.Span)
			return
		}
		f.node = newNonTerminal(name, a.Span)
		f.node.Children = append(f.node.Children, f.children...)
	}

	var postCalls map[string]func(*frame, *parsing.ValueStack, bool)
	if !lexical {
		postCalls = make(map[string]func(*frame, *parsing.ValueStack, bool), len(c.calls))
		for callee := range c.calls {
			postCalls[callee] = parsing.Capture(func(f *frame, v parsing.Value) {
				f.children = append(f.children, parsing.As[*Node](v))
			})
		}
	}

	c.ref.rule = parsing.Define(pg, parsing.RuleDef[frame]{
		Name:      name,
		ValueType: "*Node",
		Leave: func(f *frame, stack *parsing.ValueStack) {
			stack.Push(parsing.NodeValue(f.node))
		},
		Actions:   c.actions,
		PostCalls: postCalls,
	}, parsing.Action("A0", body))
}

func (c *compiler) compile(expr ebnf.Expression) parsing.Parser {
	switch e := expr.(type) {
	case nil:
		return parsing.Empty()
	case *ebnf.Name:
		c.calls[e.String] = true
		return parsing.Nonterminal(e.String, e.String, 0)
	case *ebnf.Token:
		return c.terminal(parsing.String(e.String))
	case *ebnf.Range:
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		return c.terminal(parsing.Range(lo, hi))
	case *ebnf.Group:
		return c.compile(e.Body)
	case *ebnf.Option:
		return parsing.Optional(c.restore(c.compile(e.Body)))
	case *ebnf.Repetition:
		return parsing.KleeneStar(c.restore(c.compile(e.Body)))
	case ebnf.Sequence:
		ps := make([]parsing.Parser, len(e))
		for i, x := range e {
			ps[i] = c.compile(x)
		}
		return c.restore(parsing.Sequence(ps...))
	case ebnf.Alternative:
		ps := make([]parsing.Parser, len(e))
		for i, x := range e {
			ps[i] = c.restore(c.compile(x))
		}
		return parsing.Alternative(ps...)
	}
	panic(fmt.Sprintf("ebnfparse: unexpected expression %T", expr))
}

// terminal makes a literal match of a syntactic production add a terminal
// node to the production's children.
func (c *compiler) terminal(p parsing.Parser) parsing.Parser {
	if c.lexical {
		return p
	}
	name := fmt.Sprintf("T%d", len(c.actions))
	c.actions[name] = func(f *frame, a *parsing.ActionArgs) {
		text := a.String()
		f.children = append(f.children, newTerminal(strconv.Quote(text), text, a.Span))
	}
	return parsing.Action(name, p)
}

func (c *compiler) restore(p parsing.Parser) parsing.Parser {
	if c.lexical {
		return p
	}
	return &restore{child: p, ref: c.ref}
}

// restore drops the children its child collected when the child misses.
type restore struct {
	child parsing.Parser
	ref   *ruleRef
}

func (p *restore) Name() string               { return p.child.Name() }
func (p *restore) Info() string               { return p.child.Info() }
func (p *restore) Children() []parsing.Parser { return []parsing.Parser{p.child} }

func (p *restore) Parse(s *parsing.Scanner, stack *parsing.ValueStack, data *parsing.ParsingData) parsing.Match {
	f := parsing.Frame[frame](data, p.ref.rule.ID())
	n := len(f.children)
	m := p.child.Parse(s, stack, data)
	if !m.Hit {
		f.children = f.children[:n]
	}
	return m
}

// checkLeftRecursion rejects productions that can call themselves before
// consuming input, which would never terminate under ordered choice.
func checkLeftRecursion(g ebnf.Grammar) error {
	nullable := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for name, prod := range g {
			if !nullable[name] && isNullable(prod.Expr, nullable) {
				nullable[name] = true
				changed = true
			}
		}
	}
	for _, name := range sortedNames(g) {
		seen := make(map[string]bool)
		work := []string{name}
		for len(work) > 0 {
			current := work[len(work)-1]
			work = work[:len(work)-1]
			prod, ok := g[current]
			if !ok {
				continue
			}
			var found bool
			leftCalls(prod.Expr, nullable, func(callee string) {
				if callee == name {
					found = true
				}
				if !seen[callee] {
					seen[callee] = true
					work = append(work, callee)
				}
			})
			if found {
				return fmt.Errorf("%s: production %s is left recursive", prod.Pos(), name)
			}
		}
	}
	return nil
}

func isNullable(expr ebnf.Expression, nullable map[string]bool) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *ebnf.Name:
		return nullable[e.String]
	case *ebnf.Token:
		return e.String == ""
	case *ebnf.Group:
		return isNullable(e.Body, nullable)
	case *ebnf.Option, *ebnf.Repetition:
		return true
	case ebnf.Sequence:
		for _, x := range e {
			if !isNullable(x, nullable) {
				return false
			}
		}
		return true
	case ebnf.Alternative:
		for _, x := range e {
			if isNullable(x, nullable) {
				return true
			}
		}
	}
	return false
}

// leftCalls reports the productions expr may call at its start position.
func leftCalls(expr ebnf.Expression, nullable map[string]bool, visit func(string)) {
	switch e := expr.(type) {
	case *ebnf.Name:
		visit(e.String)
	case *ebnf.Group:
		leftCalls(e.Body, nullable, visit)
	case *ebnf.Option:
		leftCalls(e.Body, nullable, visit)
	case *ebnf.Repetition:
		leftCalls(e.Body, nullable, visit)
	case ebnf.Sequence:
		for _, x := range e {
			leftCalls(x, nullable, visit)
			if !isNullable(x, nullable) {
				return
			}
		}
	case ebnf.Alternative:
		for _, x := range e {
			leftCalls(x, nullable, visit)
		}
	}
}
