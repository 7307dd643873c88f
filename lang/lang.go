// Package lang is a small statement and expression language built on the
// parsing engine. Its grammars are layered: literals and keywords at the
// bottom, then expressions, statements and whole programs.
package lang

import (
	"strings"

	"github.com/dhamidi/cmparse/parsing"
)

const ProgramGrammarName = "cmparse.lang.ProgramGrammar"

var ProgramDefinition = parsing.Def{
	QualifiedName: ProgramGrammarName,
	Refs: func(g *parsing.Grammar) error {
		if _, err := g.Reference(StatementDefinition); err != nil {
			return err
		}
		return referenceStdlib(g)
	},
	Rules: func(g *parsing.Grammar) {
		g.AddRuleLink("Statement", "StatementGrammar.Statement")
		g.AddRuleLink("spaces_and_comments", "stdlib.spaces_and_comments")
		g.SetSkipRule("spaces_and_comments")

		defineStmt(g, stmtRule{
			name: "Program",
			actions: map[string]func(*stmtFrame, *parsing.ActionArgs){
				"A0": func(c *stmtFrame, a *parsing.ActionArgs) {
					c.value = newNode(KindProgram, a.Span, c.nodes...)
				},
			},
			calls:     []string{"stmt"},
			postCalls: map[string]func(*stmtFrame, *parsing.ValueStack, bool){"stmt": addStmtNode},
		}, parsing.Action("A0", parsing.KleeneStar(stmt("stmt"))))
	},
}

// EntryDefinition defines a grammar whose start rule is target, a rule of
// one of the language grammars written as "Grammar.rule", for example
// "StatementGrammar.CaseStatement".
func EntryDefinition(target string) parsing.Def {
	return parsing.Def{
		QualifiedName: "cmparse.lang.entry." + strings.ReplaceAll(target, ".", "_"),
		Refs: func(g *parsing.Grammar) error {
			if _, err := g.Reference(ProgramDefinition); err != nil {
				return err
			}
			return referenceStdlib(g)
		},
		Rules: func(g *parsing.Grammar) {
			g.AddRuleLink("entry", target)
			g.AddRuleLink("spaces_and_comments", "stdlib.spaces_and_comments")
			g.SetStartRule("entry")
			g.SetSkipRule("spaces_and_comments")
		},
	}
}

// Parser parses source text starting at one rule of the language.
type Parser struct {
	grammar *parsing.Grammar
	trace   *parsing.Trace
}

// NewParser builds the grammar of EntryDefinition(target) in domain. A nil
// domain uses a private one.
func NewParser(domain *parsing.ParsingDomain, target string) (*Parser, error) {
	g, err := parsing.Create(domain, EntryDefinition(target))
	if err != nil {
		return nil, err
	}
	return &Parser{grammar: g}, nil
}

func NewProgramParser(domain *parsing.ParsingDomain) (*Parser, error) {
	return NewParser(domain, "ProgramGrammar.Program")
}

func (p *Parser) Grammar() *parsing.Grammar { return p.grammar }

// Traced returns a parser over the same grammar whose parses are traced to
// tr. p itself is unchanged.
func (p *Parser) Traced(tr *parsing.Trace) *Parser {
	return &Parser{grammar: p.grammar, trace: tr}
}

// Parse runs the parser over src. Rules taking a parsing context receive
// ctx, or a fresh one when ctx is nil. The result is nil for rules that
// synthesize no node.
func (p *Parser) Parse(src []rune, fileIndex int, fileName string, ctx *ParsingContext) (*Node, error) {
	var args []parsing.Value
	if len(p.grammar.StartRule().Inherited()) > 0 {
		if ctx == nil {
			ctx = NewParsingContext()
		}
		args = append(args, parsing.RefValue(ctx))
	}
	v, err := p.grammar.ParseTraced(p.trace, src, fileIndex, fileName, args...)
	if err != nil {
		return nil, err
	}
	if v.Kind() != parsing.KindNode {
		return nil, nil
	}
	return parsing.As[*Node](v), nil
}

func (p *Parser) ParseString(src, fileName string, ctx *ParsingContext) (*Node, error) {
	return p.Parse([]rune(src), 0, fileName, ctx)
}

// ParseProgram parses a whole program in a private domain.
func ParseProgram(src []rune, fileName string) (*Node, error) {
	p, err := NewProgramParser(nil)
	if err != nil {
		return nil, err
	}
	return p.Parse(src, 0, fileName, nil)
}
