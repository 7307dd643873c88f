package lang

import "github.com/dhamidi/cmparse/parsing"

const KeywordGrammarName = "cmparse.lang.KeywordGrammar"

// Keywords are the reserved words of the language. They never parse as
// identifiers.
var Keywords = []string{
	"break", "case", "continue", "default", "else", "false",
	"if", "null", "return", "switch", "true", "while",
}

var KeywordDefinition = parsing.Def{
	QualifiedName: KeywordGrammarName,
	Refs:          referenceStdlib,
	Rules: func(g *parsing.Grammar) {
		g.AddRuleLink("identifier", "stdlib.identifier")
		g.AddRule(parsing.NewRule("Keyword", parsing.KeywordList(parsing.Call("identifier"), Keywords...)))
	},
}
