package parsing

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a parser tree in a compact grammar notation.
func Print(p Parser) string {
	var b strings.Builder
	printParser(&b, p, false)
	return b.String()
}

func printParser(b *strings.Builder, p Parser, nested bool) {
	switch p := p.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Rule:
		b.WriteString(p.Name())
	case *NonterminalParser:
		if p.Name() != p.RuleName() {
			b.WriteString(p.Name() + ":")
		}
		b.WriteString(p.RuleName())
		if p.NumArgs() > 0 {
			fmt.Fprintf(b, "(%d)", p.NumArgs())
		}
	case *CharParser:
		b.WriteString(strconv.QuoteRune(p.Char()))
	case *StringParser:
		b.WriteString(strconv.Quote(p.Text()))
	case *KeywordParser:
		b.WriteString("keyword(" + strconv.Quote(p.Keyword()) + ")")
	case *KeywordListParser:
		b.WriteString(p.String())
	case *SequenceParser:
		printList(b, p.Children(), " ", nested)
	case *AlternativeParser:
		printList(b, p.Children(), " | ", nested)
	case *OptionalParser:
		printParser(b, p.Child(), true)
		b.WriteString("?")
	case *KleeneStarParser:
		printParser(b, p.Child(), true)
		b.WriteString("*")
	case *PositiveParser:
		printParser(b, p.Child(), true)
		b.WriteString("+")
	case *ExpectationParser:
		printParser(b, p.Child(), true)
		b.WriteString("!")
	case *TokenParser:
		b.WriteString("token(")
		printParser(b, p.Child(), false)
		b.WriteString(")")
	case *DifferenceParser:
		printBinary(b, p.Left(), " - ", p.Right(), nested)
	case *ExclusiveOrParser:
		printBinary(b, p.Left(), " ^ ", p.Right(), nested)
	case *IntersectionParser:
		printBinary(b, p.Left(), " & ", p.Right(), nested)
	case *ListParser:
		printBinary(b, p.Left(), " % ", p.Right(), nested)
	case *ActionParser:
		printParser(b, p.Child(), true)
		b.WriteString("{" + p.Name() + "}")
	default:
		// parsers defined elsewhere that wrap a single child print as it
		if c, ok := p.(composite); ok && len(c.Children()) == 1 {
			printParser(b, c.Children()[0], nested)
			return
		}
		b.WriteString(p.Info())
	}
}

func printList(b *strings.Builder, ps []Parser, sep string, nested bool) {
	if nested && len(ps) > 1 {
		b.WriteString("(")
	}
	for i, c := range ps {
		if i > 0 {
			b.WriteString(sep)
		}
		printParser(b, c, true)
	}
	if nested && len(ps) > 1 {
		b.WriteString(")")
	}
}

func printBinary(b *strings.Builder, left Parser, op string, right Parser, nested bool) {
	printList(b, []Parser{left, right}, op, nested)
}
