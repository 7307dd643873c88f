package lang

// ParsingContext carries parse-mode flags across rule calls. Rules push a
// flag before a speculative sub-parse and pop it on every outcome, so the
// flags seen by nested rules describe the innermost construct.
type ParsingContext struct {
	expressionStatement flag
	lvalue              flag
	arguments           flag
}

type flag struct {
	value bool
	saved []bool
}

func (f *flag) push(v bool) {
	f.saved = append(f.saved, f.value)
	f.value = v
}

func (f *flag) pop() {
	n := len(f.saved)
	if n == 0 {
		panic("lang: parsing context flag popped more often than pushed")
	}
	f.value = f.saved[n-1]
	f.saved = f.saved[:n-1]
}

func NewParsingContext() *ParsingContext {
	return &ParsingContext{}
}

func (c *ParsingContext) ParsingExpressionStatement() bool { return c.expressionStatement.value }
func (c *ParsingContext) PushParsingExpressionStatement(enable bool) { c.expressionStatement.push(enable) }
func (c *ParsingContext) PopParsingExpressionStatement() { c.expressionStatement.pop() }

func (c *ParsingContext) ParsingLvalue() bool { return c.lvalue.value }
func (c *ParsingContext) PushParsingLvalue(enable bool) { c.lvalue.push(enable) }
func (c *ParsingContext) PopParsingLvalue() { c.lvalue.pop() }

func (c *ParsingContext) ParsingArguments() bool { return c.arguments.value }
func (c *ParsingContext) BeginParsingArguments() { c.arguments.push(true) }
func (c *ParsingContext) EndParsingArguments() { c.arguments.pop() }

// Depth reports how many pushes of each flag are outstanding.
func (c *ParsingContext) Depth() (expressionStatement, lvalue, arguments int) {
	return len(c.expressionStatement.saved), len(c.lvalue.saved), len(c.arguments.saved)
}

// Balanced reports whether every push has been matched by a pop.
func (c *ParsingContext) Balanced() bool {
	e, l, a := c.Depth()
	return e == 0 && l == 0 && a == 0
}

// relationalAllowed reports whether '<' and '>' may be read as comparison
// operators. In assignment targets and at the start of expression
// statements they are reserved unless inside an argument list.
func (c *ParsingContext) relationalAllowed() bool {
	if c.ParsingLvalue() {
		return false
	}
	return !c.ParsingExpressionStatement() || c.ParsingArguments()
}
