package parsing

// Scanner is a cursor over the runes of one input. Primitive parsers advance
// it on success; composite parsers rewind it on failure.
type Scanner struct {
	input      []rune
	fileName   string
	fileIndex  int
	pos        int
	farthest   int
	skipper    Parser
	tokenDepth int
	skipping   bool
	stack      *ValueStack
	data       *ParsingData
	log        *XmlLog
}

func NewScanner(input []rune, fileIndex int, fileName string, skipper Parser) *Scanner {
	return &Scanner{
		input:     input,
		fileName:  fileName,
		fileIndex: fileIndex,
		skipper:   skipper,
	}
}

func (s *Scanner) Input() []rune { return s.input }
func (s *Scanner) FileName() string { return s.fileName }
func (s *Scanner) FileIndex() int { return s.fileIndex }
func (s *Scanner) Pos() int { return s.pos }
func (s *Scanner) AtEnd() bool { return s.pos >= len(s.input) }
func (s *Scanner) InToken() bool { return s.tokenDepth > 0 }
func (s *Scanner) Log() *XmlLog { return s.log }
func (s *Scanner) SetLog(log *XmlLog) { s.log = log }

// Span returns an empty span at the cursor.
func (s *Scanner) Span() Span {
	return Span{FileIndex: s.fileIndex, Start: s.pos, End: s.pos}
}

// SpanFrom returns the span from start to the cursor.
func (s *Scanner) SpanFrom(start int) Span {
	return Span{FileIndex: s.fileIndex, Start: start, End: s.pos}
}

// SetPos rewinds or repositions the cursor.
func (s *Scanner) SetPos(pos int) {
	s.pos = pos
}

// Farthest is the largest offset the cursor ever reached. Diagnostics for
// inputs that are not fully consumed are placed there.
func (s *Scanner) Farthest() int { return s.farthest }

// Peek returns the rune under the cursor.
func (s *Scanner) Peek() (rune, bool) {
	if s.pos >= len(s.input) {
		return 0, false
	}
	return s.input[s.pos], true
}

func (s *Scanner) PeekAt(offset int) (rune, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.input) {
		return 0, false
	}
	return s.input[i], true
}

// Advance consumes n runes.
func (s *Scanner) Advance(n int) {
	s.pos += n
	if s.pos > len(s.input) {
		s.pos = len(s.input)
	}
	if s.pos > s.farthest {
		s.farthest = s.pos
	}
}

func (s *Scanner) BeginToken() { s.tokenDepth++ }
func (s *Scanner) EndToken() { s.tokenDepth-- }

// Skip runs the skip rule at the cursor until it stops advancing. It does
// nothing inside a token or while the skip rule itself is running.
func (s *Scanner) Skip() {
	if s.skipper == nil || s.tokenDepth > 0 || s.skipping {
		return
	}
	depth := 0
	if s.stack != nil {
		depth = s.stack.Len()
	}
	s.BeginToken()
	s.skipping = true
	for {
		save := s.pos
		match := s.skipper.Parse(s, s.stack, s.data)
		if !match.Hit {
			s.pos = save
			break
		}
		if s.pos == save {
			break
		}
	}
	s.skipping = false
	s.EndToken()
	if s.stack != nil {
		s.stack.Truncate(depth)
	}
}

// Text returns the runes covered by span.
func (s *Scanner) Text(span Span) []rune {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(s.input) {
		end = len(s.input)
	}
	if start > end {
		return nil
	}
	return s.input[start:end]
}

func (s *Scanner) Remaining() []rune {
	return s.input[s.pos:]
}

func (s *Scanner) attach(stack *ValueStack, data *ParsingData) {
	s.stack = stack
	s.data = data
}
