package parsing

import (
	"fmt"
	"strings"
)

// ParsingError is a grammar construction error or, when Source is set, an
// error located in a parsed file.
type ParsingError struct {
	Message  string
	FileName string
	Span     Span
	Source   []rune
}

func configError(format string, args ...any) *ParsingError {
	return &ParsingError{Message: fmt.Sprintf(format, args...), Span: Span{FileIndex: -1}}
}

func (e *ParsingError) Error() string {
	if e.Source == nil {
		return e.Message
	}
	return fmt.Sprintf("%s in file '%s' at line %d:\n%s",
		e.Message, e.FileName, LineNumber(e.Source, e.Span.Start), ErrorLines(e.Source, e.Span))
}

// ExpectationFailure reports input that could not continue past a point the
// grammar committed to.
type ExpectationFailure struct {
	ParsingError
	Info string
}

func newExpectationFailure(info, fileName string, span Span, source []rune) *ExpectationFailure {
	return &ExpectationFailure{
		ParsingError: ParsingError{
			Message:  info + " expected",
			FileName: fileName,
			Span:     span,
			Source:   source,
		},
		Info: info,
	}
}

func (e *ExpectationFailure) Error() string {
	return fmt.Sprintf("parsing file '%s' failed at line %d:\n%s expected:\n%s",
		e.FileName, LineNumber(e.Source, e.Span.Start), e.Info, ErrorLines(e.Source, e.Span))
}

// CombineInfo qualifies the failure with the info of an enclosing
// expectation that failed at the same place.
func (e *ExpectationFailure) CombineInfo(parentInfo string) {
	if parentInfo == "" || parentInfo == e.Info {
		return
	}
	e.Info = parentInfo + " (" + e.Info + ")"
	e.Message = e.Info + " expected"
}

// LineNumber returns the 1-based line containing offset.
func LineNumber(src []rune, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}

func lineBounds(src []rune, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(src) && src[end] != '\n' && src[end] != '\r' {
		end++
	}
	return start, end
}

// Columns returns the 1-based columns of span on its first line. The end
// column is clipped to that line.
func Columns(src []rune, span Span) (int, int) {
	lineStart, lineEnd := lineBounds(src, span.Start)
	start := min(span.Start, len(src)) - lineStart + 1
	end := min(span.End, lineEnd) - lineStart + 1
	if end < start {
		end = start
	}
	return start, end
}

// ErrorLines renders the line holding span followed by a caret line
// underlining it.
func ErrorLines(src []rune, span Span) string {
	lineStart, lineEnd := lineBounds(src, span.Start)
	startCol, endCol := Columns(src, span)
	var b strings.Builder
	b.WriteString(string(src[lineStart:lineEnd]))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", startCol-1))
	b.WriteString(strings.Repeat("^", max(1, endCol-startCol)))
	return b.String()
}
