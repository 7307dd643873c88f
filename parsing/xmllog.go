package parsing

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"
)

// XmlLog traces rule calls as nested XML elements:
//
//	<rule name="Statement">
//	  <try>if (x) return;</try>
//	  <success>if (x) return;</success>
//	</rule>
//
// Text longer than the maximum line length is cut. After the first failed
// write the log drops everything and Flush reports the error.
type XmlLog struct {
	w             *bufio.Writer
	indent        int
	maxLineLength int
	err           error
}

func NewXmlLog(w io.Writer, maxLineLength int) *XmlLog {
	if maxLineLength <= 0 {
		maxLineLength = 80
	}
	return &XmlLog{w: bufio.NewWriter(w), maxLineLength: maxLineLength}
}

func (l *XmlLog) BeginRule(name string) {
	l.writeLine(`<rule name="` + escapeString(name) + `">`)
	l.indent++
}

func (l *XmlLog) EndRule(name string) {
	l.indent--
	l.writeLine("</rule>")
}

func (l *XmlLog) Try(text []rune) {
	l.writeElement("try", text)
}

func (l *XmlLog) Success(text []rune) {
	l.writeElement("success", text)
}

func (l *XmlLog) Fail() {
	l.writeLine("<fail/>")
}

func (l *XmlLog) Flush() error {
	if l.err != nil {
		return l.err
	}
	l.err = l.w.Flush()
	return l.err
}

func (l *XmlLog) writeElement(name string, text []rune) {
	l.writeLine("<" + name + ">" + escape(text, l.maxLineLength) + "</" + name + ">")
}

func (l *XmlLog) writeLine(line string) {
	if l.err != nil {
		return
	}
	if _, err := l.w.WriteString(strings.Repeat("  ", l.indent) + line + "\n"); err != nil {
		l.err = err
	}
}

func escape(text []rune, limit int) string {
	if len(text) > limit {
		text = text[:limit]
	}
	return escapeString(string(text))
}

func escapeString(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
