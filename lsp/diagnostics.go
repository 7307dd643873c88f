package lsp

import (
	"errors"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/cmparse/parsing"
	"github.com/dhamidi/cmparse/source"
)

// diagnostics converts a parse error into LSP diagnostics. A nil error
// clears the document's diagnostics.
func diagnostics(err error, file *source.File) []protocol.Diagnostic {
	if err == nil {
		return []protocol.Diagnostic{}
	}

	d := protocol.Diagnostic{
		Severity: severityPtr(protocol.DiagnosticSeverityError),
		Source:   strPtr(lsName),
		Message:  err.Error(),
	}

	var ef *parsing.ExpectationFailure
	var pe *parsing.ParsingError
	switch {
	case errors.As(err, &ef):
		d.Message = ef.Info + " expected"
		d.Range = spanRange(file, ef.Span)
	case errors.As(err, &pe) && pe.Source != nil:
		d.Message = pe.Message
		d.Range = spanRange(file, pe.Span)
	}
	return []protocol.Diagnostic{d}
}

// spanRange converts a rune span into an LSP range. An empty span covers
// the character at its start so that editors show it.
func spanRange(file *source.File, span parsing.Span) protocol.Range {
	if file == nil {
		return protocol.Range{}
	}
	end := span.End
	if end <= span.Start && span.Start < len(file.Text) && file.Text[span.Start] != '\n' {
		end = span.Start + 1
	}
	return protocol.Range{
		Start: position(file, span.Start),
		End:   position(file, end),
	}
}

// position converts a rune offset into a zero-based LSP position, whose
// character counts UTF-16 code units.
func position(file *source.File, offset int) protocol.Position {
	p := file.Position(offset)
	line := file.Line(p.Line)
	character := 0
	for i := 0; i < p.Column-1 && i < len(line); i++ {
		if line[i] >= 0x10000 {
			character += 2
		} else {
			character++
		}
	}
	return protocol.Position{
		Line:      protocol.UInteger(p.Line - 1),
		Character: protocol.UInteger(character),
	}
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
