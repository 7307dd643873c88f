package format

import (
	"errors"
	"fmt"

	"github.com/dhamidi/cmparse/parsing"
	"github.com/dhamidi/cmparse/source"
)

// Error renders a parse error as "file:line:column: message" followed by
// the offending line and a caret. Errors without a location print as they
// are.
func Error(err error, file *source.File) string {
	var ef *parsing.ExpectationFailure
	if errors.As(err, &ef) {
		return located(ef.Info+" expected", &ef.ParsingError, file)
	}
	var pe *parsing.ParsingError
	if errors.As(err, &pe) && pe.Source != nil {
		return located(pe.Message, pe, file)
	}
	return err.Error()
}

func located(message string, pe *parsing.ParsingError, file *source.File) string {
	if file == nil {
		file = source.NewFile(pe.Span.FileIndex, pe.FileName, pe.Source)
	}
	pos := file.Position(pe.Span.Start)
	return fmt.Sprintf("%s: %s\n%s", pos, message, parsing.ErrorLines(file.Text, pe.Span))
}
