// Package source loads input files for parsing. It decodes them to runes,
// maps rune offsets to lines and columns and assigns file indexes.
package source

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dhamidi/cmparse/parsing"
)

var log = commonlog.GetLogger("cmparse.source")

// Options control decoding.
type Options struct {
	// NFC normalizes decoded text to Unicode normalization form C.
	NFC bool
}

// Decode turns file contents into runes. A byte order mark selects UTF-8,
// UTF-16LE or UTF-16BE and is dropped; without one the data is UTF-8.
// Invalid sequences decode to U+FFFD.
func Decode(data []byte, opts Options) ([]rune, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if opts.NFC && !norm.NFC.IsNormal(out) {
		out = norm.NFC.Bytes(out)
	}
	return []rune(string(out)), nil
}

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// File is a decoded input file.
type File struct {
	Index int
	Name  string
	Text  []rune
	lines []int
}

func NewFile(index int, name string, text []rune) *File {
	f := &File{Index: index, Name: name, Text: text, lines: []int{0}}
	for i, r := range text {
		if r == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// LineCount is the number of lines; text after the last newline counts as
// a line, even when empty.
func (f *File) LineCount() int { return len(f.lines) }

// Position maps a rune offset to a 1-based line and column. Offsets past
// the end map to the end of the text.
func (f *File) Position(offset int) Position {
	offset = max(0, min(offset, len(f.Text)))
	line := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	return Position{
		Filename: f.Name,
		Offset:   offset,
		Line:     line + 1,
		Column:   offset - f.lines[line] + 1,
	}
}

// Offset maps a 1-based line and column back to a rune offset.
func (f *File) Offset(line, column int) int {
	if line < 1 {
		return 0
	}
	if line > len(f.lines) {
		return len(f.Text)
	}
	end := len(f.Text)
	if line < len(f.lines) {
		end = f.lines[line] - 1
	}
	return min(f.lines[line-1]+max(column-1, 0), end)
}

// Line returns the text of a 1-based line without its line break.
func (f *File) Line(n int) []rune {
	if n < 1 || n > len(f.lines) {
		return nil
	}
	start, end := f.lines[n-1], len(f.Text)
	if n < len(f.lines) {
		end = f.lines[n] - 1
	}
	if end > start && f.Text[end-1] == '\r' {
		end--
	}
	return f.Text[start:end]
}

// Range returns the positions of the start and end of span.
func (f *File) Range(span parsing.Span) (Position, Position) {
	return f.Position(span.Start), f.Position(span.End)
}

// Registry hands out file indexes. Spans carry the index, and the registry
// maps it back to the file.
type Registry struct {
	opts   Options
	mu     sync.Mutex
	files  []*File
	byName map[string]*File
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, byName: make(map[string]*File)}
}

// Load reads and registers the file at path.
func (r *Registry) Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return r.Add(path, data)
}

// Add decodes data and registers it under name. Adding a name again
// replaces the text and keeps the file index.
func (r *Registry) Add(name string, data []byte) (*File, error) {
	text, err := Decode(data, r.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	index := len(r.files)
	if old, ok := r.byName[name]; ok {
		index = old.Index
	}
	f := NewFile(index, name, text)
	if index == len(r.files) {
		r.files = append(r.files, f)
	} else {
		r.files[index] = f
	}
	r.byName[name] = f
	log.Debugf("registered %s as file %d (%d runes)", name, index, len(text))
	return f, nil
}

// File returns the file with the given index, or nil.
func (r *Registry) File(index int) *File {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.files) {
		return nil
	}
	return r.files[index]
}

// Lookup returns the file registered under name, or nil.
func (r *Registry) Lookup(name string) *File {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[name]
}

func (r *Registry) FileName(index int) string {
	if f := r.File(index); f != nil {
		return f.Name
	}
	return ""
}

func (r *Registry) Files() []*File {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*File(nil), r.files...)
}
