package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/cmparse/parsing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts Options
		want string
	}{
		{"utf8", []byte("héllo"), Options{}, "héllo"},
		{"utf8 bom", []byte("\xef\xbb\xbfabc"), Options{}, "abc"},
		{"utf16le bom", []byte{0xff, 0xfe, 'h', 0, 'i', 0}, Options{}, "hi"},
		{"utf16be bom", []byte{0xfe, 0xff, 0, 'h', 0, 'i'}, Options{}, "hi"},
		{"invalid", []byte{'a', 0xff, 'b'}, Options{}, "a\ufffdb"},
		{"decomposed", []byte("e\u0301"), Options{}, "e\u0301"},
		{"nfc", []byte("e\u0301"), Options{NFC: true}, "\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.opts)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	f := NewFile(0, "a.cm", []rune("ab\r\nçd\n\nx"))
	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{4, 2, 1},
		{5, 2, 2},
		{7, 3, 1},
		{8, 4, 1},
		{9, 4, 2},
		{100, 4, 2},
	}
	for _, tt := range tests {
		p := f.Position(tt.offset)
		if p.Line != tt.line || p.Column != tt.column {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, p.Line, p.Column, tt.line, tt.column)
		}
		if back := f.Offset(p.Line, p.Column); back != p.Offset {
			t.Errorf("Offset(%d, %d) = %d, want %d", p.Line, p.Column, back, p.Offset)
		}
	}
	if got := f.Position(5).String(); got != "a.cm:2:2" {
		t.Errorf("String() = %q", got)
	}
	if got := f.LineCount(); got != 4 {
		t.Errorf("LineCount() = %d, want 4", got)
	}
	if got := string(f.Line(1)); got != "ab" {
		t.Errorf("Line(1) = %q, want %q", got, "ab")
	}
	if got := string(f.Line(3)); got != "" {
		t.Errorf("Line(3) = %q, want empty", got)
	}
	start, end := f.Range(parsing.Span{Start: 4, End: 9})
	if start.Line != 2 || end.Line != 4 {
		t.Errorf("Range = %v - %v", start, end)
	}
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.cm")
	if err := os.WriteFile(path, []byte("x = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(Options{})
	a, err := r.Add("a.cm", []byte("return;"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := r.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Index != 0 || b.Index != 1 {
		t.Errorf("indexes = %d, %d, want 0, 1", a.Index, b.Index)
	}
	if r.FileName(1) != path || r.File(0) != a || r.Lookup(path) != b {
		t.Errorf("registry lookups disagree")
	}

	a2, err := r.Add("a.cm", []byte("break;"))
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if a2.Index != 0 || string(r.File(0).Text) != "break;" {
		t.Errorf("re-adding did not replace file 0")
	}
	if got := len(r.Files()); got != 2 {
		t.Errorf("registry has %d files, want 2", got)
	}
	if r.File(7) != nil || r.FileName(-1) != "" {
		t.Errorf("unknown index resolved")
	}
	if _, err := r.Load(filepath.Join(dir, "missing.cm")); err == nil {
		t.Errorf("loading a missing file succeeded")
	}
}
