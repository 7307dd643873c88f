// Package workspace ties configuration, sources and grammars together. It
// decides which grammar parses a file and keeps compiled grammars around
// between parses.
package workspace

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/cmparse/config"
	"github.com/dhamidi/cmparse/format"
	"github.com/dhamidi/cmparse/lang"
	"github.com/dhamidi/cmparse/parsing"
	"github.com/dhamidi/cmparse/parsing/ebnfparse"
	"github.com/dhamidi/cmparse/source"
)

var log = commonlog.GetLogger("cmparse.workspace")

// LangExtension is the extension of files in the built-in language.
const LangExtension = ".cm"

type Workspace struct {
	cfg     *config.Config
	sources *source.Registry

	mu       sync.Mutex
	domain   *parsing.ParsingDomain
	grammars map[string]*parsing.Grammar
	program  *lang.Parser
	trace    *parsing.Trace
}

func New(cfg *config.Config) *Workspace {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Workspace{
		cfg:      cfg,
		sources:  source.NewRegistry(source.Options{NFC: cfg.NFC}),
		domain:   parsing.NewParsingDomain(),
		grammars: make(map[string]*parsing.Grammar),
	}
}

// SetTrace makes every later parse write an XML trace of the parser to out.
// A nil out turns tracing off.
func (w *Workspace) SetTrace(out io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if out == nil {
		w.trace = nil
		return
	}
	w.trace = &parsing.Trace{Out: out, MaxLineLength: w.cfg.MaxLogLineLength}
}

// Trace is the trace parses are written to, or nil.
func (w *Workspace) Trace() *parsing.Trace {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.trace
}

func (w *Workspace) Config() *config.Config    { return w.cfg }
func (w *Workspace) Sources() *source.Registry { return w.sources }

// Handles reports whether the workspace has a grammar for filename.
func (w *Workspace) Handles(filename string) bool {
	if filepath.Ext(filename) == LangExtension {
		return true
	}
	_, ok := w.cfg.GrammarFor(filename)
	return ok
}

// IsGrammarFile reports whether path is the EBNF source of a configured
// grammar.
func (w *Workspace) IsGrammarFile(path string) bool {
	for _, g := range w.cfg.Grammars {
		if sameFile(g.File, path) {
			return true
		}
	}
	return false
}

// Grammar returns the configured grammar with the given name, compiling it
// on first use.
func (w *Workspace) Grammar(name string) (*parsing.Grammar, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.grammarLocked(name)
}

func (w *Workspace) grammarLocked(name string) (*parsing.Grammar, error) {
	if g, ok := w.grammars[name]; ok {
		return g, nil
	}
	gc, ok := w.cfg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no grammar named %s", name)
	}
	g, err := ebnfparse.Load(w.domain, gc.File, ebnfparse.Options{
		Name:  gc.Name,
		Start: gc.Start,
		Skip:  gc.Skip,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("loaded grammar %s from %s", gc.Name, gc.File)
	w.grammars[name] = g
	return g, nil
}

// Reload forgets every compiled grammar. The next parse compiles them
// again from their files.
func (w *Workspace) Reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.domain = parsing.NewParsingDomain()
	w.grammars = make(map[string]*parsing.Grammar)
	w.program = nil
	log.Info("grammars reloaded")
}

func (w *Workspace) programParser() (*lang.Parser, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.program == nil {
		p, err := lang.NewProgramParser(w.domain)
		if err != nil {
			return nil, err
		}
		w.program = p
	}
	return w.program.Traced(w.trace), nil
}

// Parse parses file with the grammar its name selects.
func (w *Workspace) Parse(file *source.File) (*format.Node, error) {
	if filepath.Ext(file.Name) == LangExtension {
		p, err := w.programParser()
		if err != nil {
			return nil, err
		}
		n, err := p.Parse(file.Text, file.Index, file.Name, nil)
		if err != nil {
			return nil, err
		}
		return format.FromLang(n), nil
	}

	gc, ok := w.cfg.GrammarFor(file.Name)
	if !ok {
		return nil, fmt.Errorf("%s: no grammar handles %q files", file.Name, filepath.Ext(file.Name))
	}
	g, err := w.Grammar(gc.Name)
	if err != nil {
		return nil, err
	}
	n, err := ebnfparse.ParseTraced(g, w.Trace(), file.Text, file.Index, file.Name)
	if err != nil {
		return nil, err
	}
	return format.FromCST(n), nil
}

// Check registers data as the contents of name and parses it.
func (w *Workspace) Check(name string, data []byte) (*source.File, *format.Node, error) {
	file, err := w.sources.Add(name, data)
	if err != nil {
		return nil, nil, err
	}
	n, err := w.Parse(file)
	return file, n, err
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
