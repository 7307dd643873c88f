package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cmparse/format"
	"github.com/dhamidi/cmparse/lang"
	"github.com/dhamidi/cmparse/parsing/ebnfparse"
	"github.com/dhamidi/cmparse/source"
	"github.com/dhamidi/cmparse/watch"
	"github.com/dhamidi/cmparse/workspace"
)

var errParseFailed = errors.New("parse failed")

func newParseCmd() *cobra.Command {
	var outputFormat string
	var grammarFile string
	var rule string
	var opts ebnfparse.Options
	var trace bool
	var watchFiles bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and dump its syntax tree",
		Long: `Parse a file and dump its syntax tree.

Files ending in ` + workspace.LangExtension + ` are parsed as programs of the built-in
language. Other files are parsed with the configured grammar for their
extension, or with the EBNF grammar given by --grammar. --rule parses
with a single rule of the built-in language, such as
ExpressionGrammar.Expression.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &parseRun{
				ws:          workspace.New(cfg),
				path:        args[0],
				format:      outputFormat,
				grammarFile: grammarFile,
				rule:        rule,
				opts:        opts,
				out:         cmd.OutOrStdout(),
				errOut:      cmd.ErrOrStderr(),
			}
			if trace {
				p.ws.SetTrace(cmd.ErrOrStderr())
			}

			if !watchFiles {
				return p.run()
			}
			return p.watch(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Formats, ", ")+")")
	cmd.Flags().StringVarP(&grammarFile, "grammar", "g", "", "EBNF grammar to parse with")
	cmd.Flags().StringVarP(&rule, "rule", "r", "", "built-in rule to parse with, as Grammar.Rule")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start production of --grammar")
	cmd.Flags().StringVar(&opts.Skip, "skip", "", "skip production of --grammar")
	cmd.Flags().BoolVar(&trace, "trace", false, "write an XML trace of the parse to stderr")
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "parse again whenever the file or its grammar changes")

	return cmd
}

type parseRun struct {
	ws          *workspace.Workspace
	path        string
	format      string
	grammarFile string
	rule        string
	opts        ebnfparse.Options
	out         io.Writer
	errOut      io.Writer
}

func (p *parseRun) run() error {
	file, err := p.ws.Sources().Load(p.path)
	if err != nil {
		return err
	}

	n, err := p.parse(file)
	if err != nil {
		fmt.Fprintln(p.errOut, format.Error(err, file))
		return errParseFailed
	}

	enc, err := format.New(p.format, p.out, file)
	if err != nil {
		return err
	}
	return enc.Encode(n)
}

func (p *parseRun) parse(file *source.File) (*format.Node, error) {
	if p.rule != "" {
		lp, err := lang.NewParser(nil, p.rule)
		if err != nil {
			return nil, err
		}
		n, err := lp.Traced(p.ws.Trace()).Parse(file.Text, file.Index, file.Name, nil)
		if err != nil {
			return nil, err
		}
		return format.FromLang(n), nil
	}
	if p.grammarFile == "" {
		return p.ws.Parse(file)
	}
	g, err := ebnfparse.Load(nil, p.grammarFile, p.opts)
	if err != nil {
		return nil, err
	}
	cst, err := ebnfparse.ParseTraced(g, p.ws.Trace(), file.Text, file.Index, file.Name)
	if err != nil {
		return nil, err
	}
	return format.FromCST(cst), nil
}

// grammarPath is the EBNF file the input is parsed with, if any.
func (p *parseRun) grammarPath() string {
	if p.grammarFile != "" {
		return p.grammarFile
	}
	if gc, ok := p.ws.Config().GrammarFor(p.path); ok {
		return gc.File
	}
	return ""
}

func (p *parseRun) watch(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var mu sync.Mutex
	rerun := func([]string) {
		mu.Lock()
		defer mu.Unlock()
		if err := p.run(); err != nil && !errors.Is(err, errParseFailed) {
			fmt.Fprintln(p.errOut, err)
		}
	}
	rerun(nil)

	paths := []string{p.path}
	if g := p.grammarPath(); g != "" {
		paths = append(paths, g)
	}
	for i, path := range paths {
		onChange := rerun
		if i > 0 {
			onChange = func(changed []string) {
				p.ws.Reload()
				rerun(changed)
			}
		}
		w, err := watch.New(path, nil, onChange)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	<-ctx.Done()
	return nil
}
