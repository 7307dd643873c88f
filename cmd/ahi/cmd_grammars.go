package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cmparse/lang"
	"github.com/dhamidi/cmparse/parsing"
	"github.com/dhamidi/cmparse/workspace"
)

func newGrammarsCmd() *cobra.Command {
	var showRules bool

	cmd := &cobra.Command{
		Use:   "grammars",
		Short: "List the built-in and configured grammars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := parsing.NewParsingDomain()
			if _, err := lang.NewProgramParser(domain); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRULES\tFILES")
			for _, g := range domain.Grammars() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", g.FullName(), len(g.Rules()), "*"+workspace.LangExtension)
			}
			ws := workspace.New(cfg)
			for _, gc := range cfg.Grammars {
				var rules string
				if g, err := ws.Grammar(gc.Name); err != nil {
					rules = "error: " + err.Error()
				} else {
					rules = fmt.Sprint(len(g.Rules()))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", gc.Name, rules, strings.Join(gc.Extensions, " "))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if showRules {
				for _, g := range domain.Grammars() {
					fmt.Fprintln(cmd.OutOrStdout())
					fmt.Fprint(cmd.OutOrStdout(), g.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRules, "rules", false, "print the rules of the built-in grammars")

	return cmd
}
