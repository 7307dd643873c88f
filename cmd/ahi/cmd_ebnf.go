package main

import (
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cmparse/parsing/ebnfparse"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfPrintCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var opts ebnfparse.Options

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Parse, verify and compile an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := ebnfparse.LoadGrammar(args[0])
			if err != nil {
				printErrors(cmd, err)
				return err
			}

			if _, err := ebnfparse.Compile(nil, grammar, opts); err != nil {
				printErrors(cmd, err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "start production (default: the first production)")
	cmd.Flags().StringVar(&opts.Skip, "skip", "", "production skipped between tokens")

	return cmd
}

func newEbnfPrintCmd() *cobra.Command {
	var opts ebnfparse.Options

	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Print the parsing rules an EBNF grammar compiles to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ebnfparse.Load(nil, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), g.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", ebnfparse.DefaultName, "qualified grammar name")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start production (default: the first production)")
	cmd.Flags().StringVar(&opts.Skip, "skip", "", "production skipped between tokens")

	return cmd
}

// printErrors prints each error of an error list on its own line.
func printErrors(cmd *cobra.Command, err error) {
	out := cmd.ErrOrStderr()
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(out, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(out, err)
	}
}
