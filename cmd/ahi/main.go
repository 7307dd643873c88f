package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cmparse/config"
)

const version = "0.1.0"

var (
	configPath string
	verbosity  int
	cfg        *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "ahi",
		Short:   "Parsing tools for PEG and EBNF grammars",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Verbosity = verbosity
			}
			cfg.ConfigureLogging()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default $AHI_CONFIG or "+config.FileName+")")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newEbnfCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newGrammarsCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
