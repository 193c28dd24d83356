package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canisaugustinus/latin-leven/wordlist"
)

func newPackCmd(_ *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "pack <in> <out>",
		Short: "Rewrite a word list, deduplicated and compressed by extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := wordlist.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := wordlist.Save(args[1], words); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packed %d words into %s (%s)\n", len(words), args[1], wordlist.FormatOf(args[1]))
			return nil
		},
	}
}
