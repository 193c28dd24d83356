package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canisaugustinus/latin-leven/wordlist"
)

func newExtractCmd(_ *viper.Viper) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "extract <dump.jsonl> <out>",
		Short: "Build a word list from a wiktextract Wiktionary dump",
		Long: `Read a wiktextract dump (one JSON record per line, optionally compressed
by extension) and write the headwords of one language as a word list.
Records without a "word" or "lang_code" key are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := wordlist.ExtractFile(cmd.Context(), args[0], lang)
			if err != nil {
				return err
			}
			if err := wordlist.Save(args[1], words); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d %q words into %s (%s)\n", len(words), lang, args[1], wordlist.FormatOf(args[1]))
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "la", "wiktextract language code to keep")
	return cmd
}
