package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	leven "github.com/canisaugustinus/latin-leven"
	"github.com/canisaugustinus/latin-leven/model"
)

func newSearchCmd(v *viper.Viper) *cobra.Command {
	var suggest bool

	cmd := &cobra.Command{
		Use:   "search <word>...",
		Short: "Print the closest dictionary words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			alpha, keys, err := loadDictionary(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			idx, err := newIndex(cfg, profile(cfg, suggest), alpha, keys, logger)
			if err != nil {
				return err
			}
			defer idx.Close()

			k := cfg.Server.DefaultK
			if suggest && !v.IsSet("k") {
				k = cfg.Suggest.K
			}

			search := idx.Search
			if cfg.Search.Parallel {
				search = idx.SearchParallel
			}

			out := cmd.OutOrStdout()
			for _, word := range args {
				results, err := search(cmd.Context(), alpha.EncodeQuery(word), k)
				if err != nil {
					return fmt.Errorf("searching %q: %w", word, err)
				}
				printResults(out, word, results, alpha.Decode)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&suggest, "suggest", false, "rank completions using the suggestion costs")
	return cmd
}

func printResults(w io.Writer, query string, results []leven.Result, decode func(model.Sequence) string) {
	fmt.Fprintln(w, query)
	if len(results) == 0 {
		fmt.Fprintln(w, "  (no match)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for rank, r := range results {
		fmt.Fprintf(tw, "  %d\t%s\t%.3f\n", rank+1, decode(r.Sequence), r.Score)
	}
	_ = tw.Flush()
}
