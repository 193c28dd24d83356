package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	leven "github.com/canisaugustinus/latin-leven"
	"github.com/canisaugustinus/latin-leven/alphabet"
	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/internal/config"
	"github.com/canisaugustinus/latin-leven/model"
	"github.com/canisaugustinus/latin-leven/wordlist"
)

// newRootCmd builds the command tree. Flags and LEVEN_* environment
// variables override the config file.
func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "leven",
		Short: "Weighted edit distance search over a word list",
		Long: `leven ranks the words of a dictionary by weighted Damerau-Levenshtein
distance to a query.

Substitutions can be weighted by QWERTY key distance. Searches match whole
words; suggestions use a second cost profile where appending to the end of
a query is cheap, so a partially typed word finds its completions.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (TOML)")
	pf.String("words", "", "word list, one word per line (.txt, .gz, .zst, .lz4)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("parallel", false, "scan the dictionary on all cores")
	pf.IntP("k", "k", 0, "number of results")
	_ = v.BindPFlags(pf)

	v.SetEnvPrefix("LEVEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newServeCmd(v),
		newSearchCmd(v),
		newDistanceCmd(v),
		newPackCmd(v),
		newExtractCmd(v),
	)
	return root
}

// loadConfig reads the config file and applies flag and env overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return nil, err
	}

	if v.IsSet("words") {
		cfg.Dictionary.Path = v.GetString("words")
	}
	if v.IsSet("log-level") {
		cfg.Log.Level = v.GetString("log-level")
	}
	if v.IsSet("parallel") {
		cfg.Search.Parallel = v.GetBool("parallel")
	}
	if v.IsSet("codec") {
		cfg.Server.Codec = v.GetString("codec")
	}
	if v.IsSet("k") {
		cfg.Server.DefaultK = v.GetInt("k")
		cfg.Server.MaxK = max(cfg.Server.MaxK, cfg.Server.DefaultK)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*leven.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	formatter := log.TextFormatter
	if cfg.Log.Format == "json" {
		formatter = log.JSONFormatter
	}
	return leven.NewLogger(leven.NewCharmHandler(w, level, formatter)), nil
}

// loadDictionary loads and encodes the word list. Keyboard runes come first
// in the alphabet when either cost profile weighs keys.
func loadDictionary(ctx context.Context, cfg *config.Config, logger *leven.Logger) (*alphabet.Alphabet, []model.Sequence, error) {
	words, err := wordlist.Load(ctx, cfg.Dictionary.Path)
	if err != nil {
		return nil, nil, err
	}
	if n := cfg.Dictionary.MaxWords; n > 0 && len(words) > n {
		words = words[:n]
	}

	var keyRunes []rune
	if cfg.Costs.KeyCost || cfg.Suggest.Costs.KeyCost {
		keyRunes = cost.KeyboardRunes()
	}
	alpha := alphabet.New(keyRunes, words)
	logger.Debug("dictionary loaded", "path", cfg.Dictionary.Path, "words", len(words), "alphabet", alpha.Len())
	return alpha, alpha.EncodeAll(words), nil
}

// newIndex indexes keys under costs with the configured search options.
func newIndex(cfg *config.Config, costs cost.Config, alpha *alphabet.Alphabet, keys []model.Sequence, logger *leven.Logger, extra ...leven.Option) (*leven.Index, error) {
	opts := append(cfg.IndexOptions(), leven.WithLogger(logger))
	if costs.KeyCost {
		opts = append(opts, leven.WithCostMatrix(cost.KeyboardMatrix(alpha.Code)))
	}
	opts = append(opts, extra...)

	idx, err := leven.New(keys, costs, opts...)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	return idx, nil
}

// profile picks the suggestion costs or the search costs.
func profile(cfg *config.Config, suggest bool) cost.Config {
	if suggest {
		return cfg.Suggest.Costs
	}
	return cfg.Costs
}
