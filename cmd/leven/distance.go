package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canisaugustinus/latin-leven/alphabet"
	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/distance"
)

func newDistanceCmd(v *viper.Viper) *cobra.Command {
	var suggest bool

	cmd := &cobra.Command{
		Use:   "distance <query> <candidate>",
		Short: "Print the weighted edit distance between two words",
		Long: `Print the cost of turning query into candidate under the configured
costs. Insertions past the end of query are charged the append cost, so the
distance is not symmetric. With --suggest the suggestion costs apply.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			costs := profile(cfg, suggest)
			q, c := alphabet.Normalize(args[0]), alphabet.Normalize(args[1])

			var (
				keyRunes []rune
				matrix   cost.Matrix
			)
			if costs.KeyCost {
				keyRunes = cost.KeyboardRunes()
			}
			alpha := alphabet.New(keyRunes, []string{q, c})
			if costs.KeyCost {
				matrix = cost.KeyboardMatrix(alpha.Code)
			}

			m, err := cost.New(costs, matrix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", distance.Weighted(m, alpha.Encode(q), alpha.Encode(c)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&suggest, "suggest", false, "use the suggestion costs")
	return cmd
}
