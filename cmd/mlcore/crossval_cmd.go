package main

import (
	"fmt"
	"math/rand"

	"github.com/hafniz/mlcore"
	"github.com/hafniz/mlcore/batch"
	"github.com/hafniz/mlcore/crossval"
	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/tree"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type crossvalCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	table         string
	metadataInput string
	label         string
	output        string
	folds         int
	repetitions   int
	seed          int64
	fallback      bool
}

func crossvalCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &crossvalCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "crossval",
		Short: "Cross-validate trees on a set of data",
		Long: `Cross-validate trees on a set of data, printing the accuracy of every repetition and
optionally writing the label distributions predicted for every sample while held out.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fail(1, err)
			}
			ctx := config.Context()
			features, label, err := config.readMetadata(config.metadataInput, config.label)
			if err != nil {
				fail(2, err)
			}
			columns := withLabel(features, label)
			ds, err := config.readDataset(ctx, config.dataInput, config.table, columns)
			if err != nil {
				fail(3, fmt.Errorf("reading dataset: %w", err))
			}
			labels, err := ds.LabelOrder(label)
			if err != nil {
				fail(3, err)
			}
			var opts []tree.Option
			if config.fallback {
				opts = append(opts, tree.WithUnseenValueFallback())
			}
			rng := rand.New(rand.NewSource(config.seed))
			repetitions := make([][]crossval.Result, config.repetitions)
			for j := range repetitions {
				config.Logf("Cross-validating %d samples in %d folds, repetition %d...", ds.Count(), config.folds, j)
				repetitions[j], err = crossval.ProbDist(ctx, rng, ds, config.folds, func() crossval.Classifier {
					return mlcore.New(features, label, opts...)
				})
				if err != nil {
					fail(4, err)
				}
				acc, missing, err := accuracy(repetitions[j], label)
				if err != nil {
					fail(4, err)
				}
				fmt.Printf("repetition %d: ", j)
				result.Printf("%s accuracy", formatRate(acc))
				fmt.Printf(", no prediction for %d samples\n", missing)
			}
			if config.output != "" {
				config.Logf("Writing results to %s...", config.output)
				if err = batch.WriteResults(config.output, ds, columns, labels, repetitions); err != nil {
					fail(5, err)
				}
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "location of the data to cross-validate on: "+dataLocationHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "table or collection holding the data on databases")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "label", "name of the feature to predict")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a CSV file to write the predicted distributions to")
	cmd.PersistentFlags().IntVarP(&(config.folds), "folds", "k", 10, "number of folds")
	cmd.PersistentFlags().IntVarP(&(config.repetitions), "repetitions", "r", 1, "number of times to cross-validate")
	cmd.PersistentFlags().Int64VarP(&(config.seed), "seed", "s", 1, "seed of the random generator shuffling the samples")
	cmd.PersistentFlags().BoolVar(&(config.fallback), "unseen-value-fallback", false, "predict the distribution of the node for values never seen while growing instead of failing")
	return cmd
}

func (ccc *crossvalCmdConfig) Validate() error {
	if ccc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if ccc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	if ccc.folds < 2 {
		return fmt.Errorf("folds must be at least 2")
	}
	if ccc.repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1")
	}
	return nil
}

// accuracy returns the share of results whose most probable label is the
// label of their sample, and the number of results without distribution
func accuracy(results []crossval.Result, label feature.Feature) (float64, int, error) {
	if len(results) == 0 {
		return 0, 0, nil
	}
	var correct, missing int
	for _, r := range results {
		if len(r.Dist) == 0 {
			missing++
			continue
		}
		l, err := dataset.Label(r.Sample, label)
		if err != nil {
			return 0, 0, err
		}
		if pv, _ := tree.NewPrediction(r.Dist, 0).PredictedValue(); pv == l {
			correct++
		}
	}
	return float64(correct) / float64(len(results)), missing, nil
}

func formatRate(rate float64) string {
	return decimal.NewFromFloat(rate * 100).Round(2).String() + "%"
}
