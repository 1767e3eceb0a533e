package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	trainingInput string
	trainingTable string
	dataInput     string
	table         string
	metadataInput string
	label         string
	fallback      bool
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree",
		Long:  `Grow a tree from a training set and test its performance against a test data set`,
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
			t, err := config.growTree(ctx, config.trainingInput, config.trainingTable, features, label, config.fallback)
			if err != nil {
				fail(3, err)
			}
			testingSet, err := config.readDataset(ctx, config.dataInput, config.table, withLabel(features, label))
			if err != nil {
				fail(4, fmt.Errorf("reading testing set: %w", err))
			}
			config.Logf("Testing tree against testset with %d samples...", testingSet.Count())
			successRate, errorCount, err := t.Test(testingSet)
			if err != nil {
				fail(5, fmt.Errorf("testing tree: %w", err))
			}
			config.Logf("Done")
			result.Printf("%s success rate", formatRate(successRate))
			fmt.Printf(", failed to make a prediction for %d samples\n", errorCount)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.trainingInput), "training", "t", "", "location of the data to grow the tree from: "+dataLocationHelp+" (required)")
	cmd.PersistentFlags().StringVar(&(config.trainingTable), "training-table", "samples", "table or collection holding the training data on databases")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "location of the data to test the tree with: "+dataLocationHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "table or collection holding the test data on databases")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "label", "name of the feature the tree predicts")
	cmd.PersistentFlags().BoolVar(&(config.fallback), "unseen-value-fallback", false, "predict the distribution of the node for values never seen while growing instead of failing")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.trainingInput == "" {
		return fmt.Errorf("required training flag was not set")
	}
	if tcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if tcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	return nil
}
