package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	table         string
	metadataInput string
	label         string
	fallback      bool
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a set of data",
		Long:  `Grow a decision tree from a set of data to predict a label feature, and print it.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fail(1, err)
			}
			features, label, err := config.readMetadata(config.metadataInput, config.label)
			if err != nil {
				fail(2, err)
			}
			t, err := config.growTree(config.Context(), config.dataInput, config.table, features, label, config.fallback)
			if err != nil {
				fail(3, err)
			}
			fmt.Print(t)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "location of the data to grow the tree from: "+dataLocationHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "table or collection holding the data on databases")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "label", "name of the feature the grown tree should predict")
	cmd.PersistentFlags().BoolVar(&(config.fallback), "unseen-value-fallback", false, "predict the distribution of the node for values never seen while growing instead of failing")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	return nil
}
