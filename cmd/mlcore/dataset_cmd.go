package main

import (
	"fmt"

	"github.com/hafniz/mlcore/feature/yaml"
	"github.com/spf13/cobra"
)

type datasetCmdConfig struct {
	*rootCmdConfig
	input         string
	inputTable    string
	output        string
	outputTable   string
	metadataInput string
}

func datasetCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &datasetCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Copy sets of data",
		Long:  `Copy a set of data from one location to another, for instance to load a CSV file into a database`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fail(1, err)
			}
			ctx := config.Context()
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fail(2, err)
			}
			ds, err := config.readDataset(ctx, config.input, config.inputTable, features)
			if err != nil {
				fail(3, err)
			}
			if err = config.writeDataset(ctx, config.output, config.outputTable, features, ds); err != nil {
				fail(4, err)
			}
			config.Logf("Done, %d samples copied", ds.Count())
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.input), "input", "i", "", "location of the data to copy: "+dataLocationHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVar(&(config.inputTable), "input-table", "samples", "table or collection holding the input data on databases")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "location to copy the data to: "+dataLocationHelp+" (defaults to STDOUT in CSV)")
	cmd.PersistentFlags().StringVar(&(config.outputTable), "output-table", "samples", "table or collection to copy the data to on databases")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features to copy (required)")
	return cmd
}

func (dcc *datasetCmdConfig) Validate() error {
	if dcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}
