package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/hafniz/mlcore/dataset/inputsample"
	"github.com/hafniz/mlcore/feature"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	trainingInput  string
	trainingTable  string
	metadataInput  string
	label          string
	undefinedValue string
	fallback       bool
}

// stdoutPrompter prompts on standard output, its value is the undefined value
type stdoutPrompter string

var (
	prompt = color.New(color.FgCyan, color.Bold)
	reject = color.New(color.FgYellow)
	result = color.New(color.FgGreen, color.Bold)
)

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a label for a sample answering questions",
		Long:  `Grow a tree from a training set and use it to predict the label for a sample answering a reduced set of questions about its features`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fail(1, err)
			}
			features, label, err := config.readMetadata(config.metadataInput, config.label)
			if err != nil {
				fail(2, err)
			}
			t, err := config.growTree(config.Context(), config.trainingInput, config.trainingTable, features, label, config.fallback)
			if err != nil {
				fail(3, err)
			}
			sample := inputsample.New(os.Stdin, stdoutPrompter(config.undefinedValue), config.undefinedValue)
			prediction, err := t.Predict(sample)
			if err != nil {
				fail(4, err)
			}
			config.Logf("Asked for %d of %d features", len(sample.Asked()), len(features))
			value, prob := prediction.PredictedValue()
			result.Printf("Predicted %s is %s with probability %v\n", label.Name(), value, prob)
			fmt.Printf("Predicted labels along their probabilities are %v\n", prediction)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the features used by the tree (required)")
	cmd.PersistentFlags().StringVarP(&(config.trainingInput), "training", "t", "", "location of the data to grow the tree from: "+dataLocationHelp+" (required)")
	cmd.PersistentFlags().StringVar(&(config.trainingTable), "training-table", "samples", "table or collection holding the training data on databases")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "label", "name of the feature the tree predicts")
	cmd.PersistentFlags().StringVarP(&(config.undefinedValue), "undefined-value", "u", "?", "value to input to define a sample's value for a feature as undefined")
	cmd.PersistentFlags().BoolVar(&(config.fallback), "unseen-value-fallback", false, "predict the distribution of the node for values never seen while growing instead of failing")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.trainingInput == "" {
		return fmt.Errorf("required training flag was not set")
	}
	if pcc.label == "" {
		return fmt.Errorf("required label flag was not set")
	}
	return nil
}

// Ask prompts for the value of f, listing what is accepted
func (sp stdoutPrompter) Ask(f feature.Feature) error {
	prompt.Printf("Please provide the sample's %s:\n", f.Name())
	fmt.Printf("(valid values are %s)\n", sp.accepted(f))
	return nil
}

// Reject tells why line was not accepted for f
func (sp stdoutPrompter) Reject(f feature.Feature, line string, reason error) error {
	reject.Printf("%s is not a valid value for the sample's %s: %v. Please provide %s.\n", line, f.Name(), reason, sp.accepted(f))
	return nil
}

func (sp stdoutPrompter) accepted(f feature.Feature) string {
	if df, ok := f.(*feature.DiscreteFeature); ok && len(df.AvailableValues()) > 0 {
		return fmt.Sprintf("one of %v or %s if undefined", df.AvailableValues(), string(sp))
	}
	if feature.KindOf(f) == feature.Continuous {
		return fmt.Sprintf("real numbers or %s if undefined", string(sp))
	}
	return fmt.Sprintf("any value or %s if undefined", string(sp))
}
