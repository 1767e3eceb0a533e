package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/hafniz/mlcore/synth"
	"github.com/hafniz/mlcore/tree"
	"github.com/spf13/cobra"
)

type generateCmdConfig struct {
	*rootCmdConfig
	depth      int
	seed       int64
	samples    int
	input      string
	output     string
	treeOutput string
}

func generateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &generateCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic tree and label data with it",
		Long: `Generate a random complete binary tree splitting alternately on feature0 and feature1,
print it and optionally label samples with it: either those of a CSV input with feature0 and
feature1 columns, or a number of random samples.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fail(1, err)
			}
			if !cmd.Flags().Changed("seed") {
				config.seed = time.Now().UnixNano()
			}
			config.Logf("Generating tree of depth %d with seed %d...", config.depth, config.seed)
			rng := rand.New(rand.NewSource(config.seed))
			t, err := synth.Generate(rng, config.depth)
			if err != nil {
				fail(2, err)
			}
			if err = config.writeTree(t); err != nil {
				fail(3, err)
			}
			switch {
			case config.input != "":
				config.Logf("Labeling samples from %s...", config.input)
				err = synth.LabelFile(t, config.input, config.output)
			case config.samples > 0:
				config.Logf("Labeling %d random samples...", config.samples)
				ds, derr := synth.Dataset(rng, t, config.samples)
				if derr != nil {
					fail(4, derr)
				}
				err = config.writeDataset(config.Context(), config.output, "samples", synth.Metadata(), ds)
			}
			if err != nil {
				fail(4, err)
			}
		},
	}
	cmd.PersistentFlags().IntVarP(&(config.depth), "depth", "d", 3, "depth of the leaves of the generated tree")
	cmd.PersistentFlags().Int64VarP(&(config.seed), "seed", "s", 0, "seed of the random generator (defaults to the current time)")
	cmd.PersistentFlags().IntVarP(&(config.samples), "samples", "n", 0, "number of random samples to label with the tree")
	cmd.PersistentFlags().StringVarP(&(config.input), "input", "i", "", "path to a CSV file with samples to label with the tree")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a CSV file to write labeled samples to (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.treeOutput), "tree-output", "t", "", "path to a file to write the tree to as text (defaults to STDOUT)")
	return cmd
}

func (gcc *generateCmdConfig) Validate() error {
	if gcc.depth < 1 {
		return fmt.Errorf("depth must be at least 1")
	}
	if gcc.samples < 0 {
		return fmt.Errorf("number of samples cannot be negative")
	}
	if gcc.input != "" && gcc.samples > 0 {
		return fmt.Errorf("cannot set both input and samples flags at the same time")
	}
	labeling := gcc.input != "" || gcc.samples > 0
	if labeling && gcc.output == "" && gcc.treeOutput == "" {
		return fmt.Errorf("tree-output flag is required when labeled samples are written to STDOUT")
	}
	return nil
}

func (gcc *generateCmdConfig) writeTree(t *tree.Tree) (err error) {
	out := os.Stdout
	if gcc.treeOutput != "" {
		out, err = os.Create(gcc.treeOutput)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := out.Close(); err == nil {
				err = cerr
			}
		}()
	}
	_, err = t.WriteTo(out)
	return err
}
