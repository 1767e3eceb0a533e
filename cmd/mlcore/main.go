package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
	log     *logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func main() {
	config := &rootCmdConfig{}
	defer config.Stop()
	if err := cliParser(config).Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser(config *rootCmdConfig) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mlcore",
		Short: "mlcore is a tool to grow and evaluate decision trees",
		Long:  `A tool to grow C4.5 decision trees from your data, test and cross-validate them, use them to make predictions and generate synthetic trees and datasets`,
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log progress")
	rootCmd.AddCommand(
		versionCmd(),
		growCmd(config),
		predictCmd(config),
		testCmd(config),
		generateCmd(config),
		crossvalCmd(config),
		batchCmd(config),
		datasetCmd(config),
	)
	return rootCmd
}

// Context returns a context cancelled on SIGINT or SIGTERM
func (rc *rootCmdConfig) Context() context.Context {
	if rc.ctx == nil {
		rc.ctx, rc.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
	return rc.ctx
}

// Stop releases the signal handlers of Context
func (rc *rootCmdConfig) Stop() {
	if rc.cancel != nil {
		rc.cancel()
	}
}

// Logger returns the logger of the command, logging at debug level
// when verbose
func (rc *rootCmdConfig) Logger() *logger {
	if rc.log == nil {
		rc.log = newLogger(rc.verbose)
	}
	return rc.log
}

// Logf logs progress messages, shown only when verbose
func (rc *rootCmdConfig) Logf(format string, a ...interface{}) {
	rc.Logger().Debugf(format, a...)
}
