// Command autograder grades single submissions, normalizes export metadata
// and queues batches for the grading workers.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigPath = "./config/autograder.yaml"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "autograder",
	Short:         "Grade R submissions and manage grading batches",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cfgFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "config file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file when it exists; every command can run on
// defaults and flags alone.
func loadConfig(path string) error {
	viper.SetDefault("log.type", "stdout")
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
