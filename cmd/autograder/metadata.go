package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/to404hanga/online_judge_autograder/metadata"
)

var metadataOutput string

var metadataCmd = &cobra.Command{
	Use:   "metadata <format> <path>",
	Short: "Print the identifier and filename records of an export",
	Long: `Normalizes a gradescope or canvas submissions directory, or a json or yaml
metadata file, and prints its records. The json and yaml outputs can be
fed back as generic metadata files.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := metadata.Open(metadata.Format(args[0]), args[1])
		if err != nil {
			return fmt.Errorf("failed to load metadata: %w", err)
		}
		return metadata.Export(cmd.OutOrStdout(), src.Records(), metadataOutput)
	},
}

func init() {
	metadataCmd.Flags().StringVarP(&metadataOutput, "output", "o", "json", "output encoding: json, yaml or csv")
}
