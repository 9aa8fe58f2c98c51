package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/to404hanga/online_judge_autograder/generate"
)

var generateOpts generate.Options

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Build the autograder zip for a Gradescope assignment",
	Long: `Packages the R tests, the requirements, the assignment configuration and any
extra files into autograder.zip. The zip's run_autograder script grades with
"autograder run". A configuration with course_id and assignment_id also
needs --token so PDFs can be uploaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := generateOpts
		opts.Files = args
		path, err := generate.Autograder(opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.TestsDir, "tests-path", "t", "./tests", "directory of test files")
	generateCmd.Flags().StringVarP(&generateOpts.OutputDir, "output-dir", "o", ".", "directory the zip is written to")
	generateCmd.Flags().StringVar(&generateOpts.ConfigPath, "otter-config", "", "assignment configuration (default ./"+generate.DefaultConfigFile+" when present)")
	generateCmd.Flags().StringVarP(&generateOpts.RequirementsPath, "requirements", "r", "", "R requirements file (default ./"+generate.DefaultRequirementsFile+" when present)")
	generateCmd.Flags().BoolVar(&generateOpts.OverwriteRequirements, "overwrite-requirements", false, "replace the default requirements instead of adding to them")
	generateCmd.Flags().StringVar(&generateOpts.Token, "token", "", "Gradescope API token")
}
