package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/to404hanga/online_judge_autograder/executor"
	"github.com/to404hanga/online_judge_autograder/ioc"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const resultsFile = "results/results.json"

var (
	runDir    string
	runOutput string
	runPDF    bool
	runToken  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Grade the submission of one autograder directory",
	Long: `Resolves the gradable file in <dir>/submission, runs the tests and writes
the results JSON, the way a Gradescope run_autograder script invokes it.
With a token the submission is also rendered to PDF and uploaded.`,
	Args: cobra.NoArgs,
	RunE: runGrade,
}

func init() {
	runCmd.Flags().StringVar(&runDir, "dir", ".", "autograder directory containing the submission directory")
	runCmd.Flags().StringVar(&runOutput, "output", "", "results file path (default <dir>/"+resultsFile+")")
	runCmd.Flags().BoolVar(&runPDF, "pdf", false, "generate a PDF of the submission")
	runCmd.Flags().StringVar(&runToken, "token", "", "Gradescope API token; enables PDF upload")
}

func runGrade(cmd *cobra.Command, args []string) error {
	l := ioc.InitLogger()
	cfg := ioc.InitAutograderConfig()
	if cmd.Flags().Changed("pdf") {
		cfg.PDF = runPDF
	}
	if cmd.Flags().Changed("token") {
		cfg.Token = runToken
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt := ioc.InitRuntime(l, cfg)
	runner := ioc.InitRunner(l, rt, cfg)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer func() {
		if err := rt.Close(context.WithoutCancel(ctx)); err != nil {
			l.ErrorContext(ctx, "failed to close runtime", logger.Error(err))
		}
	}()

	return grade(ctx, l, runner, runDir, runOutput)
}

func grade(ctx context.Context, l loggerv2.Logger, runner executor.Runner, dir, output string) error {
	res, err := runner.Run(ctx, dir)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = filepath.Join(dir, resultsFile)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	if err = os.WriteFile(path, res.Raw, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	l.InfoContext(ctx, "results written",
		logger.String("path", path),
		logger.Any("score", res.Score()),
		logger.Any("possible", res.Possible()),
	)
	return nil
}
