package executor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/to404hanga/online_judge_autograder/executor/config"
	"github.com/to404hanga/online_judge_autograder/executor/service"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const (
	// SubmissionDir is the workspace inside an autograder directory.
	SubmissionDir = "submission"
	// IdentityFile lists the submitters of the workspace; it sits next to SubmissionDir.
	IdentityFile = "submission_metadata.json"
)

type Runner interface {
	Run(ctx context.Context, autograderDir string) (*service.Results, error)
}

// RRunner grades one submission: resolve, run the tests, then optionally
// render a PDF and upload it. Only resolution and the test run can fail the
// submission.
type RRunner struct {
	log         loggerv2.Logger
	runtime     service.Runtime
	resolver    *Resolver
	exporter    service.NotebookExporter
	newUploader service.UploaderFactory
	lang        config.LanguageConfig
	opts        config.AutograderConfig
}

var _ Runner = (*RRunner)(nil)

func NewRRunner(log loggerv2.Logger, runtime service.Runtime, exporter service.NotebookExporter, newUploader service.UploaderFactory, opts config.AutograderConfig) (*RRunner, error) {
	if opts.Language == "" {
		opts.Language = config.LanguageR
	}
	lang, ok := config.LanguageConfigs[opts.Language]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %q", opts.Language)
	}
	return &RRunner{
		log:         log,
		runtime:     runtime,
		resolver:    NewResolver(log, runtime, lang),
		exporter:    exporter,
		newUploader: newUploader,
		lang:        lang,
		opts:        opts,
	}, nil
}

func (r *RRunner) Run(ctx context.Context, autograderDir string) (res *service.Results, err error) {
	workspace, err := filepath.Abs(filepath.Join(autograderDir, SubmissionDir))
	if err != nil {
		return nil, fmt.Errorf("failed to locate workspace: %w", err)
	}
	restore, err := EnterDir(workspace)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			// later submissions in this process would run in the wrong directory
			r.log.ErrorContext(ctx, "failed to leave workspace", logger.Error(rerr))
			res, err = nil, rerr
		}
	}()

	var uploader service.Uploader
	generatePDF := r.opts.PDF
	if r.opts.Token != "" {
		uploader = r.newUploader(r.opts.Token)
		generatePDF = true
	}

	script, err := r.resolver.Resolve(ctx, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve submission: %w", err)
	}

	stdout, err := r.runtime.Eval(ctx, workspace, fmt.Sprintf(r.lang.GradeExpr, quote(script)))
	if err != nil {
		return nil, fmt.Errorf("failed to run autograder on %s: %w", script, err)
	}
	res, err = service.ParseResults(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results of %s: %w", script, err)
	}
	r.log.InfoContext(ctx, "graded submission",
		logger.String("script", script),
		logger.Any("score", res.Score()),
		logger.Any("possible", res.Possible()),
	)

	if !generatePDF {
		return res, nil
	}
	pdfPath, err := r.writePDF(ctx, workspace)
	if err != nil {
		r.log.ErrorContext(ctx, "Error encountered while generating PDF", logger.Error(err))
		return res, nil
	}
	if uploader != nil {
		identity := filepath.Join(filepath.Dir(workspace), IdentityFile)
		if err := r.submitPDF(ctx, uploader, identity, pdfPath); err != nil {
			r.log.ErrorContext(ctx, "Error encountered while submitting PDF", logger.Error(err))
		}
	}
	return res, nil
}
