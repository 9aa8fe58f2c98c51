package service

import (
	"context"
)

// Runtime evaluates expressions of the grading language inside a workspace
// directory. Files the expression writes must be visible in dir afterwards.
type Runtime interface {
	Eval(ctx context.Context, dir, expr string) (stdout string, err error)
	Close(ctx context.Context) error
}

type PDFOptions struct {
	Filtering  bool
	PageBreaks bool
}

// NotebookExporter renders a notebook to PDF.
type NotebookExporter interface {
	ExportNotebook(ctx context.Context, src, dest string, opts PDFOptions) error
}

// Uploader sends a rendered PDF to the remote grading platform on behalf of
// one student.
type Uploader interface {
	UploadPDFSubmission(ctx context.Context, courseID, assignmentID, email, filename string, pdf []byte) error
}

// UploaderFactory builds an Uploader from an API token.
type UploaderFactory func(token string) Uploader
