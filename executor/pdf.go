package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/to404hanga/online_judge_autograder/executor/service"
	"github.com/to404hanga/pkg404/logger"
)

var ErrNoPDFSource = errors.New("could not find a file that can be converted to a PDF")

type identity struct {
	Users []struct {
		Email string `json:"email"`
	} `json:"users"`
}

// writePDF renders the submission's notebook, or failing that its literate
// document, to <base>.pdf and returns the PDF's path.
func (r *RRunner) writePDF(ctx context.Context, workspace string) (string, error) {
	nbs, err := globNames(workspace, r.lang.NotebookGlob)
	if err != nil {
		return "", err
	}
	lits, err := globNames(workspace, r.lang.LiterateGlob)
	if err != nil {
		return "", err
	}

	var src string
	switch {
	case len(nbs) > 0:
		src = nbs[0]
	case len(lits) > 0:
		src = lits[0]
	default:
		return "", ErrNoPDFSource
	}
	pdf := strings.TrimSuffix(src, filepath.Ext(src)) + ".pdf"
	pdfPath := filepath.Join(workspace, pdf)

	if len(nbs) > 0 {
		err = r.exporter.ExportNotebook(ctx, filepath.Join(workspace, src), pdfPath, service.PDFOptions{
			Filtering:  r.opts.Filtering,
			PageBreaks: r.opts.PageBreaks,
		})
	} else {
		_, err = r.runtime.Eval(ctx, workspace, fmt.Sprintf(r.lang.RenderExpr, quote(src), quote(pdf)))
	}
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", src, err)
	}
	if _, err = os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("export of %s produced no pdf: %w", src, err)
	}
	return pdfPath, nil
}

// submitPDF uploads the PDF once per submitter listed in the identity file.
// A failed address does not stop the others; all failures are returned joined.
func (r *RRunner) submitPDF(ctx context.Context, uploader service.Uploader, identityPath, pdfPath string) error {
	data, err := os.ReadFile(identityPath)
	if err != nil {
		return fmt.Errorf("failed to read submitter identities: %w", err)
	}
	var id identity
	if err = json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("failed to parse %s: %w", identityPath, err)
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()
	pdf, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to map pdf: %w", err)
	}
	defer pdf.Unmap()

	var (
		uploaded []string
		errs     []error
	)
	for _, u := range id.Users {
		err := uploader.UploadPDFSubmission(ctx, r.opts.CourseID, r.opts.AssignmentID, u.Email, pdfPath, pdf)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to upload for %s: %w", u.Email, err))
			continue
		}
		uploaded = append(uploaded, u.Email)
	}
	if len(uploaded) > 0 {
		r.log.InfoContext(ctx, "Successfully uploaded submissions for: "+strings.Join(uploaded, ", "),
			logger.String("pdf", pdfPath))
	}
	return errors.Join(errs...)
}
