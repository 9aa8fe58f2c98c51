package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OtterExporter renders notebooks with `otter export` through LaTeX.
type OtterExporter struct {
	Binary string
}

var _ NotebookExporter = (*OtterExporter)(nil)

func NewOtterExporter() *OtterExporter {
	return &OtterExporter{Binary: "otter"}
}

func (e *OtterExporter) ExportNotebook(ctx context.Context, src, dest string, opts PDFOptions) error {
	args := []string{"export", "--exporter", "latex"}
	if opts.Filtering {
		args = append(args, "--filtering")
	}
	if opts.PageBreaks {
		args = append(args, "--pagebreaks")
	}
	args = append(args, src, dest)

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("otter export %s: %w: %s", src, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
