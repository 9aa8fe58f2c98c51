package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/to404hanga/online_judge_autograder/executor/service"
)

const gradeOutput = `Loading required package: testthat
{"test_file_results":[{"filename":"q1.R","test_case_results":[{"passed":true,"message":"","test_case":{"name":"q1a","points":2,"hidden":false}},{"passed":false,"message":"wrong","test_case":{"name":"q1b","points":1,"hidden":true}}]}]}`

var quoted = regexp.MustCompile(`"([^"]*)"`)

// fakeRuntime mimics the R expressions the pipeline evaluates.
type fakeRuntime struct {
	mu        sync.Mutex
	exprs     []string
	output    string
	gradeErr  error
	renderErr error
}

func (f *fakeRuntime) Eval(ctx context.Context, dir, expr string) (string, error) {
	f.mu.Lock()
	f.exprs = append(f.exprs, expr)
	f.mu.Unlock()

	args := quoted.FindAllStringSubmatch(expr, -1)
	switch {
	case strings.HasPrefix(expr, "knitr::purl("):
		return "", os.WriteFile(filepath.Join(dir, args[1][1]), []byte("x <- 1\n"), 0644)
	case strings.HasPrefix(expr, "rmarkdown::render("):
		if f.renderErr != nil {
			return "", f.renderErr
		}
		return "", os.WriteFile(filepath.Join(dir, args[1][1]), []byte("%PDF-1.4 rmd"), 0644)
	case strings.HasPrefix(expr, "cat(ottr::run_autograder("):
		if f.gradeErr != nil {
			return "", f.gradeErr
		}
		if f.output != "" {
			return f.output, nil
		}
		return gradeOutput, nil
	}
	return "", errors.New("unexpected expression: " + expr)
}

func (f *fakeRuntime) Close(ctx context.Context) error { return nil }

func (f *fakeRuntime) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.exprs {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

type fakeExporter struct {
	calls []string
	opts  service.PDFOptions
	err   error
}

func (e *fakeExporter) ExportNotebook(ctx context.Context, src, dest string, opts service.PDFOptions) error {
	e.calls = append(e.calls, filepath.Base(src))
	e.opts = opts
	if e.err != nil {
		return e.err
	}
	return os.WriteFile(dest, []byte("%PDF-1.4 notebook"), 0644)
}

type upload struct {
	course, assignment, email, file, body string
}

type fakeUploader struct {
	tokens  []string
	uploads []upload
	failFor map[string]bool
}

func (u *fakeUploader) factory(token string) service.Uploader {
	u.tokens = append(u.tokens, token)
	return u
}

func (u *fakeUploader) UploadPDFSubmission(ctx context.Context, courseID, assignmentID, email, filename string, pdf []byte) error {
	if u.failFor[email] {
		return errors.New("rejected")
	}
	u.uploads = append(u.uploads, upload{courseID, assignmentID, email, filepath.Base(filename), string(pdf)})
	return nil
}

// newAutograderDir creates <tmp>/submission holding files and returns <tmp>.
func newAutograderDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	sub := filepath.Join(dir, SubmissionDir)
	require.NoError(t, os.Mkdir(sub, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(sub, name), []byte(content), 0644))
	}
	return dir
}

const notebookJSON = `{
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": ["# Homework 1\n", "Answer below."]},
  {"cell_type": "code", "metadata": {}, "outputs": [], "source": ["x <- 2\n", "y <- x * 3\n"]},
  {"cell_type": "code", "metadata": {}, "outputs": [], "source": "print(y)"}
 ],
 "metadata": {"kernelspec": {"display_name": "R", "language": "R", "name": "ir"}},
 "nbformat": 4,
 "nbformat_minor": 4
}`
