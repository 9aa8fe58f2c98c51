// Package gradescope uploads PDF submissions to Gradescope for manual grading.
package gradescope

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/to404hanga/online_judge_autograder/executor/service"
)

const DefaultBaseURL = "https://www.gradescope.com"

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ service.Uploader = (*Client)(nil)

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Factory returns a service.UploaderFactory bound to baseURL.
func Factory(baseURL string) service.UploaderFactory {
	return func(token string) service.Uploader {
		return NewClient(baseURL, token)
	}
}

// UploadPDFSubmission creates a submission owned by email on the given assignment.
func (c *Client) UploadPDFSubmission(ctx context.Context, courseID, assignmentID, email, filename string, pdf []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("owner_email", email); err != nil {
		return err
	}
	part, err := w.CreateFormFile("pdf_attachment", filepath.Base(filename))
	if err != nil {
		return err
	}
	if _, err = part.Write(pdf); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/courses/%s/assignments/%s/submissions", c.baseURL, courseID, assignmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("access-token", c.token)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload pdf for %s: %w", email, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload pdf for %s: %s: %s", email, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
