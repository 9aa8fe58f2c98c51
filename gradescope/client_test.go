package gradescope

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadPDFSubmission(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/courses/12/assignments/34/submissions", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("access-token"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ann@example.com", r.FormValue("owner_email"))
		f, hdr, err := r.FormFile("pdf_attachment")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "hw1.pdf", hdr.Filename)
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	err := c.UploadPDFSubmission(context.Background(), "12", "34", "ann@example.com", "sub/hw1.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestUploadPDFSubmissionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such student", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := Factory(srv.URL)("secret").UploadPDFSubmission(context.Background(), "1", "2", "x@example.com", "a.pdf", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "no such student")
}
