package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/to404hanga/online_judge_autograder/executor/config"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

func newTestResolver(rt *fakeRuntime) *Resolver {
	return NewResolver(loggerv2.GetGlobalLogger(), rt, config.LanguageConfigs[config.LanguageR])
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		want      string
		wantErr   error
		wantPurls int
	}{
		{
			name:    "two notebooks",
			files:   map[string]string{"a.ipynb": notebookJSON, "b.ipynb": notebookJSON},
			wantErr: ErrAmbiguous,
		},
		{
			name:      "one notebook",
			files:     map[string]string{"hw1.ipynb": notebookJSON},
			want:      "hw1.r",
			wantPurls: 1,
		},
		{
			name:      "one literate document",
			files:     map[string]string{"hw1.Rmd": "```{r}\nx <- 1\n```\n"},
			want:      "hw1.r",
			wantPurls: 1,
		},
		{
			name:      "notebook next to its resource fork",
			files:     map[string]string{"hw1.ipynb": notebookJSON, "._hw1.ipynb": "\x00\x05\x16\x07"},
			want:      "hw1.r",
			wantPurls: 1,
		},
		{
			name:    "only hidden scripts",
			files:   map[string]string{".Rprofile.R": "", "._hw1.R": ""},
			wantErr: ErrNoGradableFile,
		},
		{
			name:    "two literate documents",
			files:   map[string]string{"a.Rmd": "", "b.Rmd": ""},
			wantErr: ErrAmbiguous,
		},
		{
			name:    "notebook next to an unrelated literate document",
			files:   map[string]string{"hw1.ipynb": notebookJSON, "notes.Rmd": ""},
			wantErr: ErrAmbiguous,
		},
		{
			name:    "two scripts",
			files:   map[string]string{"a.R": "", "b.r": ""},
			wantErr: ErrAmbiguous,
		},
		{
			name:  "script only",
			files: map[string]string{"hw1.R": "x <- 1\n", "data.csv": "a,b\n"},
			want:  "hw1.R",
		},
		{
			name:    "nothing gradable",
			files:   map[string]string{"README.md": "hi", "data.csv": "a,b\n"},
			wantErr: ErrNoGradableFile,
		},
		{
			name:    "empty workspace",
			files:   map[string]string{},
			wantErr: ErrNoGradableFile,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rt := &fakeRuntime{}
			ws := filepath.Join(newAutograderDir(t, tc.files), SubmissionDir)

			got, err := newTestResolver(rt).Resolve(context.Background(), ws)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Zero(t, rt.count("knitr::purl("))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantPurls, rt.count("knitr::purl("))
			assert.FileExists(t, filepath.Join(ws, got))
		})
	}
}

func TestResolveNotebookConvertsTwice(t *testing.T) {
	rt := &fakeRuntime{}
	ws := filepath.Join(newAutograderDir(t, map[string]string{"hw1.ipynb": notebookJSON}), SubmissionDir)

	got, err := newTestResolver(rt).Resolve(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(t, "hw1.r", got)

	// notebook → literate happens natively, literate → script through the runtime
	assert.FileExists(t, filepath.Join(ws, "hw1.ipynb"))
	assert.FileExists(t, filepath.Join(ws, "hw1.Rmd"))
	assert.Equal(t, []string{`knitr::purl("hw1.Rmd", "hw1.r")`}, rt.exprs)
}

func TestResolveIsIdempotent(t *testing.T) {
	rt := &fakeRuntime{}
	ws := filepath.Join(newAutograderDir(t, map[string]string{"hw1.ipynb": notebookJSON}), SubmissionDir)
	r := newTestResolver(rt)

	first, err := r.Resolve(context.Background(), ws)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(ws, "hw1.ipynb")))
	require.NoError(t, os.Remove(filepath.Join(ws, "hw1.Rmd")))
	rt.exprs = nil

	second, err := r.Resolve(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, rt.exprs)
}

func TestConvertNotebook(t *testing.T) {
	ws := filepath.Join(newAutograderDir(t, map[string]string{"hw1.ipynb": notebookJSON}), SubmissionDir)

	dest, err := convertNotebook(filepath.Join(ws, "hw1.ipynb"), config.LanguageConfigs[config.LanguageR])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "hw1.Rmd"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	want := "---\n" +
		"jupyter:\n" +
		"    kernelspec:\n" +
		"        display_name: R\n" +
		"        language: R\n" +
		"        name: ir\n" +
		"---\n\n" +
		"# Homework 1\nAnswer below.\n\n" +
		"```{r}\nx <- 2\ny <- x * 3\n```\n\n" +
		"```{r}\nprint(y)\n```\n\n"
	assert.Equal(t, want, string(data))
}

func TestConvertNotebookRejectsInvalidJSON(t *testing.T) {
	ws := filepath.Join(newAutograderDir(t, map[string]string{"hw1.ipynb": "not json"}), SubmissionDir)
	_, err := newTestResolver(&fakeRuntime{}).Resolve(context.Background(), ws)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAmbiguous)
}
