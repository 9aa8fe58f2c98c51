package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/to404hanga/online_judge_autograder/pb"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestPrepareWorkspaceFile(t *testing.T) {
	template := t.TempDir()
	writeFile(t, filepath.Join(template, "tests", "q1.R"), "test")
	subs := t.TempDir()
	writeFile(t, filepath.Join(subs, "alice_1_hw.ipynb"), "{}")

	dir, err := PrepareWorkspace(t.TempDir(), template, &pb.GradingTask{SubmissionsDir: subs, Filename: "alice_1_hw.ipynb"})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "tests", "q1.R"))
	require.NoError(t, err)
	assert.Equal(t, "test", string(b))
	b, err = os.ReadFile(filepath.Join(dir, "submission", "alice_1_hw.ipynb"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}

func TestPrepareWorkspaceDirectory(t *testing.T) {
	subs := t.TempDir()
	writeFile(t, filepath.Join(subs, "submission_1", "hw.Rmd"), "rmd")
	writeFile(t, filepath.Join(subs, "submission_1", "data", "x.csv"), "1,2")

	dir, err := PrepareWorkspace(t.TempDir(), "", &pb.GradingTask{SubmissionsDir: subs, Filename: "submission_1"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "submission", "hw.Rmd"))
	assert.FileExists(t, filepath.Join(dir, "submission", "data", "x.csv"))
	assert.NoDirExists(t, filepath.Join(dir, "submission", "submission_1"))
}

func TestPrepareWorkspaceErrors(t *testing.T) {
	root := t.TempDir()
	subs := t.TempDir()

	_, err := PrepareWorkspace(root, "", &pb.GradingTask{SubmissionsDir: subs, Filename: "../escape.R"})
	require.Error(t, err)

	_, err = PrepareWorkspace(root, "", &pb.GradingTask{SubmissionsDir: subs, Filename: "missing.R"})
	require.Error(t, err)

	writeFile(t, filepath.Join(subs, "a.R"), "x")
	_, err = PrepareWorkspace(root, filepath.Join(root, "no-template"), &pb.GradingTask{SubmissionsDir: subs, Filename: "a.R"})
	require.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrepareWorkspaceWritesIdentity(t *testing.T) {
	template := t.TempDir()
	writeFile(t, filepath.Join(template, "submission_metadata.json"), `{"users": [{"email": "ta@example.com"}]}`)
	subs := t.TempDir()
	writeFile(t, filepath.Join(subs, "submission_1.ipynb"), "{}")

	dir, err := PrepareWorkspace(t.TempDir(), template, &pb.GradingTask{
		SubmissionsDir: subs,
		Filename:       "submission_1.ipynb",
		Emails:         []string{"ann@example.com", "bob@example.com"},
	})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "submission_metadata.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"users": [{"email": "ann@example.com"}, {"email": "bob@example.com"}]}`, string(b))
}

func TestPrepareWorkspaceDropsTemplateIdentity(t *testing.T) {
	template := t.TempDir()
	writeFile(t, filepath.Join(template, "submission_metadata.json"), `{"users": [{"email": "ta@example.com"}]}`)
	subs := t.TempDir()
	writeFile(t, filepath.Join(subs, "alice_1_hw.ipynb"), "{}")

	dir, err := PrepareWorkspace(t.TempDir(), template, &pb.GradingTask{SubmissionsDir: subs, Filename: "alice_1_hw.ipynb"})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "submission_metadata.json"))
}
