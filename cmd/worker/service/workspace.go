package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/to404hanga/online_judge_autograder/executor"
	"github.com/to404hanga/online_judge_autograder/pb"
)

// PrepareWorkspace creates a fresh autograder directory under root holding
// the template files and the task's submission in its submission directory.
// A directory submission has its contents copied, a file is copied as is.
// The identity file lists the task's submitters only; one shipped with the
// template is dropped.
func PrepareWorkspace(root, templateDir string, task *pb.GradingTask) (dir string, err error) {
	if task.Filename == "" || filepath.Base(task.Filename) != task.Filename {
		return "", fmt.Errorf("invalid submission filename %q", task.Filename)
	}
	src := filepath.Join(task.SubmissionsDir, task.Filename)
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to stat submission: %w", err)
	}

	dir, err = os.MkdirTemp(root, "autograder-")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
			dir = ""
		}
	}()

	if templateDir != "" {
		if err = copyTree(templateDir, dir); err != nil {
			return dir, fmt.Errorf("failed to copy autograder template: %w", err)
		}
	}
	sub := filepath.Join(dir, executor.SubmissionDir)
	if err = os.MkdirAll(sub, 0755); err != nil {
		return dir, fmt.Errorf("failed to create submission directory: %w", err)
	}
	if info.IsDir() {
		err = copyTree(src, sub)
	} else {
		err = copyFile(src, filepath.Join(sub, task.Filename), info.Mode().Perm())
	}
	if err != nil {
		return dir, fmt.Errorf("failed to copy submission: %w", err)
	}
	if err = writeIdentity(filepath.Join(dir, executor.IdentityFile), task.Emails); err != nil {
		return dir, fmt.Errorf("failed to write submitter identities: %w", err)
	}
	return dir, nil
}

type identityUser struct {
	Email string `json:"email"`
}

func writeIdentity(path string, emails []string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if len(emails) == 0 {
		return nil
	}
	users := make([]identityUser, 0, len(emails))
	for _, email := range emails {
		users = append(users, identityUser{Email: email})
	}
	data, err := json.Marshal(map[string][]identityUser{"users": users})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dest string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	_, err = io.Copy(out, in)
	return err
}
