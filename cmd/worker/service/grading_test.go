package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/to404hanga/online_judge_autograder/cmd/worker/config"
	execsvc "github.com/to404hanga/online_judge_autograder/executor/service"
	"github.com/to404hanga/online_judge_autograder/pb"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

type fakeRunner struct {
	dirs []string
	res  *execsvc.Results
	err  error
}

func (r *fakeRunner) Run(ctx context.Context, autograderDir string) (*execsvc.Results, error) {
	r.dirs = append(r.dirs, autograderDir)
	if _, err := os.Stat(filepath.Join(autograderDir, "submission", "alice.R")); err != nil {
		return nil, err
	}
	return r.res, r.err
}

func newTestService(t *testing.T, runner *fakeRunner) (*GradingService, *pb.GradingTask) {
	t.Helper()
	subs := t.TempDir()
	writeFile(t, filepath.Join(subs, "alice.R"), "x <- 1")
	s := &GradingService{
		log:    loggerv2.GetGlobalLogger(),
		runner: runner,
		cfg:    config.WorkerConfig{WorkDir: t.TempDir()},
	}
	task := &pb.GradingTask{RequestId: "r1", BatchId: "b1", Identifier: "alice", Filename: "alice.R", SubmissionsDir: subs}
	return s, task
}

func TestGrade(t *testing.T) {
	res, err := execsvc.ParseResults(`{"test_file_results":[{"test_case_results":[{"test_case":{"points":1},"passed":true},{"test_case":{"points":2},"passed":false}]}]}`)
	require.NoError(t, err)
	runner := &fakeRunner{res: res}
	s, task := newTestService(t, runner)

	got := s.grade(context.Background(), task)
	assert.Empty(t, got.Error)
	assert.Equal(t, "alice", got.Identifier)
	assert.Equal(t, "b1", got.BatchId)
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, 3.0, got.Possible)
	assert.True(t, json.Valid(got.ResultsJson))

	require.Len(t, runner.dirs, 1)
	assert.NoDirExists(t, runner.dirs[0])
}

func TestGradeRunnerFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("no gradable file")}
	s, task := newTestService(t, runner)
	s.cfg.KeepWorkspace = true

	got := s.grade(context.Background(), task)
	assert.Equal(t, "no gradable file", got.Error)
	assert.Zero(t, got.Possible)
	require.Len(t, runner.dirs, 1)
	assert.DirExists(t, runner.dirs[0])
}

func TestGradeMissingSubmission(t *testing.T) {
	runner := &fakeRunner{}
	s, task := newTestService(t, runner)
	task.Filename = "bob.R"

	got := s.grade(context.Background(), task)
	assert.NotEmpty(t, got.Error)
	assert.Empty(t, runner.dirs)
}
