package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/to404hanga/online_judge_autograder/executor/config"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

// LocalRuntime runs the language interpreter as a child process on the host.
type LocalRuntime struct {
	log         loggerv2.Logger
	interpreter string
	runtimePath string
}

var _ Runtime = (*LocalRuntime)(nil)

func NewLocalRuntime(log loggerv2.Logger, lang config.Language, runtimePath string) (Runtime, error) {
	cfg, ok := config.LanguageConfigs[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %q", lang)
	}
	// exec resolves the binary against the grader's PATH, not the child's.
	interpreter := cfg.Interpreter
	if runtimePath != "" {
		candidate := filepath.Join(runtimePath, "bin", cfg.Interpreter)
		if _, err := os.Stat(candidate); err == nil {
			interpreter = candidate
		}
	}
	return &LocalRuntime{
		log:         log,
		interpreter: interpreter,
		runtimePath: runtimePath,
	}, nil
}

func (r *LocalRuntime) Eval(ctx context.Context, dir, expr string) (string, error) {
	cmd := exec.CommandContext(ctx, r.interpreter, "-e", expr)
	cmd.Dir = dir
	cmd.Env = r.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.DebugContext(ctx, "eval", logger.String("dir", dir), logger.String("expr", expr))
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s failed: %w: %s", r.interpreter, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// env prefixes PATH for the child only; the grader's own environment is untouched.
func (r *LocalRuntime) env() []string {
	env := os.Environ()
	if r.runtimePath == "" {
		return env
	}
	bin := filepath.Join(r.runtimePath, "bin")
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + bin + string(os.PathListSeparator) + strings.TrimPrefix(kv, "PATH=")
			return env
		}
	}
	return append(env, "PATH="+bin)
}

func (r *LocalRuntime) Close(ctx context.Context) error {
	return nil
}
