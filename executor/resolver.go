package executor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/to404hanga/online_judge_autograder/executor/config"
	"github.com/to404hanga/online_judge_autograder/executor/service"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

var (
	ErrAmbiguous      = errors.New("ambiguous submission")
	ErrNoGradableFile = errors.New("no gradable files found in submission")
)

// stage is one step of the resolution chain. A stage with a nil convert is
// terminal: its single match is the file to grade.
type stage struct {
	kind    string
	glob    string
	convert func(ctx context.Context, dir, name string) error
}

// Resolver locates the one gradable script in a submission workspace,
// converting notebooks and literate documents on the way.
type Resolver struct {
	log     loggerv2.Logger
	runtime service.Runtime
	lang    config.LanguageConfig
}

func NewResolver(log loggerv2.Logger, runtime service.Runtime, lang config.LanguageConfig) *Resolver {
	return &Resolver{
		log:     log,
		runtime: runtime,
		lang:    lang,
	}
}

func (r *Resolver) stages() []stage {
	return []stage{
		{kind: "notebook", glob: r.lang.NotebookGlob, convert: r.notebookToLiterate},
		{kind: "literate", glob: r.lang.LiterateGlob, convert: r.literateToScript},
		{kind: "script", glob: r.lang.ScriptGlob},
	}
}

// Resolve returns the name, relative to dir, of the script to grade. Every
// stage globs the workspace again so it sees files written by earlier stages.
func (r *Resolver) Resolve(ctx context.Context, dir string) (string, error) {
	for _, st := range r.stages() {
		matches, err := globNames(dir, st.glob)
		if err != nil {
			return "", err
		}
		if len(matches) > 1 {
			return "", fmt.Errorf("%w: more than one %s file found: %s", ErrAmbiguous, st.kind, strings.Join(matches, ", "))
		}
		if st.convert == nil {
			if len(matches) == 0 {
				return "", ErrNoGradableFile
			}
			return matches[0], nil
		}
		if len(matches) == 1 {
			r.log.DebugContext(ctx, "converting submission", logger.String("kind", st.kind), logger.String("file", matches[0]))
			if err := st.convert(ctx, dir, matches[0]); err != nil {
				return "", fmt.Errorf("failed to convert %s %s: %w", st.kind, matches[0], err)
			}
		}
	}
	return "", ErrNoGradableFile
}

func (r *Resolver) notebookToLiterate(ctx context.Context, dir, name string) error {
	_, err := convertNotebook(filepath.Join(dir, name), r.lang)
	return err
}

func (r *Resolver) literateToScript(ctx context.Context, dir, name string) error {
	script := strings.TrimSuffix(name, filepath.Ext(name)) + r.lang.ScriptExt
	_, err := r.runtime.Eval(ctx, dir, fmt.Sprintf(r.lang.ExtractExpr, quote(name), quote(script)))
	return err
}

// globNames returns the base names in dir matching pattern, sorted. Hidden
// files (macOS "._" resource forks and the like) never match.
func globNames(dir, pattern string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// quote renders s as a double-quoted string literal of the runtime language.
func quote(s string) string {
	return strconv.Quote(s)
}
