// Package generate packages an assignment into the autograder zip a
// Gradescope programming assignment is configured with.
package generate

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/to404hanga/online_judge_autograder/executor/config"
	"gopkg.in/yaml.v3"
)

const (
	ZipName = "autograder.zip"

	DefaultConfigFile       = "otter_config.json"
	DefaultRequirementsFile = "requirements.R"

	testsDir = "tests"
	filesDir = "files"
)

var ErrConfig = errors.New("invalid assignment configuration")

// Options describes one assignment. Empty ConfigPath and RequirementsPath
// pick up the default files in the working directory when they exist.
type Options struct {
	TestsDir              string
	OutputDir             string
	ConfigPath            string
	RequirementsPath      string
	OverwriteRequirements bool
	// Files are copied under files/ and must sit inside BaseDir, which
	// defaults to the working directory.
	Files   []string
	BaseDir string
	Token   string
}

// Autograder writes <OutputDir>/autograder.zip and returns its path. An
// existing zip is replaced.
func Autograder(opts Options) (string, error) {
	raw, err := readConfig(opts.ConfigPath)
	if err != nil {
		return "", err
	}
	cfg, err := autograderConfig(raw, opts.Token)
	if err != nil {
		return "", err
	}
	if cfg.Token != "" {
		raw["token"] = cfg.Token
	}

	requirements, err := readRequirements(opts.RequirementsPath)
	if err != nil {
		return "", err
	}
	tests, err := testFiles(opts.TestsDir)
	if err != nil {
		return "", err
	}
	base := opts.BaseDir
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	extra, err := extraFiles(base, opts.Files)
	if err != nil {
		return "", err
	}

	entries := map[string][]byte{}
	for name, tmpl := range templates {
		var b strings.Builder
		if err = tmpl.Execute(&b, templateData{
			Requirements: requirements,
			Overwrite:    opts.OverwriteRequirements,
		}); err != nil {
			return "", fmt.Errorf("failed to render %s: %w", name, err)
		}
		entries[name] = []byte(b.String())
	}
	if entries[configEntry], err = yaml.Marshal(map[string]config.AutograderConfig{cfg.Key(): cfg}); err != nil {
		return "", fmt.Errorf("failed to encode autograder config: %w", err)
	}
	if entries[DefaultConfigFile], err = json.MarshalIndent(raw, "", "  "); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", DefaultConfigFile, err)
	}

	zipPath := filepath.Join(opts.OutputDir, ZipName)
	if err = os.Remove(zipPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to remove old zip: %w", err)
	}
	files := make(map[string]string, len(tests)+len(extra))
	for _, p := range tests {
		files[testsDir+"/"+filepath.Base(p)] = p
	}
	for name, p := range extra {
		files[filesDir+"/"+name] = p
	}
	if err = writeZip(zipPath, entries, files); err != nil {
		return "", err
	}
	return zipPath, nil
}

// readConfig returns the assignment configuration as written, so it can be
// shipped back unchanged.
func readConfig(path string) (map[string]any, error) {
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return map[string]any{}, nil
		}
		path = DefaultConfigFile
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not find configuration file %s: %w", path, err)
	}
	raw := map[string]any{}
	if err = json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	return raw, nil
}

func autograderConfig(raw map[string]any, token string) (config.AutograderConfig, error) {
	cfg := config.AutograderConfig{
		Language:   config.LanguageR,
		Backend:    "local",
		Filtering:  true,
		PageBreaks: true,
	}
	_, hasCourse := raw["course_id"]
	_, hasAssignment := raw["assignment_id"]
	if hasCourse != hasAssignment {
		return cfg, fmt.Errorf("%w: course_id and assignment_id must be set together", ErrConfig)
	}
	if hasCourse {
		cfg.CourseID = stringValue(raw["course_id"])
		cfg.AssignmentID = stringValue(raw["assignment_id"])
		if token == "" {
			token = stringValue(raw["token"])
		}
		if token == "" {
			return cfg, fmt.Errorf("%w: uploading to a course needs a Gradescope token", ErrConfig)
		}
		cfg.Token = token
	}
	for key, dst := range map[string]*bool{"pdf": &cfg.PDF, "filtering": &cfg.Filtering, "pagebreaks": &cfg.PageBreaks} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return cfg, fmt.Errorf("%w: %s must be a boolean", ErrConfig, key)
		}
		*dst = b
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return cfg, nil
}

// stringValue renders ids the way they were written; JSON numbers decode as
// float64.
func stringValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

func readRequirements(path string) (string, error) {
	if path == "" {
		if _, err := os.Stat(DefaultRequirementsFile); err != nil {
			return "", nil
		}
		path = DefaultRequirementsFile
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("requirements file %s not found: %w", path, err)
	}
	return string(b), nil
}

// testFiles lists the R test files directly inside dir.
func testFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tests directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if ext := filepath.Ext(name); ext == ".R" || ext == ".r" {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out, nil
}

// extraFiles maps slash separated names relative to base to their paths.
// Directories are added recursively.
func extraFiles(base string, paths []string) (map[string]string, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(base, p)
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s is not inside %s", p, base)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("could not find file or directory %s: %w", p, err)
		}
		if !info.IsDir() {
			out[filepath.ToSlash(rel)] = abs
			continue
		}
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			r, err := filepath.Rel(base, path)
			if err != nil {
				return err
			}
			out[filepath.ToSlash(r)] = path
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}
	return out, nil
}

func writeZip(path string, entries map[string][]byte, files map[string]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create zip: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(f)

	for _, name := range sortedKeys(entries) {
		mode := fs.FileMode(0644)
		if name == runScript || name == setupScript {
			mode = 0755
		}
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if _, err = w.Write(entries[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(files) {
		if err = addFile(zw, name, files[name]); err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
