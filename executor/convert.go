package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/to404hanga/online_judge_autograder/executor/config"
	"gopkg.in/yaml.v3"
)

type notebook struct {
	Cells []struct {
		CellType string          `json:"cell_type"`
		Source   json.RawMessage `json:"source"`
	} `json:"cells"`
	Metadata struct {
		Kernelspec map[string]any `json:"kernelspec"`
	} `json:"metadata"`
}

// cellSource accepts both encodings nbformat allows: a string or a list of lines.
func cellSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, ""), nil
}

// convertNotebook writes the literate form of nbPath next to it (same base
// name, literate extension) and returns the new file's path. Markdown and raw
// cells are copied verbatim; code cells become fenced chunks.
func convertNotebook(nbPath string, lang config.LanguageConfig) (string, error) {
	data, err := os.ReadFile(nbPath)
	if err != nil {
		return "", fmt.Errorf("failed to read notebook: %w", err)
	}
	var nb notebook
	if err = json.Unmarshal(data, &nb); err != nil {
		return "", fmt.Errorf("failed to parse notebook %s: %w", nbPath, err)
	}

	var out bytes.Buffer
	if len(nb.Metadata.Kernelspec) > 0 {
		header, err := yaml.Marshal(map[string]any{
			"jupyter": map[string]any{"kernelspec": nb.Metadata.Kernelspec},
		})
		if err != nil {
			return "", fmt.Errorf("failed to write front matter: %w", err)
		}
		out.WriteString("---\n")
		out.Write(header)
		out.WriteString("---\n\n")
	}

	chunk := strings.TrimPrefix(lang.ScriptExt, ".")
	for i, cell := range nb.Cells {
		src, err := cellSource(cell.Source)
		if err != nil {
			return "", fmt.Errorf("notebook %s cell %d: %w", nbPath, i, err)
		}
		src = strings.TrimRight(src, "\n")
		switch cell.CellType {
		case "code":
			fmt.Fprintf(&out, "```{%s}\n%s\n```\n\n", chunk, src)
		default:
			out.WriteString(src)
			out.WriteString("\n\n")
		}
	}

	dest := strings.TrimSuffix(nbPath, filepath.Ext(nbPath)) + lang.LiterateExt
	if err = os.WriteFile(dest, out.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return dest, nil
}
