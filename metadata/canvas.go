package metadata

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// NewCanvas builds records for a Canvas export, which ships no metadata file:
// every file name starts with the submitter's login, e.g.
// alice_12345_67890_Alice.ipynb belongs to alice.
func NewCanvas(submissionsDir string) (Source, error) {
	entries, err := os.ReadDir(submissionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	records := make([]Record, 0, len(names))
	for _, name := range names {
		id, err := CanvasIdentifier(name)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{Identifier: id, Filename: name})
	}
	return newSource(records)
}

// CanvasIdentifier returns the text before the first underscore of filename.
func CanvasIdentifier(filename string) (string, error) {
	id, _, ok := strings.Cut(filename, "_")
	if !ok {
		return "", fmt.Errorf("%w: %q has no underscore", ErrParse, filename)
	}
	if id == "" {
		return "", fmt.Errorf("%w: %q starts with an underscore", ErrParse, filename)
	}
	return id, nil
}
