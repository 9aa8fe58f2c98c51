package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GradescopeMetadataFile is the sidecar written next to a Gradescope export.
const GradescopeMetadataFile = "submission_metadata.yml"

type gradescopeEntry struct {
	Submitters []struct {
		SID   yaml.Node `yaml:":sid"`
		Email string    `yaml:":email"`
	} `yaml:":submitters"`
}

// NewGradescope reads the sidecar metadata of a Gradescope export. Each file
// is credited to its first listed submitter and carries the emails of all
// submitters; records keep document order.
func NewGradescope(submissionsDir string) (Source, error) {
	path := filepath.Join(submissionsDir, GradescopeMetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gradescope metadata: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrValidation, path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s is not a mapping of filenames", ErrValidation, path)
	}

	root := doc.Content[0]
	records := make([]Record, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		filename := root.Content[i].Value
		var entry gradescopeEntry
		if err := root.Content[i+1].Decode(&entry); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrValidation, filename, err)
		}
		if len(entry.Submitters) == 0 {
			return nil, fmt.Errorf("%w: entry %q has no submitters", ErrValidation, filename)
		}
		sid := entry.Submitters[0].SID
		if sid.Kind != yaml.ScalarNode || sid.Value == "" {
			return nil, fmt.Errorf("%w: entry %q: first submitter has no :sid", ErrValidation, filename)
		}
		var emails []string
		for _, sub := range entry.Submitters {
			if sub.Email != "" {
				emails = append(emails, sub.Email)
			}
		}
		records = append(records, Record{Identifier: sid.Value, Filename: filename, Emails: emails})
	}
	return newSource(records)
}
