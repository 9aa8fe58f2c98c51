// Package metadata normalizes submission exports from learning-management
// systems into one ordered list of identifier → filename records.
package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports a metadata source with the wrong shape.
	ErrValidation = errors.New("invalid metadata")
	// ErrParse reports an identifier that cannot be extracted from a filename.
	ErrParse = errors.New("cannot parse identifier")
)

type Format string

const (
	FormatGradescope Format = "gradescope"
	FormatCanvas     Format = "canvas"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
)

// Record maps one submitter to the file they submitted. Emails lists every
// address the graded PDF is uploaded for, when the export provides them.
type Record struct {
	Identifier string   `json:"identifier" yaml:"identifier" csv:"identifier"`
	Filename   string   `json:"filename" yaml:"filename" csv:"filename"`
	Emails     []string `json:"emails,omitempty" yaml:"emails,omitempty" csv:"-"`
}

// Source is the read-only view every export format is normalized into.
type Source interface {
	Records() []Record
	Identifiers() []string
	Filenames() []string
}

// Open builds the Source for the given export format. Directory-based formats
// (gradescope, canvas) take the submissions directory; generic formats take
// the metadata file path.
func Open(format Format, path string) (Source, error) {
	switch format {
	case FormatGradescope:
		return NewGradescope(path)
	case FormatCanvas:
		return NewCanvas(path)
	case FormatJSON:
		return NewJSON(path)
	case FormatYAML:
		return NewYAML(path)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidation, format)
	}
}

type source struct {
	records []Record
}

var _ Source = (*source)(nil)

// newSource freezes records, rejecting a filename that appears twice.
func newSource(records []Record) (*source, error) {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.Filename]; ok {
			return nil, fmt.Errorf("%w: duplicate filename %q", ErrValidation, r.Filename)
		}
		seen[r.Filename] = struct{}{}
	}
	return &source{records: records}, nil
}

func (s *source) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	for i := range out {
		if out[i].Emails != nil {
			out[i].Emails = append([]string(nil), out[i].Emails...)
		}
	}
	return out
}

func (s *source) Identifiers() []string {
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Identifier)
	}
	return out
}

func (s *source) Filenames() []string {
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Filename)
	}
	return out
}
