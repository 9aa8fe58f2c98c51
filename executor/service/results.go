package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedOutput = errors.New("malformed runtime output")

type TestCase struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Hidden bool    `json:"hidden"`
}

type TestCaseResult struct {
	TestCase TestCase `json:"test_case"`
	Passed   bool     `json:"passed"`
	Message  string   `json:"message"`
}

type TestFileResult struct {
	Filename        string           `json:"filename"`
	TestCaseResults []TestCaseResult `json:"test_case_results"`
}

// Results is the grading outcome emitted by the runtime.
type Results struct {
	TestFileResults []TestFileResult `json:"test_file_results"`
	// Raw is the JSON document the results were parsed from.
	Raw json.RawMessage `json:"-"`
}

// ParseResults extracts the results document from runtime stdout. The
// document is the last line starting with '{'; anything the runtime printed
// before it (package startup messages) is ignored.
func ParseResults(stdout string) (*Results, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	var doc string
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); strings.HasPrefix(line, "{") {
			doc = line
			break
		}
	}
	if doc == "" {
		return nil, fmt.Errorf("%w: no results document in output", ErrMalformedOutput)
	}

	var r Results
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if r.TestFileResults == nil {
		return nil, fmt.Errorf("%w: missing test_file_results", ErrMalformedOutput)
	}
	r.Raw = json.RawMessage(doc)
	return &r, nil
}

func (r *Results) Score() float64 {
	var total float64
	for _, f := range r.TestFileResults {
		for _, c := range f.TestCaseResults {
			if c.Passed {
				total += c.TestCase.Points
			}
		}
	}
	return total
}

func (r *Results) Possible() float64 {
	var total float64
	for _, f := range r.TestFileResults {
		for _, c := range f.TestCaseResults {
			total += c.TestCase.Points
		}
	}
	return total
}
