package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var requiredKeys = []string{"identifier", "filename"}

// NewJSON loads a JSON list of {"identifier": ..., "filename": ...} objects.
func NewJSON(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read json metadata: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrValidation, path, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: unexpected content after the metadata list", ErrValidation, path)
	}
	return genericSource("JSON", v)
}

// NewYAML loads a YAML sequence of mappings with identifier and filename keys.
func NewYAML(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read yaml metadata: %w", err)
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrValidation, path, err)
	}
	return genericSource("YAML", v)
}

func genericSource(kind string, v any) (Source, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s metadata is not a list", ErrValidation, kind)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		fields, ok := asMapping(item)
		if !ok {
			return nil, fmt.Errorf("%w: %s metadata item %d is not a mapping", ErrValidation, kind, i)
		}
		values := make(map[string]string, len(requiredKeys))
		for _, key := range requiredKeys {
			raw, ok := fields[key]
			if !ok {
				return nil, fmt.Errorf("%w: %s metadata item %d does not contain %q key", ErrValidation, kind, i, key)
			}
			// an anonymous submission still has a file to grade
			if raw == nil && key == "identifier" {
				continue
			}
			s, ok := scalarString(raw)
			if !ok {
				return nil, fmt.Errorf("%w: %s metadata item %d: %q is not a scalar", ErrValidation, kind, i, key)
			}
			values[key] = s
		}
		emails, err := emailList(fields["emails"])
		if err != nil {
			return nil, fmt.Errorf("%w: %s metadata item %d: %v", ErrValidation, kind, i, err)
		}
		records = append(records, Record{Identifier: values["identifier"], Filename: values["filename"], Emails: emails})
	}
	return newSource(records)
}

// asMapping accepts both map shapes yaml.v3 may produce.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(s), true
	default:
		return "", false
	}
}

// emailList reads the optional emails key: absent, null or a list of strings.
func emailList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, errors.New(`"emails" is not a list`)
	}
	emails := make([]string, 0, len(items))
	for _, item := range items {
		email, ok := item.(string)
		if !ok || email == "" {
			return nil, errors.New(`"emails" must hold non-empty strings`)
		}
		emails = append(emails, email)
	}
	return emails, nil
}
