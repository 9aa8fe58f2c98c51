package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResults(t *testing.T) {
	out := "── Attaching packages ──\n" +
		`{"test_file_results":[{"filename":"q1.R","test_case_results":[` +
		`{"passed":true,"message":"","test_case":{"name":"a","points":1.5}},` +
		`{"passed":false,"message":"no","test_case":{"name":"b","points":2}}]},` +
		`{"filename":"q2.R","test_case_results":[{"passed":true,"test_case":{"name":"c","points":1}}]}]}` + "\n"

	r, err := ParseResults(out)
	require.NoError(t, err)
	require.Len(t, r.TestFileResults, 2)
	assert.Equal(t, "q1.R", r.TestFileResults[0].Filename)
	assert.Equal(t, 2.5, r.Score())
	assert.Equal(t, 4.5, r.Possible())
	assert.JSONEq(t, string(r.Raw), `{"test_file_results":[{"filename":"q1.R","test_case_results":[`+
		`{"passed":true,"message":"","test_case":{"name":"a","points":1.5}},`+
		`{"passed":false,"message":"no","test_case":{"name":"b","points":2}}]},`+
		`{"filename":"q2.R","test_case_results":[{"passed":true,"test_case":{"name":"c","points":1}}]}]}`)
}

func TestParseResultsMalformed(t *testing.T) {
	for _, out := range []string{
		"",
		"Error: package 'ottr' not found",
		"{not json",
		`{"other": 1}`,
	} {
		_, err := ParseResults(out)
		assert.ErrorIs(t, err, ErrMalformedOutput, "output %q", out)
	}
}
