package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/to404hanga/online_judge_autograder/pb"
)

func TestRecordFromResult(t *testing.T) {
	rec, err := RecordFromResult(&pb.GradingResult{
		BatchId:     "b1",
		Identifier:  "alice",
		Filename:    "alice_1.ipynb",
		Score:       2,
		Possible:    3,
		ResultsJson: []byte(`{"test_file_results":[]}`),
		DurationMs:  1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", rec.BatchID)
	assert.Equal(t, "alice", rec.Identifier)
	assert.Equal(t, 2.0, rec.Score)
	assert.Equal(t, 3.0, rec.Possible)
	assert.Equal(t, `{"test_file_results":[]}`, rec.Results)
	assert.Empty(t, rec.Error)
	assert.Equal(t, int64(1500), rec.DurationMs)
}

func TestRecordFromFailedResult(t *testing.T) {
	rec, err := RecordFromResult(&pb.GradingResult{BatchId: "b1", Filename: "bob.R", Error: "no gradable file"})
	require.NoError(t, err)
	assert.Equal(t, "no gradable file", rec.Error)
	assert.Empty(t, rec.Results)
}

func TestRecordFromResultRequiresKey(t *testing.T) {
	_, err := RecordFromResult(&pb.GradingResult{Filename: "bob.R"})
	require.Error(t, err)
	_, err = RecordFromResult(&pb.GradingResult{BatchId: "b1"})
	require.Error(t, err)
}
