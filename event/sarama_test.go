package event

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/to404hanga/online_judge_autograder/constants"
	"github.com/to404hanga/online_judge_autograder/pb"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

func TestPublish(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	sent := &pb.GradingResult{BatchId: "b1", Identifier: "alice", Filename: "alice_1.ipynb", Score: 2, Possible: 3}
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got pb.GradingResult
		if err := proto.Unmarshal(val, &got); err != nil {
			return err
		}
		assert.Equal(t, sent.Identifier, got.Identifier)
		assert.Equal(t, sent.Score, got.Score)
		return nil
	})

	p := NewSaramaProducer(sp, loggerv2.GetGlobalLogger())
	require.NoError(t, p.Publish(context.Background(), constants.GradingResultTopic, "b1", sent))
}

func TestPublishFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewSaramaProducer(sp, loggerv2.GetGlobalLogger())
	err := p.Publish(context.Background(), constants.GradingResultTopic, "b1", &pb.GradingResult{})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}
