package event

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/gogo/protobuf/proto"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
	log      loggerv2.Logger
}

func NewSaramaProducer(producer sarama.SyncProducer, log loggerv2.Logger) Producer {
	return &SaramaProducer{producer: producer, log: log}
}

func (s *SaramaProducer) Publish(ctx context.Context, topic, key string, msg proto.Message) error {
	value, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", topic, err)
	}
	s.log.DebugContext(ctx, "message published",
		logger.String("topic", topic),
		logger.Any("partition", partition),
		logger.Any("offset", offset),
	)
	return nil
}
