package consumer

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

type SaramaConsumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler sarama.ConsumerGroupHandler
	log     loggerv2.Logger
}

func NewSaramaConsumer(group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, log loggerv2.Logger, topics ...string) Consumer {
	return &SaramaConsumer{
		group:   group,
		topics:  topics,
		handler: handler,
		log:     log,
	}
}

// Start consumes until ctx is done or the group is closed. Consume returns on
// every rebalance, so it is called in a loop.
func (c *SaramaConsumer) Start(ctx context.Context) error {
	c.log.InfoContext(ctx, "Consumer starting", logger.Any("topics", c.topics))
	defer func() {
		if err := c.group.Close(); err != nil && !errors.Is(err, sarama.ErrClosedConsumerGroup) {
			c.log.ErrorContext(ctx, "Failed to close consumer group", logger.Error(err))
		}
	}()
	for {
		if err := c.group.Consume(ctx, c.topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return err
			}
			c.log.ErrorContext(ctx, "Error from consumer", logger.Error(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
