package consumer

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

var consumedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "autograder",
	Subsystem: "consumer",
	Name:      "messages_total",
	Help:      "Total number of consumed messages by topic and outcome.",
}, []string{"topic", "result"})

func init() {
	prometheus.MustRegister(consumedTotal)
}

type MessageHandler func(ctx context.Context, msg *sarama.ConsumerMessage) error

// GroupHandler hands every claimed message to handler and marks it consumed
// whether or not handling succeeded; a failing message is logged, never
// redelivered.
type GroupHandler struct {
	handler MessageHandler
	log     loggerv2.Logger
}

func NewGroupHandler(handler MessageHandler, log loggerv2.Logger) sarama.ConsumerGroupHandler {
	return &GroupHandler{
		handler: handler,
		log:     log,
	}
}

func (h *GroupHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.log.InfoContext(session.Context(), "Consumer group session setup", logger.Any("claims", session.Claims()))
	return nil
}

func (h *GroupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	h.log.InfoContext(session.Context(), "Consumer group session cleanup")
	return nil
}

func (h *GroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		ctx := loggerv2.ContextWithFields(session.Context(),
			logger.String("topic", msg.Topic),
			logger.Any("partition", msg.Partition),
			logger.Any("offset", msg.Offset),
		)
		result := "success"
		if err := h.handler(ctx, msg); err != nil {
			result = "error"
			h.log.ErrorContext(ctx, "Failed to process message", logger.Error(err))
		}
		consumedTotal.WithLabelValues(msg.Topic, result).Inc()
		session.MarkMessage(msg, "")
	}
	return nil
}
