package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/gogo/protobuf/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/to404hanga/online_judge_autograder/constants"
	"github.com/to404hanga/online_judge_autograder/consumer"
	"github.com/to404hanga/online_judge_autograder/model"
	"github.com/to404hanga/online_judge_autograder/pb"
	"github.com/to404hanga/pkg404/gotools/retry"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ResultCollectorGroupID = "autograder_result_collector_group"
)

var (
	resultCollectorHandleInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "autograder",
		Subsystem: "resultcollector",
		Name:      "handle_result_in_flight",
		Help:      "Current number of in-flight handleResult operations.",
	})

	resultCollectorHandleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autograder",
		Subsystem: "resultcollector",
		Name:      "handle_result_total",
		Help:      "Total number of handleResult operations.",
	}, []string{"result", "reason"})

	resultCollectorHandleDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "autograder",
		Subsystem: "resultcollector",
		Name:      "handle_result_duration_seconds",
		Help:      "Duration of handleResult operations in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 16),
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		resultCollectorHandleInFlight,
		resultCollectorHandleTotal,
		resultCollectorHandleDurationSeconds,
	)
}

type ResultCollectorService struct {
	log      loggerv2.Logger
	db       *gorm.DB
	consumer consumer.Consumer
}

func NewResultCollectorService(log loggerv2.Logger, cg sarama.ConsumerGroup, db *gorm.DB) *ResultCollectorService {
	s := &ResultCollectorService{
		log: log,
		db:  db,
	}
	handler := consumer.NewGroupHandler(s.handleResult, log)
	s.consumer = consumer.NewSaramaConsumer(cg, handler, log, constants.GradingResultTopic)
	return s
}

func (s *ResultCollectorService) Start(ctx context.Context) error {
	return s.consumer.Start(ctx)
}

func (s *ResultCollectorService) handleResult(ctx context.Context, msg *sarama.ConsumerMessage) (err error) {
	opStartTime := time.Now()
	result := "success"
	reason := "ok"

	resultCollectorHandleInFlight.Inc()
	defer func() {
		resultCollectorHandleInFlight.Dec()
		resultCollectorHandleTotal.WithLabelValues(result, reason).Inc()
		resultCollectorHandleDurationSeconds.WithLabelValues(result).Observe(time.Since(opStartTime).Seconds())
	}()

	var pbr pb.GradingResult
	err = proto.Unmarshal(msg.Value, &pbr)
	if err != nil {
		result = "error"
		reason = "unmarshal_grading_result"
		return fmt.Errorf("failed to unmarshal grading result: %w", err)
	}
	ctx = loggerv2.ContextWithFields(ctx,
		logger.String("RequestID", pbr.RequestId),
		logger.String("batch_id", pbr.BatchId),
		logger.String("filename", pbr.Filename),
	)

	record, err := RecordFromResult(&pbr)
	if err != nil {
		result = "error"
		reason = "invalid_grading_result"
		return err
	}

	err = retry.Do(ctx, func() error {
		errInternal := s.saveRecord(ctx, record)
		if errInternal != nil {
			s.log.ErrorContext(ctx, "failed to save grading record", logger.Error(errInternal))
		}
		return errInternal
	}, retry.WithBaseInterval(time.Second))
	if err != nil {
		result = "error"
		reason = "db_save_grading_record"
		return fmt.Errorf("failed to save grading record: %w", err)
	}

	s.log.InfoContext(ctx, "grading record saved",
		logger.Any("score", record.Score),
		logger.Any("possible", record.Possible),
	)
	return nil
}

// saveRecord upserts on (batch_id, filename) so a regraded submission
// replaces its earlier outcome.
func (s *ResultCollectorService) saveRecord(ctx context.Context, record *model.GradingRecord) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}, {Name: "filename"}},
			DoUpdates: clause.AssignmentColumns([]string{"identifier", "score", "possible", "results", "error", "duration_ms", "updated_at"}),
		}).
		Create(record).Error
}

// RecordFromResult maps a grading result event onto its stored row.
func RecordFromResult(r *pb.GradingResult) (*model.GradingRecord, error) {
	if r.BatchId == "" || r.Filename == "" {
		return nil, errors.New("grading result has no batch id or filename")
	}
	return &model.GradingRecord{
		BatchID:    r.BatchId,
		Filename:   r.Filename,
		Identifier: r.Identifier,
		Score:      r.Score,
		Possible:   r.Possible,
		Results:    string(r.ResultsJson),
		Error:      r.Error,
		DurationMs: r.DurationMs,
	}, nil
}
