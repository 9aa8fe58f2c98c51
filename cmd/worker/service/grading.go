package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/to404hanga/online_judge_autograder/cmd/worker/config"
	"github.com/to404hanga/online_judge_autograder/constants"
	"github.com/to404hanga/online_judge_autograder/event"
	"github.com/to404hanga/online_judge_autograder/executor"
	execsvc "github.com/to404hanga/online_judge_autograder/executor/service"
	"github.com/to404hanga/online_judge_autograder/pb"
	"github.com/to404hanga/pkg404/gotools/retry"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const (
	groupName = "autograder_worker_group"

	reclaimInterval = time.Minute
)

var (
	gradingInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "autograder",
		Subsystem: "worker",
		Name:      "grading_in_flight",
		Help:      "Current number of submissions being graded.",
	})

	gradingTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autograder",
		Subsystem: "worker",
		Name:      "grading_total",
		Help:      "Total number of graded submissions.",
	}, []string{"result"})

	gradingDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "autograder",
		Subsystem: "worker",
		Name:      "grading_duration_seconds",
		Help:      "Duration of grading one submission in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		gradingInFlight,
		gradingTotal,
		gradingDurationSeconds,
	)
}

// GradingService reads grading tasks from the task stream one at a time,
// grades each in its own workspace and publishes the outcome.
type GradingService struct {
	log          loggerv2.Logger
	rdb          redis.Cmdable
	producer     event.Producer
	runner       executor.Runner
	runtime      execsvc.Runtime
	cfg          config.WorkerConfig
	consumerName string
}

func NewGradingService(log loggerv2.Logger, rdb redis.Cmdable, producer event.Producer, runner executor.Runner, runtime execsvc.Runtime, cfg config.WorkerConfig) *GradingService {
	hostname, err := os.Hostname()
	if err != nil {
		log.Error("failed to get hostname", logger.Error(err))
		panic(err)
	}
	return &GradingService{
		log:          log,
		rdb:          rdb,
		producer:     producer,
		runner:       runner,
		runtime:      runtime,
		cfg:          cfg,
		consumerName: fmt.Sprintf("%s-%d", hostname, time.Now().UnixNano()),
	}
}

func (s *GradingService) Start(ctx context.Context) error {
	s.log.InfoContext(ctx, "Starting grading service",
		logger.String("group", groupName),
		logger.String("consumer", s.consumerName))
	defer func() {
		if err := s.runtime.Close(context.WithoutCancel(ctx)); err != nil {
			s.log.ErrorContext(ctx, "failed to close runtime", logger.Error(err))
		}
	}()

	err := s.rdb.XGroupCreateMkStream(ctx, constants.GradingTaskKey, groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	var lastReclaim time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if s.cfg.XAutoClaimTimeoutMinutes > 0 && time.Since(lastReclaim) >= reclaimInterval {
			lastReclaim = time.Now()
			s.reclaim(ctx)
		}

		streams, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    groupName,
			Consumer: s.consumerName,
			Streams:  []string{constants.GradingTaskKey, ">"},
			Count:    1,
			Block:    time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.log.ErrorContext(ctx, "failed to read stream message", logger.Error(err))
			time.Sleep(100 * time.Millisecond)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				s.log.InfoContext(ctx, "Received message", logger.String("id", msg.ID))
				if err = s.processMessage(ctx, &msg); err != nil {
					s.log.ErrorContext(ctx, "failed to process message", logger.Error(err))
				}
			}
		}
	}
}

// reclaim takes over tasks left pending by workers that died mid-grading.
func (s *GradingService) reclaim(ctx context.Context) {
	msgs, _, err := s.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   constants.GradingTaskKey,
		Group:    groupName,
		Consumer: s.consumerName,
		MinIdle:  time.Duration(s.cfg.XAutoClaimTimeoutMinutes) * time.Minute,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.ErrorContext(ctx, "failed to reclaim pending tasks", logger.Error(err))
		}
		return
	}
	for _, msg := range msgs {
		s.log.InfoContext(ctx, "Reclaimed message", logger.String("id", msg.ID))
		if err = s.processMessage(ctx, &msg); err != nil {
			s.log.ErrorContext(ctx, "failed to process reclaimed message", logger.Error(err))
		}
	}
}

func (s *GradingService) processMessage(ctx context.Context, msg *redis.XMessage) error {
	var taskData []byte
	switch v := msg.Values["task"].(type) {
	case string:
		taskData = []byte(v)
	case []byte:
		taskData = v
	default:
		return s.ack(ctx, msg.ID, fmt.Errorf("task field has unexpected type %T", v))
	}

	var task pb.GradingTask
	if err := proto.Unmarshal(taskData, &task); err != nil {
		return s.ack(ctx, msg.ID, fmt.Errorf("failed to unmarshal task: %w", err))
	}
	ctx = loggerv2.ContextWithFields(ctx,
		logger.String("RequestID", task.RequestId),
		logger.String("batch_id", task.BatchId),
		logger.String("filename", task.Filename),
	)

	result := s.grade(ctx, &task)
	err := retry.Do(ctx, func() error {
		return s.producer.Publish(ctx, constants.GradingResultTopic, task.BatchId, result)
	}, retry.WithBaseInterval(time.Second))
	if err != nil {
		// left pending so another worker can reclaim it
		return fmt.Errorf("failed to publish grading result: %w", err)
	}
	return s.ack(ctx, msg.ID, nil)
}

// ack removes an undeliverable or finished message from the pending list and
// returns cause unchanged.
func (s *GradingService) ack(ctx context.Context, id string, cause error) error {
	if err := retry.Do(ctx, func() error {
		return s.rdb.XAck(ctx, constants.GradingTaskKey, groupName, id).Err()
	}); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to ack message: %w", err))
	}
	s.log.InfoContext(ctx, "Acked message", logger.String("id", id))
	return cause
}

// grade runs one task. Failures are reported in the result rather than
// returned so a bad submission never blocks the stream.
func (s *GradingService) grade(ctx context.Context, task *pb.GradingTask) (result *pb.GradingResult) {
	start := time.Now()
	outcome := "success"
	gradingInFlight.Inc()
	result = &pb.GradingResult{
		RequestId:  task.RequestId,
		BatchId:    task.BatchId,
		Identifier: task.Identifier,
		Filename:   task.Filename,
	}
	defer func() {
		if result.Error != "" {
			outcome = "error"
			s.log.ErrorContext(ctx, "grading failed", logger.String("error", result.Error))
		}
		result.DurationMs = time.Since(start).Milliseconds()
		gradingInFlight.Dec()
		gradingTotal.WithLabelValues(outcome).Inc()
		gradingDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	dir, err := PrepareWorkspace(s.cfg.WorkDir, s.cfg.TemplateDir, task)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !s.cfg.KeepWorkspace {
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				s.log.WarnContext(ctx, "failed to remove workspace", logger.String("dir", dir), logger.Error(err))
			}
		}()
	}

	res, err := s.runner.Run(ctx, dir)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Score = res.Score()
	result.Possible = res.Possible()
	result.ResultsJson = res.Raw
	return result
}
