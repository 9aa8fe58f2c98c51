package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/IBM/sarama"
	"github.com/gogo/protobuf/proto"
	"github.com/redis/go-redis/v9"
	"github.com/to404hanga/online_judge_autograder/cmd/master/config"
	"github.com/to404hanga/online_judge_autograder/constants"
	"github.com/to404hanga/online_judge_autograder/consumer"
	"github.com/to404hanga/online_judge_autograder/metadata"
	"github.com/to404hanga/online_judge_autograder/pb"
	"github.com/to404hanga/pkg404/cachex/lru"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const (
	BatchGroupID = "autograder_master_group"

	sourceKey = "source:%s:%s:%s:%d"
)

// BatchService turns batch requests into per-submission grading tasks.
type BatchService struct {
	log      loggerv2.Logger
	consumer consumer.Consumer
	rdb      redis.Cmdable
	lru      *lru.Cache
	maxLen   int64
}

var (
	_ consumer.Consumer = (*BatchService)(nil)
)

func NewBatchService(log loggerv2.Logger, cg sarama.ConsumerGroup, rdb redis.Cmdable, cache *lru.Cache, cfg config.MasterConfig) *BatchService {
	s := &BatchService{
		log:    log,
		rdb:    rdb,
		lru:    cache,
		maxLen: cfg.StreamMaxLen,
	}
	handler := consumer.NewGroupHandler(s.handleBatch, log)
	s.consumer = consumer.NewSaramaConsumer(cg, handler, log, constants.BatchRequestTopic)
	return s
}

func (s *BatchService) Start(ctx context.Context) error {
	return s.consumer.Start(ctx)
}

func (s *BatchService) handleBatch(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var req pb.BatchRequest
	if err := proto.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("failed to unmarshal batch request: %w", err)
	}
	ctx = loggerv2.ContextWithFields(ctx,
		logger.String("RequestID", req.RequestId),
		logger.String("batch_id", req.BatchId),
	)

	src, err := s.source(&req)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	tasks := TasksFor(&req, src)
	for _, task := range tasks {
		taskBytes, err := proto.Marshal(task)
		if err != nil {
			return fmt.Errorf("failed to marshal grading task: %w", err)
		}
		err = s.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: constants.GradingTaskKey,
			MaxLen: s.maxLen,
			Approx: s.maxLen > 0,
			Values: map[string]any{
				"task": taskBytes,
			},
		}).Err()
		if err != nil {
			return fmt.Errorf("failed to add grading task for %s: %w", task.Filename, err)
		}
	}
	s.log.InfoContext(ctx, "batch enqueued", logger.Any("tasks", len(tasks)))
	return nil
}

// source builds the metadata registry of a batch. A redelivered request
// reuses the cached registry until the export it was read from changes.
func (s *BatchService) source(req *pb.BatchRequest) (metadata.Source, error) {
	path, err := SourcePath(req)
	if err != nil {
		return nil, err
	}
	version, err := sourceVersion(metadata.Format(req.Format), path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf(sourceKey, req.BatchId, req.Format, path, version)
	if cached, ok := s.lru.Get(key); ok {
		return cached.(metadata.Source), nil
	}
	src, err := metadata.Open(metadata.Format(req.Format), path)
	if err != nil {
		return nil, err
	}
	s.lru.Add(key, src)
	return src, nil
}

// sourceVersion is the modification time of what the registry is read from:
// the sidecar file, the listed directory or the metadata file.
func sourceVersion(format metadata.Format, path string) (int64, error) {
	if format == metadata.FormatGradescope {
		path = filepath.Join(path, metadata.GradescopeMetadataFile)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat metadata source: %w", err)
	}
	return info.ModTime().UnixNano(), nil
}

// SourcePath picks what the metadata format is opened from: the submissions
// directory for export formats, the metadata file for generic ones.
func SourcePath(req *pb.BatchRequest) (string, error) {
	if req.BatchId == "" {
		return "", errors.New("batch request has no batch id")
	}
	if req.SubmissionsDir == "" {
		return "", errors.New("batch request has no submissions directory")
	}
	switch metadata.Format(req.Format) {
	case metadata.FormatJSON, metadata.FormatYAML:
		if req.MetadataPath == "" {
			return "", fmt.Errorf("format %s requires a metadata path", req.Format)
		}
		return req.MetadataPath, nil
	default:
		return req.SubmissionsDir, nil
	}
}

// TasksFor creates one grading task per metadata record, in record order.
func TasksFor(req *pb.BatchRequest, src metadata.Source) []*pb.GradingTask {
	records := src.Records()
	tasks := make([]*pb.GradingTask, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, &pb.GradingTask{
			RequestId:      req.RequestId,
			BatchId:        req.BatchId,
			Identifier:     r.Identifier,
			Filename:       r.Filename,
			SubmissionsDir: req.SubmissionsDir,
			Emails:         r.Emails,
		})
	}
	return tasks
}
