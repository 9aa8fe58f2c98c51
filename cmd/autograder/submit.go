package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/to404hanga/online_judge_autograder/constants"
	"github.com/to404hanga/online_judge_autograder/event"
	"github.com/to404hanga/online_judge_autograder/ioc"
	"github.com/to404hanga/online_judge_autograder/metadata"
	"github.com/to404hanga/online_judge_autograder/pb"
	"github.com/to404hanga/pkg404/logger"
)

var (
	submitFormat   string
	submitMetadata string
	submitBatchID  string
)

var submitCmd = &cobra.Command{
	Use:   "submit <submissions-dir>",
	Short: "Queue every submission of an export for the grading workers",
	Long: `Checks the export metadata locally, then publishes a batch request that
the master fans out into one grading task per record.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitFormat, "format", "f", string(metadata.FormatCanvas), "export format: gradescope, canvas, json or yaml")
	submitCmd.Flags().StringVarP(&submitMetadata, "metadata", "m", "", "metadata file for the json and yaml formats")
	submitCmd.Flags().StringVar(&submitBatchID, "batch-id", "", "batch id (default a random uuid)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	req, err := newBatchRequest(args[0], metadata.Format(submitFormat), submitMetadata, submitBatchID)
	if err != nil {
		return err
	}

	l := ioc.InitLogger()
	sp := ioc.InitSyncProducer(ioc.InitKafka())
	defer sp.Close()
	producer := event.NewSaramaProducer(sp, l)

	if err = producer.Publish(cmd.Context(), constants.BatchRequestTopic, req.BatchId, req); err != nil {
		return err
	}
	l.InfoContext(cmd.Context(), "batch submitted",
		logger.String("RequestID", req.RequestId),
		logger.String("batch_id", req.BatchId),
	)
	fmt.Fprintln(cmd.OutOrStdout(), req.BatchId)
	return nil
}

// newBatchRequest opens the metadata the master will open, so a broken
// export is reported here instead of in the master's log.
func newBatchRequest(dir string, format metadata.Format, metadataPath, batchID string) (*pb.BatchRequest, error) {
	path := dir
	if format == metadata.FormatJSON || format == metadata.FormatYAML {
		if metadataPath == "" {
			return nil, fmt.Errorf("format %s requires --metadata", format)
		}
		path = metadataPath
	}
	src, err := metadata.Open(format, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	if len(src.Records()) == 0 {
		return nil, fmt.Errorf("%s has no submissions", path)
	}
	if batchID == "" {
		batchID = uuid.NewString()
	}
	return &pb.BatchRequest{
		RequestId:      uuid.NewString(),
		BatchId:        batchID,
		Format:         string(format),
		SubmissionsDir: dir,
		MetadataPath:   metadataPath,
	}, nil
}
