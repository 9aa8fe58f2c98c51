package constants

const (
	// BatchRequestTopic carries pb.BatchRequest.
	BatchRequestTopic = "autograder_batch_request"
	// GradingResultTopic carries pb.GradingResult.
	GradingResultTopic = "autograder_grading_result"
	// GradingTaskKey is the redis stream of pb.GradingTask.
	GradingTaskKey = "autograder:grading_task"
)
