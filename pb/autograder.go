// Package pb holds the messages exchanged between the master, the workers
// and the result collector. The types are encoded with gogo/protobuf through
// their struct tags.
package pb

import (
	proto "github.com/gogo/protobuf/proto"
)

// BatchRequest asks the master to grade every submission of an export.
type BatchRequest struct {
	RequestId      string `protobuf:"bytes,1,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	BatchId        string `protobuf:"bytes,2,opt,name=batch_id,json=batchId,proto3" json:"batch_id,omitempty"`
	Format         string `protobuf:"bytes,3,opt,name=format,proto3" json:"format,omitempty"`
	SubmissionsDir string `protobuf:"bytes,4,opt,name=submissions_dir,json=submissionsDir,proto3" json:"submissions_dir,omitempty"`
	// MetadataPath is the metadata file of the json and yaml formats.
	MetadataPath string `protobuf:"bytes,5,opt,name=metadata_path,json=metadataPath,proto3" json:"metadata_path,omitempty"`
}

func (m *BatchRequest) Reset()         { *m = BatchRequest{} }
func (m *BatchRequest) String() string { return proto.CompactTextString(m) }
func (*BatchRequest) ProtoMessage()    {}

// GradingTask is one submission queued for a worker.
type GradingTask struct {
	RequestId      string `protobuf:"bytes,1,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	BatchId        string `protobuf:"bytes,2,opt,name=batch_id,json=batchId,proto3" json:"batch_id,omitempty"`
	Identifier     string `protobuf:"bytes,3,opt,name=identifier,proto3" json:"identifier,omitempty"`
	Filename       string `protobuf:"bytes,4,opt,name=filename,proto3" json:"filename,omitempty"`
	SubmissionsDir string `protobuf:"bytes,5,opt,name=submissions_dir,json=submissionsDir,proto3" json:"submissions_dir,omitempty"`
	// Emails are the submitters the PDF is uploaded for.
	Emails []string `protobuf:"bytes,6,rep,name=emails,proto3" json:"emails,omitempty"`
}

func (m *GradingTask) Reset()         { *m = GradingTask{} }
func (m *GradingTask) String() string { return proto.CompactTextString(m) }
func (*GradingTask) ProtoMessage()    {}

// GradingResult is the outcome of one GradingTask. Error is set instead of
// the scores when grading failed.
type GradingResult struct {
	RequestId   string  `protobuf:"bytes,1,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	BatchId     string  `protobuf:"bytes,2,opt,name=batch_id,json=batchId,proto3" json:"batch_id,omitempty"`
	Identifier  string  `protobuf:"bytes,3,opt,name=identifier,proto3" json:"identifier,omitempty"`
	Filename    string  `protobuf:"bytes,4,opt,name=filename,proto3" json:"filename,omitempty"`
	Score       float64 `protobuf:"fixed64,5,opt,name=score,proto3" json:"score,omitempty"`
	Possible    float64 `protobuf:"fixed64,6,opt,name=possible,proto3" json:"possible,omitempty"`
	ResultsJson []byte  `protobuf:"bytes,7,opt,name=results_json,json=resultsJson,proto3" json:"results_json,omitempty"`
	Error       string  `protobuf:"bytes,8,opt,name=error,proto3" json:"error,omitempty"`
	DurationMs  int64   `protobuf:"varint,9,opt,name=duration_ms,json=durationMs,proto3" json:"duration_ms,omitempty"`
}

func (m *GradingResult) Reset()         { *m = GradingResult{} }
func (m *GradingResult) String() string { return proto.CompactTextString(m) }
func (*GradingResult) ProtoMessage()    {}
