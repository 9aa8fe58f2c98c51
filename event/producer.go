package event

import (
	"context"

	"github.com/gogo/protobuf/proto"
)

// Producer publishes protobuf messages keyed by key, so all messages of one
// key land on the same partition.
type Producer interface {
	Publish(ctx context.Context, topic, key string, msg proto.Message) error
}
