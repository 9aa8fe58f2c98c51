package service

import (
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame builds one multiplexed exec stream frame: stream 1 is stdout, 2 is stderr.
func frame(stream byte, payload string) []byte {
	b := make([]byte, 8, 8+len(payload))
	b[0] = stream
	binary.BigEndian.PutUint32(b[4:], uint32(len(payload)))
	return append(b, payload...)
}

func TestCollectOutput(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		_, _ = pw.Write(frame(1, "out\n"))
		_, _ = pw.Write(frame(2, "err\n"))
		_ = pw.Close()
	}()

	stdout, stderr, err := collectOutput(context.Background(), pr, func() { _ = pr.Close() })
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout)
	assert.Equal(t, "err\n", stderr)
}

func TestCollectOutputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// the write returns once the frame is consumed; the stream then stays open
		_, _ = pw.Write(frame(1, "partial\n"))
		cancel()
	}()

	closed := false
	stdout, _, err := collectOutput(ctx, pr, func() {
		closed = true
		_ = pr.Close()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, closed)
	assert.Equal(t, "partial\n", stdout)
}

func TestReturnToPoolAfterClose(t *testing.T) {
	r := &DockerRuntime{pool: make(chan string, 1)}
	require.True(t, r.returnToPool("c1"))
	assert.Equal(t, "c1", <-r.pool)

	require.NoError(t, r.Close(context.Background()))
	assert.False(t, r.returnToPool("c1"))
	require.NoError(t, r.Close(context.Background()))
}
