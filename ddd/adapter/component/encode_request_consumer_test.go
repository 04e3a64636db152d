package component

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	reads  atomic.Int64
	script func(ctx context.Context) (kafkago.Message, error)
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	r.reads.Add(1)
	return r.script(ctx)
}

func (r *scriptedReader) Close() error { return nil }

type recordingTranscodeApp struct {
	videoIDs []string
	err      error
}

func (a *recordingTranscodeApp) TranscodeVideo(ctx context.Context, publicVideoID string) error {
	a.videoIDs = append(a.videoIDs, publicVideoID)
	return a.err
}

func TestConsumeDispatchesEncodeRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	messages := []kafkago.Message{
		{Value: []byte(`{"video_id":"abc123"}`)},
		{Value: []byte(`not json`)},
		{Value: []byte(`{"video_id":""}`)},
	}
	reader := &scriptedReader{}
	reader.script = func(context.Context) (kafkago.Message, error) {
		n := int(reader.reads.Load()) - 1
		if n >= len(messages) {
			cancel()
			return kafkago.Message{}, ctx.Err()
		}
		return messages[n], nil
	}

	transcode := &recordingTranscodeApp{}
	c := &EncodeRequestConsumer{transcodeApp: transcode, backoff: time.Millisecond}
	c.consume(ctx, reader)

	// Only the well-formed request reaches the pipeline; malformed and
	// empty ones are dropped without stopping the loop.
	assert.Equal(t, []string{"abc123"}, transcode.videoIDs)
}

func TestConsumeSurvivesPipelineFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &scriptedReader{}
	reader.script = func(context.Context) (kafkago.Message, error) {
		if reader.reads.Load() > 2 {
			cancel()
			return kafkago.Message{}, ctx.Err()
		}
		return kafkago.Message{Value: []byte(`{"video_id":"abc123"}`)}, nil
	}

	transcode := &recordingTranscodeApp{err: errors.New("encode exploded")}
	c := &EncodeRequestConsumer{transcodeApp: transcode, backoff: time.Millisecond}
	c.consume(ctx, reader)

	// Both requests were attempted even though the first one failed.
	assert.Equal(t, []string{"abc123", "abc123"}, transcode.videoIDs)
}

func TestConsumeBacksOffOnReadErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{}
	reader.script = func(context.Context) (kafkago.Message, error) {
		return kafkago.Message{}, errors.New("dial tcp: connection refused")
	}

	c := &EncodeRequestConsumer{transcodeApp: &recordingTranscodeApp{}, backoff: 20 * time.Millisecond}
	done := make(chan struct{})
	go func() {
		c.consume(ctx, reader)
		close(done)
	}()

	// With a 20ms pause after each failed read, 100ms admits only a
	// handful of attempts. A hot loop would rack up thousands.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume loop did not stop on context cancellation")
	}

	reads := reader.reads.Load()
	require.Positive(t, reads)
	assert.LessOrEqual(t, reads, int64(10))
}
