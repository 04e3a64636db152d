package component

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"video-pipeline-service/ddd/application/app"
	pkgkafka "video-pipeline-service/pkg/kafka"
	"video-pipeline-service/pkg/logger"
)

// readErrorBackoff is how long the consume loop pauses after a read error.
// A broker outage makes ReadMessage return immediately; without the pause
// the loop would spin.
const readErrorBackoff = time.Second

// encodeRequestReader is the slice of kafka.Reader the consume loop needs.
type encodeRequestReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// EncodeRequestConsumer reads encode requests off kafka and drives the
// pipeline for each one. Runs in the worker process.
type EncodeRequestConsumer struct {
	client       *pkgkafka.Client
	topic        string
	groupID      string
	transcodeApp app.TranscodeApp
	backoff      time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEncodeRequestConsumer(client *pkgkafka.Client, topic, groupID string, transcodeApp app.TranscodeApp) *EncodeRequestConsumer {
	return &EncodeRequestConsumer{
		client:       client,
		topic:        topic,
		groupID:      groupID,
		transcodeApp: transcodeApp,
		backoff:      readErrorBackoff,
	}
}

func (c *EncodeRequestConsumer) Name() string { return "encodeRequestConsumer" }

func (c *EncodeRequestConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	reader := c.client.Reader(c.topic, c.groupID)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer reader.Close()
		logger.Infof("Kafka consumer started topic=%s group=%s", c.topic, c.groupID)
		c.consume(ctx, reader)
	}()
	return nil
}

func (c *EncodeRequestConsumer) consume(ctx context.Context, reader encodeRequestReader) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
				logger.Debug("Kafka reader EOF", nil)
			} else {
				logger.Warnf("Kafka read error error=%s", err.Error())
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}
		var m encodeRequestMessage
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			logger.Warnf("Kafka message unmarshal error error=%s", err.Error())
			continue
		}
		if m.VideoID == "" {
			logger.Warn("encode request without video id dropped", nil)
			continue
		}
		logger.Info("encode request received", map[string]interface{}{
			"video_id":  m.VideoID,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		if err := c.transcodeApp.TranscodeVideo(ctx, m.VideoID); err != nil {
			// The failure is already recorded in the processing state;
			// the message is consumed either way so a poisoned video
			// cannot wedge the partition.
			logger.Warnf("pipeline run failed error=%s video_id=%s", err.Error(), m.VideoID)
		}
	}
}

func (c *EncodeRequestConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return nil
}
