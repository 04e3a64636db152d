package component

import (
	"context"
	"encoding/json"
	"fmt"

	"video-pipeline-service/ddd/application/app"
	"video-pipeline-service/ddd/domain/port"
	pkgkafka "video-pipeline-service/pkg/kafka"
	"video-pipeline-service/pkg/logger"
)

// encodeRequestMessage is the wire shape on the encode request topic.
type encodeRequestMessage struct {
	VideoID string `json:"video_id"`
}

// KafkaEncodeRequestPublisher hands encode requests to the worker process
// through kafka. The message key is the public video id, so requests for the
// same video land on the same partition in order.
type KafkaEncodeRequestPublisher struct {
	client *pkgkafka.Client
	topic  string
}

func NewKafkaEncodeRequestPublisher(client *pkgkafka.Client, topic string) *KafkaEncodeRequestPublisher {
	return &KafkaEncodeRequestPublisher{client: client, topic: topic}
}

var _ port.EncodeRequestPublisher = (*KafkaEncodeRequestPublisher)(nil)

func (p *KafkaEncodeRequestPublisher) PublishEncodeRequest(ctx context.Context, publicVideoID string) error {
	payload, err := json.Marshal(encodeRequestMessage{VideoID: publicVideoID})
	if err != nil {
		return fmt.Errorf("marshal encode request: %w", err)
	}
	if err := p.client.Produce(ctx, p.topic, []byte(publicVideoID), payload); err != nil {
		return fmt.Errorf("publish encode request for %s: %w", publicVideoID, err)
	}
	logger.Debug("encode request published", map[string]interface{}{
		"video_id": publicVideoID,
		"topic":    p.topic,
	})
	return nil
}

// LocalEncodeRequestPublisher runs the pipeline in-process instead of going
// through kafka. Single-binary deployments and tests use this.
type LocalEncodeRequestPublisher struct {
	transcodeApp app.TranscodeApp
}

func NewLocalEncodeRequestPublisher(transcodeApp app.TranscodeApp) *LocalEncodeRequestPublisher {
	return &LocalEncodeRequestPublisher{transcodeApp: transcodeApp}
}

var _ port.EncodeRequestPublisher = (*LocalEncodeRequestPublisher)(nil)

func (p *LocalEncodeRequestPublisher) PublishEncodeRequest(ctx context.Context, publicVideoID string) error {
	go func() {
		// Detached from the request context; the pipeline outlives the HTTP
		// call that triggered it.
		if err := p.transcodeApp.TranscodeVideo(context.Background(), publicVideoID); err != nil {
			logger.Error("pipeline run failed", map[string]interface{}{
				"video_id": publicVideoID,
				"error":    err.Error(),
			})
		}
	}()
	return nil
}
