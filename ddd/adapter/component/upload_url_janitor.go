package component

import (
	"context"
	"sync"
	"time"

	"video-pipeline-service/ddd/application/app"
	"video-pipeline-service/pkg/logger"
)

// UploadUrlJanitor periodically deletes expired upload tickets that were
// never used. Tickets inspected recently are spared so a client polling an
// upload in flight never loses its ticket mid-check.
type UploadUrlJanitor struct {
	uploadApp app.UploadApp
	interval  time.Duration
	grace     time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUploadUrlJanitor(uploadApp app.UploadApp, interval, grace time.Duration) *UploadUrlJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if grace <= 0 {
		grace = time.Hour
	}
	return &UploadUrlJanitor{
		uploadApp: uploadApp,
		interval:  interval,
		grace:     grace,
	}
}

func (j *UploadUrlJanitor) Name() string { return "uploadUrlJanitor" }

func (j *UploadUrlJanitor) Start(ctx context.Context) error {
	ctx, j.cancel = context.WithCancel(ctx)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := j.uploadApp.CollectExpired(ctx, j.grace)
				if err != nil {
					logger.Warnf("upload url cleanup failed error=%s", err.Error())
					continue
				}
				if n > 0 {
					logger.Info("expired upload urls collected", map[string]interface{}{
						"deleted": n,
					})
				}
			}
		}
	}()
	return nil
}

func (j *UploadUrlJanitor) Stop() error {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
	return nil
}
