package storage

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/infrastructure/encoder"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/logger"
)

// MinioBackend stores assets in an object bucket under the same key layout
// the local backend uses on disk. Encode runs stage the source into a
// scratch directory, produce locally and upload the results.
type MinioBackend struct {
	client     *minio.Client
	bucket     string
	baseURL    string
	tempDir    string
	encoding   config.EncodingConfig
	runner     *encoder.Runner
	dispatcher port.JobDispatcher
}

var _ gateway.StorageBackend = (*MinioBackend)(nil)

func NewMinioBackend(cfg *config.Config, runner *encoder.Runner, dispatcher port.JobDispatcher) (*MinioBackend, error) {
	mc := cfg.Minio
	if mc.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if mc.BucketName == "" {
		return nil, fmt.Errorf("minio bucket_name is required")
	}

	client, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKeyID, mc.SecretAccessKey, ""),
		Secure: mc.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	baseURL := cfg.Public.AssetsRootURL
	if baseURL == "" {
		scheme := "http"
		if mc.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + mc.Endpoint
	}

	return &MinioBackend{
		client:     client,
		bucket:     mc.BucketName,
		baseURL:    strings.TrimRight(baseURL, "/") + "/" + mc.BucketName,
		tempDir:    cfg.Storage.TempDir,
		encoding:   cfg.Encoding,
		runner:     runner,
		dispatcher: dispatcher,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist. Called once at
// startup, never on the request path.
func (b *MinioBackend) EnsureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", b.bucket, err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *MinioBackend) objectURL(parts ...string) string {
	return b.baseURL + "/" + path.Join(parts...)
}

func (b *MinioBackend) UploadVideo(ctx context.Context, videoID string, src io.Reader, filename string) error {
	key := path.Join("videos", videoID, "src", filepath.Base(filename))
	_, err := b.client.PutObject(ctx, b.bucket, key, src, -1, minio.PutObjectOptions{
		ContentType: contentTypeFor(filename),
	})
	if err != nil {
		return fmt.Errorf("upload source %s: %w", key, err)
	}
	return nil
}

func (b *MinioBackend) DeleteVideo(ctx context.Context, videoID string) error {
	prefix := path.Join("videos", videoID) + "/"
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("list objects under %s: %w", prefix, obj.Err)
		}
		if err := b.client.RemoveObject(ctx, b.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("delete object %s: %w", obj.Key, err)
		}
	}
	return nil
}

func (b *MinioBackend) VideoURL(videoID, formatName string) string {
	return b.objectURL("videos", videoID, formatName+".mp4")
}

func (b *MinioBackend) UploadSubtitle(ctx context.Context, videoID, subtitleID, languageCode, content string) error {
	key := path.Join("videos", videoID, "subs", subtitleFileName(subtitleID, languageCode))
	_, err := b.client.PutObject(ctx, b.bucket, key, strings.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/vtt",
	})
	if err != nil {
		return fmt.Errorf("upload subtitle %s: %w", key, err)
	}
	return nil
}

func (b *MinioBackend) DeleteSubtitle(ctx context.Context, videoID, subtitleID string) error {
	// Every language variant shares the subtitle id prefix.
	prefix := path.Join("videos", videoID, "subs", subtitleID) + "."
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return fmt.Errorf("list subtitles under %s: %w", prefix, obj.Err)
		}
		if err := b.client.RemoveObject(ctx, b.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("delete subtitle %s: %w", obj.Key, err)
		}
	}
	return nil
}

func (b *MinioBackend) SubtitleURL(videoID, subtitleID, languageCode string) string {
	return b.objectURL("videos", videoID, "subs", subtitleFileName(subtitleID, languageCode))
}

func (b *MinioBackend) UploadThumbnail(ctx context.Context, videoID, thumbID string, src io.Reader) error {
	key := path.Join("videos", videoID, "thumbs", thumbID+".jpg")
	_, err := b.client.PutObject(ctx, b.bucket, key, src, -1, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return fmt.Errorf("upload thumbnail %s: %w", key, err)
	}
	return nil
}

func (b *MinioBackend) DeleteThumbnail(ctx context.Context, videoID, thumbID string) error {
	key := path.Join("videos", videoID, "thumbs", thumbID+".jpg")
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete thumbnail %s: %w", key, err)
	}
	return nil
}

func (b *MinioBackend) ThumbnailURL(videoID, thumbID string) string {
	return b.objectURL("videos", videoID, "thumbs", thumbID+".jpg")
}

func (b *MinioBackend) PosterFramesURL(videoID, posterID string) string {
	return b.objectURL("videos", videoID, "poster", posterID, encoder.CueFileName)
}

// sourceKey locates the uploaded source object of a video. The first key in
// lexical order wins if several exist.
func (b *MinioBackend) sourceKey(ctx context.Context, videoID string) (string, error) {
	prefix := path.Join("videos", videoID, "src") + "/"
	keys := make([]string, 0, 1)
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return "", fmt.Errorf("list source objects under %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) == 0 {
		return "", &gateway.SourceNotFoundError{VideoID: videoID}
	}
	sort.Strings(keys)
	return keys[0], nil
}

// download stages an object into the scratch directory.
func (b *MinioBackend) download(ctx context.Context, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create scratch directory for %s: %w", localPath, err)
	}
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Close()
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create scratch file %s: %w", localPath, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, obj); err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	return f.Close()
}

// uploadFile pushes a local file to the bucket.
func (b *MinioBackend) uploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	_, err = b.client.PutObject(ctx, b.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentTypeFor(key),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (b *MinioBackend) StartTranscoding(ctx context.Context, videoID string) ([]gateway.JobHandle, error) {
	srcKey, err := b.sourceKey(ctx, videoID)
	if err != nil {
		return nil, err
	}

	handles := make([]gateway.JobHandle, 0, len(b.encoding.Presets))
	for _, name := range presetNamesOf(b.encoding.Presets) {
		settings := b.encoding.Presets[name]
		preset := name
		job := entity.NewEncodeJob(videoID, preset, settings, func(ctx context.Context, report entity.ProgressFunc) error {
			return b.transcodeViaScratch(ctx, videoID, preset, srcKey, settings, report)
		})
		handle, err := b.dispatcher.Submit(ctx, job)
		if err != nil {
			return nil, fmt.Errorf("submit %s encode for video %s: %w", preset, videoID, err)
		}
		logger.Info("encode job submitted", map[string]interface{}{
			"video_id": videoID,
			"preset":   preset,
			"job_id":   handle.ID(),
		})
		handles = append(handles, handle)
	}
	return handles, nil
}

// transcodeViaScratch downloads the source, encodes locally and uploads the
// rendition. The scratch directory is removed whatever the outcome.
func (b *MinioBackend) transcodeViaScratch(ctx context.Context, videoID, preset, srcKey string, settings config.PresetConfig, report entity.ProgressFunc) error {
	scratch, err := os.MkdirTemp(b.tempDir, "encode-"+videoID+"-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	srcPath := filepath.Join(scratch, filepath.Base(srcKey))
	if err := b.download(ctx, srcKey, srcPath); err != nil {
		return err
	}
	dstPath := filepath.Join(scratch, preset+".mp4")
	if err := b.runner.Transcode(ctx, srcPath, dstPath, settings, report); err != nil {
		return err
	}
	return b.uploadFile(ctx, dstPath, path.Join("videos", videoID, preset+".mp4"))
}

func (b *MinioBackend) CheckProgress(ctx context.Context, handle gateway.JobHandle) (int, bool, error) {
	if handle.IsDone() && !handle.IsSuccessful() {
		detail := "unknown error"
		if err := handle.Err(); err != nil {
			detail = err.Error()
		}
		return handle.Progress(), true, &gateway.TranscodingFailedError{Detail: detail}
	}
	return handle.Progress(), handle.IsDone(), nil
}

func (b *MinioBackend) IterFormats(ctx context.Context, videoID string) iter.Seq[gateway.Format] {
	return func(yield func(gateway.Format) bool) {
		for _, name := range presetNamesOf(b.encoding.Presets) {
			key := path.Join("videos", videoID, name+".mp4")
			if _, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{}); err != nil {
				continue
			}
			bitrate, err := presetBitrate(b.encoding.Presets[name])
			if err != nil {
				logger.Warn("unparseable preset bitrate", map[string]interface{}{
					"preset": name,
					"error":  err.Error(),
				})
				continue
			}
			if !yield(gateway.Format{Name: name, Bitrate: bitrate}) {
				return
			}
		}
	}
}

func (b *MinioBackend) CreateThumbnail(ctx context.Context, videoID, thumbID string) error {
	scratch, err := os.MkdirTemp(b.tempDir, "thumb-"+videoID+"-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	renditionKey := path.Join("videos", videoID, b.encoding.ThumbnailPreset+".mp4")
	srcPath := filepath.Join(scratch, b.encoding.ThumbnailPreset+".mp4")
	if err := b.download(ctx, renditionKey, srcPath); err != nil {
		return err
	}
	dstPath := filepath.Join(scratch, thumbID+".jpg")
	if err := b.runner.CreateThumbnail(ctx, srcPath, dstPath); err != nil {
		return err
	}
	return b.uploadFile(ctx, dstPath, path.Join("videos", videoID, "thumbs", thumbID+".jpg"))
}

func (b *MinioBackend) CreatePosterFrames(ctx context.Context, videoID, posterID string) error {
	srcKey, err := b.sourceKey(ctx, videoID)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp(b.tempDir, "poster-"+videoID+"-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	srcPath := filepath.Join(scratch, filepath.Base(srcKey))
	if err := b.download(ctx, srcKey, srcPath); err != nil {
		return err
	}
	outDir := filepath.Join(scratch, "poster")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create poster scratch directory: %w", err)
	}
	if err := b.runner.CreatePosterFrames(ctx, srcPath, outDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return fmt.Errorf("read poster scratch directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key := path.Join("videos", videoID, "poster", posterID, e.Name())
		if err := b.uploadFile(ctx, filepath.Join(outDir, e.Name()), key); err != nil {
			return err
		}
	}
	return nil
}

// presetNamesOf returns preset names in stable order.
func presetNamesOf(presets map[string]config.PresetConfig) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".vtt":
		return "text/vtt"
	default:
		return "application/octet-stream"
	}
}
