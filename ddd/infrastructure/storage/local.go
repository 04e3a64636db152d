package storage

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/ddd/domain/port"
	"video-pipeline-service/ddd/infrastructure/encoder"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/logger"
)

// assetURLPrefix is the public URL segment under which stored assets are
// served, appended to the configured assets root URL.
const assetURLPrefix = "backend/storage"

// LocalBackend stores every asset of a video under a single directory of a
// local filesystem root:
//
//	<root>/videos/<video_id>/src/<filename>    uploaded source
//	<root>/videos/<video_id>/<preset>.mp4      renditions
//	<root>/videos/<video_id>/subs/...          subtitles
//	<root>/videos/<video_id>/thumbs/...        thumbnails
//	<root>/videos/<video_id>/poster/<id>/...   poster frames and cue sheet
//
// Every resolved path is checked for containment under the root before any
// filesystem access. Encoding work is handed to the dispatcher as jobs whose
// closures read and write these paths directly.
type LocalBackend struct {
	root          string
	assetsRootURL string
	encoding      config.EncodingConfig
	runner        *encoder.Runner
	dispatcher    port.JobDispatcher
}

var _ gateway.StorageBackend = (*LocalBackend)(nil)

// NewLocalBackend builds a filesystem backend rooted at cfg.Storage.Root.
func NewLocalBackend(cfg *config.Config, runner *encoder.Runner, dispatcher port.JobDispatcher) (*LocalBackend, error) {
	root, err := filepath.Abs(cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", cfg.Storage.Root, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &LocalBackend{
		root:          root,
		assetsRootURL: strings.TrimRight(cfg.Public.AssetsRootURL, "/"),
		encoding:      cfg.Encoding,
		runner:        runner,
		dispatcher:    dispatcher,
	}, nil
}

// Root returns the absolute storage root directory.
func (b *LocalBackend) Root() string { return b.root }

// ResolveAsset maps a public asset path, relative to the storage prefix, onto
// the filesystem with the same containment check as every internal access.
// Used by the HTTP layer to serve stored files.
func (b *LocalBackend) ResolveAsset(rel string) (string, error) {
	return b.resolvePath(rel)
}

// resolvePath joins parts under the root and rejects any result that is not
// strictly below the videos directory. The directory itself is rejected too,
// so an empty video id can never address the whole tree. No directory is
// created.
func (b *LocalBackend) resolvePath(parts ...string) (string, error) {
	base := filepath.Join(b.root, "videos")
	rel := filepath.Join(parts...)
	abs := filepath.Clean(filepath.Join(b.root, rel))
	if !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return "", &gateway.PathTraversalError{Path: rel, Root: b.root}
	}
	return abs, nil
}

// makeFilePath resolves a file path and creates its parent directories.
func (b *LocalBackend) makeFilePath(parts ...string) (string, error) {
	abs, err := b.resolvePath(parts...)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", abs, err)
	}
	return abs, nil
}

func (b *LocalBackend) assetURL(parts ...string) string {
	return b.assetsRootURL + "/" + assetURLPrefix + "/" + strings.Join(parts, "/")
}

func (b *LocalBackend) UploadVideo(ctx context.Context, videoID string, src io.Reader, filename string) error {
	dst, err := b.makeFilePath("videos", videoID, "src", filepath.Base(filename))
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create source file %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("write source file %s: %w", dst, err)
	}
	return f.Close()
}

func (b *LocalBackend) DeleteVideo(ctx context.Context, videoID string) error {
	dir, err := b.resolvePath("videos", videoID)
	if err != nil {
		return err
	}
	// RemoveAll on an absent directory is already a no-op, which keeps
	// deletion idempotent.
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete video directory %s: %w", dir, err)
	}
	return nil
}

func (b *LocalBackend) VideoURL(videoID, formatName string) string {
	return b.assetURL("videos", videoID, formatName+".mp4")
}

func (b *LocalBackend) UploadSubtitle(ctx context.Context, videoID, subtitleID, languageCode, content string) error {
	dst, err := b.makeFilePath("videos", videoID, "subs", subtitleFileName(subtitleID, languageCode))
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write subtitle %s: %w", dst, err)
	}
	return nil
}

func (b *LocalBackend) DeleteSubtitle(ctx context.Context, videoID, subtitleID string) error {
	pattern, err := b.resolvePath("videos", videoID, "subs", subtitleID+".*.vtt")
	if err != nil {
		return err
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("glob subtitles %s: %w", pattern, err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete subtitle %s: %w", m, err)
		}
	}
	return nil
}

func (b *LocalBackend) SubtitleURL(videoID, subtitleID, languageCode string) string {
	return b.assetURL("videos", videoID, "subs", subtitleFileName(subtitleID, languageCode))
}

func (b *LocalBackend) UploadThumbnail(ctx context.Context, videoID, thumbID string, src io.Reader) error {
	dst, err := b.makeFilePath("videos", videoID, "thumbs", thumbID+".jpg")
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create thumbnail %s: %w", dst, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("write thumbnail %s: %w", dst, err)
	}
	return f.Close()
}

func (b *LocalBackend) DeleteThumbnail(ctx context.Context, videoID, thumbID string) error {
	p, err := b.resolvePath("videos", videoID, "thumbs", thumbID+".jpg")
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete thumbnail %s: %w", p, err)
	}
	return nil
}

func (b *LocalBackend) ThumbnailURL(videoID, thumbID string) string {
	return b.assetURL("videos", videoID, "thumbs", thumbID+".jpg")
}

func (b *LocalBackend) PosterFramesURL(videoID, posterID string) string {
	return b.assetURL("videos", videoID, "poster", posterID, encoder.CueFileName)
}

// sourcePath locates the uploaded source of a video. Exactly one file is
// expected under src/; the first match wins if several exist.
func (b *LocalBackend) sourcePath(videoID string) (string, error) {
	pattern, err := b.resolvePath("videos", videoID, "src", "*")
	if err != nil {
		return "", err
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob source %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", &gateway.SourceNotFoundError{VideoID: videoID}
	}
	sort.Strings(matches)
	return matches[0], nil
}

func (b *LocalBackend) StartTranscoding(ctx context.Context, videoID string) ([]gateway.JobHandle, error) {
	src, err := b.sourcePath(videoID)
	if err != nil {
		return nil, err
	}

	handles := make([]gateway.JobHandle, 0, len(b.encoding.Presets))
	for _, name := range b.presetNames() {
		settings := b.encoding.Presets[name]
		dst, err := b.makeFilePath("videos", videoID, name+".mp4")
		if err != nil {
			return nil, err
		}
		job := entity.NewEncodeJob(videoID, name, settings, func(ctx context.Context, report entity.ProgressFunc) error {
			return b.runner.Transcode(ctx, src, dst, settings, report)
		})
		handle, err := b.dispatcher.Submit(ctx, job)
		if err != nil {
			return nil, fmt.Errorf("submit %s encode for video %s: %w", name, videoID, err)
		}
		logger.Info("encode job submitted", map[string]interface{}{
			"video_id": videoID,
			"preset":   name,
			"job_id":   handle.ID(),
		})
		handles = append(handles, handle)
	}
	return handles, nil
}

func (b *LocalBackend) CheckProgress(ctx context.Context, handle gateway.JobHandle) (int, bool, error) {
	if handle.IsDone() && !handle.IsSuccessful() {
		detail := "unknown error"
		if err := handle.Err(); err != nil {
			detail = err.Error()
		}
		return handle.Progress(), true, &gateway.TranscodingFailedError{Detail: detail}
	}
	return handle.Progress(), handle.IsDone(), nil
}

func (b *LocalBackend) IterFormats(ctx context.Context, videoID string) iter.Seq[gateway.Format] {
	return func(yield func(gateway.Format) bool) {
		for _, name := range b.presetNames() {
			p, err := b.resolvePath("videos", videoID, name+".mp4")
			if err != nil {
				return
			}
			if _, err := os.Stat(p); err != nil {
				continue
			}
			settings := b.encoding.Presets[name]
			bitrate, err := presetBitrate(settings)
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

func (b *LocalBackend) CreateThumbnail(ctx context.Context, videoID, thumbID string) error {
	src, err := b.resolvePath("videos", videoID, b.encoding.ThumbnailPreset+".mp4")
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("thumbnail source rendition %s: %w", src, err)
	}
	dst, err := b.makeFilePath("videos", videoID, "thumbs", thumbID+".jpg")
	if err != nil {
		return err
	}
	return b.runner.CreateThumbnail(ctx, src, dst)
}

func (b *LocalBackend) CreatePosterFrames(ctx context.Context, videoID, posterID string) error {
	src, err := b.sourcePath(videoID)
	if err != nil {
		return err
	}
	destDir, err := b.resolvePath("videos", videoID, "poster", posterID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create poster directory %s: %w", destDir, err)
	}
	return b.runner.CreatePosterFrames(ctx, src, destDir)
}

// presetNames returns the configured preset names in stable order.
func (b *LocalBackend) presetNames() []string {
	return presetNamesOf(b.encoding.Presets)
}

func subtitleFileName(subtitleID, languageCode string) string {
	return subtitleID + "." + languageCode + ".vtt"
}

// presetBitrate is the sum of the parsed video and audio bitrates of a preset.
func presetBitrate(settings config.PresetConfig) (int64, error) {
	vb, err := gateway.ParseBitrate(settings.VideoBitrate)
	if err != nil {
		return 0, err
	}
	ab, err := gateway.ParseBitrate(settings.AudioBitrate)
	if err != nil {
		return 0, err
	}
	return vb + ab, nil
}
