package encoder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/logger"
)

// Runner wraps invocations of the external encoder. Every operation builds a
// fixed argument set from the preset configuration; nothing here inspects the
// encoder's exit code beyond returning it, failure is observed by the caller
// through job polling or output existence.
type Runner struct {
	ffmpeg  string
	ffprobe string
}

// NewRunner builds a runner from encoding configuration.
func NewRunner(cfg config.EncodingConfig) *Runner {
	ffmpeg := cfg.FFmpegBinary
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe := cfg.FFprobeBinary
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Runner{ffmpeg: ffmpeg, ffprobe: ffprobe}
}

// Transcode produces one rendition at dstPath, overwriting it unconditionally.
// E.g:
//
//	ffmpeg -y -loglevel error -i src.mp4 -c:v libx264 -c:a aac \
//	  -strict experimental -r 30 -s 1280x720 -vb 5120k -ab 384k -ar 48000 dst.mp4
func (r *Runner) Transcode(ctx context.Context, srcPath, dstPath string, preset config.PresetConfig, report entity.ProgressFunc) error {
	framerate := preset.Framerate
	if framerate == "" {
		framerate = "30"
	}
	audioRate := preset.AudioRate
	if audioRate == "" {
		audioRate = "48000"
	}

	args := []string{
		"-y",
		"-loglevel", "error",
		"-progress", "pipe:2",
		"-nostats",
		"-i", srcPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-strict", "experimental",
		"-r", framerate,
		"-s", preset.Size,
		"-vb", preset.VideoBitrate,
		"-ab", preset.AudioBitrate,
		"-ar", audioRate,
		dstPath,
	}

	durationSec := r.ProbeDuration(srcPath)
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	logger.Debugf("ffmpeg command src=%s dst=%s args=%s", srcPath, dstPath, strings.Join(args, " "))
	return r.run(ctx, cmd, durationSec, report)
}

// CreateThumbnail extracts the frame at timestamp zero into a single image.
// Synchronous and cheap; no progress reporting.
func (r *Runner) CreateThumbnail(ctx context.Context, srcPath, dstPath string) error {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-i", srcPath,
		"-ss", "00:00:00.000",
		"-vframes", "1",
		dstPath,
	}
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("extract thumbnail: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// run starts the encoder and scans its stderr for progress lines until exit.
func (r *Runner) run(ctx context.Context, cmd *exec.Cmd, durationSec float64, report entity.ProgressFunc) error {
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create ffmpeg stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	progressDone := make(chan struct{})
	captured := make([]string, 0, 200)
	go func() {
		defer close(progressDone)
		scanProgress(ctx, stderr, durationSec, &captured, report)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-progressDone
		return ctx.Err()
	case err := <-done:
		<-progressDone
		if err != nil {
			tail := captured
			if n := len(tail); n > 50 {
				tail = tail[n-50:]
			}
			if len(tail) > 0 {
				return fmt.Errorf("ffmpeg: %w: %s", err, strings.Join(tail, "\n"))
			}
			return fmt.Errorf("ffmpeg: %w", err)
		}
		if report != nil {
			report(100)
		}
		return nil
	}
}

var reStderrTime = regexp.MustCompile(`time=(\d+):(\d+):(\d+\.?\d*)`)

func scanProgress(ctx context.Context, stderr io.ReadCloser, durationSec float64, capture *[]string, report entity.ProgressFunc) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Text()

		if strings.HasPrefix(line, "out_time_ms=") {
			if ms, err := strconv.ParseFloat(strings.TrimPrefix(line, "out_time_ms="), 64); err == nil && durationSec > 0 {
				emitProgress(ms/1e6, durationSec, report)
			}
			continue
		}

		if m := reStderrTime.FindStringSubmatch(line); len(m) == 4 && durationSec > 0 {
			hh, _ := strconv.ParseFloat(m[1], 64)
			mm, _ := strconv.ParseFloat(m[2], 64)
			ss, _ := strconv.ParseFloat(m[3], 64)
			emitProgress(hh*3600+mm*60+ss, durationSec, report)
			continue
		}

		if strings.HasPrefix(line, "progress=") || strings.Contains(line, "=") && !strings.Contains(line, " ") {
			// key=value progress chatter, not an error line
			continue
		}

		if capture != nil {
			b := *capture
			if len(b) >= 200 {
				b = b[1:]
			}
			b = append(b, line)
			*capture = b
		}
	}
}

func emitProgress(currentSec, totalSec float64, report entity.ProgressFunc) {
	if report == nil || totalSec <= 0 {
		return
	}
	pct := int((currentSec / totalSec) * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	report(pct)
}
