package encoder

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// PosterSampleInterval is the sampling period of poster frames, in seconds.
	PosterSampleInterval = 10
	// PosterFrameBound caps the longer dimension of each sampled frame.
	PosterFrameBound = 160
	// CueFileName is the cue sheet stored next to the sprite images.
	CueFileName = "cue.vtt"
)

// SpriteFileName names the n-th sampled image (1-based). The cue sheet
// references images by exactly these names, relative to the cue file.
func SpriteFileName(n int) string {
	return fmt.Sprintf("spriteFile_%d.jpg", n)
}

// CreatePosterFrames samples one frame of the source every ten seconds into
// destDir, scaled so the longer source dimension maps to PosterFrameBound,
// then writes a cue sheet mapping intervals to the images. Sampling runs as a
// single sequential unit with no dependency on rendition jobs.
func (r *Runner) CreatePosterFrames(ctx context.Context, srcPath, destDir string) error {
	duration := r.ProbeDuration(srcPath)
	if duration <= 0 {
		return fmt.Errorf("probe duration of %s: no duration", srcPath)
	}

	width, height := r.ProbeDimensions(srcPath)
	frameW, frameH := boundedFrameSize(width, height, PosterFrameBound)

	args := []string{
		"-y",
		"-loglevel", "error",
		"-i", srcPath,
		"-vf", fmt.Sprintf("fps=1/%d,scale=%d:%d", PosterSampleInterval, frameW, frameH),
		filepath.Join(destDir, "spriteFile_%d.jpg"),
	}
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("sample poster frames: %w: %s", err, strings.TrimSpace(string(out)))
	}

	// The probed duration is an estimate; the encoder may have produced fewer
	// samples than expected. Count down before writing the cue sheet so it
	// never references a nonexistent image.
	count := int(math.Ceil(duration / PosterSampleInterval))
	count = CountSamples(destDir, count)

	cue := BuildCueSheet(count, duration, frameW, frameH)
	if err := os.WriteFile(filepath.Join(destDir, CueFileName), []byte(cue), 0o644); err != nil {
		return fmt.Errorf("write cue sheet: %w", err)
	}
	return nil
}

// boundedFrameSize scales (width, height) preserving aspect ratio so that the
// longer dimension equals bound. Unknown source dimensions fall back to 16:9.
func boundedFrameSize(width, height, bound int) (int, int) {
	if width <= 0 || height <= 0 {
		return bound, bound * 9 / 16
	}
	longer := width
	if height > longer {
		longer = height
	}
	ratio := float64(bound) / float64(longer)
	return int(math.Round(float64(width) * ratio)), int(math.Round(float64(height) * ratio))
}

// CountSamples decrements expected once for every sample image missing from
// dir, so the cue sheet is renumbered by omission.
func CountSamples(dir string, expected int) int {
	count := expected
	for n := 1; n <= expected; n++ {
		if _, err := os.Stat(filepath.Join(dir, SpriteFileName(n))); err != nil {
			count--
		}
	}
	return count
}

// BuildCueSheet renders a WEBVTT cue sheet of count sequential ten-second
// intervals. The final interval ends at the exact source duration rather than
// the next ten-second boundary.
func BuildCueSheet(count int, duration float64, frameW, frameH int) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for n := 1; n <= count; n++ {
		start := float64((n - 1) * PosterSampleInterval)
		end := float64(n * PosterSampleInterval)
		if n == count {
			end = duration
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s --> %s\n", cueTimestamp(start), cueTimestamp(end)))
		b.WriteString(fmt.Sprintf("%s#xywh=0,0,%d,%d\n", SpriteFileName(n), frameW, frameH))
	}
	return b.String()
}

// cueTimestamp formats seconds as a WEBVTT timestamp (HH:MM:SS.mmm).
func cueTimestamp(seconds float64) string {
	millis := int(math.Round(seconds * 1000))
	h := millis / 3600000
	m := (millis % 3600000) / 60000
	s := (millis % 60000) / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
