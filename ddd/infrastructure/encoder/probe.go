package encoder

import (
	"os/exec"
	"strconv"
	"strings"
)

// ProbeDuration returns the input duration in seconds, or 0 when probing
// fails.
func (r *Runner) ProbeDuration(inputPath string) float64 {
	cmd := exec.Command(r.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0
	}
	return val
}

// ProbeDimensions returns the width and height of the first video stream, or
// zeros when probing fails.
func (r *Runner) ProbeDimensions(inputPath string) (width, height int) {
	cmd := exec.Command(r.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0
	}
	parts := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(parts) < 2 {
		return 0, 0
	}
	width, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	height, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	return width, height
}
