package gateway

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBitrate converts a preset bitrate string to an integer. A value
// suffixed with "k" is multiplied by 1024; anything else is taken literally.
// Encoded rendition bitrates depend on this exact rule, so it must not be
// extended to other suffixes.
func ParseBitrate(value string) (int64, error) {
	if strings.Contains(value, "k") {
		n, err := strconv.ParseInt(strings.ReplaceAll(value, "k", ""), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse bitrate %q: %w", value, err)
		}
		return n * 1024, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bitrate %q: %w", value, err)
	}
	return n, nil
}
