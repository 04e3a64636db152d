package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBitrate(t *testing.T) {
	cases := []struct {
		value string
		want  int64
	}{
		{"5120k", 5120 * 1024},
		{"128k", 128 * 1024},
		{"96000", 96000},
		// Every "k" is stripped before parsing, wherever it sits.
		{"k300", 300 * 1024},
	}
	for _, c := range cases {
		got, err := ParseBitrate(c.value)
		require.NoError(t, err, c.value)
		assert.Equal(t, c.want, got, c.value)
	}
}

func TestParseBitrateRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "fast", "5m", "12.5k"} {
		_, err := ParseBitrate(value)
		assert.Error(t, err, value)
	}
}
