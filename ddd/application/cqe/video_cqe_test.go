package cqe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/gateway"
)

func TestUploadSubtitleCqeValidate(t *testing.T) {
	valid := UploadSubtitleCqe{
		VideoID:  "abc123",
		Language: "en",
		Content:  "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhi\n",
	}
	require.NoError(t, valid.Validate())

	// Exports from some editors carry a byte-order mark before the signature.
	withBOM := valid
	withBOM.Content = "\uFEFF" + valid.Content
	require.NoError(t, withBOM.Validate())

	garbage := valid
	garbage.Content = "1\n00:00:00,000 --> 00:00:01,000\nhi\n"
	err := garbage.Validate()
	var verr *gateway.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "content", verr.Field)

	badLang := valid
	badLang.Language = "france"
	err = badLang.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "language", verr.Field)
}
