package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageType_IsValid(t *testing.T) {
	assert.True(t, MessageTypeText.IsValid())
	assert.True(t, MessageTypeMedia.IsValid())
	assert.False(t, MessageType("sticker").IsValid())
	assert.Equal(t, "text", MessageTypeText.String())
}

func TestDetectAttachmentKind(t *testing.T) {
	cases := []struct {
		input    string
		expected AttachmentKind
	}{
		{"image/jpeg", AttachmentImage},
		{"IMAGE/PNG", AttachmentImage}, // case insensitive
		{"video/mp4", AttachmentVideo},
		{"Video/webm", AttachmentVideo},
		{"audio/ogg", AttachmentAudio},
		{"application/pdf", AttachmentDocument},
		{"text/plain", AttachmentDocument},
		{"", AttachmentDocument},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, DetectAttachmentKind(tc.input), "Failed for MIME type: %s", tc.input)
	}
}
