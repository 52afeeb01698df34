package common

import "strings"

// MessageType tags a message as plain text or a media attachment
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeMedia MessageType = "media"
)

func (mt MessageType) String() string {
	return string(mt)
}

func (mt MessageType) IsValid() bool {
	return mt == MessageTypeText || mt == MessageTypeMedia
}

// AttachmentKind is the coarse kind of an uploaded attachment, stored in GridFS metadata
type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentDocument AttachmentKind = "document"
)

func (k AttachmentKind) String() string {
	return string(k)
}

// DetectAttachmentKind maps a MIME type onto an AttachmentKind.
// Anything that is not image, video or audio is a document.
func DetectAttachmentKind(mimeType string) AttachmentKind {
	lowerMimeType := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(lowerMimeType, "image/"):
		return AttachmentImage
	case strings.HasPrefix(lowerMimeType, "video/"):
		return AttachmentVideo
	case strings.HasPrefix(lowerMimeType, "audio/"):
		return AttachmentAudio
	}
	return AttachmentDocument
}
