package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"camerpulse/internal/common"
)

type Attachment struct {
	ID             string                `json:"id"`
	Filename       string                `json:"filename"`
	Size           int64                 `json:"size"`
	Kind           common.AttachmentKind `json:"kind"`
	MimeType       string                `json:"mime_type"`
	ConversationID string                `json:"conversation_id"`
	UploadedBy     string                `json:"uploaded_by"`
	UploadedAt     time.Time             `json:"uploaded_at"`
}

type AttachmentStore interface {
	Upload(ctx context.Context, conversationID, uploaderID, filename, mimeType string, content io.Reader) (*Attachment, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, *Attachment, error)
}

type gridFSAttachments struct {
	bucket *gridfs.Bucket
	now    func() time.Time
}

func NewAttachmentStore(mongoClient *MongoClient) AttachmentStore {
	return &gridFSAttachments{
		bucket: mongoClient.GridFS,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *gridFSAttachments) Upload(
	ctx context.Context,
	conversationID, uploaderID, filename, mimeType string,
	content io.Reader,
) (*Attachment, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required: %w", common.ErrValidation)
	}

	uploadedAt := s.now()
	kind := common.DetectAttachmentKind(mimeType)
	metadata := bson.M{
		"kind":            kind.String(),
		"mime_type":       mimeType,
		"conversation_id": conversationID,
		"uploaded_by":     uploaderID,
		"uploaded_at":     uploadedAt,
	}

	stream, err := s.bucket.OpenUploadStream(filename, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("upload finalize failed: %w", err)
	}

	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected file id type %T", stream.FileID)
	}

	return &Attachment{
		ID:             id.Hex(),
		Filename:       filename,
		Size:           size,
		Kind:           kind,
		MimeType:       mimeType,
		ConversationID: conversationID,
		UploadedBy:     uploaderID,
		UploadedAt:     uploadedAt,
	}, nil
}

func (s *gridFSAttachments) Download(ctx context.Context, fileID string) (io.ReadCloser, *Attachment, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid file id %q: %w", fileID, common.ErrNotFound)
	}

	stream, err := s.bucket.OpenDownloadStream(objectID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, nil, fmt.Errorf("file %s: %w", fileID, common.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	file := stream.GetFile()
	var metadata bson.M
	if file.Metadata != nil {
		if err := bson.Unmarshal(file.Metadata, &metadata); err != nil {
			metadata = nil
		}
	}

	return stream, attachmentFromMetadata(fileID, file.Name, file.Length, file.UploadDate, metadata), nil
}

func attachmentFromMetadata(fileID, name string, size int64, uploadDate time.Time, metadata bson.M) *Attachment {
	a := &Attachment{
		ID:             fileID,
		Filename:       name,
		Size:           size,
		Kind:           common.AttachmentKind(stringFromMap(metadata, "kind")),
		MimeType:       stringFromMap(metadata, "mime_type"),
		ConversationID: stringFromMap(metadata, "conversation_id"),
		UploadedBy:     stringFromMap(metadata, "uploaded_by"),
		UploadedAt:     uploadDate,
	}
	if a.Kind == "" {
		a.Kind = common.DetectAttachmentKind(a.MimeType)
	}
	return a
}

func stringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
