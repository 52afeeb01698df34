package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"camerpulse/internal/common"
	"camerpulse/internal/dbmongo"
)

type fakeStore struct {
	files map[string]string
	meta  map[string]*dbmongo.Attachment
	err   error
}

func (f *fakeStore) Upload(context.Context, string, string, string, string, io.Reader) (*dbmongo.Attachment, error) {
	return nil, errors.New("not supported")
}

func (f *fakeStore) Download(_ context.Context, fileID string) (io.ReadCloser, *dbmongo.Attachment, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	body, ok := f.files[fileID]
	if !ok {
		return nil, nil, fmt.Errorf("file %s: %w", fileID, common.ErrNotFound)
	}
	return io.NopCloser(strings.NewReader(body)), f.meta[fileID], nil
}

func TestServer_ServeFile(t *testing.T) {
	store := &fakeStore{
		files: map[string]string{"img": "png-bytes", "doc": "pdf-bytes", "raw": "bytes"},
		meta: map[string]*dbmongo.Attachment{
			"img": {ID: "img", Filename: "photo.png", Size: 9, MimeType: "image/png", Kind: common.AttachmentImage},
			"doc": {ID: "doc", Filename: `report "final".pdf`, Size: 9, MimeType: "application/pdf", Kind: common.AttachmentDocument},
			"raw": {ID: "raw", Filename: "clip.webm", Size: 5, Kind: common.AttachmentVideo},
		},
	}

	tests := []struct {
		name        string
		method      string
		path        string
		store       *fakeStore
		wantStatus  int
		wantType    string
		wantBody    string
		disposition string
	}{
		{name: "image", method: http.MethodGet, path: "/media/img", store: store, wantStatus: http.StatusOK, wantType: "image/png", wantBody: "png-bytes"},
		{name: "document downloads", method: http.MethodGet, path: "/media/doc", store: store, wantStatus: http.StatusOK, wantType: "application/pdf", wantBody: "pdf-bytes", disposition: `attachment; filename="report final.pdf"`},
		{name: "type from extension", method: http.MethodGet, path: "/media/raw", store: store, wantStatus: http.StatusOK, wantType: "video/webm", wantBody: "bytes"},
		{name: "head has no body", method: http.MethodHead, path: "/media/img", store: store, wantStatus: http.StatusOK, wantType: "image/png"},
		{name: "unknown file", method: http.MethodGet, path: "/media/missing", store: store, wantStatus: http.StatusNotFound},
		{name: "store down", method: http.MethodGet, path: "/media/img", store: &fakeStore{err: errors.New("no reachable servers")}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewServer(tt.store, common.NewLogger("error", "text")).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			assert.Equal(t, tt.disposition, rec.Header().Get("Content-Disposition"))
		})
	}
}

func TestServer_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(&fakeStore{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "media-server")
}
