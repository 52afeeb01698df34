// Package media serves uploaded message attachments back to clients.
package media

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"camerpulse/internal/common"
	"camerpulse/internal/dbmongo"
)

type Server struct {
	store  dbmongo.AttachmentStore
	router *mux.Router
	logger *slog.Logger
}

func NewServer(store dbmongo.AttachmentStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, router: mux.NewRouter(), logger: logger}
	s.router.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	content, attachment, err := s.store.Download(r.Context(), fileID)
	if errors.Is(err, common.ErrNotFound) {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("attachment download failed", "file_id", fileID, "error", err)
		http.Error(w, "temporarily unavailable, please retry", http.StatusServiceUnavailable)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", contentType(attachment))
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if attachment.Kind == common.AttachmentDocument {
		w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(attachment.Filename, `"`, "")+`"`)
	}
	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, content); err != nil {
		s.logger.Warn("attachment stream interrupted", "file_id", fileID, "error", err)
	}
}

// contentType prefers the MIME type recorded at upload time.
func contentType(a *dbmongo.Attachment) string {
	if a.MimeType != "" {
		return a.MimeType
	}
	switch strings.ToLower(filepath.Ext(a.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy","service":"media-server"}`))
}
