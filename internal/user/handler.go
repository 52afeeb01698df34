package user

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"camerpulse/internal/common"
)

// Handler serves profile reads and self-service updates over HTTP.
type Handler struct {
	userService UserService
	logger      *slog.Logger
}

func NewHandler(userService UserService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{userService: userService, logger: logger}
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// RegisterRoutes mounts the profile routes on an authenticated subrouter.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.GetOwnProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPut)
	r.HandleFunc("/profiles/{userID}", h.GetProfile).Methods(http.MethodGet)
}

func (h *Handler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return
	}
	h.writeProfile(w, r, userID)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, mux.Vars(r)["userID"])
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %w", common.ErrValidation))
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userID, req.DisplayName, req.AvatarURL)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := common.HTTPStatus(err)
	message := err.Error()
	switch {
	case status == http.StatusNotFound:
		message = "profile not found"
	case status >= http.StatusInternalServerError:
		h.logger.Error("profile request failed", "status", status, "error", err)
		message = "temporarily unavailable, please retry"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
