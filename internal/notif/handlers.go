package notif

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"camerpulse/internal/common"
	"camerpulse/internal/dbsql"
)

// NotificationService is the Dispatcher as seen by the HTTP layer.
type NotificationService interface {
	SendNotification(ctx context.Context, ev common.NotificationEvent) (Result, error)
	GetPreferences(ctx context.Context, userID string) (*dbsql.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, pref *dbsql.NotificationPreference) error
	RegisterDevice(ctx context.Context, userID, deviceToken, platform string) error
	History(ctx context.Context, userID string, limit, offset int) ([]*common.NotificationResponse, error)
}

type NotificationHandler struct {
	service NotificationService
	queue   common.NotificationQueue
	logger  *slog.Logger
}

func NewNotificationHandler(service NotificationService, queue common.NotificationQueue, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{service: service, queue: queue, logger: logger}
}

type registerDeviceRequest struct {
	UserID      string `json:"user_id"`
	DeviceToken string `json:"device_token"`
	Platform    string `json:"platform"`
}

func NewRouter(h *NotificationHandler, secret []byte) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "notifs-svc"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1/notifications").Subrouter()
	api.Use(mux.MiddlewareFunc(common.AuthMiddleware(secret)))

	// delivery is triggered by backend services, never by end users
	serviceOnly := common.RequireRole(common.RoleService)
	api.Handle("/send", serviceOnly(http.HandlerFunc(h.Send))).Methods(http.MethodPost)
	api.Handle("/enqueue", serviceOnly(http.HandlerFunc(h.Enqueue))).Methods(http.MethodPost)

	api.HandleFunc("/preferences/{userID}", h.GetPreferences).Methods(http.MethodGet)
	api.HandleFunc("/preferences/{userID}", h.UpdatePreferences).Methods(http.MethodPut)
	api.HandleFunc("/device/register", h.RegisterDevice).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}", h.History).Methods(http.MethodGet)

	return r
}

// Send delivers synchronously and reports the outcome.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var ev common.NotificationEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %w", common.ErrValidation))
		return
	}

	result, err := h.service.SendNotification(r.Context(), ev)
	if err != nil {
		h.logger.Warn("send notification failed", "category", ev.Category, "error", err)
		writeJSON(w, common.HTTPStatus(err), result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *NotificationHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var ev common.NotificationEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %w", common.ErrValidation))
		return
	}

	if err := h.queue.Enqueue(r.Context(), ev); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r, mux.Vars(r)["userID"])
	if !ok {
		return
	}

	pref, err := h.service.GetPreferences(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r, mux.Vars(r)["userID"])
	if !ok {
		return
	}

	var pref dbsql.NotificationPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %w", common.ErrValidation))
		return
	}
	pref.UserID = userID

	if err := h.service.UpdatePreferences(r.Context(), &pref); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &pref)
}

func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %w", common.ErrValidation))
		return
	}
	userID, ok := h.owner(w, r, req.UserID)
	if !ok {
		return
	}

	if err := h.service.RegisterDevice(r.Context(), userID, req.DeviceToken, req.Platform); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (h *NotificationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r, mux.Vars(r)["userID"])
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	notifications, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// owner resolves the user a request acts on. Users may only touch their
// own settings; anything else looks like a missing resource.
func (h *NotificationHandler) owner(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	caller, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return "", false
	}
	if requested == "" {
		return caller, true
	}
	if requested != caller {
		h.writeError(w, fmt.Errorf("user %s: %w", requested, common.ErrNotFound))
		return "", false
	}
	return requested, true
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, err error) {
	status := common.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("notification request failed", "status", status, "error", err)
		message = "temporarily unavailable, please retry"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
