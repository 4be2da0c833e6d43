package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/errs"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/repository"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/schema"
	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/response"
)

// Caller identity comes from gateway-injected headers; the gateway
// authenticates upstream.
const (
	headerUserID = "x-user-id"
	headerRoleID = "x-role-id"
)

type NotifyMeHandler struct {
	subs  repository.SubscriptionRepository
	inApp repository.InAppRepository
	prefs *repository.PreferenceRepository
}

func NewNotifyMeHandler(subs repository.SubscriptionRepository, inApp repository.InAppRepository, prefs *repository.PreferenceRepository) *NotifyMeHandler {
	return &NotifyMeHandler{subs: subs, inApp: inApp, prefs: prefs}
}

// ----------------------
// Notify-me subscriptions
// ----------------------

type createSubscriptionRequest struct {
	InnovationID string                    `json:"innovationId"`
	Config       domain.SubscriptionConfig `json:"config"`
}

func (h *NotifyMeHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	roleID := r.Header.Get(headerRoleID)
	if roleID == "" {
		response.Error(w, http.StatusUnauthorized, "missing role")
		return
	}

	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.InnovationID == "" {
		response.Error(w, http.StatusBadRequest, "innovationId required")
		return
	}
	if !schema.IsNotifyMeEventType(req.Config.EventType) {
		response.Error(w, http.StatusBadRequest, "event type is not subscribable")
		return
	}
	switch req.Config.SubscriptionType {
	case domain.SubscriptionInstantly, domain.SubscriptionPeriodic:
	case domain.SubscriptionScheduled:
		if req.Config.SendDate == nil {
			response.Error(w, http.StatusBadRequest, "scheduled subscription requires a date")
			return
		}
		if !req.Config.SendDate.After(time.Now()) {
			response.Error(w, http.StatusBadRequest, "scheduled date must be in the future")
			return
		}
	default:
		response.Error(w, http.StatusBadRequest, "invalid subscription type")
		return
	}

	sub := &domain.Subscription{
		UserRoleID:   roleID,
		InnovationID: req.InnovationID,
		Config:       req.Config,
	}
	created, err := h.subs.CreateSubscription(r.Context(), sub)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *NotifyMeHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	roleID := r.Header.Get(headerRoleID)
	if roleID == "" {
		response.Error(w, http.StatusUnauthorized, "missing role")
		return
	}

	items, err := h.subs.ListSubscriptions(r.Context(), roleID, r.URL.Query().Get("innovationId"))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *NotifyMeHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	roleID := r.Header.Get(headerRoleID)
	if roleID == "" {
		response.Error(w, http.StatusUnauthorized, "missing role")
		return
	}

	id := chi.URLParam(r, "subscriptionId")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(w, http.StatusNotFound, "subscription not found")
		return
	}
	if err := h.subs.Unsubscribe(r.Context(), id, roleID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "subscription not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------
// In-app notifications
// ----------------------

func (h *NotifyMeHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	roleID := r.Header.Get(headerRoleID)
	if roleID == "" {
		response.Error(w, http.StatusUnauthorized, "missing role")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.inApp.ListUnread(r.Context(), roleID, limit, offset)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *NotifyMeHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	roleID := r.Header.Get(headerRoleID)
	if roleID == "" {
		response.Error(w, http.StatusUnauthorized, "missing role")
		return
	}

	count, err := h.inApp.CountUnread(r.Context(), roleID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotifyMeHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	roleID := r.Header.Get(headerRoleID)
	if roleID == "" {
		response.Error(w, http.StatusUnauthorized, "missing role")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(w, http.StatusNotFound, "notification not found")
		return
	}
	if err := h.inApp.MarkAsRead(r.Context(), id, roleID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------
// Email preferences
// ----------------------

type upsertPreferenceRequest struct {
	Category domain.PreferenceCategory `json:"category"`
	Enabled  bool                      `json:"enabled"`
}

func (h *NotifyMeHandler) UpsertPreference(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "missing user")
		return
	}

	var req upsertPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Category == "" {
		response.Error(w, http.StatusBadRequest, "category required")
		return
	}

	if err := h.prefs.UpsertPreference(r.Context(), userID, req.Category, req.Enabled); err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotifyMeHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		response.Error(w, http.StatusUnauthorized, "missing user")
		return
	}

	prefs, err := h.prefs.EmailPreferences(r.Context(), userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, prefs)
}
