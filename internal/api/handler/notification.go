package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tradeease/tradeease/internal/api/models"
	"github.com/tradeease/tradeease/internal/api/response"
	"github.com/tradeease/tradeease/internal/notify"
)

// NotificationHandler serves the notification history and filter settings.
type NotificationHandler struct {
	dispatcher *notify.Dispatcher
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

// List handles GET /v1/notifications?limit=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, limitErr := queryInt(r, "limit", 20, 1, 100)
	if limitErr != nil {
		response.BadRequest(w, r, "invalid limit", collect(limitErr))
		return
	}

	response.JSON(w, r, http.StatusOK, models.NotificationList{
		Notifications: h.dispatcher.Recent(limit),
		Settings:      h.dispatcher.Settings(),
	})
}

// UpdateSettings handles PUT /v1/notifications/settings.
func (h *NotificationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s notify.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var errs []models.FieldError
	for _, sev := range s.SeverityFilter {
		switch sev {
		case notify.SeverityExtreme, notify.SeveritySevere, notify.SeverityModerate, notify.SeverityMinor:
		default:
			errs = append(errs, models.FieldError{Field: "severityFilter", Message: "unknown severity " + string(sev), Code: models.CodeInvalidValue})
		}
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid settings", errs)
		return
	}
	if s.SeverityFilter == nil {
		s.SeverityFilter = []notify.Severity{}
	}

	h.dispatcher.UpdateSettings(s)
	response.JSON(w, r, http.StatusOK, h.dispatcher.Settings())
}
