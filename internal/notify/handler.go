package notify

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

type Handler struct {
	service *Service
	hub     *Hub
	logger  *logger.Logger
}

func NewHandler(svc *Service, hub *Hub, log *logger.Logger) *Handler {
	return &Handler{service: svc, hub: hub, logger: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	p := kernel.Page{Number: page, PerPage: perPage}
	rows, total, err := h.service.List(r.Context(), act.GymID, act.ID, p, unreadOnly)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	result := kernel.NewResult(total, p)
	httputil.List(w, rows, &httputil.Meta{
		Page:       result.Page,
		PerPage:    result.PerPage,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	if err := h.service.MarkAsRead(r.Context(), act.GymID, act.ID, chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	if err := h.service.MarkAllAsRead(r.Context(), act.GymID, act.ID); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	if err := h.service.Delete(r.Context(), act.GymID, act.ID, chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeWS upgrades the connection and joins the caller's gym room for
// real-time push (spec.md §6).
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	if err := h.hub.ServeWS(w, r, act.GymID); err != nil {
		h.logger.Error().Err(err).Msg("notify: websocket upgrade failed")
	}
}
