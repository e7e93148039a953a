package attendance

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

// Marker is implemented by the Attendance pipeline orchestrator: the
// handler delegates here instead of calling the Service directly so that
// every HTTP-recorded attendance event runs the full streak/challenge/
// achievement/loyalty/engagement sequence.
type Marker interface {
	Mark(ctx context.Context, gymID, userID string, branchID, serviceType *string) (*Attendance, error)
}

type Handler struct {
	service *Service
	marker  Marker
	logger  *logger.Logger
}

func NewHandler(svc *Service, marker Marker, log *logger.Logger) *Handler {
	return &Handler{service: svc, marker: marker, logger: log}
}

type markRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	BranchID    *string `json:"branch_id"`
	ServiceType *string `json:"service_type"`
}

func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}

	var req markRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	a, err := h.marker.Mark(r.Context(), act.GymID, req.UserID, req.BranchID, req.ServiceType)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, a)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	a, err := h.service.Get(r.Context(), act.GymID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, a)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	userID := chi.URLParam(r, "userId")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	p := kernel.Page{Number: page, PerPage: perPage}
	rows, total, err := h.service.List(r.Context(), act.GymID, userID, p)
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
