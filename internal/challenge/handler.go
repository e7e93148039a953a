package challenge

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gymflow/gymflow-backend/internal/authn"
	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{service: svc, logger: log}
}

type createRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Metric      string  `json:"metric" validate:"required,oneof=attendance visits"`
	Goal        int     `json:"goal" validate:"required,gt=0"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" validate:"required"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}

	var req createRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid start_date"))
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid end_date"))
		return
	}

	c := &Challenge{
		Name:        req.Name,
		Description: req.Description,
		Metric:      req.Metric,
		Goal:        req.Goal,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
	}

	features := authn.TokenFeatures(r.Context())
	if err := h.service.Create(r.Context(), act.GymID, features, c); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, c)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	c, err := h.service.Get(r.Context(), act.GymID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, c)
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
	activeOnly := r.URL.Query().Get("active_only") == "true"

	p := kernel.Page{Number: page, PerPage: perPage}
	rows, total, err := h.service.List(r.Context(), act.GymID, p, activeOnly)
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

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	if err := h.service.Join(r.Context(), act.GymID, chi.URLParam(r, "id"), act.ID); err != nil {
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
	if err := h.service.Delete(r.Context(), act.GymID, chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
