package user

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymflow/gymflow-backend/internal/authn"
	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

type createRequest struct {
	BranchID    *string  `json:"branch_id"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Role        string   `json:"role" validate:"required"`
	Permissions []string `json:"permissions"`
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

	hash, err := authn.HashPassword(req.Password)
	if err != nil {
		httputil.Error(w, errors.Internal("failed to hash password"))
		return
	}

	u, err := h.service.Create(r.Context(), act.GymID, CreateInput{
		BranchID:     req.BranchID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Permissions:  req.Permissions,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, u)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	u, err := h.service.GetByID(r.Context(), act.GymID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, u)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil {
		httputil.Error(w, errors.Unauthorized("no authenticated principal"))
		return
	}
	if act.GymID == "" {
		httputil.JSON(w, http.StatusOK, act)
		return
	}
	u, err := h.service.GetByID(r.Context(), act.GymID, act.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, u)
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

	p := kernel.Page{Number: page, PerPage: perPage}
	rows, total, err := h.service.List(r.Context(), act.GymID,
		r.URL.Query().Get("branch_id"), r.URL.Query().Get("role"), r.URL.Query().Get("search"), p)
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
	httputil.NoContent(w)
}

type createBranchRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	var req createBranchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	b, err := h.service.CreateBranch(r.Context(), act.GymID, req.Name)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, b)
}

func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
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
	p := kernel.Page{Number: page, PerPage: perPage}
	rows, total, err := h.service.ListBranches(r.Context(), act.GymID, p)
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
