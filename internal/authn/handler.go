package authn

import (
	"net/http"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
)

// Handler exposes the Auth & Capability Layer's login/refresh/logout/me
// routes (spec.md §6).
type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	GymID    string `json:"gym_id"`
}

// Login resolves GymID out of the request body — a gym's staff and
// members log in against their gym's slug-derived GymID; a superadmin
// or gym owner omits it.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), &LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		GymID:    req.GymID,
	}, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, resp)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := actor.FromContext(r.Context())
	if principal == nil {
		httputil.Error(w, errors.Unauthorized("no authenticated principal"))
		return
	}
	httputil.JSON(w, http.StatusOK, principal)
}
