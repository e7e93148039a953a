package membership

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// Lifecycle is implemented by the membership pipeline orchestrator: the
// handler delegates Create/Renew here instead of calling Service
// directly so that payment recording and the MEMBERSHIP_RENEWED
// notification run inside the same tenant transaction.
type Lifecycle interface {
	Create(ctx context.Context, gymID string, in CreateInput) (*Membership, *Payment, error)
	Renew(ctx context.Context, gymID, id string, newEndDate time.Time, amount, taxAmount, discountAmount float64, paymentRef, method string) (*Membership, *Payment, error)
}

type Handler struct {
	service   *Service
	lifecycle Lifecycle
}

func NewHandler(svc *Service, lifecycle Lifecycle) *Handler {
	return &Handler{service: svc, lifecycle: lifecycle}
}

type createRequest struct {
	UserID         string     `json:"user_id" validate:"required"`
	PlanID         *string    `json:"plan_id"`
	BranchID       *string    `json:"branch_id"`
	StartDate      time.Time  `json:"start_date" validate:"required"`
	EndDate        time.Time  `json:"end_date" validate:"required"`
	OriginalAmount float64    `json:"original_amount" validate:"required"`
	DiscountAmount float64    `json:"discount_amount"`
	TaxAmount      float64    `json:"tax_amount"`
	PaymentRef     string     `json:"payment_ref" validate:"required"`
	Method         string     `json:"method"`
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

	m, payment, err := h.lifecycle.Create(r.Context(), act.GymID, CreateInput{
		UserID:         req.UserID,
		PlanID:         req.PlanID,
		BranchID:       req.BranchID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		OriginalAmount: req.OriginalAmount,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		PaymentRef:     req.PaymentRef,
		Method:         req.Method,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, map[string]interface{}{"membership": m, "payment": payment})
}

type renewRequest struct {
	NewEndDate     time.Time `json:"new_end_date" validate:"required"`
	Amount         float64   `json:"amount" validate:"required"`
	TaxAmount      float64   `json:"tax_amount"`
	DiscountAmount float64   `json:"discount_amount"`
	PaymentRef     string    `json:"payment_ref" validate:"required"`
	Method         string    `json:"method"`
}

func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}

	var req renewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	m, payment, err := h.lifecycle.Renew(r.Context(), act.GymID, chi.URLParam(r, "id"), req.NewEndDate,
		req.Amount, req.TaxAmount, req.DiscountAmount, req.PaymentRef, req.Method)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{"membership": m, "payment": payment})
}

func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, gymID, id string) (*Membership, error) {
		return h.service.Suspend(ctx, gymID, id)
	})
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, gymID, id string) (*Membership, error) {
		return h.service.Resume(ctx, gymID, id)
	})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	var req cancelRequest
	_ = httputil.DecodeJSON(r, &req)

	m, err := h.service.Cancel(r.Context(), act.GymID, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, m)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, gymID, id string) (*Membership, error)) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	m, err := fn(r.Context(), act.GymID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, m)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	m, err := h.service.GetByID(r.Context(), act.GymID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, m)
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
