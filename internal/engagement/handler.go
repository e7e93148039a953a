package engagement

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

type Handler struct {
	db     *database.DB
	repo   *Repository
	logger *logger.Logger
}

func NewHandler(db *database.DB, repo *Repository, log *logger.Logger) *Handler {
	return &Handler{db: db, repo: repo, logger: log}
}

// Current returns the member's current engagement score.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	userID := chi.URLParam(r, "userId")

	var score *Score
	err := h.db.WithTenant(r.Context(), act.GymID, func(ctx context.Context) error {
		var err error
		score, err = h.repo.CurrentFor(ctx, userID)
		return err
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if score == nil {
		httputil.Error(w, errors.NotFound("engagement score"))
		return
	}
	httputil.JSON(w, http.StatusOK, score)
}

// History returns the member's engagement score series, most recent first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil || act.GymID == "" {
		httputil.Error(w, errors.BadRequest("gym context is required"))
		return
	}
	userID := chi.URLParam(r, "userId")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var rows []*Score
	err := h.db.WithTenant(r.Context(), act.GymID, func(ctx context.Context) error {
		var err error
		rows, err = h.repo.History(ctx, userID, limit)
		return err
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}
