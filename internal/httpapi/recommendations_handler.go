package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"interndesk/internal/domain"
	"interndesk/internal/logging"
	"interndesk/internal/metrics"
	"interndesk/internal/rank"
	"interndesk/internal/store"
)

type RecommendationsHandler struct {
	Store  Store
	Engine rank.Engine
}

type recommendReq struct {
	UserID string `json:"userId"`
}

// recommend loads the user and the whole catalog concurrently and ranks it.
// Errors are domain.ErrInvalidInput, domain.ErrUserNotFound or domain.ErrDataUnavailable.
func (h RecommendationsHandler) recommend(ctx context.Context, userID string) ([]rank.Result, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}

	var (
		user    domain.User
		catalog []domain.Internship
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := h.Store.GetUser(gctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: load user: %v", domain.ErrDataUnavailable, err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		list, err := h.Store.ListInternships(gctx, store.ListInternshipsOpts{SkipApplicants: true})
		if err != nil {
			return fmt.Errorf("%w: load catalog: %v", domain.ErrDataUnavailable, err)
		}
		catalog = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return h.Engine.Recommend(user.Skills, catalog), nil
}

func (h RecommendationsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req recommendReq
	if err := decodeJSON(r, &req); err != nil {
		metrics.ObserveRecommendation("invalid", 0, time.Since(start))
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = callerID(r)
	}

	results, err := h.recommend(r.Context(), userID)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		metrics.ObserveRecommendation("invalid", 0, time.Since(start))
		writeMessage(w, http.StatusBadRequest, "User ID is required")
		return
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.ObserveRecommendation("user_not_found", 0, time.Since(start))
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		metrics.ObserveRecommendation("error", 0, time.Since(start))
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("recommendations failed")
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error generating recommendations",
			"details": err.Error(),
		})
		return
	}

	metrics.ObserveRecommendation("ok", len(results), time.Since(start))
	logging.Ctx(r.Context()).Debug().Str("user_id", userID).Int("results", len(results)).Msg("recommendations sent")
	writeJSON(w, map[string]any{"recommendations": results})
}
