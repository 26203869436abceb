package daemon

import (
	"errors"
	"net/http"

	"github.com/theirongolddev/aurion/internal/allocation"
	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/store"
	"github.com/theirongolddev/aurion/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// abortWithError maps validation and store errors onto HTTP status codes.
func abortWithError(c *gin.Context, err error) {
	var verr *tracker.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, verr)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrUnknownCollection):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrUnknownField), errors.Is(err, store.ErrInvalidValue):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Service) handleList(col model.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := s.store.List(c.Request.Context(), col)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap.Records())
	}
}

func (s *Service) handleGet(col model.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := s.store.Get(c.Request.Context(), col, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Service) handleCreate(col model.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
			return
		}

		rec, err := tracker.FromForm(col, stringForm(body), s.cfg.Roster, s.now())
		if err != nil {
			abortWithError(c, err)
			return
		}

		id, err := s.store.Create(c.Request.Context(), rec)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func (s *Service) handleDelete(col model.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Delete(c.Request.Context(), col, c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Service) handleToggle(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	rec, err := s.store.Get(ctx, model.Expenses, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	exp, ok := rec.(model.Expense)
	if !ok {
		abortWithError(c, errors.New("stored record is not an expense"))
		return
	}

	next := tracker.ToggleStatus(exp)
	if err := s.store.Update(ctx, model.Expenses, id, map[string]any{"status": string(next)}); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": next})
}

// FoundersReport is served at /v1/report/founders.
type FoundersReport struct {
	GrandTotals []allocation.GrandTotal       `json:"grandTotals"`
	Projects    []allocation.ProjectBreakdown `json:"projects"`
}

// SummaryReport is served at /v1/report/summary.
type SummaryReport struct {
	allocation.Summary
	Coverage []allocation.Coverage `json:"coverage"`
}

func (s *Service) handleFounders(c *gin.Context) {
	l, err := s.store.Load(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, FoundersReport{
		GrandTotals: allocation.GrandTotals(l, s.cfg.Roster),
		Projects:    allocation.Breakdown(l, s.cfg.Roster),
	})
}

func (s *Service) handleSummary(c *gin.Context) {
	l, err := s.store.Load(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, SummaryReport{
		Summary:  allocation.Summarize(l),
		Coverage: allocation.AttributionCoverage(l),
	})
}

func (s *Service) handleFunds(c *gin.Context) {
	l, err := s.store.Load(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocation.ProjectRows(l))
}
