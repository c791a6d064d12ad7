package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/intelligence"
)

type calculateIntelligenceRequest struct {
	DebtorID       string `json:"debtor_id"`
	RecalculateAll bool   `json:"recalculate_all"`
}

// CalculateCollectionIntelligence scores one debtor, or every active
// debtor of the caller, and answers with the function-style payload.
func (s *Server) CalculateCollectionIntelligence(c *gin.Context) {
	var req calculateIntelligenceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	var (
		results []intelligence.DebtorScore
		err     error
	)

	debtorID := strings.TrimSpace(req.DebtorID)
	switch {
	case debtorID != "" && !req.RecalculateAll:
		var score intelligence.DebtorScore
		score, err = s.intelligenceSvc.ScoreDebtor(c.Request.Context(), debtorID)
		if err == nil {
			results = []intelligence.DebtorScore{score}
		}
	default:
		results, err = s.intelligenceSvc.ScoreAllForUser(c.Request.Context())
	}

	if err != nil {
		status, message := functionErrorStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	if results == nil {
		results = []intelligence.DebtorScore{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

func functionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, debtordomain.ErrInvalidUser):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, debtordomain.ErrInvalidID), errors.Is(err, debtordomain.ErrNotFound):
		return http.StatusNotFound, "debtor not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
