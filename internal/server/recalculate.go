package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DailyRecalculateScores runs the batch risk recalculation across every
// account and reports the per-user outcome.
func (s *Server) DailyRecalculateScores(c *gin.Context) {
	report, err := s.recalcJob.RecalculateAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": report.Summary,
		"results": report.Results,
	})
}
