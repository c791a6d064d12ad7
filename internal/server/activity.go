package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
)

type createActivityRequest struct {
	Direction  string `json:"direction"`
	Note       string `json:"note"`
	OccurredAt string `json:"occurred_at"`
}

func (s *Server) CreateActivity(c *gin.Context) {
	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok || userID == 0 {
		AbortWithError(c, debtordomain.ErrInvalidUser)
		return
	}

	debtor, err := s.debtorSvc.GetByID(c.Request.Context(), debtordomain.GetDebtorRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	direction := engagementdomain.ActivityDirection(strings.ToLower(strings.TrimSpace(req.Direction)))
	switch direction {
	case engagementdomain.DirectionInbound, engagementdomain.DirectionOutbound:
	default:
		AbortWithError(c, newValidationError("direction", "invalid_direction", "direction must be inbound or outbound"))
		return
	}

	occurredAt := s.clock.Now()
	if parsed, err := parseOptionalTime(req.OccurredAt, false); err != nil {
		AbortWithError(c, newValidationError("occurred_at", "invalid_occurred_at", "invalid occurred_at"))
		return
	} else if parsed != nil {
		occurredAt = *parsed
	}

	activity := engagementdomain.CollectionActivity{
		ID:         s.genID.Generate(),
		UserID:     userID,
		DebtorID:   debtor.ID,
		Direction:  direction,
		Note:       strings.TrimSpace(req.Note),
		OccurredAt: occurredAt,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.engagementRepo.InsertActivity(c.Request.Context(), s.db, &activity); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activity})
}

func (s *Server) ListDebtorActivities(c *gin.Context) {
	debtor, err := s.debtorSvc.GetByID(c.Request.Context(), debtordomain.GetDebtorRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	activities, err := s.engagementRepo.ListActivitiesByDebtor(c.Request.Context(), s.db, debtor.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activities})
}
