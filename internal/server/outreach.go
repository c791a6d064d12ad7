package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
)

func (s *Server) SendReminder(c *gin.Context) {
	logEntry, err := s.outreachSvc.SendReminder(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logEntry})
}

type recordInboundEmailRequest struct {
	Subject    string `json:"subject"`
	Sentiment  string `json:"sentiment"`
	ReceivedAt string `json:"received_at"`
}

// RecordInboundEmail stores a debtor reply. Sentiment is optional; an
// unlabeled reply still counts toward the response rate.
func (s *Server) RecordInboundEmail(c *gin.Context) {
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

	var req recordInboundEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sentiment := engagementdomain.Sentiment(strings.ToLower(strings.TrimSpace(req.Sentiment)))
	if sentiment != "" && !engagementdomain.KnownSentiment(sentiment) {
		AbortWithError(c, engagementdomain.ErrInvalidSentiment)
		return
	}

	receivedAt, err := parseOptionalTime(req.ReceivedAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("received_at", "invalid_received_at", "invalid received_at"))
		return
	}

	now := s.clock.Now()
	if receivedAt == nil {
		receivedAt = &now
	}

	inbound := engagementdomain.InboundEmail{
		ID:         s.genID.Generate(),
		UserID:     userID,
		DebtorID:   debtor.ID,
		Subject:    strings.TrimSpace(req.Subject),
		Sentiment:  sentiment,
		ReceivedAt: *receivedAt,
		CreatedAt:  now,
	}

	if err := s.engagementRepo.InsertInboundEmail(c.Request.Context(), s.db, &inbound); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inbound})
}
