package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
)

type createTaskRequest struct {
	Title   string `json:"title"`
	Status  string `json:"status"`
	DueDate string `json:"due_date"`
}

func (s *Server) CreateTask(c *gin.Context) {
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

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		AbortWithError(c, engagementdomain.ErrInvalidTask)
		return
	}

	status := engagementdomain.TaskStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = engagementdomain.TaskStatusOpen
	}
	switch status {
	case engagementdomain.TaskStatusOpen, engagementdomain.TaskStatusInProgress, engagementdomain.TaskStatusClosed:
	default:
		AbortWithError(c, engagementdomain.ErrInvalidTask)
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	now := s.clock.Now()
	task := engagementdomain.CollectionTask{
		ID:        s.genID.Generate(),
		UserID:    userID,
		DebtorID:  debtor.ID,
		Title:     title,
		Status:    status,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.engagementRepo.InsertTask(c.Request.Context(), s.db, &task); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (s *Server) ListDebtorTasks(c *gin.Context) {
	debtor, err := s.debtorSvc.GetByID(c.Request.Context(), debtordomain.GetDebtorRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tasks, err := s.engagementRepo.ListTasksByDebtor(c.Request.Context(), s.db, debtor.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tasks})
}
