package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db/pagination"
)

type createDebtorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) CreateDebtor(c *gin.Context) {
	var req createDebtorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.debtorSvc.Create(c.Request.Context(), debtordomain.CreateDebtorRequest{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDebtors(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name            string `form:"name"`
		HealthTier      string `form:"health_tier"`
		RiskTier        string `form:"risk_tier"`
		IncludeArchived bool   `form:"include_archived"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.debtorSvc.List(c.Request.Context(), debtordomain.ListDebtorRequest{
		PageToken:       query.PageToken,
		PageSize:        query.PageSize,
		Name:            strings.TrimSpace(query.Name),
		HealthTier:      strings.TrimSpace(query.HealthTier),
		RiskTier:        strings.TrimSpace(query.RiskTier),
		IncludeArchived: query.IncludeArchived,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetDebtorByID(c *gin.Context) {
	resp, err := s.debtorSvc.GetByID(c.Request.Context(), debtordomain.GetDebtorRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveDebtor(c *gin.Context) {
	if err := s.debtorSvc.Archive(c.Request.Context(), debtordomain.GetDebtorRequest{
		ID: c.Param("id"),
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}
