package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
)

type createInvoiceRequest struct {
	Amount            float64  `json:"amount"`
	AmountOutstanding *float64 `json:"amount_outstanding"`
	Status            string   `json:"status"`
	IssueDate         string   `json:"issue_date"`
	DueDate           string   `json:"due_date"`
	PaidAt            string   `json:"paid_at"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
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

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.Amount <= 0 {
		AbortWithError(c, invoicedomain.ErrInvalidAmount)
		return
	}

	status := invoicedomain.InvoiceStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = invoicedomain.InvoiceStatusOpen
	}
	if !invoicedomain.ValidStatus(status) {
		AbortWithError(c, invoicedomain.ErrInvalidStatus)
		return
	}

	issueDate, err := parseOptionalTime(req.IssueDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue_date"))
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	paidAt, err := parseOptionalTime(req.PaidAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("paid_at", "invalid_paid_at", "invalid paid_at"))
		return
	}

	outstanding := req.Amount
	if req.AmountOutstanding != nil {
		if *req.AmountOutstanding < 0 {
			AbortWithError(c, invoicedomain.ErrInvalidAmount)
			return
		}
		outstanding = *req.AmountOutstanding
	}
	if status == invoicedomain.InvoiceStatusPaid {
		outstanding = 0
	}

	now := s.clock.Now()
	invoice := invoicedomain.Invoice{
		ID:                s.genID.Generate(),
		UserID:            userID,
		DebtorID:          debtor.ID,
		Status:            status,
		Amount:            req.Amount,
		AmountOutstanding: outstanding,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		PaidAt:            paidAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.invoiceRepo.Insert(c.Request.Context(), s.db, &invoice); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) ListDebtorInvoices(c *gin.Context) {
	debtor, err := s.debtorSvc.GetByID(c.Request.Context(), debtordomain.GetDebtorRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	invoices, err := s.invoiceRepo.ListByDebtor(c.Request.Context(), s.db, debtor.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}
