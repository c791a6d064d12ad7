// Package domain contains persistence models for collection invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusOpen          InvoiceStatus = "Open"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PartiallyPaid"
	InvoiceStatusInPaymentPlan InvoiceStatus = "InPaymentPlan"
	InvoiceStatusOverdue       InvoiceStatus = "Overdue"
	InvoiceStatusPaid          InvoiceStatus = "Paid"
	InvoiceStatusDisputed      InvoiceStatus = "Disputed"
	InvoiceStatusCanceled      InvoiceStatus = "Canceled"
	InvoiceStatusSettled       InvoiceStatus = "Settled"
	InvoiceStatusWrittenOff    InvoiceStatus = "WrittenOff"
)

// Invoice represents a receivable owed by a debtor.
type Invoice struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID            snowflake.ID      `gorm:"not null;index" json:"user_id"`
	DebtorID          snowflake.ID      `gorm:"not null;index" json:"debtor_id"`
	Status            InvoiceStatus     `gorm:"type:text;not null;default:'Open'" json:"status"`
	Amount            float64           `gorm:"not null;default:0" json:"amount"`
	AmountOutstanding float64           `gorm:"not null;default:0" json:"amount_outstanding"`
	IssueDate         *time.Time        `gorm:"" json:"issue_date,omitempty"`
	DueDate           *time.Time        `gorm:"" json:"due_date,omitempty"`
	PaidAt            *time.Time        `gorm:"" json:"paid_at,omitempty"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// IsSettled reports whether the invoice no longer represents a live claim.
func (i Invoice) IsSettled() bool {
	switch i.Status {
	case InvoiceStatusPaid, InvoiceStatusCanceled, InvoiceStatusSettled:
		return true
	default:
		return false
	}
}

// IsOverdue reports whether the invoice's due date has passed while the
// invoice still represents a live claim.
func (i Invoice) IsOverdue(now time.Time) bool {
	if i.DueDate == nil {
		return false
	}
	return i.DueDate.Before(now) && !i.IsSettled()
}

// IsOpenForAging reports whether the invoice's outstanding amount
// participates in the aging-mix breakdown.
func (i Invoice) IsOpenForAging() bool {
	switch i.Status {
	case InvoiceStatusOpen, InvoiceStatusInPaymentPlan, InvoiceStatusPartiallyPaid:
		return true
	default:
		return false
	}
}

// DaysPastDue returns elapsed days between the due date and now. Negative
// values mean the invoice is not yet due; invoices without a due date
// report zero.
func (i Invoice) DaysPastDue(now time.Time) int {
	if i.DueDate == nil {
		return 0
	}
	return int(now.Sub(*i.DueDate).Hours() / 24)
}
