package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	ListByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]Invoice, error)
}

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidStatus = errors.New("invalid_status")
)

// ValidStatus reports whether value is a recognized invoice status.
func ValidStatus(value InvoiceStatus) bool {
	switch value {
	case InvoiceStatusOpen, InvoiceStatusPartiallyPaid, InvoiceStatusInPaymentPlan,
		InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusDisputed,
		InvoiceStatusCanceled, InvoiceStatusSettled, InvoiceStatusWrittenOff:
		return true
	default:
		return false
	}
}
