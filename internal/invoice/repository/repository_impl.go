package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) ListByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("debtor_id = ?", debtorID).
		Order("created_at, id").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
