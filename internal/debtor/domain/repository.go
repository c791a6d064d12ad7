package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, debtor *Debtor) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Debtor, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListDebtorFilter, page pagination.Pagination) ([]*Debtor, error)
	ListActiveByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Debtor, error)
	ListByUserPage(ctx context.Context, db *gorm.DB, userID, afterID snowflake.ID, limit int) ([]*Debtor, error)
	DistinctUserIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
	Archive(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
	UpdateHealthScore(ctx context.Context, db *gorm.DB, id snowflake.ID, update HealthScoreUpdate) error
	UpdateRiskScore(ctx context.Context, db *gorm.DB, id snowflake.ID, update RiskScoreUpdate) error
}
