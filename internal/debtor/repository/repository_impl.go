package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, debtor *domain.Debtor) error {
	return db.WithContext(ctx).Create(debtor).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Debtor, error) {
	var debtor domain.Debtor
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&debtor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &debtor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.ListDebtorFilter, page pagination.Pagination) ([]*domain.Debtor, error) {
	var debtors []*domain.Debtor
	stmt := db.WithContext(ctx).
		Model(&domain.Debtor{}).
		Where("user_id = ?", userID)
	if !filter.IncludeArchived {
		stmt = stmt.Where("archived = ?", false)
	}
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.HealthTier != "" {
		stmt = stmt.Where("health_tier = ?", filter.HealthTier)
	}
	if filter.RiskTier != "" {
		stmt = stmt.Where("risk_tier = ?", filter.RiskTier)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&debtors).Error
	if err != nil {
		return nil, err
	}
	return debtors, nil
}

func (r *repo) ListActiveByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.Debtor, error) {
	var debtors []*domain.Debtor
	err := db.WithContext(ctx).
		Where("user_id = ? AND archived = ?", userID, false).
		Order("id").
		Find(&debtors).Error
	if err != nil {
		return nil, err
	}
	return debtors, nil
}

// ListByUserPage returns the next keyset page of a user's debtors,
// archived included, ordered by id.
func (r *repo) ListByUserPage(ctx context.Context, db *gorm.DB, userID, afterID snowflake.ID, limit int) ([]*domain.Debtor, error) {
	var debtors []*domain.Debtor
	err := db.WithContext(ctx).
		Where("user_id = ? AND id > ?", userID, afterID).
		Order("id").
		Limit(limit).
		Find(&debtors).Error
	if err != nil {
		return nil, err
	}
	return debtors, nil
}

func (r *repo) DistinctUserIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.Debtor{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) Archive(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	result := db.WithContext(ctx).
		Model(&domain.Debtor{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) UpdateHealthScore(ctx context.Context, db *gorm.DB, id snowflake.ID, update domain.HealthScoreUpdate) error {
	return db.WithContext(ctx).
		Model(&domain.Debtor{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"intelligence_score":         update.Score,
			"health_tier":                update.Tier,
			"touchpoint_count":           update.TouchpointCount,
			"inbound_email_count":        update.InboundEmailCount,
			"response_rate":              update.ResponseRate,
			"last_sentiment":             update.LastSentiment,
			"avg_days_to_pay":            update.AvgDaysToPay,
			"intelligence_calculated_at": update.CalculatedAt,
			"updated_at":                 update.CalculatedAt,
		}).Error
}

func (r *repo) UpdateRiskScore(ctx context.Context, db *gorm.DB, id snowflake.ID, update domain.RiskScoreUpdate) error {
	return db.WithContext(ctx).
		Model(&domain.Debtor{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"risk_score":                 update.Score,
			"risk_tier":                  update.Tier,
			"avg_days_to_pay":            update.AvgDaysToPay,
			"max_days_past_due":          update.MaxDaysPastDue,
			"open_invoice_count":         update.OpenInvoiceCount,
			"disputed_invoice_count":     update.DisputedInvoiceCount,
			"payment_plan_invoice_count": update.PaymentPlanInvoiceCount,
			"written_off_invoice_count":  update.WrittenOffInvoiceCount,
			"dpd_current_pct":            update.DPDCurrentPct,
			"dpd_1_30_pct":               update.DPD1To30Pct,
			"dpd_31_60_pct":              update.DPD31To60Pct,
			"dpd_61_90_pct":              update.DPD61To90Pct,
			"dpd_91_120_pct":             update.DPD91To120Pct,
			"dpd_121_plus_pct":           update.DPD121PlusPct,
			"total_open_balance":         update.TotalOpenBalance,
			"current_balance":            update.CurrentBalance,
			"risk_recalculated_at":       update.RecalculatedAt,
			"updated_at":                 update.RecalculatedAt,
		}).Error
}
