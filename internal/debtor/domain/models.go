// Package domain contains persistence models for collected accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Debtor represents an account being collected from. The scoring engines
// write their derived fields back onto this row; everything else treats
// those columns as read-only output.
type Debtor struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID   snowflake.ID `gorm:"not null;index" json:"user_id"`
	Name     string       `gorm:"not null" json:"name"`
	Email    string       `gorm:"type:text;not null;default:''" json:"email"`
	Archived bool         `gorm:"not null;default:false" json:"archived"`

	IntelligenceScore int    `gorm:"not null;default:0" json:"intelligence_score"`
	HealthTier        string `gorm:"type:text;not null;default:''" json:"health_tier"`
	RiskScore         int    `gorm:"not null;default:0" json:"risk_score"`
	RiskTier          string `gorm:"type:text;not null;default:''" json:"risk_tier"`

	TotalOpenBalance float64 `gorm:"not null;default:0" json:"total_open_balance"`
	CurrentBalance   float64 `gorm:"not null;default:0" json:"current_balance"`

	DPDCurrentPct float64 `gorm:"column:dpd_current_pct;not null;default:0" json:"dpd_current_pct"`
	DPD1To30Pct   float64 `gorm:"column:dpd_1_30_pct;not null;default:0" json:"dpd_1_30_pct"`
	DPD31To60Pct  float64 `gorm:"column:dpd_31_60_pct;not null;default:0" json:"dpd_31_60_pct"`
	DPD61To90Pct  float64 `gorm:"column:dpd_61_90_pct;not null;default:0" json:"dpd_61_90_pct"`
	DPD91To120Pct float64 `gorm:"column:dpd_91_120_pct;not null;default:0" json:"dpd_91_120_pct"`
	DPD121PlusPct float64 `gorm:"column:dpd_121_plus_pct;not null;default:0" json:"dpd_121_plus_pct"`

	AvgDaysToPay            float64 `gorm:"not null;default:0" json:"avg_days_to_pay"`
	MaxDaysPastDue          int     `gorm:"not null;default:0" json:"max_days_past_due"`
	OpenInvoiceCount        int     `gorm:"not null;default:0" json:"open_invoice_count"`
	DisputedInvoiceCount    int     `gorm:"not null;default:0" json:"disputed_invoice_count"`
	PaymentPlanInvoiceCount int     `gorm:"not null;default:0" json:"payment_plan_invoice_count"`
	WrittenOffInvoiceCount  int     `gorm:"not null;default:0" json:"written_off_invoice_count"`

	TouchpointCount   int     `gorm:"not null;default:0" json:"touchpoint_count"`
	InboundEmailCount int     `gorm:"not null;default:0" json:"inbound_email_count"`
	ResponseRate      float64 `gorm:"not null;default:0" json:"response_rate"`
	LastSentiment     string  `gorm:"type:text;not null;default:''" json:"last_sentiment"`

	IntelligenceCalculatedAt *time.Time `gorm:"" json:"intelligence_calculated_at,omitempty"`
	RiskRecalculatedAt       *time.Time `gorm:"" json:"risk_recalculated_at,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Debtor) TableName() string { return "debtors" }

// HealthScoreUpdate carries the account health scorer's write-back.
type HealthScoreUpdate struct {
	Score             int
	Tier              string
	TouchpointCount   int
	InboundEmailCount int
	ResponseRate      float64
	LastSentiment     string
	AvgDaysToPay      float64
	CalculatedAt      time.Time
}

// RiskScoreUpdate carries the daily risk recalculator's write-back,
// including the authoritative open-balance resync.
type RiskScoreUpdate struct {
	Score          int
	Tier           string
	AvgDaysToPay   float64
	MaxDaysPastDue int

	OpenInvoiceCount        int
	DisputedInvoiceCount    int
	PaymentPlanInvoiceCount int
	WrittenOffInvoiceCount  int

	DPDCurrentPct float64
	DPD1To30Pct   float64
	DPD31To60Pct  float64
	DPD61To90Pct  float64
	DPD91To120Pct float64
	DPD121PlusPct float64

	TotalOpenBalance float64
	CurrentBalance   float64
	RecalculatedAt   time.Time
}
