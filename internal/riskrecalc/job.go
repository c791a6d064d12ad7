package riskrecalc

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/config"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	obsmetrics "github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const engineName = "risk"

const defaultBatchPageSize = 200

// UserResult reports one user's slice of a recalculation run.
type UserResult struct {
	UserID           string   `json:"user_id"`
	DebtorsProcessed int      `json:"debtors_processed"`
	Errors           []string `json:"errors"`
}

// Summary aggregates a whole recalculation run.
type Summary struct {
	UsersProcessed        int `json:"users_processed"`
	TotalDebtorsProcessed int `json:"total_debtors_processed"`
	TotalErrors           int `json:"total_errors"`
}

// RunReport is the full outcome of one batch run.
type RunReport struct {
	Summary Summary      `json:"summary"`
	Results []UserResult `json:"results"`
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Cfg         config.Config
	DebtorRepo  debtordomain.Repository
	InvoiceRepo invoicedomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

// Job iterates every debtor of every user and recomputes risk.
type Job struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	pageSize    int
	debtorRepo  debtordomain.Repository
	invoiceRepo invoicedomain.Repository
	metrics     *obsmetrics.Metrics
}

func NewJob(p Params) *Job {
	pageSize := p.Cfg.Scheduler.BatchPageSize
	if pageSize <= 0 {
		pageSize = defaultBatchPageSize
	}
	return &Job{
		db:          p.DB,
		log:         p.Log.Named("riskrecalc.job"),
		clock:       p.Clock,
		pageSize:    pageSize,
		debtorRepo:  p.DebtorRepo,
		invoiceRepo: p.InvoiceRepo,
		metrics:     p.Metrics,
	}
}

// RecalculateAll discovers every user that owns debtors and recomputes
// risk for each of their debtors. The run never aborts on a single debtor
// or user failure; failures are recorded per user and processing moves on.
func (j *Job) RecalculateAll(ctx context.Context) (RunReport, error) {
	if j.metrics != nil {
		j.metrics.RecordScoringRun(ctx, engineName)
	}

	userIDs, err := j.debtorRepo.DistinctUserIDs(ctx, j.db)
	if err != nil {
		return RunReport{}, err
	}

	report := RunReport{Results: make([]UserResult, 0, len(userIDs))}
	for _, userID := range userIDs {
		result := j.recalculateUser(ctx, userID)
		report.Summary.UsersProcessed++
		report.Summary.TotalDebtorsProcessed += result.DebtorsProcessed
		report.Summary.TotalErrors += len(result.Errors)
		report.Results = append(report.Results, result)
	}

	if j.metrics != nil {
		j.metrics.RecordDebtorsScored(ctx, engineName, int64(report.Summary.TotalDebtorsProcessed))
	}
	j.log.Info("risk recalculation finished",
		zap.Int("users_processed", report.Summary.UsersProcessed),
		zap.Int("debtors_processed", report.Summary.TotalDebtorsProcessed),
		zap.Int("errors", report.Summary.TotalErrors),
	)

	return report, nil
}

func (j *Job) recalculateUser(ctx context.Context, userID snowflake.ID) UserResult {
	result := UserResult{UserID: userID.String(), Errors: []string{}}

	var afterID snowflake.ID
	for {
		debtors, err := j.debtorRepo.ListByUserPage(ctx, j.db, userID, afterID, j.pageSize)
		if err != nil {
			j.log.Warn("debtor fetch failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		if len(debtors) == 0 {
			return result
		}

		for _, debtor := range debtors {
			if err := j.recalculateDebtor(ctx, debtor); err != nil {
				j.log.Warn("debtor recalculation failed",
					zap.String("user_id", userID.String()),
					zap.String("debtor_id", debtor.ID.String()),
					zap.Error(err),
				)
				if j.metrics != nil {
					j.metrics.RecordScoringError(ctx, engineName)
				}
				result.Errors = append(result.Errors, debtor.ID.String()+": "+err.Error())
				continue
			}
			result.DebtorsProcessed++
		}

		afterID = debtors[len(debtors)-1].ID
		if len(debtors) < j.pageSize {
			return result
		}
	}
}

func (j *Job) recalculateDebtor(ctx context.Context, debtor *debtordomain.Debtor) error {
	invoices, err := j.invoiceRepo.ListByDebtor(ctx, j.db, debtor.ID)
	if err != nil {
		return err
	}

	now := j.clock.Now()
	result := ComputeRisk(invoices, now)

	return j.debtorRepo.UpdateRiskScore(ctx, j.db, debtor.ID, debtordomain.RiskScoreUpdate{
		Score:          result.Score,
		Tier:           string(result.Tier),
		AvgDaysToPay:   result.AvgDaysToPay,
		MaxDaysPastDue: result.MaxDaysPastDue,

		OpenInvoiceCount:        result.OpenCount,
		DisputedInvoiceCount:    result.DisputedCount,
		PaymentPlanInvoiceCount: result.PaymentPlanCount,
		WrittenOffInvoiceCount:  result.WrittenOffCount,

		DPDCurrentPct: result.Aging.CurrentPct,
		DPD1To30Pct:   result.Aging.Days1To30,
		DPD31To60Pct:  result.Aging.Days31To60,
		DPD61To90Pct:  result.Aging.Days61To90,
		DPD91To120Pct: result.Aging.Days91To120,
		DPD121PlusPct: result.Aging.Days121Plus,

		// The recalculator is the single source of truth for balances:
		// both fields are resynced from open-invoice outstanding amounts.
		TotalOpenBalance: result.TotalOutstanding,
		CurrentBalance:   result.TotalOutstanding,
		RecalculatedAt:   now,
	})
}
