package intelligence

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	obsmetrics "github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability/metrics"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const engineName = "health"

// DebtorScore is the per-debtor line item returned by a scoring run.
type DebtorScore struct {
	DebtorID string     `json:"debtor_id"`
	Score    int        `json:"score"`
	Tier     HealthTier `json:"healthTier"`
}

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	DebtorRepo     debtordomain.Repository
	InvoiceRepo    invoicedomain.Repository
	EngagementRepo engagementdomain.Repository
	Metrics        *obsmetrics.Metrics `optional:"true"`
}

// Service runs the account health scorer against stored debtor history.
type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	debtorRepo     debtordomain.Repository
	invoiceRepo    invoicedomain.Repository
	engagementRepo engagementdomain.Repository
	metrics        *obsmetrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("intelligence.service"),
		clock:          p.Clock,
		debtorRepo:     p.DebtorRepo,
		invoiceRepo:    p.InvoiceRepo,
		engagementRepo: p.EngagementRepo,
		metrics:        p.Metrics,
	}
}

// ScoreDebtor recomputes the health score for one debtor owned by the
// authenticated user and persists the result.
func (s *Service) ScoreDebtor(ctx context.Context, debtorID string) (DebtorScore, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return DebtorScore{}, debtordomain.ErrInvalidUser
	}

	id, err := snowflake.ParseString(strings.TrimSpace(debtorID))
	if err != nil || id == 0 {
		return DebtorScore{}, debtordomain.ErrInvalidID
	}

	debtor, err := s.debtorRepo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return DebtorScore{}, err
	}
	if debtor == nil {
		return DebtorScore{}, debtordomain.ErrNotFound
	}

	return s.score(ctx, debtor)
}

// ScoreAllForUser recomputes health scores for every non-archived debtor
// of the authenticated user. Per-debtor failures are logged and skipped;
// the returned slice holds whatever subset succeeded.
func (s *Service) ScoreAllForUser(ctx context.Context) ([]DebtorScore, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, debtordomain.ErrInvalidUser
	}

	debtors, err := s.debtorRepo.ListActiveByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	results := make([]DebtorScore, 0, len(debtors))
	for _, debtor := range debtors {
		result, err := s.score(ctx, debtor)
		if err != nil {
			s.log.Warn("debtor scoring failed",
				zap.String("user_id", userID.String()),
				zap.String("debtor_id", debtor.ID.String()),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordScoringError(ctx, engineName)
			}
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *Service) score(ctx context.Context, debtor *debtordomain.Debtor) (DebtorScore, error) {
	if s.metrics != nil {
		s.metrics.RecordScoringRun(ctx, engineName)
	}

	input, err := s.fetchInput(ctx, debtor.ID)
	if err != nil {
		return DebtorScore{}, err
	}

	now := s.clock.Now()
	result := ComputeHealth(input, now)

	update := debtordomain.HealthScoreUpdate{
		Score:             result.Score,
		Tier:              string(result.Tier),
		TouchpointCount:   result.Metrics.TouchpointCount,
		InboundEmailCount: result.Metrics.InboundEmailCount,
		ResponseRate:      result.Metrics.ResponseRate,
		LastSentiment:     result.Metrics.AvgSentiment,
		AvgDaysToPay:      result.Metrics.AvgDaysToPay,
		CalculatedAt:      now,
	}
	if err := s.debtorRepo.UpdateHealthScore(ctx, s.db, debtor.ID, update); err != nil {
		return DebtorScore{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordDebtorsScored(ctx, engineName, 1)
	}
	s.log.Debug("debtor scored",
		zap.String("debtor_id", debtor.ID.String()),
		zap.Int("score", result.Score),
		zap.String("tier", string(result.Tier)),
		zap.Strings("breakdown", result.Breakdown),
	)

	return DebtorScore{
		DebtorID: debtor.ID.String(),
		Score:    result.Score,
		Tier:     result.Tier,
	}, nil
}

// fetchInput issues the five history reads for a debtor concurrently.
func (s *Service) fetchInput(ctx context.Context, debtorID snowflake.ID) (HealthInput, error) {
	var (
		input HealthInput
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)

	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if first == nil {
			first = err
		}
		mu.Unlock()
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		invoices, err := s.invoiceRepo.ListByDebtor(ctx, s.db, debtorID)
		input.Invoices = invoices
		record(err)
	}()
	go func() {
		defer wg.Done()
		logs, err := s.engagementRepo.ListOutreachByDebtor(ctx, s.db, debtorID)
		input.OutreachLogs = logs
		record(err)
	}()
	go func() {
		defer wg.Done()
		emails, err := s.engagementRepo.ListInboundByDebtor(ctx, s.db, debtorID)
		input.InboundEmails = emails
		record(err)
	}()
	go func() {
		defer wg.Done()
		activities, err := s.engagementRepo.ListActivitiesByDebtor(ctx, s.db, debtorID)
		input.Activities = activities
		record(err)
	}()
	go func() {
		defer wg.Done()
		tasks, err := s.engagementRepo.ListTasksByDebtor(ctx, s.db, debtorID)
		input.Tasks = tasks
		record(err)
	}()
	wg.Wait()

	if first != nil {
		return HealthInput{}, first
	}
	return input, nil
}
