package intelligence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	debtorrepository "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/repository"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	engagementrepository "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/repository"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	invoicerepository "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/repository"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&debtordomain.Debtor{},
		&invoicedomain.Invoice{},
		&engagementdomain.OutreachLog{},
		&engagementdomain.InboundEmail{},
		&engagementdomain.CollectionActivity{},
		&engagementdomain.CollectionTask{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:             db,
		Log:            zap.NewNop(),
		Clock:          fake,
		DebtorRepo:     debtorrepository.Provide(),
		InvoiceRepo:    invoicerepository.Provide(),
		EngagementRepo: engagementrepository.Provide(),
	})

	return svc, db, node, fake
}

func TestScoreDebtor_RequiresUser(t *testing.T) {
	svc, _, node, _ := setupService(t)

	_, err := svc.ScoreDebtor(context.Background(), node.Generate().String())

	assert.ErrorIs(t, err, debtordomain.ErrInvalidUser)
}

func TestScoreDebtor_InvalidID(t *testing.T) {
	svc, _, node, _ := setupService(t)
	ctx := usercontext.WithUserID(context.Background(), node.Generate())

	_, err := svc.ScoreDebtor(ctx, "not-a-snowflake")

	assert.ErrorIs(t, err, debtordomain.ErrInvalidID)
}

func TestScoreDebtor_NotOwned(t *testing.T) {
	svc, db, node, _ := setupService(t)

	owner := node.Generate()
	debtor := &debtordomain.Debtor{ID: node.Generate(), UserID: owner, Name: "Acme"}
	assert.NoError(t, db.Create(debtor).Error)

	ctx := usercontext.WithUserID(context.Background(), node.Generate())
	_, err := svc.ScoreDebtor(ctx, debtor.ID.String())

	assert.ErrorIs(t, err, debtordomain.ErrNotFound)
}

func TestScoreDebtor_PersistsResult(t *testing.T) {
	svc, db, node, fake := setupService(t)

	userID := node.Generate()
	debtor := &debtordomain.Debtor{ID: node.Generate(), UserID: userID, Name: "Acme"}
	assert.NoError(t, db.Create(debtor).Error)

	due := fake.Now().AddDate(0, 0, -45)
	invoice := invoicedomain.Invoice{
		ID:                node.Generate(),
		UserID:            userID,
		DebtorID:          debtor.ID,
		Status:            invoicedomain.InvoiceStatusOpen,
		Amount:            2000,
		AmountOutstanding: 2000,
		DueDate:           &due,
	}
	assert.NoError(t, db.Create(&invoice).Error)

	ctx := usercontext.WithUserID(context.Background(), userID)
	score, err := svc.ScoreDebtor(ctx, debtor.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 62, score.Score)
	assert.Equal(t, TierWatch, score.Tier)
	assert.Equal(t, debtor.ID.String(), score.DebtorID)

	var stored debtordomain.Debtor
	assert.NoError(t, db.First(&stored, "id = ?", debtor.ID).Error)
	assert.Equal(t, 62, stored.IntelligenceScore)
	assert.Equal(t, string(TierWatch), stored.HealthTier)
	assert.NotNil(t, stored.IntelligenceCalculatedAt)
}

func TestScoreDebtor_WritesEngagementMetrics(t *testing.T) {
	svc, db, node, fake := setupService(t)

	userID := node.Generate()
	debtor := &debtordomain.Debtor{ID: node.Generate(), UserID: userID, Name: "Acme"}
	assert.NoError(t, db.Create(debtor).Error)

	now := fake.Now()
	for i := 0; i < 2; i++ {
		assert.NoError(t, db.Create(&engagementdomain.OutreachLog{
			ID:       node.Generate(),
			UserID:   userID,
			DebtorID: debtor.ID,
			Channel:  "email",
			SentAt:   now.AddDate(0, 0, -i-1),
		}).Error)
	}
	assert.NoError(t, db.Create(&engagementdomain.InboundEmail{
		ID:         node.Generate(),
		UserID:     userID,
		DebtorID:   debtor.ID,
		Sentiment:  engagementdomain.SentimentPositive,
		ReceivedAt: now.AddDate(0, 0, -1),
	}).Error)

	ctx := usercontext.WithUserID(context.Background(), userID)
	score, err := svc.ScoreDebtor(ctx, debtor.ID.String())

	assert.NoError(t, err)
	// 100 + 10 (50% response rate), clamped; one positive reply alone
	// does not move the sentiment rule (1 > 2*0 fires, +10, still capped).
	assert.Equal(t, 100, score.Score)

	var stored debtordomain.Debtor
	assert.NoError(t, db.First(&stored, "id = ?", debtor.ID).Error)
	assert.Equal(t, 1, stored.InboundEmailCount)
	assert.Equal(t, 50.0, stored.ResponseRate)
	assert.Equal(t, "positive", stored.LastSentiment)
}

func TestScoreAllForUser_SkipsArchived(t *testing.T) {
	svc, db, node, _ := setupService(t)

	userID := node.Generate()
	active := &debtordomain.Debtor{ID: node.Generate(), UserID: userID, Name: "Active"}
	archived := &debtordomain.Debtor{ID: node.Generate(), UserID: userID, Name: "Archived", Archived: true}
	assert.NoError(t, db.Create(active).Error)
	assert.NoError(t, db.Create(archived).Error)

	ctx := usercontext.WithUserID(context.Background(), userID)
	results, err := svc.ScoreAllForUser(ctx)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, active.ID.String(), results[0].DebtorID)
}

func TestScoreAllForUser_RequiresUser(t *testing.T) {
	svc, _, _, _ := setupService(t)

	_, err := svc.ScoreAllForUser(context.Background())

	assert.ErrorIs(t, err, debtordomain.ErrInvalidUser)
}
