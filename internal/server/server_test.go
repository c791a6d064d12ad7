package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/config"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	debtorrepository "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/repository"
	debtorservice "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/service"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	engagementrepository "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/repository"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/intelligence"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	invoicerepository "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/repository"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/outreach"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/providers/email"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/riskrecalc"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serverFixture struct {
	server *Server
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
}

func setupServer(t *testing.T, cfg config.Config) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS api_tokens (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		token_hash TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create api_tokens: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	debtorRepo := debtorrepository.Provide()
	invoiceRepo := invoicerepository.Provide()
	engagementRepo := engagementrepository.Provide()

	debtorSvc := debtorservice.New(debtorservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  debtorRepo,
	})
	intelligenceSvc := intelligence.New(intelligence.Params{
		DB:             db,
		Log:            log,
		Clock:          fake,
		DebtorRepo:     debtorRepo,
		InvoiceRepo:    invoiceRepo,
		EngagementRepo: engagementRepo,
	})
	recalcJob := riskrecalc.NewJob(riskrecalc.Params{
		DB:          db,
		Log:         log,
		Clock:       fake,
		DebtorRepo:  debtorRepo,
		InvoiceRepo: invoiceRepo,
	})
	outreachSvc := outreach.New(outreach.Params{
		DB:             db,
		Log:            log,
		GenID:          node,
		Clock:          fake,
		Email:          &email.NoOpProvider{},
		DebtorRepo:     debtorRepo,
		InvoiceRepo:    invoiceRepo,
		EngagementRepo: engagementRepo,
	})

	engine := gin.New()
	engine.Use(CORS())
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:             engine,
		Cfg:             cfg,
		DB:              db,
		GenID:           node,
		Clock:           fake,
		DebtorSvc:       debtorSvc,
		InvoiceRepo:     invoiceRepo,
		EngagementRepo:  engagementRepo,
		IntelligenceSvc: intelligenceSvc,
		RecalcJob:       recalcJob,
		OutreachSvc:     outreachSvc,
	})
	registerRoutes(srv)

	return &serverFixture{server: srv, db: db, node: node, clock: fake}
}

func (f *serverFixture) seedToken(t *testing.T, userID snowflake.ID, token string) {
	t.Helper()
	err := f.db.Exec(
		`INSERT INTO api_tokens (id, user_id, token_hash) VALUES (?, ?, ?)`,
		f.node.Generate().Int64(), userID.Int64(), hashToken(token),
	).Error
	if err != nil {
		t.Fatalf("seed token: %v", err)
	}
}

func (f *serverFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	f := setupServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodOptions, "/api/functions/calculate-collection-intelligence", nil)
	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCalculateIntelligence_Unauthorized(t *testing.T) {
	f := setupServer(t, config.Config{})

	rec := f.do(http.MethodPost, "/api/functions/calculate-collection-intelligence", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "unauthorized"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/functions/calculate-collection-intelligence", "bogus-token", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "unauthorized"}`, rec.Body.String())
}

func TestCalculateIntelligence_SingleDebtor(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")

	debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: "Acme"}
	assert.NoError(t, f.db.Create(debtor).Error)

	due := f.clock.Now().AddDate(0, 0, -45)
	assert.NoError(t, f.db.Create(&invoicedomain.Invoice{
		ID:                f.node.Generate(),
		UserID:            userID,
		DebtorID:          debtor.ID,
		Status:            invoicedomain.InvoiceStatusOpen,
		Amount:            2000,
		AmountOutstanding: 2000,
		DueDate:           &due,
	}).Error)

	rec := f.do(http.MethodPost, "/api/functions/calculate-collection-intelligence", "tok-123",
		map[string]any{"debtor_id": debtor.ID.String()})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Results []struct {
			DebtorID   string `json:"debtor_id"`
			Score      int    `json:"score"`
			HealthTier string `json:"healthTier"`
		} `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, debtor.ID.String(), resp.Results[0].DebtorID)
	assert.Equal(t, 62, resp.Results[0].Score)
	assert.Equal(t, "Watch", resp.Results[0].HealthTier)
}

func TestCalculateIntelligence_RecalculateAll(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")

	for i := 0; i < 2; i++ {
		debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: fmt.Sprintf("Debtor %d", i)}
		assert.NoError(t, f.db.Create(debtor).Error)
	}

	rec := f.do(http.MethodPost, "/api/functions/calculate-collection-intelligence", "tok-123",
		map[string]any{"recalculate_all": true})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Results []json.RawMessage `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Results, 2)
}

func TestCalculateIntelligence_UnknownDebtor(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")

	rec := f.do(http.MethodPost, "/api/functions/calculate-collection-intelligence", "tok-123",
		map[string]any{"debtor_id": f.node.Generate().String()})

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "debtor not found", resp["error"])
}

func TestDailyRecalculate_OpenWithoutServiceToken(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: "Acme"}
	assert.NoError(t, f.db.Create(debtor).Error)

	rec := f.do(http.MethodPost, "/api/functions/daily-recalculate-scores", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Summary struct {
			UsersProcessed        int `json:"users_processed"`
			TotalDebtorsProcessed int `json:"total_debtors_processed"`
			TotalErrors           int `json:"total_errors"`
		} `json:"summary"`
		Results []json.RawMessage `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Summary.UsersProcessed)
	assert.Equal(t, 1, resp.Summary.TotalDebtorsProcessed)
	assert.Equal(t, 0, resp.Summary.TotalErrors)
	assert.Len(t, resp.Results, 1)
}

func TestDailyRecalculate_GuardedByServiceToken(t *testing.T) {
	f := setupServer(t, config.Config{ServiceToken: "cron-secret"})

	rec := f.do(http.MethodPost, "/api/functions/daily-recalculate-scores", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/functions/daily-recalculate-scores", "cron-secret", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDebtorCRUD(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")

	rec := f.do(http.MethodPost, "/api/debtors", "tok-123",
		map[string]any{"name": "Acme Ltd", "email": "ap@acme.test"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Data debtordomain.Debtor `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Acme Ltd", created.Data.Name)

	rec = f.do(http.MethodGet, "/api/debtors/"+created.Data.ID.String(), "tok-123", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/debtors/"+created.Data.ID.String()+"/archive", "tok-123", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var stored debtordomain.Debtor
	assert.NoError(t, f.db.First(&stored, "id = ?", created.Data.ID).Error)
	assert.True(t, stored.Archived)
}

func TestCreateInvoice_ValidatesAmount(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")
	debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: "Acme"}
	assert.NoError(t, f.db.Create(debtor).Error)

	rec := f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/invoices", "tok-123",
		map[string]any{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/invoices", "tok-123",
		map[string]any{"amount": 250.0, "due_date": "2026-04-01"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var invoices []invoicedomain.Invoice
	assert.NoError(t, f.db.Find(&invoices, "debtor_id = ?", debtor.ID).Error)
	assert.Len(t, invoices, 1)
	assert.Equal(t, 250.0, invoices[0].AmountOutstanding)
	assert.Equal(t, invoicedomain.InvoiceStatusOpen, invoices[0].Status)
}

func TestRecordInboundEmail_RejectsUnknownSentiment(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")
	debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: "Acme"}
	assert.NoError(t, f.db.Create(debtor).Error)

	rec := f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/inbound-emails", "tok-123",
		map[string]any{"subject": "Re: invoice", "sentiment": "ecstatic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/inbound-emails", "tok-123",
		map[string]any{"subject": "Re: invoice", "sentiment": "positive"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSendReminder_NoOverdueInvoices(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")
	debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: "Acme", Email: "ap@acme.test"}
	assert.NoError(t, f.db.Create(debtor).Error)

	rec := f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/outreach/reminder", "tok-123", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendReminder_RecordsOutreachLog(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")
	debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: "Acme", Email: "ap@acme.test"}
	assert.NoError(t, f.db.Create(debtor).Error)

	due := f.clock.Now().AddDate(0, 0, -20)
	assert.NoError(t, f.db.Create(&invoicedomain.Invoice{
		ID:                f.node.Generate(),
		UserID:            userID,
		DebtorID:          debtor.ID,
		Status:            invoicedomain.InvoiceStatusOpen,
		Amount:            400,
		AmountOutstanding: 400,
		DueDate:           &due,
	}).Error)

	rec := f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/outreach/reminder", "tok-123", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var logs []engagementdomain.OutreachLog
	assert.NoError(t, f.db.Find(&logs, "debtor_id = ?", debtor.ID).Error)
	assert.Len(t, logs, 1)
	assert.Equal(t, "email", logs[0].Channel)
}

func TestRecordActivity(t *testing.T) {
	f := setupServer(t, config.Config{})

	userID := f.node.Generate()
	f.seedToken(t, userID, "tok-123")
	debtor := &debtordomain.Debtor{ID: f.node.Generate(), UserID: userID, Name: "Acme"}
	assert.NoError(t, f.db.Create(debtor).Error)

	rec := f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/activities", "tok-123",
		map[string]any{"direction": "sideways", "note": "left a voicemail"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/debtors/"+debtor.ID.String()+"/activities", "tok-123",
		map[string]any{"direction": "Outbound", "note": "left a voicemail"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/debtors/"+debtor.ID.String()+"/activities", "tok-123", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var activities []engagementdomain.CollectionActivity
	assert.NoError(t, f.db.Find(&activities, "debtor_id = ?", debtor.ID).Error)
	assert.Len(t, activities, 1)
	assert.Equal(t, engagementdomain.DirectionOutbound, activities[0].Direction)
	assert.WithinDuration(t, f.clock.Now(), activities[0].OccurredAt, time.Second)
}
