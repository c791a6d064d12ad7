package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/config"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/intelligence"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability"
	obsmiddleware "github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability/logger"
	obsmetrics "github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability/metrics"
	obstracing "github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability/tracing"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/outreach"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/providers/email"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/riskrecalc"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	debtor.Module,
	invoice.Module,
	engagement.Module,
	email.Module,
	intelligence.Module,
	riskrecalc.Module,
	outreach.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	clock           clock.Clock
	debtorSvc       debtordomain.Service
	invoiceRepo     invoicedomain.Repository
	engagementRepo  engagementdomain.Repository
	intelligenceSvc *intelligence.Service
	recalcJob       *riskrecalc.Job
	outreachSvc     *outreach.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Clock           clock.Clock
	DebtorSvc       debtordomain.Service
	InvoiceRepo     invoicedomain.Repository
	EngagementRepo  engagementdomain.Repository
	IntelligenceSvc *intelligence.Service
	RecalcJob       *riskrecalc.Job
	OutreachSvc     *outreach.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		clock:           p.Clock,
		debtorSvc:       p.DebtorSvc,
		invoiceRepo:     p.InvoiceRepo,
		engagementRepo:  p.EngagementRepo,
		intelligenceSvc: p.IntelligenceSvc,
		recalcJob:       p.RecalcJob,
		outreachSvc:     p.OutreachSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterFunctionRoutes()
	s.RegisterAPIRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// RegisterFunctionRoutes wires the two scoring entrypoints. They write
// bare {error} / {success} payloads directly instead of going through the
// API error envelope.
func (s *Server) RegisterFunctionRoutes() {
	functions := s.engine.Group("/api/functions")

	functions.POST("/calculate-collection-intelligence", s.FunctionUserRequired(), s.CalculateCollectionIntelligence)
	functions.POST("/daily-recalculate-scores", s.ServiceTokenGuard(), s.DailyRecalculateScores)
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api", s.UserRequired())

	// -------- Debtors --------
	api.GET("/debtors", s.ListDebtors)
	api.POST("/debtors", s.CreateDebtor)
	api.GET("/debtors/:id", s.GetDebtorByID)
	api.POST("/debtors/:id/archive", s.ArchiveDebtor)

	// -------- Invoices --------
	api.GET("/debtors/:id/invoices", s.ListDebtorInvoices)
	api.POST("/debtors/:id/invoices", s.CreateInvoice)

	// -------- Collection tasks --------
	api.GET("/debtors/:id/tasks", s.ListDebtorTasks)
	api.POST("/debtors/:id/tasks", s.CreateTask)

	// -------- Activities --------
	api.GET("/debtors/:id/activities", s.ListDebtorActivities)
	api.POST("/debtors/:id/activities", s.CreateActivity)

	// -------- Outreach --------
	api.POST("/debtors/:id/outreach/reminder", s.SendReminder)
	api.POST("/debtors/:id/inbound-emails", s.RecordInboundEmail)
}
