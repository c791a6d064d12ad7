// Package outreach sends templated payment reminder emails and records
// each send as an outreach log, which feeds the health scorer's
// response-rate denominator.
package outreach

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	debtordomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/domain"
	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	obsmetrics "github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability/metrics"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/providers/email"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoOverdueInvoices = errors.New("no_overdue_invoices")
var ErrNoDebtorEmail = errors.New("no_debtor_email")

var reminderTmpl = template.Must(template.New("reminder").Parse(`<html>
<body>
<p>Hello {{.DebtorName}},</p>
<p>This is a friendly reminder that the following {{if gt (len .Invoices) 1}}invoices are{{else}}invoice is{{end}} past due:</p>
<ul>
{{- range .Invoices}}
<li>Invoice {{.ID}} &mdash; {{printf "%.2f" .AmountOutstanding}} outstanding, due {{.DueDate.Format "2 Jan 2006"}}</li>
{{- end}}
</ul>
<p>Total outstanding: {{printf "%.2f" .TotalOutstanding}}</p>
<p>Please arrange payment at your earliest convenience.</p>
</body>
</html>`))

type reminderData struct {
	DebtorName       string
	Invoices         []invoicedomain.Invoice
	TotalOutstanding float64
}

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Email          email.Provider
	DebtorRepo     debtordomain.Repository
	InvoiceRepo    invoicedomain.Repository
	EngagementRepo engagementdomain.Repository
	Metrics        *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	email          email.Provider
	debtorRepo     debtordomain.Repository
	invoiceRepo    invoicedomain.Repository
	engagementRepo engagementdomain.Repository
	metrics        *obsmetrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("outreach.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		email:          p.Email,
		debtorRepo:     p.DebtorRepo,
		invoiceRepo:    p.InvoiceRepo,
		engagementRepo: p.EngagementRepo,
		metrics:        p.Metrics,
	}
}

// SendReminder composes a reminder for the debtor's overdue invoices,
// sends it, and records the send as an outreach log.
func (s *Service) SendReminder(ctx context.Context, debtorID string) (engagementdomain.OutreachLog, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return engagementdomain.OutreachLog{}, debtordomain.ErrInvalidUser
	}

	id, err := snowflake.ParseString(strings.TrimSpace(debtorID))
	if err != nil || id == 0 {
		return engagementdomain.OutreachLog{}, debtordomain.ErrInvalidID
	}

	debtor, err := s.debtorRepo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return engagementdomain.OutreachLog{}, err
	}
	if debtor == nil {
		return engagementdomain.OutreachLog{}, debtordomain.ErrNotFound
	}
	if strings.TrimSpace(debtor.Email) == "" {
		return engagementdomain.OutreachLog{}, ErrNoDebtorEmail
	}

	invoices, err := s.invoiceRepo.ListByDebtor(ctx, s.db, id)
	if err != nil {
		return engagementdomain.OutreachLog{}, err
	}

	now := s.clock.Now()
	var overdue []invoicedomain.Invoice
	var total float64
	for _, inv := range invoices {
		if inv.IsOverdue(now) {
			overdue = append(overdue, inv)
			total += inv.AmountOutstanding
		}
	}
	if len(overdue) == 0 {
		return engagementdomain.OutreachLog{}, ErrNoOverdueInvoices
	}

	var body bytes.Buffer
	if err := reminderTmpl.Execute(&body, reminderData{
		DebtorName:       debtor.Name,
		Invoices:         overdue,
		TotalOutstanding: total,
	}); err != nil {
		return engagementdomain.OutreachLog{}, fmt.Errorf("render reminder: %w", err)
	}

	subject := fmt.Sprintf("Payment reminder: %d overdue invoice(s)", len(overdue))
	if err := s.email.Send(ctx, []string{debtor.Email}, subject, body.String()); err != nil {
		return engagementdomain.OutreachLog{}, fmt.Errorf("send reminder: %w", err)
	}

	logEntry := engagementdomain.OutreachLog{
		ID:        s.genID.Generate(),
		UserID:    userID,
		DebtorID:  id,
		Channel:   "email",
		Subject:   subject,
		SentAt:    now,
		CreatedAt: now,
	}
	if err := s.engagementRepo.InsertOutreachLog(ctx, s.db, &logEntry); err != nil {
		return engagementdomain.OutreachLog{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOutreachEmail(ctx, "email")
	}
	s.log.Info("reminder sent",
		zap.String("debtor_id", id.String()),
		zap.Int("overdue_invoices", len(overdue)),
	)

	return logEntry, nil
}
