package intelligence

import (
	"testing"
	"time"

	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

var healthNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func overdueInvoice(amount float64, daysPastDue int) invoicedomain.Invoice {
	return invoicedomain.Invoice{
		Status:            invoicedomain.InvoiceStatusOpen,
		Amount:            amount,
		AmountOutstanding: amount,
		DueDate:           timePtr(healthNow.AddDate(0, 0, -daysPastDue)),
	}
}

func paidInvoice(issuedDaysAgo, paidAfterDays int) invoicedomain.Invoice {
	issued := healthNow.AddDate(0, 0, -issuedDaysAgo)
	paid := issued.AddDate(0, 0, paidAfterDays)
	return invoicedomain.Invoice{
		Status:    invoicedomain.InvoiceStatusPaid,
		Amount:    500,
		IssueDate: &issued,
		DueDate:   timePtr(issued.AddDate(0, 0, 14)),
		PaidAt:    &paid,
	}
}

func TestComputeHealth_NoHistory(t *testing.T) {
	result := ComputeHealth(HealthInput{}, healthNow)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, TierHealthy, result.Tier)
	assert.Empty(t, result.Breakdown)
}

func TestComputeHealth_SingleOverdueInvoice(t *testing.T) {
	in := HealthInput{
		Invoices: []invoicedomain.Invoice{overdueInvoice(2000, 45)},
	}

	result := ComputeHealth(in, healthNow)

	// 100 - 8 (one overdue) - 10 (45 dpd) - 5 (amount > 1000)
	// - 15 (no payment history while overdue)
	assert.Equal(t, 62, result.Score)
	assert.Equal(t, TierWatch, result.Tier)
	assert.Equal(t, 1, result.Metrics.OverdueInvoiceCount)
	assert.Equal(t, 45, result.Metrics.MaxDaysPastDue)
	assert.Equal(t, 2000.0, result.Metrics.OverdueAmount)
}

func TestComputeHealth_OverduePenaltyIsCapped(t *testing.T) {
	var invoices []invoicedomain.Invoice
	for i := 0; i < 6; i++ {
		invoices = append(invoices, overdueInvoice(100, 5))
	}
	in := HealthInput{Invoices: invoices}

	result := ComputeHealth(in, healthNow)

	// 100 - 30 (count capped) - 5 (dpd < 30) - 15 (no payment history)
	assert.Equal(t, 50, result.Score)
	assert.Contains(t, result.Breakdown, "overdue invoices: 6 (-30)")
}

func TestComputeHealth_RecentPaymentsReward(t *testing.T) {
	in := HealthInput{
		Invoices: []invoicedomain.Invoice{
			paidInvoice(20, 10),
			paidInvoice(15, 8),
		},
	}

	result := ComputeHealth(in, healthNow)

	// 100 + 6 (two recent payments), clamped to 100; avg days to pay
	// stays inside the neutral band.
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, TierHealthy, result.Tier)
	assert.Equal(t, 2, result.Metrics.RecentPaidCount)
	assert.Equal(t, 9.0, result.Metrics.AvgDaysToPay)
}

func TestComputeHealth_SlowPayerPenalty(t *testing.T) {
	in := HealthInput{
		Invoices: []invoicedomain.Invoice{
			paidInvoice(200, 70),
			overdueInvoice(500, 10),
		},
	}

	result := ComputeHealth(in, healthNow)

	// 100 - 8 (overdue) - 5 (10 dpd) - 15 (avg days to pay > 60)
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, 70.0, result.Metrics.AvgDaysToPay)
}

func TestComputeHealth_PrepaymentBonus(t *testing.T) {
	issued := healthNow.AddDate(0, 0, -40)
	in := HealthInput{
		Invoices: []invoicedomain.Invoice{
			{
				Status:    invoicedomain.InvoiceStatusPaid,
				IssueDate: &issued,
				PaidAt:    &issued,
			},
		},
	}

	result := ComputeHealth(in, healthNow)

	// Paid on the issue date: avg days to pay <= 0 earns +10, clamped.
	assert.Equal(t, 100, result.Score)
	assert.Contains(t, result.Breakdown, "avg days to pay: 0.0 (+10)")
}

func TestComputeHealth_PaymentTrend(t *testing.T) {
	makePaid := func(paidDaysAgo, daysLate int) invoicedomain.Invoice {
		paid := healthNow.AddDate(0, 0, -paidDaysAgo)
		due := paid.AddDate(0, 0, -daysLate)
		return invoicedomain.Invoice{
			Status:  invoicedomain.InvoiceStatusPaid,
			DueDate: &due,
			PaidAt:  &paid,
		}
	}

	improving := HealthInput{
		Invoices: []invoicedomain.Invoice{
			makePaid(40, 1),
			makePaid(50, 1),
			makePaid(60, 1),
			makePaid(70, 10),
			makePaid(80, 10),
			makePaid(90, 10),
		},
	}
	result := ComputeHealth(improving, healthNow)
	assert.Equal(t, TrendImproving, result.Metrics.PaymentTrend)
	assert.Contains(t, result.Breakdown, "payment trend improving (+5)")

	declining := HealthInput{
		Invoices: []invoicedomain.Invoice{
			makePaid(40, 10),
			makePaid(50, 10),
			makePaid(60, 10),
			makePaid(70, 1),
			makePaid(80, 1),
			makePaid(90, 1),
		},
	}
	result = ComputeHealth(declining, healthNow)
	assert.Equal(t, TrendDeclining, result.Metrics.PaymentTrend)
	assert.Contains(t, result.Breakdown, "payment trend declining (-5)")
}

func TestComputeHealth_ResponseRate(t *testing.T) {
	outreach := make([]engagementdomain.OutreachLog, 4)
	in := HealthInput{
		Invoices:      []invoicedomain.Invoice{overdueInvoice(2000, 45)},
		OutreachLogs:  outreach,
		InboundEmails: []engagementdomain.InboundEmail{{}, {}},
	}

	result := ComputeHealth(in, healthNow)

	// Baseline overdue case is 62; a 50% response rate adds 10.
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, 50.0, result.Metrics.ResponseRate)
}

func TestComputeHealth_UnresponsivePenalty(t *testing.T) {
	outreach := make([]engagementdomain.OutreachLog, 8)
	in := HealthInput{
		Invoices:     []invoicedomain.Invoice{overdueInvoice(2000, 45)},
		OutreachLogs: outreach,
	}

	result := ComputeHealth(in, healthNow)

	// Baseline overdue case is 62; eight unanswered touches cost 10.
	assert.Equal(t, 52, result.Score)
	assert.Contains(t, result.Breakdown, "unresponsive after 8 touches (-10)")
}

func TestComputeHealth_Sentiment(t *testing.T) {
	in := HealthInput{
		Invoices: []invoicedomain.Invoice{overdueInvoice(2000, 45)},
		InboundEmails: []engagementdomain.InboundEmail{
			{Sentiment: engagementdomain.SentimentHostile},
			{Sentiment: engagementdomain.SentimentDelaying},
			{Sentiment: engagementdomain.SentimentNegative},
		},
	}

	result := ComputeHealth(in, healthNow)

	// Baseline overdue case is 62; hostile and delaying count as negative.
	assert.Equal(t, 52, result.Score)
	assert.Equal(t, "negative", result.Metrics.AvgSentiment)
}

func TestComputeHealth_UnlabeledRepliesSkipSentiment(t *testing.T) {
	in := HealthInput{
		Invoices:      []invoicedomain.Invoice{overdueInvoice(2000, 45)},
		InboundEmails: []engagementdomain.InboundEmail{{}, {}, {}},
	}

	result := ComputeHealth(in, healthNow)

	assert.Equal(t, 62, result.Score)
	assert.Equal(t, "", result.Metrics.AvgSentiment)
}

func TestComputeHealth_OverdueTasksAndDisputes(t *testing.T) {
	in := HealthInput{
		Invoices: []invoicedomain.Invoice{
			overdueInvoice(2000, 45),
			{Status: invoicedomain.InvoiceStatusDisputed},
			{Status: invoicedomain.InvoiceStatusDisputed},
		},
		Tasks: []engagementdomain.CollectionTask{
			{Status: engagementdomain.TaskStatusOpen, DueDate: timePtr(healthNow.AddDate(0, 0, -3))},
		},
	}

	result := ComputeHealth(in, healthNow)

	// Baseline overdue case is 62; one overdue task (-3), two disputes (-10).
	assert.Equal(t, 49, result.Score)
	assert.Equal(t, TierAtRisk, result.Tier)
	assert.Equal(t, 1, result.Metrics.OverdueTaskCount)
	assert.Equal(t, 2, result.Metrics.DisputedCount)
}

func TestComputeHealth_ClampsAtZero(t *testing.T) {
	var invoices []invoicedomain.Invoice
	for i := 0; i < 5; i++ {
		invoices = append(invoices, overdueInvoice(5000, 120))
	}
	for i := 0; i < 10; i++ {
		invoices = append(invoices, invoicedomain.Invoice{Status: invoicedomain.InvoiceStatusDisputed})
	}
	outreach := make([]engagementdomain.OutreachLog, 10)

	result := ComputeHealth(HealthInput{Invoices: invoices, OutreachLogs: outreach}, healthNow)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, TierCritical, result.Tier)
}

func TestComputeHealth_Deterministic(t *testing.T) {
	in := HealthInput{
		Invoices: []invoicedomain.Invoice{
			overdueInvoice(2000, 45),
			paidInvoice(60, 20),
			{Status: invoicedomain.InvoiceStatusDisputed},
		},
		OutreachLogs:  make([]engagementdomain.OutreachLog, 4),
		InboundEmails: []engagementdomain.InboundEmail{{Sentiment: engagementdomain.SentimentNegative}},
		Tasks: []engagementdomain.CollectionTask{
			{Status: engagementdomain.TaskStatusOpen, DueDate: timePtr(healthNow.AddDate(0, 0, -3))},
		},
	}

	first := ComputeHealth(in, healthNow)
	second := ComputeHealth(in, healthNow)

	assert.Equal(t, first, second)
}

func TestHealthTierForScore(t *testing.T) {
	assert.Equal(t, TierHealthy, TierForScore(100))
	assert.Equal(t, TierHealthy, TierForScore(75))
	assert.Equal(t, TierWatch, TierForScore(74))
	assert.Equal(t, TierWatch, TierForScore(50))
	assert.Equal(t, TierAtRisk, TierForScore(49))
	assert.Equal(t, TierAtRisk, TierForScore(25))
	assert.Equal(t, TierCritical, TierForScore(24))
	assert.Equal(t, TierCritical, TierForScore(0))
}
