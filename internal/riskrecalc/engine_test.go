package riskrecalc

import (
	"testing"
	"time"

	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

var riskNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func openInvoice(amount float64, daysPastDue int) invoicedomain.Invoice {
	return invoicedomain.Invoice{
		Status:            invoicedomain.InvoiceStatusOpen,
		Amount:            amount,
		AmountOutstanding: amount,
		DueDate:           timePtr(riskNow.AddDate(0, 0, -daysPastDue)),
	}
}

func TestComputeRisk_NoInvoices(t *testing.T) {
	result := ComputeRisk(nil, riskNow)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, TierMedium, result.Tier)
	assert.Equal(t, AgingMix{}, result.Aging)
	assert.Equal(t, 0.0, result.TotalOutstanding)
	assert.Equal(t, []string{"no invoice data, defaulting to medium risk"}, result.Breakdown)
}

func TestComputeRisk_SingleSeverelyAgedInvoice(t *testing.T) {
	invoices := []invoicedomain.Invoice{openInvoice(1000, 100)}

	result := ComputeRisk(invoices, riskNow)

	// baseline 20, 91-120 bucket at 100% (+20), nothing current (+10)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, TierMedium, result.Tier)
	assert.Equal(t, 100.0, result.Aging.Days91To120)
	assert.Equal(t, 1000.0, result.TotalOutstanding)
	assert.Equal(t, 100, result.MaxDaysPastDue)
	assert.Equal(t, 1, result.OpenCount)
}

func TestComputeRisk_CurrentBalanceIsInformational(t *testing.T) {
	invoices := []invoicedomain.Invoice{openInvoice(500, -10)}

	result := ComputeRisk(invoices, riskNow)

	assert.Equal(t, baselineRisk, result.Score)
	assert.Equal(t, TierLow, result.Tier)
	assert.Equal(t, 100.0, result.Aging.CurrentPct)
	assert.Contains(t, result.Breakdown, "100.0% of balance current")
}

func TestComputeRisk_DisputedInvoices(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		{Status: invoicedomain.InvoiceStatusDisputed, AmountOutstanding: 200},
		{Status: invoicedomain.InvoiceStatusDisputed, AmountOutstanding: 300},
	}

	result := ComputeRisk(invoices, riskNow)

	// Disputed invoices are excluded from aging, so only the status rule fires.
	assert.Equal(t, 35, result.Score)
	assert.Equal(t, TierMedium, result.Tier)
	assert.Equal(t, 2, result.DisputedCount)
	assert.Equal(t, 0, result.OpenCount)
	assert.Equal(t, 0.0, result.TotalOutstanding)
}

func TestComputeRisk_CanceledCountsAsWrittenOff(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		{Status: invoicedomain.InvoiceStatusCanceled, AmountOutstanding: 100},
		{Status: invoicedomain.InvoiceStatusCanceled, AmountOutstanding: 100},
	}

	result := ComputeRisk(invoices, riskNow)

	assert.Equal(t, 60, result.Score)
	assert.Equal(t, TierHigh, result.Tier)
	assert.Equal(t, 2, result.WrittenOffCount)
}

func TestComputeRisk_SlowPayerAddsDaysToPayRisk(t *testing.T) {
	due := riskNow.AddDate(0, 0, -60)
	paid := due.AddDate(0, 0, 45)
	invoices := []invoicedomain.Invoice{
		{
			Status:  invoicedomain.InvoiceStatusPaid,
			Amount:  800,
			DueDate: &due,
			PaidAt:  &paid,
		},
	}

	result := ComputeRisk(invoices, riskNow)

	assert.Equal(t, 45.0, result.AvgDaysToPay)
	assert.Equal(t, baselineRisk+25, result.Score)
}

func TestComputeRisk_AgingMixSumsToHundred(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		openInvoice(100, -5),
		openInvoice(200, 20),
		openInvoice(300, 45),
		openInvoice(150, 80),
		openInvoice(250, 110),
		openInvoice(400, 200),
	}

	result := ComputeRisk(invoices, riskNow)

	sum := result.Aging.CurrentPct +
		result.Aging.Days1To30 +
		result.Aging.Days31To60 +
		result.Aging.Days61To90 +
		result.Aging.Days91To120 +
		result.Aging.Days121Plus
	assert.InDelta(t, 100.0, sum, 0.0001)
	assert.Equal(t, 1400.0, result.TotalOutstanding)
	assert.Equal(t, 200, result.MaxDaysPastDue)
}

func TestComputeRisk_ClampsAtHundred(t *testing.T) {
	due := riskNow.AddDate(0, 0, -300)
	paid := due.AddDate(0, 0, 90)
	invoices := []invoicedomain.Invoice{
		openInvoice(5000, 150),
		{Status: invoicedomain.InvoiceStatusPaid, DueDate: &due, PaidAt: &paid},
		{Status: invoicedomain.InvoiceStatusDisputed},
		{Status: invoicedomain.InvoiceStatusDisputed},
		{Status: invoicedomain.InvoiceStatusCanceled},
		{Status: invoicedomain.InvoiceStatusCanceled},
	}

	result := ComputeRisk(invoices, riskNow)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, TierCritical, result.Tier)
}

func TestComputeRisk_NoDueDateBucketsAsCurrent(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		{Status: invoicedomain.InvoiceStatusOpen, AmountOutstanding: 100},
	}

	result := ComputeRisk(invoices, riskNow)

	assert.Equal(t, 100.0, result.Aging.CurrentPct)
	assert.Equal(t, 0, result.MaxDaysPastDue)
}

func TestComputeRisk_Deterministic(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		openInvoice(100, 40),
		openInvoice(900, 130),
		{Status: invoicedomain.InvoiceStatusDisputed},
	}

	first := ComputeRisk(invoices, riskNow)
	second := ComputeRisk(invoices, riskNow)

	assert.Equal(t, first, second)
}

func TestRiskTierForScore(t *testing.T) {
	assert.Equal(t, TierLow, TierForScore(0))
	assert.Equal(t, TierLow, TierForScore(30))
	assert.Equal(t, TierMedium, TierForScore(31))
	assert.Equal(t, TierMedium, TierForScore(55))
	assert.Equal(t, TierHigh, TierForScore(56))
	assert.Equal(t, TierHigh, TierForScore(75))
	assert.Equal(t, TierCritical, TierForScore(76))
	assert.Equal(t, TierCritical, TierForScore(100))
}
