// Package riskrecalc implements the daily risk recalculator: a batch job
// that derives a 0-100 risk score (higher = worse) for every debtor of
// every user, plus the aging-mix breakdown of outstanding balance and the
// authoritative open-balance resync.
//
// Unlike the health scorer in internal/intelligence, this engine measures
// average days-to-pay against the due date rather than the issue date, and
// its score polarity is inverted. The divergence is historical and is
// preserved on purpose.
package riskrecalc

import (
	"fmt"
	"time"

	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
)

// RiskTier buckets a risk score into one of four bands, ascending.
type RiskTier string

const (
	TierLow      RiskTier = "Low"
	TierMedium   RiskTier = "Medium"
	TierHigh     RiskTier = "High"
	TierCritical RiskTier = "Critical"
)

const baselineRisk = 20

// AgingMix is the percentage split of outstanding balance by
// days-past-due bucket. All six values are 0 when nothing is outstanding;
// otherwise they sum to 100.
type AgingMix struct {
	CurrentPct  float64 `json:"dpd_current_pct"`
	Days1To30   float64 `json:"dpd_1_30_pct"`
	Days31To60  float64 `json:"dpd_31_60_pct"`
	Days61To90  float64 `json:"dpd_61_90_pct"`
	Days91To120 float64 `json:"dpd_91_120_pct"`
	Days121Plus float64 `json:"dpd_121_plus_pct"`
}

// RiskResult is the outcome of one risk recalculation for a debtor.
type RiskResult struct {
	Score            int      `json:"score"`
	Tier             RiskTier `json:"tier"`
	Aging            AgingMix `json:"aging"`
	TotalOutstanding float64  `json:"total_open_balance"`
	MaxDaysPastDue   int      `json:"max_days_past_due"`
	AvgDaysToPay     float64  `json:"avg_days_to_pay"`

	OpenCount        int `json:"open_invoice_count"`
	DisputedCount    int `json:"disputed_invoice_count"`
	PaymentPlanCount int `json:"payment_plan_invoice_count"`
	WrittenOffCount  int `json:"written_off_invoice_count"`

	Breakdown []string `json:"breakdown"`
}

// ComputeRisk scores one debtor from its invoices alone. The score starts
// at a baseline of 20, every rule applies an additive delta, and the final
// value is clamped to [0, 100]. A debtor with no invoices at all
// short-circuits to the distinct no-data default of 50/Medium.
func ComputeRisk(invoices []invoicedomain.Invoice, now time.Time) RiskResult {
	if len(invoices) == 0 {
		return RiskResult{
			Score:     50,
			Tier:      TierMedium,
			Breakdown: []string{"no invoice data, defaulting to medium risk"},
		}
	}

	score := baselineRisk
	var breakdown []string
	result := RiskResult{}

	// Average days to pay, measured from the due date.
	avgDays := avgDaysToPayFromDue(invoices)
	result.AvgDaysToPay = avgDays
	if penalty := daysToPayRisk(avgDays); penalty > 0 {
		score += penalty
		breakdown = append(breakdown, fmt.Sprintf("avg days to pay %.1f (+%d)", avgDays, penalty))
	}

	// Aging mix over open invoices.
	buckets, totalOutstanding, maxDPD, openCount := agingBuckets(invoices, now)
	result.TotalOutstanding = totalOutstanding
	result.MaxDaysPastDue = maxDPD
	result.OpenCount = openCount
	result.Aging = buckets.percentages(totalOutstanding)

	// Aging-based additions. Unlike the DPD bands in the health scorer,
	// these are independent: every matching bucket contributes.
	if buckets.days121Plus > 0 {
		switch {
		case result.Aging.Days121Plus >= 50:
			score += 40
			breakdown = append(breakdown, fmt.Sprintf("121+ bucket at %.1f%% of balance (+40)", result.Aging.Days121Plus))
		case result.Aging.Days121Plus >= 25:
			score += 30
			breakdown = append(breakdown, fmt.Sprintf("121+ bucket at %.1f%% of balance (+30)", result.Aging.Days121Plus))
		default:
			score += 20
			breakdown = append(breakdown, fmt.Sprintf("121+ bucket at %.1f%% of balance (+20)", result.Aging.Days121Plus))
		}
	}
	if buckets.days91To120 > 0 {
		if result.Aging.Days91To120 >= 30 {
			score += 20
			breakdown = append(breakdown, fmt.Sprintf("91-120 bucket at %.1f%% of balance (+20)", result.Aging.Days91To120))
		} else {
			score += 10
			breakdown = append(breakdown, fmt.Sprintf("91-120 bucket at %.1f%% of balance (+10)", result.Aging.Days91To120))
		}
	}
	if result.Aging.Days61To90 > 20 {
		score += 10
		breakdown = append(breakdown, fmt.Sprintf("61-90 bucket at %.1f%% of balance (+10)", result.Aging.Days61To90))
	}
	if result.Aging.Days31To60 > 30 {
		score += 5
		breakdown = append(breakdown, fmt.Sprintf("31-60 bucket at %.1f%% of balance (+5)", result.Aging.Days31To60))
	}
	if openCount > 0 && result.Aging.CurrentPct < 10 {
		score += 10
		breakdown = append(breakdown, fmt.Sprintf("only %.1f%% of balance current (+10)", result.Aging.CurrentPct))
	} else if result.Aging.CurrentPct > 70 {
		// Informational only; no score adjustment on a healthy mix.
		breakdown = append(breakdown, fmt.Sprintf("%.1f%% of balance current", result.Aging.CurrentPct))
	}

	// Status-based risk.
	disputed, paymentPlan, writtenOff := statusCounts(invoices)
	result.DisputedCount = disputed
	result.PaymentPlanCount = paymentPlan
	result.WrittenOffCount = writtenOff

	switch {
	case disputed >= 2:
		score += 15
		breakdown = append(breakdown, fmt.Sprintf("disputed invoices: %d (+15)", disputed))
	case disputed == 1:
		score += 5
		breakdown = append(breakdown, "disputed invoices: 1 (+5)")
	}
	if writtenOff > 0 {
		penalty := writtenOff * 20
		score += penalty
		breakdown = append(breakdown, fmt.Sprintf("written-off invoices: %d (+%d)", writtenOff, penalty))
	}
	if paymentPlan > 0 {
		breakdown = append(breakdown, fmt.Sprintf("invoices in payment plan: %d", paymentPlan))
	}

	result.Score = clamp(score)
	result.Tier = TierForScore(result.Score)
	result.Breakdown = breakdown
	return result
}

// TierForScore maps a risk score to its tier; ascending score means
// ascending risk.
func TierForScore(score int) RiskTier {
	switch {
	case score <= 30:
		return TierLow
	case score <= 55:
		return TierMedium
	case score <= 75:
		return TierHigh
	default:
		return TierCritical
	}
}

func avgDaysToPayFromDue(invoices []invoicedomain.Invoice) float64 {
	var total float64
	count := 0
	for _, inv := range invoices {
		if inv.Status != invoicedomain.InvoiceStatusPaid || inv.PaidAt == nil || inv.DueDate == nil {
			continue
		}
		total += inv.PaidAt.Sub(*inv.DueDate).Hours() / 24
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func daysToPayRisk(avgDays float64) int {
	switch {
	case avgDays <= 5:
		return 0
	case avgDays <= 15:
		return 5
	case avgDays <= 30:
		return 15
	case avgDays <= 60:
		return 25
	default:
		return 35
	}
}

type bucketAmounts struct {
	current     float64
	days1To30   float64
	days31To60  float64
	days61To90  float64
	days91To120 float64
	days121Plus float64
}

func agingBuckets(invoices []invoicedomain.Invoice, now time.Time) (bucketAmounts, float64, int, int) {
	var buckets bucketAmounts
	var total float64
	maxDPD := 0
	openCount := 0

	for _, inv := range invoices {
		if !inv.IsOpenForAging() {
			continue
		}
		openCount++
		amount := inv.AmountOutstanding
		total += amount

		dpd := 0
		if inv.DueDate != nil {
			dpd = inv.DaysPastDue(now)
		}
		if dpd > maxDPD {
			maxDPD = dpd
		}

		switch {
		case dpd <= 0:
			buckets.current += amount
		case dpd <= 30:
			buckets.days1To30 += amount
		case dpd <= 60:
			buckets.days31To60 += amount
		case dpd <= 90:
			buckets.days61To90 += amount
		case dpd <= 120:
			buckets.days91To120 += amount
		default:
			buckets.days121Plus += amount
		}
	}

	return buckets, total, maxDPD, openCount
}

func (b bucketAmounts) percentages(total float64) AgingMix {
	if total <= 0 {
		return AgingMix{}
	}
	return AgingMix{
		CurrentPct:  b.current / total * 100,
		Days1To30:   b.days1To30 / total * 100,
		Days31To60:  b.days31To60 / total * 100,
		Days61To90:  b.days61To90 / total * 100,
		Days91To120: b.days91To120 / total * 100,
		Days121Plus: b.days121Plus / total * 100,
	}
}

func statusCounts(invoices []invoicedomain.Invoice) (disputed, paymentPlan, writtenOff int) {
	for _, inv := range invoices {
		switch inv.Status {
		case invoicedomain.InvoiceStatusDisputed:
			disputed++
		case invoicedomain.InvoiceStatusInPaymentPlan:
			paymentPlan++
		case invoicedomain.InvoiceStatusCanceled:
			// Canceled is treated as written-off in this scoring model.
			writtenOff++
		}
	}
	return disputed, paymentPlan, writtenOff
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
