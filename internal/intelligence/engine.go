// Package intelligence implements the account health scorer: a per-debtor
// 0-100 health score (higher = better) derived from invoice, outreach,
// sentiment, and task history.
//
// The companion risk recalculator in internal/riskrecalc scores the same
// entity with inverted polarity (higher = worse) and measures days-to-pay
// against the due date, where this engine measures against the issue date.
// The two schemes evolved separately and are intentionally kept separate.
package intelligence

import (
	"fmt"
	"sort"
	"time"

	engagementdomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	invoicedomain "github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/domain"
)

// HealthTier buckets a health score into one of four bands.
type HealthTier string

const (
	TierHealthy  HealthTier = "Healthy"
	TierWatch    HealthTier = "Watch"
	TierAtRisk   HealthTier = "At Risk"
	TierCritical HealthTier = "Critical"
)

// PaymentTrend compares recent settlement timing against older history.
type PaymentTrend string

const (
	TrendImproving PaymentTrend = "improving"
	TrendDeclining PaymentTrend = "declining"
	TrendStable    PaymentTrend = "stable"
)

// HealthInput is a consistent snapshot of one debtor's history.
type HealthInput struct {
	Invoices      []invoicedomain.Invoice
	OutreachLogs  []engagementdomain.OutreachLog
	InboundEmails []engagementdomain.InboundEmail
	Activities    []engagementdomain.CollectionActivity
	Tasks         []engagementdomain.CollectionTask
}

// HealthMetrics is the structured breakdown persisted alongside the score.
type HealthMetrics struct {
	OverdueInvoiceCount int          `json:"overdue_invoice_count"`
	MaxDaysPastDue      int          `json:"max_days_past_due"`
	OverdueAmount       float64      `json:"overdue_amount"`
	RecentPaidCount     int          `json:"recent_paid_count"`
	AvgDaysToPay        float64      `json:"avg_days_to_pay"`
	PaymentTrend        PaymentTrend `json:"payment_trend"`
	TouchpointCount     int          `json:"touchpoint_count"`
	InboundEmailCount   int          `json:"inbound_email_count"`
	ResponseRate        float64      `json:"response_rate"`
	AvgSentiment        string       `json:"avg_sentiment"`
	OverdueTaskCount    int          `json:"overdue_task_count"`
	DisputedCount       int          `json:"disputed_count"`
}

// HealthResult is the outcome of one health scoring run.
type HealthResult struct {
	Score     int           `json:"score"`
	Tier      HealthTier    `json:"healthTier"`
	Metrics   HealthMetrics `json:"metrics"`
	Breakdown []string      `json:"breakdown"`
}

// ComputeHealth scores one debtor from a snapshot of its history.
// The score starts at 100, every rule applies an additive delta, and the
// final value is clamped to [0, 100]. The breakdown lists every rule that
// fired, in evaluation order.
func ComputeHealth(in HealthInput, now time.Time) HealthResult {
	score := 100
	var breakdown []string
	var metrics HealthMetrics

	// Overdue invoices: past due date and still a live claim.
	var overdue []invoicedomain.Invoice
	for _, inv := range in.Invoices {
		if inv.IsOverdue(now) {
			overdue = append(overdue, inv)
		}
	}
	metrics.OverdueInvoiceCount = len(overdue)
	if len(overdue) > 0 {
		penalty := min(len(overdue)*8, 30)
		score -= penalty
		breakdown = append(breakdown, fmt.Sprintf("overdue invoices: %d (-%d)", len(overdue), penalty))
	}

	// Worst days-past-due band across overdue invoices.
	maxDPD := 0
	for _, inv := range overdue {
		if dpd := inv.DaysPastDue(now); dpd > maxDPD {
			maxDPD = dpd
		}
	}
	metrics.MaxDaysPastDue = maxDPD
	if penalty := daysPastDuePenalty(maxDPD); penalty > 0 {
		score -= penalty
		breakdown = append(breakdown, fmt.Sprintf("max days past due: %d (-%d)", maxDPD, penalty))
	}

	// Outstanding amount on overdue invoices.
	var overdueAmount float64
	for _, inv := range overdue {
		overdueAmount += inv.AmountOutstanding
	}
	metrics.OverdueAmount = overdueAmount
	if penalty := overdueAmountPenalty(overdueAmount); penalty > 0 {
		score -= penalty
		breakdown = append(breakdown, fmt.Sprintf("overdue amount: %.2f (-%d)", overdueAmount, penalty))
	}

	// No payment history while at risk.
	paidCount := 0
	for _, inv := range in.Invoices {
		if inv.Status == invoicedomain.InvoiceStatusPaid {
			paidCount++
		}
	}
	if paidCount == 0 && len(overdue) > 0 {
		score -= 15
		breakdown = append(breakdown, "no payment history with overdue invoices (-15)")
	}

	// Recent payments reward.
	recentPaid := 0
	for _, inv := range in.Invoices {
		if inv.Status != invoicedomain.InvoiceStatusPaid || inv.PaidAt == nil {
			continue
		}
		if now.Sub(*inv.PaidAt) <= 30*24*time.Hour {
			recentPaid++
		}
	}
	metrics.RecentPaidCount = recentPaid
	if recentPaid > 0 {
		bonus := min(recentPaid*3, 10)
		score += bonus
		breakdown = append(breakdown, fmt.Sprintf("recent payments: %d (+%d)", recentPaid, bonus))
	}

	// Average days to pay, measured from the issue date.
	avgDays, hasAvg := avgDaysToPayFromIssue(in.Invoices)
	metrics.AvgDaysToPay = avgDays
	if hasAvg {
		switch {
		case avgDays <= 0:
			score += 10
			breakdown = append(breakdown, fmt.Sprintf("avg days to pay: %.1f (+10)", avgDays))
		case avgDays > 60:
			score -= 15
			breakdown = append(breakdown, fmt.Sprintf("avg days to pay: %.1f (-15)", avgDays))
		case avgDays > 30:
			score -= 8
			breakdown = append(breakdown, fmt.Sprintf("avg days to pay: %.1f (-8)", avgDays))
		}
	}

	// Payment trend: last three settlements vs the three before them.
	trend, delta := paymentTrend(in.Invoices)
	metrics.PaymentTrend = trend
	if delta != 0 {
		score += delta
		breakdown = append(breakdown, fmt.Sprintf("payment trend %s (%+d)", trend, delta))
	}

	// Engagement: replies received vs outreach sent.
	outreachCount := len(in.OutreachLogs)
	inboundCount := len(in.InboundEmails)
	metrics.TouchpointCount = len(in.Activities)
	metrics.InboundEmailCount = inboundCount

	responseRate := 0.0
	if outreachCount > 0 {
		responseRate = float64(inboundCount) / float64(outreachCount) * 100
		if responseRate > 100 {
			responseRate = 100
		}
	}
	metrics.ResponseRate = responseRate
	switch {
	case responseRate >= 50:
		score += 10
		breakdown = append(breakdown, fmt.Sprintf("response rate %.0f%% (+10)", responseRate))
	case responseRate >= 20:
		score += 5
		breakdown = append(breakdown, fmt.Sprintf("response rate %.0f%% (+5)", responseRate))
	}
	if outreachCount > 5 && responseRate < 10 {
		score -= 10
		breakdown = append(breakdown, fmt.Sprintf("unresponsive after %d touches (-10)", outreachCount))
	}

	// Sentiment balance of replies.
	positive, negative, labeled := classifySentiment(in.InboundEmails)
	metrics.AvgSentiment = dominantSentiment(positive, negative, labeled)
	if labeled > 0 {
		if positive > 2*negative {
			score += 10
			breakdown = append(breakdown, fmt.Sprintf("sentiment positive %d/%d (+10)", positive, negative))
		} else if negative > 2*positive {
			score -= 10
			breakdown = append(breakdown, fmt.Sprintf("sentiment negative %d/%d (-10)", positive, negative))
		}
	}

	// Overdue follow-up tasks.
	overdueTasks := 0
	for _, task := range in.Tasks {
		if task.IsOverdueOpen(now) {
			overdueTasks++
		}
	}
	metrics.OverdueTaskCount = overdueTasks
	if overdueTasks > 0 {
		penalty := min(overdueTasks*3, 10)
		score -= penalty
		breakdown = append(breakdown, fmt.Sprintf("overdue tasks: %d (-%d)", overdueTasks, penalty))
	}

	// Disputes, uncapped.
	disputed := 0
	for _, inv := range in.Invoices {
		if inv.Status == invoicedomain.InvoiceStatusDisputed {
			disputed++
		}
	}
	metrics.DisputedCount = disputed
	if disputed > 0 {
		penalty := disputed * 5
		score -= penalty
		breakdown = append(breakdown, fmt.Sprintf("disputed invoices: %d (-%d)", disputed, penalty))
	}

	score = clamp(score)

	return HealthResult{
		Score:     score,
		Tier:      TierForScore(score),
		Metrics:   metrics,
		Breakdown: breakdown,
	}
}

// TierForScore maps a health score to its tier; the highest band wins.
func TierForScore(score int) HealthTier {
	switch {
	case score >= 75:
		return TierHealthy
	case score >= 50:
		return TierWatch
	case score >= 25:
		return TierAtRisk
	default:
		return TierCritical
	}
}

func daysPastDuePenalty(maxDPD int) int {
	switch {
	case maxDPD >= 90:
		return 25
	case maxDPD >= 60:
		return 15
	case maxDPD >= 30:
		return 10
	case maxDPD > 0:
		return 5
	default:
		return 0
	}
}

func overdueAmountPenalty(amount float64) int {
	switch {
	case amount > 10000:
		return 20
	case amount > 5000:
		return 12
	case amount > 1000:
		return 5
	default:
		return 0
	}
}

func avgDaysToPayFromIssue(invoices []invoicedomain.Invoice) (float64, bool) {
	var total float64
	count := 0
	for _, inv := range invoices {
		if inv.Status != invoicedomain.InvoiceStatusPaid || inv.IssueDate == nil || inv.PaidAt == nil {
			continue
		}
		total += inv.PaidAt.Sub(*inv.IssueDate).Hours() / 24
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

// paymentTrend compares the mean (paidAt - dueDate) of the three most
// recent settlements against the three before them. It only fires when
// the older group is non-empty.
func paymentTrend(invoices []invoicedomain.Invoice) (PaymentTrend, int) {
	var paid []invoicedomain.Invoice
	for _, inv := range invoices {
		if inv.Status == invoicedomain.InvoiceStatusPaid && inv.PaidAt != nil && inv.DueDate != nil {
			paid = append(paid, inv)
		}
	}
	sort.Slice(paid, func(i, j int) bool {
		return paid[i].PaidAt.After(*paid[j].PaidAt)
	})

	if len(paid) < 4 {
		return TrendStable, 0
	}

	recent := paid[:3]
	older := paid[3:min(6, len(paid))]

	recentAvg := avgPaidVsDue(recent)
	olderAvg := avgPaidVsDue(older)

	switch {
	case recentAvg < 0.8*olderAvg:
		return TrendImproving, 5
	case recentAvg > 1.2*olderAvg:
		return TrendDeclining, -5
	default:
		return TrendStable, 0
	}
}

func avgPaidVsDue(invoices []invoicedomain.Invoice) float64 {
	if len(invoices) == 0 {
		return 0
	}
	var total float64
	for _, inv := range invoices {
		total += inv.PaidAt.Sub(*inv.DueDate).Hours() / 24
	}
	return total / float64(len(invoices))
}

// classifySentiment buckets replies into positive and negative counts.
// Hostile and delaying labels count as negative; unrecognized or missing
// labels count as neutral. labeled is the number of replies carrying any
// sentiment label at all.
func classifySentiment(emails []engagementdomain.InboundEmail) (positive, negative, labeled int) {
	for _, email := range emails {
		if email.Sentiment == "" {
			continue
		}
		labeled++
		switch email.Sentiment {
		case engagementdomain.SentimentPositive:
			positive++
		case engagementdomain.SentimentNegative, engagementdomain.SentimentHostile, engagementdomain.SentimentDelaying:
			negative++
		}
	}
	return positive, negative, labeled
}

func dominantSentiment(positive, negative, labeled int) string {
	if labeled == 0 {
		return ""
	}
	switch {
	case positive > negative:
		return string(engagementdomain.SentimentPositive)
	case negative > positive:
		return string(engagementdomain.SentimentNegative)
	default:
		return string(engagementdomain.SentimentNeutral)
	}
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
