// Package domain contains persistence models for debtor engagement
// history: outbound outreach, inbound replies, logged touchpoints, and
// follow-up tasks.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Sentiment labels attached to inbound emails by the message pipeline.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentHostile  Sentiment = "hostile"
	SentimentDelaying Sentiment = "delaying"
)

// OutreachLog records an outbound message sent to a debtor.
type OutreachLog struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	DebtorID  snowflake.ID `gorm:"not null;index" json:"debtor_id"`
	Channel   string       `gorm:"type:text;not null;default:'email'" json:"channel"`
	Subject   string       `gorm:"type:text;not null;default:''" json:"subject"`
	SentAt    time.Time    `gorm:"not null" json:"sent_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OutreachLog) TableName() string { return "outreach_logs" }

// InboundEmail records a reply received from a debtor.
type InboundEmail struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID `gorm:"not null;index" json:"user_id"`
	DebtorID   snowflake.ID `gorm:"not null;index" json:"debtor_id"`
	Subject    string       `gorm:"type:text;not null;default:''" json:"subject"`
	Sentiment  Sentiment    `gorm:"type:text;not null;default:''" json:"sentiment"`
	ReceivedAt time.Time    `gorm:"not null" json:"received_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InboundEmail) TableName() string { return "inbound_emails" }

// ActivityDirection marks a touchpoint as inbound or outbound.
type ActivityDirection string

const (
	DirectionInbound  ActivityDirection = "inbound"
	DirectionOutbound ActivityDirection = "outbound"
)

// CollectionActivity is a logged touchpoint with a debtor.
type CollectionActivity struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID      `gorm:"not null;index" json:"user_id"`
	DebtorID   snowflake.ID      `gorm:"not null;index" json:"debtor_id"`
	Direction  ActivityDirection `gorm:"type:text;not null" json:"direction"`
	Note       string            `gorm:"type:text;not null;default:''" json:"note"`
	OccurredAt time.Time         `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CollectionActivity) TableName() string { return "collection_activities" }

// TaskStatus represents follow-up task states.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusClosed     TaskStatus = "closed"
)

// CollectionTask is a follow-up task tied to a debtor.
type CollectionTask struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	DebtorID  snowflake.ID `gorm:"not null;index" json:"debtor_id"`
	Title     string       `gorm:"type:text;not null;default:''" json:"title"`
	Status    TaskStatus   `gorm:"type:text;not null;default:'open'" json:"status"`
	DueDate   *time.Time   `gorm:"" json:"due_date,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CollectionTask) TableName() string { return "collection_tasks" }

// IsOverdueOpen reports whether the task is still open with a past due date.
func (t CollectionTask) IsOverdueOpen(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status != TaskStatusOpen && t.Status != TaskStatusInProgress {
		return false
	}
	return t.DueDate.Before(now)
}
