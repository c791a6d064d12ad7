package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertOutreachLog(ctx context.Context, db *gorm.DB, log *OutreachLog) error
	InsertInboundEmail(ctx context.Context, db *gorm.DB, email *InboundEmail) error
	InsertActivity(ctx context.Context, db *gorm.DB, activity *CollectionActivity) error
	InsertTask(ctx context.Context, db *gorm.DB, task *CollectionTask) error

	ListOutreachByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]OutreachLog, error)
	ListInboundByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]InboundEmail, error)
	ListActivitiesByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]CollectionActivity, error)
	ListTasksByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]CollectionTask, error)
}

var (
	ErrInvalidSentiment = errors.New("invalid_sentiment")
	ErrInvalidTask      = errors.New("invalid_task")
)

// KnownSentiment reports whether value is a recognized sentiment label.
func KnownSentiment(value Sentiment) bool {
	switch value {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentHostile, SentimentDelaying:
		return true
	default:
		return false
	}
}
