package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertOutreachLog(ctx context.Context, db *gorm.DB, log *domain.OutreachLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) InsertInboundEmail(ctx context.Context, db *gorm.DB, email *domain.InboundEmail) error {
	return db.WithContext(ctx).Create(email).Error
}

func (r *repo) InsertActivity(ctx context.Context, db *gorm.DB, activity *domain.CollectionActivity) error {
	return db.WithContext(ctx).Create(activity).Error
}

func (r *repo) InsertTask(ctx context.Context, db *gorm.DB, task *domain.CollectionTask) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) ListOutreachByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]domain.OutreachLog, error) {
	var logs []domain.OutreachLog
	err := db.WithContext(ctx).
		Where("debtor_id = ?", debtorID).
		Order("sent_at, id").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) ListInboundByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]domain.InboundEmail, error) {
	var emails []domain.InboundEmail
	err := db.WithContext(ctx).
		Where("debtor_id = ?", debtorID).
		Order("received_at, id").
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *repo) ListActivitiesByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]domain.CollectionActivity, error) {
	var activities []domain.CollectionActivity
	err := db.WithContext(ctx).
		Where("debtor_id = ?", debtorID).
		Order("occurred_at, id").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *repo) ListTasksByDebtor(ctx context.Context, db *gorm.DB, debtorID snowflake.ID) ([]domain.CollectionTask, error) {
	var tasks []domain.CollectionTask
	err := db.WithContext(ctx).
		Where("debtor_id = ?", debtorID).
		Order("created_at, id").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
