package repository

import (
	"context"
	"errors"

	"github.com/fleetflow/fleetflow/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindSummary(ctx context.Context, db *gorm.DB, year, month int, vehicleID *string) (*domain.Summary, error) {
	stmt := db.WithContext(ctx).
		Where("period_year = ? AND period_month = ?", year, month)
	if vehicleID == nil {
		stmt = stmt.Where("vehicle_id IS NULL")
	} else {
		stmt = stmt.Where("vehicle_id = ?", *vehicleID)
	}

	var summary domain.Summary
	err := stmt.First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *repo) SaveSummary(ctx context.Context, db *gorm.DB, summary *domain.Summary) error {
	return db.WithContext(ctx).Save(summary).Error
}

func (r *repo) InsertAutomationLog(ctx context.Context, db *gorm.DB, log *domain.AutomationLog) error {
	return db.WithContext(ctx).Create(log).Error
}
