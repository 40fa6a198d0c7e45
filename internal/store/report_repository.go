package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/store/models"
)

// ReportRepository persists and queries comparison reports.
type ReportRepository interface {
	Create(ctx context.Context, report *model.ComparisonReport) error
	List(ctx context.Context, limit, offset int) ([]*model.ComparisonReport, error)
	GetByID(ctx context.Context, id string) (*model.ComparisonReport, error)
	DeleteByID(ctx context.Context, id string) error
}

type gormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a GORM-backed ReportRepository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &gormReportRepository{db: db}
}

func (r *gormReportRepository) Create(ctx context.Context, report *model.ComparisonReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	row := &models.ComparisonReportModel{}
	if err := row.FromDomain(report); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create comparison report: %w", err)
	}

	logrus.Infof("Stored comparison report %s (%s)", report.ID, report.Title)
	return nil
}

func (r *gormReportRepository) List(ctx context.Context, limit, offset int) ([]*model.ComparisonReport, error) {
	dbQuery := r.db.WithContext(ctx).
		Model(&models.ComparisonReportModel{}).
		Order("created_at desc")

	if limit > 0 {
		dbQuery = dbQuery.Limit(limit)
	}
	if offset > 0 {
		dbQuery = dbQuery.Offset(offset)
	}

	var rows []*models.ComparisonReportModel
	if err := dbQuery.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch comparison reports: %w", err)
	}

	reports := make([]*model.ComparisonReport, 0, len(rows))
	for _, row := range rows {
		report, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *gormReportRepository) GetByID(ctx context.Context, id string) (*model.ComparisonReport, error) {
	var row models.ComparisonReportModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comparison report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch comparison report: %w", err)
	}
	return row.ToDomain()
}

func (r *gormReportRepository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ComparisonReportModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete comparison report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("comparison report %s: %w", id, ErrNotFound)
	}
	return nil
}
