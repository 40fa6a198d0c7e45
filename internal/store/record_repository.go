package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/store/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// RecordRepository persists and queries gas monitoring records.
type RecordRepository interface {
	Create(ctx context.Context, record *model.GasMonitoringRecord) error
	CreateBatch(ctx context.Context, records []*model.GasMonitoringRecord) error
	List(ctx context.Context, query *model.RecordQuery) ([]*model.GasMonitoringRecord, error)
	GetByID(ctx context.Context, id string) (*model.GasMonitoringRecord, error)
	DeleteByID(ctx context.Context, id string) error
	// Benchmarks returns all benchmark rows inside a time window,
	// used by the report service.
	Benchmarks(ctx context.Context, since, until time.Time) ([]*model.GasMonitoringRecord, error)
}

type gormRecordRepository struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewRecordRepository creates a GORM-backed RecordRepository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &gormRecordRepository{
		db:       db,
		validate: validator.New(),
	}
}

func (r *gormRecordRepository) Create(ctx context.Context, record *model.GasMonitoringRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Network == "" {
		return fmt.Errorf("validation error: record network must not be empty")
	}

	row := &models.GasMonitoringRecordModel{}
	row.FromDomain(record)

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create monitoring record: %w", err)
	}

	logrus.Debugf("Created monitoring record %s for %s", record.ID, record.Network)
	return nil
}

func (r *gormRecordRepository) CreateBatch(ctx context.Context, records []*model.GasMonitoringRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*models.GasMonitoringRecordModel, len(records))
	for i, record := range records {
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		if record.Network == "" {
			return fmt.Errorf("validation error: record %d has no network", i)
		}
		row := &models.GasMonitoringRecordModel{}
		row.FromDomain(record)
		rows[i] = row
	}

	if err := r.db.WithContext(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return fmt.Errorf("failed to create monitoring records: %w", err)
	}

	logrus.Infof("Stored %d monitoring records", len(rows))
	return nil
}

func (r *gormRecordRepository) List(ctx context.Context, query *model.RecordQuery) ([]*model.GasMonitoringRecord, error) {
	if err := r.validate.Struct(query); err != nil {
		return nil, fmt.Errorf("invalid query parameters: %w", err)
	}

	dbQuery := r.db.WithContext(ctx).Model(&models.GasMonitoringRecordModel{})

	if query.Network != "" {
		dbQuery = dbQuery.Where("network = ?", query.Network)
	}
	if query.Contract != "" {
		dbQuery = dbQuery.Where("contract = ?", query.Contract)
	}
	if query.Method != "" {
		dbQuery = dbQuery.Where("method = ?", query.Method)
	}
	if !query.Since.IsZero() {
		dbQuery = dbQuery.Where("created_at >= ?", query.Since)
	}
	if !query.Until.IsZero() {
		dbQuery = dbQuery.Where("created_at <= ?", query.Until)
	}

	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := "asc"
	if query.SortDesc {
		order = "desc"
	}
	dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", sortBy, order))

	if query.Limit > 0 {
		dbQuery = dbQuery.Limit(query.Limit)
	}
	if query.Offset > 0 {
		dbQuery = dbQuery.Offset(query.Offset)
	}

	var rows []*models.GasMonitoringRecordModel
	if err := dbQuery.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch monitoring records: %w", err)
	}

	records := make([]*model.GasMonitoringRecord, len(rows))
	for i, row := range rows {
		records[i] = row.ToDomain()
	}
	return records, nil
}

func (r *gormRecordRepository) GetByID(ctx context.Context, id string) (*model.GasMonitoringRecord, error) {
	var row models.GasMonitoringRecordModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("monitoring record %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch monitoring record: %w", err)
	}
	return row.ToDomain(), nil
}

func (r *gormRecordRepository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GasMonitoringRecordModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete monitoring record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("monitoring record %s: %w", id, ErrNotFound)
	}

	logrus.Debugf("Deleted monitoring record %s", id)
	return nil
}

func (r *gormRecordRepository) Benchmarks(ctx context.Context, since, until time.Time) ([]*model.GasMonitoringRecord, error) {
	dbQuery := r.db.WithContext(ctx).
		Model(&models.GasMonitoringRecordModel{}).
		Where("contract <> '' AND method <> ''")

	if !since.IsZero() {
		dbQuery = dbQuery.Where("created_at >= ?", since)
	}
	if !until.IsZero() {
		dbQuery = dbQuery.Where("created_at <= ?", until)
	}

	var rows []*models.GasMonitoringRecordModel
	if err := dbQuery.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch benchmark records: %w", err)
	}

	records := make([]*model.GasMonitoringRecord, len(rows))
	for i, row := range rows {
		records[i] = row.ToDomain()
	}
	return records, nil
}
