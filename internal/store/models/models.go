// Package models contains the GORM representations of the persisted
// entities, kept separate from the domain structures in internal/model.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourorg/gasbench-api/internal/model"
)

// GasMonitoringRecordModel is the database row for a gas observation.
type GasMonitoringRecordModel struct {
	ID       string `gorm:"primaryKey;size:36"`
	Network  string `gorm:"size:32;index:idx_records_network"`
	Contract string `gorm:"size:128;index:idx_records_contract"`
	Method   string `gorm:"size:128"`

	BaseFeeGwei     float64
	PriorityFeeGwei float64
	TotalGwei       float64
	GasUsed         uint64
	NativeUSD       float64
	CostUSD         float64

	Source   string `gorm:"size:32"`
	Snapshot string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index:idx_records_created_at"`
}

// TableName overrides the default pluralization.
func (GasMonitoringRecordModel) TableName() string { return "gas_monitoring_records" }

// FromDomain fills the model from a domain record.
func (m *GasMonitoringRecordModel) FromDomain(r *model.GasMonitoringRecord) {
	m.ID = r.ID
	m.Network = r.Network
	m.Contract = r.Contract
	m.Method = r.Method
	m.BaseFeeGwei = r.BaseFeeGwei
	m.PriorityFeeGwei = r.PriorityFeeGwei
	m.TotalGwei = r.TotalGwei
	m.GasUsed = r.GasUsed
	m.NativeUSD = r.NativeUSD
	m.CostUSD = r.CostUSD
	m.Source = r.Source
	m.Snapshot = r.Snapshot
	m.CreatedAt = r.CreatedAt
}

// ToDomain converts the model back into a domain record.
func (m *GasMonitoringRecordModel) ToDomain() *model.GasMonitoringRecord {
	return &model.GasMonitoringRecord{
		ID:              m.ID,
		Network:         m.Network,
		Contract:        m.Contract,
		Method:          m.Method,
		BaseFeeGwei:     m.BaseFeeGwei,
		PriorityFeeGwei: m.PriorityFeeGwei,
		TotalGwei:       m.TotalGwei,
		GasUsed:         m.GasUsed,
		NativeUSD:       m.NativeUSD,
		CostUSD:         m.CostUSD,
		Source:          m.Source,
		Snapshot:        m.Snapshot,
		CreatedAt:       m.CreatedAt,
	}
}

// ComparisonReportModel is the database row for a comparison report. The
// computed results are stored as a JSON blob.
type ComparisonReportModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:256"`
	Baseline    string `gorm:"size:32"`
	WindowStart time.Time
	WindowEnd   time.Time
	Results     string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index:idx_reports_created_at"`
}

// TableName overrides the default pluralization.
func (ComparisonReportModel) TableName() string { return "comparison_reports" }

// FromDomain fills the model from a domain report.
func (m *ComparisonReportModel) FromDomain(r *model.ComparisonReport) error {
	payload, err := json.Marshal(r.Results)
	if err != nil {
		return fmt.Errorf("failed to encode report results: %w", err)
	}

	m.ID = r.ID
	m.Title = r.Title
	m.Baseline = r.Baseline
	m.WindowStart = r.WindowStart
	m.WindowEnd = r.WindowEnd
	m.Results = string(payload)
	m.CreatedAt = r.CreatedAt
	return nil
}

// ToDomain converts the model back into a domain report.
func (m *ComparisonReportModel) ToDomain() (*model.ComparisonReport, error) {
	var results model.ReportResults
	if m.Results != "" {
		if err := json.Unmarshal([]byte(m.Results), &results); err != nil {
			return nil, fmt.Errorf("failed to decode report results: %w", err)
		}
	}

	return &model.ComparisonReport{
		ID:          m.ID,
		Title:       m.Title,
		Baseline:    m.Baseline,
		WindowStart: m.WindowStart,
		WindowEnd:   m.WindowEnd,
		Results:     results,
		CreatedAt:   m.CreatedAt,
	}, nil
}
