package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/gasbench-api/internal/model"
)

func sampleReport() *model.ComparisonReport {
	return &model.ComparisonReport{
		Title:    "weekly comparison",
		Baseline: "ethereum",
		Results: model.ReportResults{
			Ranking: []model.NetworkRanking{
				{Network: "polygon", MeanCostUSD: 0.01, Samples: 10},
				{Network: "ethereum", MeanCostUSD: 1.50, Samples: 10},
			},
			Pivot: map[string]map[string]float64{
				"Token.transfer": {"ethereum": 2.0, "polygon": 0.01},
			},
		},
	}
}

func TestCreateAndGetReport(t *testing.T) {
	repo := NewReportRepository(testDB(t))
	ctx := context.Background()

	report := sampleReport()
	require.NoError(t, repo.Create(ctx, report))
	assert.NotEmpty(t, report.ID)

	got, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly comparison", got.Title)
	assert.Equal(t, report.Results.Ranking, got.Results.Ranking)
	assert.Equal(t, 2.0, got.Results.Pivot["Token.transfer"]["ethereum"])
}

func TestGetReportNotFound(t *testing.T) {
	repo := NewReportRepository(testDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReportsNewestFirst(t *testing.T) {
	repo := NewReportRepository(testDB(t))
	ctx := context.Background()

	older := sampleReport()
	older.CreatedAt = time.Now().Add(-time.Hour).UTC()
	newer := sampleReport()
	newer.Title = "fresh"

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	got, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "fresh", got[0].Title)

	got, err = repo.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDeleteReport(t *testing.T) {
	repo := NewReportRepository(testDB(t))
	ctx := context.Background()

	report := sampleReport()
	require.NoError(t, repo.Create(ctx, report))
	require.NoError(t, repo.DeleteByID(ctx, report.ID))

	err := repo.DeleteByID(ctx, report.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
