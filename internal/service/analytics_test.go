package service

import (
	"testing"
	"time"

	"stockcast-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func mustDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(date string, unitsSold, stock float64) model.InventoryRecord {
	return model.InventoryRecord{
		BaseModel:      model.BaseModel{ID: uuid.New()},
		Date:           mustDay(date),
		UnitsSold:      unitsSold,
		StockAvailable: stock,
	}
}

func TestComputeAnalytics_EmptySeries(t *testing.T) {
	result := ComputeAnalytics(nil)
	assert.Equal(t, AnalyticsResult{}, result)
}

func TestComputeAnalytics_SingleRecord(t *testing.T) {
	result := ComputeAnalytics([]model.InventoryRecord{record("2024-01-01", 12, 30)})

	assert.InDelta(t, 12.0, result.MovingAverage, 1e-9)
	assert.Zero(t, result.GrowthRate)
	assert.InDelta(t, 12.0, result.SalesVelocity, 1e-9)
	assert.Zero(t, result.RegionalVolatility)
	assert.Equal(t, 1, result.DataPoints)
	assert.InDelta(t, 30.0, result.CurrentStock, 1e-9)
}

func TestComputeAnalytics_WorkedExample(t *testing.T) {
	result := ComputeAnalytics([]model.InventoryRecord{
		record("2024-01-01", 10, 50),
		record("2024-01-02", 20, 40),
	})

	assert.InDelta(t, 15.0, result.MovingAverage, 1e-9)
	assert.InDelta(t, 100.0, result.GrowthRate, 1e-9)
	assert.InDelta(t, 15.0, result.SalesVelocity, 1e-9)
	assert.InDelta(t, 33.333333, result.RegionalVolatility, 1e-4)
	assert.Equal(t, 2, result.DataPoints)
	assert.InDelta(t, 40.0, result.CurrentStock, 1e-9)
}

func TestComputeAnalytics_MovingAverageWindowsLastSeven(t *testing.T) {
	records := []model.InventoryRecord{
		record("2024-01-01", 1000, 10),
		record("2024-01-02", 1000, 10),
	}
	// Seven trailing records of 10 units each; the two spikes fall outside
	// the window and must not affect the average.
	for i := 3; i <= 9; i++ {
		records = append(records, record(time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 10, 10))
	}

	result := ComputeAnalytics(records)
	assert.InDelta(t, 10.0, result.MovingAverage, 1e-9)
}

func TestComputeAnalytics_GrowthRate(t *testing.T) {
	tests := []struct {
		name  string
		units []float64
		want  float64
	}{
		{"identical halves", []float64{5, 5, 5, 5}, 0},
		{"doubling", []float64{10, 10, 20, 20}, 100},
		{"declining", []float64{20, 20, 10, 10}, -50},
		{"zero first half with sales later", []float64{0, 0, 8, 8}, 100},
		{"all zero", []float64{0, 0, 0, 0}, 0},
		{"odd length splits at floor", []float64{10, 20, 20}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]model.InventoryRecord, 0, len(tt.units))
			for i, u := range tt.units {
				day := time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)
				records = append(records, record(day.Format("2006-01-02"), u, 100))
			}
			result := ComputeAnalytics(records)
			assert.InDelta(t, tt.want, result.GrowthRate, 1e-9, "units=%v", tt.units)
		})
	}
}

func TestComputeAnalytics_SalesVelocityCollapsesDuplicateDays(t *testing.T) {
	// Two records on the same calendar day count as one day of activity.
	result := ComputeAnalytics([]model.InventoryRecord{
		record("2024-01-01", 10, 50),
		record("2024-01-01", 20, 50),
		record("2024-01-05", 30, 50),
	})

	// Day totals are 30 and 30 across two distinct days.
	assert.InDelta(t, 30.0, result.SalesVelocity, 1e-9)
}

func TestComputeAnalytics_ConstantSeriesHasZeroVolatility(t *testing.T) {
	result := ComputeAnalytics([]model.InventoryRecord{
		record("2024-01-01", 7, 10),
		record("2024-01-02", 7, 10),
		record("2024-01-03", 7, 10),
	})
	assert.Zero(t, result.RegionalVolatility)
}

func TestComputeAnalytics_OrderIndependent(t *testing.T) {
	records := []model.InventoryRecord{
		record("2024-01-03", 30, 10),
		record("2024-01-01", 10, 50),
		record("2024-01-02", 20, 40),
	}
	shuffled := []model.InventoryRecord{records[1], records[0], records[2]}

	assert.Equal(t, ComputeAnalytics(records), ComputeAnalytics(shuffled))
	// Current stock follows the chronologically last record regardless of
	// input order.
	assert.InDelta(t, 10.0, ComputeAnalytics(shuffled).CurrentStock, 1e-9)
}

func TestComputeAnalytics_DoesNotMutateInput(t *testing.T) {
	records := []model.InventoryRecord{
		record("2024-01-02", 20, 40),
		record("2024-01-01", 10, 50),
	}
	ComputeAnalytics(records)
	assert.Equal(t, mustDay("2024-01-02"), records[0].Date)
}
