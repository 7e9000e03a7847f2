package service

import (
	"bytes"
	"math"
	"sort"

	"stockcast-api/internal/model"
)

// AnalyticsResult holds the deterministic signals derived from one
// (user, product, region) series. Computed fresh on every forecast request,
// never persisted standalone.
type AnalyticsResult struct {
	MovingAverage      float64 `json:"moving_average"`
	GrowthRate         float64 `json:"growth_rate"`
	SalesVelocity      float64 `json:"sales_velocity"`
	RegionalVolatility float64 `json:"regional_volatility"`
	DataPoints         int     `json:"data_points"`
	CurrentStock       float64 `json:"current_stock"`
}

// ComputeAnalytics reduces a time series of inventory records into the four
// forecast signals plus current stock. The input is re-sorted by date then
// record ID so repeated runs over the same set are bit-identical even if the
// caller's ordering drifts.
func ComputeAnalytics(records []model.InventoryRecord) AnalyticsResult {
	sorted := make([]model.InventoryRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return bytes.Compare(sorted[i].ID[:], sorted[j].ID[:]) < 0
	})

	result := AnalyticsResult{
		MovingAverage:      movingAverage(sorted, 7),
		GrowthRate:         growthRate(sorted),
		SalesVelocity:      salesVelocity(sorted),
		RegionalVolatility: volatility(sorted),
		DataPoints:         len(sorted),
	}
	if len(sorted) > 0 {
		result.CurrentStock = sorted[len(sorted)-1].StockAvailable
	}
	return result
}

// movingAverage is the mean of unitsSold over the trailing min(window, N)
// records.
func movingAverage(records []model.InventoryRecord, window int) float64 {
	if len(records) == 0 {
		return 0
	}
	if len(records) < window {
		window = len(records)
	}

	var sum float64
	for _, r := range records[len(records)-window:] {
		sum += r.UnitsSold
	}
	return sum / float64(window)
}

// growthRate compares the mean of the second half of the series against the
// first half, as a percentage. A zero-mean first half with any sales in the
// second half reads as exactly 100.
func growthRate(records []model.InventoryRecord) float64 {
	if len(records) < 2 {
		return 0
	}

	mid := len(records) / 2
	firstAvg := meanUnitsSold(records[:mid])
	secondAvg := meanUnitsSold(records[mid:])

	if firstAvg == 0 {
		if secondAvg > 0 {
			return 100
		}
		return 0
	}
	return (secondAvg - firstAvg) / firstAvg * 100
}

// salesVelocity sums unitsSold per UTC calendar day and averages across the
// distinct days present. Unlike the moving average it measures an "average
// day of activity": duplicate dates collapse and gaps do not count.
func salesVelocity(records []model.InventoryRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	dailySales := make(map[string]float64)
	for _, r := range records {
		day := r.Date.UTC().Format("2006-01-02")
		dailySales[day] += r.UnitsSold
	}

	var total float64
	for _, units := range dailySales {
		total += units
	}
	return total / float64(len(dailySales))
}

// volatility is the coefficient of variation of unitsSold (population
// variance), as a percentage.
func volatility(records []model.InventoryRecord) float64 {
	if len(records) < 2 {
		return 0
	}

	mean := meanUnitsSold(records)
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, r := range records {
		diff := r.UnitsSold - mean
		variance += diff * diff
	}
	variance /= float64(len(records))

	return math.Sqrt(variance) / mean * 100
}

func meanUnitsSold(records []model.InventoryRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.UnitsSold
	}
	return sum / float64(len(records))
}
