package service

import (
	"context"
	"strings"
	"testing"

	"stockcast-api/internal/lock"
	"stockcast-api/internal/model"
	"stockcast-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLifecycleRepo struct {
	result   repository.SnapshotResult
	err      error
	inserted []model.InventoryRecord
	calls    int
}

func (f *fakeLifecycleRepo) ReplaceUserData(userID uuid.UUID, records []model.InventoryRecord) (repository.SnapshotResult, error) {
	f.calls++
	f.inserted = records
	return f.result, f.err
}

func newInventoryServiceForTest(lifecycle *fakeLifecycleRepo) InventoryService {
	return NewInventoryService(&fakeInventoryRepo{}, lifecycle, lock.NewMemoryLocker(), nil, testLogger())
}

const validCSV = `productId,productName,region,date,unitsSold,stockAvailable
SKU-1,Widget,north,2024-01-01,10,50
SKU-1,Widget,north,2024-01-02,20,40
SKU-2,Gadget,south,2024-01-01,5,12
`

func TestUploadSnapshot_ReplacesData(t *testing.T) {
	lifecycle := &fakeLifecycleRepo{
		result: repository.SnapshotResult{RecordsDeleted: 7, ForecastsDeleted: 2},
	}
	svc := newInventoryServiceForTest(lifecycle)
	userID := uuid.New()

	result, err := svc.UploadSnapshot(context.Background(), userID, strings.NewReader(validCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, result.RecordsInserted)
	assert.Equal(t, int64(9), result.RecordsDeleted)
	assert.Empty(t, result.Errors)

	require.Len(t, lifecycle.inserted, 3)
	first := lifecycle.inserted[0]
	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, "SKU-1", first.ProductID)
	assert.Equal(t, "Widget", first.ProductName)
	assert.Equal(t, "north", first.Region)
	assert.Equal(t, float64(10), first.UnitsSold)
	assert.Equal(t, float64(50), first.StockAvailable)
	assert.Equal(t, "2024-01-01", first.Date.UTC().Format("2006-01-02"))
}

func TestUploadSnapshot_SkipsInvalidRows(t *testing.T) {
	csvData := `productId,productName,region,date,unitsSold,stockAvailable
SKU-1,Widget,north,2024-01-01,10,50
SKU-2,,south,2024-01-01,5,12
SKU-3,Gizmo,east,2024-01-01,-4,12
SKU-4,Doohickey,west,not-a-date,5,12
SKU-5,Thing,west,2024-01-01,5,banana
`
	lifecycle := &fakeLifecycleRepo{}
	svc := newInventoryServiceForTest(lifecycle)

	result, err := svc.UploadSnapshot(context.Background(), uuid.New(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsInserted)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, "Row missing fields: productName", result.Errors[0])
	assert.Equal(t, "Invalid unitsSold for product SKU-3", result.Errors[1])
	assert.Equal(t, "Invalid date for product SKU-4", result.Errors[2])
	assert.Equal(t, "Invalid stockAvailable for product SKU-5", result.Errors[3])
}

func TestUploadSnapshot_AllRowsInvalidIsNoOp(t *testing.T) {
	csvData := `productId,productName,region,date,unitsSold,stockAvailable
SKU-1,Widget,north,2024-01-01,abc,50
`
	lifecycle := &fakeLifecycleRepo{}
	svc := newInventoryServiceForTest(lifecycle)

	result, err := svc.UploadSnapshot(context.Background(), uuid.New(), strings.NewReader(csvData))
	assert.ErrorIs(t, err, ErrNoValidRows)
	require.NotNil(t, result)
	assert.Len(t, result.Errors, 1)
	// Nothing valid to insert means the old snapshot must stay untouched.
	assert.Zero(t, lifecycle.calls)
}

func TestUploadSnapshot_MissingColumn(t *testing.T) {
	csvData := `productId,productName,region,date,unitsSold
SKU-1,Widget,north,2024-01-01,10
`
	svc := newInventoryServiceForTest(&fakeLifecycleRepo{})

	_, err := svc.UploadSnapshot(context.Background(), uuid.New(), strings.NewReader(csvData))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadCSV)
	assert.Contains(t, err.Error(), `"stockAvailable"`)
}

func TestUploadSnapshot_EmptyFile(t *testing.T) {
	svc := newInventoryServiceForTest(&fakeLifecycleRepo{})

	_, err := svc.UploadSnapshot(context.Background(), uuid.New(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrBadCSV)
}

func TestUploadSnapshot_LockedUserReturnsBusy(t *testing.T) {
	locker := lock.NewMemoryLocker()
	userID := uuid.New()
	release, err := locker.Acquire(context.Background(), userLockKey(userID), userLockTTL)
	require.NoError(t, err)
	defer release()

	svc := NewInventoryService(&fakeInventoryRepo{}, &fakeLifecycleRepo{}, locker, nil, testLogger())

	_, err = svc.UploadSnapshot(context.Background(), userID, strings.NewReader(validCSV))
	assert.ErrorIs(t, err, lock.ErrBusy)
}

func TestParseDate_AcceptedLayouts(t *testing.T) {
	for _, value := range []string{
		"2024-03-05",
		"2024-03-05T10:30:00Z",
		"2024-03-05 10:30:00",
		"03/05/2024",
	} {
		parsed, err := parseDate(value)
		require.NoError(t, err, "value=%s", value)
		assert.Equal(t, "2024-03-05", parsed.Format("2006-01-02"), "value=%s", value)
	}

	_, err := parseDate("5th of March")
	assert.Error(t, err)
}
