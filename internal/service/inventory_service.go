package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"stockcast-api/internal/lock"
	"stockcast-api/internal/model"
	"stockcast-api/internal/repository"
	"stockcast-api/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoValidRows = errors.New("no valid data found in CSV")
	ErrBadCSV      = errors.New("invalid CSV file")
)

// UploadResult summarizes a snapshot replacement.
type UploadResult struct {
	RecordsInserted int      `json:"records_inserted"`
	RecordsDeleted  int64    `json:"records_deleted"`
	TotalProcessed  int      `json:"total_processed"`
	Errors          []string `json:"errors,omitempty"`
}

type InventoryService interface {
	// UploadSnapshot replaces the user's entire inventory state with the
	// rows parsed from csvData, invalidating all prior forecasts. Rows that
	// fail validation are skipped and reported; zero valid rows aborts with
	// no state change.
	UploadSnapshot(ctx context.Context, userID uuid.UUID, csvData io.Reader) (*UploadResult, error)
	GetInventoryData(userID uuid.UUID, filter repository.InventoryFilter) ([]model.InventoryRecord, error)
	GetProducts(userID uuid.UUID) ([]repository.ProductSummary, error)
}

type inventoryService struct {
	invRepo       repository.InventoryRepository
	lifecycleRepo repository.LifecycleRepository
	locker        lock.Locker
	wsHub         *ws.Hub
	logger        *logrus.Logger
}

func NewInventoryService(
	invRepo repository.InventoryRepository,
	lifecycleRepo repository.LifecycleRepository,
	locker lock.Locker,
	hub *ws.Hub,
	logger *logrus.Logger,
) InventoryService {
	return &inventoryService{
		invRepo:       invRepo,
		lifecycleRepo: lifecycleRepo,
		locker:        locker,
		wsHub:         hub,
		logger:        logger,
	}
}

// csvColumns are the required header columns, matched case-sensitively.
var csvColumns = []string{"productId", "productName", "region", "date", "unitsSold", "stockAvailable"}

func (s *inventoryService) UploadSnapshot(ctx context.Context, userID uuid.UUID, csvData io.Reader) (*UploadResult, error) {
	release, err := s.locker.Acquire(ctx, userLockKey(userID), userLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	records, rowErrors, err := parseSnapshotCSV(userID, csvData)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return &UploadResult{
			TotalProcessed: 0,
			Errors:         rowErrors,
		}, ErrNoValidRows
	}

	replaced, err := s.lifecycleRepo.ReplaceUserData(userID, records)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":           userID,
		"records_inserted":  len(records),
		"records_deleted":   replaced.RecordsDeleted,
		"forecasts_deleted": replaced.ForecastsDeleted,
		"row_errors":        len(rowErrors),
	}).Info("inventory snapshot replaced")

	if s.wsHub != nil {
		go s.wsHub.BroadcastEvent(ws.EventSnapshotReplaced, userID, map[string]interface{}{
			"records_inserted": len(records),
		})
	}

	return &UploadResult{
		RecordsInserted: len(records),
		RecordsDeleted:  replaced.RecordsDeleted + replaced.ForecastsDeleted,
		TotalProcessed:  len(records),
		Errors:          rowErrors,
	}, nil
}

func (s *inventoryService) GetInventoryData(userID uuid.UUID, filter repository.InventoryFilter) ([]model.InventoryRecord, error) {
	return s.invRepo.FindFiltered(userID, filter)
}

func (s *inventoryService) GetProducts(userID uuid.UUID) ([]repository.ProductSummary, error) {
	return s.invRepo.ListProducts(userID)
}

// parseSnapshotCSV reads the upload into validated records. Rows failing
// validation are skipped and reported individually.
func parseSnapshotCSV(userID uuid.UUID, csvData io.Reader) ([]model.InventoryRecord, []string, error) {
	reader := csv.NewReader(csvData)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: missing header row", ErrBadCSV)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range csvColumns {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("%w: header is missing column %q", ErrBadCSV, required)
		}
	}

	var (
		records   []model.InventoryRecord
		rowErrors []string
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row unreadable: %v", err))
			continue
		}

		field := func(name string) string {
			idx := columns[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		var missing []string
		for _, name := range csvColumns {
			if field(name) == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			rowErrors = append(rowErrors, "Row missing fields: "+strings.Join(missing, ", "))
			continue
		}

		productID := field("productId")

		unitsSold, err := strconv.ParseFloat(field("unitsSold"), 64)
		if err != nil || unitsSold < 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("Invalid unitsSold for product %s", productID))
			continue
		}

		stockAvailable, err := strconv.ParseFloat(field("stockAvailable"), 64)
		if err != nil || stockAvailable < 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("Invalid stockAvailable for product %s", productID))
			continue
		}

		date, err := parseDate(field("date"))
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Invalid date for product %s", productID))
			continue
		}

		records = append(records, model.InventoryRecord{
			UserID:         userID,
			ProductID:      productID,
			ProductName:    field("productName"),
			Region:         field("region"),
			Date:           date,
			UnitsSold:      unitsSold,
			StockAvailable: stockAvailable,
		})
	}

	return records, rowErrors, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
