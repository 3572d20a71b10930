package services

import (
	"fmt"
	"time"

	"crypto_tracker_backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageError indicates the persistence layer itself failed. Unlike adapter
// errors it is a process-level concern: the cycle cannot retry past it.
type StorageError struct {
	Op        string
	Indicator string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s for %s: %v", e.Op, e.Indicator, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DataStore owns all persisted indicator rows. Adapters and the orchestrator
// only hold transient in-memory records; everything durable goes through here.
type DataStore struct {
	db *gorm.DB
}

// NewDataStore creates a data store over an initialized gorm connection
func NewDataStore(db *gorm.DB) *DataStore {
	return &DataStore{db: db}
}

// Upsert writes records for one indicator, keyed by (indicator, date).
// Re-running a fetch for the same day replaces that day's row. A multi-row
// backfill commits fully or not at all.
func (s *DataStore) Upsert(indicator string, records []models.IndicatorRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if record.IndicatorName() != indicator {
				return fmt.Errorf("record for %q passed to %q upsert", record.IndicatorName(), indicator)
			}
			if record.RecordDate() == "" {
				return fmt.Errorf("record for %q has no date", indicator)
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "date"}},
				UpdateAll: true,
			}).Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &StorageError{Op: "upsert", Indicator: indicator, Err: err}
	}
	return nil
}

// GetLatest returns the most recent record for an indicator
func (s *DataStore) GetLatest(indicator string) (models.IndicatorRecord, error) {
	switch indicator {
	case models.IndicatorMag7BTC:
		var row models.Mag7BTC
		return &row, s.latest(indicator, &row)
	case models.IndicatorPiCycle:
		var row models.PiCycle
		return &row, s.latest(indicator, &row)
	case models.IndicatorCoinbaseRank:
		var row models.CoinbaseRank
		return &row, s.latest(indicator, &row)
	case models.IndicatorCBBI:
		var row models.CBBIScore
		return &row, s.latest(indicator, &row)
	case models.IndicatorHalving:
		var row models.Halving
		return &row, s.latest(indicator, &row)
	default:
		return nil, fmt.Errorf("unknown indicator %q", indicator)
	}
}

func (s *DataStore) latest(indicator string, dest interface{}) error {
	err := s.db.Order("date DESC").First(dest).Error
	if err == gorm.ErrRecordNotFound {
		return err
	}
	if err != nil {
		return &StorageError{Op: "get latest", Indicator: indicator, Err: err}
	}
	return nil
}

// GetHistory returns an indicator's records within [start, end], oldest
// first. Empty bounds leave that side of the range open.
func (s *DataStore) GetHistory(indicator, start, end string) (interface{}, error) {
	query := s.db.Order("date ASC")
	if start != "" {
		query = query.Where("date >= ?", start)
	}
	if end != "" {
		query = query.Where("date <= ?", end)
	}

	var err error
	switch indicator {
	case models.IndicatorMag7BTC:
		var rows []models.Mag7BTC
		err = query.Find(&rows).Error
		if err == nil {
			return rows, nil
		}
	case models.IndicatorPiCycle:
		var rows []models.PiCycle
		err = query.Find(&rows).Error
		if err == nil {
			return rows, nil
		}
	case models.IndicatorCoinbaseRank:
		var rows []models.CoinbaseRank
		err = query.Find(&rows).Error
		if err == nil {
			return rows, nil
		}
	case models.IndicatorCBBI:
		var rows []models.CBBIScore
		err = query.Find(&rows).Error
		if err == nil {
			return rows, nil
		}
	case models.IndicatorHalving:
		var rows []models.Halving
		err = query.Find(&rows).Error
		if err == nil {
			return rows, nil
		}
	default:
		return nil, fmt.Errorf("unknown indicator %q", indicator)
	}
	return nil, &StorageError{Op: "get history", Indicator: indicator, Err: err}
}

// RecordStatus updates an indicator's refresh health after a fetch attempt.
// Rows are created on first use and only ever updated afterwards. A failure
// keeps the previous last-success timestamp; a success clears the error.
func (s *DataStore) RecordStatus(indicator string, success bool, fetchErr error) error {
	now := time.Now().UTC()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var status models.IndicatorUpdate
		err := tx.Where("indicator_name = ?", indicator).First(&status).Error
		if err == gorm.ErrRecordNotFound {
			status = models.IndicatorUpdate{IndicatorName: indicator}
		} else if err != nil {
			return err
		}

		status.LastAttempt = now
		status.Success = success
		if success {
			status.LastSuccess = &now
			status.ErrorMessage = nil
		} else {
			message := "unknown error"
			if fetchErr != nil {
				message = fetchErr.Error()
			}
			status.ErrorMessage = &message
		}

		return tx.Save(&status).Error
	})
	if err != nil {
		return &StorageError{Op: "record status", Indicator: indicator, Err: err}
	}
	return nil
}

// GetStatus returns the refresh health row for one indicator
func (s *DataStore) GetStatus(indicator string) (*models.IndicatorUpdate, error) {
	var status models.IndicatorUpdate
	err := s.db.Where("indicator_name = ?", indicator).First(&status).Error
	if err == gorm.ErrRecordNotFound {
		return nil, err
	}
	if err != nil {
		return nil, &StorageError{Op: "get status", Indicator: indicator, Err: err}
	}
	return &status, nil
}

// ListStatuses returns the refresh health rows for all indicators
func (s *DataStore) ListStatuses() ([]models.IndicatorUpdate, error) {
	var statuses []models.IndicatorUpdate
	if err := s.db.Order("indicator_name ASC").Find(&statuses).Error; err != nil {
		return nil, &StorageError{Op: "list statuses", Indicator: "*", Err: err}
	}
	return statuses, nil
}
