// Package history persists finished apply operations in the ledger database
// and prunes rows past the configured retention. Pruning touches ledger rows
// only; backup files on disk are never deleted.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Recol/bf6-settings-manager/internal/applier"
	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/models"
	"github.com/Recol/bf6-settings-manager/internal/types"
)

const defaultListLimit = 20

// Service records operations and runs the retention sweep.
type Service struct {
	db            *gorm.DB
	configManager types.ConfigManager
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewService creates a new history service.
func NewService(db *gorm.DB, configManager types.ConfigManager) *Service {
	return &Service{
		db:            db,
		configManager: configManager,
		stopCh:        make(chan struct{}),
	}
}

// RecordApply stores one finished operation. Satisfies applier.Recorder.
func (s *Service) RecordApply(result applier.Result) error {
	record, err := recordFromResult(result)
	if err != nil {
		return err
	}
	if err := s.db.Create(record).Error; err != nil {
		return apperrors.ParseDBError(err)
	}
	return nil
}

// List returns the most recent operations, newest first. A non-positive
// limit selects the default page size.
func (s *Service) List(limit int) ([]models.ApplyRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var records []models.ApplyRecord
	if err := s.db.Order("started_at DESC, id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, apperrors.ParseDBError(err)
	}
	return records, nil
}

// Get returns one operation by its id.
func (s *Service) Get(id string) (*models.ApplyRecord, error) {
	var record models.ApplyRecord
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, apperrors.ParseDBError(err)
	}
	return &record, nil
}

// Start starts the retention sweep loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
	logrus.Debug("History retention service started")
}

// Stop stops the retention sweep gracefully.
func (s *Service) Stop(ctx context.Context) {
	close(s.stopCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Debug("History retention service stopped gracefully.")
	case <-ctx.Done():
		logrus.Warn("History retention service stop timed out.")
	}
}

// run executes the sweep loop: once on startup, then on a fixed cadence for
// long-lived sessions such as waiting on a game exit.
func (s *Service) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	s.pruneExpiredRecords()

	for {
		select {
		case <-ticker.C:
			s.pruneExpiredRecords()
		case <-s.stopCh:
			return
		}
	}
}

// pruneExpiredRecords deletes ledger rows older than the retention window
// using time-indexed batch deletion.
func (s *Service) pruneExpiredRecords() {
	retentionDays := s.configManager.GetHistoryConfig().RetentionDays
	if retentionDays <= 0 {
		logrus.Debug("History retention is disabled (retention_days <= 0)")
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -retentionDays).UTC()

	const batchSize = 500
	totalDeleted := int64(0)
	dialect := s.db.Dialector.Name()

	for {
		batchCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var result *gorm.DB
		switch dialect {
		case "postgres":
			// PostgreSQL does not support LIMIT in DELETE directly.
			result = s.db.WithContext(batchCtx).Exec(`
				WITH c AS (
					SELECT id
					FROM apply_records
					WHERE started_at < ?
					ORDER BY started_at
					LIMIT ?
				)
				DELETE FROM apply_records
				WHERE id IN (SELECT id FROM c)
			`, cutoffTime, batchSize)
		case "mysql":
			// MySQL supports ORDER BY + LIMIT in DELETE.
			result = s.db.WithContext(batchCtx).Exec(
				"DELETE FROM apply_records WHERE started_at < ? ORDER BY started_at LIMIT ?",
				cutoffTime,
				batchSize,
			)
		case "sqlite":
			// Use rowid to apply LIMIT efficiently.
			result = s.db.WithContext(batchCtx).Exec(
				"DELETE FROM apply_records WHERE rowid IN (SELECT rowid FROM apply_records WHERE started_at < ? LIMIT ?)",
				cutoffTime,
				batchSize,
			)
		default:
			logrus.Warnf("History retention using fallback deletion for unsupported dialect: %s", dialect)
			result = s.db.WithContext(batchCtx).Where("started_at < ?", cutoffTime).Limit(batchSize).Delete(&models.ApplyRecord{})
		}
		cancel()

		if result.Error != nil {
			logrus.WithError(result.Error).Error("Failed to prune expired apply records")
			return
		}

		deletedCount := result.RowsAffected
		totalDeleted += deletedCount

		if deletedCount < int64(batchSize) {
			break
		}

		// Small delay between batches to reduce lock contention.
		time.Sleep(50 * time.Millisecond)
	}

	if totalDeleted > 0 {
		logrus.WithFields(logrus.Fields{
			"deleted_count":  totalDeleted,
			"cutoff_time":    cutoffTime.Format(time.RFC3339),
			"retention_days": retentionDays,
		}).Info("Pruned expired apply records")
	} else {
		logrus.Debug("No expired apply records found to prune")
	}
}

func recordFromResult(result applier.Result) (*models.ApplyRecord, error) {
	record := &models.ApplyRecord{
		ID:            result.ID,
		Operation:     result.Operation,
		State:         string(result.State),
		FailureReason: string(result.Reason),
		ConfigPath:    result.ConfigPath,
		BackupPath:    result.BackupPath,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
	}
	if len(result.Changes) > 0 {
		payload, err := json.Marshal(result.Changes)
		if err != nil {
			return nil, apperrors.NewAppErrorf(apperrors.ErrInternal, "cannot encode change list: %v", err)
		}
		record.Changes = datatypes.JSON(payload)
	}
	if len(result.Warnings) > 0 {
		payload, err := json.Marshal(result.Warnings)
		if err != nil {
			return nil, apperrors.NewAppErrorf(apperrors.ErrInternal, "cannot encode warnings: %v", err)
		}
		record.Warnings = datatypes.JSON(payload)
	}
	return record, nil
}
