package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApplyRecord is one row of the apply-history ledger: a single apply or
// restore operation with its terminal state. Rows reference backup files by
// path only; pruning the ledger never deletes anything on disk.
type ApplyRecord struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Operation     string         `gorm:"type:varchar(16);not null;default:'apply'" json:"operation"`
	State         string         `gorm:"type:varchar(32);not null" json:"state"`
	FailureReason string         `gorm:"type:varchar(64);default:''" json:"failure_reason,omitempty"`
	ConfigPath    string         `gorm:"type:varchar(512);default:''" json:"config_path,omitempty"`
	BackupPath    string         `gorm:"type:varchar(512);default:''" json:"backup_path,omitempty"`
	Changes       datatypes.JSON `json:"changes,omitempty"`
	Warnings      datatypes.JSON `json:"warnings,omitempty"`
	StartedAt     time.Time      `gorm:"index" json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}

// TableName specifies the table name for the ApplyRecord model
func (ApplyRecord) TableName() string {
	return "apply_records"
}
