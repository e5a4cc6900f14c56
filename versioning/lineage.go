package versioning

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRecord is one row of the snapshot lineage index: an explicit
// (date, version, path) record written when a snapshot is archived. The
// index makes "previous version" a lookup instead of a filesystem heuristic;
// the directory scan stays as the fallback for months written before the
// index existed.
type SnapshotRecord struct {
	ID         uint   `gorm:"primarykey"`
	ReportDate string `gorm:"size:8;uniqueIndex:idx_snapshot_date_version"`
	Version    int    `gorm:"uniqueIndex:idx_snapshot_date_version"`
	Path       string `gorm:"size:512"`
	CreatedAt  time.Time
}

func (SnapshotRecord) TableName() string {
	return "snapshot_versions"
}

// LineageIndex is the optional DB-backed snapshot index. A nil *LineageIndex
// is valid and means "no index": every method on the Resolver handles that.
type LineageIndex struct {
	db *gorm.DB
}

// NewLineageIndex wraps a connected DB; returns nil when db is nil so the
// caller can pass the result straight to NewResolver.
func NewLineageIndex(db *gorm.DB) *LineageIndex {
	if db == nil {
		return nil
	}
	return &LineageIndex{db: db}
}

func (ix *LineageIndex) Migrate() error {
	return ix.db.AutoMigrate(&SnapshotRecord{})
}

// Record upserts one archived snapshot. Re-recording the same (date,
// version) just refreshes the path, so re-runs stay idempotent.
func (ix *LineageIndex) Record(ctx context.Context, date string, version int, path string) error {
	rec := SnapshotRecord{ReportDate: date, Version: version, Path: path}
	return ix.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_date"}, {Name: "version"}},
			DoUpdates: clause.AssignmentColumns([]string{"path"}),
		}).
		Create(&rec).Error
}

// Latest returns the highest recorded version for the date, or nil when the
// date has no records.
func (ix *LineageIndex) Latest(ctx context.Context, date string) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	err := ix.db.WithContext(ctx).
		Where("report_date = ?", date).
		Order("version DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Find returns the exact (date, version) record, or nil when absent.
func (ix *LineageIndex) Find(ctx context.Context, date string, version int) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	err := ix.db.WithContext(ctx).
		Where("report_date = ? AND version = ?", date, version).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
