// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the AccessLog
// model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only persistence and
// query composition.
//
// Functions:
//
//   - CreateAccessLog(ctx, db, rec) -> error
//     Inserts a record, assigning a UUID and access time when missing.
//
//   - GetAccessLog(ctx, db, id) -> *domain.AccessLog, error
//     Fetches a single record, or ErrNotFound.
//
//   - CountAccessLogs(ctx, db, f) -> (int64, error)
//     Counts records matching the filter.
//
//   - ListAccessLogsPage(ctx, db, f, offset, limit) -> []domain.AccessLog, error
//     Returns a page of matching records, newest first.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-http-governance/internal/domain"
)

// ErrNotFound aliases gorm.ErrRecordNotFound for callers that should not
// import gorm.
var ErrNotFound = gorm.ErrRecordNotFound

// AccessLogFilter narrows access log queries. Zero-valued fields are ignored.
type AccessLogFilter struct {
	Path       string
	UserID     string
	ErrorCode  int
	OnlyFailed bool
	Since      time.Time
}

func (f AccessLogFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Path != "" {
		q = q.Where("path = ?", f.Path)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ErrorCode != 0 {
		q = q.Where("error_code = ?", f.ErrorCode)
	}
	if f.OnlyFailed {
		q = q.Where("error_code <> 0 OR error_msg <> ''")
	}
	if !f.Since.IsZero() {
		q = q.Where("access_time >= ?", f.Since)
	}
	return q
}

// CreateAccessLog persists rec. A missing ID or AccessTime is filled in.
func CreateAccessLog(ctx context.Context, db *gorm.DB, rec *domain.AccessLog) error {
	if rec == nil {
		return errors.New("nil access log")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AccessTime.IsZero() {
		rec.AccessTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(rec).Error
}

// GetAccessLog returns the record with the given id or ErrNotFound.
func GetAccessLog(ctx context.Context, db *gorm.DB, id string) (*domain.AccessLog, error) {
	var rec domain.AccessLog
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountAccessLogs returns the number of records matching f.
func CountAccessLogs(ctx context.Context, db *gorm.DB, f AccessLogFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&domain.AccessLog{})).Count(&n).Error
	return n, err
}

// ListAccessLogsPage returns up to limit records matching f, skipping offset,
// ordered by access time descending.
func ListAccessLogsPage(ctx context.Context, db *gorm.DB, f AccessLogFilter, offset, limit int) ([]domain.AccessLog, error) {
	var out []domain.AccessLog
	err := f.apply(db.WithContext(ctx)).
		Order("access_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
