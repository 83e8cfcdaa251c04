// Package services – AccessLogService
//
// AccessLogService answers queries over persisted access logs: paginated
// listing with filters and lookup by id. It owns paging defaults and maps
// repository misses to service errors so handlers stay transport-thin.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-http-governance/internal/domain"
	"github.com/tbourn/go-http-governance/internal/repo"
	"github.com/tbourn/go-http-governance/internal/utils"
)

// AccessLogRepo defines the repository contract required by AccessLogService.
type AccessLogRepo interface {
	GetAccessLog(ctx context.Context, db *gorm.DB, id string) (*domain.AccessLog, error)
	CountAccessLogs(ctx context.Context, db *gorm.DB, f repo.AccessLogFilter) (int64, error)
	ListAccessLogsPage(ctx context.Context, db *gorm.DB, f repo.AccessLogFilter, offset, limit int) ([]domain.AccessLog, error)
}

// GormAccessLogRepo binds AccessLogRepo to the repo package functions.
type GormAccessLogRepo struct{}

func (GormAccessLogRepo) GetAccessLog(ctx context.Context, db *gorm.DB, id string) (*domain.AccessLog, error) {
	return repo.GetAccessLog(ctx, db, id)
}

func (GormAccessLogRepo) CountAccessLogs(ctx context.Context, db *gorm.DB, f repo.AccessLogFilter) (int64, error) {
	return repo.CountAccessLogs(ctx, db, f)
}

func (GormAccessLogRepo) ListAccessLogsPage(ctx context.Context, db *gorm.DB, f repo.AccessLogFilter, offset, limit int) ([]domain.AccessLog, error) {
	return repo.ListAccessLogsPage(ctx, db, f, offset, limit)
}

// AccessLogService reads access logs. A nil DB means persistence is off and
// every query fails with ErrStoreDisabled.
type AccessLogService struct {
	DB   *gorm.DB
	Repo AccessLogRepo
}

// NewAccessLogService constructs an AccessLogService. A nil repo uses the
// GORM-backed repository.
func NewAccessLogService(db *gorm.DB, r AccessLogRepo) *AccessLogService {
	if r == nil {
		r = GormAccessLogRepo{}
	}
	return &AccessLogService{DB: db, Repo: r}
}

// ListPage returns one page of records matching f, newest first, and the
// total number of matches. Invalid paging falls back to page 1 of 20.
func (s *AccessLogService) ListPage(ctx context.Context, f repo.AccessLogFilter, page, pageSize int) ([]domain.AccessLog, int64, error) {
	if s.DB == nil {
		return nil, 0, ErrStoreDisabled
	}
	page, pageSize = utils.NormalizePage(page, pageSize, 20, 0)

	total, err := s.Repo.CountAccessLogs(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.AccessLog{}, 0, nil
	}
	items, err := s.Repo.ListAccessLogsPage(ctx, s.DB, f, utils.Offset(page, pageSize), pageSize)
	return items, total, err
}

// Get returns the record with the given id or ErrAccessLogNotFound.
func (s *AccessLogService) Get(ctx context.Context, id string) (*domain.AccessLog, error) {
	if s.DB == nil {
		return nil, ErrStoreDisabled
	}
	rec, err := s.Repo.GetAccessLog(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAccessLogNotFound
	}
	return rec, err
}
