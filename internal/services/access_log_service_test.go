package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-http-governance/internal/domain"
	"github.com/tbourn/go-http-governance/internal/repo"
)

// ----- Fake repo -----

type fakeAccessLogRepo struct {
	getID  string
	getRec *domain.AccessLog
	getErr error

	countFilter repo.AccessLogFilter
	countTotal  int64
	countErr    error

	pageOffset int
	pageLimit  int
	pageCalled bool
	pageItems  []domain.AccessLog
	pageErr    error
}

func (r *fakeAccessLogRepo) GetAccessLog(_ context.Context, _ *gorm.DB, id string) (*domain.AccessLog, error) {
	r.getID = id
	return r.getRec, r.getErr
}

func (r *fakeAccessLogRepo) CountAccessLogs(_ context.Context, _ *gorm.DB, f repo.AccessLogFilter) (int64, error) {
	r.countFilter = f
	return r.countTotal, r.countErr
}

func (r *fakeAccessLogRepo) ListAccessLogsPage(_ context.Context, _ *gorm.DB, _ repo.AccessLogFilter, offset, limit int) ([]domain.AccessLog, error) {
	r.pageCalled = true
	r.pageOffset, r.pageLimit = offset, limit
	return r.pageItems, r.pageErr
}

func TestListPage_DefaultsAndOffset(t *testing.T) {
	fr := &fakeAccessLogRepo{countTotal: 45, pageItems: []domain.AccessLog{{ID: "a"}}}
	s := NewAccessLogService(&gorm.DB{}, fr)

	items, total, err := s.ListPage(context.Background(), repo.AccessLogFilter{Path: "/user/2"}, 3, 10)
	if err != nil || total != 45 || len(items) != 1 {
		t.Fatalf("ListPage = %v, %d, %v", items, total, err)
	}
	if fr.pageOffset != 20 || fr.pageLimit != 10 {
		t.Fatalf("offset/limit = %d/%d; want 20/10", fr.pageOffset, fr.pageLimit)
	}
	if fr.countFilter.Path != "/user/2" {
		t.Fatalf("filter not forwarded: %+v", fr.countFilter)
	}

	_, _, _ = s.ListPage(context.Background(), repo.AccessLogFilter{}, 0, 0)
	if fr.pageOffset != 0 || fr.pageLimit != 20 {
		t.Fatalf("defaults offset/limit = %d/%d; want 0/20", fr.pageOffset, fr.pageLimit)
	}
}

func TestListPage_EmptyAndErrors(t *testing.T) {
	fr := &fakeAccessLogRepo{}
	s := NewAccessLogService(&gorm.DB{}, fr)
	items, total, err := s.ListPage(context.Background(), repo.AccessLogFilter{}, 1, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 || fr.pageCalled {
		t.Fatalf("empty result must short-circuit: %v %d %v called=%v", items, total, err, fr.pageCalled)
	}

	boom := errors.New("count failed")
	fr.countErr = boom
	if _, _, err := s.ListPage(context.Background(), repo.AccessLogFilter{}, 1, 10); !errors.Is(err, boom) {
		t.Fatalf("expected count error, got %v", err)
	}
}

func TestGet_MapsNotFound(t *testing.T) {
	fr := &fakeAccessLogRepo{getErr: repo.ErrNotFound}
	s := NewAccessLogService(&gorm.DB{}, fr)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrAccessLogNotFound) {
		t.Fatalf("expected ErrAccessLogNotFound, got %v", err)
	}

	fr.getErr, fr.getRec = nil, &domain.AccessLog{ID: "x1"}
	rec, err := s.Get(context.Background(), "x1")
	if err != nil || rec.ID != "x1" || fr.getID != "x1" {
		t.Fatalf("Get = %+v, %v", rec, err)
	}
}

func TestStoreDisabled(t *testing.T) {
	s := NewAccessLogService(nil, nil)
	if _, ok := s.Repo.(GormAccessLogRepo); !ok {
		t.Fatalf("nil repo must default to GormAccessLogRepo")
	}
	if _, _, err := s.ListPage(context.Background(), repo.AccessLogFilter{}, 1, 1); !errors.Is(err, ErrStoreDisabled) {
		t.Fatalf("expected ErrStoreDisabled, got %v", err)
	}
	if _, err := s.Get(context.Background(), "x"); !errors.Is(err, ErrStoreDisabled) {
		t.Fatalf("expected ErrStoreDisabled, got %v", err)
	}
}
