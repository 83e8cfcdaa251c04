// Governance HTTP handlers.
//
// This file exposes read-only endpoints over the governance state:
//   - GET /versions/1    (registered API versions per prefix)
//   - GET /accesslogs/1  (persisted access logs, paginated and filtered)
//   - GET /accesslog/1   (one access log by id)
//
// They are plain controllers: the route walker registers their versions and
// overload limits like any other controller's.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-http-governance/internal/domain"
	"github.com/tbourn/go-http-governance/internal/repo"
	"github.com/tbourn/go-http-governance/internal/routes"
	"github.com/tbourn/go-http-governance/internal/utils"
)

//
// Collaborator contracts
//

// VersionLister exposes the version registry.
type VersionLister interface {
	Snapshot() map[string][]int
	Latest(prefix string) (int, bool)
}

// AccessLogReader queries persisted access logs.
type AccessLogReader interface {
	ListPage(ctx context.Context, f repo.AccessLogFilter, page, pageSize int) ([]domain.AccessLog, int64, error)
	Get(ctx context.Context, id string) (*domain.AccessLog, error)
}

//
// DTOs
//

// VersionsResponse lists registered versions keyed by controller prefix,
// with the highest version of each prefix in Latest.
type VersionsResponse struct {
	Versions map[string][]int `json:"versions"`
	Latest   map[string]int   `json:"latest"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListAccessLogsResponse wraps a page of access logs.
type ListAccessLogsResponse struct {
	AccessLogs []domain.AccessLog `json:"access_logs"`
	Pagination Pagination         `json:"pagination"`
}

// AccessLogQuery holds the list filters.
type AccessLogQuery struct {
	Path      string    `form:"path"`
	UserID    string    `form:"user_id"`
	ErrorCode int       `form:"error_code"`
	Failed    bool      `form:"failed"`
	Since     time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
}

// AccessLogIDQuery selects one access log.
type AccessLogIDQuery struct {
	ID string `form:"id" binding:"required"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	return utils.NormalizePage(page, pageSize, defaultPageSize, maxPageSize)
}

// chain prepends the non-nil guards to h.
func chain(h gin.HandlerFunc, guards ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	for _, g := range guards {
		if g != nil {
			out = append(out, g)
		}
	}
	return append(out, h)
}

//
// Controllers
//

// VersionsController serves the version registry.
type VersionsController struct {
	Versions VersionLister
	Overload *routes.OverloadSpec
}

func (VersionsController) Prefix() string { return "/versions" }

func (v VersionsController) Routes() []routes.Route {
	return []routes.Route{
		{Method: http.MethodGet, Path: "/1", Handlers: chain(v.List), Overload: v.Overload},
	}
}

// List godoc
// @ID          listVersions
// @Summary     List registered API versions
// @Description Returns every version registered by the route walker, keyed by controller prefix.
// @Tags        Governance
// @Produce     json
// @Success     200  {object}  handlers.VersionsResponse
// @Failure     200  {object}  handlers.ErrorResponse  "Failure (in-band error code)"
// @Router      /versions/1 [get]
func (v VersionsController) List(c *gin.Context) {
	resp := VersionsResponse{Versions: map[string][]int{}, Latest: map[string]int{}}
	if v.Versions != nil {
		resp.Versions = v.Versions.Snapshot()
		for prefix := range resp.Versions {
			if n, found := v.Versions.Latest(prefix); found {
				resp.Latest[prefix] = n
			}
		}
	}
	ok(c, resp)
}

// AccessLogsController serves the access log listing.
type AccessLogsController struct {
	Logs     AccessLogReader
	Auth     gin.HandlerFunc
	Overload *routes.OverloadSpec
}

func (AccessLogsController) Prefix() string { return "/accesslogs" }

func (a AccessLogsController) Routes() []routes.Route {
	return []routes.Route{
		{Method: http.MethodGet, Path: "/1", Handlers: chain(a.List, a.Auth), Overload: a.Overload},
	}
}

// List godoc
// @ID          listAccessLogs
// @Summary     List access logs (paginated)
// @Description Returns a page of persisted access logs, newest first.
// @Tags        Governance
// @Produce     json
//
// @Param       X-User-ID   header  string  true  "Caller identity"  example(ops-1)
// @Param       page        query   int     false "Page number"      minimum(1) default(1)
// @Param       page_size   query   int     false "Items per page"   minimum(1) maximum(100) default(20)
// @Param       path        query   string  false "Request path"     example(/user/2)
// @Param       user_id     query   string  false "Authenticated user"
// @Param       error_code  query   int     false "Classified error code"  example(1001)
// @Param       failed      query   bool    false "Only failed requests"
// @Param       since       query   string  false "RFC 3339 lower bound on access time"
//
// @Success     200  {object}  handlers.ListAccessLogsResponse
// @Failure     200  {object}  handlers.ErrorResponse  "Failure (in-band error code)"
// @Router      /accesslogs/1 [get]
func (a AccessLogsController) List(c *gin.Context) {
	var q AccessLogQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	page, pageSize := clampPagination(c)

	f := repo.AccessLogFilter{
		Path:       q.Path,
		UserID:     q.UserID,
		ErrorCode:  q.ErrorCode,
		OnlyFailed: q.Failed,
		Since:      q.Since,
	}
	items, total, err := a.Logs.ListPage(c.Request.Context(), f, page, pageSize)
	if err != nil {
		fail(c, serviceFault(err))
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, ListAccessLogsResponse{
		AccessLogs: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// AccessLogController serves single access log lookups.
type AccessLogController struct {
	Logs     AccessLogReader
	Auth     gin.HandlerFunc
	Overload *routes.OverloadSpec
}

func (AccessLogController) Prefix() string { return "/accesslog" }

func (a AccessLogController) Routes() []routes.Route {
	return []routes.Route{
		{Method: http.MethodGet, Path: "/1", Handlers: chain(a.Get, a.Auth), Overload: a.Overload},
	}
}

// Get godoc
// @ID          getAccessLog
// @Summary     Get one access log
// @Tags        Governance
// @Produce     json
// @Param       X-User-ID  header  string  true  "Caller identity"  example(ops-1)
// @Param       id         query   string  true  "Access log ID (UUID)"  format(uuid)
// @Success     200  {object}  domain.AccessLog
// @Failure     200  {object}  handlers.ErrorResponse  "Failure (in-band error code)"
// @Router      /accesslog/1 [get]
func (a AccessLogController) Get(c *gin.Context) {
	var q AccessLogIDQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}
	rec, err := a.Logs.Get(c.Request.Context(), q.ID)
	if err != nil {
		fail(c, serviceFault(err))
		return
	}
	ok(c, rec)
}
