// Package routes implements start-up route discovery: it walks the routes a
// controller declares, registers the API versions they expose and the
// admission-control limits they carry, and mounts them on a gin router.
//
// Controllers describe their routes as plain data (Route values) rather than
// relying on reflection. A route's Path is a single version fragment such as
// "/2"; the controller's Prefix is shared by all of its routes.
package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// OverloadSpec declares an admission-control limit: at most Threshold
// requests per Window on the route's versioned path.
type OverloadSpec struct {
	Threshold int
	Window    time.Duration
}

// Route is one declared handler of a controller.
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
	Overload *OverloadSpec
}

// Controller exposes the route metadata of one group of handlers.
type Controller interface {
	// Prefix is the path shared by every route of the controller; it may be empty.
	Prefix() string
	// Routes lists the declared handlers.
	Routes() []Route
}

// VersionRegistry records which API versions a prefix exposes.
type VersionRegistry interface {
	Register(prefix string, version int)
}

// OverloadRegistry records admission-control limits per versioned path.
type OverloadRegistry interface {
	Register(fullPath string, threshold int, window time.Duration)
}

// Walker registers controller metadata with the version and overload
// registries. It is used once per controller during start-up, before the
// server accepts traffic, and is not safe for concurrent use.
type Walker struct {
	Versions  VersionRegistry
	Overloads OverloadRegistry

	roots map[string]bool
}

// NewWalker returns a Walker bound to the given registries.
func NewWalker(versions VersionRegistry, overloads OverloadRegistry) *Walker {
	return &Walker{Versions: versions, Overloads: overloads}
}

// Walk registers every versioned route of c. Routes whose path is empty or
// consists only of separators are skipped; fragments that do not parse as a
// non-negative integer register version 0. Walk never fails.
func (w *Walker) Walk(c Controller) {
	prefix := c.Prefix()
	for _, r := range c.Routes() {
		num, ok := Version(r.Path)
		if !ok {
			continue
		}
		if w.Versions != nil {
			w.Versions.Register(prefix, num)
		}
		full := FullPath(prefix, num)
		log.Debug().Str("prefix", prefix).Int("version", num).Msg("version registered")

		if r.Overload != nil && w.Overloads != nil {
			w.Overloads.Register(full, r.Overload.Threshold, r.Overload.Window)
			log.Debug().
				Str("path", full).
				Int("threshold", r.Overload.Threshold).
				Dur("window", r.Overload.Window).
				Msg("overload registered")
		}
	}
}

// Mount walks c and attaches its routes to r under c.Prefix(). A non-empty
// prefix also answers GET <prefix>/ with a JSON null (once per prefix), so a
// bare prefix never falls through to the no-route handler. Extra middleware
// mw runs before each route's own handlers.
func (w *Walker) Mount(r gin.IRouter, c Controller, mw ...gin.HandlerFunc) *gin.RouterGroup {
	w.Walk(c)

	g := r.Group(c.Prefix(), mw...)
	if root := strings.Trim(c.Prefix(), "/"); root != "" && !w.roots[root] {
		if w.roots == nil {
			w.roots = make(map[string]bool)
		}
		w.roots[root] = true
		g.GET("/", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, nil) })
	}
	for _, rt := range c.Routes() {
		if rt.Method == "" || strings.Trim(rt.Path, "/") == "" {
			continue
		}
		g.Handle(rt.Method, rt.Path, rt.Handlers...)
	}
	return g
}

// Version extracts the API version from a route path fragment. ok is false
// when nothing remains after removing every '/'. Non-numeric or negative
// remainders yield version 0.
func Version(path string) (num int, ok bool) {
	s := strings.ReplaceAll(path, "/", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, true
	}
	return n, true
}

// FullPath joins prefix and version with exactly one '/' between them.
func FullPath(prefix string, version int) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + strconv.Itoa(version)
}
