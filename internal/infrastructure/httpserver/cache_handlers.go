package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/audit"
	"github.com/booknest/catalog-service/internal/core/ports"
	"github.com/booknest/catalog-service/internal/infrastructure/httpserver/helpers"
)

type cacheSnapshotResponse struct {
	Entries int                    `json:"entries"`
	Items   []ports.CacheEntryInfo `json:"items"`
}

// GET /api/v1/admin/cache
func (s *Server) getCacheSnapshot(c echo.Context) error {
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "list cache is disabled")
	}
	items := s.cache.Snapshot()
	return c.JSON(http.StatusOK, cacheSnapshotResponse{Entries: len(items), Items: items})
}

// DELETE /api/v1/admin/cache?key=...
func (s *Server) invalidateCacheKey(c echo.Context) error {
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "list cache is disabled")
	}
	key := c.QueryParam("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}
	s.cache.Invalidate(key)
	s.recordAudit(c, audit.ActionInvalidate, audit.ResourceListCache, key, nil)

	if s.logger != nil {
		sub, _ := helpers.GetSubjectRaw(c)
		s.logger.WithFields(logrus.Fields{"key": key, "subject": sub}).Info("list cache key invalidated")
	}
	return c.NoContent(http.StatusNoContent)
}
