package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/audit"
	"github.com/booknest/catalog-service/internal/infrastructure/httpserver/helpers"
)

// GET /api/v1/admin/audit
func (s *Server) getAuditLogs(c echo.Context) error {
	if s.audit == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "audit log is disabled")
	}
	var filter audit.AuditLogFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid audit filter")
	}
	logs, total, err := s.audit.GetAuditLogs(c.Request().Context(), &filter)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("failed to list audit logs")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audit logs")
	}
	return c.JSON(http.StatusOK, map[string]any{"logs": logs, "total": total})
}

// recordAudit persists an admin action. A failure is logged and never fails
// the request that already succeeded.
func (s *Server) recordAudit(c echo.Context, action audit.AuditAction, resource audit.AuditResource, resourceID string, details any) {
	if s.audit == nil {
		return
	}
	sub, _ := helpers.GetSubjectRaw(c)
	req := &audit.CreateAuditLogRequest{
		Subject:    sub,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	}
	if err := s.audit.LogAction(c.Request().Context(), req); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"action": action, "resource": resource, "resource_id": resourceID}).WithError(err).Warn("audit log not recorded")
	}
}
