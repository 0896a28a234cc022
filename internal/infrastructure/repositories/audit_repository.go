package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/audit"
	"github.com/booknest/catalog-service/internal/core/ports"
	"github.com/booknest/catalog-service/internal/infrastructure/db"
)

const auditColumns = `id, subject, action, resource, resource_id, details, ip_address, user_agent, timestamp`

type auditRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewAuditRepository creates a new instance of AuditRepository
func NewAuditRepository(database *db.Database, logger *logrus.Logger) ports.AuditRepository {
	return &auditRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a new audit log entry into the database
func (r *auditRepository) Create(ctx context.Context, log *audit.AuditLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}

	var detailsJSON []byte
	if log.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(log.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
	}

	query := `INSERT INTO audit_logs (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.DB.ExecContext(ctx, query,
		log.ID,
		log.Subject,
		log.Action,
		log.Resource,
		log.ResourceID,
		detailsJSON,
		log.IPAddress,
		log.UserAgent,
		log.Timestamp,
	)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"subject": log.Subject, "action": log.Action}).WithError(err).Error("db: failed to insert audit log")
		}
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// List retrieves audit logs based on the provided filter, newest first
func (r *auditRepository) List(ctx context.Context, filter *audit.AuditLogFilter) ([]*audit.AuditLog, error) {
	query, args := buildAuditQuery(filter, false)
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"query": query, "args": args}).Debug("db: executing audit list query")
	}
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*audit.AuditLog, 0)
	for rows.Next() {
		log := &audit.AuditLog{}
		var detailsJSON sql.NullString

		if err := rows.Scan(
			&log.ID,
			&log.Subject,
			&log.Action,
			&log.Resource,
			&log.ResourceID,
			&detailsJSON,
			&log.IPAddress,
			&log.UserAgent,
			&log.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		if detailsJSON.Valid && detailsJSON.String != "" {
			var details any
			if err := json.Unmarshal([]byte(detailsJSON.String), &details); err == nil {
				log.Details = details
			}
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}
	return logs, nil
}

// Count returns the total number of audit logs matching the filter
func (r *auditRepository) Count(ctx context.Context, filter *audit.AuditLogFilter) (int, error) {
	query, args := buildAuditQuery(filter, true)

	var count int
	if err := r.db.DB.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}

// buildAuditQuery constructs the list or count query for filter. Paging is
// applied to list queries only.
func buildAuditQuery(filter *audit.AuditLogFilter, isCount bool) (string, []any) {
	query := "SELECT " + auditColumns + " FROM audit_logs"
	if isCount {
		query = "SELECT COUNT(*) FROM audit_logs"
	}

	var conditions []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, cond+" $"+strconv.Itoa(len(args)))
	}

	if filter != nil {
		if filter.Subject != nil {
			add("subject =", *filter.Subject)
		}
		if filter.Action != nil {
			add("action =", string(*filter.Action))
		}
		if filter.Resource != nil {
			add("resource =", string(*filter.Resource))
		}
		if filter.ResourceID != nil {
			add("resource_id =", *filter.ResourceID)
		}
		if filter.StartTime != nil {
			add("timestamp >=", *filter.StartTime)
		}
		if filter.EndTime != nil {
			add("timestamp <=", *filter.EndTime)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if !isCount {
		query += " ORDER BY timestamp DESC, id"
		if filter != nil {
			if filter.Limit > 0 {
				args = append(args, filter.Limit)
				query += " LIMIT $" + strconv.Itoa(len(args))
			}
			if filter.Offset > 0 {
				args = append(args, filter.Offset)
				query += " OFFSET $" + strconv.Itoa(len(args))
			}
		}
	}

	return query, args
}
