package repo

import (
	"context"
	"database/sql"
)

// Audit actions and resource types recorded by the API.
const (
	AuditActionCreate     = "create"
	AuditActionIssueToken = "issue_token"

	AuditResourceUser  = "user"
	AuditResourceToken = "token"
)

// AuditRepo persists audit log entries.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Log records an audit entry. userID is 0 for anonymous requests (e.g. sign-up).
func (r *AuditRepo) Log(ctx context.Context, userID int, action, resourceType string, resourceID int, details string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, action, resource_type, resource_id, details) VALUES ($1, $2, $3, $4, $5)`,
		userID, action, resourceType, resourceID, details,
	)
	return err
}
