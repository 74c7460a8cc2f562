package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/crucial707/hci-users/internal/auth"
	"github.com/crucial707/hci-users/internal/envelope"
	"github.com/crucial707/hci-users/internal/metrics"
	"github.com/crucial707/hci-users/internal/models"
	"github.com/crucial707/hci-users/internal/repo"
)

// TokenIssuer generates a token for a user. *auth.Tokens satisfies it.
type TokenIssuer interface {
	Generate(user *models.User) (string, error)
}

// ==========================
// TokenHandler
// ==========================
type TokenHandler struct {
	Tokens    TokenIssuer
	AuditRepo *repo.AuditRepo
	Logger    *slog.Logger
}

// IssueToken returns a token for the user the auth gate accepted.
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return errors.New("issue token: no authenticated user in request context")
	}

	token, err := h.Tokens.Generate(user)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	metrics.IncTokensIssued()

	if h.AuditRepo != nil {
		if err := h.AuditRepo.Log(r.Context(), user.ID, repo.AuditActionIssueToken, repo.AuditResourceToken, user.ID, ""); err != nil {
			logger := h.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("audit log failed", "action", repo.AuditActionIssueToken, "error", err)
		}
	}

	envelope.Write(w, envelope.Envelope{StatusCode: http.StatusOK, Token: token})
	return nil
}
