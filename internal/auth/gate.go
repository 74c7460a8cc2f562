package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/hci-users/internal/envelope"
	"github.com/crucial707/hci-users/internal/metrics"
	"github.com/crucial707/hci-users/internal/models"
	"github.com/crucial707/hci-users/internal/users"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrUnauthorized means the request carried no usable credentials.
var ErrUnauthorized = errors.New("unauthorized")

const (
	unauthorizedInfo = "Unauthorized access"
	basicChallenge   = `Basic realm="Authentication Required"`
)

// Gate decides who, if anyone, sent the request. Implementations return ErrUnauthorized
// for missing or bad credentials and any other error for backend failures.
type Gate interface {
	Authenticate(r *http.Request) (*models.User, error)
}

// UserSource is what the gates need from the user store. *users.Service satisfies it.
type UserSource interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// TokenVerifier resolves a token to a user id. *Tokens satisfies it.
type TokenVerifier interface {
	Verify(token string) (int, error)
}

// ==========================
// Basic
// ==========================

// BasicGate accepts HTTP Basic credentials. The username field may hold a token, in which
// case the password is ignored.
type BasicGate struct {
	Users  UserSource
	Tokens TokenVerifier
}

func (g *BasicGate) Authenticate(r *http.Request) (*models.User, error) {
	username, password, ok := r.BasicAuth()
	if !ok || username == "" {
		return nil, ErrUnauthorized
	}

	if g.Tokens != nil {
		user, err := userForToken(r.Context(), g.Users, g.Tokens, username)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
	}

	user, err := g.Users.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// ==========================
// Bearer
// ==========================

// BearerGate accepts "Authorization: Bearer <token>".
type BearerGate struct {
	Users  UserSource
	Tokens TokenVerifier
}

func (g *BearerGate) Authenticate(r *http.Request) (*models.User, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}
	return userForToken(r.Context(), g.Users, g.Tokens, strings.TrimSpace(token))
}

// AnyGate tries each gate in order; the first success wins.
type AnyGate []Gate

func (gs AnyGate) Authenticate(r *http.Request) (*models.User, error) {
	for _, g := range gs {
		user, err := g.Authenticate(r)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
	}
	return nil, ErrUnauthorized
}

func userForToken(ctx context.Context, src UserSource, tokens TokenVerifier, token string) (*models.User, error) {
	id, err := tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := src.GetUser(ctx, id)
	if err != nil {
		// Token for a user that no longer exists.
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// ==========================
// Middleware
// ==========================

// Require rejects requests the gate does not accept with 401 and stores the accepted user in
// the request context.
func Require(gate Gate, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := gate.Authenticate(r)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
				return
			}

			if !errors.Is(err, ErrUnauthorized) {
				logger.Error("authentication backend failure",
					"request_id", chimw.GetReqID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				envelope.Status(w, http.StatusInternalServerError, "internal server error")
				return
			}

			metrics.IncAuthFailures(schemeOf(r))
			logger.Debug("unauthorized request",
				"request_id", chimw.GetReqID(r.Context()),
				"path", r.URL.Path,
			)
			w.Header().Set("WWW-Authenticate", basicChallenge)
			envelope.Status(w, http.StatusUnauthorized, unauthorizedInfo)
		})
	}
}

func schemeOf(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "none"
	}
	scheme, _, _ := strings.Cut(header, " ")
	switch strings.ToLower(scheme) {
	case "basic":
		return "basic"
	case "bearer":
		return "bearer"
	}
	return "other"
}
