package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crucial707/hci-users/internal/models"
	"github.com/crucial707/hci-users/internal/users"
)

// fakeUsers knows a single user "alice" with password "pw".
type fakeUsers struct {
	err error
}

var alice = &models.User{ID: 1, Username: "alice"}

func (f *fakeUsers) GetUser(ctx context.Context, id int) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id == alice.ID {
		return alice, nil
	}
	return nil, users.ErrUserNotFound
}

func (f *fakeUsers) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if username == "alice" && password == "pw" {
		return alice, nil
	}
	return nil, users.ErrInvalidCredentials
}

func newGates(src UserSource) (*Tokens, Gate) {
	tokens := NewTokens([]byte("gate-secret"), time.Hour)
	gate := AnyGate{
		&BearerGate{Users: src, Tokens: tokens},
		&BasicGate{Users: src, Tokens: tokens},
	}
	return tokens, gate
}

func protected(gate Gate) http.Handler {
	return Require(gate, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user", http.StatusTeapot)
			return
		}
		w.Write([]byte(user.Username))
	}))
}

func TestRequire_Accepts(t *testing.T) {
	tokens, gate := newGates(&fakeUsers{})
	token, err := tokens.Generate(alice)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"basic password", func(r *http.Request) { r.SetBasicAuth("alice", "pw") }},
		{"basic token in username", func(r *http.Request) { r.SetBasicAuth(token, "ignored") }},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/token", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			protected(gate).ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
			}
			if rr.Body.String() != "alice" {
				t.Errorf("body: got %q, want alice", rr.Body.String())
			}
		})
	}
}

func TestRequire_Rejects(t *testing.T) {
	_, gate := newGates(&fakeUsers{})
	foreign, _ := NewTokens([]byte("other"), time.Hour).Generate(alice)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no header", func(r *http.Request) {}},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("alice", "nope") }},
		{"unknown user", func(r *http.Request) { r.SetBasicAuth("bob", "pw") }},
		{"foreign token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) }},
		{"empty bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/token", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			protected(gate).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401", rr.Code)
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != basicChallenge {
				t.Errorf("WWW-Authenticate: got %q", got)
			}
			var body map[string]any
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status_code"] != float64(401) || body["info"] != unauthorizedInfo {
				t.Errorf("unexpected body: %v", body)
			}
		})
	}
}

func TestRequire_TokenForDeletedUser(t *testing.T) {
	tokens, gate := newGates(&fakeUsers{})
	token, _ := tokens.Generate(&models.User{ID: 99, Username: "ghost"})

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protected(gate).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestRequire_BackendFailure(t *testing.T) {
	src := &fakeUsers{err: errors.New("db down")}
	_, gate := newGates(src)

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.SetBasicAuth("alice", "pw")
	rr := httptest.NewRecorder()
	protected(gate).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("expected no user in empty context")
	}
}
