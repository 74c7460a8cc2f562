package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crucial707/hci-users/internal/models"
	"github.com/go-chi/chi/v5"
)

// requestWithChiURLParams builds a request with chi URL params set (for handlers that use chi.URLParam).
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// fakeUsers is a UserControl backed by a map.
type fakeUsers struct {
	users map[int]*models.User

	listErr   error
	getErr    error
	createErr error
	createdID int

	gotUsername string
	gotPassword string
	createCalls int
}

func (f *fakeUsers) ListUsers(ctx context.Context) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.User
	for id := 1; id <= len(f.users); id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) GetUser(ctx context.Context, id int) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errUserNotFound
}

func (f *fakeUsers) CreateUser(ctx context.Context, username, password string) (int, error) {
	f.createCalls++
	f.gotUsername, f.gotPassword = username, password
	if f.createErr != nil {
		return 0, f.createErr
	}
	return f.createdID, nil
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}
