package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/hci-users/internal/auth"
	"github.com/crucial707/hci-users/internal/envelope"
	"github.com/crucial707/hci-users/internal/models"
	"github.com/crucial707/hci-users/internal/repo"
	"github.com/crucial707/hci-users/internal/users"
	"github.com/crucial707/hci-users/internal/views"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UserControl is the user-control collaborator. *users.Service satisfies it.
type UserControl interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	CreateUser(ctx context.Context, username, password string) (int, error)
}

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Users     UserControl
	AuditRepo *repo.AuditRepo
	Views     *views.Renderer
	Logger    *slog.Logger

	// ExposeErrors puts backend error messages in 500 responses.
	ExposeErrors bool
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// backendFailure answers 500 for an UnspecifiedError from the collaborator.
func (h *UserHandler) backendFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().Error("user backend failure", "path", r.URL.Path, "error", err)
	envelope.Write(w, envelope.Envelope{
		StatusCode: http.StatusInternalServerError,
		Info:       internalMessage(err, h.ExposeErrors),
	})
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) error {
	id, ok := userID(r)
	if !ok {
		envelope.Write(w, envelope.Envelope{StatusCode: http.StatusNotFound})
		return nil
	}

	user, err := h.Users.GetUser(r.Context(), id)
	switch {
	case err == nil:
		envelope.Write(w, envelope.Envelope{StatusCode: http.StatusOK, Data: user})
		return nil
	case errors.Is(err, users.ErrUserNotFound):
		envelope.Write(w, envelope.Envelope{StatusCode: http.StatusNotFound})
		return nil
	case users.IsUnspecified(err):
		h.backendFailure(w, r, err)
		return nil
	}
	return err
}

// ==========================
// Create User
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	input, err := decodeCreateUser(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			JSONError(w, MsgRequestBodyTooLarge, http.StatusRequestEntityTooLarge)
			return nil
		}
		JSONError(w, MsgJSONNotProvided, http.StatusBadRequest)
		return nil
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, MsgCredentialsMissing, http.StatusBadRequest)
		return nil
	}

	id, err := h.Users.CreateUser(r.Context(), input.Username, input.Password)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrCredentialsTooLong):
		JSONError(w, MsgCredentialsTooLong, http.StatusBadRequest)
		return nil
	case errors.Is(err, users.ErrInvalidArguments):
		JSONError(w, MsgCredentialsMissing, http.StatusBadRequest)
		return nil
	case errors.Is(err, users.ErrUserAlreadyExists):
		JSONError(w, MsgUserAlreadyExists, http.StatusBadRequest)
		return nil
	case users.IsUnspecified(err):
		h.backendFailure(w, r, err)
		return nil
	default:
		return err
	}

	if h.AuditRepo != nil {
		if err := h.AuditRepo.Log(r.Context(), 0, repo.AuditActionCreate, repo.AuditResourceUser, id, input.Username); err != nil {
			h.logger().Warn("audit log failed", "action", repo.AuditActionCreate, "error", err)
		}
	}

	envelope.Write(w, envelope.Envelope{StatusCode: http.StatusOK, ID: id})
	return nil
}

// decodeCreateUser accepts a single JSON object sent as application/json (or a +json type).
func decodeCreateUser(r *http.Request) (*createUserRequest, error) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	if mt != "application/json" && !strings.HasSuffix(mt, "+json") {
		return nil, errors.New("content type is not JSON")
	}

	var input *createUserRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&input); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, errors.New("body is null")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	return input, nil
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	list, err := h.Users.ListUsers(r.Context())
	if err != nil {
		if users.IsUnspecified(err) {
			h.backendFailure(w, r, err)
			return nil
		}
		return err
	}
	if list == nil {
		list = []models.User{}
	}
	envelope.Write(w, envelope.Envelope{StatusCode: http.StatusOK, Data: list})
	return nil
}

// ==========================
// HTML pages
// ==========================

// ListUsersPage renders the user listing. Failures go to the error translator.
func (h *UserHandler) ListUsersPage(w http.ResponseWriter, r *http.Request) error {
	list, err := h.Users.ListUsers(r.Context())
	if err != nil {
		return err
	}
	viewer, _ := auth.UserFromContext(r.Context())
	return h.Views.Render(w, views.UserListing, views.ListingData{Viewer: viewer, Users: list})
}

// UserDetailPage renders one user. A failed lookup, including an unknown id, is not mapped
// here and goes to the error translator.
func (h *UserHandler) UserDetailPage(w http.ResponseWriter, r *http.Request) error {
	id, ok := userID(r)
	if !ok {
		http.NotFound(w, r)
		return nil
	}
	user, err := h.Users.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	viewer, _ := auth.UserFromContext(r.Context())
	return h.Views.Render(w, views.UserDetail, views.DetailData{Viewer: viewer, User: user})
}

// userID parses the {id} URL parameter. Only positive integers are ids.
func userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
