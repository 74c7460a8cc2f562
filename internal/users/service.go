package users

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/crucial707/hci-users/internal/metrics"
	"github.com/crucial707/hci-users/internal/models"
	"github.com/crucial707/hci-users/internal/repo"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence the service needs. *repo.UserRepo satisfies it.
type Store interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// unknownUserPassword is hashed once per service and checked when a username does not exist.
const unknownUserPassword = "unknown-user-password"

var compareHash = bcrypt.CompareHashAndPassword

// credentials is validated before a user is created.
type credentials struct {
	Username string `validate:"required,max=150"`
	Password string `validate:"required"`
}

// Service implements user listing, lookup, creation and password checks.
type Service struct {
	store    Store
	validate *validator.Validate
	logger   *slog.Logger

	// HashCost is the bcrypt cost for new passwords.
	HashCost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		validate: validator.New(),
		logger:   logger,
		HashCost: bcrypt.DefaultCost,
	}
}

// ListUsers returns every user ordered by id. The slice is never nil.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, unspecified("list users", err)
	}
	if list == nil {
		list = []models.User{}
	}
	return list, nil
}

func (s *Service) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unspecified("get user", err)
	}
	return user, nil
}

// CreateUser stores a new user with a bcrypt hash of password and returns its id.
func (s *Service) CreateUser(ctx context.Context, username, password string) (int, error) {
	if err := s.validate.Struct(credentials{Username: username, Password: password}); err != nil {
		return 0, credentialsError(err)
	}
	if len(password) > maxPasswordBytes {
		return 0, ErrCredentialsTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return 0, unspecified("hash password", err)
	}

	user, err := s.store.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return 0, ErrUserAlreadyExists
		}
		return 0, unspecified("create user", err)
	}

	metrics.IncUsersCreated()
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username)
	return user.ID, nil
}

// Authenticate checks username and password. Unknown users and wrong passwords both
// return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			compareHash(s.unknownUserHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, unspecified("get user by username", err)
	}
	if err := compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) unknownUserHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(unknownUserPassword), s.HashCost)
		if err != nil {
			s.logger.Error("hash unknown-user password", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// credentialsError maps a validation failure to ErrCredentialsTooLong when only a
// length limit failed, and to ErrInvalidArguments otherwise.
func credentialsError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return ErrInvalidArguments
	}
	for _, fe := range fields {
		if fe.Tag() != "max" {
			return ErrInvalidArguments
		}
	}
	return ErrCredentialsTooLong
}
