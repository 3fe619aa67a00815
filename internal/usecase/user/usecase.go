package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-admin-console/internal/domain/user"
	apperrors "user-admin-console/pkg/errors"
	"user-admin-console/pkg/logger"
	"user-admin-console/pkg/security"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Repository defines the interface for user data access operations.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (string, error)                              // Create a new user
	GetByID(ctx context.Context, id string) (*domain.User, error)                            // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)                      // Retrieve user by email, nil if absent
	Update(ctx context.Context, u *domain.User) (string, error)                              // Replace an existing user
	List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) // List users with pagination and search
}

// Service implements Usecase on top of a Repository.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a Service. Caching, if any, lives in the repository.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: NewValidator()}
}

// NewValidator returns a validator that also understands the "org" and "role" tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("org", func(fl validator.FieldLevel) bool {
		return domain.Org(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	return v
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must have at least %s characters", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must have at most %s characters", e.Field(), e.Param()))
		case "org":
			messages = append(messages, fmt.Sprintf("%s must be one of %v", e.Field(), domain.Orgs()))
		case "role":
			messages = append(messages, fmt.Sprintf("%s must be one of %v", e.Field(), domain.Roles()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	field := ""
	if len(validationErrors) == 1 {
		field = validationErrors[0].Field()
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}

// CreateUser creates a new user after validating the request and checking email uniqueness.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating user", zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("create user validation failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Enabled:   in.Enabled,
		Org:       domain.Org(in.Org),
		Role:      domain.Role(in.Role),
	})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return &CreateUserResponse{ID: id}, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		s.log.Warn("get user validation failed", zap.String("reason", "empty id"))
		return nil, apperrors.NewValidationError("ID", "user id is required")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("failed to get user", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &GetUserResponse{User: *u}, nil
}

// PutUser replaces every field of an existing user. The email must not belong to
// another user.
func (s *Service) PutUser(ctx context.Context, in PutUserRequest) (*PutUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("replacing user", zap.String("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("put user validation failed", zap.String("id", in.ID), zap.Error(err))
		return nil, formatValidationError(err)
	}

	if _, err := s.repo.GetByID(ctx, in.ID); err != nil {
		log.Warn("put user target lookup failed", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, in.Email, in.ID); err != nil {
		return nil, err
	}

	id, err := s.repo.Update(ctx, &domain.User{
		ID:        in.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Enabled:   in.Enabled,
		Org:       domain.Org(in.Org),
		Role:      domain.Role(in.Role),
	})
	if err != nil {
		log.Error("failed to replace user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &PutUserResponse{ID: id}, nil
}

// ensureEmailFree fails when email belongs to a user other than selfID.
func (s *Service) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.log.Error("failed to check existing email", zap.String("email", email), zap.Error(err))
		return apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil && existing.ID != selfID {
		s.log.Warn("email already exists", zap.String("email", email), zap.String("existing_id", existing.ID))
		return apperrors.NewAlreadyExistsError("user", "email already exists")
	}
	return nil
}

// ListUsers retrieves a page of users, optionally filtered by a search query.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		s.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, apperrors.NewValidationError("query", err.Error())
	}

	users, total, err := s.repo.List(ctx, query, in.Page, in.Limit)
	if err != nil {
		s.log.Error("failed to list users",
			zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit), zap.Error(err))
		return nil, err
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: domain.NewPagination(total, in.Page, in.Limit),
	}, nil
}
