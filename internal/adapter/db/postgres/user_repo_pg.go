package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-console/internal/domain/user"
	apperrors "user-admin-console/pkg/errors"
	"user-admin-console/pkg/security"
)

// UserRepoPG implements the Repository interface using GORM. The same code runs
// against PostgreSQL in production and SQLite locally.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string `gorm:"primaryKey;size:64"`
	FirstName string `gorm:"not null;size:100"`
	LastName  string `gorm:"not null;size:100"`
	Email     string `gorm:"not null;uniqueIndex;size:255"`
	Enabled   bool   `gorm:"not null"`
	Org       string `gorm:"not null;size:32"`
	Role      string `gorm:"not null;size:32"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Enabled:   u.Enabled,
		Org:       string(u.Org),
		Role:      string(u.Role),
	}
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Enabled:   m.Enabled,
		Org:       user.Org(m.Org),
		Role:      user.Role(m.Role),
	}
}

// Create inserts a new user. An empty ID is replaced with a random UUID.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (string, error) {
	if u == nil {
		return "", errors.New("user cannot be nil")
	}

	model := toSchema(u)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return model.ID, nil
}

// Update replaces every column of an existing user.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (string, error) {
	if u == nil {
		return "", errors.New("user cannot be nil")
	}

	model := toSchema(u)

	// Select("*") writes zero values too, so a disabled flag is persisted
	result := r.db.WithContext(ctx).Model(&UserSchema{}).
		Where("id = ?", model.ID).
		Select("*").
		Updates(&model)
	if result.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(result.Error), zap.String("id", u.ID))
		return "", fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("update matched no user", zap.String("id", u.ID))
		return "", apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%s", u.ID))
	}

	r.log.Info("user updated in db", zap.String("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves a user by their identifier.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.String("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%s", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user by email address. It returns nil, nil when no user
// has that address.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// List returns one page of users ordered by name, plus the total number of matches.
// query matches first name, last name or email.
func (r *UserRepoPG) List(ctx context.Context, query string, page, limit int64) ([]user.User, int64, error) {
	search, err := security.ValidateSearchQuery(query)
	if err != nil {
		r.log.Warn("rejected search query", zap.String("query", query), zap.Error(err))
		return nil, 0, fmt.Errorf("invalid search query: %w", err)
	}

	// Count and Find each need a fresh statement
	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&UserSchema{})
		if search == "" {
			return tx
		}
		pattern := "%" + strings.ToLower(security.SanitizeSearchString(search)) + "%"
		return tx.Where(
			`LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err), zap.String("query", search))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var models []UserSchema
	if err := scoped().Order("last_name, first_name, id").
		Offset(int((page - 1) * limit)).
		Limit(int(limit)).
		Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err),
			zap.String("query", search), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, total, nil
}
