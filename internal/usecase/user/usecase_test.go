package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-admin-console/internal/domain/user"
	apperrors "user-admin-console/pkg/errors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	args := m.Called(ctx, query, page, limit)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func setupTestService(t *testing.T) (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	return New(mockRepo, zaptest.NewLogger(t)), mockRepo
}

func loadedUser() *domain.User {
	return &domain.User{
		ID:        "u1",
		FirstName: "Al",
		LastName:  "Bo",
		Email:     "a@b.com",
		Enabled:   false,
		Org:       domain.OrgA,
		Role:      domain.RoleAdmin,
	}
}

func validPut() PutUserRequest {
	return PutUserRequest{
		ID:        "u1",
		FirstName: "Ann",
		LastName:  "Bo",
		Email:     "a@b.com",
		Enabled:   false,
		Org:       "ORG_A",
		Role:      "ADMIN",
	}
}

// ==================== CREATE USER TESTS ====================

func TestCreateUser_Success(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	req := CreateUserRequest{FirstName: "Ann", LastName: "Bo", Email: "ann@example.com", Enabled: true, Org: "ORG_B", Role: "USER"}

	mockRepo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.FirstName == "Ann" && u.Org == domain.OrgB && u.Role == domain.RoleUser && u.Enabled
	})).Return("new-id", nil)

	resp, err := svc.CreateUser(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "new-id", resp.ID)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	req := CreateUserRequest{FirstName: "Ann", LastName: "Bo", Email: "a@b.com", Org: "ORG_A", Role: "ADMIN"}
	mockRepo.On("GetByEmail", ctx, req.Email).Return(loadedUser(), nil)

	resp, err := svc.CreateUser(ctx, req)

	assert.Nil(t, resp)
	var exists *apperrors.AlreadyExistsError
	assert.ErrorAs(t, err, &exists)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_UnknownOrg(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	req := CreateUserRequest{FirstName: "Ann", LastName: "Bo", Email: "a@b.com", Org: "ORG_Z", Role: "ADMIN"}
	_, err := svc.CreateUser(context.Background(), req)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Org must be one of")
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

// ==================== GET USER TESTS ====================

func TestGetUser_Success(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "u1").Return(loadedUser(), nil)

	resp, err := svc.GetUser(ctx, GetUserRequest{ID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, *loadedUser(), resp.User)
}

func TestGetUser_EmptyID(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	_, err := svc.GetUser(context.Background(), GetUserRequest{ID: "  "})

	assert.True(t, apperrors.IsValidation(err))
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetUser_NotFound(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.NewNotFoundError("user", "user not found: id=missing"))

	_, err := svc.GetUser(ctx, GetUserRequest{ID: "missing"})

	assert.True(t, apperrors.IsNotFound(err))
}

// ==================== PUT USER TESTS ====================

func TestPutUser_ReplacesEveryField(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "u1").Return(loadedUser(), nil)
	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(loadedUser(), nil)
	mockRepo.On("Update", ctx, &domain.User{
		ID:        "u1",
		FirstName: "Ann",
		LastName:  "Bo",
		Email:     "a@b.com",
		Enabled:   false,
		Org:       domain.OrgA,
		Role:      domain.RoleAdmin,
	}).Return("u1", nil)

	resp, err := svc.PutUser(ctx, validPut())

	require.NoError(t, err)
	assert.Equal(t, "u1", resp.ID)
	mockRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestPutUser_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PutUserRequest)
		errMsg string
	}{
		{"first name too short", func(r *PutUserRequest) { r.FirstName = "A" }, "FirstName must have at least 2 characters"},
		{"last name empty", func(r *PutUserRequest) { r.LastName = "" }, "LastName must have at least 2 characters"},
		{"missing id", func(r *PutUserRequest) { r.ID = "" }, "ID is required"},
		{"bad email", func(r *PutUserRequest) { r.Email = "nope" }, "Email must be a valid email"},
		{"unknown role", func(r *PutUserRequest) { r.Role = "ROOT" }, "Role must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo := setupTestService(t)
			req := validPut()
			tt.mutate(&req)

			_, err := svc.PutUser(context.Background(), req)

			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.errMsg)
			mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestPutUser_NotFound(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "u1").Return(nil, apperrors.NewNotFoundError("user", "user not found: id=u1"))

	_, err := svc.PutUser(ctx, validPut())

	assert.True(t, apperrors.IsNotFound(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPutUser_EmailTakenByAnotherUser(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	other := loadedUser()
	other.ID = "u2"
	mockRepo.On("GetByID", ctx, "u1").Return(loadedUser(), nil)
	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(other, nil)

	_, err := svc.PutUser(ctx, validPut())

	assert.Equal(t, 409, apperrors.StatusOf(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPutUser_RepositoryError(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, "u1").Return(loadedUser(), nil)
	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Update", ctx, mock.Anything).Return("", errors.New("connection reset"))

	_, err := svc.PutUser(ctx, validPut())

	assert.EqualError(t, err, "connection reset")
}

// ==================== LIST USERS TESTS ====================

func TestListUsers_DefaultsAndPagination(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	users := []domain.User{*loadedUser()}
	mockRepo.On("List", ctx, "", int64(1), int64(10)).Return(users, int64(21), nil)

	resp, err := svc.ListUsers(ctx, ListUsersRequest{})

	require.NoError(t, err)
	assert.Equal(t, users, resp.Users)
	assert.Equal(t, int64(3), resp.Pagination.TotalPages)
	assert.Equal(t, int64(1), resp.Pagination.Page)
}

func TestListUsers_LimitCapped(t *testing.T) {
	svc, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, "ann", int64(2), int64(100)).Return([]domain.User{}, int64(0), nil)

	_, err := svc.ListUsers(ctx, ListUsersRequest{Query: " ann ", Page: 2, Limit: 500})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListUsers_RejectsInjection(t *testing.T) {
	svc, mockRepo := setupTestService(t)

	_, err := svc.ListUsers(context.Background(), ListUsersRequest{Query: "ann OR 1=1"})

	assert.True(t, apperrors.IsValidation(err))
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
