package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-admin-console/internal/domain/user"
	"user-admin-console/internal/usecase/user"
	apperrors "user-admin-console/pkg/errors"
	"user-admin-console/pkg/logger"
)

// UserHandler serves the JSON API under /v1/users.
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Enabled   bool   `json:"enabled"`
	Org       string `json:"org" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

// PutUserRequest is the body of PUT /v1/users/:id. Every field is replaced.
type PutUserRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Enabled   bool   `json:"enabled"`
	Org       string `json:"org" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

// UserResponse is the wire form of a user.
type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Enabled   bool   `json:"enabled"`
	Org       string `json:"org"`
	Role      string `json:"role"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Enabled:   u.Enabled,
		Org:       string(u.Org),
		Role:      string(u.Role),
	}
}

// CreateUser handles POST /v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Enabled:   req.Enabled,
		Org:       req.Org,
		Role:      req.Role,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": resp.ID})
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: c.Param("id")})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// PutUser handles PUT /v1/users/:id. The path ID wins; a body ID that differs from
// it is rejected.
func (h *UserHandler) PutUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)
	id := c.Param("id")

	var req PutUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid put user request", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}
	if req.ID != "" && req.ID != id {
		log.Warn("put user id mismatch", zap.String("path_id", id), zap.String("body_id", req.ID))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "body id does not match path id"})
		return
	}

	resp, err := h.uc.PutUser(c.Request.Context(), user.PutUserRequest{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Enabled:   req.Enabled,
		Org:       req.Org,
		Role:      req.Role,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": resp.ID})
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: c.Query("query"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListUsersResponse{Users: users, Pagination: pagination})
}

// pageParams reads page and limit, falling back to the first page of ten.
func pageParams(c *gin.Context) (int64, int64) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}

	return page, limit
}

// handleError maps usecase errors to a status and an error code.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status := apperrors.StatusOf(err)
	code := errorCode(status)

	log := logger.WithContext(c.Request.Context(), h.log)
	if status >= http.StatusInternalServerError {
		log.Error("user api request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, ErrorResponse{Error: code, Message: "An internal error occurred"})
		return
	}

	log.Warn("user api request rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "already_exists"
	default:
		return "internal_error"
	}
}
