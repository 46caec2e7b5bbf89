package handlers

import (
	"context"
	"net/http"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/services"
)

// Admin route paths
const (
	PathCreateUser = "/api/admin/create-user"
	PathDeleteUser = "/api/admin/delete-user"
	PathListUsers  = "/api/admin/list-users"
	PathSendReset  = "/api/admin/send-reset"
)

// SuccessResponse is returned by admin operations without data
type SuccessResponse struct {
	Success bool `json:"success"`
}

// UserRef identifies a created account
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateUserResponse is returned by create-user
type CreateUserResponse struct {
	Success bool    `json:"success"`
	User    UserRef `json:"user"`
}

// ListUsersResponse is returned by list-users
type ListUsersResponse struct {
	Users []models.AccountSummary `json:"users"`
}

// AdminHandler handles the admin user-management endpoints
type AdminHandler struct {
	userAdmin services.UserAdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userAdmin services.UserAdminService) *AdminHandler {
	return &AdminHandler{
		userAdmin: userAdmin,
	}
}

// Endpoints returns the admin endpoints; all of them pass through the gate
func (h *AdminHandler) Endpoints() []*Endpoint {
	return []*Endpoint{
		{Name: "create-user", Path: PathCreateUser, Method: http.MethodPost, Admin: true, Action: h.CreateUser},
		{Name: "delete-user", Path: PathDeleteUser, Method: http.MethodPost, Admin: true, Action: h.DeleteUser},
		{Name: "list-users", Path: PathListUsers, Method: http.MethodGet, Admin: true, Action: h.ListUsers},
		{Name: "send-reset", Path: PathSendReset, Method: http.MethodPost, Admin: true, Action: h.SendReset},
	}
}

// @Summary Create a user
// @Description Create an identity-provider account with a confirmed email
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body services.CreateUserRequest true "Account credentials"
// @Success 200 {object} CreateUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/create-user [post]
func (h *AdminHandler) CreateUser(ctx context.Context, caller *models.AuthorizedCaller, body []byte) (interface{}, error) {
	req := decodeBody[services.CreateUserRequest](body)

	account, err := h.userAdmin.CreateUser(ctx, caller, req)
	if err != nil {
		return nil, err
	}

	return &CreateUserResponse{
		Success: true,
		User:    UserRef{ID: account.ID, Email: account.Email},
	}, nil
}

// @Summary Delete a user
// @Description Delete an account and its admin record. Admins cannot delete themselves.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body services.DeleteUserRequest true "Account to delete"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/delete-user [post]
func (h *AdminHandler) DeleteUser(ctx context.Context, caller *models.AuthorizedCaller, body []byte) (interface{}, error) {
	req := decodeBody[services.DeleteUserRequest](body)

	if err := h.userAdmin.DeleteUser(ctx, caller, req); err != nil {
		return nil, err
	}

	return &SuccessResponse{Success: true}, nil
}

// @Summary List users
// @Description List the first page of accounts (at most 100)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListUsersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/list-users [get]
func (h *AdminHandler) ListUsers(ctx context.Context, caller *models.AuthorizedCaller, _ []byte) (interface{}, error) {
	users, err := h.userAdmin.ListUsers(ctx, caller)
	if err != nil {
		return nil, err
	}

	return &ListUsersResponse{Users: users}, nil
}

// @Summary Send a password reset
// @Description Trigger the identity provider's recovery email
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reset body services.PasswordResetRequest true "Recipient"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 405 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/send-reset [post]
func (h *AdminHandler) SendReset(ctx context.Context, caller *models.AuthorizedCaller, body []byte) (interface{}, error) {
	req := decodeBody[services.PasswordResetRequest](body)

	if err := h.userAdmin.SendPasswordReset(ctx, caller, req); err != nil {
		return nil, err
	}

	return &SuccessResponse{Success: true}, nil
}
