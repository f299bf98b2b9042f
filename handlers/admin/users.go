package admin

import (
	"context"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/utils/response"
	"github.com/sahilchouksey/partner-hub/utils/validation"
)

// UserStore is the user-management part of the partnership API.
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	CreateUser(ctx context.Context, nu model.NewUser) (model.User, error)
	UpdateUser(ctx context.Context, id string, uu model.UpdateUser) (model.User, error)
}

// ListUsersRequest represents the query parameters for listing users
type ListUsersRequest struct {
	Role   string `query:"role"`
	Search string `query:"search"`
}

// UserHandler handles user and role management
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new user handler
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// ListUsers retrieves all users, optionally filtered by role or name/email
// GET /api/v1/admin/users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	var req ListUsersRequest
	if err := c.QueryParser(&req); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	users, err := h.store.ListUsers(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}

	search := strings.ToLower(strings.TrimSpace(req.Search))
	filtered := make([]model.User, 0, len(users))
	for _, u := range users {
		if req.Role != "" && !u.HasRole(req.Role) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		filtered = append(filtered, u)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
	})

	return response.Success(c, fiber.Map{
		"users": filtered,
		"total": len(filtered),
	})
}

// GetUser retrieves a single user
// GET /api/v1/admin/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.store.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user)
}

// CreateUser creates a user after local validation
// POST /api/v1/admin/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req model.NewUser
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = validation.SanitizeString(req.Name)
	if len(req.Roles) == 0 {
		req.Roles = []string{model.RoleViewer}
	}

	if fields := validation.Struct(&req); fields != nil {
		return response.ValidationError(c, fields)
	}

	user, err := h.store.CreateUser(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, user)
}

// UpdateUser changes a user's profile, roles or active flag
// PUT /api/v1/admin/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req model.UpdateUser
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == nil && req.Email == nil && req.Roles == nil && req.IsActive == nil {
		return response.BadRequest(c, "No fields to update")
	}
	if fields := validation.Struct(&req); fields != nil {
		return response.ValidationError(c, fields)
	}

	user, err := h.store.UpdateUser(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "User updated successfully", user)
}
