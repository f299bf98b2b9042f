package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sahilchouksey/partner-hub/model"
)

// ResetPassword forwards a password reset.
// POST /auth/reset-password
func (c *Client) ResetPassword(ctx context.Context, req model.ResetPassword) error {
	if err := c.doRequest(ctx, http.MethodPost, "/auth/reset-password", nil, req, nil); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// ListUsers fetches all dashboard users.
// GET /users
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/users", nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	// the API has answered both with a bare array and with {"users": [...]}
	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		var list model.UserList
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode users: %w", err)
		}
		users = list.Users
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// GetUser fetches one user.
// GET /users/:id
func (c *Client) GetUser(ctx context.Context, id string) (model.User, error) {
	return c.userRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil)
}

// CreateUser creates a user.
// POST /users
func (c *Client) CreateUser(ctx context.Context, nu model.NewUser) (model.User, error) {
	return c.userRequest(ctx, http.MethodPost, "/users", nu)
}

// UpdateUser updates a user's profile, roles or active flag.
// PUT /users/:id
func (c *Client) UpdateUser(ctx context.Context, id string, uu model.UpdateUser) (model.User, error) {
	return c.userRequest(ctx, http.MethodPut, "/users/"+url.PathEscape(id), uu)
}

func (c *Client) userRequest(ctx context.Context, method, endpoint string, body interface{}) (model.User, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, method, endpoint, nil, body, &raw); err != nil {
		return model.User{}, fmt.Errorf("user request %s %s: %w", method, endpoint, err)
	}
	var u model.User
	if err := json.Unmarshal(unwrap(raw, "user"), &u); err != nil {
		return model.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return u, nil
}
