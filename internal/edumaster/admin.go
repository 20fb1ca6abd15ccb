package edumaster

import (
	"context"
	"net/http"
)

// CreateAdminRequest creates a new admin account (super admin only).
type CreateAdminRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CPassword   string `json:"cpassword"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// CreateAdmin creates a new admin account.
func (c *Client) CreateAdmin(ctx context.Context, req CreateAdminRequest) error {
	return c.do(ctx, http.MethodPost, "/admin/create-admin", req, nil, false)
}

// ListAdmins returns all admin accounts.
func (c *Client) ListAdmins(ctx context.Context) ([]User, error) {
	var admins []User
	if err := c.get(ctx, "/admin/all-admin", &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// ListUsers returns all student accounts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/admin/all-user", &users); err != nil {
		return nil, err
	}
	return users, nil
}
