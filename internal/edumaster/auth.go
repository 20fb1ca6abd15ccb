package edumaster

import (
	"context"
	"encoding/json"
	"net/http"
)

// LoginRequest are the credentials for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a new student account.
type RegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CPassword   string `json:"cpassword"`
	PhoneNumber string `json:"phoneNumber"`
	ClassLevel  string `json:"classLevel"`
}

// ResetPasswordRequest completes a forgot-password flow with the mailed OTP.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// UpdatePasswordRequest changes the password of the logged-in account.
type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
	CPassword   string `json:"cpassword"`
}

// LoginResult is the normalized login response.
type LoginResult struct {
	Token string
	User  *User
}

// Login authenticates and normalizes the three response shapes the API has
// been observed to answer with: {token,data}, {token,user} and a flat user
// object next to the token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &raw, false); err != nil {
		return nil, err
	}

	var envelope struct {
		Token string          `json:"token"`
		Data  json.RawMessage `json:"data"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &APIError{Message: msgUnexpectedError, Err: err}
	}

	userJSON := envelope.Data
	if len(userJSON) == 0 {
		userJSON = envelope.User
	}
	if len(userJSON) == 0 {
		userJSON = raw
	}

	var user User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, &APIError{Message: msgUnexpectedError, Err: err}
	}

	return &LoginResult{Token: envelope.Token, User: &user}, nil
}

// Register creates a new student account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", req, nil, false)
}

// ForgotPassword triggers the reset-OTP email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/user/forgot-password", body, nil, false)
}

// ResetPassword completes the forgot-password flow.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/user/reset-password", req, nil, false)
}

// GetProfile fetches the account behind the bound token. A rejected token
// surfaces as ErrSessionExpired.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/user/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the logged-in account's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]string) error {
	return c.do(ctx, http.MethodPut, "/user/", fields, nil, false)
}

// UpdatePassword changes the logged-in account's password.
func (c *Client) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error {
	return c.do(ctx, http.MethodPatch, "/user/update-password", req, nil, false)
}

// DeleteAccount removes the logged-in account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/user/", nil, nil, false)
}
