package api

import (
	"context"

	"github.com/nhle/easymail/internal/model"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Authenticate opens a session. On success the jar holds the session and
// CSRF cookies.
func (c *Client) Authenticate(
	ctx context.Context,
	username, password string,
	remember bool,
) (*model.Message, error) {
	var resp model.Message
	err := c.Post(ctx, "/user/auth", credentials{
		Username: username,
		Password: password,
		Remember: remember,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the session on the backend.
func (c *Client) Logout(ctx context.Context) (*model.Message, error) {
	var resp model.Message
	if err := c.Delete(ctx, "/user/auth", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.Message, error) {
	var resp model.Message
	if err := c.Post(ctx, "/user", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile returns the signed-in user.
func (c *Client) GetProfile(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.Get(ctx, "/user/profile", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile saves the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, p model.ProfileUpdate) (*model.Message, error) {
	var resp model.Message
	if err := c.Put(ctx, "/user/profile", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePassword changes the password of the signed-in user.
func (c *Client) UpdatePassword(ctx context.Context, p model.PasswordChange) (*model.Message, error) {
	var resp model.Message
	if err := c.Put(ctx, "/user/profile", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateEmail changes the account address. The backend sends a new
// verification code to it.
func (c *Client) UpdateEmail(ctx context.Context, email string) (*model.Message, error) {
	var resp model.Message
	body := map[string]string{"email": email}
	if err := c.Put(ctx, "/user/email", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResendVerification asks the backend to send another verification code.
func (c *Client) ResendVerification(ctx context.Context) (*model.Message, error) {
	var resp model.Message
	if err := c.Post(ctx, "/user/verify/send", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyEmail confirms the account address with a one-time code.
func (c *Client) VerifyEmail(ctx context.Context, otp string) (*model.Message, error) {
	var resp model.Message
	body := map[string]string{"otp": otp}
	if err := c.Post(ctx, "/user/verify", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RequestPasswordReset sends a reset code to email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*model.Message, error) {
	var resp model.Message
	body := map[string]string{"email": email}
	if err := c.Post(ctx, "/user/password", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword completes a reset with the emailed code.
func (c *Client) ResetPassword(ctx context.Context, r model.PasswordReset) (*model.Message, error) {
	var resp model.Message
	if err := c.Put(ctx, "/user/password", r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
