package apix

import "context"

// AuthAPI exchanges credentials for a bearer token. Persisting the token
// and reconciling the anonymous cart belong to the auth state store, not
// here.
type AuthAPI struct {
	c *Client
}

func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{c: c}
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if err := requireID("email_required", email); err != nil {
		return nil, err
	}
	if err := requireID("password_required", password); err != nil {
		return nil, err
	}
	body := map[string]any{"email": email, "password": password}
	var out LoginResponse
	if err := a.c.Post(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Register(ctx context.Context, email, password, fullName string) (*LoginResponse, error) {
	if err := requireID("email_required", email); err != nil {
		return nil, err
	}
	if err := requireID("password_required", password); err != nil {
		return nil, err
	}
	body := map[string]any{"email": email, "password": password, "full_name": fullName}
	var out LoginResponse
	if err := a.c.Post(ctx, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
