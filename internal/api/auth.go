package api

import "context"

// AuthResponse is the login/register payload: a bearer token plus the
// authenticated user's profile.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	req.Email = email
	req.Password = password

	var resp AuthResponse
	if err := c.doJSON(ctx, "POST", "/api/auth/login", req, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (AuthResponse, error) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	req.Username = username
	req.Email = email
	req.Password = password

	var resp AuthResponse
	if err := c.doJSON(ctx, "POST", "/api/auth/register", req, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// Profile fetches the caller's current user object, the only source of
// truth for quota_used and storage_saved.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var u User
	if err := c.doJSON(ctx, "GET", "/api/user/me", nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}
