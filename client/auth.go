package client

import (
	"context"

	"github.com/sstcp-ops/maintops-go/types"
)

// AuthService handles authentication API operations.
type AuthService struct {
	client *Client
}

// Login authenticates with username/password and, on success, stores the
// returned identity and tokens in the session store.
func (s *AuthService) Login(ctx context.Context, username, password string) (*types.LoginResult, error) {
	var result types.LoginResult
	err := s.client.Post(ctx, "/auth/login-json", &types.LoginRequest{
		Username: username,
		Password: password,
	}, &result)
	if err != nil {
		return nil, err
	}

	if store := s.client.Session(); store != nil {
		store.SetUser(result.User)
		store.SetToken(result.AccessToken)
		if result.RefreshToken != "" {
			store.SetRefreshToken(result.RefreshToken)
		}
	}
	return &result, nil
}

// Refresh forces a token refresh and returns the new access token. Requests
// that hit a 401 do this automatically; callers only need it to renew a
// token ahead of its expiry. Concurrent calls share one refresh request.
func (s *AuthService) Refresh(ctx context.Context) (string, error) {
	return s.client.refresher.refresh(ctx)
}

// Me fetches the signed-in user's profile.
func (s *AuthService) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := s.client.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears the local session. The presence logout notification is
// emitted by the session store itself.
func (s *AuthService) Logout() {
	if store := s.client.Session(); store != nil {
		store.ClearUser()
	}
}
