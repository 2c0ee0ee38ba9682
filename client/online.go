package client

import (
	"context"
	"net/url"

	"github.com/sstcp-ops/maintops-go/types"
)

// OnlineService handles the presence-tracking API. It satisfies
// session.PresenceNotifier, so a session store can be wired directly to it.
type OnlineService struct {
	client *Client
}

// RecordLogin registers the user as online for the given device type.
func (s *OnlineService) RecordLogin(ctx context.Context, device string, userID int, userName string) error {
	query := url.Values{}
	query.Set("device_type", device)
	return s.client.Post(ctx, queryPath("/online/login", query), nil, nil)
}

// RecordLogout removes the user's presence record.
func (s *OnlineService) RecordLogout(ctx context.Context, device string, userID int) error {
	query := url.Values{}
	query.Set("device_type", device)
	return s.client.Post(ctx, queryPath("/online/logout", query), nil, nil)
}

// Heartbeat refreshes the user's last-activity timestamp.
func (s *OnlineService) Heartbeat(ctx context.Context, device string) error {
	return s.client.Post(ctx, "/online/heartbeat", map[string]string{"device_type": device}, nil)
}

// Count returns the online user totals per device type.
func (s *OnlineService) Count(ctx context.Context) (*types.OnlineStatistics, error) {
	var result types.OnlineStatistics
	if err := s.client.Get(ctx, "/online/count", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Users lists the currently online users, optionally filtered by device type.
func (s *OnlineService) Users(ctx context.Context, device string) ([]types.OnlineUser, error) {
	path := "/online/users"
	if device != "" {
		query := url.Values{}
		query.Set("device_type", device)
		path = queryPath(path, query)
	}
	var result []types.OnlineUser
	if err := s.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Statistics returns the full presence breakdown including user lists.
func (s *OnlineService) Statistics(ctx context.Context) (*types.OnlineStatistics, error) {
	var result types.OnlineStatistics
	if err := s.client.Get(ctx, "/online/statistics", &result); err != nil {
		return nil, err
	}
	return &result, nil
}
