// Package maintops provides a Go client for the SSTCP maintenance
// work-order system API.
//
// The client covers:
//   - Authentication with transparent single-flight token refresh
//   - Session state with local persistence and presence heartbeats
//   - Role-based permission checks shared by both front-end variants
//   - Work orders (periodic inspection, temporary repair, spot work)
//   - Spare-part and repair-tool inventory
//   - Statistics, personnel, projects, logs and weekly reports
//
// Basic usage:
//
//	store := session.NewStore(session.Config{Storage: storage.NewMemory()})
//	api := maintops.NewClient("http://localhost:8080/api/v1", store)
//	result, err := api.Auth.Login(ctx, "user", "secret")
//	orders, err := api.WorkOrders.ListWorkPlans(ctx, nil)
package maintops

import (
	"github.com/sstcp-ops/maintops-go/client"
	"github.com/sstcp-ops/maintops-go/session"
)

// Client is the API client.
type Client = client.Client

// Config is the client configuration.
type Config = client.Config

// NewClient creates a client bound to a session store with default settings.
func NewClient(baseURL string, store *session.Store) *Client {
	return client.NewClient(&client.Config{
		BaseURL: baseURL,
		Session: store,
	})
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(cfg *Config) *Client {
	return client.NewClient(cfg)
}

// Version information
const (
	// Version is the current SDK version
	Version = "1.0.0"

	// UserAgent is the default user agent string
	UserAgent = "maintops-go/" + Version
)
