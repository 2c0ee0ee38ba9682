package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	apierrors "github.com/sstcp-ops/maintops-go/errors"
	"github.com/sstcp-ops/maintops-go/types"
)

// refreshResult is what every caller blocked on a refresh receives: the new
// token, or the terminal session-expired error.
type refreshResult struct {
	token string
	err   error
}

// refresher serializes token refreshes. At most one refresh call is ever in
// flight; requests that hit a 401 while one is pending queue up as waiters
// and resume, in enqueue order, when it resolves.
type refresher struct {
	client *Client

	mu       sync.Mutex
	inFlight bool
	waiters  []chan refreshResult
}

func newRefresher(c *Client) *refresher {
	return &refresher{client: c}
}

// refresh returns a fresh token, either by performing the refresh call
// itself or by waiting on the one already in flight.
func (r *refresher) refresh(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.inFlight {
		waiter := make(chan refreshResult, 1)
		r.waiters = append(r.waiters, waiter)
		r.mu.Unlock()

		select {
		case res := <-waiter:
			return res.token, res.err
		case <-ctx.Done():
			return "", apierrors.Network(ctx.Err())
		}
	}
	r.inFlight = true
	r.mu.Unlock()

	token, err := r.doRefresh(ctx)

	// Drain-and-clear is atomic with releasing the in-flight flag, so a
	// later 401 starts a fresh cycle instead of joining a stale queue.
	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.inFlight = false
	r.mu.Unlock()

	for _, waiter := range waiters {
		waiter <- refreshResult{token: token, err: err}
	}
	return token, err
}

// doRefresh performs the single refresh call, presenting the current token
// as credential. Any failure is terminal: the session is cleared and every
// caller gets the fixed session-expired error.
func (r *refresher) doRefresh(ctx context.Context) (string, error) {
	c := r.client

	current := ""
	if c.session != nil {
		current = c.session.Token()
	}
	if current == "" {
		c.expireSession()
		return "", apierrors.SessionExpired()
	}

	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+current)
	if c.session != nil {
		if refreshToken := c.session.RefreshToken(); refreshToken != "" {
			req.SetBody(map[string]string{"refresh_token": refreshToken})
		}
	}

	resp, err := req.Post("/auth/refresh")
	if err != nil {
		c.logger.Printf("client: token refresh transport failure: %v", err)
		c.expireSession()
		return "", apierrors.SessionExpired()
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Printf("client: token refresh rejected with status %d", resp.StatusCode())
		c.expireSession()
		return "", apierrors.SessionExpired()
	}

	var envelope types.Response
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil || !envelope.OK() {
		c.expireSession()
		return "", apierrors.SessionExpired()
	}
	var result types.RefreshResult
	if err := envelope.Decode(&result); err != nil || result.AccessToken == "" {
		c.expireSession()
		return "", apierrors.SessionExpired()
	}

	c.session.SetToken(result.AccessToken)
	return result.AccessToken, nil
}
