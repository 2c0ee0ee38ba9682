// Package client implements the HTTP adapter for the maintenance work-order
// backend: it attaches the session's identity to every outbound request,
// unwraps the {code, message, data} envelope, normalizes failures, and
// recovers from expired tokens with a single-flight refresh.
package client

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	apierrors "github.com/sstcp-ops/maintops-go/errors"
	"github.com/sstcp-ops/maintops-go/session"
	"github.com/sstcp-ops/maintops-go/types"
)

// DefaultTimeout matches the front-ends' 30s client-side request timeout.
const DefaultTimeout = 30 * time.Second

// Config configures a Client. BaseURL should include the API prefix, e.g.
// "http://localhost:8080/api/v1".
type Config struct {
	BaseURL   string
	Session   *session.Store
	Timeout   time.Duration
	UserAgent string
	Debug     bool
	Logger    *log.Logger

	// OnSessionExpired is the login-redirect hook, invoked after a failed
	// refresh cleared the session. Optional.
	OnSessionExpired func()
}

// Client is the API client. All outbound calls pass through it.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	session    *session.Store
	logger     *log.Logger
	onExpired  func()

	refresher *refresher

	// Service clients
	Auth            *AuthService
	Online          *OnlineService
	WorkOrders      *WorkOrdersService
	SpareParts      *SparePartsService
	Statistics      *StatisticsService
	Personnel       *PersonnelService
	Projects        *ProjectsService
	MaintenanceLogs *MaintenanceLogsService
	WeeklyReports   *WeeklyReportsService
}

// NewClient creates a client bound to a session store.
func NewClient(cfg *Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "maintops-go/1.0.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if cfg.Debug {
		httpClient.SetDebug(true)
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		session:    cfg.Session,
		logger:     cfg.Logger,
		onExpired:  cfg.OnSessionExpired,
	}
	c.refresher = newRefresher(c)

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		c.injectHeaders(req)
		return nil
	})

	c.Auth = &AuthService{client: c}
	c.Online = &OnlineService{client: c}
	c.WorkOrders = &WorkOrdersService{client: c}
	c.SpareParts = &SparePartsService{client: c}
	c.Statistics = &StatisticsService{client: c}
	c.Personnel = &PersonnelService{client: c}
	c.Projects = &ProjectsService{client: c}
	c.MaintenanceLogs = &MaintenanceLogsService{client: c}
	c.WeeklyReports = &WeeklyReportsService{client: c}

	return c
}

// Session exposes the bound session store.
func (c *Client) Session() *session.Store {
	return c.session
}

// injectHeaders attaches the bearer token and identity context. Requests
// with no session pass through unmodified; a retry that already carries an
// Authorization header keeps it.
func (c *Client) injectHeaders(req *resty.Request) {
	req.SetHeader("X-Request-ID", uuid.NewString())
	if c.session == nil {
		return
	}
	if req.Header.Get("Authorization") == "" {
		if token := c.session.Token(); token != "" {
			req.SetHeader("Authorization", "Bearer "+token)
		}
	}
	if user := c.session.User(); user != nil {
		req.SetHeader("X-User-Name", url.QueryEscape(user.Name))
		req.SetHeader("X-User-Role", url.QueryEscape(user.Role))
	}
}

// Get performs a GET request and decodes the envelope payload into result.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	_, err := c.do(ctx, http.MethodGet, path, nil, result)
	return err
}

// Post performs a POST request and decodes the envelope payload into result.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	_, err := c.do(ctx, http.MethodPost, path, body, result)
	return err
}

// Put performs a PUT request and decodes the envelope payload into result.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	_, err := c.do(ctx, http.MethodPut, path, body, result)
	return err
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, result)
	return err
}

// do executes one request, applying the 401 refresh-and-retry protocol.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) (*types.Response, error) {
	return c.doWithToken(ctx, method, path, body, result, "", false)
}

func (c *Client) doWithToken(ctx context.Context, method, path string, body, result interface{}, token string, retried bool) (*types.Response, error) {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Printf("client: %s %s transport failure: %v", method, path, err)
		return nil, apierrors.Network(err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if retried {
			// Second 401 after a refresh: the new token is no good either.
			c.expireSession()
			return nil, apierrors.SessionExpired()
		}
		newToken, refreshErr := c.refresher.refresh(ctx)
		if refreshErr != nil {
			return nil, refreshErr
		}
		return c.doWithToken(ctx, method, path, body, result, newToken, true)
	}

	if !resp.IsSuccess() {
		apiErr := apierrors.FromResponse(resp.StatusCode(), resp.Body(), apierrors.StatusMessage(resp.StatusCode()))
		c.logger.Printf("client: %s %s failed: %v", method, path, apiErr)
		return nil, apiErr
	}

	var envelope types.Response
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, apierrors.New(resp.StatusCode(), "invalid response envelope")
	}
	if !envelope.OK() {
		apiErr := apierrors.FromEnvelope(envelope.Code, envelope.Message, envelope.Data)
		c.logger.Printf("client: %s %s rejected: %v", method, path, apiErr)
		return &envelope, apiErr
	}
	if result != nil {
		if err := envelope.Decode(result); err != nil {
			return &envelope, apierrors.New(resp.StatusCode(), "invalid response payload")
		}
	}
	return &envelope, nil
}

// expireSession clears the session and fires the login-redirect hook.
func (c *Client) expireSession() {
	if c.session != nil {
		c.session.ClearUser()
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

// queryPath appends non-empty query values to path.
func queryPath(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
