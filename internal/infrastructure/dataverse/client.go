// Package dataverse is a small client for the Dataverse (Dynamics 365) Web
// API, authenticated with the OAuth2 client credentials flow.
package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"hpp_checkout/internal/usecase/interfaces"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultAPIVersion = "v9.2"
	defaultTimeout    = 10 * time.Second
)

var (
	ErrInvalidConfig      = errors.New("dataverse: invalid config")
	ErrNotFound           = errors.New("dataverse: not found")
	ErrPreconditionFailed = errors.New("dataverse: precondition failed")
)

type Config struct {
	// TenantURL is the token authority, e.g. https://login.microsoftonline.com/<tenant id>.
	TenantURL string
	// ServiceURL is the organisation url, e.g. https://yourorg.crm4.dynamics.com.
	ServiceURL   string
	ClientID     string
	ClientSecret string
	APIVersion   string
	Timeout      time.Duration
}

func (c Config) Validate() error {
	for name, v := range map[string]string{
		"tenant url":    c.TenantURL,
		"service url":   c.ServiceURL,
		"client id":     c.ClientID,
		"client secret": c.ClientSecret,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, name)
		}
	}
	for name, v := range map[string]string{"tenant url": c.TenantURL, "service url": c.ServiceURL} {
		if _, err := url.ParseRequestURI(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

// Client issues OData requests against one organisation.
//
// The access token is cached and refreshed on expiry; the cache lock is never
// held while a token request is in flight.
type Client struct {
	baseURL string
	http    *http.Client
	oauth   *clientcredentials.Config
	logger  *zap.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	serviceURL := strings.TrimRight(cfg.ServiceURL, "/")

	return &Client{
		baseURL: fmt.Sprintf("%s/api/data/%s/", serviceURL, version),
		http:    &http.Client{Timeout: timeout},
		oauth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(cfg.TenantURL, "/") + "/oauth2/v2.0/token",
			Scopes:       []string{serviceURL + "/.default"},
		},
		logger: logger.Named("dataverse"),
	}, nil
}

// GetOne reads a single entity by primary key into out. It returns ErrNotFound
// when the entity does not exist.
func (c *Client) GetOne(ctx context.Context, entitySet, id string, selectFields []string, out any) error {
	q := url.Values{}
	if len(selectFields) > 0 {
		q.Set("$select", strings.Join(selectFields, ","))
	}
	return c.do(ctx, http.MethodGet, entityPath(entitySet, id), q, nil, nil, out)
}

// List reads the entities matching an OData filter into out, which must
// decode a {"value": [...]} envelope.
func (c *Client) List(ctx context.Context, entitySet, filter string, selectFields []string, top int, out any) error {
	q := url.Values{}
	if filter != "" {
		q.Set("$filter", filter)
	}
	if len(selectFields) > 0 {
		q.Set("$select", strings.Join(selectFields, ","))
	}
	if top > 0 {
		q.Set("$top", strconv.Itoa(top))
	}
	return c.do(ctx, http.MethodGet, entitySet, q, nil, nil, out)
}

func (c *Client) Create(ctx context.Context, entitySet string, body any) error {
	return c.do(ctx, http.MethodPost, entitySet, nil, nil, body, nil)
}

// Update patches an existing entity. With a non-empty etag the update only
// applies if the entity is unchanged since it was read (ErrPreconditionFailed
// otherwise). The updated entity is decoded into out when out is non-nil.
func (c *Client) Update(ctx context.Context, entitySet, id, etag string, selectFields []string, body, out any) error {
	headers := http.Header{}
	// Without If-Match a PATCH to a missing key would create the entity.
	if etag != "" {
		headers.Set("If-Match", etag)
	} else {
		headers.Set("If-Match", "*")
	}
	q := url.Values{}
	if out != nil {
		headers.Set("Prefer", "return=representation")
		if len(selectFields) > 0 {
			q.Set("$select", strings.Join(selectFields, ","))
		}
	}
	return c.do(ctx, http.MethodPatch, entityPath(entitySet, id), q, headers, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers http.Header, body, out any) error {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("dataverse request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", interfaces.ErrStoreRejected, method, path, err)
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	tok := c.token
	c.mu.Unlock()
	if tok.Valid() {
		return tok, nil
	}

	tok, err := c.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		c.logger.Warn("token acquisition failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: token acquisition: %v", interfaces.ErrStoreTimeout, err)
		}
		return nil, fmt.Errorf("%w: token acquisition: %v", interfaces.ErrStoreAuth, err)
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return tok, nil
}

type odataError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusError(resp *http.Response) error {
	var oe odataError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&oe)
	detail := fmt.Sprintf("status %d", resp.StatusCode)
	if oe.Error.Message != "" {
		detail = fmt.Sprintf("status %d: %s", resp.StatusCode, oe.Error.Message)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case resp.StatusCode == http.StatusPreconditionFailed:
		return fmt.Errorf("%w: %s", ErrPreconditionFailed, detail)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", interfaces.ErrStoreAuth, detail)
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", interfaces.ErrStoreTimeout, detail)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", interfaces.ErrStoreUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", interfaces.ErrStoreRejected, detail)
	}
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", interfaces.ErrStoreTimeout, err)
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return fmt.Errorf("%w: %v", interfaces.ErrStoreTimeout, err)
	}
	return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
}

func entityPath(entitySet, id string) string {
	return fmt.Sprintf("%s(%s)", entitySet, url.PathEscape(id))
}

// QuoteString renders s as an OData string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
