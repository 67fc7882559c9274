package httpimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/postsource"
	apperrors "github.com/orgball2608/social-gallery-engine/pkg/errors"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
)

const postsPath = "/integration/social/get-public-posts"

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = log.WithComponent("PostSource")
	}
}

// WithDefaultUID sets the uid used when a query does not carry one.
func WithDefaultUID(uid string) ClientOption {
	return func(c *Client) {
		c.defaultUID = uid
	}
}

// Client fetches public posts from the aggregation API. Each call issues
// exactly one request: no retry, no timeout, no caching.
type Client struct {
	baseURL    string
	defaultUID string
	httpClient HTTPClient
	logger     logger.Logger
}

var _ postsource.Source = (*Client)(nil)

// New creates a post source against the given base URL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches one page of posts matching the query.
func (c *Client) Search(ctx context.Context, q postsource.Query) (*domain.Page, error) {
	return c.fetchPage(ctx, q)
}

// GetByID fetches a single post. The endpoint has no dedicated lookup
// route, so the id travels in the keyword parameter; the first record of
// the resulting page is the post.
func (c *Client) GetByID(ctx context.Context, id string, l postsource.Lookup) (*domain.Post, error) {
	if id == "" {
		return nil, apperrors.ErrInvalidInput
	}
	page, err := c.fetchPage(ctx, postsource.Query{
		Offset:   0,
		PageSize: 20,
		Keyword:  id,
		UID:      l.UID,
		Domain:   l.Domain,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, fmt.Sprintf("post %s", id))
	}
	return &page.Data[0], nil
}

func (c *Client) fetchPage(ctx context.Context, q postsource.Query) (*domain.Page, error) {
	endpoint, err := c.endpointURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "gallery request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read gallery response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp.StatusCode)
	}

	var page domain.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse gallery response")
	}
	if !page.Succeeded() {
		c.logger.Warn("Gallery API reported failure", "message", page.Message)
		return nil, apperrors.WrapWithCode(apperrors.ErrServiceUnavailable, page.Status, page.Message)
	}

	return &page, nil
}

// endpointURL translates the query into the wire form. The literal date
// filter "all" normalizes to an empty parameter; Domain selects the base
// URL but is never itself transmitted.
func (c *Client) endpointURL(q postsource.Query) (string, error) {
	base := c.baseURL
	if q.Domain != "" {
		base = q.Domain
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", apperrors.Wrap(err, "invalid gallery base URL")
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + postsPath

	dateFilter := q.DateFilter
	if strings.EqualFold(dateFilter, "all") {
		dateFilter = ""
	}
	uid := q.UID
	if uid == "" {
		uid = c.defaultUID
	}

	vals := url.Values{}
	vals.Set("start", strconv.Itoa(q.Offset*q.PageSize))
	vals.Set("length", strconv.Itoa(q.PageSize))
	vals.Set("keyword", q.Keyword)
	vals.Set("platform", q.Platform)
	vals.Set("date_filter", dateFilter)
	vals.Set("uid", uid)
	u.RawQuery = vals.Encode()

	return u.String(), nil
}

func (c *Client) handleAPIError(statusCode int) error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return apperrors.WrapWithCode(apperrors.ErrServiceUnavailable, "rate_limited", "gallery API rate limit exceeded")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return apperrors.WrapWithCode(apperrors.ErrServiceUnavailable, "server_error", fmt.Sprintf("gallery API server error (status %d)", statusCode))
	default:
		return apperrors.WrapWithCode(apperrors.ErrServiceUnavailable, "http_error", fmt.Sprintf("gallery API error (status %d)", statusCode))
	}
}
