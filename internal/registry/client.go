package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/cache"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/utils"
	"github.com/quantmind-br/hippofactory-go/pkg/version"
)

// maxInvoiceSize bounds the response body read from the registry
const maxInvoiceSize = 16 << 20

// Client is an HTTP client for a Bindle registry
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	retrier    *Retrier
	cache      domain.Cache
	cacheTTL   time.Duration
	logger     *utils.Logger
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt;
	// negative selects the default.
	MaxRetries    int
	RetryInterval time.Duration
	// Cache stores raw invoice responses when set
	Cache      domain.Cache
	CacheTTL   time.Duration
	HTTPClient *http.Client
	UserAgent  string
	Logger     *utils.Logger
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		CacheTTL:   24 * time.Hour,
	}
}

// NewClient creates a new registry client
func NewClient(opts ClientOptions) (*Client, error) {
	baseURL, err := utils.NormalizeServerURL(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "hippofactory/" + version.Short()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  opts.UserAgent,
		retrier: NewRetrier(RetrierOptions{
			MaxRetries:      opts.MaxRetries,
			InitialInterval: opts.RetryInterval,
		}),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   utils.OrNop(opts.Logger).WithComponent("registry"),
	}, nil
}

// BaseURL returns the normalized registry URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchInvoice retrieves an invoice from the registry
func (c *Client) FetchInvoice(ctx context.Context, id bindle.ID, includeYanked bool) (*bindle.Invoice, error) {
	key := cache.InvoiceKey(c.baseURL, id.String(), includeYanked)

	if c.cache != nil {
		if data, err := c.cache.Get(ctx, key); err == nil {
			inv, decodeErr := bindle.Unmarshal(data, bindle.FormatTOML)
			if decodeErr == nil {
				c.logger.Debug().Str("bindle", id.String()).Msg("Invoice cache hit")
				return inv, nil
			}
			c.logger.Warn().Err(decodeErr).Str("bindle", id.String()).Msg("Discarding unreadable cached invoice")
			_ = c.cache.Delete(ctx, key)
		}
	}

	endpoint := c.invoiceURL(id, includeYanked)
	data, err := RetryWithValue(ctx, c.retrier, func() ([]byte, error) {
		return c.get(ctx, endpoint, "application/toml")
	})
	if err != nil {
		return nil, err
	}

	inv, err := bindle.Unmarshal(data, bindle.FormatTOML)
	if err != nil {
		return nil, domain.NewFetchError(endpoint, http.StatusOK, err)
	}

	c.logger.Debug().
		Str("bindle", id.String()).
		Int("parcels", len(inv.Parcel)).
		Msg("Fetched invoice")

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("bindle", id.String()).Msg("Failed to cache invoice")
		}
	}

	return inv, nil
}

// Ping checks that the registry answers HTTP requests. Any status below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.retrier.Retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
		if err != nil {
			return domain.NewFetchError(c.baseURL, 0, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domain.NewFetchError(c.baseURL, 0, err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		if resp.StatusCode >= 500 {
			return domain.NewFetchError(c.baseURL, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
		}
		return nil
	})
}

func (c *Client) invoiceURL(id bindle.ID, includeYanked bool) string {
	segments := append([]string{"_i"}, strings.Split(id.Name(), "/")...)
	segments = append(segments, id.Version())

	endpoint := utils.JoinURLPath(c.baseURL, segments...)
	if includeYanked {
		endpoint += "?" + url.Values{"yanked": {"true"}}.Encode()
	}
	return endpoint
}

func (c *Client) get(ctx context.Context, endpoint, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewFetchError(endpoint, 0, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewFetchError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewFetchError(endpoint, resp.StatusCode, domain.ErrInvoiceNotFound)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.NewFetchError(endpoint, resp.StatusCode, domain.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewFetchError(endpoint, resp.StatusCode, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInvoiceSize+1))
	if err != nil {
		return nil, domain.NewFetchError(endpoint, resp.StatusCode, err)
	}
	if len(data) > maxInvoiceSize {
		return nil, domain.NewFetchError(endpoint, resp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxInvoiceSize))
	}

	return data, nil
}

// Ensure Client implements domain.RegistryClient
var _ domain.RegistryClient = (*Client)(nil)
