package cocoro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/logging"
	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
	"github.com/shossk/cocoro-sdk/internal/urls"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	// DefaultCacheDuration is the default validity of the cached box list
	DefaultCacheDuration = 5 * time.Minute
)

// Client talks to the vendor cloud on behalf of one account. Each client
// owns its own cookie jar, so several accounts can be used side by side.
// A Client is safe for concurrent use; the devices it returns are not.
type Client struct {
	// BaseURL is the API root (default: urls.APIBase)
	BaseURL string

	// AppSecret and AppKey are the account credentials
	AppSecret string
	AppKey    string

	// UserAgent is sent with every request (default: urls.UserAgent)
	UserAgent string

	// HTTPClient is the underlying HTTP client; it carries the session cookie jar
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool

	// CacheDuration is how long to cache the box list (0 = no cache)
	CacheDuration time.Duration

	// Layouts overrides the built-in composite layouts, keyed by family
	Layouts map[string]*state.Layout

	// Families overrides the inferred appliance family, keyed by device ID
	Families map[int64]string

	authMutex     sync.Mutex
	authenticated bool

	cachedBoxes []Box
	cacheTime   time.Time
	cacheMutex  sync.RWMutex
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.BaseURL = baseURL }
}

// WithHTTPClient replaces the HTTP client. A cookie jar is installed if the
// client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithRetry configures retry behavior
func WithRetry(maxRetries int, retryDelay time.Duration) Option {
	return func(c *Client) {
		c.MaxRetries = maxRetries
		c.RetryDelay = retryDelay
	}
}

// WithCacheDuration sets the box list cache validity
func WithCacheDuration(d time.Duration) Option {
	return func(c *Client) { c.CacheDuration = d }
}

// WithLayouts overrides built-in composite layouts by family
func WithLayouts(layouts map[string]*state.Layout) Option {
	return func(c *Client) { c.Layouts = layouts }
}

// WithFamilies overrides the appliance family of individual devices
func WithFamilies(families map[int64]string) Option {
	return func(c *Client) { c.Families = families }
}

// NewClient creates a client for the account identified by appSecret and appKey
func NewClient(appSecret, appKey string, opts ...Option) *Client {
	c := &Client{
		BaseURL:               urls.APIBase,
		AppSecret:             appSecret,
		AppKey:                appKey,
		UserAgent:             urls.UserAgent,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
		CacheDuration:         DefaultCacheDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.HTTPClient.Jar == nil {
		// cookiejar.New only fails on a bad public suffix list
		jar, _ := cookiejar.New(nil)
		c.HTTPClient.Jar = jar
	}
	return c
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// IsAuthenticated reports whether a login has succeeded on this client
func (c *Client) IsAuthenticated() bool {
	c.authMutex.Lock()
	defer c.authMutex.Unlock()
	return c.authenticated
}

// Login starts a session. The session lives in the client's cookie jar.
func (c *Client) Login(ctx context.Context) error {
	c.authMutex.Lock()
	defer c.authMutex.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	if err := ValidateCredentials(c.AppSecret, c.AppKey); err != nil {
		return err
	}

	query := url.Values{}
	query.Set("appSecret", c.AppSecret)
	query.Set("serviceName", urls.ServiceName)
	body := loginRequest{TerminalAppID: urls.TerminalAppID(c.AppKey)}

	err := c.withRetry(ctx, func() error {
		return c.send(ctx, http.MethodPost, urls.PathLogin, query, body, nil)
	})
	if err != nil {
		c.authenticated = false
		return fmt.Errorf("login failed: %w", err)
	}

	c.authenticated = true
	logging.Info("Logged in to vendor cloud")
	return nil
}

// ensureLogin logs in unless a session already exists
func (c *Client) ensureLogin(ctx context.Context) error {
	c.authMutex.Lock()
	defer c.authMutex.Unlock()
	if c.authenticated {
		return nil
	}
	return c.loginLocked(ctx)
}

// relogin drops the session and logs in again
func (c *Client) relogin(ctx context.Context) error {
	c.authMutex.Lock()
	defer c.authMutex.Unlock()
	c.authenticated = false
	return c.loginLocked(ctx)
}

// QueryBoxes lists the account's boxes. The result is cached for
// CacheDuration.
func (c *Client) QueryBoxes(ctx context.Context) ([]Box, error) {
	if boxes := c.GetCachedBoxes(); boxes != nil {
		return boxes, nil
	}

	query := url.Values{}
	query.Set("appSecret", c.AppSecret)
	query.Set("mode", "other")

	var resp boxesResponse
	if err := c.call(ctx, http.MethodGet, urls.PathBoxInfo, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to query boxes: %w", err)
	}

	if c.CacheDuration > 0 {
		c.cacheMutex.Lock()
		c.cachedBoxes = resp.Box
		c.cacheTime = time.Now()
		c.cacheMutex.Unlock()
	}

	logging.Debug("Queried boxes", zap.Int("count", len(resp.Box)))
	return resp.Box, nil
}

// QueryBoxProperties fetches the property declarations and current status
// of a box's primary appliance
func (c *Client) QueryBoxProperties(ctx context.Context, box Box) ([]property.Property, []property.Status, error) {
	e, ok := box.Primary()
	if !ok {
		return nil, nil, NewValidationError(fmt.Sprintf("box %s carries no echonet data", box.BoxID))
	}
	return c.queryProperties(ctx, box.BoxID, e.EchonetNode, e.EchonetObject)
}

func (c *Client) queryProperties(ctx context.Context, boxID, node, object string) ([]property.Property, []property.Status, error) {
	query := url.Values{}
	query.Set("boxId", boxID)
	query.Set("appSecret", c.AppSecret)
	query.Set("echonetNode", node)
	query.Set("echonetObject", object)
	query.Set("status", "true")

	var resp propertiesResponse
	if err := c.call(ctx, http.MethodGet, urls.PathDeviceProperty, query, nil, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to query properties of box %s: %w", boxID, err)
	}

	props, statuses, err := decodeProperties(&resp)
	if err != nil {
		return nil, nil, NewParseError(fmt.Sprintf("invalid property response for box %s", boxID), err)
	}
	return props, statuses, nil
}

// QueryDevices builds one device per box. Boxes without appliance data are
// skipped.
func (c *Client) QueryDevices(ctx context.Context) ([]*device.Device, error) {
	boxes, err := c.QueryBoxes(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]*device.Device, 0, len(boxes))
	for _, box := range boxes {
		info, err := box.Info()
		if err != nil {
			logging.Warn("Skipping box", zap.String("box_id", box.BoxID), zap.Error(err))
			continue
		}

		props, statuses, err := c.QueryBoxProperties(ctx, box)
		if err != nil {
			return nil, err
		}

		d, err := c.NewDevice(info, props, statuses)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// NewDevice builds a device, applying the client's family and layout
// overrides
func (c *Client) NewDevice(info device.Info, props []property.Property, statuses []property.Status) (*device.Device, error) {
	if family, ok := c.Families[info.DeviceID]; ok && family != "" {
		info.Family = family
	}
	if info.Family == "" {
		info.Family = device.FamilyForObject(info.EchonetObject)
	}

	var opts []device.Option
	if l, ok := c.Layouts[info.Family]; ok {
		opts = append(opts, device.WithLayout(l))
	}
	return device.New(info, props, statuses, opts...)
}

// FindDevice queries every device and returns the one whose ID or name matches
func (c *Client) FindDevice(ctx context.Context, match func(*device.Device) bool) (*device.Device, error) {
	devices, err := c.QueryDevices(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if match(d) {
			return d, nil
		}
	}
	return nil, NewValidationError("no matching device in this account")
}

// RefreshStatus re-queries the device and replaces its status list
// wholesale. Queued updates are kept.
func (c *Client) RefreshStatus(ctx context.Context, d *device.Device) error {
	_, statuses, err := c.queryProperties(ctx, d.BoxID, d.EchonetNode, d.EchonetObject)
	if err != nil {
		return err
	}
	return d.ReplaceStatus(statuses)
}

// ExecuteQueuedUpdates submits the device's pending updates and clears the
// queue once the API accepts them. An empty queue sends nothing.
func (c *Client) ExecuteQueuedUpdates(ctx context.Context, d *device.Device) error {
	sub := device.BuildSubmission(d)
	if sub.Empty() {
		logging.Debug("No queued updates", zap.Int64("device_id", d.DeviceID))
		return nil
	}
	if errs := ValidateSubmission(sub); len(errs) > 0 {
		return NewValidationError(FormatValidationErrors(errs))
	}

	query := url.Values{}
	query.Set("boxId", urls.TerminalAppID(c.AppKey))
	query.Set("appSecret", c.AppSecret)

	if err := c.call(ctx, http.MethodPost, urls.PathDeviceControl, query, newControlRequest(sub), nil); err != nil {
		return fmt.Errorf("failed to submit updates for device %d: %w", d.DeviceID, err)
	}

	d.ClearPending()
	return nil
}

// call performs an authenticated request. A rejected session triggers one
// fresh login and one more attempt.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}

	do := func() error {
		return c.withRetry(ctx, func() error {
			return c.send(ctx, method, path, query, body, out)
		})
	}

	err := do()
	if !IsAuthError(err) {
		return err
	}

	logging.Warn("Session rejected, logging in again", zap.String("path", path))
	if err := c.relogin(ctx); err != nil {
		return err
	}
	return do()
}

// withRetry runs fn until it succeeds, fails with a non-retryable error or
// runs out of attempts
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, currentDelay); err != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		logging.Debug("Request failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return lastErr
}

// send performs a single request and decodes the JSON response into out
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return NewValidationError(fmt.Sprintf("failed to encode request body: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return NewValidationError(fmt.Sprintf("failed to create %s request: %v", method, err))
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", c.UserAgent)

	requestID := uuid.NewString()
	logPath := path + "?" + query.Encode()
	logging.LogRequest(method, logPath, requestID)
	if sub, ok := body.(controlRequest); ok && len(sub.ControlList) > 0 {
		logging.LogSubmission(sub.ControlList[0].DeviceID, len(sub.ControlList[0].Status), requestID)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NewNetworkError(fmt.Sprintf("%s request failed", method), err)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogResponse(method, logPath, resp.StatusCode, time.Since(start), requestID)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return NewAuthError(fmt.Sprintf("session rejected (HTTP %d)", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewHTTPError(resp.StatusCode,
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, bytes.TrimSpace(data)))
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var ve vendorError
	if err := json.Unmarshal(data, &ve); err == nil && ve.ErrorCode != "" {
		return NewVendorError(ve.ErrorCode, ve.ErrorMessage)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return NewParseError("failed to parse JSON response", err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// InvalidateCache clears the cached box list
func (c *Client) InvalidateCache() {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	c.cachedBoxes = nil
	c.cacheTime = time.Time{}
}

// GetCachedBoxes returns the cached box list without a network request, or
// nil if no valid cache exists
func (c *Client) GetCachedBoxes() []Box {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()

	if c.cachedBoxes != nil && time.Since(c.cacheTime) < c.CacheDuration {
		out := make([]Box, len(c.cachedBoxes))
		copy(out, c.cachedBoxes)
		return out
	}
	return nil
}
