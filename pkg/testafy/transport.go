package testafy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	// DefaultHTTPTimeout is the default timeout for a single API call.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "testafy-go"

	// jsonFormField is the form field the service expects the JSON payload in.
	jsonFormField = "json"

	requestIDHeader = "X-Request-Id"

	// maxErrorBodyLen bounds how much of an unexpected body ends up in errors.
	maxErrorBodyLen = 256
)

// Credentials are sent as HTTP Basic authentication.
type Credentials struct {
	Username string
	Password string
}

// options is shared by NewTransport and NewClient.
type options struct {
	httpClient            *http.Client
	logger                *slog.Logger
	userAgent             string
	screenshotConcurrency int
}

// Option configures a Transport or Client.
type Option func(*options)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithScreenshotConcurrency bounds the number of concurrent screenshot
// downloads made by FetchAllScreenshotsBase64.
func WithScreenshotConcurrency(n int) Option {
	return func(o *options) {
		o.screenshotConcurrency = n
	}
}

func buildOptions(opts []Option) options {
	o := options{
		httpClient:            &http.Client{Timeout: DefaultHTTPTimeout},
		logger:                slog.Default(),
		userAgent:             DefaultUserAgent,
		screenshotConcurrency: DefaultScreenshotConcurrency,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.screenshotConcurrency < 1 {
		o.screenshotConcurrency = 1
	}
	return o
}

// Transport performs one authenticated POST per API call and classifies the
// outcome into *Error values. It never retries.
type Transport struct {
	baseURI    string
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// NewTransport creates a transport for the given service root.
// An empty baseURI is accepted here and reported on the first call.
func NewTransport(baseURI string, creds Credentials, opts ...Option) *Transport {
	o := buildOptions(opts)
	return newTransport(baseURI, creds, o)
}

func newTransport(baseURI string, creds Credentials, o options) *Transport {
	return &Transport{
		baseURI:    baseURI,
		creds:      creds,
		httpClient: o.httpClient,
		logger:     o.logger,
		userAgent:  o.userAgent,
	}
}

// Execute posts params, JSON encoded into the "json" form field, to path
// relative to the base URI. The response body is parsed as JSON regardless of
// the HTTP status.
func (t *Transport) Execute(ctx context.Context, path string, params map[string]any) (*Response, error) {
	if strings.TrimSpace(t.baseURI) == "" {
		return nil, newError(KindConfiguration, path, 0, "no base URI configured", nil)
	}

	endpoint, err := resolveEndpoint(t.baseURI, path)
	if err != nil {
		return nil, newError(KindInvalidEndpoint, path, 0, "check base URI, possibly bad hostname", err)
	}

	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	form := url.Values{jsonFormField: {string(payload)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newError(KindInvalidEndpoint, path, 0, "failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if t.creds.Username != "" {
		req.SetBasicAuth(t.creds.Username, t.creds.Password)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Debug("API request failed",
			"op", path,
			"request_id", requestID,
			"error", err)
		return nil, classifyDoError(path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransport, path, resp.StatusCode, "failed to read response", err)
	}

	t.logger.Debug("API request",
		"op", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return classifyResponse(path, requestID, resp.StatusCode, body)
}

// resolveEndpoint joins the base URI and a route. A base URI without a scheme
// is treated as https.
func resolveEndpoint(baseURI, path string) (string, error) {
	base := strings.TrimSpace(baseURI)
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", errors.New("missing host")
	}
	if u.User != nil {
		return "", errors.New("credentials must not be embedded in the base URI")
	}

	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}
	return u.ResolveReference(ref).String(), nil
}

func classifyDoError(op string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return newError(KindInvalidEndpoint, op, 0, "check base URI, possibly bad hostname", err)
	}
	return newError(KindTransport, op, 0, "request failed", err)
}

func classifyResponse(op, requestID string, status int, body []byte) (*Response, error) {
	valid := gjson.ValidBytes(body)

	if status >= 200 && status < 300 {
		if !valid {
			return nil, newError(KindTransport, op, status, "response is not valid JSON: "+truncate(string(body)), nil)
		}
		return newResponse(status, requestID, body), nil
	}

	var serverMsg string
	if valid {
		if v := gjson.GetBytes(body, "error"); v.Exists() && v.Type != gjson.Null {
			serverMsg = v.String()
		}
	}

	if status == http.StatusBadRequest && serverMsg != "" {
		return nil, newError(KindClientRequest, op, status, serverMsg, nil)
	}

	if serverMsg == "" {
		serverMsg = truncate(strings.TrimSpace(string(body)))
	}
	if serverMsg == "" {
		serverMsg = http.StatusText(status)
	}
	return nil, newError(KindServer, op, status, serverMsg, nil)
}

func truncate(s string) string {
	if len(s) <= maxErrorBodyLen {
		return s
	}
	return s[:maxErrorBodyLen] + "..."
}
