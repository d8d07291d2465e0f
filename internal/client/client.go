// Package client implements the HR directory REST API client: a request
// executor that owns the retry policy, a paginator built on top of it, and
// typed resource methods.
package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fjacquet/hrdir/internal/cache"
	"github.com/fjacquet/hrdir/internal/logging"
	"github.com/fjacquet/hrdir/internal/models"
	"github.com/fjacquet/hrdir/internal/telemetry"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HTTP header names sent with every request.
const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

const (
	contentTypeJSON     = "application/json"
	instrumentationName = "hrdir/client"

	// Connection pool configuration
	maxIdleConns        = 100
	maxIdleConnsPerHost = 20
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 10 * time.Second

	pingPath    = "users/me"
	pingTimeout = 5 * time.Second
)

// Option configures optional Client settings.
type Option func(*clientOptions)

type clientOptions struct {
	tracerProvider trace.TracerProvider
	cache          cache.Cache
	httpClient     *http.Client
	logger         *log.Entry
	registerer     prometheus.Registerer
	timer          backoff.Timer
	policy         *RetryPolicy
}

// WithTracerProvider sets the TracerProvider used for request spans.
// Without it spans go to a noop provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) {
		o.tracerProvider = tp
	}
}

// WithCache enables get-by-id caching through c.
func WithCache(c cache.Cache) Option {
	return func(o *clientOptions) {
		o.cache = c
	}
}

// WithHTTPClient sends requests through a pre-built http.Client instead of
// the pooled transport the client builds itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithLogger sets the log entry diagnostics are written to.
func WithLogger(l *log.Entry) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithMetrics registers the client's Prometheus instruments on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *clientOptions) {
		o.registerer = reg
	}
}

// WithTimer replaces the timer used for backoff waits.
func WithTimer(t backoff.Timer) Option {
	return func(o *clientOptions) {
		o.timer = t
	}
}

// WithRetryPolicy overrides the policy derived from the configuration.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *clientOptions) {
		o.policy = &p
	}
}

// Client talks to the HR directory API. The configuration is fixed at
// construction; the resty client and default headers are built on first use.
// A Client is meant for sequential use.
type Client struct {
	cfg        models.Config
	policy     RetryPolicy
	cache      cache.Cache
	httpClient *http.Client
	logger     *log.Entry
	tracing    *TracerWrapper
	metrics    *clientMetrics
	timer      backoff.Timer

	once    sync.Once
	rest    *resty.Client
	headers map[string]string
}

// New creates a client for cfg. Missing optional settings take their defaults;
// a missing bearer token is a *ConfigError wrapping ErrMissingToken.
func New(cfg models.Config, opts ...Option) (*Client, error) {
	options := clientOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	cfg.SetDefaults()
	if cfg.API.Token == "" {
		return nil, configError("create client", ErrMissingToken, "set api.token in the configuration")
	}

	policy := RetryPolicyFromConfig(cfg)
	if options.policy != nil {
		policy = *options.policy
	}

	logger := options.logger
	if logger == nil {
		logger = logging.Logger().WithField("component", "client")
	}

	metrics := newClientMetrics()
	if err := metrics.register(options.registerer); err != nil {
		return nil, fmt.Errorf("failed to register client metrics: %w", err)
	}

	if cfg.API.InsecureSkipVerify {
		logger.Error("SECURITY WARNING: TLS certificate verification disabled - this is insecure for production use")
	}

	return &Client{
		cfg:        cfg,
		policy:     policy,
		cache:      options.cache,
		httpClient: options.httpClient,
		logger:     logger,
		tracing:    NewTracerWrapper(options.tracerProvider, instrumentationName),
		metrics:    metrics,
		timer:      options.timer,
	}, nil
}

// BaseURL returns the URL that relative request paths are resolved against.
func (c *Client) BaseURL() string {
	return c.cfg.API.BaseURL
}

// Policy returns the retry policy in effect.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

func (c *Client) init() {
	c.once.Do(func() {
		c.rest = c.newRestClient()
		c.headers = map[string]string{
			HeaderContentType:   contentTypeJSON,
			HeaderAccept:        contentTypeJSON,
			HeaderAuthorization: "Bearer " + c.cfg.API.Token,
		}
	})
}

// newRestClient builds the resty client. Its own retry mechanism stays off:
// Execute is the only place that retries.
func (c *Client) newRestClient() *resty.Client {
	var rc *resty.Client
	if c.httpClient != nil {
		rc = resty.NewWithClient(c.httpClient)
	} else {
		rc = resty.New().SetTimeout(c.cfg.GetTimeout())
		rc.GetClient().Transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     idleConnTimeout,
			TLSHandshakeTimeout: tlsHandshakeTimeout,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: c.cfg.API.InsecureSkipVerify,
				MinVersion:         tls.VersionTLS12,
			},
		}
	}
	return rc.SetRetryCount(0).SetLogger(c.logger)
}

// Execute sends req and returns its decoded JSON body. An empty successful
// body yields nil without error.
//
// Responses whose status is in the retry set are retried after the policy
// delay until one succeeds or the attempt budget runs out. Any other failure
// is returned at once:
//   - *ConfigError for a malformed request (no network call is made)
//   - *HTTPError for a terminal status or an exhausted budget
//   - *TransportError when no response was received
//   - *DecodeError for a body that is not JSON
func (c *Client) Execute(ctx context.Context, req *Request) (interface{}, error) {
	var result interface{}
	err := c.execute(ctx, req, c.policy, func(body []byte, contentType, url string) error {
		v, err := decodeBody(body, contentType, url)
		result = v
		return err
	})
	return result, err
}

// ExecuteInto is Execute followed by decoding into target. target is left
// untouched when the body is empty.
func (c *Client) ExecuteInto(ctx context.Context, req *Request, target interface{}) error {
	return c.execute(ctx, req, c.policy, func(body []byte, contentType, url string) error {
		v, err := decodeBody(body, contentType, url)
		if err != nil || v == nil {
			return err
		}
		return decodeInto(v, target, url)
	})
}

// Ping checks connectivity and credentials with a single, unretried call to
// users/me. A 5 second timeout applies unless ctx already has a deadline.
func (c *Client) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}

	req, err := Get(pingPath)
	if err != nil {
		return err
	}
	once := RetryPolicy{Backoff: c.policy.Backoff, MaxTries: 1}
	err = c.execute(ctx, req, once, func([]byte, string, string) error { return nil })
	if err != nil {
		return fmt.Errorf("HR directory connectivity test failed: %w", err)
	}
	return nil
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	if c.rest != nil {
		c.rest.GetClient().CloseIdleConnections()
	}
}

type decodeFunc func(body []byte, contentType, url string) error

func (c *Client) execute(ctx context.Context, req *Request, policy RetryPolicy, decode decodeFunc) error {
	if req == nil {
		return configError("execute request", ErrMissingTarget, "nil request")
	}
	if err := req.validate(); err != nil {
		return err
	}
	c.init()

	url := req.target(c.cfg.API.BaseURL)
	callID := uuid.NewString()
	logger := c.logger.WithFields(log.Fields{
		"call_id": callID,
		"method":  req.method,
		"url":     url,
	})

	ctx, span := c.tracing.StartSpan(ctx, "hrdir.request", trace.SpanKindClient,
		attribute.String(telemetry.AttrCallID, callID))
	defer span.End()

	headers := c.headers
	if req.headers != nil {
		headers = req.headers
	}
	headers = injectTraceContext(ctx, headers)

	hint := newPolicyBackOff(policy.Backoff)
	attempt := 0
	lastStatus := 0
	var final *resty.Response

	operation := func() error {
		attempt++
		r := c.rest.R().SetContext(ctx).SetHeaders(headers)
		if req.fields != nil {
			r.SetQueryParams(req.fields)
		}
		if req.body != nil {
			r.SetBody(req.body)
		}
		dump := traceEnabled(logger)
		if dump {
			r.EnableTrace()
			dumpRequest(logger, req.method, url, headers, req.body)
		}

		logger.WithField("attempt", attempt).Debug("Sending request")
		start := time.Now()
		resp, err := r.Execute(req.method, url)
		elapsed := time.Since(start)
		if err != nil {
			return backoff.Permanent(&TransportError{Method: req.method, URL: url, Err: err})
		}

		status := resp.StatusCode()
		c.metrics.observeAttempt(req.method, status, elapsed)
		recordHTTPAttributes(span, req.method, url, status, attempt, int64(len(resp.Body())), elapsed)
		if dump {
			dumpResponse(logger, resp)
		}

		if resp.IsSuccess() {
			final = resp
			return nil
		}

		httpErr := &HTTPError{
			Method:     req.method,
			URL:        url,
			StatusCode: status,
			Reason:     reasonPhrase(resp),
			Body:       string(resp.Body()),
			Attempts:   attempt,
		}
		if !policy.Retryable(status) {
			return backoff.Permanent(httpErr)
		}
		httpErr.Retryable = true
		lastStatus = status
		hint.set(policy.Delay(status, resp.Header()))
		return httpErr
	}

	notify := func(err error, wait time.Duration) {
		c.metrics.observeRetry(lastStatus)
		logger.WithFields(log.Fields{
			"attempt": attempt,
			"status":  lastStatus,
			"wait":    wait.String(),
		}).Warn("Retryable response, backing off")
	}

	err := backoff.RetryNotifyWithTimer(operation, policy.backOff(ctx, hint), notify, c.timer)
	span.SetAttributes(attribute.Int(telemetry.AttrHTTPAttempts, attempt))
	if err != nil {
		c.logFailure(logger, err)
		recordError(span, err)
		return err
	}

	contentType := final.Header().Get(HeaderContentType)
	if err := decode(final.Body(), contentType, url); err != nil {
		if !isJSONMediaType(contentType) {
			logger.Errorf(telemetry.ErrNonJSONResponseTemplate, contentType, url, preview(string(final.Body())))
		}
		recordError(span, err)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) logFailure(logger *log.Entry, err error) {
	httpErr, ok := err.(*HTTPError)
	if !ok {
		logger.WithError(err).Debug("Request failed")
		return
	}
	switch {
	case httpErr.IsUnauthorized():
		logger.Errorf(telemetry.ErrUnauthorizedTemplate, httpErr.StatusCode, httpErr.URL)
	case httpErr.Exhausted():
		logger.WithFields(log.Fields{
			"attempts": httpErr.Attempts,
			"status":   httpErr.StatusCode,
		}).Warn("Retry attempts exhausted")
	default:
		logger.WithField("status", httpErr.StatusCode).Debug("Non-retryable response")
	}
}

func isJSONMediaType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}
