package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	royaleerrors "github.com/openroyale/clan-exporter/pkg/royale/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RoyaleClient retrieves documents from the Clash Royale REST API. Each
// method returns the decoded JSON body of the corresponding resource.
type RoyaleClient interface {
	Clan(ctx context.Context, tag string) (any, error)
	RiverRaceLog(ctx context.Context, tag string) (any, error)
	CurrentRiverRace(ctx context.Context, tag string) (any, error)
	Player(ctx context.Context, tag string) (any, error)
}

func Debug(enabled string) func(*royaleClient) {
	return func(c *royaleClient) {
		c.debug = (enabled == "true")
	}
}

func MaxRetries(attempts int) func(*royaleClient) {
	return func(c *royaleClient) {
		c.maxRetries = attempts
	}
}

func BackoffFactor(factor float64) func(*royaleClient) {
	return func(c *royaleClient) {
		c.backoffFactor = factor
	}
}

func RequestTimeout(timeout time.Duration) func(*royaleClient) {
	return func(c *royaleClient) {
		c.requestTimeout = timeout
	}
}

// withSleeper replaces the blocking sleep between retries (used by tests)
func withSleeper(sleep func(time.Duration)) func(*royaleClient) {
	return func(c *royaleClient) {
		c.sleep = sleep
	}
}

func New(apiURL, apiToken string, options ...func(*royaleClient)) RoyaleClient {
	c := &royaleClient{
		apiURL:         strings.TrimSuffix(apiURL, "/"),
		apiToken:       apiToken,
		maxRetries:     5,
		backoffFactor:  1.5,
		requestTimeout: 30 * time.Second,
		sleep:          time.Sleep,
		debug:          false,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeClanTag   string = "clan-tag"
	TraceAttributePlayerTag string = "player-tag"
)

var tracer = otel.Tracer("royale-client")

type royaleClient struct {
	apiURL         string
	apiToken       string
	maxRetries     int
	backoffFactor  float64
	requestTimeout time.Duration
	sleep          func(time.Duration)
	debug          bool
}

func (c royaleClient) Clan(ctx context.Context, tag string) (any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-clan",
		trace.WithAttributes(attribute.String(TraceAttributeClanTag, tag)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var doc any
	doc, err = c.getWithRetry(ctx, "/v1/clans/"+EncodeTag(tag))
	return doc, err
}

func (c royaleClient) RiverRaceLog(ctx context.Context, tag string) (any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-riverracelog",
		trace.WithAttributes(attribute.String(TraceAttributeClanTag, tag)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var doc any
	doc, err = c.getWithRetry(ctx, "/v1/clans/"+EncodeTag(tag)+"/riverracelog")
	return doc, err
}

func (c royaleClient) CurrentRiverRace(ctx context.Context, tag string) (any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-currentriverrace",
		trace.WithAttributes(attribute.String(TraceAttributeClanTag, tag)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var doc any
	doc, err = c.getWithRetry(ctx, "/v1/clans/"+EncodeTag(tag)+"/currentriverrace")
	return doc, err
}

func (c royaleClient) Player(ctx context.Context, tag string) (any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-player",
		trace.WithAttributes(attribute.String(TraceAttributePlayerTag, tag)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var doc any
	doc, err = c.getWithRetry(ctx, "/v1/players/"+EncodeTag(tag))
	return doc, err
}

// EncodeTag normalizes a clan or player tag for use in a request path by
// stripping any hash markers, uppercasing and percent encoding the leading
// hash the API expects.
func EncodeTag(tag string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(tag, "#", ""))
	return "%23" + url.PathEscape(cleaned)
}

func (c royaleClient) getWithRetry(ctx context.Context, path string) (any, error) {
	log := logging.GetFromContext(ctx)

	endpoint := c.apiURL + path

	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, respBody, err := c.callAPI(ctx, endpoint)
		if err != nil {
			lastErr = err
			wait := c.backoffDelay(attempt)
			log.Warn("network error", "err", err.Error(), "attempt", attempt, "wait", wait.String())
			c.sleep(wait)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = royaleerrors.ErrRateLimited
			wait := c.backoffDelay(attempt)
			log.Warn("rate limited", "attempt", attempt, "wait", wait.String())
			c.sleep(wait)
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("status code %d (%w)", resp.StatusCode, royaleerrors.ErrServerError)
			wait := c.backoffDelay(attempt)
			log.Warn("server error", "status", resp.StatusCode, "attempt", attempt, "wait", wait.String())
			c.sleep(wait)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, royaleerrors.NewHardFailError(resp.StatusCode, respBody)
		}

		var doc any
		err = json.Unmarshal(respBody, &doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode response body: %w", err)
		}

		return doc, nil
	}

	return nil, fmt.Errorf("%w: %w", royaleerrors.ErrRetriesExhausted, lastErr)
}

func (c royaleClient) backoffDelay(attempt int) time.Duration {
	return time.Duration(math.Pow(c.backoffFactor, float64(attempt)) * float64(time.Second))
}

func (c royaleClient) callAPI(ctx context.Context, endpoint string) (*http.Response, []byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   c.requestTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), royaleerrors.ErrNetwork)
	}

	req.Header.Add("Authorization", "Bearer "+c.apiToken)
	req.Header.Add("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), royaleerrors.ErrNetwork)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), royaleerrors.ErrNetwork)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
	}

	return resp, respBody, nil
}
