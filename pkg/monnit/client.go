// Package monnit provides the HTTP client for the imonnit.com JSON API
// with error classification, optional retries, and request metrics.
package monnit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Monnit API operations.
var (
	monnitRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monnit_requests_total",
		Help: "Total Monnit API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	monnitRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "monnit_request_duration_seconds",
		Help:    "Monnit API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	monnitErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monnit_errors_total",
		Help: "Total Monnit API errors by class",
	}, []string{"class"})
)

// Client is the Monnit API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, without trailing slash.
	BaseURL string

	// APIToken is the Monnit authorization token, embedded in every URL path.
	APIToken string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry policy for transient failures.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration for the given token.
func DefaultConfig(apiToken string) Config {
	return Config{
		BaseURL:   "https://www.imonnit.com",
		APIToken:  apiToken,
		UserAgent: "monnit-export/1.0",
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new Monnit API client.
func New(cfg Config) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("authorization token is required")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "monnit-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// NetworkList fetches the networks visible to the configured token.
func (c *Client) NetworkList(ctx context.Context) ([]Network, error) {
	var networks []Network
	if err := c.get(ctx, "NetworkList", nil, &networks); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(networks)).Msg("Fetched network list")
	return networks, nil
}

// SensorList fetches the sensors belonging to a network.
func (c *Client) SensorList(ctx context.Context, networkID int64) ([]Sensor, error) {
	query := url.Values{}
	query.Set("NetworkID", fmt.Sprintf("%d", networkID))

	var sensors []Sensor
	if err := c.get(ctx, "SensorList", query, &sensors); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int64("network_id", networkID).
		Int("count", len(sensors)).
		Msg("Fetched sensor list")
	return sensors, nil
}

// SensorDataMessages fetches the measurement rows for one sensor over one
// window. The window must not exceed the provider's maximum span; callers
// split larger windows beforehand.
func (c *Client) SensorDataMessages(ctx context.Context, sensorID int64, from, to time.Time) ([]DataMessage, error) {
	query := url.Values{}
	query.Set("sensorID", fmt.Sprintf("%d", sensorID))
	query.Set("fromDate", from.Format(DateFormat))
	query.Set("toDate", to.Format(DateFormat))

	var rows []DataMessage
	if err := c.get(ctx, "SensorDataMessages", query, &rows); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int64("sensor_id", sensorID).
		Int("rows", len(rows)).
		Msg("Fetched sensor data messages")
	return rows, nil
}

// get performs a GET against one JSON endpoint and decodes the Result
// element of the response envelope into out.
func (c *Client) get(ctx context.Context, method string, query url.Values, out any) error {
	endpoint := "/json/" + method

	startTime := time.Now()
	defer func() {
		monnitRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	requestURL := c.config.BaseURL + endpoint + "/" + c.config.APIToken
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Executing Monnit API request")

	var body []byte

	err := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			monnitErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			monnitRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "transport failure",
				Err:        err,
			}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			errorClass := classifyStatus(resp.StatusCode)
			monnitErrorsTotal.WithLabelValues(string(errorClass)).Inc()
			monnitRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errorClass)).
				Msg("Monnit API request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errorClass,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			monnitErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassNetwork,
				Message:    "read response body",
				Err:        err,
			}
		}

		monnitRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	}, classifyError)

	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	if len(env.Result) == 0 {
		return nil
	}

	// Numbers stay json.Number so measurement values survive the round
	// trip to CSV without float re-formatting.
	dec := json.NewDecoder(bytes.NewReader(env.Result))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}

	return nil
}

// classifyError maps an error back to its class for retry decisions.
func classifyError(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
