// Package fetcher retrieves the weather forecast and the moon age from public APIs.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/mdouchement/bakuwaki/internal/metrics"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
)

type (
	// Options configures the HTTP calls made to the upstream APIs.
	Options struct {
		Logger     logger.Logger
		HTTPClient *http.Client
		Timeout    time.Duration
		// Attempts is the maximum number of calls made for one request.
		Attempts uint
		// Delay is the base delay of the exponential backoff between attempts.
		Delay time.Duration
	}

	// A StatusError is returned when an upstream API answers with an unexpected status.
	StatusError struct {
		Source string
		Code   int
	}

	client struct {
		source   string
		log      logger.Logger
		http     *http.Client
		attempts uint
		delay    time.Duration
	}
)

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.Source, e.Code)
}

// Temporary returns true when the request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

func newClient(source string, opts Options) *client {
	c := &client{
		source:   source,
		log:      opts.Logger.WithPrefix("[" + source + "]"),
		http:     opts.HTTPClient,
		attempts: opts.Attempts,
		delay:    opts.Delay,
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if c.attempts == 0 {
		c.attempts = 1
	}
	return c
}

// get performs a GET on endpoint and decodes the JSON payload into v.
func (c *client) get(ctx context.Context, endpoint string, params url.Values, v interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveFetch(c.source, err, time.Since(start))
	}()

	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(err, "invalid endpoint")
	}
	u.RawQuery = params.Encode()

	return retry.Do(
		func() error {
			return c.do(ctx, u.String(), v)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warnf("attempt %d/%d failed: %s", n+1, c.attempts, err)
		}),
	)
}

func (c *client) do(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return retry.Unrecoverable(errors.Wrap(err, "could not create request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s request", c.source)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{Source: c.source, Code: resp.StatusCode}
		if err.Temporary() {
			return err
		}
		return retry.Unrecoverable(err)
	}

	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return retry.Unrecoverable(errors.Wrapf(err, "could not decode %s response", c.source))
	}
	return nil
}
