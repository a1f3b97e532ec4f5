package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/datazip-inc/kwanko/constants"
	"golang.org/x/time/rate"
)

// RemoteError is a stream local failure of the reporting API: a non OK status line, an HTTP
// error status, a transport failure or a timeout
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	var parts []string
	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("endpoint[%s]", e.Endpoint))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status[%d]", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", constants.ErrRemote, strings.Join(parts, " "))
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, constants.ErrRemote) match every RemoteError
func (e *RemoteError) Is(target error) bool {
	return target == constants.ErrRemote
}

// Client issues report requests one at a time, spaced by a rate limiter
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds the client from a validated config; transport may be nil
func NewClient(config *Config, transport http.RoundTripper) *Client {
	return &Client{
		baseURL: config.Host,
		httpClient: &http.Client{
			Timeout:   config.Timeout(),
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}
}

// Fetch calls endpoint with query and decodes the report rows
func (c *Client) Fetch(ctx context.Context, endpoint string, query url.Values) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %s", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// drop the url, it carries the credentials
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &RemoteError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %s", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &RemoteError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: firstLine(body)}
	}

	rows, err := DecodeResponse(body)
	if err != nil {
		var remoteErr *RemoteError
		if errors.As(err, &remoteErr) {
			remoteErr.Endpoint = endpoint
			remoteErr.StatusCode = resp.StatusCode
		}
		return nil, err
	}
	return rows, nil
}

func firstLine(body []byte) string {
	line, _, _ := strings.Cut(string(body), "\n")
	return strings.TrimSpace(line)
}
