// Package gitlab implements the HTTP gateway to the GitLab v4 REST API.
// A Client is bound to one resolved credential pair and translates tool
// invocations into HTTP calls, normalizing pagination and error responses.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitlabmcp/internal/apperr"
	"gitlabmcp/internal/credentials"
)

const (
	apiPrefix = "/api/v4"

	// requestTimeout bounds every single remote call. Exceeding it yields a
	// transport error, never a retry; retry policy belongs to the caller.
	requestTimeout = 30 * time.Second

	// perPage is the page size used when following paginated listings.
	perPage = "100"
)

// Client issues requests against one GitLab instance with one token. It is
// constructed per invocation from the resolved credentials and holds no
// state beyond them.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a gateway client bound to the given credential pair.
func NewClient(creds credentials.Context) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(creds.BaseURL, "/"),
		token:      creds.Token,
		httpClient: &http.Client{},
	}
}

// Do issues a single HTTP call against the API and returns the decoded
// body. A 2xx response with an empty body yields {"success":true} so every
// successful call produces a JSON payload. Non-2xx responses are mapped to
// normalized errors with the remote message preserved verbatim.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	data, _, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage(`{"success":true}`), nil
	}
	return json.RawMessage(data), nil
}

// Get is shorthand for a single-page GET call.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// GetPaginated follows GitLab's X-Next-Page convention until no further
// page is indicated and returns all pages concatenated into one ordered
// JSON array. A page fetch failure after partial accumulation discards the
// partial sequence; callers see all-or-nothing for paginated listings.
func (c *Client) GetPaginated(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	merged := url.Values{}
	for key, values := range query {
		merged[key] = values
	}
	merged.Set("per_page", perPage)

	var all []json.RawMessage
	page := "1"
	for {
		merged.Set("page", page)
		data, header, err := c.do(ctx, http.MethodGet, path, merged, nil)
		if err != nil {
			return nil, err
		}

		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, apperr.New(apperr.KindTransport, "expected a JSON array from %s, got: %s", path, truncate(data))
		}
		all = append(all, items...)

		page = header.Get("X-Next-Page")
		if page == "" {
			break
		}
	}

	if all == nil {
		all = []json.RawMessage{}
	}
	result, err := json.Marshal(all)
	if err != nil {
		return nil, apperr.New(apperr.KindTransport, "failed to encode paginated result: %v", err)
	}
	return json.RawMessage(result), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, http.Header, error) {
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, apperr.New(apperr.KindValidation, "failed to encode request body: %v", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, nil, apperr.New(apperr.KindTransport, "failed to build request: %v", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, mapTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, mapStatusError(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

func mapTransportError(err error) *apperr.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.New(apperr.KindTransport, "timeout")
	}
	return apperr.New(apperr.KindTransport, "%v", err)
}

func mapStatusError(status int, body []byte) *apperr.Error {
	message := remoteMessage(body)
	if message == "" {
		message = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.New(apperr.KindValidation, "%s", message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.New(apperr.KindAuth, "%s", message)
	case http.StatusNotFound:
		return apperr.New(apperr.KindNotFound, "%s", message)
	case http.StatusConflict:
		return apperr.New(apperr.KindConflict, "%s", message)
	case http.StatusTooManyRequests:
		return apperr.New(apperr.KindRateLimit, "%s", message)
	default:
		return apperr.New(apperr.KindTransport, "unexpected status %d: %s", status, message)
	}
}

// remoteMessage extracts GitLab's error detail, preserved verbatim. The API
// reports failures under either "message" or "error", and "message" may be
// a nested structure for field-level validation errors.
func remoteMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}

	for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
		if len(raw) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}
	return ""
}

func truncate(data []byte) string {
	const limit = 200
	s := string(data)
	if len(s) > limit {
		return fmt.Sprintf("%s... (%d bytes)", s[:limit], len(s))
	}
	return s
}
