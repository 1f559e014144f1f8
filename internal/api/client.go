package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	// CSRFCookie is the cookie the backend issues alongside the session.
	CSRFCookie = "csrf_access_token"

	// CSRFHeader carries the CSRF token on every mutating request.
	CSRFHeader = "X-CSRF-Token"

	localBaseURL = "http://localhost:5000/api"
)

// BaseURLForHost derives the API root from the host the client is
// pointed at. Local development talks to the backend directly on :5000.
func BaseURLForHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || host == "localhost" {
		return localBaseURL
	}
	return "https://" + host + "/api"
}

// Client is a thin HTTP client for the email-assistant REST API.
// It keeps the session in a cookie jar, injects the CSRF header on
// mutating verbs, and makes exactly one attempt per call.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
}

// NewClient creates a client rooted at baseURL. A zero timeout leaves
// requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		baseURL: u,
		jar:     jar,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the session cookies currently held for the API host.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, typically with cookies restored from the
// keyring at startup.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
}

// ClearSession expires every cookie held for the API host.
func (c *Client) ClearSession() {
	var expired []*http.Cookie
	for _, ck := range c.jar.Cookies(c.baseURL) {
		expired = append(expired, &http.Cookie{
			Name:   ck.Name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
	if len(expired) > 0 {
		c.jar.SetCookies(c.baseURL, expired)
	}
}

// csrfToken reads the current CSRF cookie. It is looked up on every
// request so a rotated token is picked up immediately.
func (c *Client) csrfToken() string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == CSRFCookie {
			return ck.Value
		}
	}
	return ""
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request and unmarshals the JSON response.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// do builds the request, attaches session and CSRF state, and decodes
// either the result or a typed *Error.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	result any,
) error {
	endpoint := c.baseURL.String() + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if isMutating(method) {
		req.Header.Set(CSRFHeader, c.csrfToken())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{
			Kind:    KindTransport,
			Method:  method,
			Path:    path,
			Message: UnknownErrorMessage,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Kind:    KindTransport,
			Status:  resp.StatusCode,
			Method:  method,
			Path:    path,
			Message: UnknownErrorMessage,
			Err:     fmt.Errorf("reading response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(method, path, resp.StatusCode, respBody)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}

// pagePath appends per_page/page query parameters to path.
func pagePath(path string, perPage, page int) string {
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", fmt.Sprint(page))
	return path + "?" + q.Encode()
}
