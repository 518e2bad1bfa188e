// Package rest implements the request dispatcher behind the Guacamole
// resource managers. It builds URLs under the gateway's /api prefix,
// attaches the session token, and normalizes responses: JSON bodies come
// back as raw bytes, empty 204 replies come back nil, and any status of 400
// or above becomes a typed *HTTPError.
package rest

import (
	"bytes"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/guacops/go-guacamole/apperrors"
)

// Configurator supplies the dispatcher with everything that varies per
// session: the gateway base URL, the current auth token, and whether the
// token travels in a cookie instead of a query parameter. The session
// object implements this so token refresh is visible to every manager.
type Configurator interface {
	BaseURL() string
	AuthToken() string
	UseCookies() bool
}

// ErrNoToken is returned when a request requiring authentication is issued
// with no session token, e.g. after logout. The request never reaches the
// network.
var ErrNoToken = apperrors.New("no session token: authenticate first").SetStatusCode(http.StatusUnauthorized)

// HTTPError represents a non-2xx response from the gateway.
type HTTPError struct {
	StatusCode int    // HTTP status code of the error
	Message    string // server error message, or raw body when undecodable
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	return e.Message
}

// Client dispatches HTTP requests on behalf of the resource managers.
type Client struct {
	config     Configurator
	httpClient *http.Client
}

// ClientOptions controls transport behavior. Both toggles are passed
// straight through to net/http and never renegotiated per call.
type ClientOptions struct {
	SkipTLSVerify    bool // if true, skips TLS certificate validation
	DisableRedirects bool // if true, 3xx responses are returned as-is
}

// NewClient creates a dispatcher for the given session configuration.
func NewClient(config Configurator, opts ClientOptions) *Client {
	httpClient := &http.Client{}

	if opts.SkipTLSVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}
	if opts.DisableRedirects {
		httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	if config.UseCookies() {
		jar, err := cookiejar.New(nil)
		if err == nil {
			httpClient.Jar = jar
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// RequestOptions describes a single request. Path is relative to the
// gateway's api/ prefix, e.g. "session/data/mysql/users" or "tokens".
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST, PUT, PATCH, DELETE)
	Path        string            // endpoint path under api/
	QueryParams map[string]string // optional query parameters
	Body        []byte            // optional JSON request body
	Form        url.Values        // optional form body; takes precedence over Body
	SkipAuth    bool              // true for the token handshake endpoints
}

// DoRequest issues a single request and returns the response body and
// status. The session token is attached as a token= query parameter unless
// the session uses cookies or SkipAuth is set. Statuses of 400 and above
// are returned as *HTTPError carrying the decoded message field when the
// body has one.
func (c *Client) DoRequest(opts RequestOptions) ([]byte, int, error) {
	u, err := url.Parse(c.config.BaseURL())
	if err != nil {
		return nil, 0, apperrors.New("invalid base URL").Err(err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = path.Join(u.Path, "api", opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	if !opts.SkipAuth && !c.config.UseCookies() {
		token := c.config.AuthToken()
		if token == "" {
			return nil, 0, ErrNoToken
		}
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()

	var bodyReader io.Reader
	contentType := "application/json"
	if opts.Form != nil {
		bodyReader = strings.NewReader(opts.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	} else if opts.Body != nil {
		bodyReader = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequest(opts.Method, u.String(), bodyReader)
	if err != nil {
		return nil, 0, apperrors.New("failed to create request").Err(err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", contentType)
	}

	reqID := uuid.NewString()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Str("req_id", reqID).Str("method", opts.Method).Str("path", opts.Path).Err(err).Msg("request failed")
		return nil, 0, apperrors.New("request failed").Err(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, apperrors.New("failed to read response body").Err(err)
	}

	log.Debug().
		Str("req_id", reqID).
		Str("method", opts.Method).
		Str("path", opts.Path).
		Int("status", resp.StatusCode).
		Msg("api request")

	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, resp.StatusCode, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if len(body) == 0 {
		return nil, resp.StatusCode, nil
	}
	return body, resp.StatusCode, nil
}

// Get issues a GET and returns the decoded body.
func (c *Client) Get(endpoint string, params map[string]string) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method:      http.MethodGet,
		Path:        endpoint,
		QueryParams: params,
	})
	return body, err
}

// Post issues a POST with a JSON body. Creates respond 200 with the stored
// entity; the decoded body is returned.
func (c *Client) Post(endpoint string, params map[string]string, data []byte) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method:      http.MethodPost,
		Path:        endpoint,
		QueryParams: params,
		Body:        data,
	})
	return body, err
}

// Put issues a PUT with a JSON body. Replacements respond 204; the body is
// nil in that case.
func (c *Client) Put(endpoint string, params map[string]string, data []byte) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method:      http.MethodPut,
		Path:        endpoint,
		QueryParams: params,
		Body:        data,
	})
	return body, err
}

// Patch issues a PATCH with a JSON body, used for permission edits and
// active connection removal.
func (c *Client) Patch(endpoint string, params map[string]string, data []byte) ([]byte, error) {
	body, _, err := c.DoRequest(RequestOptions{
		Method:      http.MethodPatch,
		Path:        endpoint,
		QueryParams: params,
		Body:        data,
	})
	return body, err
}

// Delete issues a DELETE. Removals respond 204.
func (c *Client) Delete(endpoint string, params map[string]string) error {
	_, _, err := c.DoRequest(RequestOptions{
		Method:      http.MethodDelete,
		Path:        endpoint,
		QueryParams: params,
	})
	return err
}
