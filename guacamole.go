// Package guacamole is a client for the Apache Guacamole remote desktop
// gateway's HTTP management API. A Client authenticates once against the
// token endpoint and exposes typed managers for users, connections,
// connection groups, active connections, user groups, sharing profiles,
// schema metadata, and permissions.
//
// All manager calls are synchronous and issue exactly one HTTP request.
// Nothing is cached and nothing is retried: every read is a fresh fetch and
// every failure surfaces once, immediately. A Client is not safe for
// concurrent use; callers sharing one across goroutines must serialize
// access themselves.
package guacamole

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/guacops/go-guacamole/apperrors"
	"github.com/guacops/go-guacamole/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrAuthenticationFailed indicates the token handshake was rejected or the
// login response was malformed.
var ErrAuthenticationFailed = apperrors.New("authentication failed").SetStatusCode(http.StatusUnauthorized)

// ErrNotAuthenticated indicates a manager call was made with no session
// token, e.g. after Logout. It matches rest.ErrNoToken.
var ErrNotAuthenticated = rest.ErrNoToken

// Options configures a Client at construction time. Hostname, Username and
// Password are required; everything else has a working default.
type Options struct {
	Hostname string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`

	// Secret is an optional base32 TOTP secret. When set, the current
	// 6-digit code is appended to the password during authentication,
	// following the Guacamole TOTP extension convention.
	Secret string

	Protocol string `validate:"omitempty,oneof=http https"` // default https
	Port     int    `validate:"omitempty,min=1,max=65535"`  // default 443 (https) or 8080 (http)

	// BasePath is the URL path the gateway is served under, e.g.
	// "/guacamole/". Defaults to "/".
	BasePath string

	// Datasource overrides the server's primary datasource for all
	// manager operations.
	Datasource string

	// UseCookies switches token transport from the token= query parameter
	// to a cookie jar.
	UseCookies bool

	// SkipTLSVerify disables TLS certificate validation.
	SkipTLSVerify bool

	// DisableRedirects stops the transport from following 3xx responses.
	DisableRedirects bool

	// LogLevel is a zerolog level name ("debug", "info", "warn", ...).
	// Defaults to "info".
	LogLevel string
}

func (o *Options) setDefaults() {
	if o.Protocol == "" {
		o.Protocol = "https"
	}
	if o.Port == 0 {
		if o.Protocol == "http" {
			o.Port = 8080
		} else {
			o.Port = 443
		}
	}
	if o.BasePath == "" {
		o.BasePath = "/"
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
}

func (o Options) baseURL() string {
	return fmt.Sprintf("%s://%s:%d%s", o.Protocol, o.Hostname, o.Port, o.BasePath)
}

// Client is the top-level handle. All eight managers are constructed
// eagerly at New and share the session token by reference, so logout and
// re-authentication are visible to every one of them.
type Client struct {
	session *Session
	rest    *rest.Client

	Users             *Users
	Connections       *Connections
	ConnectionGroups  *ConnectionGroups
	ActiveConnections *ActiveConnections
	UserGroups        *UserGroups
	SharingProfiles   *SharingProfiles
	Schema            *Schema
	Permissions       *Permissions
}

// New validates the options, authenticates against the gateway, and returns
// a ready Client. Fails with ErrAuthenticationFailed when the handshake is
// rejected or the login response carries no authToken.
func New(opts Options) (*Client, error) {
	opts.setDefaults()
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(opts); err != nil {
		return nil, apperrors.New("invalid client options").Err(err)
	}
	initLogger(opts.LogLevel)

	session := newSession(opts.baseURL(), opts.UseCookies)
	dispatcher := rest.NewClient(session, rest.ClientOptions{
		SkipTLSVerify:    opts.SkipTLSVerify,
		DisableRedirects: opts.DisableRedirects,
	})

	if err := session.authenticate(dispatcher, opts); err != nil {
		return nil, err
	}

	c := &Client{
		session: session,
		rest:    dispatcher,
	}
	c.bindManagers(session.primaryDatasource)
	return c, nil
}

func (c *Client) bindManagers(datasource string) {
	m := manager{datasource: datasource, api: c.rest}
	c.Users = &Users{m}
	c.Connections = &Connections{m}
	c.ConnectionGroups = &ConnectionGroups{m}
	c.ActiveConnections = &ActiveConnections{m}
	c.UserGroups = &UserGroups{m}
	c.SharingProfiles = &SharingProfiles{m}
	c.Schema = &Schema{m}
	c.Permissions = &Permissions{m}
}

// WithDatasource returns a Client whose managers operate against the given
// datasource. The session and its token are shared with the receiver.
func (c *Client) WithDatasource(datasource string) *Client {
	cp := &Client{
		session: c.session,
		rest:    c.rest,
	}
	cp.bindManagers(datasource)
	return cp
}

// Logout revokes the session token. The stored token is cleared even when
// revocation fails, so a stale token is never reused; the revocation
// failure is still returned.
func (c *Client) Logout() error {
	return c.session.logout(c.rest)
}

// JSONToken exchanges an extension-issued JSON credential payload for a
// token. The session state is not touched; this serves out-of-band flows
// distinct from the primary session.
func (c *Client) JSONToken(payload []byte) (string, error) {
	return c.session.jsonToken(c.rest, payload)
}

// Token returns the current session token, empty after logout.
func (c *Client) Token() string {
	return c.session.token
}

// PrimaryDatasource returns the datasource manager operations default to.
func (c *Client) PrimaryDatasource() string {
	return c.session.primaryDatasource
}

// Datasources returns the datasources the server advertised at login.
func (c *Client) Datasources() []string {
	return c.session.availableDatasources
}

func initLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
