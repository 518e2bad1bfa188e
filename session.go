package guacamole

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/guacops/go-guacamole/otp"
	"github.com/guacops/go-guacamole/rest"
)

// Session holds the state produced by the token handshake. It implements
// rest.Configurator, so the dispatcher always reads the live token; managers
// reference the session, they never copy it. Only authenticate and logout
// mutate it.
type Session struct {
	baseURL              string
	primaryDatasource    string
	availableDatasources []string
	token                string
	useCookies           bool
}

func newSession(baseURL string, useCookies bool) *Session {
	return &Session{
		baseURL:    baseURL,
		useCookies: useCookies,
	}
}

// BaseURL implements rest.Configurator.
func (s *Session) BaseURL() string { return s.baseURL }

// AuthToken implements rest.Configurator.
func (s *Session) AuthToken() string { return s.token }

// UseCookies implements rest.Configurator.
func (s *Session) UseCookies() bool { return s.useCookies }

// authenticate performs the form-encoded login against api/tokens. When a
// TOTP secret is configured, the current code is concatenated onto the
// password, matching the Guacamole TOTP extension.
func (s *Session) authenticate(api *rest.Client, opts Options) error {
	password := opts.Password
	if opts.Secret != "" {
		code, err := otp.TOTP(opts.Secret)
		if err != nil {
			return ErrAuthenticationFailed.Err(err)
		}
		password += code
	}

	body, _, err := api.DoRequest(rest.RequestOptions{
		Method:   http.MethodPost,
		Path:     "tokens",
		Form:     url.Values{"username": {opts.Username}, "password": {password}},
		SkipAuth: true,
	})
	if err != nil {
		var httpErr *rest.HTTPError
		if errors.As(err, &httpErr) {
			return ErrAuthenticationFailed.Msg(httpErr.Message).SetStatusCode(httpErr.StatusCode)
		}
		return ErrAuthenticationFailed.Err(err)
	}

	token := gjson.GetBytes(body, "authToken").String()
	if token == "" {
		return ErrAuthenticationFailed.New("login response carries no authToken")
	}
	s.token = token

	s.primaryDatasource = gjson.GetBytes(body, "dataSource").String()
	if opts.Datasource != "" {
		s.primaryDatasource = opts.Datasource
	}
	s.availableDatasources = s.availableDatasources[:0]
	for _, ds := range gjson.GetBytes(body, "dataSources").Array() {
		s.availableDatasources = append(s.availableDatasources, ds.String())
	}

	log.Info().
		Str("username", opts.Username).
		Str("datasource", s.primaryDatasource).
		Msg("authenticated")
	return nil
}

// logout revokes the token with DELETE api/tokens/{token}. The token is
// cleared unconditionally, even when revocation fails.
func (s *Session) logout(api *rest.Client) error {
	token := s.token
	s.token = ""
	if token == "" {
		return nil
	}

	_, _, err := api.DoRequest(rest.RequestOptions{
		Method:   http.MethodDelete,
		Path:     "tokens/" + token,
		SkipAuth: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("token revocation failed; local token cleared anyway")
		return err
	}
	log.Info().Msg("logged out")
	return nil
}

// jsonToken posts a JSON credential payload to the token endpoint and
// returns the resulting token without touching session state.
func (s *Session) jsonToken(api *rest.Client, payload []byte) (string, error) {
	body, _, err := api.DoRequest(rest.RequestOptions{
		Method:   http.MethodPost,
		Path:     "tokens",
		Body:     payload,
		SkipAuth: true,
	})
	if err != nil {
		var httpErr *rest.HTTPError
		if errors.As(err, &httpErr) {
			return "", ErrAuthenticationFailed.Msg(httpErr.Message).SetStatusCode(httpErr.StatusCode)
		}
		return "", ErrAuthenticationFailed.Err(err)
	}

	token := gjson.GetBytes(body, "authToken").String()
	if token == "" {
		return "", ErrAuthenticationFailed.New("token response carries no authToken")
	}
	return token, nil
}
