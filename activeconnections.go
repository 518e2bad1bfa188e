package guacamole

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/guacops/go-guacamole/rest"
)

// ActiveConnections manages the sessions currently established through the
// gateway.
type ActiveConnections struct {
	manager
}

// List fetches all active connections, keyed by identifier.
func (a *ActiveConnections) List() ([]byte, error) {
	return a.list("activeConnections")
}

// Details fetches a single active connection. A 404 means the session is
// already gone and returns (nil, nil) rather than an error.
func (a *ActiveConnections) Details(identifier string) ([]byte, error) {
	body, err := a.get("activeConnections", identifier)
	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	return body, err
}

// Kill terminates an active connection. The API models this as a bulk
// removal patch against the collection. A 404 — the session already ended —
// is a no-op success returning (nil, nil).
func (a *ActiveConnections) Kill(identifier string) ([]byte, error) {
	body, err := a.patch([]patchOp{{
		Op:   patchRemove,
		Path: "/" + identifier,
	}}, "activeConnections")
	if isStatus(err, http.StatusNotFound) {
		log.Warn().Str("identifier", identifier).Msg("active connection already gone")
		return nil, nil
	}
	return body, err
}

func isStatus(err error, status int) bool {
	var httpErr *rest.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}
