package guacamole

import (
	"errors"
	"net/http"
	"path"

	"github.com/rs/zerolog/log"

	"github.com/guacops/go-guacamole/payload"
	"github.com/guacops/go-guacamole/rest"
)

// manager carries what every resource manager needs: the datasource its
// paths are scoped to and the shared dispatcher. Managers are stateless
// beyond that; entities are never kept locally.
type manager struct {
	datasource string
	api        rest.Dispatcher
}

// patchOp is a single JSON-patch-style operation as the Guacamole API
// models permission edits and active connection removal.
type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

const (
	patchAdd    = "add"
	patchRemove = "remove"
)

// dataPath builds a datasource-scoped endpoint path under api/.
func (m manager) dataPath(parts ...string) string {
	return path.Join(append([]string{"session/data", m.datasource}, parts...)...)
}

func (m manager) list(resource string) ([]byte, error) {
	return m.api.Get(m.dataPath(resource), nil)
}

func (m manager) get(parts ...string) ([]byte, error) {
	return m.api.Get(m.dataPath(parts...), nil)
}

// create validates data against the template and POSTs it. An HTTP 400 —
// duplicate name or a payload the server rejects — is downgraded to an
// absent result so callers can use a single nil check instead of error
// matching for the common duplicate case.
func (m manager) create(resource string, data, template []byte) ([]byte, error) {
	if err := payload.Validate(data, template, false); err != nil {
		return nil, err
	}
	body, err := m.api.Post(m.dataPath(resource), nil, data)
	if err != nil {
		var httpErr *rest.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
			log.Warn().
				Str("resource", resource).
				Str("reason", httpErr.Message).
				Msg("create rejected, likely duplicate")
			return nil, nil
		}
		return nil, err
	}
	return body, nil
}

// update validates data against the template in partial mode and PUTs it.
func (m manager) update(resource, identifier string, data, template []byte) error {
	if err := payload.Validate(data, template, true); err != nil {
		return err
	}
	_, err := m.api.Put(m.dataPath(resource, identifier), nil, data)
	return err
}

func (m manager) delete(parts ...string) error {
	return m.api.Delete(m.dataPath(parts...), nil)
}

// patch sends a batch of patch operations to a datasource-scoped endpoint.
func (m manager) patch(ops []patchOp, parts ...string) ([]byte, error) {
	data, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	return m.api.Patch(m.dataPath(parts...), nil, data)
}
