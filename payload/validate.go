// Package payload holds the JSON templates for creatable Guacamole
// resources and the structural validator applied before create and update
// calls. Validation is local: a malformed payload fails before any network
// round trip.
package payload

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/guacops/go-guacamole/apperrors"
)

// ErrValidation indicates a payload does not match its template. No request
// was sent to the server.
var ErrValidation = apperrors.New("payload validation failed").SetStatusCode(http.StatusBadRequest)

// Validate checks data against template at the top level: every key in data
// must exist in the template, and, unless allowPartial is set, every
// template key must be present in data. Nested attribute and parameter maps
// are not checked against the template's defaults since the server-side
// schema varies per protocol.
func Validate(data, template []byte, allowPartial bool) error {
	if !gjson.ValidBytes(data) {
		return ErrValidation.New("payload is not valid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return ErrValidation.New("payload must be a JSON object")
	}

	dataKeys := topLevelKeys(parsed)
	templateKeys := topLevelKeys(gjson.ParseBytes(template))

	for key := range dataKeys {
		if _, ok := templateKeys[key]; !ok {
			return ErrValidation.New(fmt.Sprintf("unknown key %q in payload", key))
		}
	}
	if allowPartial {
		return nil
	}
	for key := range templateKeys {
		if _, ok := dataKeys[key]; !ok {
			return ErrValidation.New(fmt.Sprintf("payload is missing key %q", key))
		}
	}
	return nil
}

func topLevelKeys(obj gjson.Result) map[string]struct{} {
	keys := make(map[string]struct{})
	obj.ForEach(func(key, _ gjson.Result) bool {
		keys[key.String()] = struct{}{}
		return true
	})
	return keys
}

// Set writes value at the given gjson-style path, returning the updated
// payload. The input slice is not modified.
func Set(data []byte, path string, value any) ([]byte, error) {
	return sjson.SetBytes(data, path, value)
}

// MustSet is Set for statically known paths; it panics on failure. Intended
// for filling template copies where the path is a literal.
func MustSet(data []byte, path string, value any) []byte {
	out, err := sjson.SetBytes(data, path, value)
	if err != nil {
		panic(fmt.Sprintf("payload: set %s: %v", path, err))
	}
	return out
}
