package guacamole

import (
	"github.com/guacops/go-guacamole/payload"
)

// SharingProfiles manages the restricted shared views of connections.
type SharingProfiles struct {
	manager
}

// List fetches all sharing profiles, keyed by identifier.
func (s *SharingProfiles) List() ([]byte, error) {
	return s.list("sharingProfiles")
}

// Details fetches a single sharing profile by identifier.
func (s *SharingProfiles) Details(identifier string) ([]byte, error) {
	return s.get("sharingProfiles", identifier)
}

// Parameters fetches a sharing profile's parameters.
func (s *SharingProfiles) Parameters(identifier string) ([]byte, error) {
	return s.get("sharingProfiles", identifier, "parameters")
}

// Create creates a sharing profile from a payload shaped like
// payload.SharingProfile(). A server-side 400 returns (nil, nil).
func (s *SharingProfiles) Create(data []byte) ([]byte, error) {
	return s.create("sharingProfiles", data, payload.SharingProfile())
}

// Update replaces a sharing profile's record. Partial payloads are
// accepted.
func (s *SharingProfiles) Update(identifier string, data []byte) error {
	return s.update("sharingProfiles", identifier, data, payload.SharingProfile())
}

// Delete removes a sharing profile.
func (s *SharingProfiles) Delete(identifier string) error {
	return s.delete("sharingProfiles", identifier)
}
