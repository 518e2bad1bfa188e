package guacamole

import (
	"github.com/guacops/go-guacamole/payload"
)

// ConnectionGroups manages the organizational, balancing and failover
// containers connections are arranged in.
type ConnectionGroups struct {
	manager
}

// List fetches all connection groups. Depending on the server version the
// result is a flat identifier-keyed map or a tree with nested
// childConnectionGroups.
func (g *ConnectionGroups) List() ([]byte, error) {
	return g.list("connectionGroups")
}

// Details fetches a single connection group by identifier.
func (g *ConnectionGroups) Details(identifier string) ([]byte, error) {
	return g.get("connectionGroups", identifier)
}

// Create creates a connection group from a payload shaped like
// payload.ConnectionGroup(). A server-side 400 returns (nil, nil).
func (g *ConnectionGroups) Create(data []byte) ([]byte, error) {
	return g.create("connectionGroups", data, payload.ConnectionGroup())
}

// Update replaces a connection group's record. Partial payloads are
// accepted.
func (g *ConnectionGroups) Update(identifier string, data []byte) error {
	return g.update("connectionGroups", identifier, data, payload.ConnectionGroup())
}

// Delete removes a connection group.
func (g *ConnectionGroups) Delete(identifier string) error {
	return g.delete("connectionGroups", identifier)
}

// GetByName fetches the group collection and returns the first group whose
// name matches, recursing depth-first into nested childConnectionGroups so
// both the flat and the tree response shapes work. Returns nil when nothing
// matches.
func (g *ConnectionGroups) GetByName(name string, useRegex bool) ([]byte, error) {
	matcher, err := newNameMatcher(name, useRegex)
	if err != nil {
		return nil, err
	}
	list, err := g.List()
	if err != nil {
		return nil, err
	}
	return findGroupByName(list, matcher), nil
}
