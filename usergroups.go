package guacamole

import (
	"github.com/guacops/go-guacamole/payload"
)

// UserGroups manages user groups in a datasource.
type UserGroups struct {
	manager
}

// List fetches all user groups, keyed by identifier.
func (g *UserGroups) List() ([]byte, error) {
	return g.list("userGroups")
}

// Details fetches a single user group by identifier.
func (g *UserGroups) Details(identifier string) ([]byte, error) {
	return g.get("userGroups", identifier)
}

// Create creates a user group from a payload shaped like
// payload.UserGroup(). A server-side 400 returns (nil, nil).
func (g *UserGroups) Create(data []byte) ([]byte, error) {
	return g.create("userGroups", data, payload.UserGroup())
}

// Update replaces a user group's record. Partial payloads are accepted.
func (g *UserGroups) Update(identifier string, data []byte) error {
	return g.update("userGroups", identifier, data, payload.UserGroup())
}

// Delete removes a user group. Some server versions answer this endpoint
// with a 500 even when the group was removed (a known server-side defect);
// that status is surfaced as a regular HTTPError and callers of this one
// operation should be prepared for it.
func (g *UserGroups) Delete(identifier string) error {
	return g.delete("userGroups", identifier)
}

// MemberUsers fetches the usernames belonging to a group.
func (g *UserGroups) MemberUsers(identifier string) ([]byte, error) {
	return g.get("userGroups", identifier, "memberUsers")
}

// AddMember adds a user to a group.
func (g *UserGroups) AddMember(identifier, username string) error {
	_, err := g.patch([]patchOp{{
		Op:    patchAdd,
		Path:  "/",
		Value: username,
	}}, "userGroups", identifier, "memberUsers")
	return err
}

// RemoveMember removes a user from a group.
func (g *UserGroups) RemoveMember(identifier, username string) error {
	_, err := g.patch([]patchOp{{
		Op:    patchRemove,
		Path:  "/",
		Value: username,
	}}, "userGroups", identifier, "memberUsers")
	return err
}
