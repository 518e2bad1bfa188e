package guacamole

import (
	"github.com/guacops/go-guacamole/payload"
)

// Users manages user accounts in a datasource.
type Users struct {
	manager
}

// List fetches all users, keyed by username.
func (u *Users) List() ([]byte, error) {
	return u.list("users")
}

// Get fetches a single user by username.
func (u *Users) Get(username string) ([]byte, error) {
	return u.get("users", username)
}

// Self fetches the user the session is authenticated as.
func (u *Users) Self() ([]byte, error) {
	return u.get("self")
}

// Create creates a user from a payload shaped like payload.User().
// A server-side 400 (duplicate username or rejected payload) returns
// (nil, nil) instead of an error.
func (u *Users) Create(data []byte) ([]byte, error) {
	return u.create("users", data, payload.User())
}

// Update replaces a user's record. Partial payloads are accepted.
func (u *Users) Update(username string, data []byte) error {
	return u.update("users", username, data, payload.User())
}

// UpdatePassword changes a user's password via the dedicated endpoint.
func (u *Users) UpdatePassword(username, oldPassword, newPassword string) error {
	body, err := json.Marshal(map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	_, err = u.api.Put(u.dataPath("users", username, "password"), nil, body)
	return err
}

// Delete removes a user.
func (u *Users) Delete(username string) error {
	return u.delete("users", username)
}

// Permissions fetches the permissions granted directly to a user.
func (u *Users) Permissions(username string) ([]byte, error) {
	return u.get("users", username, "permissions")
}

// EffectivePermissions fetches the permissions a user holds including those
// inherited through group membership.
func (u *Users) EffectivePermissions(username string) ([]byte, error) {
	return u.get("users", username, "effectivePermissions")
}

// Groups fetches the user groups a user belongs to.
func (u *Users) Groups(username string) ([]byte, error) {
	return u.get("users", username, "userGroups")
}

// History fetches a user's connection history.
func (u *Users) History(username string) ([]byte, error) {
	return u.get("users", username, "history")
}

// AssignConnection grants a user a permission (e.g. "READ") on a connection
// or, when isConnectionGroup is set, on a connection group.
func (u *Users) AssignConnection(username, identifier, permission string, isConnectionGroup bool) error {
	return u.patchConnectionPermission(patchAdd, username, identifier, permission, isConnectionGroup)
}

// RevokeConnection removes a previously granted connection permission.
func (u *Users) RevokeConnection(username, identifier, permission string, isConnectionGroup bool) error {
	return u.patchConnectionPermission(patchRemove, username, identifier, permission, isConnectionGroup)
}

func (u *Users) patchConnectionPermission(op, username, identifier, permission string, isConnectionGroup bool) error {
	prefix := "/connectionPermissions/"
	if isConnectionGroup {
		prefix = "/connectionGroupPermissions/"
	}
	_, err := u.patch([]patchOp{{
		Op:    op,
		Path:  prefix + identifier + "/" + permission,
		Value: "",
	}}, "users", username, "permissions")
	return err
}
