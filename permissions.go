package guacamole

// Permissions reads and edits the permission sets attached to users.
// Connection-scoped grants live on Users.AssignConnection; this manager
// covers reads and system-level permissions such as ADMINISTER or
// CREATE_CONNECTION.
type Permissions struct {
	manager
}

// Get fetches the permissions granted directly to a user.
func (p *Permissions) Get(username string) ([]byte, error) {
	return p.get("users", username, "permissions")
}

// Effective fetches a user's effective permissions, including those
// inherited through group membership.
func (p *Permissions) Effective(username string) ([]byte, error) {
	return p.get("users", username, "effectivePermissions")
}

// AssignSystem grants a system-level permission to a user.
func (p *Permissions) AssignSystem(username, permission string) error {
	return p.patchSystem(patchAdd, username, permission)
}

// RevokeSystem removes a system-level permission from a user.
func (p *Permissions) RevokeSystem(username, permission string) error {
	return p.patchSystem(patchRemove, username, permission)
}

func (p *Permissions) patchSystem(op, username, permission string) error {
	_, err := p.patch([]patchOp{{
		Op:    op,
		Path:  "/systemPermissions",
		Value: permission,
	}}, "users", username, "permissions")
	return err
}
