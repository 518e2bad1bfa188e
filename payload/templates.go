package payload

// Templates for every creatable Guacamole resource. The top-level keys of a
// template define the exact shape Validate accepts for that resource; nested
// parameter and attribute maps are server-defined and not enforced here.
//
// Accessors return a fresh copy so callers can mutate with Set without
// touching the template itself.

const userTemplate = `{
	"username": "",
	"password": "",
	"attributes": {
		"disabled": "",
		"expired": "",
		"access-window-start": "",
		"access-window-end": "",
		"valid-from": "",
		"valid-until": "",
		"timezone": null,
		"guac-full-name": "",
		"guac-organization": "",
		"guac-organizational-role": ""
	}
}`

const sshConnectionTemplate = `{
	"name": "",
	"parentIdentifier": "ROOT",
	"protocol": "ssh",
	"attributes": {
		"max-connections": "",
		"max-connections-per-user": "",
		"guacd-hostname": "",
		"guacd-port": "",
		"guacd-encryption": ""
	},
	"parameters": {
		"hostname": "",
		"port": "22",
		"username": "",
		"password": "",
		"private-key": "",
		"passphrase": "",
		"font-name": "",
		"font-size": "",
		"color-scheme": "",
		"command": "",
		"enable-sftp": "",
		"sftp-root-directory": ""
	}
}`

const rdpConnectionTemplate = `{
	"name": "",
	"parentIdentifier": "ROOT",
	"protocol": "rdp",
	"attributes": {
		"max-connections": "",
		"max-connections-per-user": "",
		"guacd-hostname": "",
		"guacd-port": "",
		"guacd-encryption": ""
	},
	"parameters": {
		"hostname": "",
		"port": "3389",
		"username": "",
		"password": "",
		"domain": "",
		"security": "any",
		"ignore-cert": "true",
		"disable-auth": "",
		"width": "",
		"height": "",
		"dpi": "",
		"color-depth": "",
		"console": "",
		"enable-wallpaper": "",
		"enable-theming": "",
		"enable-font-smoothing": "",
		"enable-full-window-drag": "",
		"enable-desktop-composition": "",
		"enable-menu-animations": "",
		"enable-drive": "",
		"drive-path": "",
		"create-drive-path": "",
		"resize-method": ""
	}
}`

const vncConnectionTemplate = `{
	"name": "",
	"parentIdentifier": "ROOT",
	"protocol": "vnc",
	"attributes": {
		"max-connections": "",
		"max-connections-per-user": "",
		"guacd-hostname": "",
		"guacd-port": "",
		"guacd-encryption": ""
	},
	"parameters": {
		"hostname": "",
		"port": "5900",
		"username": "",
		"password": "",
		"color-depth": "",
		"swap-red-blue": "",
		"cursor": "",
		"read-only": ""
	}
}`

const connectionGroupTemplate = `{
	"name": "",
	"parentIdentifier": "ROOT",
	"type": "ORGANIZATIONAL",
	"attributes": {
		"max-connections": "",
		"max-connections-per-user": "",
		"enable-session-affinity": ""
	}
}`

const userGroupTemplate = `{
	"identifier": "",
	"attributes": {
		"disabled": ""
	}
}`

const sharingProfileTemplate = `{
	"name": "",
	"primaryConnectionIdentifier": "",
	"parameters": {
		"read-only": ""
	}
}`

// User returns the template for creating a user.
func User() []byte { return []byte(userTemplate) }

// SSHConnection returns the template for creating an SSH connection.
func SSHConnection() []byte { return []byte(sshConnectionTemplate) }

// RDPConnection returns the template for creating an RDP connection.
func RDPConnection() []byte { return []byte(rdpConnectionTemplate) }

// VNCConnection returns the template for creating a VNC connection.
func VNCConnection() []byte { return []byte(vncConnectionTemplate) }

// ConnectionGroup returns the template for creating a connection group.
func ConnectionGroup() []byte { return []byte(connectionGroupTemplate) }

// UserGroup returns the template for creating a user group.
func UserGroup() []byte { return []byte(userGroupTemplate) }

// SharingProfile returns the template for creating a sharing profile.
func SharingProfile() []byte { return []byte(sharingProfileTemplate) }
