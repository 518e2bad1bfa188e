package guacamole

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/guacops/go-guacamole/payload"
)

// Connections manages connections in a datasource.
type Connections struct {
	manager
}

// List fetches all connections, keyed by identifier.
func (c *Connections) List() ([]byte, error) {
	return c.list("connections")
}

// Details fetches a single connection by identifier.
func (c *Connections) Details(identifier string) ([]byte, error) {
	return c.get("connections", identifier)
}

// Parameters fetches a connection's protocol parameters.
func (c *Connections) Parameters(identifier string) ([]byte, error) {
	return c.get("connections", identifier, "parameters")
}

// Create creates a connection. The payload's protocol field selects the
// template it is validated against (ssh, rdp or vnc). A server-side 400
// returns (nil, nil) instead of an error.
func (c *Connections) Create(data []byte) ([]byte, error) {
	template, err := templateForProtocol(data)
	if err != nil {
		return nil, err
	}
	return c.create("connections", data, template)
}

// Update replaces a connection's record. Partial payloads are accepted.
func (c *Connections) Update(identifier string, data []byte) error {
	template, err := templateForProtocol(data)
	if err != nil {
		return err
	}
	return c.update("connections", identifier, data, template)
}

// Delete removes a connection.
func (c *Connections) Delete(identifier string) error {
	return c.delete("connections", identifier)
}

// GetByName fetches the connection list and returns the first connection
// whose name matches: exact, case-sensitive comparison, or a regular
// expression search when useRegex is set. Returns nil when nothing matches.
func (c *Connections) GetByName(name string, useRegex bool) ([]byte, error) {
	matcher, err := newNameMatcher(name, useRegex)
	if err != nil {
		return nil, err
	}
	list, err := c.List()
	if err != nil {
		return nil, err
	}
	return findFirstByName(list, matcher), nil
}

// FilterByName is GetByName returning every match instead of the first.
func (c *Connections) FilterByName(name string, useRegex bool) ([][]byte, error) {
	matcher, err := newNameMatcher(name, useRegex)
	if err != nil {
		return nil, err
	}
	list, err := c.List()
	if err != nil {
		return nil, err
	}
	return findAllByName(list, matcher), nil
}

func templateForProtocol(data []byte) ([]byte, error) {
	switch protocol := gjson.GetBytes(data, "protocol").String(); protocol {
	case "ssh":
		return payload.SSHConnection(), nil
	case "rdp":
		return payload.RDPConnection(), nil
	case "vnc":
		return payload.VNCConnection(), nil
	default:
		return nil, payload.ErrValidation.New(fmt.Sprintf("unsupported connection protocol %q", protocol))
	}
}
