package guacamole

// Schema exposes the server's protocol and attribute metadata.
type Schema struct {
	manager
}

// Protocols fetches the connection protocols the server supports together
// with their parameter forms.
func (s *Schema) Protocols() ([]byte, error) {
	return s.get("schema", "protocols")
}

// UserAttributes fetches the attribute forms applicable to users.
func (s *Schema) UserAttributes() ([]byte, error) {
	return s.get("schema", "userAttributes")
}
