package guacamole

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/guacops/go-guacamole/otp"
)

// mockServer is a minimal in-memory Guacamole gateway used by the manager
// tests, following the real API's shapes: form-encoded token handshake,
// identifier-keyed collections, JSON-patch permission edits.
type mockServer struct {
	t *testing.T

	username string
	password string
	secret   string // when set, login expects password+TOTP

	token      string
	failLogout bool

	brokenUserGroupDelete bool

	// optional fixtures overriding the stored collections
	connectionsJSON string
	groupsJSON      string

	users       map[string]string              // username -> entity JSON
	connections map[string]string              // identifier -> entity JSON
	userGroups  map[string]string              // identifier -> entity JSON
	members     map[string][]string            // group identifier -> usernames
	active      map[string]string              // identifier -> entity JSON
	connPerms   map[string]map[string][]string // username -> connection id -> perms
	groupPerms  map[string]map[string][]string // username -> group id -> perms
	systemPerms map[string][]string            // username -> perms

	lastDatasource string
	nextConnID     int

	srv *httptest.Server
}

func newMockServer(t *testing.T) *mockServer {
	m := &mockServer{
		t:           t,
		username:    "guacadmin",
		password:    "guacadmin",
		users:       map[string]string{},
		connections: map[string]string{},
		userGroups:  map[string]string{},
		members:     map[string][]string{},
		active:      map[string]string{},
		connPerms:   map[string]map[string][]string{},
		groupPerms:  map[string]map[string][]string{},
		systemPerms: map[string][]string{},
		nextConnID:  1,
	}

	r := chi.NewRouter()
	r.Post("/api/tokens", m.handleTokens)
	r.Delete("/api/tokens/{token}", m.handleLogout)

	r.Route("/api/session/data/{datasource}", func(r chi.Router) {
		r.Use(m.requireToken)

		r.Get("/self", m.handleSelf)

		r.Get("/users", m.handleListUsers)
		r.Post("/users", m.handleCreateUser)
		r.Get("/users/{username}", m.handleGetUser)
		r.Put("/users/{username}", m.handleUpdateUser)
		r.Delete("/users/{username}", m.handleDeleteUser)
		r.Put("/users/{username}/password", m.noContent)
		r.Get("/users/{username}/permissions", m.handleGetPermissions)
		r.Get("/users/{username}/effectivePermissions", m.handleGetPermissions)
		r.Patch("/users/{username}/permissions", m.handlePatchPermissions)
		r.Get("/users/{username}/userGroups", m.staticJSON(`[]`))
		r.Get("/users/{username}/history", m.staticJSON(`[]`))

		r.Get("/connections", m.handleListConnections)
		r.Post("/connections", m.handleCreateConnection)
		r.Get("/connections/{id}", m.handleGetConnection)
		r.Get("/connections/{id}/parameters", m.handleConnectionParameters)
		r.Put("/connections/{id}", m.noContent)
		r.Delete("/connections/{id}", m.handleDeleteConnection)

		r.Get("/connectionGroups", m.handleListGroups)
		r.Post("/connectionGroups", m.noContent)
		r.Put("/connectionGroups/{id}", m.noContent)
		r.Delete("/connectionGroups/{id}", m.noContent)

		r.Get("/activeConnections", m.handleListActive)
		r.Get("/activeConnections/{id}", m.handleGetActive)
		r.Patch("/activeConnections", m.handleKillActive)

		r.Get("/userGroups", m.handleListUserGroups)
		r.Post("/userGroups", m.handleCreateUserGroup)
		r.Get("/userGroups/{id}", m.handleGetUserGroup)
		r.Put("/userGroups/{id}", m.noContent)
		r.Delete("/userGroups/{id}", m.handleDeleteUserGroup)
		r.Get("/userGroups/{id}/memberUsers", m.handleListMembers)
		r.Patch("/userGroups/{id}/memberUsers", m.handlePatchMembers)

		r.Get("/sharingProfiles", m.staticJSON(`{}`))
		r.Post("/sharingProfiles", m.noContent)

		r.Get("/schema/protocols", m.staticJSON(`{"ssh":{"name":"ssh"},"rdp":{"name":"rdp"},"vnc":{"name":"vnc"}}`))
		r.Get("/schema/userAttributes", m.staticJSON(`[]`))
	})

	m.srv = httptest.NewServer(r)
	t.Cleanup(m.srv.Close)
	return m
}

// options returns client options pointed at the mock server.
func (m *mockServer) options() Options {
	u, err := url.Parse(m.srv.URL)
	require.NoError(m.t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(m.t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(m.t, err)

	return Options{
		Hostname: host,
		Port:     port,
		Protocol: "http",
		Username: m.username,
		Password: m.password,
		Secret:   m.secret,
		LogLevel: "error",
	}
}

// client authenticates against the mock server.
func (m *mockServer) client(t *testing.T) *Client {
	c, err := New(m.options())
	require.NoError(t, err)
	return c
}

func (m *mockServer) handleTokens(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		// extension-issued JSON credentials
		body, _ := io.ReadAll(r.Body)
		if !gjson.ValidBytes(body) {
			m.writeError(w, http.StatusBadRequest, "malformed credentials")
			return
		}
		m.writeJSON(w, http.StatusOK, `{"authToken":"json-token","dataSource":"json","dataSources":["json"]}`)
		return
	}

	if err := r.ParseForm(); err != nil {
		m.writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	if r.PostForm.Get("username") != m.username || !m.passwordMatches(r.PostForm.Get("password")) {
		m.writeError(w, http.StatusForbidden, "Permission Denied.")
		return
	}

	m.token = "test-token-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	m.writeJSON(w, http.StatusOK, fmt.Sprintf(
		`{"authToken":%q,"authorizationId":"0","dataSource":"mysql","dataSources":["mysql","postgresql"]}`, m.token))
}

// passwordMatches checks the submitted password, accepting TOTP codes from
// the adjacent time steps to avoid boundary flakes.
func (m *mockServer) passwordMatches(submitted string) bool {
	if m.secret == "" {
		return submitted == m.password
	}
	now := time.Now()
	for _, offset := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
		code, err := otp.TOTPAt(m.secret, now.Add(offset))
		require.NoError(m.t, err)
		if submitted == m.password+code {
			return true
		}
	}
	return false
}

func (m *mockServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if m.failLogout {
		m.writeError(w, http.StatusInternalServerError, "revocation failed")
		return
	}
	if chi.URLParam(r, "token") == m.token {
		m.token = ""
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.lastDatasource = chi.URLParam(r, "datasource")
		if m.token == "" || r.URL.Query().Get("token") != m.token {
			m.writeError(w, http.StatusUnauthorized, "Permission Denied.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *mockServer) handleSelf(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, http.StatusOK, fmt.Sprintf(`{"username":%q}`, m.username))
}

func (m *mockServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, http.StatusOK, collectionJSON(m.users))
}

func (m *mockServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	username := gjson.GetBytes(body, "username").String()
	if _, exists := m.users[username]; exists {
		m.writeError(w, http.StatusBadRequest, fmt.Sprintf("User %q already exists.", username))
		return
	}
	m.users[username] = string(body)
	m.writeJSON(w, http.StatusOK, string(body))
}

func (m *mockServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	entity, ok := m.users[chi.URLParam(r, "username")]
	if !ok {
		m.writeError(w, http.StatusNotFound, "no such user")
		return
	}
	m.writeJSON(w, http.StatusOK, entity)
}

func (m *mockServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if _, ok := m.users[username]; !ok {
		m.writeError(w, http.StatusNotFound, "no such user")
		return
	}
	body, _ := io.ReadAll(r.Body)
	m.users[username] = string(body)
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	delete(m.users, chi.URLParam(r, "username"))
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	out := `{"connectionPermissions":{},"connectionGroupPermissions":{},"systemPermissions":[],"userPermissions":{}}`
	for id, perms := range m.connPerms[username] {
		out, _ = sjson.Set(out, "connectionPermissions."+id, perms)
	}
	for id, perms := range m.groupPerms[username] {
		out, _ = sjson.Set(out, "connectionGroupPermissions."+id, perms)
	}
	if perms, ok := m.systemPerms[username]; ok {
		out, _ = sjson.Set(out, "systemPermissions", perms)
	}
	m.writeJSON(w, http.StatusOK, out)
}

func (m *mockServer) handlePatchPermissions(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	body, _ := io.ReadAll(r.Body)

	for _, op := range gjson.ParseBytes(body).Array() {
		kind, path, value := op.Get("op").String(), op.Get("path").String(), op.Get("value").String()
		switch {
		case strings.HasPrefix(path, "/connectionPermissions/"):
			id, perm, ok := splitPermissionPath(strings.TrimPrefix(path, "/connectionPermissions/"))
			if !ok {
				m.writeError(w, http.StatusBadRequest, "malformed patch path")
				return
			}
			m.applyPerm(m.connPerms, username, id, perm, kind)
		case strings.HasPrefix(path, "/connectionGroupPermissions/"):
			id, perm, ok := splitPermissionPath(strings.TrimPrefix(path, "/connectionGroupPermissions/"))
			if !ok {
				m.writeError(w, http.StatusBadRequest, "malformed patch path")
				return
			}
			m.applyPerm(m.groupPerms, username, id, perm, kind)
		case path == "/systemPermissions":
			if kind == "add" {
				m.systemPerms[username] = append(m.systemPerms[username], value)
			} else {
				m.systemPerms[username] = removeString(m.systemPerms[username], value)
			}
		default:
			m.writeError(w, http.StatusBadRequest, "unsupported patch path "+path)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func splitPermissionPath(rest string) (id, perm string, ok bool) {
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (m *mockServer) applyPerm(store map[string]map[string][]string, username, id, perm, kind string) {
	if store[username] == nil {
		store[username] = map[string][]string{}
	}
	if kind == "add" {
		store[username][id] = append(store[username][id], perm)
		return
	}
	store[username][id] = removeString(store[username][id], perm)
	if len(store[username][id]) == 0 {
		delete(store[username], id)
	}
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func (m *mockServer) handleListConnections(w http.ResponseWriter, r *http.Request) {
	if m.connectionsJSON != "" {
		m.writeJSON(w, http.StatusOK, m.connectionsJSON)
		return
	}
	m.writeJSON(w, http.StatusOK, collectionJSON(m.connections))
}

func (m *mockServer) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	name := gjson.GetBytes(body, "name").String()
	for _, entity := range m.connections {
		if gjson.Get(entity, "name").String() == name {
			m.writeError(w, http.StatusBadRequest, fmt.Sprintf("Connection %q already exists.", name))
			return
		}
	}
	id := strconv.Itoa(m.nextConnID)
	m.nextConnID++
	stored, err := sjson.SetBytes(body, "identifier", id)
	require.NoError(m.t, err)
	m.connections[id] = string(stored)
	m.writeJSON(w, http.StatusOK, string(stored))
}

func (m *mockServer) handleGetConnection(w http.ResponseWriter, r *http.Request) {
	entity, ok := m.connections[chi.URLParam(r, "id")]
	if !ok {
		m.writeError(w, http.StatusNotFound, "no such connection")
		return
	}
	m.writeJSON(w, http.StatusOK, entity)
}

func (m *mockServer) handleConnectionParameters(w http.ResponseWriter, r *http.Request) {
	entity, ok := m.connections[chi.URLParam(r, "id")]
	if !ok {
		m.writeError(w, http.StatusNotFound, "no such connection")
		return
	}
	m.writeJSON(w, http.StatusOK, gjson.Get(entity, "parameters").Raw)
}

func (m *mockServer) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := m.connections[id]; !ok {
		m.writeError(w, http.StatusNotFound, "no such connection")
		return
	}
	delete(m.connections, id)
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) handleListGroups(w http.ResponseWriter, r *http.Request) {
	if m.groupsJSON != "" {
		m.writeJSON(w, http.StatusOK, m.groupsJSON)
		return
	}
	m.writeJSON(w, http.StatusOK, `{}`)
}

func (m *mockServer) handleListActive(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, http.StatusOK, collectionJSON(m.active))
}

func (m *mockServer) handleGetActive(w http.ResponseWriter, r *http.Request) {
	entity, ok := m.active[chi.URLParam(r, "id")]
	if !ok {
		m.writeError(w, http.StatusNotFound, "no such active connection")
		return
	}
	m.writeJSON(w, http.StatusOK, entity)
}

func (m *mockServer) handleKillActive(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	for _, op := range gjson.ParseBytes(body).Array() {
		id := strings.TrimPrefix(op.Get("path").String(), "/")
		if _, ok := m.active[id]; !ok {
			m.writeError(w, http.StatusNotFound, "no such active connection")
			return
		}
		delete(m.active, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) handleListUserGroups(w http.ResponseWriter, r *http.Request) {
	m.writeJSON(w, http.StatusOK, collectionJSON(m.userGroups))
}

func (m *mockServer) handleCreateUserGroup(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	id := gjson.GetBytes(body, "identifier").String()
	if _, exists := m.userGroups[id]; exists {
		m.writeError(w, http.StatusBadRequest, fmt.Sprintf("Group %q already exists.", id))
		return
	}
	m.userGroups[id] = string(body)
	m.writeJSON(w, http.StatusOK, string(body))
}

func (m *mockServer) handleGetUserGroup(w http.ResponseWriter, r *http.Request) {
	entity, ok := m.userGroups[chi.URLParam(r, "id")]
	if !ok {
		m.writeError(w, http.StatusNotFound, "no such group")
		return
	}
	m.writeJSON(w, http.StatusOK, entity)
}

func (m *mockServer) handleDeleteUserGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	delete(m.userGroups, id)
	delete(m.members, id)
	if m.brokenUserGroupDelete {
		// mirrors the server defect where the delete succeeds but the
		// response is a 500
		m.writeError(w, http.StatusInternalServerError, "Unexpected internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) handleListMembers(w http.ResponseWriter, r *http.Request) {
	out, err := json.Marshal(m.members[chi.URLParam(r, "id")])
	require.NoError(m.t, err)
	if string(out) == "null" {
		out = []byte(`[]`)
	}
	m.writeJSON(w, http.StatusOK, string(out))
}

func (m *mockServer) handlePatchMembers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, _ := io.ReadAll(r.Body)
	for _, op := range gjson.ParseBytes(body).Array() {
		value := op.Get("value").String()
		if op.Get("op").String() == "add" {
			m.members[id] = append(m.members[id], value)
		} else {
			m.members[id] = removeString(m.members[id], value)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockServer) staticJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.writeJSON(w, http.StatusOK, body)
	}
}

func (m *mockServer) writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (m *mockServer) writeError(w http.ResponseWriter, status int, message string) {
	out, _ := sjson.Set(`{"message":"","translatableMessage":null}`, "message", message)
	m.writeJSON(w, status, out)
}

// collectionJSON renders a stored map as the identifier-keyed object the
// real API returns.
func collectionJSON(entities map[string]string) string {
	out := "{}"
	for key, entity := range entities {
		out, _ = sjson.SetRaw(out, key, entity)
	}
	return out
}
