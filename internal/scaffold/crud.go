// Package scaffold generates endpoint descriptors and Express/Mongoose
// source text from saved schemas, and probes generated endpoints.
package scaffold

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"apivengers/internal/store"
)

// Access selects the auth settings of generated CRUD endpoints.
type Access string

const (
	AccessPublic  Access = "public"
	AccessPrivate Access = "private"
	AccessAdmin   Access = "admin"
)

// Roles an endpoint can require.
const (
	RoleAny   = "any"
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AuthConfig returns the authRequired flag and role for an access level.
// Unknown levels are treated as public.
func AuthConfig(a Access) (bool, string) {
	switch a {
	case AccessPrivate:
		return true, RoleUser
	case AccessAdmin:
		return true, RoleAdmin
	default:
		return false, RoleAny
	}
}

// Ops picks which CRUD operations to generate.
type Ops struct {
	GetAll  bool `json:"getAll"`
	GetByID bool `json:"getById"`
	Create  bool `json:"create"`
	Update  bool `json:"update"`
	Delete  bool `json:"delete"`
}

// AllOps selects every operation.
var AllOps = Ops{GetAll: true, GetByID: true, Create: true, Update: true, Delete: true}

// BasePath is the route prefix of a schema's endpoints.
func BasePath(schemaName string) string {
	return "/api/" + strings.ToLower(schemaName)
}

// GenerateCRUD returns the selected CRUD descriptors for schemaName, in
// get-all, get-by-id, create, update, delete order.
func GenerateCRUD(schemaName string, access Access, ops Ops) []store.Endpoint {
	base := BasePath(schemaName)
	authRequired, role := AuthConfig(access)

	out := []store.Endpoint{}
	add := func(selected bool, name, method, path, description string) {
		if !selected {
			return
		}
		out = append(out, store.Endpoint{
			SchemaName:   schemaName,
			Name:         name,
			Method:       method,
			Path:         path,
			Description:  description,
			Enabled:      true,
			AuthRequired: authRequired,
			Role:         role,
		})
	}
	add(ops.GetAll, "Get All "+schemaName, http.MethodGet, base, fmt.Sprintf("Fetch all %s records", schemaName))
	add(ops.GetByID, "Get "+schemaName+" by ID", http.MethodGet, base+"/:id", fmt.Sprintf("Fetch single %s record", schemaName))
	add(ops.Create, "Create "+schemaName, http.MethodPost, base, fmt.Sprintf("Create new %s record", schemaName))
	add(ops.Update, "Update "+schemaName, http.MethodPut, base+"/:id", fmt.Sprintf("Update existing %s record", schemaName))
	add(ops.Delete, "Delete "+schemaName, http.MethodDelete, base+"/:id", fmt.Sprintf("Delete %s record", schemaName))
	return out
}

var (
	ErrEndpointName   = errors.New("endpoint name is required")
	ErrEndpointPath   = errors.New("endpoint path is required")
	ErrEndpointMethod = errors.New("unsupported method")
)

// Methods a custom endpoint may use.
var Methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// CustomEndpoint builds a user-defined endpoint mounted under the schema's
// base path. An empty method means GET and an empty role means user.
func CustomEndpoint(schemaName, name, method, path string, authRequired bool, role string) (store.Endpoint, error) {
	name = strings.TrimSpace(name)
	path = strings.TrimSpace(path)
	if name == "" {
		return store.Endpoint{}, ErrEndpointName
	}
	if path == "" {
		return store.Endpoint{}, ErrEndpointPath
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return store.Endpoint{}, fmt.Errorf("%w: %s", ErrEndpointMethod, method)
	}
	if role == "" {
		role = RoleUser
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return store.Endpoint{
		SchemaName:   schemaName,
		Name:         name,
		Method:       method,
		Path:         BasePath(schemaName) + path,
		Description:  name,
		IsCustom:     true,
		Enabled:      true,
		AuthRequired: authRequired,
		Role:         role,
	}, nil
}

func validMethod(m string) bool {
	for _, v := range Methods {
		if v == m {
			return true
		}
	}
	return false
}
