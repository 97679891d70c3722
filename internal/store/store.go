// Package store persists compiled schemas and scaffolded endpoint
// descriptors for the HTTP API.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record matches an id.
var ErrNotFound = errors.New("not found")

// Schema is a saved, compiled schema.
type Schema struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	MongooseSchema string    `json:"mongooseSchema"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Endpoint describes one scaffolded route for a schema.
type Endpoint struct {
	ID           string    `json:"_id,omitempty"`
	SchemaName   string    `json:"schemaName"`
	Name         string    `json:"name"`
	Method       string    `json:"method"`
	Path         string    `json:"path"`
	Description  string    `json:"description"`
	IsCustom     bool      `json:"isCustom"`
	Enabled      bool      `json:"enabled"`
	AuthRequired bool      `json:"authRequired"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EndpointPatch carries the fields of a partial endpoint update. Nil fields
// are left unchanged.
type EndpointPatch struct {
	Name         *string `json:"name"`
	Method       *string `json:"method"`
	Path         *string `json:"path"`
	Description  *string `json:"description"`
	IsCustom     *bool   `json:"isCustom"`
	Enabled      *bool   `json:"enabled"`
	AuthRequired *bool   `json:"authRequired"`
	Role         *string `json:"role"`
}

// Empty reports whether the patch changes nothing.
func (p EndpointPatch) Empty() bool {
	return p.Name == nil && p.Method == nil && p.Path == nil && p.Description == nil &&
		p.IsCustom == nil && p.Enabled == nil && p.AuthRequired == nil && p.Role == nil
}

// Apply returns e with the patch applied.
func (p EndpointPatch) Apply(e Endpoint) Endpoint {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Method != nil {
		e.Method = *p.Method
	}
	if p.Path != nil {
		e.Path = *p.Path
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.IsCustom != nil {
		e.IsCustom = *p.IsCustom
	}
	if p.Enabled != nil {
		e.Enabled = *p.Enabled
	}
	if p.AuthRequired != nil {
		e.AuthRequired = *p.AuthRequired
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	return e
}

// Store is the persistence service's storage backend.
type Store interface {
	// SaveSchema always creates a new record, even for a name already in use.
	SaveSchema(ctx context.Context, name, mongooseSchema string) (*Schema, error)
	// ListSchemas returns every schema, newest first.
	ListSchemas(ctx context.Context) ([]*Schema, error)
	GetSchema(ctx context.Context, id string) (*Schema, error)
	UpdateSchema(ctx context.Context, id, name, mongooseSchema string) (*Schema, error)
	DeleteSchema(ctx context.Context, id string) error

	// ReplaceEndpoints drops every endpoint saved for schemaName and stores
	// endpoints in their place, returning how many were stored.
	ReplaceEndpoints(ctx context.Context, schemaName string, endpoints []Endpoint) (int, error)
	// ListEndpoints returns the endpoints of a schema in saved order.
	ListEndpoints(ctx context.Context, schemaName string) ([]*Endpoint, error)
	GetEndpoint(ctx context.Context, id string) (*Endpoint, error)
	UpdateEndpoint(ctx context.Context, id string, patch EndpointPatch) (*Endpoint, error)
	ToggleEndpoint(ctx context.Context, id string) (*Endpoint, error)
	DeleteEndpoint(ctx context.Context, id string) error
	DeleteEndpointsForSchema(ctx context.Context, schemaName string) (int64, error)

	Close(ctx context.Context) error
}
