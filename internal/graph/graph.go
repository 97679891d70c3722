// Package graph holds the designer's entity/relationship graph and every
// mutation that can be applied to it.
//
// Operations that are rejected because of user input (blank names, ids that
// no longer resolve) report false and leave the graph untouched. Only caller
// bugs, such as an out-of-range field index, are returned as errors.
package graph

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"apivengers/internal/model"

	"github.com/google/uuid"
)

// ErrFieldIndex is returned when a field index does not exist on the entity.
var ErrFieldIndex = errors.New("field index out of range")

// Canvas bounds used for the initial position of new entities.
const (
	canvasWidth  = 500
	canvasHeight = 400
)

// Graph is the in-memory designer graph. It is not safe for concurrent use;
// callers serialise access.
type Graph struct {
	entities []*model.Entity
	edges    []model.Relationship
	newID    func() string
	rnd      *rand.Rand
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) { g.newID = fn }
}

// WithRand sets the source used to place new entities.
func WithRand(r *rand.Rand) Option {
	return func(g *Graph) { g.rnd = r }
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		newID: uuid.NewString,
		rnd:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the number of live entities.
func (g *Graph) Len() int {
	return len(g.entities)
}

// Entities returns a deep copy of the entities in insertion order.
func (g *Graph) Entities() []model.Entity {
	out := make([]model.Entity, len(g.entities))
	for i, e := range g.entities {
		out[i] = e.Clone()
	}
	return out
}

// Edges returns a copy of the relationship edges in insertion order.
func (g *Graph) Edges() []model.Relationship {
	out := make([]model.Relationship, len(g.edges))
	copy(out, g.edges)
	return out
}

// Entity returns a copy of the entity with the given id.
func (g *Graph) Entity(id string) (model.Entity, bool) {
	e := g.find(id)
	if e == nil {
		return model.Entity{}, false
	}
	return e.Clone(), true
}

func (g *Graph) find(id string) *model.Entity {
	for _, e := range g.entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// AddEntity creates an entity with no fields at a random position and
// returns its id. A name that is blank after trimming is ignored.
func (g *Graph) AddEntity(name string) (string, bool) {
	label := strings.TrimSpace(name)
	if label == "" {
		return "", false
	}
	e := &model.Entity{
		ID:     g.newID(),
		Label:  label,
		Fields: []model.Field{},
		Position: model.Position{
			X: g.rnd.Float64() * canvasWidth,
			Y: g.rnd.Float64() * canvasHeight,
		},
	}
	g.entities = append(g.entities, e)
	return e.ID, true
}

// DeleteEntity removes the entity and every edge touching it. Reference
// fields on other entities that point at it are kept.
func (g *Graph) DeleteEntity(id string) bool {
	idx := -1
	for i, e := range g.entities {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	g.entities = append(g.entities[:idx], g.entities[idx+1:]...)

	kept := g.edges[:0]
	for _, edge := range g.edges {
		if edge.Source != id && edge.Target != id {
			kept = append(kept, edge)
		}
	}
	g.edges = kept
	return true
}

// RenameEntity changes an entity's label. References held by other fields
// follow the rename.
func (g *Graph) RenameEntity(id, name string) bool {
	label := strings.TrimSpace(name)
	e := g.find(id)
	if e == nil || label == "" {
		return false
	}
	e.Label = label
	for _, other := range g.entities {
		for i := range other.Fields {
			if ref := other.Fields[i].Ref; ref != nil && ref.TargetID == id {
				ref.TargetLabel = label
			}
		}
	}
	return true
}

// MoveEntity updates the canvas position of an entity.
func (g *Graph) MoveEntity(id string, pos model.Position) bool {
	e := g.find(id)
	if e == nil {
		return false
	}
	e.Position = pos
	return true
}

// AddField appends f to the entity's fields. A blank name or an unknown
// type is a no-op.
func (g *Graph) AddField(entityID string, f model.Field) bool {
	e := g.find(entityID)
	if e == nil || !f.HasName() || !f.HasKnownType() {
		return false
	}
	e.Fields = append(e.Fields, f.Normalize())
	return true
}

// UpdateField replaces the field at index.
func (g *Graph) UpdateField(entityID string, index int, f model.Field) (bool, error) {
	e := g.find(entityID)
	if e == nil {
		return false, nil
	}
	if index < 0 || index >= len(e.Fields) {
		return false, fmt.Errorf("update %s[%d]: %w", e.Label, index, ErrFieldIndex)
	}
	if !f.HasName() || !f.HasKnownType() {
		return false, nil
	}
	e.Fields[index] = f.Normalize()
	return true, nil
}

// DeleteField removes the field at index; later fields shift down by one.
func (g *Graph) DeleteField(entityID string, index int) (bool, error) {
	e := g.find(entityID)
	if e == nil {
		return false, nil
	}
	if index < 0 || index >= len(e.Fields) {
		return false, fmt.Errorf("delete %s[%d]: %w", e.Label, index, ErrFieldIndex)
	}
	e.Fields = append(e.Fields[:index], e.Fields[index+1:]...)
	return true, nil
}

// DeleteEdge removes a single edge. The reference field it generated stays.
func (g *Graph) DeleteEdge(id string) bool {
	for i, edge := range g.edges {
		if edge.ID == id {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes all entities and edges.
func (g *Graph) Clear() {
	g.entities = nil
	g.edges = nil
}
