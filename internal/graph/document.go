package graph

import (
	"errors"
	"fmt"
	"strings"

	"apivengers/internal/model"
)

// Document is the serialisable form of a graph.
type Document struct {
	Entities []model.Entity       `json:"entities"`
	Edges    []model.Relationship `json:"edges"`
}

// Snapshot returns a deep copy of the graph as a Document.
func (g *Graph) Snapshot() Document {
	return Document{
		Entities: g.Entities(),
		Edges:    g.Edges(),
	}
}

// Restore replaces the graph with doc. The graph is left unchanged if doc
// is inconsistent.
func (g *Graph) Restore(doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	entities := make([]*model.Entity, len(doc.Entities))
	for i, e := range doc.Entities {
		c := e.Clone()
		c.Label = strings.TrimSpace(c.Label)
		for j := range c.Fields {
			c.Fields[j] = c.Fields[j].Normalize()
		}
		if c.Fields == nil {
			c.Fields = []model.Field{}
		}
		entities[i] = &c
	}
	g.entities = entities
	g.edges = append([]model.Relationship(nil), doc.Edges...)
	return nil
}

// Validate checks the invariants a graph must hold: unique ids, named
// entities and fields, known types, and edges between live entities.
func (d Document) Validate() error {
	var errs []error
	ids := make(map[string]bool, len(d.Entities))
	for i, e := range d.Entities {
		switch {
		case e.ID == "":
			errs = append(errs, fmt.Errorf("entity %d: missing id", i))
		case ids[e.ID]:
			errs = append(errs, fmt.Errorf("entity %d: duplicate id %q", i, e.ID))
		}
		ids[e.ID] = true
		if strings.TrimSpace(e.Label) == "" {
			errs = append(errs, fmt.Errorf("entity %q: empty label", e.ID))
		}
		for j, f := range e.Fields {
			if !f.HasName() {
				errs = append(errs, fmt.Errorf("entity %q field %d: empty name", e.Label, j))
			}
			if f.Type != "" && !f.Type.Valid() {
				errs = append(errs, fmt.Errorf("entity %q field %q: unknown type %q", e.Label, f.Name, f.Type))
			}
		}
	}

	edgeIDs := make(map[string]bool, len(d.Edges))
	for i, edge := range d.Edges {
		if edge.ID == "" || edgeIDs[edge.ID] {
			errs = append(errs, fmt.Errorf("edge %d: missing or duplicate id %q", i, edge.ID))
		}
		edgeIDs[edge.ID] = true
		if !ids[edge.Source] || !ids[edge.Target] {
			errs = append(errs, fmt.Errorf("edge %q: endpoint not found", edge.ID))
		}
		if !edge.Kind.Valid() {
			errs = append(errs, fmt.Errorf("edge %q: unknown kind %q", edge.ID, edge.Kind))
		}
	}
	return errors.Join(errs...)
}
