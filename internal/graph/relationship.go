package graph

import (
	"strings"

	"apivengers/internal/model"
)

// Descriptor is a staged relationship between two entities. Nothing in the
// graph changes until it is passed to ConfirmRelationship.
type Descriptor struct {
	Source    string                 `json:"source"`
	Target    string                 `json:"target"`
	Kind      model.RelationshipKind `json:"kind"`
	FieldName string                 `json:"fieldName"`
}

// Connect stages a relationship from source to target with the default kind
// and a field name derived from the target's label.
func (g *Graph) Connect(sourceID, targetID string) (Descriptor, bool) {
	source, target := g.find(sourceID), g.find(targetID)
	if source == nil || target == nil {
		return Descriptor{}, false
	}
	return Descriptor{
		Source:    sourceID,
		Target:    targetID,
		Kind:      model.DefaultRelationshipKind,
		FieldName: ReferenceFieldName(target.Label),
	}, true
}

// ReferenceFieldName is the default name of a field referencing label.
func ReferenceFieldName(label string) string {
	return strings.ToLower(label) + "Id"
}

// ConfirmRelationship appends a reference field to the source entity and an
// edge to the graph. The two are independent afterwards: removing one does
// not remove the other.
func (g *Graph) ConfirmRelationship(d Descriptor) (model.Relationship, bool) {
	source, target := g.find(d.Source), g.find(d.Target)
	if source == nil || target == nil {
		return model.Relationship{}, false
	}
	kind := d.Kind
	if kind == "" {
		kind = model.DefaultRelationshipKind
	}
	if !kind.Valid() || strings.TrimSpace(d.FieldName) == "" {
		return model.Relationship{}, false
	}

	source.Fields = append(source.Fields, model.Field{
		Name:     d.FieldName,
		Type:     kind.ReferenceFieldType(),
		Required: true,
		Ref: &model.Reference{
			TargetID:    target.ID,
			TargetLabel: target.Label,
			Kind:        kind,
		},
	})

	edge := model.Relationship{
		ID:     g.newID(),
		Source: source.ID,
		Target: target.ID,
		Kind:   kind,
	}
	g.edges = append(g.edges, edge)
	return edge, true
}
