package model

// Position is a canvas coordinate. It has no effect on compiled output.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entity is one record type on the canvas; it compiles to one schema
// declaration.
type Entity struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Fields   []Field  `json:"fields"`
	Position Position `json:"position"`
}

// Clone returns a deep copy.
func (e Entity) Clone() Entity {
	fields := make([]Field, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.Clone()
	}
	e.Fields = fields
	return e
}

// Relationship is a directed edge between two entities.
type Relationship struct {
	ID     string           `json:"id"`
	Source string           `json:"source"`
	Target string           `json:"target"`
	Kind   RelationshipKind `json:"kind"`
}

// Label is the edge's display text.
func (r Relationship) Label() string {
	return string(r.Kind)
}
