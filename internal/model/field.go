package model

import "strings"

// TextRules are the validation attributes meaningful for String fields.
type TextRules struct {
	Trim      bool `json:"trim,omitempty"`
	Lowercase bool `json:"lowercase,omitempty"`
	Uppercase bool `json:"uppercase,omitempty"`
	MinLength *int `json:"minlength,omitempty"`
	MaxLength *int `json:"maxlength,omitempty"`
}

// IsZero reports whether no rule is set.
func (r TextRules) IsZero() bool {
	return !r.Trim && !r.Lowercase && !r.Uppercase && r.MinLength == nil && r.MaxLength == nil
}

// NumericRules are the validation attributes meaningful for Number fields.
type NumericRules struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r NumericRules) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// Reference marks a field as pointing at another entity.
//
// TargetID is authoritative while the target is live; TargetLabel is the
// label last seen for it and is what gets emitted once the target is gone.
// A reference typed in by hand has only a TargetLabel.
type Reference struct {
	TargetID    string           `json:"targetId,omitempty"`
	TargetLabel string           `json:"referenceTo"`
	Kind        RelationshipKind `json:"referenceType,omitempty"`
}

// Field is one attribute of an Entity.
//
// Text is only kept for String fields and Numeric only for Number fields;
// Normalize enforces that.
type Field struct {
	Name       string        `json:"name"`
	Type       FieldType     `json:"type"`
	Required   bool          `json:"required,omitempty"`
	Unique     bool          `json:"unique,omitempty"`
	PrimaryKey bool          `json:"primaryKey,omitempty"`
	Default    string        `json:"defaultValue,omitempty"`
	Text       *TextRules    `json:"text,omitempty"`
	Numeric    *NumericRules `json:"numeric,omitempty"`
	Ref        *Reference    `json:"ref,omitempty"`
}

// IsReference reports whether the field encodes a relationship.
func (f Field) IsReference() bool {
	return f.Ref != nil
}

// HasName reports whether the name is non-empty after trimming.
func (f Field) HasName() bool {
	return strings.TrimSpace(f.Name) != ""
}

// HasKnownType reports whether the type is one of the FieldType values or
// empty, which Normalize turns into String.
func (f Field) HasKnownType() bool {
	return f.Type == "" || f.Type.Valid()
}

// Normalize drops attributes that do not apply to the field's type and
// defaults an empty type to String.
func (f Field) Normalize() Field {
	if f.Type == "" {
		f.Type = TypeString
	}
	if f.Type != TypeString || (f.Text != nil && f.Text.IsZero()) {
		f.Text = nil
	}
	if f.Type != TypeNumber || (f.Numeric != nil && f.Numeric.IsZero()) {
		f.Numeric = nil
	}
	return f.Clone()
}

// Clone returns a deep copy.
func (f Field) Clone() Field {
	if f.Text != nil {
		t := *f.Text
		t.MinLength = cloneInt(t.MinLength)
		t.MaxLength = cloneInt(t.MaxLength)
		f.Text = &t
	}
	if f.Numeric != nil {
		n := *f.Numeric
		n.Min = cloneFloat(n.Min)
		n.Max = cloneFloat(n.Max)
		f.Numeric = &n
	}
	if f.Ref != nil {
		r := *f.Ref
		f.Ref = &r
	}
	return f
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Int returns a pointer to v, for building TextRules.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building NumericRules.
func Float(v float64) *float64 { return &v }
