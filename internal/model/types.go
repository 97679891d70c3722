package model

import "fmt"

// FieldType is the storage type of a Field.
type FieldType string

const (
	TypeString     FieldType = "String"
	TypeNumber     FieldType = "Number"
	TypeBoolean    FieldType = "Boolean"
	TypeDate       FieldType = "Date"
	TypeObjectID   FieldType = "ObjectId"
	TypeArray      FieldType = "Array"
	TypeObject     FieldType = "Object"
	TypeBuffer     FieldType = "Buffer"
	TypeMixed      FieldType = "Mixed"
	TypeDecimal128 FieldType = "Decimal128"
	TypeMap        FieldType = "Map"
)

// FieldTypes lists every supported type in display order.
var FieldTypes = []FieldType{
	TypeString, TypeNumber, TypeBoolean, TypeDate, TypeObjectID, TypeArray,
	TypeObject, TypeBuffer, TypeMixed, TypeDecimal128, TypeMap,
}

// Valid reports whether t is one of FieldTypes.
func (t FieldType) Valid() bool {
	for _, v := range FieldTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseFieldType validates s as a FieldType. An empty string yields TypeString.
func ParseFieldType(s string) (FieldType, error) {
	if s == "" {
		return TypeString, nil
	}
	t := FieldType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

// RelationshipKind is the cardinality of a Relationship.
type RelationshipKind string

const (
	OneToOne   RelationshipKind = "one-to-one"
	OneToMany  RelationshipKind = "one-to-many"
	ManyToOne  RelationshipKind = "many-to-one"
	ManyToMany RelationshipKind = "many-to-many"
)

// DefaultRelationshipKind is staged by a connect gesture.
const DefaultRelationshipKind = OneToMany

// RelationshipKinds lists every supported kind in display order.
var RelationshipKinds = []RelationshipKind{OneToOne, OneToMany, ManyToOne, ManyToMany}

func (k RelationshipKind) Valid() bool {
	for _, v := range RelationshipKinds {
		if v == k {
			return true
		}
	}
	return false
}

func (k RelationshipKind) IsManyToMany() bool {
	return k == ManyToMany
}

// ReferenceFieldType is the type of the field generated for a relationship
// of kind k.
func (k RelationshipKind) ReferenceFieldType() FieldType {
	if k.IsManyToMany() {
		return TypeArray
	}
	return TypeObjectID
}

// ParseRelationshipKind validates s. An empty string yields DefaultRelationshipKind.
func ParseRelationshipKind(s string) (RelationshipKind, error) {
	if s == "" {
		return DefaultRelationshipKind, nil
	}
	k := RelationshipKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown relationship kind %q", s)
	}
	return k, nil
}
