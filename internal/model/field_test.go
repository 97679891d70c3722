package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldType(t *testing.T) {
	for _, ft := range FieldTypes {
		got, err := ParseFieldType(string(ft))
		require.NoError(t, err)
		assert.Equal(t, ft, got)
	}

	got, err := ParseFieldType("")
	require.NoError(t, err)
	assert.Equal(t, TypeString, got)

	_, err = ParseFieldType("Integer")
	assert.Error(t, err)
}

func TestRelationshipKind_ReferenceFieldType(t *testing.T) {
	assert.Equal(t, TypeArray, ManyToMany.ReferenceFieldType())
	assert.Equal(t, TypeObjectID, OneToOne.ReferenceFieldType())
	assert.Equal(t, TypeObjectID, OneToMany.ReferenceFieldType())
	assert.Equal(t, TypeObjectID, ManyToOne.ReferenceFieldType())

	k, err := ParseRelationshipKind("")
	require.NoError(t, err)
	assert.Equal(t, OneToMany, k)

	_, err = ParseRelationshipKind("many-to-few")
	assert.Error(t, err)
}

func TestField_NormalizeDropsForeignRules(t *testing.T) {
	f := Field{
		Name:    "age",
		Type:    TypeNumber,
		Text:    &TextRules{Trim: true},
		Numeric: &NumericRules{Min: Float(0)},
	}

	n := f.Normalize()
	assert.Nil(t, n.Text)
	require.NotNil(t, n.Numeric)
	assert.Equal(t, 0.0, *n.Numeric.Min)

	n.Type = TypeString
	n = n.Normalize()
	assert.Nil(t, n.Numeric)
	assert.Nil(t, n.Text)
}

func TestField_NormalizeDefaultsType(t *testing.T) {
	f := Field{Name: "title", Text: &TextRules{}}
	n := f.Normalize()
	assert.Equal(t, TypeString, n.Type)
	assert.Nil(t, n.Text, "empty rules are dropped")
}

func TestField_HasKnownType(t *testing.T) {
	assert.True(t, Field{Name: "a"}.HasKnownType())
	assert.True(t, Field{Name: "a", Type: TypeDecimal128}.HasKnownType())
	assert.False(t, Field{Name: "a", Type: "Integer"}.HasKnownType())
}

func TestField_CloneIsDeep(t *testing.T) {
	f := Field{
		Name: "name",
		Type: TypeString,
		Text: &TextRules{MinLength: Int(2)},
		Ref:  &Reference{TargetLabel: "User"},
	}
	c := f.Clone()
	*c.Text.MinLength = 5
	c.Ref.TargetLabel = "Post"

	assert.Equal(t, 2, *f.Text.MinLength)
	assert.Equal(t, "User", f.Ref.TargetLabel)
}

func TestField_JSONShape(t *testing.T) {
	f := Field{
		Name:     "userId",
		Type:     TypeObjectID,
		Required: true,
		Ref:      &Reference{TargetID: "e1", TargetLabel: "User", Kind: ManyToOne},
	}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "userId",
		"type": "ObjectId",
		"required": true,
		"ref": {"targetId": "e1", "referenceTo": "User", "referenceType": "many-to-one"}
	}`, string(b))
}
