package store

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := parseObjectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := parseObjectID(bad)
		assert.ErrorIs(t, err, ErrNotFound, bad)
	}
}

func TestPatchSet(t *testing.T) {
	assert.Empty(t, patchSet(EndpointPatch{}))

	name := "Fetch"
	enabled := false
	set := patchSet(EndpointPatch{Name: &name, Enabled: &enabled})
	assert.Equal(t, bson.M{"name": "Fetch", "enabled": false}, set)
}

func TestEndpointDocRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := newEndpointDoc("User", Endpoint{
		Name: "List", Method: "GET", Path: "/api/users", Enabled: true, Role: "any",
	}, 2, created)
	doc.ID = primitive.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "User", m["schemaName"])
	assert.EqualValues(t, 2, m["position"])
	assert.Equal(t, true, m["enabled"])

	var back endpointDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	e := back.toEndpoint()
	assert.Equal(t, doc.ID.Hex(), e.ID)
	assert.Equal(t, "User", e.SchemaName)
	assert.True(t, e.CreatedAt.Equal(created))
}

func TestSchemaDocIgnoresVersionKey(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{"_id": oid, "name": "Blog", "mongooseSchema": "x", "__v": 0})
	require.NoError(t, err)

	var doc schemaDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	s := doc.toSchema()
	assert.Equal(t, oid.Hex(), s.ID)
	assert.Equal(t, "Blog", s.Name)
}

func TestEndpointPatchApply(t *testing.T) {
	role := "admin"
	custom := true
	e := EndpointPatch{Role: &role, IsCustom: &custom}.Apply(Endpoint{Name: "X", Role: "any"})
	assert.Equal(t, "X", e.Name)
	assert.Equal(t, "admin", e.Role)
	assert.True(t, e.IsCustom)
	assert.True(t, EndpointPatch{}.Empty())
	assert.False(t, EndpointPatch{Role: &role}.Empty())
}
