package graph

import (
	"encoding/json"
	"testing"

	"apivengers/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestore(t *testing.T) {
	g := newTestGraph()
	user, _ := g.AddEntity("User")
	post, _ := g.AddEntity("Post")
	g.AddField(user, model.Field{Name: "email", Type: model.TypeString, Required: true})
	d, _ := g.Connect(post, user)
	g.ConfirmRelationship(d)

	raw, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	restored := newTestGraph()
	require.NoError(t, restored.Restore(doc))
	assert.Equal(t, g.Entities(), restored.Entities())
	assert.Equal(t, g.Edges(), restored.Edges())
}

func TestRestore_RejectsDanglingEdge(t *testing.T) {
	g := newTestGraph()
	id, _ := g.AddEntity("Keep")

	err := g.Restore(Document{
		Entities: []model.Entity{{ID: "a", Label: "A"}},
		Edges:    []model.Relationship{{ID: "e1", Source: "a", Target: "b", Kind: model.OneToOne}},
	})
	require.Error(t, err)

	_, ok := g.Entity(id)
	assert.True(t, ok, "graph unchanged after a failed restore")
}

func TestDocumentValidate(t *testing.T) {
	doc := Document{
		Entities: []model.Entity{
			{ID: "a", Label: "A", Fields: []model.Field{{Name: "", Type: "Integer"}}},
			{ID: "a", Label: " "},
		},
		Edges: []model.Relationship{
			{ID: "", Source: "a", Target: "a", Kind: "sideways"},
		},
	}
	err := doc.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "duplicate id")
	assert.Contains(t, msg, "empty label")
	assert.Contains(t, msg, "empty name")
	assert.Contains(t, msg, "unknown type")
	assert.Contains(t, msg, "unknown kind")
}

func TestRestore_NilFieldsBecomeEmpty(t *testing.T) {
	g := newTestGraph()
	require.NoError(t, g.Restore(Document{Entities: []model.Entity{{ID: "a", Label: "A"}}}))

	e, ok := g.Entity("a")
	require.True(t, ok)
	assert.NotNil(t, e.Fields)
}
