package graph

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"apivengers/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph() *Graph {
	n := 0
	return New(
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
}

func TestAddEntity(t *testing.T) {
	g := newTestGraph()

	id, ok := g.AddEntity("  User ")
	require.True(t, ok)

	e, found := g.Entity(id)
	require.True(t, found)
	assert.Equal(t, "User", e.Label)
	assert.Empty(t, e.Fields)
	assert.GreaterOrEqual(t, e.Position.X, 0.0)
	assert.Less(t, e.Position.X, float64(canvasWidth))
	assert.GreaterOrEqual(t, e.Position.Y, 0.0)
	assert.Less(t, e.Position.Y, float64(canvasHeight))
}

func TestAddEntity_BlankNameIsIgnored(t *testing.T) {
	g := newTestGraph()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, ok := g.AddEntity(name)
		assert.False(t, ok, "name %q", name)
	}
	assert.Equal(t, 0, g.Len())
}

func TestAddDeleteSequence_NoOrphansNoDuplicates(t *testing.T) {
	g := newTestGraph()
	r := rand.New(rand.NewPCG(7, 11))
	live := map[string]bool{}
	var order []string

	for i := 0; i < 500; i++ {
		if len(order) == 0 || r.IntN(3) > 0 {
			id, ok := g.AddEntity(fmt.Sprintf("E%d", i))
			require.True(t, ok)
			require.False(t, live[id], "id reused")
			live[id] = true
			order = append(order, id)
			continue
		}
		j := r.IntN(len(order))
		id := order[j]
		order = append(order[:j], order[j+1:]...)
		require.True(t, g.DeleteEntity(id))
		delete(live, id)
	}

	entities := g.Entities()
	require.Len(t, entities, len(live))
	seen := map[string]bool{}
	for _, e := range entities {
		assert.True(t, live[e.ID])
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}

func TestDeleteEntity_CascadesEdges(t *testing.T) {
	g := newTestGraph()
	a, _ := g.AddEntity("A")
	b, _ := g.AddEntity("B")
	c, _ := g.AddEntity("C")

	for _, pair := range [][2]string{{a, b}, {b, c}, {c, a}, {c, b}} {
		d, ok := g.Connect(pair[0], pair[1])
		require.True(t, ok)
		_, ok = g.ConfirmRelationship(d)
		require.True(t, ok)
	}
	require.Len(t, g.Edges(), 4)

	require.True(t, g.DeleteEntity(b))
	for _, edge := range g.Edges() {
		assert.NotEqual(t, b, edge.Source)
		assert.NotEqual(t, b, edge.Target)
	}
	assert.Len(t, g.Edges(), 1)

	assert.False(t, g.DeleteEntity(b), "already deleted")
}

func TestAddField(t *testing.T) {
	g := newTestGraph()
	id, _ := g.AddEntity("User")

	assert.False(t, g.AddField(id, model.Field{Name: "  "}))
	assert.False(t, g.AddField("missing", model.Field{Name: "email"}))
	assert.True(t, g.AddField(id, model.Field{Name: "email", Type: model.TypeString}))
	assert.True(t, g.AddField(id, model.Field{Name: "age"}))

	e, _ := g.Entity(id)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "email", e.Fields[0].Name)
	assert.Equal(t, model.TypeString, e.Fields[1].Type, "empty type defaults to String")
}

func TestUnknownFieldTypeIsIgnored(t *testing.T) {
	g := newTestGraph()
	id, _ := g.AddEntity("User")

	assert.False(t, g.AddField(id, model.Field{Name: "age", Type: "Integer"}))
	require.True(t, g.AddField(id, model.Field{Name: "age", Type: model.TypeNumber}))

	ok, err := g.UpdateField(id, 0, model.Field{Name: "age", Type: "Whatever"})
	require.NoError(t, err)
	assert.False(t, ok)

	e, _ := g.Entity(id)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, model.TypeNumber, e.Fields[0].Type)

	require.NoError(t, New().Restore(g.Snapshot()), "snapshot of an edited graph reloads")
}

func TestUpdateField(t *testing.T) {
	g := newTestGraph()
	id, _ := g.AddEntity("User")
	g.AddField(id, model.Field{Name: "email", Type: model.TypeString})
	g.AddField(id, model.Field{Name: "age", Type: model.TypeNumber})

	ok, err := g.UpdateField(id, 1, model.Field{
		Name:    "age",
		Type:    model.TypeNumber,
		Numeric: &model.NumericRules{Min: model.Float(0)},
		Text:    &model.TextRules{Trim: true},
	})
	require.NoError(t, err)
	require.True(t, ok)

	e, _ := g.Entity(id)
	assert.Nil(t, e.Fields[1].Text)
	require.NotNil(t, e.Fields[1].Numeric)

	ok, err = g.UpdateField(id, 0, model.Field{Name: ""})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = g.UpdateField(id, 2, model.Field{Name: "x"})
	assert.ErrorIs(t, err, ErrFieldIndex)
	_, err = g.UpdateField(id, -1, model.Field{Name: "x"})
	assert.ErrorIs(t, err, ErrFieldIndex)

	ok, err = g.UpdateField("missing", 0, model.Field{Name: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteField_ShiftsIndices(t *testing.T) {
	g := newTestGraph()
	id, _ := g.AddEntity("User")
	for _, n := range []string{"a", "b", "c"} {
		g.AddField(id, model.Field{Name: n})
	}

	ok, err := g.DeleteField(id, 0)
	require.NoError(t, err)
	require.True(t, ok)

	e, _ := g.Entity(id)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "b", e.Fields[0].Name)
	assert.Equal(t, "c", e.Fields[1].Name)

	_, err = g.DeleteField(id, 2)
	assert.ErrorIs(t, err, ErrFieldIndex)
}

func TestEntities_ReturnsCopies(t *testing.T) {
	g := newTestGraph()
	id, _ := g.AddEntity("User")
	g.AddField(id, model.Field{Name: "email"})

	entities := g.Entities()
	entities[0].Label = "Changed"
	entities[0].Fields[0].Name = "changed"

	e, _ := g.Entity(id)
	assert.Equal(t, "User", e.Label)
	assert.Equal(t, "email", e.Fields[0].Name)
}

func TestRenameEntity_UpdatesReferenceSnapshots(t *testing.T) {
	g := newTestGraph()
	user, _ := g.AddEntity("User")
	post, _ := g.AddEntity("Post")
	d, _ := g.Connect(post, user)
	g.ConfirmRelationship(d)

	require.True(t, g.RenameEntity(user, "Account"))
	assert.False(t, g.RenameEntity(user, " "))

	p, _ := g.Entity(post)
	require.Len(t, p.Fields, 1)
	assert.Equal(t, "Account", p.Fields[0].Ref.TargetLabel)
	assert.Equal(t, user, p.Fields[0].Ref.TargetID)
}

func TestMoveEntity(t *testing.T) {
	g := newTestGraph()
	id, _ := g.AddEntity("User")

	assert.True(t, g.MoveEntity(id, model.Position{X: 10, Y: 20}))
	assert.False(t, g.MoveEntity("missing", model.Position{}))

	e, _ := g.Entity(id)
	assert.Equal(t, model.Position{X: 10, Y: 20}, e.Position)
}

func TestClear(t *testing.T) {
	g := newTestGraph()
	a, _ := g.AddEntity("A")
	b, _ := g.AddEntity("B")
	d, _ := g.Connect(a, b)
	g.ConfirmRelationship(d)

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Edges())
}
