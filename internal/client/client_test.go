package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"apivengers/internal/canvas"
	"apivengers/internal/handler"
	"apivengers/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	st, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close(ctx) })

	e := echo.New()
	handler.NewHandler(st).Register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestSchemaRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.SaveSchema(ctx, "", "const a = 1;")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Name and Mongoose schema are required", apiErr.Message)

	saved, err := c.SaveSchema(ctx, "Blog", "const a = 1;")
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	list, err := c.ListSchemas(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.False(t, list[0].CreatedAt.IsZero())

	got, err := c.GetSchema(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;", got.MongooseSchema)

	updated, err := c.UpdateSchema(ctx, saved.ID, "Blog", "const a = 2;")
	require.NoError(t, err)
	assert.Equal(t, "const a = 2;", updated.MongooseSchema)

	require.NoError(t, c.DeleteSchema(ctx, saved.ID))
	_, err = c.GetSchema(ctx, saved.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, c.DeleteSchema(ctx, saved.ID), store.ErrNotFound)
}

func TestEndpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	n, err := c.SaveEndpoints(ctx, "Blog Post", []store.Endpoint{
		{Name: "Get All", Method: "GET", Path: "/api/blog post", Enabled: true, Role: "any"},
		{Name: "Create", Method: "POST", Path: "/api/blog post", Enabled: true, AuthRequired: true, Role: "user"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	eps, err := c.ListEndpoints(ctx, "Blog Post")
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, "Blog Post", eps[0].SchemaName)

	name := "List posts"
	e, err := c.UpdateEndpoint(ctx, eps[0].ID, store.EndpointPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, e.Name)
	assert.Equal(t, "GET", e.Method)

	e, err = c.ToggleEndpoint(ctx, eps[1].ID)
	require.NoError(t, err)
	assert.False(t, e.Enabled)

	require.NoError(t, c.DeleteEndpoint(ctx, eps[0].ID))
	assert.ErrorIs(t, c.DeleteEndpoint(ctx, eps[0].ID), store.ErrNotFound)

	deleted, err := c.DeleteEndpointsForSchema(ctx, "Blog Post")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestClientAsCanvasPersistence(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	s := canvas.New(c)
	_, ok := s.AddEntity("User")
	require.True(t, ok)
	text, _ := s.Generate()

	saved, err := s.Save(ctx, "Users")
	require.NoError(t, err)
	assert.Equal(t, text, saved.MongooseSchema)
	require.Len(t, s.SavedSchemas(), 1)

	_, err = s.LoadSaved(ctx, "12345")
	var pe *canvas.PersistenceError
	assert.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL).ListSchemas(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListSchemas(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}
