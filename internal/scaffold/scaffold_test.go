package scaffold

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"apivengers/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateCRUD(t *testing.T) {
	eps := GenerateCRUD("Product", AccessPrivate, AllOps)
	require.Len(t, eps, 5)

	want := []struct{ name, method, path string }{
		{"Get All Product", "GET", "/api/product"},
		{"Get Product by ID", "GET", "/api/product/:id"},
		{"Create Product", "POST", "/api/product"},
		{"Update Product", "PUT", "/api/product/:id"},
		{"Delete Product", "DELETE", "/api/product/:id"},
	}
	for i, w := range want {
		assert.Equal(t, w.name, eps[i].Name)
		assert.Equal(t, w.method, eps[i].Method)
		assert.Equal(t, w.path, eps[i].Path)
		assert.True(t, eps[i].AuthRequired)
		assert.Equal(t, RoleUser, eps[i].Role)
		assert.True(t, eps[i].Enabled)
		assert.False(t, eps[i].IsCustom)
	}
	assert.Equal(t, "Fetch all Product records", eps[0].Description)

	eps = GenerateCRUD("Product", AccessPublic, Ops{GetAll: true, Delete: true})
	require.Len(t, eps, 2)
	assert.Equal(t, "DELETE", eps[1].Method)
	assert.False(t, eps[0].AuthRequired)
	assert.Equal(t, RoleAny, eps[0].Role)

	assert.Empty(t, GenerateCRUD("Product", AccessAdmin, Ops{}))
}

func TestAuthConfig(t *testing.T) {
	cases := map[Access][2]any{
		AccessPublic:  {false, "any"},
		AccessPrivate: {true, "user"},
		AccessAdmin:   {true, "admin"},
		"weird":       {false, "any"},
	}
	for a, want := range cases {
		auth, role := AuthConfig(a)
		assert.Equal(t, want[0], auth, a)
		assert.Equal(t, want[1], role, a)
	}
}

func TestCustomEndpoint(t *testing.T) {
	e, err := CustomEndpoint("Product", "Search", "get", "search", false, "")
	require.NoError(t, err)
	assert.Equal(t, "/api/product/search", e.Path)
	assert.Equal(t, "GET", e.Method)
	assert.Equal(t, "Search", e.Description)
	assert.Equal(t, RoleUser, e.Role)
	assert.True(t, e.IsCustom)

	e, err = CustomEndpoint("Product", "Stats", "POST", "/stats", true, "admin")
	require.NoError(t, err)
	assert.Equal(t, "/api/product/stats", e.Path)

	_, err = CustomEndpoint("Product", " ", "GET", "/x", false, "")
	assert.ErrorIs(t, err, ErrEndpointName)
	_, err = CustomEndpoint("Product", "X", "GET", "", false, "")
	assert.ErrorIs(t, err, ErrEndpointPath)
	_, err = CustomEndpoint("Product", "X", "TRACE", "/x", false, "")
	assert.ErrorIs(t, err, ErrEndpointMethod)
}

func TestRoutesSource(t *testing.T) {
	eps := GenerateCRUD("Product", AccessPublic, AllOps)
	ptrs := make([]*store.Endpoint, len(eps))
	for i := range eps {
		ptrs[i] = &eps[i]
	}
	ptrs[2].AuthRequired = true
	ptrs[4].Enabled = false
	custom, _ := CustomEndpoint("Product", "Ping", "PATCH", "/ping", false, "")
	ptrs = append(ptrs, &custom)

	src := RoutesSource("Product", ptrs)
	assert.Contains(t, src, "const Product = require('../models/Product');")
	assert.Contains(t, src, "// Fetch all Product records\nrouter.get('/api/product', async (req, res) => {")
	assert.Contains(t, src, "const items = await Product.find();")
	assert.Contains(t, src, "const item = await Product.findById(req.params.id);")
	assert.Contains(t, src, "router.post('/api/product', authenticateMiddleware, async (req, res) => {")
	assert.Contains(t, src, "{ new: true }")
	assert.NotContains(t, src, "findByIdAndDelete", "disabled endpoints are skipped")
	assert.Contains(t, src, "router.patch('/api/product/ping', async (req, res) => {\n  try {\n    // Custom endpoint logic here")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(src), "module.exports = router;"))
	assert.Equal(t, "ProductRoutes.js", RoutesFileName("Product"))
}

func TestAuthSource(t *testing.T) {
	out, err := AuthSource([]*store.Schema{{Name: "Blog"}}, AuthOptions{})
	require.NoError(t, err)
	assert.Equal(t, NoAuthSchema, out)

	schemas := []*store.Schema{
		{Name: "Blog", MongooseSchema: "blog"},
		{Name: "AppUsers", MongooseSchema: "const userSchema = 1;"},
		{Name: "AuthTokens", MongooseSchema: "tokens"},
	}
	out, err = AuthSource(schemas, AuthOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "// Using schema: AppUsers")
	assert.Contains(t, out, "const userSchema = 1;")
	assert.Contains(t, out, "const authenticateMiddleware = ")
	assert.Contains(t, out, "const requireRole = ")
	assert.NotContains(t, out, "ADMIN SEED")

	out, err = AuthSource(schemas, AuthOptions{
		SeedAdminEmail:    "root@example.com",
		SeedAdminPassword: "s3cret",
		BcryptCost:        bcrypt.MinCost,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "email: 'root@example.com'")
	start := strings.Index(out, "password: '") + len("password: '")
	hash := out[start : start+strings.Index(out[start:], "'")]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestProbe(t *testing.T) {
	var gotPath, gotMethod, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod, gotAuth = r.URL.Path, r.Method, r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = nil
		json.Unmarshal(data, &gotBody)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("gone"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := NewProber("")
	ctx := context.Background()

	res, err := p.Probe(ctx, srv.URL+"/", store.Endpoint{Method: "PUT", Path: "/api/product/:id", AuthRequired: true, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"ok":true}`, string(res.Body))
	assert.Equal(t, "/api/product/123", gotPath)
	assert.Equal(t, "PUT", gotMethod)
	assert.Equal(t, "Test Item", gotBody["name"])

	require.True(t, strings.HasPrefix(gotAuth, "Bearer "))
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(gotAuth, "Bearer "), &ProbeClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(DefaultJWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(*ProbeClaims)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.UserID)
	assert.NotEmpty(t, claims.Email)

	res, err = p.Probe(ctx, srv.URL, store.Endpoint{Method: "DELETE", Path: "/api/product/:id"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "gone", res.Text)
	assert.Empty(t, gotAuth)
	assert.Nil(t, gotBody)
}

func TestProbeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewProber("x").Probe(context.Background(), url, store.Endpoint{Method: "GET", Path: "/"})
	assert.Error(t, err)
}

func TestAllowedTargetHosts(t *testing.T) {
	p := NewProber("x")
	assert.NoError(t, p.CheckTarget("http://LOCALHOST:3000"))
	assert.NoError(t, p.CheckTarget("https://127.0.0.1"))
	assert.NoError(t, p.CheckTarget("http://[::1]:8080/"))
	for _, bad := range []string{"ftp://localhost", "localhost:3000", "http://169.254.169.254", "http://10.0.0.1:80", "::"} {
		assert.ErrorIs(t, p.CheckTarget(bad), ErrProbeTarget, bad)
	}

	_, err := p.Probe(context.Background(), "http://10.0.0.1", store.Endpoint{Method: "GET", Path: "/"})
	assert.ErrorIs(t, err, ErrProbeTarget)

	p.AllowHosts("api.internal")
	assert.NoError(t, p.CheckTarget("http://api.internal:8080"))
	assert.ErrorIs(t, p.CheckTarget("http://localhost"), ErrProbeTarget)

	p.AllowHosts("*")
	assert.NoError(t, p.CheckTarget("https://example.com"))
}

func TestRedirectToOtherHostIsRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://169.254.169.254/latest/meta-data", http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewProber("x").Probe(context.Background(), srv.URL, store.Endpoint{Method: "GET", Path: "/api/item"})
	assert.ErrorIs(t, err, ErrProbeTarget)
}
