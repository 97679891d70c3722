package handler

import (
	"net/http"
	"strings"

	"apivengers/internal/scaffold"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CustomEndpointRequest struct {
	Name         string `json:"name"`
	Method       string `json:"method"`
	Path         string `json:"path"`
	AuthRequired bool   `json:"authRequired"`
	Role         string `json:"role"`
}

// CRUDRequest selects the generated operations for a schema. Operations
// defaults to all five.
type CRUDRequest struct {
	SchemaName string                  `json:"schemaName"`
	Access     scaffold.Access         `json:"access"`
	Operations *scaffold.Ops           `json:"operations"`
	Custom     []CustomEndpointRequest `json:"custom"`
	Save       bool                    `json:"save"`
}

// ScaffoldCRUD generates endpoint descriptors and, when asked, stores them
// in place of the schema's current endpoints.
func (h *Handler) ScaffoldCRUD(c echo.Context) error {
	var req CRUDRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.SchemaName) == "" {
		return errorJSON(c, http.StatusBadRequest, "Schema name is required")
	}
	ops := scaffold.AllOps
	if req.Operations != nil {
		ops = *req.Operations
	}

	endpoints := scaffold.GenerateCRUD(req.SchemaName, req.Access, ops)
	for _, ce := range req.Custom {
		e, err := scaffold.CustomEndpoint(req.SchemaName, ce.Name, ce.Method, ce.Path, ce.AuthRequired, ce.Role)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		endpoints = append(endpoints, e)
	}

	if !req.Save {
		return c.JSON(http.StatusOK, map[string]any{
			"count":     len(endpoints),
			"endpoints": endpoints,
		})
	}

	ctx := c.Request().Context()
	n, err := h.store.ReplaceEndpoints(ctx, req.SchemaName, endpoints)
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	saved, err := h.store.ListEndpoints(ctx, req.SchemaName)
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	zap.L().Info("CRUD endpoints generated", zap.String("schema", req.SchemaName), zap.Int("count", n))
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Endpoints saved successfully",
		"count":     n,
		"endpoints": saved,
	})
}

// AuthRequest tunes the generated authentication bundle. It may come from
// the query string or a JSON body.
type AuthRequest struct {
	Save              bool   `query:"save" json:"save"`
	SeedAdminEmail    string `json:"seedAdminEmail"`
	SeedAdminPassword string `json:"seedAdminPassword"`
}

// ScaffoldAuth renders the authentication bundle from the first user-like
// saved schema. With save set the bundle is itself stored as a schema.
func (h *Handler) ScaffoldAuth(c echo.Context) error {
	var req AuthRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	ctx := c.Request().Context()
	schemas, err := h.store.ListSchemas(ctx)
	if err != nil {
		return storeError(c, err, schemaNotFound)
	}

	code, err := scaffold.AuthSource(schemas, scaffold.AuthOptions{
		SeedAdminEmail:    req.SeedAdminEmail,
		SeedAdminPassword: req.SeedAdminPassword,
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	resp := map[string]any{"code": code}
	user, ok := scaffold.UserSchema(schemas)
	if ok {
		resp["schemaName"] = user.Name
	}
	if req.Save && ok {
		saved, err := h.store.SaveSchema(ctx, scaffold.AuthSchemaName(h.now()), code)
		if err != nil {
			return storeError(c, err, schemaNotFound)
		}
		resp["id"] = saved.ID
		resp["name"] = saved.Name
	}
	return c.JSON(http.StatusOK, resp)
}
