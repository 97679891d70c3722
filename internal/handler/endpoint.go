package handler

import (
	"errors"
	"net/http"
	"strings"

	"apivengers/internal/scaffold"
	"apivengers/internal/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const endpointNotFound = "Endpoint not found"

// EndpointInput is one endpoint in a save request. Enabled defaults to true
// and Role to "any".
type EndpointInput struct {
	Name         string `json:"name"`
	Method       string `json:"method"`
	Path         string `json:"path"`
	Description  string `json:"description"`
	IsCustom     bool   `json:"isCustom"`
	Enabled      *bool  `json:"enabled"`
	AuthRequired bool   `json:"authRequired"`
	Role         string `json:"role"`
}

func (in EndpointInput) endpoint(schemaName string) store.Endpoint {
	e := store.Endpoint{
		SchemaName:   schemaName,
		Name:         in.Name,
		Method:       strings.ToUpper(in.Method),
		Path:         in.Path,
		Description:  in.Description,
		IsCustom:     in.IsCustom,
		Enabled:      true,
		AuthRequired: in.AuthRequired,
		Role:         in.Role,
	}
	if in.Enabled != nil {
		e.Enabled = *in.Enabled
	}
	if e.Role == "" {
		e.Role = scaffold.RoleAny
	}
	return e
}

type SaveEndpointsRequest struct {
	SchemaName string           `json:"schemaName"`
	Endpoints  *[]EndpointInput `json:"endpoints"`
}

// SaveEndpoints replaces every endpoint stored for the schema name.
func (h *Handler) SaveEndpoints(c echo.Context) error {
	var req SaveEndpointsRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.SchemaName) == "" || req.Endpoints == nil {
		return errorJSON(c, http.StatusBadRequest, "Schema name and endpoints are required")
	}

	endpoints := make([]store.Endpoint, len(*req.Endpoints))
	for i, in := range *req.Endpoints {
		endpoints[i] = in.endpoint(req.SchemaName)
	}
	n, err := h.store.ReplaceEndpoints(c.Request().Context(), req.SchemaName, endpoints)
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	zap.L().Info("Endpoints saved", zap.String("schema", req.SchemaName), zap.Int("count", n))
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Endpoints saved successfully",
		"count":   n,
	})
}

func (h *Handler) ListEndpoints(c echo.Context) error {
	eps, err := h.store.ListEndpoints(c.Request().Context(), c.Param("schemaName"))
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	return c.JSON(http.StatusOK, eps)
}

// UpdateEndpoint applies a partial update; fields absent from the body are
// kept.
func (h *Handler) UpdateEndpoint(c echo.Context) error {
	var patch store.EndpointPatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if patch.Method != nil {
		m := strings.ToUpper(*patch.Method)
		patch.Method = &m
	}

	e, err := h.store.UpdateEndpoint(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ToggleEndpoint(c echo.Context) error {
	e, err := h.store.ToggleEndpoint(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteEndpoint(c echo.Context) error {
	if err := h.store.DeleteEndpoint(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(c, err, endpointNotFound)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Endpoint deleted successfully"})
}

func (h *Handler) DeleteEndpointsForSchema(c echo.Context) error {
	n, err := h.store.DeleteEndpointsForSchema(c.Request().Context(), c.Param("schemaName"))
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Endpoints deleted successfully",
		"deletedCount": n,
	})
}

// EndpointsCode renders the Express router for a schema's endpoints as a
// download.
func (h *Handler) EndpointsCode(c echo.Context) error {
	name := c.Param("schemaName")
	eps, err := h.store.ListEndpoints(c.Request().Context(), name)
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}
	return attachment(c, scaffold.RoutesFileName(name), scaffold.RoutesSource(name, eps))
}

type ProbeRequest struct {
	BaseURL string `json:"baseUrl"`
}

// ProbeEndpoint sends the endpoint's sample request to a running API. The
// remote status is reported in the body; only unreachable hosts fail. Base
// URLs are limited to the prober's allowed hosts.
func (h *Handler) ProbeEndpoint(c echo.Context) error {
	var req ProbeRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.BaseURL) == "" {
		return errorJSON(c, http.StatusBadRequest, "Base URL is required")
	}
	ctx := c.Request().Context()
	e, err := h.store.GetEndpoint(ctx, c.Param("id"))
	if err != nil {
		return storeError(c, err, endpointNotFound)
	}

	res, err := h.prober.Probe(ctx, req.BaseURL, *e)
	if errors.Is(err, scaffold.ErrProbeTarget) {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		zap.L().Warn("Probe failed", zap.String("endpoint", e.Name), zap.Error(err))
		return errorJSON(c, http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
