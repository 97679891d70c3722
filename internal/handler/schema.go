package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const schemaNotFound = "Schema not found"

type SchemaRequest struct {
	Name           string `json:"name"`
	MongooseSchema string `json:"mongooseSchema"`
}

func (r SchemaRequest) valid() bool {
	return strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.MongooseSchema) != ""
}

func (h *Handler) SaveSchema(c echo.Context) error {
	var req SchemaRequest
	if err := c.Bind(&req); err != nil || !req.valid() {
		return errorJSON(c, http.StatusBadRequest, "Name and Mongoose schema are required")
	}

	s, err := h.store.SaveSchema(c.Request().Context(), req.Name, req.MongooseSchema)
	if err != nil {
		return storeError(c, err, schemaNotFound)
	}
	zap.L().Info("Schema saved", zap.String("id", s.ID), zap.String("name", s.Name))
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Schema saved successfully",
		"id":      s.ID,
	})
}

func (h *Handler) ListSchemas(c echo.Context) error {
	schemas, err := h.store.ListSchemas(c.Request().Context())
	if err != nil {
		return storeError(c, err, schemaNotFound)
	}
	return c.JSON(http.StatusOK, schemas)
}

func (h *Handler) GetSchema(c echo.Context) error {
	s, err := h.store.GetSchema(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(c, err, schemaNotFound)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSchema(c echo.Context) error {
	var req SchemaRequest
	if err := c.Bind(&req); err != nil || !req.valid() {
		return errorJSON(c, http.StatusBadRequest, "Name and Mongoose schema are required")
	}

	s, err := h.store.UpdateSchema(c.Request().Context(), c.Param("id"), req.Name, req.MongooseSchema)
	if err != nil {
		return storeError(c, err, schemaNotFound)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Schema updated successfully",
		"schema":  s,
	})
}

func (h *Handler) DeleteSchema(c echo.Context) error {
	if err := h.store.DeleteSchema(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(c, err, schemaNotFound)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Schema deleted successfully"})
}
