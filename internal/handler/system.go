package handler

import (
	"net/http"

	"apivengers/internal/version"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Health(c echo.Context) error {
	if _, err := h.store.ListSchemas(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, version.GetInfo())
}
