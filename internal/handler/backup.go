package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func backupNotConfigured(c echo.Context) error {
	return errorJSON(c, http.StatusServiceUnavailable, "backup not configured")
}

// RunBackup archives the store to the configured target.
func (h *Handler) RunBackup(c echo.Context) error {
	if h.backup == nil {
		return backupNotConfigured(c)
	}
	name, err := h.backup.Run(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "backup successful",
		"file":    name,
		"target":  h.backup.TargetName(),
	})
}

func (h *Handler) ListBackups(c echo.Context) error {
	if h.backup == nil {
		return backupNotConfigured(c)
	}
	files, err := h.backup.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"target": h.backup.TargetName(),
		"files":  files,
	})
}

type RestoreRequest struct {
	Filename string `json:"filename"`
}

// RestoreBackup loads an archive from the target. The current state is
// archived locally first.
func (h *Handler) RestoreBackup(c echo.Context) error {
	if h.backup == nil {
		return backupNotConfigured(c)
	}
	var req RestoreRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Filename) == "" {
		return errorJSON(c, http.StatusBadRequest, "filename is required")
	}
	stats, err := h.backup.Restore(c.Request().Context(), req.Filename)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "restore successful",
		"schemas":   stats.Schemas,
		"endpoints": stats.Endpoints,
	})
}
