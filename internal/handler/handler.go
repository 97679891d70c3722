// Package handler serves the schema persistence API, the designer session,
// endpoint scaffolding and backups over echo.
package handler

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"apivengers/internal/backup"
	"apivengers/internal/canvas"
	authmw "apivengers/internal/middleware"
	"apivengers/internal/scaffold"
	"apivengers/internal/storage"
	"apivengers/internal/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Handler struct {
	store  store.Store
	canvas *canvas.Surface
	prober *scaffold.Prober
	backup *backup.Service
	fs     *storage.FileSystem
	secret string
	hosts  []string
	now    func() time.Time
}

type Option func(*Handler)

// WithCanvas serves an existing designer session. By default a new session
// backed by the store is created.
func WithCanvas(c *canvas.Surface) Option {
	return func(h *Handler) { h.canvas = c }
}

// WithBackup enables the backup routes.
func WithBackup(svc *backup.Service) Option {
	return func(h *Handler) { h.backup = svc }
}

// WithFileSystem sets where designer exports are written.
func WithFileSystem(fs *storage.FileSystem) Option {
	return func(h *Handler) { h.fs = fs }
}

// WithJWTSecret sets the key used for probe tokens and for the admin guard
// on backup routes.
func WithJWTSecret(secret string) Option {
	return func(h *Handler) {
		if secret != "" {
			h.secret = secret
		}
	}
}

// WithProbeHosts sets the hosts endpoint probes may reach, replacing
// scaffold.DefaultProbeHosts.
func WithProbeHosts(hosts []string) Option {
	return func(h *Handler) { h.hosts = hosts }
}

func NewHandler(st store.Store, opts ...Option) *Handler {
	h := &Handler{store: st, secret: scaffold.DefaultJWTSecret, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	if h.canvas == nil {
		h.canvas = canvas.New(st, canvas.WithFileSystem(h.fs))
	}
	h.prober = scaffold.NewProber(h.secret)
	if len(h.hosts) > 0 {
		h.prober.AllowHosts(h.hosts...)
	}
	return h
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/health", h.Health)
	api.GET("/version", h.Version)

	// Schemas
	api.POST("/save-schema", h.SaveSchema)
	api.GET("/schemas", h.ListSchemas)
	api.GET("/schema/:id", h.GetSchema)
	api.PUT("/schema/:id", h.UpdateSchema)
	api.DELETE("/schema/:id", h.DeleteSchema)

	// Endpoints
	api.POST("/endpoints", h.SaveEndpoints)
	api.GET("/endpoints/:schemaName", h.ListEndpoints)
	api.GET("/endpoints/:schemaName/code", h.EndpointsCode)
	api.PUT("/endpoints/:id", h.UpdateEndpoint)
	api.PATCH("/endpoints/:id", h.UpdateEndpoint)
	api.PUT("/endpoints/:id/toggle", h.ToggleEndpoint)
	api.POST("/endpoints/:id/probe", h.ProbeEndpoint)
	api.DELETE("/endpoints/:id", h.DeleteEndpoint)
	api.DELETE("/endpoints/schema/:schemaName", h.DeleteEndpointsForSchema)

	// Scaffolding
	api.POST("/scaffold/crud", h.ScaffoldCRUD)
	api.GET("/scaffold/auth", h.ScaffoldAuth)
	api.POST("/scaffold/auth", h.ScaffoldAuth)

	// Designer session
	d := api.Group("/designer")
	d.GET("/state", h.DesignerState)
	d.POST("/entities", h.AddEntity)
	d.PUT("/entities/:id", h.UpdateEntity)
	d.DELETE("/entities/:id", h.DeleteEntity)
	d.POST("/entities/:id/fields", h.AddField)
	d.PUT("/entities/:id/fields/:index", h.UpdateField)
	d.DELETE("/entities/:id/fields/:index", h.DeleteField)
	d.POST("/select", h.SelectEntity)
	d.DELETE("/selected", h.DeleteSelected)
	d.POST("/selected/fields", h.AddFieldToSelected)
	d.POST("/connect", h.Connect)
	d.PUT("/pending", h.EditPending)
	d.POST("/pending/confirm", h.ConfirmRelationship)
	d.DELETE("/pending", h.CancelRelationship)
	d.DELETE("/edges/:id", h.DeleteEdge)
	d.POST("/generate", h.Generate)
	d.POST("/save", h.SaveDesign)
	d.GET("/saved", h.ListSaved)
	d.DELETE("/saved/:id", h.DeleteSaved)
	d.POST("/saved/:id/load", h.LoadSaved)
	d.GET("/export", h.Export)
	d.GET("/graph", h.GetGraph)
	d.PUT("/graph", h.PutGraph)
	d.POST("/clear", h.Clear)

	// Backups are admin only
	b := api.Group("/backup", authmw.JWTAuth(h.secret), authmw.RequireRole(scaffold.RoleAdmin))
	b.POST("", h.RunBackup)
	b.GET("/list", h.ListBackups)
	b.POST("/restore", h.RestoreBackup)
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// storeError maps a store failure to 404 or 500.
func storeError(c echo.Context, err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, notFound)
	}
	zap.L().Error("Store operation failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return errorJSON(c, http.StatusInternalServerError, err.Error())
}

func attachment(c echo.Context, fileName, content string) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	return c.Blob(http.StatusOK, "application/javascript; charset=utf-8", []byte(content))
}
