package handler

import (
	"errors"
	"net/http"
	"strconv"

	"apivengers/internal/canvas"
	"apivengers/internal/compiler"
	"apivengers/internal/graph"
	"apivengers/internal/model"
	"apivengers/internal/store"

	"github.com/labstack/echo/v4"
)

const entityNotFound = "Entity not found"

// designerError maps canvas errors to statuses. Persistence failures are
// 502: the session itself is intact.
func designerError(c echo.Context, err error) error {
	var pe *canvas.PersistenceError
	switch {
	case errors.Is(err, canvas.ErrNotGenerated), errors.Is(err, canvas.ErrEmptyName):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, schemaNotFound)
	case errors.Is(err, canvas.ErrNoPersistence):
		return errorJSON(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &pe):
		return errorJSON(c, http.StatusBadGateway, err.Error())
	default:
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) DesignerState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.canvas.State())
}

type EntityRequest struct {
	Name string `json:"name"`
}

// AddEntity creates an entity and selects it.
func (h *Handler) AddEntity(c echo.Context) error {
	var req EntityRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	id, ok := h.canvas.AddEntity(req.Name)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Entity name is required")
	}
	e, _ := h.canvas.Entity(id)
	return c.JSON(http.StatusCreated, e)
}

type EntityUpdateRequest struct {
	Label    *string         `json:"label"`
	Position *model.Position `json:"position"`
}

// UpdateEntity renames and/or moves an entity.
func (h *Handler) UpdateEntity(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.canvas.Entity(id); !ok {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	var req EntityUpdateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if req.Label != nil && !h.canvas.RenameEntity(id, *req.Label) {
		return errorJSON(c, http.StatusBadRequest, "Entity name is required")
	}
	if req.Position != nil {
		h.canvas.DragEntity(id, *req.Position)
	}
	e, ok := h.canvas.Entity(id)
	if !ok {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteEntity(c echo.Context) error {
	if !h.canvas.DeleteEntity(c.Param("id")) {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	return c.JSON(http.StatusOK, h.canvas.State())
}

type SelectRequest struct {
	ID string `json:"id"`
}

// SelectEntity changes the selection; an empty id clears it.
func (h *Handler) SelectEntity(c echo.Context) error {
	var req SelectRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if !h.canvas.Select(req.ID) {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	return c.JSON(http.StatusOK, h.canvas.State())
}

func (h *Handler) DeleteSelected(c echo.Context) error {
	if !h.canvas.DeleteSelected() {
		return errorJSON(c, http.StatusBadRequest, "No entity selected")
	}
	return c.JSON(http.StatusOK, h.canvas.State())
}

// fieldError returns the message for a field the engine would ignore, or "".
func fieldError(f model.Field) string {
	switch {
	case !f.HasName():
		return "Field name is required"
	case !f.HasKnownType():
		return "Invalid field type"
	}
	return ""
}

func (h *Handler) AddField(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.canvas.Entity(id); !ok {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	var f model.Field
	if err := c.Bind(&f); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if msg := fieldError(f); msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}
	if !h.canvas.AddField(id, f) {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	e, _ := h.canvas.Entity(id)
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) AddFieldToSelected(c echo.Context) error {
	var f model.Field
	if err := c.Bind(&f); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if msg := fieldError(f); msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}
	added, err := h.canvas.AddFieldToSelected(f)
	if errors.Is(err, canvas.ErrNoSelection) {
		return errorJSON(c, http.StatusBadRequest, "No entity selected")
	}
	if !added {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	return c.JSON(http.StatusCreated, h.canvas.State())
}

func fieldIndex(c echo.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	return i, err == nil
}

func (h *Handler) UpdateField(c echo.Context) error {
	id := c.Param("id")
	index, ok := fieldIndex(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid field index")
	}
	if _, ok := h.canvas.Entity(id); !ok {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	var f model.Field
	if err := c.Bind(&f); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if msg := fieldError(f); msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	applied, err := h.canvas.UpdateField(id, index, f)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if !applied {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	e, _ := h.canvas.Entity(id)
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteField(c echo.Context) error {
	id := c.Param("id")
	index, ok := fieldIndex(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid field index")
	}
	applied, err := h.canvas.DeleteField(id, index)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if !applied {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	e, _ := h.canvas.Entity(id)
	return c.JSON(http.StatusOK, e)
}

type ConnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Connect opens the relationship dialog between two entities.
func (h *Handler) Connect(c echo.Context) error {
	var req ConnectRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	d, ok := h.canvas.Connect(req.Source, req.Target)
	if !ok {
		return errorJSON(c, http.StatusNotFound, entityNotFound)
	}
	return c.JSON(http.StatusOK, d)
}

type PendingRequest struct {
	Kind      model.RelationshipKind `json:"kind"`
	FieldName string                 `json:"fieldName"`
}

func (h *Handler) EditPending(c echo.Context) error {
	var req PendingRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if h.canvas.State().Mode != canvas.ModePending {
		return errorJSON(c, http.StatusConflict, "No relationship pending")
	}
	d, ok := h.canvas.EditPending(req.Kind, req.FieldName)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Invalid relationship type")
	}
	return c.JSON(http.StatusOK, d)
}

// ConfirmRelationship adds the reference field and edge of the open dialog.
func (h *Handler) ConfirmRelationship(c echo.Context) error {
	if h.canvas.State().Mode != canvas.ModePending {
		return errorJSON(c, http.StatusConflict, "No relationship pending")
	}
	r, ok := h.canvas.ConfirmRelationship()
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Field name is required")
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) CancelRelationship(c echo.Context) error {
	h.canvas.CancelRelationship()
	return c.JSON(http.StatusOK, h.canvas.State())
}

func (h *Handler) DeleteEdge(c echo.Context) error {
	if !h.canvas.DeleteEdge(c.Param("id")) {
		return errorJSON(c, http.StatusNotFound, "Relationship not found")
	}
	return c.JSON(http.StatusOK, h.canvas.State())
}

type GenerateResponse struct {
	Schema string           `json:"schema"`
	Issues []compiler.Issue `json:"issues"`
}

func (h *Handler) Generate(c echo.Context) error {
	text, issues := h.canvas.Generate()
	if issues == nil {
		issues = []compiler.Issue{}
	}
	return c.JSON(http.StatusOK, GenerateResponse{Schema: text, Issues: issues})
}

// SaveDesign stores the last generated schema under a name.
func (h *Handler) SaveDesign(c echo.Context) error {
	var req EntityRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	s, err := h.canvas.Save(c.Request().Context(), req.Name)
	if err != nil {
		return designerError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Schema saved successfully",
		"id":      s.ID,
	})
}

func (h *Handler) ListSaved(c echo.Context) error {
	list, err := h.canvas.RefreshSaved(c.Request().Context())
	if err != nil {
		return designerError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) DeleteSaved(c echo.Context) error {
	list, err := h.canvas.DeleteSaved(c.Request().Context(), c.Param("id"))
	if err != nil {
		return designerError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// LoadSaved makes a saved schema the session's compiled text.
func (h *Handler) LoadSaved(c echo.Context) error {
	s, err := h.canvas.LoadSaved(c.Request().Context(), c.Param("id"))
	if err != nil {
		return designerError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Export downloads the compiled schema as <fileName>.js.
func (h *Handler) Export(c echo.Context) error {
	a, err := h.canvas.Export(c.QueryParam("fileName"))
	if err != nil {
		return designerError(c, err)
	}
	return attachment(c, a.FileName, a.Content)
}

func (h *Handler) GetGraph(c echo.Context) error {
	return c.JSON(http.StatusOK, h.canvas.Snapshot())
}

// PutGraph replaces the session graph with a snapshot.
func (h *Handler) PutGraph(c echo.Context) error {
	var doc graph.Document
	if err := c.Bind(&doc); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if err := h.canvas.Restore(doc); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.canvas.State())
}

func (h *Handler) Clear(c echo.Context) error {
	h.canvas.Clear()
	return c.JSON(http.StatusOK, h.canvas.State())
}
