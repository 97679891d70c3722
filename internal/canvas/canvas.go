// Package canvas is the designer session: the graph plus the view state an
// editing surface keeps around it (selection, the relationship dialog, the
// last compiled schema and the saved-schema list).
//
// Every method is safe for concurrent use. Graph mutations are serialised;
// calls to the persistence service run without holding the session lock so
// editing continues while a save or list is in flight.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"apivengers/internal/compiler"
	"apivengers/internal/graph"
	"apivengers/internal/model"
	"apivengers/internal/storage"
	"apivengers/internal/store"

	"go.uber.org/zap"
)

// DefaultExportName is used when Export is given a blank file name.
const DefaultExportName = "mongodb-schema"

var (
	ErrNotGenerated  = errors.New("generate a schema first")
	ErrEmptyName     = errors.New("schema name is required")
	ErrNoPersistence = errors.New("no persistence service configured")
	ErrNoSelection   = errors.New("no entity selected")
)

// PersistenceError wraps a failure of the persistence service. The session
// state is unchanged when one is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence is the subset of the schema service the session uses. Both
// store.Store and *client.Client satisfy it.
type Persistence interface {
	SaveSchema(ctx context.Context, name, mongooseSchema string) (*store.Schema, error)
	ListSchemas(ctx context.Context) ([]*store.Schema, error)
	GetSchema(ctx context.Context, id string) (*store.Schema, error)
	DeleteSchema(ctx context.Context, id string) error
}

// Mode is the state of the relationship dialog.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModePending Mode = "pendingRelationship"
)

// State is a point-in-time copy of the session.
type State struct {
	Entities []model.Entity       `json:"entities"`
	Edges    []model.Relationship `json:"edges"`
	Selected string               `json:"selectedId,omitempty"`
	Mode     Mode                 `json:"mode"`
	Pending  *graph.Descriptor    `json:"pending,omitempty"`
	Compiled string               `json:"compiled"`
	Saved    []*store.Schema      `json:"saved"`
}

// Artifact is an exported schema file.
type Artifact struct {
	FileName string
	Content  string
}

type Surface struct {
	mu       sync.Mutex
	g        *graph.Graph
	persist  Persistence
	fs       *storage.FileSystem
	log      *zap.Logger
	selected string
	pending  *graph.Descriptor
	compiled string
	saved    []*store.Schema

	// Sequence numbers of issued and applied list requests; a response
	// older than the last applied one is dropped.
	listIssued, listApplied uint64
	// compiledSeq is bumped by every write to compiled and by every issued
	// load. A load response is applied only while its number is current.
	compiledSeq uint64
}

type Option func(*Surface)

// WithGraph starts the session from an existing graph.
func WithGraph(g *graph.Graph) Option {
	return func(s *Surface) { s.g = g }
}

// WithFileSystem sets where Export writes files. Without one Export only
// returns the artifact.
func WithFileSystem(fs *storage.FileSystem) Option {
	return func(s *Surface) { s.fs = fs }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) { s.log = l }
}

// New returns an empty session. persist may be nil, in which case the
// persistence operations fail with ErrNoPersistence.
func New(persist Persistence, opts ...Option) *Surface {
	s := &Surface{
		persist: persist,
		saved:   []*store.Schema{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.g == nil {
		s.g = graph.New()
	}
	if s.log == nil {
		s.log = zap.L()
	}
	return s
}

// State returns a copy of the whole session.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Entities: s.g.Entities(),
		Edges:    s.g.Edges(),
		Selected: s.selected,
		Mode:     ModeIdle,
		Compiled: s.compiled,
		Saved:    cloneSchemas(s.saved),
	}
	if s.pending != nil {
		p := *s.pending
		st.Pending = &p
		st.Mode = ModePending
	}
	return st
}

// Entity returns a copy of one entity.
func (s *Surface) Entity(id string) (model.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Entity(id)
}

// AddEntity creates an entity and selects it.
func (s *Surface) AddEntity(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.g.AddEntity(name)
	if ok {
		s.selected = id
	}
	return id, ok
}

// Select makes id the selected entity. An empty id clears the selection.
func (s *Surface) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.selected = ""
		return true
	}
	if _, ok := s.g.Entity(id); !ok {
		return false
	}
	s.selected = id
	return true
}

func (s *Surface) DeleteEntity(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteEntity(id)
}

// DeleteSelected deletes the selected entity, if any.
func (s *Surface) DeleteSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return false
	}
	return s.deleteEntity(s.selected)
}

func (s *Surface) deleteEntity(id string) bool {
	if !s.g.DeleteEntity(id) {
		return false
	}
	if s.selected == id {
		s.selected = ""
	}
	if s.pending != nil && (s.pending.Source == id || s.pending.Target == id) {
		s.pending = nil
	}
	return true
}

func (s *Surface) RenameEntity(id, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.RenameEntity(id, name)
}

// DragEntity records the position an entity was dropped at.
func (s *Surface) DragEntity(id string, pos model.Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.MoveEntity(id, pos)
}

func (s *Surface) AddField(entityID string, f model.Field) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.AddField(entityID, f)
}

// AddFieldToSelected appends f to the selected entity. It fails with
// ErrNoSelection when nothing is selected.
func (s *Surface) AddFieldToSelected(f model.Field) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return false, ErrNoSelection
	}
	return s.g.AddField(s.selected, f), nil
}

func (s *Surface) UpdateField(entityID string, index int, f model.Field) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.UpdateField(entityID, index, f)
}

func (s *Surface) DeleteField(entityID string, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.DeleteField(entityID, index)
}

// Connect opens the relationship dialog for source → target. A new connect
// gesture replaces any dialog already open.
func (s *Surface) Connect(sourceID, targetID string) (graph.Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.g.Connect(sourceID, targetID)
	if !ok {
		return graph.Descriptor{}, false
	}
	s.pending = &d
	return d, true
}

// EditPending changes the kind and field name of the open dialog. An empty
// kind leaves the kind as is.
func (s *Surface) EditPending(kind model.RelationshipKind, fieldName string) (graph.Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return graph.Descriptor{}, false
	}
	if kind != "" {
		if !kind.Valid() {
			return *s.pending, false
		}
		s.pending.Kind = kind
	}
	s.pending.FieldName = fieldName
	return *s.pending, true
}

// ConfirmRelationship applies the open dialog. The dialog stays open when
// the field name is blank so it can be corrected, and closes without effect
// when an endpoint has been deleted in the meantime.
func (s *Surface) ConfirmRelationship() (model.Relationship, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return model.Relationship{}, false
	}
	d := *s.pending
	if strings.TrimSpace(d.FieldName) == "" {
		return model.Relationship{}, false
	}
	s.pending = nil
	return s.g.ConfirmRelationship(d)
}

// CancelRelationship closes the dialog without touching the graph.
func (s *Surface) CancelRelationship() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return false
	}
	s.pending = nil
	return true
}

func (s *Surface) DeleteEdge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.DeleteEdge(id)
}

// Generate compiles the graph, keeps the text as the session's current
// schema and returns it with its diagnostics.
func (s *Surface) Generate() (string, []compiler.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities := s.g.Entities()
	s.compiled = compiler.Compile(entities)
	s.compiledSeq++
	return s.compiled, compiler.Diagnose(entities)
}

// Compiled returns the last generated or loaded schema text.
func (s *Surface) Compiled() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compiled
}

// Clear empties the graph and resets the view state. The saved list is kept.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.g.Clear()
	s.selected = ""
	s.pending = nil
	s.compiled = ""
	s.compiledSeq++
}

func (s *Surface) Snapshot() graph.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Snapshot()
}

// Restore replaces the graph with doc, dropping selection and any open
// dialog. The session is unchanged if doc is inconsistent.
func (s *Surface) Restore(doc graph.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.g.Restore(doc); err != nil {
		return err
	}
	s.selected = ""
	s.pending = nil
	s.compiledSeq++
	return nil
}

// Save stores the current compiled schema under name and refreshes the
// saved list.
func (s *Surface) Save(ctx context.Context, name string) (*store.Schema, error) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	text := s.compiled
	s.mu.Unlock()

	if text == "" {
		return nil, ErrNotGenerated
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if s.persist == nil {
		return nil, ErrNoPersistence
	}

	saved, err := s.persist.SaveSchema(ctx, name, text)
	if err != nil {
		s.log.Error("Failed to save schema", zap.String("name", name), zap.Error(err))
		return nil, &PersistenceError{Op: "save schema", Err: err}
	}
	s.log.Info("Schema saved", zap.String("name", name), zap.String("id", saved.ID))

	if _, err := s.RefreshSaved(ctx); err != nil {
		s.log.Warn("Saved list refresh failed after save", zap.Error(err))
	}
	return saved, nil
}

// RefreshSaved reloads the saved-schema list. A response that arrives after
// a newer one has been applied is discarded; the current list is returned
// either way.
func (s *Surface) RefreshSaved(ctx context.Context) ([]*store.Schema, error) {
	if s.persist == nil {
		return nil, ErrNoPersistence
	}
	s.mu.Lock()
	s.listIssued++
	seq := s.listIssued
	s.mu.Unlock()

	list, err := s.persist.ListSchemas(ctx)
	if err != nil {
		s.log.Error("Failed to list saved schemas", zap.Error(err))
		return nil, &PersistenceError{Op: "list schemas", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.listApplied {
		s.listApplied = seq
		s.saved = cloneSchemas(list)
	} else {
		s.log.Debug("Dropped stale schema list", zap.Uint64("seq", seq), zap.Uint64("applied", s.listApplied))
	}
	return cloneSchemas(s.saved), nil
}

// SavedSchemas returns the last applied saved list.
func (s *Surface) SavedSchemas() []*store.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSchemas(s.saved)
}

// DeleteSaved removes a saved schema and refreshes the list.
func (s *Surface) DeleteSaved(ctx context.Context, id string) ([]*store.Schema, error) {
	if s.persist == nil {
		return nil, ErrNoPersistence
	}
	if err := s.persist.DeleteSchema(ctx, id); err != nil {
		s.log.Error("Failed to delete saved schema", zap.String("id", id), zap.Error(err))
		return nil, &PersistenceError{Op: "delete schema", Err: err}
	}
	return s.RefreshSaved(ctx)
}

// LoadSaved replaces the compiled text with a saved schema. The graph is not
// touched: saved records carry only text.
func (s *Surface) LoadSaved(ctx context.Context, id string) (*store.Schema, error) {
	if s.persist == nil {
		return nil, ErrNoPersistence
	}
	s.mu.Lock()
	s.compiledSeq++
	seq := s.compiledSeq
	s.mu.Unlock()

	sch, err := s.persist.GetSchema(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get schema", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.compiledSeq {
		s.compiled = sch.MongooseSchema
	} else {
		s.log.Debug("Dropped stale schema load", zap.String("id", id), zap.Uint64("seq", seq))
	}
	return sch, nil
}

// Export packages the compiled schema as a .js file named after fileName
// (DefaultExportName when blank) and writes it under the exports dir when
// the session has a filesystem.
func (s *Surface) Export(fileName string) (Artifact, error) {
	s.mu.Lock()
	text := s.compiled
	s.mu.Unlock()

	if text == "" {
		return Artifact{}, ErrNotGenerated
	}
	a := Artifact{FileName: ExportFileName(fileName), Content: text}
	if s.fs != nil {
		if err := s.fs.WriteFile(path.Join(storage.ExportsDir, a.FileName), []byte(text)); err != nil {
			return Artifact{}, fmt.Errorf("write export: %w", err)
		}
		s.log.Info("Schema exported", zap.String("file", a.FileName))
	}
	return a, nil
}

// ExportFileName turns a user-supplied name into a flat .js file name.
func ExportFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = DefaultExportName
	}
	return name + ".js"
}

func cloneSchemas(in []*store.Schema) []*store.Schema {
	out := make([]*store.Schema, len(in))
	for i, sch := range in {
		c := *sch
		out[i] = &c
	}
	return out
}
