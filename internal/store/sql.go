package store

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	_ "github.com/lib-x/entsqlite"
)

// SQLiteDSN returns the connection string for a database file at path.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)", path)
}

var _ Store = (*SQLStore)(nil)

// SQLStore is a Store backed by a SQL database through ent's dialect layer.
type SQLStore struct {
	drv     *sql.Driver
	db      *stdsql.DB
	dialect string
	now     func() time.Time
}

// OpenSQLite opens (creating if needed) a SQLite database at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	return OpenSQL(ctx, dialect.SQLite, SQLiteDSN(path))
}

// OpenSQL opens a database with the given ent dialect name and runs the
// schema migration.
func OpenSQL(ctx context.Context, driverName, dsn string) (*SQLStore, error) {
	drv, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to %s: %w", driverName, err)
	}
	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("failed creating migration: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		drv.Close()
		return nil, fmt.Errorf("failed creating schema resources: %w", err)
	}
	return &SQLStore{
		drv:     drv,
		db:      drv.DB(),
		dialect: drv.Dialect(),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the database connection.
func (s *SQLStore) Close(context.Context) error {
	return s.drv.Close()
}

func (s *SQLStore) builder() *sql.DialectBuilder {
	return sql.Dialect(s.dialect)
}

func parseRowID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

func formatRowID(n int64) string {
	return strconv.FormatInt(n, 10)
}

var schemaColumns = []string{"id", "name", "mongoose_schema", "created_at"}

func scanSchema(sc interface{ Scan(...any) error }) (*Schema, error) {
	var (
		id  int64
		out Schema
	)
	if err := sc.Scan(&id, &out.Name, &out.MongooseSchema, &out.CreatedAt); err != nil {
		return nil, err
	}
	out.ID = formatRowID(id)
	return &out, nil
}

func (s *SQLStore) SaveSchema(ctx context.Context, name, mongooseSchema string) (*Schema, error) {
	created := s.now()
	query, args := s.builder().Insert(SchemasTable.Name).
		Columns("name", "mongoose_schema", "created_at").
		Values(name, mongooseSchema, created).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert schema: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert schema: %w", err)
	}
	return &Schema{ID: formatRowID(id), Name: name, MongooseSchema: mongooseSchema, CreatedAt: created}, nil
}

func (s *SQLStore) ListSchemas(ctx context.Context) ([]*Schema, error) {
	b := s.builder()
	query, args := b.Select(schemaColumns...).
		From(b.Table(SchemasTable.Name)).
		OrderBy(sql.Desc("created_at"), sql.Desc("id")).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	out := []*Schema{}
	for rows.Next() {
		sch, err := scanSchema(rows)
		if err != nil {
			return nil, fmt.Errorf("list schemas: %w", err)
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetSchema(ctx context.Context, id string) (*Schema, error) {
	n, err := parseRowID(id)
	if err != nil {
		return nil, err
	}
	return s.getSchema(ctx, n)
}

func (s *SQLStore) getSchema(ctx context.Context, id int64) (*Schema, error) {
	b := s.builder()
	query, args := b.Select(schemaColumns...).
		From(b.Table(SchemasTable.Name)).
		Where(sql.EQ("id", id)).
		Query()
	sch, err := scanSchema(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get schema: %w", err)
	}
	return sch, nil
}

func (s *SQLStore) UpdateSchema(ctx context.Context, id, name, mongooseSchema string) (*Schema, error) {
	n, err := parseRowID(id)
	if err != nil {
		return nil, err
	}
	query, args := s.builder().Update(SchemasTable.Name).
		Set("name", name).
		Set("mongoose_schema", mongooseSchema).
		Where(sql.EQ("id", n)).
		Query()
	if err := s.execOne(ctx, query, args); err != nil {
		return nil, fmt.Errorf("update schema: %w", err)
	}
	return s.getSchema(ctx, n)
}

func (s *SQLStore) DeleteSchema(ctx context.Context, id string) error {
	n, err := parseRowID(id)
	if err != nil {
		return err
	}
	query, args := s.builder().Delete(SchemasTable.Name).Where(sql.EQ("id", n)).Query()
	if err := s.execOne(ctx, query, args); err != nil {
		return fmt.Errorf("delete schema: %w", err)
	}
	return nil
}

// execOne runs a statement that must touch at least one row.
func (s *SQLStore) execOne(ctx context.Context, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var endpointColumns = []string{
	"id", "schema_name", "name", "method", "path", "description",
	"is_custom", "enabled", "auth_required", "role", "created_at",
}

func scanEndpoint(sc interface{ Scan(...any) error }) (*Endpoint, error) {
	var (
		id  int64
		out Endpoint
	)
	err := sc.Scan(&id, &out.SchemaName, &out.Name, &out.Method, &out.Path, &out.Description,
		&out.IsCustom, &out.Enabled, &out.AuthRequired, &out.Role, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	out.ID = formatRowID(id)
	return &out, nil
}

func (s *SQLStore) ReplaceEndpoints(ctx context.Context, schemaName string, endpoints []Endpoint) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("replace endpoints: %w", err)
	}
	defer tx.Rollback()

	query, args := s.builder().Delete(EndpointsTable.Name).Where(sql.EQ("schema_name", schemaName)).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("replace endpoints: %w", err)
	}

	created := s.now()
	for i, e := range endpoints {
		query, args := s.builder().Insert(EndpointsTable.Name).
			Columns("schema_name", "name", "method", "path", "description",
				"is_custom", "enabled", "auth_required", "role", "position", "created_at").
			Values(schemaName, e.Name, e.Method, e.Path, e.Description,
				e.IsCustom, e.Enabled, e.AuthRequired, e.Role, i, created).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert endpoint %q: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace endpoints: %w", err)
	}
	return len(endpoints), nil
}

func (s *SQLStore) ListEndpoints(ctx context.Context, schemaName string) ([]*Endpoint, error) {
	b := s.builder()
	query, args := b.Select(endpointColumns...).
		From(b.Table(EndpointsTable.Name)).
		Where(sql.EQ("schema_name", schemaName)).
		OrderBy(sql.Asc("position"), sql.Asc("id")).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	defer rows.Close()

	out := []*Endpoint{}
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("list endpoints: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetEndpoint(ctx context.Context, id string) (*Endpoint, error) {
	n, err := parseRowID(id)
	if err != nil {
		return nil, err
	}
	return s.getEndpoint(ctx, s.db, n)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *stdsql.Row
}

func (s *SQLStore) getEndpoint(ctx context.Context, q queryRower, id int64) (*Endpoint, error) {
	b := s.builder()
	query, args := b.Select(endpointColumns...).
		From(b.Table(EndpointsTable.Name)).
		Where(sql.EQ("id", id)).
		Query()
	e, err := scanEndpoint(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get endpoint: %w", err)
	}
	return e, nil
}

func (s *SQLStore) UpdateEndpoint(ctx context.Context, id string, patch EndpointPatch) (*Endpoint, error) {
	n, err := parseRowID(id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.getEndpoint(ctx, s.db, n)
	}

	u := s.builder().Update(EndpointsTable.Name)
	setString := func(col string, v *string) {
		if v != nil {
			u.Set(col, *v)
		}
	}
	setBool := func(col string, v *bool) {
		if v != nil {
			u.Set(col, *v)
		}
	}
	setString("name", patch.Name)
	setString("method", patch.Method)
	setString("path", patch.Path)
	setString("description", patch.Description)
	setBool("is_custom", patch.IsCustom)
	setBool("enabled", patch.Enabled)
	setBool("auth_required", patch.AuthRequired)
	setString("role", patch.Role)

	query, args := u.Where(sql.EQ("id", n)).Query()
	if err := s.execOne(ctx, query, args); err != nil {
		return nil, fmt.Errorf("update endpoint: %w", err)
	}
	return s.getEndpoint(ctx, s.db, n)
}

func (s *SQLStore) ToggleEndpoint(ctx context.Context, id string) (*Endpoint, error) {
	n, err := parseRowID(id)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("toggle endpoint: %w", err)
	}
	defer tx.Rollback()

	e, err := s.getEndpoint(ctx, tx, n)
	if err != nil {
		return nil, err
	}
	e.Enabled = !e.Enabled
	query, args := s.builder().Update(EndpointsTable.Name).
		Set("enabled", e.Enabled).
		Where(sql.EQ("id", n)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("toggle endpoint: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("toggle endpoint: %w", err)
	}
	return e, nil
}

func (s *SQLStore) DeleteEndpoint(ctx context.Context, id string) error {
	n, err := parseRowID(id)
	if err != nil {
		return err
	}
	query, args := s.builder().Delete(EndpointsTable.Name).Where(sql.EQ("id", n)).Query()
	if err := s.execOne(ctx, query, args); err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteEndpointsForSchema(ctx context.Context, schemaName string) (int64, error) {
	query, args := s.builder().Delete(EndpointsTable.Name).Where(sql.EQ("schema_name", schemaName)).Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete endpoints: %w", err)
	}
	return res.RowsAffected()
}
