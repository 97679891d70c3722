package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// SchemasColumns holds the columns for the "stored_schemas" table.
	SchemasColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "mongoose_schema", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SchemasTable holds the schema information for the "stored_schemas" table.
	SchemasTable = &schema.Table{
		Name:       "stored_schemas",
		Columns:    SchemasColumns,
		PrimaryKey: []*schema.Column{SchemasColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "storedschema_created_at",
				Unique:  false,
				Columns: []*schema.Column{SchemasColumns[3]},
			},
		},
	}
	// EndpointsColumns holds the columns for the "endpoints" table.
	EndpointsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "schema_name", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "method", Type: field.TypeString},
		{Name: "path", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "is_custom", Type: field.TypeBool, Default: false},
		{Name: "enabled", Type: field.TypeBool, Default: true},
		{Name: "auth_required", Type: field.TypeBool, Default: false},
		{Name: "role", Type: field.TypeString, Default: "any"},
		{Name: "position", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	// EndpointsTable holds the schema information for the "endpoints" table.
	EndpointsTable = &schema.Table{
		Name:       "endpoints",
		Columns:    EndpointsColumns,
		PrimaryKey: []*schema.Column{EndpointsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "endpoint_schema_name_position",
				Unique:  false,
				Columns: []*schema.Column{EndpointsColumns[1], EndpointsColumns[10]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SchemasTable,
		EndpointsTable,
	}
)
