// Package compiler turns designer entities into Mongoose schema source.
package compiler

import (
	"strconv"
	"strings"

	"apivengers/internal/model"
)

const (
	header      = "const mongoose = require('mongoose');\n\n"
	placeholder = "// No entities to generate schema from"
	objectIDRef = "mongoose.Schema.Types.ObjectId"
)

// Compile renders one schema declaration per entity, in the order given.
// It is a pure function of its input.
func Compile(entities []model.Entity) string {
	if len(entities) == 0 {
		return placeholder
	}

	labels := make(map[string]string, len(entities))
	for _, e := range entities {
		labels[e.ID] = e.Label
	}

	blocks := make([]string, len(entities))
	for i, e := range entities {
		blocks[i] = compileEntity(e, labels)
	}
	return header + strings.Join(blocks, "\n\n")
}

func compileEntity(e model.Entity, labels map[string]string) string {
	fields := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = compileField(f, labels)
	}

	ident := strings.ToLower(e.Label) + "Schema"
	var b strings.Builder
	b.WriteString("const " + ident + " = new mongoose.Schema({\n")
	b.WriteString(strings.Join(fields, ",\n"))
	b.WriteString("\n});\n\n")
	b.WriteString("const " + e.Label + " = mongoose.model('" + e.Label + "', " + ident + ");")
	return b.String()
}

func compileField(f model.Field, labels map[string]string) string {
	var b strings.Builder
	b.WriteString("    " + f.Name + ": { \n      type: " + TypeToken(f.Type))

	attr := func(name, value string) {
		b.WriteString(",\n      " + name + ": " + value)
	}

	if f.Required {
		attr("required", "true")
	}
	if f.Unique {
		attr("unique", "true")
	}
	if f.Ref != nil {
		attr("ref", "'"+ReferenceLabel(*f.Ref, labels)+"'")
	}
	if f.Default != "" {
		attr("default", DefaultLiteral(f))
	}

	if f.Type == model.TypeString && f.Text != nil {
		r := f.Text
		if r.Trim {
			attr("trim", "true")
		}
		if r.Lowercase {
			attr("lowercase", "true")
		}
		if r.Uppercase {
			attr("uppercase", "true")
		}
		if r.MinLength != nil {
			attr("minlength", strconv.Itoa(*r.MinLength))
		}
		if r.MaxLength != nil {
			attr("maxlength", strconv.Itoa(*r.MaxLength))
		}
	}

	if f.Type == model.TypeNumber && f.Numeric != nil {
		if f.Numeric.Min != nil {
			attr("min", FormatNumber(*f.Numeric.Min))
		}
		if f.Numeric.Max != nil {
			attr("max", FormatNumber(*f.Numeric.Max))
		}
	}

	b.WriteString("\n    }")
	return b.String()
}

// TypeToken is the schema type expression for t.
func TypeToken(t model.FieldType) string {
	if t == model.TypeObjectID {
		return objectIDRef
	}
	return string(t)
}

// ReferenceLabel resolves a reference to the current label of its target,
// falling back to the recorded label when the target is gone.
func ReferenceLabel(ref model.Reference, labels map[string]string) string {
	if ref.TargetID != "" {
		if l, ok := labels[ref.TargetID]; ok {
			return l
		}
	}
	return ref.TargetLabel
}
