package compiler

import (
	"strings"
	"testing"

	"apivengers/internal/graph"
	"apivengers/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Empty(t *testing.T) {
	assert.Equal(t, "// No entities to generate schema from", Compile(nil))
}

func TestCompile_UserEmail(t *testing.T) {
	g := graph.New()
	user, _ := g.AddEntity("User")
	g.AddField(user, model.Field{Name: "email", Type: model.TypeString, Required: true, Unique: true})

	want := "const mongoose = require('mongoose');\n\n" +
		"const userSchema = new mongoose.Schema({\n" +
		"    email: { \n" +
		"      type: String,\n" +
		"      required: true,\n" +
		"      unique: true\n" +
		"    }\n" +
		"});\n\n" +
		"const User = mongoose.model('User', userSchema);"
	assert.Equal(t, want, Compile(g.Entities()))
}

func TestCompile_IsPure(t *testing.T) {
	g := graph.New()
	user, _ := g.AddEntity("User")
	post, _ := g.AddEntity("Post")
	g.AddField(user, model.Field{Name: "name", Type: model.TypeString, Text: &model.TextRules{Trim: true}})
	d, _ := g.Connect(post, user)
	g.ConfirmRelationship(d)

	entities := g.Entities()
	first := Compile(entities)
	second := Compile(entities)
	assert.Equal(t, first, second)
	assert.Equal(t, g.Entities(), entities, "input untouched")
}

func TestCompile_EntityOrderAndEmptyEntity(t *testing.T) {
	entities := []model.Entity{
		{ID: "1", Label: "Tag"},
		{ID: "2", Label: "Blog", Fields: []model.Field{{Name: "title", Type: model.TypeString}}},
	}
	want := "const mongoose = require('mongoose');\n\n" +
		"const tagSchema = new mongoose.Schema({\n\n});\n\n" +
		"const Tag = mongoose.model('Tag', tagSchema);\n\n" +
		"const blogSchema = new mongoose.Schema({\n" +
		"    title: { \n      type: String\n    }\n" +
		"});\n\n" +
		"const Blog = mongoose.model('Blog', blogSchema);"
	assert.Equal(t, want, Compile(entities))
}

func TestCompile_AttributeOrder(t *testing.T) {
	entities := []model.Entity{{
		ID:    "1",
		Label: "Account",
		Fields: []model.Field{
			{
				Name: "handle", Type: model.TypeString, Required: true, Unique: true, Default: "'anon'",
				Text: &model.TextRules{Trim: true, Lowercase: true, Uppercase: true, MinLength: model.Int(0), MaxLength: model.Int(30)},
			},
			{
				Name: "balance", Type: model.TypeNumber, Default: "12.50abc",
				Numeric: &model.NumericRules{Min: model.Float(0), Max: model.Float(1e6)},
			},
			{Name: "active", Type: model.TypeBoolean, Default: "yes"},
			{Name: "createdAt", Type: model.TypeDate, Default: "Date.now"},
		},
	}}

	want := "const mongoose = require('mongoose');\n\n" +
		"const accountSchema = new mongoose.Schema({\n" +
		"    handle: { \n" +
		"      type: String,\n" +
		"      required: true,\n" +
		"      unique: true,\n" +
		"      default: 'anon',\n" +
		"      trim: true,\n" +
		"      lowercase: true,\n" +
		"      uppercase: true,\n" +
		"      minlength: 0,\n" +
		"      maxlength: 30\n" +
		"    },\n" +
		"    balance: { \n" +
		"      type: Number,\n" +
		"      default: 12.5,\n" +
		"      min: 0,\n" +
		"      max: 1000000\n" +
		"    },\n" +
		"    active: { \n" +
		"      type: Boolean,\n" +
		"      default: false\n" +
		"    },\n" +
		"    createdAt: { \n" +
		"      type: Date,\n" +
		"      default: Date.now\n" +
		"    }\n" +
		"});\n\n" +
		"const Account = mongoose.model('Account', accountSchema);"
	assert.Equal(t, want, Compile(entities))
}

func TestCompile_IgnoresRulesForOtherTypes(t *testing.T) {
	// Rules that slipped past Normalize are still not emitted.
	entities := []model.Entity{{
		ID: "1", Label: "X",
		Fields: []model.Field{{
			Name: "n", Type: model.TypeNumber,
			Text: &model.TextRules{Trim: true},
		}},
	}}
	assert.NotContains(t, Compile(entities), "trim")
}

func TestCompile_References(t *testing.T) {
	g := graph.New()
	user, _ := g.AddEntity("User")
	post, _ := g.AddEntity("Post")
	tag, _ := g.AddEntity("Tag")

	d, _ := g.Connect(post, user)
	d.Kind = model.ManyToOne
	g.ConfirmRelationship(d)
	d, _ = g.Connect(post, tag)
	d.Kind = model.ManyToMany
	d.FieldName = "tags"
	g.ConfirmRelationship(d)

	out := Compile(g.Entities())
	assert.Contains(t, out, "    userId: { \n      type: mongoose.Schema.Types.ObjectId,\n      required: true,\n      ref: 'User'\n    }")
	assert.Contains(t, out, "    tags: { \n      type: Array,\n      required: true,\n      ref: 'Tag'\n    }")

	// Renames flow through the reference by id.
	g.RenameEntity(user, "Author")
	assert.Contains(t, Compile(g.Entities()), "ref: 'Author'")

	// A deleted target keeps its last known label.
	g.DeleteEntity(user)
	out = Compile(g.Entities())
	assert.Contains(t, out, "ref: 'Author'")
	assert.NotContains(t, out, "authorSchema")
}

func TestCompile_DuplicateFieldNamesKeptInOrder(t *testing.T) {
	entities := []model.Entity{{
		ID: "1", Label: "A",
		Fields: []model.Field{
			{Name: "x", Type: model.TypeString},
			{Name: "x", Type: model.TypeNumber},
		},
	}}
	out := Compile(entities)
	first := "    x: { \n      type: String\n    }"
	second := "    x: { \n      type: Number\n    }"
	require.Contains(t, out, first)
	require.Contains(t, out, second)
	assert.Less(t, strings.Index(out, first), strings.Index(out, second))
}
