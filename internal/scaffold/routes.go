package scaffold

import (
	"fmt"
	"strings"

	"apivengers/internal/store"
)

// RoutesFileName is the download name of a schema's router file.
func RoutesFileName(schemaName string) string {
	return schemaName + "Routes.js"
}

// RoutesSource renders an Express router for the enabled endpoints, in the
// order given.
func RoutesSource(schemaName string, endpoints []*store.Endpoint) string {
	var b strings.Builder
	b.WriteString("\nconst express = require('express');\n")
	b.WriteString("const router = express.Router();\n")
	fmt.Fprintf(&b, "const %s = require('../models/%s');\n\n", schemaName, schemaName)

	var blocks []string
	for _, e := range endpoints {
		if !e.Enabled {
			continue
		}
		blocks = append(blocks, routeBlock(schemaName, e))
	}
	b.WriteString(strings.Join(blocks, "\n"))
	b.WriteString("\n\nmodule.exports = router;\n    ")
	return b.String()
}

func routeBlock(schemaName string, e *store.Endpoint) string {
	middleware := ""
	if e.AuthRequired {
		middleware = "authenticateMiddleware, "
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n// %s\n", e.Description)
	fmt.Fprintf(&b, "router.%s('%s', %sasync (req, res) => {\n", strings.ToLower(e.Method), e.Path, middleware)
	b.WriteString("  try {\n")
	fmt.Fprintf(&b, "    %s\n", handlerBody(schemaName, e))
	b.WriteString("  } catch (error) {\n")
	b.WriteString("    res.status(500).json({ error: error.message });\n")
	b.WriteString("  }\n")
	b.WriteString("});\n")
	return b.String()
}

func handlerBody(model string, e *store.Endpoint) string {
	notFound := fmt.Sprintf("res.status(404).json({ error: '%s not found' })", model)
	switch strings.ToUpper(e.Method) {
	case "GET":
		if strings.Contains(e.Path, ":id") {
			return fmt.Sprintf("const item = await %s.findById(req.params.id);\n"+
				"    if (!item) return %s;\n"+
				"    res.json(item);", model, notFound)
		}
		return fmt.Sprintf("const items = await %s.find();\n    res.json(items);", model)
	case "POST":
		return fmt.Sprintf("const newItem = new %s(req.body);\n"+
			"    await newItem.save();\n"+
			"    res.status(201).json(newItem);", model)
	case "PUT":
		return fmt.Sprintf("const updatedItem = await %s.findByIdAndUpdate(\n"+
			"      req.params.id, \n"+
			"      req.body, \n"+
			"      { new: true }\n"+
			"    );\n"+
			"    if (!updatedItem) return %s;\n"+
			"    res.json(updatedItem);", model, notFound)
	case "DELETE":
		return fmt.Sprintf("const deletedItem = await %s.findByIdAndDelete(req.params.id);\n"+
			"    if (!deletedItem) return %s;\n"+
			"    res.json({ message: '%s deleted successfully' });", model, notFound, model)
	default:
		return "// Custom endpoint logic here"
	}
}
