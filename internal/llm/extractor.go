// Package llm - extractor.go builds structured-output prompts from a field list.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object a prompt asks the model to return.
type ExtractionSchema struct {
	Name        string        // Schema name, used in logs
	Description string        // Task preamble
	Fields      []SchemaField // Top-level fields of the expected object
	Rules       []string      // Extra constraints listed after the structure
	InputLabel  string        // Heading for the input block; defaults to "Input"
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint rendered verbatim, e.g. `["string"]`
	Description string
	Required    bool
}

// BuildExtractionPrompt renders the schema and input into a single prompt.
func BuildExtractionPrompt(schema ExtractionSchema, input string) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(schema.Description))
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		fmt.Fprintf(&sb, "  %q: %s", field.Name, typeHint)
		if field.Required {
			sb.WriteString(" (required)")
		}
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	for _, rule := range schema.Rules {
		fmt.Fprintf(&sb, "- %s\n", rule)
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	label := schema.InputLabel
	if label == "" {
		label = "Input"
	}
	fmt.Fprintf(&sb, "%s:\n\"\"\"\n%s\n\"\"\"\n", label, strings.TrimSpace(input))

	return sb.String()
}
