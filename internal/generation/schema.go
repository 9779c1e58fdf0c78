package generation

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// validateAgainstSchema checks a raw model response against one of the
// embedded JSON Schemas before it is trusted.
func validateAgainstSchema(schemaName, document string) error {
	data, err := schemaFiles.ReadFile("schemas/" + schemaName)
	if err != nil {
		return fmt.Errorf("failed to load embedded schema %s: %w", schemaName, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(data),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return &ParseError{Message: "schema validation could not run", Cause: err}
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return &SchemaError{Violations: violations}
	}
	return nil
}
