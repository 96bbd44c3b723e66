// Package parser provides reflection-based parsing for struct-defined reducers.
package parser

import (
	"fmt"
	"reflect"
	"strings"
)

// ActionSchema represents a parsed action declaration.
type ActionSchema struct {
	Field       string
	Type        string
	Description string
	Handlers    []string
}

// ReducerSchema represents the complete parsed reducer definition.
type ReducerSchema struct {
	ID      string
	Policy  string
	Actions []*ActionSchema
}

// Marker type names for detection.
const (
	MarkerReducerDefinition = "ReducerDef"
	MarkerAction            = "ActionNode"
)

// ParseReducerStruct parses a struct type into a ReducerSchema.
// The struct must have an embedded ReducerDef marker type.
func ParseReducerStruct(t reflect.Type) (*ReducerSchema, error) {
	if t == nil {
		return nil, fmt.Errorf("expected struct, got nil type")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}

	schema := &ReducerSchema{}

	// Find and parse the ReducerDef marker
	found := false
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && isMarkerType(field.Type, MarkerReducerDefinition) {
			if err := parseReducerTag(field.Tag, schema); err != nil {
				return nil, fmt.Errorf("invalid reducer tag: %w", err)
			}
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("struct must embed storekit.ReducerDef")
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if isMarkerType(field.Type, MarkerReducerDefinition) {
			continue
		}
		if !isMarkerType(field.Type, MarkerAction) {
			continue // Not an action field
		}

		action, err := parseActionField(field)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		schema.Actions = append(schema.Actions, action)
	}

	return schema, nil
}

// parseReducerTag parses the reducer definition tag.
// Format: `id:"reducerId" policy:"strict|lenient"`
func parseReducerTag(tag reflect.StructTag, schema *ReducerSchema) error {
	schema.ID = strings.TrimSpace(tag.Get("id"))
	schema.Policy = strings.TrimSpace(tag.Get("policy"))

	if schema.ID == "" {
		return fmt.Errorf("missing required 'id' tag")
	}
	return nil
}

// parseActionField parses an ActionNode field.
// Format: `action:"type" do:"handler1,handler2" desc:"text"`
// The action type defaults to the snake_case field name.
func parseActionField(field reflect.StructField) (*ActionSchema, error) {
	action := &ActionSchema{
		Field:       field.Name,
		Type:        strings.TrimSpace(field.Tag.Get("action")),
		Description: field.Tag.Get("desc"),
	}
	if action.Type == "" {
		action.Type = toSnakeCase(field.Name)
	}

	do, ok := field.Tag.Lookup("do")
	if !ok {
		return nil, fmt.Errorf("missing required 'do' tag")
	}
	action.Handlers = splitTrim(do, ",")
	if len(action.Handlers) == 0 {
		return nil, fmt.Errorf("empty 'do' tag")
	}

	return action, nil
}

// isMarkerType checks if a type matches a marker type name.
func isMarkerType(t reflect.Type, markerName string) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name() == markerName
}

// toSnakeCase converts CamelCase to snake_case.
// Handles acronyms properly: HTTPRequest -> http_request, APIKey -> api_key.
func toSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder
	result.Grow(len(s) + 5)

	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'

		if i > 0 && isUpper {
			prevIsLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextIsLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'

			// Boundary after a lowercase letter, or the last capital of an acronym
			if prevIsLower || nextIsLower {
				result.WriteByte('_')
			}
		}

		if isUpper {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// splitTrim splits a string and trims whitespace from each part.
func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
