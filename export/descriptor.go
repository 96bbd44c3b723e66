// Package export provides exporters for converting tagged reducer
// configurations to a JSON descriptor.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/storekit/internal/ir"
)

// DescriptorExporter converts a ReducerConfig to a ReducerDescriptor.
// The descriptor lists the accepted action set in declaration order and can
// be used to document a reducer or to drive clients that send tagged actions.
type DescriptorExporter[S any] struct {
	reducer *ir.ReducerConfig[S]
}

// NewDescriptorExporter creates a new exporter for the given reducer configuration
func NewDescriptorExporter[S any](reducer *ir.ReducerConfig[S]) *DescriptorExporter[S] {
	return &DescriptorExporter[S]{reducer: reducer}
}

// ReducerDescriptor is the exported form of a tagged reducer
type ReducerDescriptor struct {
	ID      string             `json:"id"`
	Policy  string             `json:"policy"`
	Initial json.RawMessage    `json:"initial,omitempty"`
	Actions []ActionDescriptor `json:"actions"`
}

// ActionDescriptor describes one accepted action type
type ActionDescriptor struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Handlers    []string `json:"handlers"`
}

// Export converts the reducer configuration to a descriptor
func (e *DescriptorExporter[S]) Export() (*ReducerDescriptor, error) {
	if e.reducer == nil {
		return nil, fmt.Errorf("nil reducer config")
	}

	initial, err := json.Marshal(e.reducer.Initial)
	if err != nil {
		return nil, fmt.Errorf("encode initial state of %q: %w", e.reducer.ID, err)
	}

	desc := &ReducerDescriptor{
		ID:      e.reducer.ID,
		Policy:  e.reducer.Policy.String(),
		Initial: initial,
		Actions: make([]ActionDescriptor, 0, len(e.reducer.Actions)),
	}

	for _, action := range e.reducer.Actions {
		handlers := make([]string, len(action.Handlers))
		for i, h := range action.Handlers {
			handlers[i] = string(h)
		}
		desc.Actions = append(desc.Actions, ActionDescriptor{
			Type:        string(action.Type),
			Description: action.Description,
			Handlers:    handlers,
		})
	}

	return desc, nil
}

// ExportJSON exports the reducer as compact JSON
func (e *DescriptorExporter[S]) ExportJSON() (string, error) {
	desc, err := e.Export()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(desc)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ExportJSONIndent exports the reducer as indented JSON
func (e *DescriptorExporter[S]) ExportJSONIndent(prefix, indent string) (string, error) {
	desc, err := e.Export()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(desc, prefix, indent)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
