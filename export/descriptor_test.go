package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/storekit/internal/ir"
)

type counterState struct {
	Count int `json:"count"`
}

func buildCounter(t *testing.T) *ir.ReducerConfig[counterState] {
	t.Helper()

	cfg := ir.NewReducerConfig("counter", counterState{Count: 3})
	cfg.Handlers["inc"] = func(s counterState, a ir.Action) (counterState, error) {
		return counterState{Count: s.Count + 1}, nil
	}
	cfg.Handlers["dec"] = func(s counterState, a ir.Action) (counterState, error) {
		return counterState{Count: s.Count - 1}, nil
	}

	inc := ir.NewActionConfig("increment")
	inc.Description = "Add one"
	inc.Handlers = []ir.HandlerType{"inc"}
	cfg.AddAction(inc)

	dec := ir.NewActionConfig("decrement")
	dec.Handlers = []ir.HandlerType{"dec"}
	cfg.AddAction(dec)

	return cfg
}

func TestDescriptorExporter_SimpleReducer(t *testing.T) {
	desc, err := NewDescriptorExporter(buildCounter(t)).Export()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if desc.ID != "counter" {
		t.Errorf("expected ID 'counter', got %q", desc.ID)
	}
	if desc.Policy != "strict" {
		t.Errorf("expected policy 'strict', got %q", desc.Policy)
	}
	if string(desc.Initial) != `{"count":3}` {
		t.Errorf("unexpected initial state: %s", desc.Initial)
	}
	if len(desc.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(desc.Actions))
	}
	if desc.Actions[0].Type != "increment" || desc.Actions[1].Type != "decrement" {
		t.Errorf("actions out of declaration order: %+v", desc.Actions)
	}
	if desc.Actions[0].Description != "Add one" {
		t.Errorf("expected description 'Add one', got %q", desc.Actions[0].Description)
	}
	if len(desc.Actions[1].Handlers) != 1 || desc.Actions[1].Handlers[0] != "dec" {
		t.Errorf("unexpected handlers: %v", desc.Actions[1].Handlers)
	}
}

func TestDescriptorExporter_LenientPolicy(t *testing.T) {
	cfg := buildCounter(t)
	cfg.Policy = ir.PolicyLenient

	desc, err := NewDescriptorExporter(cfg).Export()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Policy != "lenient" {
		t.Errorf("expected policy 'lenient', got %q", desc.Policy)
	}
}

func TestDescriptorExporter_HandlerChain(t *testing.T) {
	cfg := buildCounter(t)
	cfg.Actions[0].Handlers = []ir.HandlerType{"inc", "inc"}

	desc, err := NewDescriptorExporter(cfg).Export()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.Join(desc.Actions[0].Handlers, ",")
	if got != "inc,inc" {
		t.Errorf("expected handler chain 'inc,inc', got %q", got)
	}
}

func TestDescriptorExporter_UnencodableInitial(t *testing.T) {
	cfg := ir.NewReducerConfig("chan", make(chan int))

	_, err := NewDescriptorExporter(cfg).Export()
	if err == nil {
		t.Fatal("expected error for unencodable initial state")
	}
	if !strings.Contains(err.Error(), "chan") {
		t.Errorf("expected reducer ID in error, got: %v", err)
	}
}

func TestDescriptorExporter_NilReducer(t *testing.T) {
	_, err := NewDescriptorExporter[counterState](nil).Export()
	if err == nil {
		t.Fatal("expected error for nil reducer")
	}
}

func TestDescriptorExporter_JSONOutput(t *testing.T) {
	exporter := NewDescriptorExporter(buildCounter(t))

	compact, err := exporter.ExportJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(compact, "\n") {
		t.Error("expected compact output")
	}

	var desc ReducerDescriptor
	if err := json.Unmarshal([]byte(compact), &desc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if desc.ID != "counter" {
		t.Errorf("expected ID 'counter', got %q", desc.ID)
	}

	indented, err := exporter.ExportJSONIndent("", "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(indented, "\n  ") {
		t.Error("expected indented output")
	}
	if !strings.Contains(indented, `"description": "Add one"`) {
		t.Errorf("expected description in output, got:\n%s", indented)
	}
	if strings.Count(indented, `"description"`) != 1 {
		t.Error("expected empty description to be omitted")
	}
}
