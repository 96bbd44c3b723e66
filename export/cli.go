package export

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

// ReducerExporter is implemented by types that can export a ReducerDescriptor.
// DescriptorExporter[S] implements this interface.
type ReducerExporter interface {
	Export() (*ReducerDescriptor, error)
}

// ExportOptions configures the export behavior.
type ExportOptions struct {
	PrettyPrint bool
	Indent      string    // used with PrettyPrint, defaults to two spaces
	Output      io.Writer // defaults to os.Stdout
	ReducerID   string    // empty exports every reducer
}

// DefaultExportOptions returns compact output to stdout.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Indent: "  ", Output: os.Stdout}
}

func (o ExportOptions) encoder() *json.Encoder {
	out := o.Output
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)
	if o.PrettyPrint {
		indent := o.Indent
		if indent == "" {
			indent = "  "
		}
		enc.SetIndent("", indent)
	}
	return enc
}

// ExportReducer writes a single reducer descriptor as JSON.
func ExportReducer(exporter ReducerExporter, opts ExportOptions) error {
	desc, err := exporter.Export()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := opts.encoder().Encode(desc); err != nil {
		return fmt.Errorf("write descriptor %q: %w", desc.ID, err)
	}
	return nil
}

// ExportAll writes every reducer as a JSON object keyed by reducer ID, or
// only opts.ReducerID as a bare descriptor when it is set.
func ExportAll(reducers map[string]ReducerExporter, opts ExportOptions) error {
	if opts.ReducerID != "" {
		exporter, ok := reducers[opts.ReducerID]
		if !ok {
			return fmt.Errorf("reducer %q not found", opts.ReducerID)
		}
		return ExportReducer(exporter, opts)
	}

	descs, err := describeAll(reducers)
	if err != nil {
		return err
	}
	result := make(map[string]*ReducerDescriptor, len(descs))
	for _, desc := range descs {
		result[desc.key] = desc.ReducerDescriptor
	}
	if err := opts.encoder().Encode(result); err != nil {
		return fmt.Errorf("write descriptors: %w", err)
	}
	return nil
}

type keyedDescriptor struct {
	key string
	*ReducerDescriptor
}

// describeAll exports every reducer in key order, stopping at the first failure.
func describeAll(reducers map[string]ReducerExporter) ([]keyedDescriptor, error) {
	keys := make([]string, 0, len(reducers))
	for key := range reducers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	descs := make([]keyedDescriptor, 0, len(keys))
	for _, key := range keys {
		desc, err := reducers[key].Export()
		if err != nil {
			return nil, fmt.Errorf("export %q failed: %w", key, err)
		}
		descs = append(descs, keyedDescriptor{key: key, ReducerDescriptor: desc})
	}
	return descs, nil
}

// ListReducers writes one line per reducer with its policy and action types.
func ListReducers(w io.Writer, reducers map[string]ReducerExporter) error {
	descs, err := describeAll(reducers)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Available reducers:"); err != nil {
		return err
	}
	for _, desc := range descs {
		types := make([]string, len(desc.Actions))
		for i, action := range desc.Actions {
			types[i] = action.Type
		}
		if _, err := fmt.Fprintf(w, "  - %s (%s) %v\n", desc.key, desc.Policy, types); err != nil {
			return err
		}
	}
	return nil
}

// RunCLI provides a simple CLI for exporting reducers.
// Usage: go run export_tool.go [-list] [-pretty] [-indent=STR] [-reducer=ID] [-o=FILE]
func RunCLI(reducers map[string]ReducerExporter, args []string) error {
	fs := flag.NewFlagSet("storekit-export", flag.ContinueOnError)
	opts := DefaultExportOptions()
	fs.BoolVar(&opts.PrettyPrint, "pretty", false, "Pretty-print JSON output")
	fs.StringVar(&opts.Indent, "indent", opts.Indent, "Indentation string (used with -pretty)")
	fs.StringVar(&opts.ReducerID, "reducer", "", "Export only this reducer ID")
	output := fs.String("o", "", "Output file (default: stdout)")
	list := fs.Bool("list", false, "List reducers with their policy and action types")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		opts.Output = f
	}

	if *list {
		return ListReducers(opts.Output, reducers)
	}
	return ExportAll(reducers, opts)
}
