package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog/log"

	"github.com/felixgeelhaar/storekit"
	"github.com/felixgeelhaar/storekit/examples/counter"
	"github.com/felixgeelhaar/storekit/export"
	"github.com/felixgeelhaar/storekit/internal/config"
	"github.com/felixgeelhaar/storekit/internal/logging"
	"github.com/felixgeelhaar/storekit/internal/tracing"
	"github.com/felixgeelhaar/storekit/telemetry"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("storekit-counter failed")
	}
}

// result is the JSON document printed after the action list has been applied.
type result struct {
	Store   string        `json:"store"`
	Policy  string        `json:"policy"`
	Version uint64        `json:"version"`
	State   counter.State `json:"state"`
	Ignored int           `json:"ignored,omitempty"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("storekit-counter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "Path to configuration file (defaults apply when empty)")
	printMetrics := fs.Bool("metrics", false, "Print Prometheus metrics after the run")
	describe := fs.Bool("describe", false, "Print the reducer descriptor and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	// Positional arguments extend the configured action list.
	for _, name := range fs.Args() {
		cfg.Actions = append(cfg.Actions, name)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	policy, err := cfg.StorePolicy()
	if err != nil {
		return err
	}

	reducer, err := counter.NewTaggedReducer(counter.State{Count: cfg.Store.Initial}, policy)
	if err != nil {
		return fmt.Errorf("build reducer: %w", err)
	}

	if *describe {
		desc, err := export.NewDescriptorExporter(reducer).ExportJSONIndent("", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, desc)
		return err
	}

	logger, cleanup, err := logging.Setup(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer cleanup()

	tp, shutdown, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	registry := prometheus.NewRegistry()
	collector := telemetry.Noop()
	if cfg.Telemetry.Enabled {
		prom, err := telemetry.NewPrometheusCollector(registry)
		if err != nil {
			logger.Warn().Err(err).Msg("telemetry disabled")
		} else {
			collector = prom
		}
	}

	store := storekit.NewFromConfig(reducer,
		storekit.WithName(cfg.Store.Name),
		storekit.WithLogger(logger),
		storekit.WithCollector(collector),
		storekit.WithTracerProvider(tp),
	)

	var ignored int
	unsubscribe := store.Subscribe(func(c storekit.Change[counter.State, storekit.Action]) {
		if c.Prev == c.State {
			return
		}
		logger.Info().
			Str("action", string(c.Action.Type)).
			Int("count", c.State.Count).
			Uint64("version", c.Version).
			Msg("state changed")
	})
	defer unsubscribe()

	for _, action := range cfg.ActionList() {
		before := store.Version()
		if err := store.DispatchContext(ctx, action); err != nil {
			return err
		}
		if store.Version() == before {
			ignored++
		}
	}

	out := result{
		Store:   store.Name(),
		Policy:  store.Policy().String(),
		Version: store.Version(),
		State:   store.State(),
		Ignored: ignored,
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if *printMetrics {
		return writeMetrics(stdout, registry)
	}
	return nil
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
