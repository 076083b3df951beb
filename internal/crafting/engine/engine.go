// Package engine contains the crafting optimization logic.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "github.com/rsned/crafting-optimizer/internal/crafting/engine"

// Optimization outcomes reported to a Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder receives run measurements.
type Recorder interface {
	ObserveOptimization(outcome string, duration time.Duration, rounds int)
	NegativeInventory()
}

type nopRecorder struct{}

func (nopRecorder) ObserveOptimization(string, time.Duration, int) {}
func (nopRecorder) NegativeInventory()                             {}

// Engine is the main entry point for optimization queries. It holds only
// read-only state and is safe for concurrent use; every call builds its own
// inventory and memo tables.
type Engine struct {
	cat      *catalog.Catalog
	opts     Options
	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// New creates an Engine. A nil logger discards output and a nil recorder
// drops measurements.
func New(cat *catalog.Catalog, opts Options, logger *slog.Logger, recorder Recorder) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Engine{
		cat:      cat,
		opts:     opts,
		logger:   logger,
		recorder: recorder,
		tracer:   otel.Tracer(TracerName),
	}, nil
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Options returns the effective options, defaults applied.
func (e *Engine) Options() Options {
	return e.opts
}

// Optimize computes a production plan for inventory.
func (e *Engine) Optimize(ctx context.Context, inventory map[string]int) (*crafting.OptimizationData, error) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	_, span := e.tracer.Start(ctx, "Engine.Optimize", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("inventory.entries", len(inventory)),
	))
	defer span.End()

	start := time.Now()
	inv, err := e.prepareInventory(logger, inventory)
	if err != nil {
		span.SetStatus(codes.Error, "invalid inventory")
		e.recorder.ObserveOptimization(OutcomeInvalid, time.Since(start), 0)
		return nil, err
	}

	planner := NewPlanner(e.cat, e.opts, inv, logger, e.recorder)
	data, err := planner.Run()
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "optimization failed")
		e.recorder.ObserveOptimization(OutcomeError, elapsed, planner.Rounds())
		return nil, fmt.Errorf("optimizing: %w", err)
	}

	span.SetAttributes(
		attribute.Int("planner.rounds", data.Summary.Rounds),
		attribute.Int("plan.steps", len(data.ProductionSteps)),
		attribute.Float64("plan.total_profit", data.Summary.TotalProfit),
	)
	e.recorder.ObserveOptimization(OutcomeSuccess, elapsed, data.Summary.Rounds)
	logger.Info("optimization complete",
		"rounds", data.Summary.Rounds,
		"steps", len(data.ProductionSteps),
		"total_profit", data.Summary.TotalProfit,
		"duration", elapsed)
	return data, nil
}

// prepareInventory zero-fills every known material and copies in the
// caller's quantities. Unknown IDs are dropped.
func (e *Engine) prepareInventory(logger *slog.Logger, input map[string]int) (crafting.Inventory, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: inventory is required", ErrInvalidInventory)
	}

	ids := make([]string, 0, len(input))
	for id := range input {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	inv := make(crafting.Inventory, len(e.cat.KnownMaterials()))
	for _, id := range e.cat.KnownMaterials() {
		inv[id] = 0
	}
	for _, id := range ids {
		qty := input[id]
		if qty < 0 {
			return nil, fmt.Errorf("%w: %q has negative quantity %d", ErrInvalidInventory, id, qty)
		}
		if qty > MaxQuantity {
			return nil, fmt.Errorf("%w: %q quantity %d exceeds %d", ErrInvalidInventory, id, qty, MaxQuantity)
		}
		if !e.cat.IsKnown(id) {
			logger.Debug("ignoring unknown inventory item", "item", id, "quantity", qty)
			continue
		}
		inv[id] = qty
	}
	return inv, nil
}

// ResolveChain expands qty of id. With a nil inventory the chain is resolved
// from raw materials; otherwise stock is drawn first.
func (e *Engine) ResolveChain(ctx context.Context, id string, qty int, inventory map[string]int) (*crafting.DependencyChain, error) {
	_, span := e.tracer.Start(ctx, "Engine.ResolveChain", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.Int("quantity", qty),
	))
	defer span.End()

	if err := checkQuantity(qty); err != nil {
		return nil, err
	}
	resolver := NewResolver(e.cat, e.opts)
	if inventory == nil {
		return resolver.Resolve(id, qty)
	}
	inv, err := e.prepareInventory(e.logger, inventory)
	if err != nil {
		return nil, err
	}
	return resolver.ResolveAgainstInventory(id, qty, NewSnapshot(inv))
}

// MaxCraftable returns how many of id can be made from inventory. With exact
// set, the ratio bound is tightened by bisection over full simulations.
// Without it the answer is the ratio bound, which overstates what can be
// made when requirements share sub-items.
func (e *Engine) MaxCraftable(ctx context.Context, id string, inventory map[string]int, exact bool) (int, error) {
	_, span := e.tracer.Start(ctx, "Engine.MaxCraftable", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.Bool("exact", exact),
	))
	defer span.End()

	inv, err := e.prepareInventory(e.logger, inventory)
	if err != nil {
		return 0, err
	}
	snap := NewSnapshot(inv)
	resolver := NewResolver(e.cat, e.opts)
	feas := NewFeasibility(e.cat, e.opts, resolver)

	bound, err := feas.MaxCraftable(id, snap)
	if err != nil || !exact {
		return bound, err
	}
	if _, leaf := resolver.isLeaf(id); leaf {
		return bound, nil
	}
	return feas.MaxCraftableExact(id, snap, bound)
}

// OpportunityCost returns the sell value of the inputs consumed by crafting qty of id.
func (e *Engine) OpportunityCost(ctx context.Context, id string, qty int) (float64, error) {
	_, span := e.tracer.Start(ctx, "Engine.OpportunityCost", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.Int("quantity", qty),
	))
	defer span.End()

	if err := checkQuantity(qty); err != nil {
		return 0, err
	}
	return NewOpportunityCost(e.cat, e.opts).Cost(id, qty)
}

func checkQuantity(qty int) error {
	if qty < 0 {
		return fmt.Errorf("quantity cannot be negative, got %d", qty)
	}
	if qty > MaxQuantity {
		return fmt.Errorf("quantity %d exceeds %d", qty, MaxQuantity)
	}
	return nil
}
