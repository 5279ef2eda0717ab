package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/springs/internal/config"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/experiment"
)

// GridSearch tries every combination of controller parameter values and keeps
// the one with the largest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, dynamo.Shape("grid search", len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Trial is one evaluated parameter combination.
type Trial struct {
	Params map[string]float64
	Value  float64
}

// Search runs cfg once per grid point and returns the best parameters. The
// controller named in cfg must be dynamo.Configurable.
func (g *GridSearch) Search(ctx context.Context, registry *experiment.Registry, cfg *config.Config, metricName string) (Trial, []Trial, error) {
	best := Trial{Value: math.Inf(-1)}
	var trials []Trial

	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) error {
		v, err := evaluate(ctx, registry, cfg, params, metricName)
		if err != nil {
			return err
		}
		trials = append(trials, Trial{Params: params, Value: v})
		slog.Debug("grid point", "params", params, metricName, v)
		if v > best.Value {
			best = Trial{Params: params, Value: v}
		}
		return nil
	})
	if err != nil {
		return Trial{}, trials, err
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return visit(current)
	}

	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[g.paramNames[depth]] = val
		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, registry *experiment.Registry, cfg *config.Config, params map[string]float64, metricName string) (float64, error) {
	exp := experiment.New(cfg, registry)
	if err := exp.Setup(); err != nil {
		return 0, err
	}
	c, ok := exp.World().Controller.(dynamo.Configurable)
	if !ok {
		return 0, fmt.Errorf("controller %q has no parameters: %w", cfg.Controller, dynamo.ErrUnsupported)
	}
	for name, v := range params {
		if err := c.SetParam(name, v); err != nil {
			return 0, err
		}
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("metric %q not recorded", metricName)
	}
	return v, nil
}
