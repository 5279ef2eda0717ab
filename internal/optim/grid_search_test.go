package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/springs/internal/config"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/experiment"
)

func tinyConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Body.Arms, cfg.Body.Sections = 2, 2
	cfg.Duration = 0.05
	return cfg
}

func TestNewGridSearchShape(t *testing.T) {
	if _, err := NewGridSearch([]string{"amplitude"}, nil); !errors.Is(err, dynamo.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestGridSearchVisitsEveryPoint(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"amplitude", "speed_scale"},
		[][]float64{{0, 0.2}, {0.5, 1, 2}},
	)
	if err != nil {
		t.Fatal(err)
	}

	best, trials, err := g.Search(context.Background(), experiment.NewRegistry(), tinyConfig(), "displacement")
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	for _, tr := range trials {
		if tr.Value > best.Value {
			t.Errorf("trial %v beats best %v", tr, best)
		}
	}
	if len(best.Params) != 2 {
		t.Errorf("expected 2 params in best, got %v", best.Params)
	}
}

func TestGridSearchRequiresConfigurable(t *testing.T) {
	cfg := tinyConfig()
	cfg.Controller = "none"
	g, _ := NewGridSearch([]string{"amplitude"}, [][]float64{{0.1}})
	if _, _, err := g.Search(context.Background(), experiment.NewRegistry(), cfg, "displacement"); !errors.Is(err, dynamo.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, _ := NewGridSearch([]string{"amplitude"}, [][]float64{{0.1, 0.2}})
	if _, _, err := g.Search(ctx, experiment.NewRegistry(), tinyConfig(), "displacement"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
