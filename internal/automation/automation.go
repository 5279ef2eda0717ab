package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springs/internal/config"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/experiment"
	"github.com/san-kum/springs/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and applies the
// non-zero overrides.
type ScenarioStep struct {
	Name       string  `yaml:"name"`
	Creature   string  `yaml:"creature"`
	Preset     string  `yaml:"preset"`
	Engine     string  `yaml:"engine"`
	Integrator string  `yaml:"integrator"`
	Controller string  `yaml:"controller"`
	Duration   float64 `yaml:"duration"`
	Dt         float64 `yaml:"dt"`
	Seed       uint64  `yaml:"seed"`
	// Params are set on the controller after it is built.
	Params map[string]float64 `yaml:"params"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	creature := s.Creature
	if creature == "" {
		creature = "starfish"
	}

	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(creature, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", creature, s.Preset)
		}
	}
	cfg.Creature = creature

	if s.Engine != "" {
		cfg.Engine = s.Engine
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Controller != "" {
		cfg.Controller = s.Controller
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, nil
}

type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

// RunScenario runs every step in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		slog.Info("scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := runWithParams(ctx, registry, cfg, step.Params)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

func runWithParams(ctx context.Context, registry *experiment.Registry, cfg *config.Config, params map[string]float64) (*sim.Result, error) {
	exp := experiment.New(cfg, registry)
	if err := exp.Setup(); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if len(params) > 0 {
		c, ok := exp.World().Controller.(dynamo.Configurable)
		if !ok {
			return nil, fmt.Errorf("controller %q has no parameters: %w", cfg.Controller, dynamo.ErrUnsupported)
		}
		for k, v := range params {
			if err := c.SetParam(k, v); err != nil {
				return nil, err
			}
		}
	}
	return exp.Run(ctx)
}

// ParameterSweep runs Base once per evenly spaced value of one controller
// parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	// Stable is false when the body blew up before the end of the run.
	Stable bool
}

// RunSweep records unstable runs instead of failing on them. Any other error
// stops the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep of %d steps: %w", sweep.NumSteps, dynamo.ErrConstruction)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := *sweep.Base

		result, err := runWithParams(ctx, registry, &cfg, map[string]float64{sweep.ParamName: paramVal})
		switch {
		case errors.Is(err, dynamo.ErrInvalidState):
			results = append(results, SweepResult{ParamValue: paramVal, Stable: false})
		case err != nil:
			return results, err
		default:
			results = append(results, SweepResult{ParamValue: paramVal, Metrics: result.Metrics, Stable: true})
		}
		slog.Debug("sweep point", "param", sweep.ParamName, "value", paramVal, "index", i+1, "of", sweep.NumSteps)
	}

	return results, nil
}

// SweepStats counts stable and unstable points.
func SweepStats(results []SweepResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
