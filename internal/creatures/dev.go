package creatures

import (
	"fmt"

	"github.com/san-kum/springs/internal/geom"
	"github.com/san-kum/springs/internal/physics"
)

// DevFactors are the starting development factors of a tentacle. Empty means
// 1.0; a single value applies to every section.
type DevFactors struct {
	Height []float64 `yaml:"height,omitempty" json:"height,omitempty"`
	Width  []float64 `yaml:"width,omitempty" json:"width,omitempty"`
}

// DevTentacle is a tentacle whose dimensions are scaled by development
// factors relative to its adult (factor 1.0) dimensions.
type DevTentacle struct {
	*Tentacle

	heightsOne   []float64
	widthsOne    []float64
	heightFactor []float64
	widthFactor  []float64
}

func factors(f []float64, n int) ([]float64, error) {
	if len(f) == 0 {
		f = []float64{1}
	}
	out, err := geom.Listify(f, n)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), out...), nil
}

func NewDevTentacle(space physics.Space, base []physics.Node, heights, widths []float64, dev DevFactors, opts TentacleOptions) (*DevTentacle, error) {
	hf, err := factors(dev.Height, len(heights))
	if err != nil {
		return nil, fmt.Errorf("height dev factor: %w", err)
	}
	wf, err := factors(dev.Width, len(widths))
	if err != nil {
		return nil, fmt.Errorf("width dev factor: %w", err)
	}

	d := &DevTentacle{
		heightsOne:   append([]float64(nil), heights...),
		widthsOne:    append([]float64(nil), widths...),
		heightFactor: hf,
		widthFactor:  wf,
	}

	startHeights := make([]float64, len(heights))
	for i, h := range heights {
		startHeights[i] = hf[i] * h
	}
	startWidths := make([]float64, len(widths))
	for i, w := range widths {
		startWidths[i] = wf[i] * w
	}

	t, err := NewTentacle(space, base, startHeights, startWidths, opts)
	if err != nil {
		return nil, err
	}
	d.Tentacle = t
	return d, nil
}

func (d *DevTentacle) HeightsOne() []float64 { return d.heightsOne }
func (d *DevTentacle) WidthsOne() []float64  { return d.widthsOne }

func (d *DevTentacle) HeightDevFactor() []float64 { return d.heightFactor }
func (d *DevTentacle) WidthDevFactor() []float64  { return d.widthFactor }

// SetHeightDevFactor sets each section's height, then the tip's, to
// factor * adult height, from base to tip.
func (d *DevTentacle) SetHeightDevFactor(f ...float64) error {
	values, err := geom.Listify(f, len(d.heightsOne))
	if err != nil {
		return fmt.Errorf("height dev factor: %w", err)
	}
	for i, s := range d.sections {
		if err := s.SetHeight(values[i] * d.heightsOne[i]); err != nil {
			return err
		}
	}
	if d.tip != nil {
		last := len(d.heightsOne) - 1
		if err := d.tip.SetHeight(values[last] * d.heightsOne[last]); err != nil {
			return err
		}
	}
	d.heightFactor = append([]float64(nil), values...)
	return nil
}

// SetWidthDevFactor applies to sections only; tips have no width.
func (d *DevTentacle) SetWidthDevFactor(f ...float64) error {
	values, err := geom.Listify(f, len(d.widthsOne))
	if err != nil {
		return fmt.Errorf("width dev factor: %w", err)
	}
	for i, s := range d.sections {
		if err := s.SetWidth(values[i] * d.widthsOne[i]); err != nil {
			return err
		}
	}
	d.widthFactor = append([]float64(nil), values...)
	return nil
}
