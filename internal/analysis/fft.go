package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/sim"
)

// PowerSpectrum returns |X_k|²/n for k = 0..n/2 of the mean-removed signal.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		a := cmplx.Abs(coeffs[i])
		ps[i] = a * a / float64(n)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz with the most power, ignoring
// the constant term, and that power.
func DominantFrequency(data []float64, dt float64) (freq, power float64, err error) {
	if len(data) < 4 {
		return 0, 0, fmt.Errorf("spectrum of %d samples: %w", len(data), dynamo.ErrSignalLength)
	}
	if dt <= 0 {
		return 0, 0, fmt.Errorf("sample spacing %v: %w", dt, dynamo.ErrConstruction)
	}
	ps := PowerSpectrum(data)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) / (float64(len(data)) * dt), ps[best], nil
}

type Gait struct {
	Duration     float64
	Displacement float64
	Speed        float64
	// Frequency is the dominant frequency of the center height.
	Frequency float64
	Power     float64
}

// AnalyzeGait reads the center trajectory of a run. Only the evenly spaced
// samples are used for the spectrum; a trailing final sample taken off the
// recording grid is dropped.
func AnalyzeGait(result *sim.Result) (Gait, error) {
	times := result.Times()
	xs, ys := result.Centers()
	if len(times) < 2 {
		return Gait{}, fmt.Errorf("gait of %d samples: %w", len(times), dynamo.ErrSignalLength)
	}

	g := Gait{
		Duration:     times[len(times)-1] - times[0],
		Displacement: xs[len(xs)-1] - xs[0],
	}
	if g.Duration > 0 {
		g.Speed = g.Displacement / g.Duration
	}

	dt := times[1] - times[0]
	n := len(times)
	if n > 2 && math.Abs((times[n-1]-times[n-2])-dt) > 1e-9 {
		n--
	}
	freq, power, err := DominantFrequency(ys[:n], dt)
	if err != nil {
		return g, err
	}
	g.Frequency, g.Power = freq, power
	return g, nil
}
