package controllers

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/springs/internal/dynamo"
)

// Network is a feed-forward tanh network from sensor values to muscle
// signals. A bias input fixed at 1 is appended to the observation; a time
// input sin(t) lets the network oscillate without sensor feedback.
type Network struct {
	Amplitude float64

	inputs  int
	weights []*mat.Dense
}

// NewNetwork builds a network with the given hidden layer sizes. Weights are
// drawn from N(0, scale²).
func NewNetwork(inputs int, hidden []int, outputs int, scale float64, seed uint64) (*Network, error) {
	if inputs < 0 || outputs < 1 {
		return nil, fmt.Errorf("network %d -> %d: %w", inputs, outputs, dynamo.ErrConstruction)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	sizes := append([]int{inputs + 2}, hidden...)
	sizes = append(sizes, outputs)

	n := &Network{Amplitude: 1, inputs: inputs}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] < 1 {
			return nil, fmt.Errorf("network layer %d has %d units: %w", i, sizes[i], dynamo.ErrConstruction)
		}
		data := make([]float64, sizes[i]*sizes[i-1])
		for j := range data {
			data[j] = scale * rng.NormFloat64()
		}
		n.weights = append(n.weights, mat.NewDense(sizes[i], sizes[i-1], data))
	}
	return n, nil
}

func (n *Network) Inputs() int { return n.inputs }

func (n *Network) Outputs() int {
	r, _ := n.weights[len(n.weights)-1].Dims()
	return r
}

// Compute ignores observations beyond Inputs() and zero-fills missing ones.
func (n *Network) Compute(x dynamo.State, t float64) dynamo.Control {
	in := make([]float64, n.inputs+2)
	copy(in, x)
	in[n.inputs] = 1
	in[n.inputs+1] = math.Sin(t)

	h := mat.NewVecDense(len(in), in)
	for _, w := range n.weights {
		r, _ := w.Dims()
		next := mat.NewVecDense(r, nil)
		next.MulVec(w, h)
		for i := 0; i < r; i++ {
			next.SetVec(i, math.Tanh(next.AtVec(i)))
		}
		h = next
	}

	u := make(dynamo.Control, h.Len())
	for i := range u {
		u[i] = n.Amplitude * h.AtVec(i)
	}
	return u
}

func (n *Network) GetParams() map[string]float64 {
	return map[string]float64{"amplitude": n.Amplitude}
}

func (n *Network) SetParam(name string, value float64) error {
	if name != "amplitude" {
		return fmt.Errorf("network parameter %q: %w", name, dynamo.ErrUnsupported)
	}
	n.Amplitude = value
	return nil
}
