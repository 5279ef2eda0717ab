package creatures

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/motors"
	"github.com/san-kum/springs/internal/physics"
)

// SquaresOptions tune the fused square lattice. The frequency of a square is
// AlphaFreq*stiffness + BetaFreq; its signal gain is
// AmpFactor / (stiffness+1)^GammaStiff.
type SquaresOptions struct {
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
	// GrowthFactor scales the starting size of every square.
	GrowthFactor float64              `yaml:"growth_factor"`
	DampingRatio float64              `yaml:"damping_ratio"`
	AmpLimit     float64              `yaml:"amp_limit"`
	AmpFactor    float64              `yaml:"amp_factor"`
	AlphaFreq    float64              `yaml:"alpha_freq"`
	BetaFreq     float64              `yaml:"beta_freq"`
	GammaStiff   float64              `yaml:"gamma_stiff"`
	Node         physics.NodeMaterial `yaml:"node"`
}

func DefaultSquaresOptions() SquaresOptions {
	return SquaresOptions{
		GrowthFactor: 1,
		DampingRatio: 1,
		AmpLimit:     0.5,
		AmpFactor:    0.5,
		AlphaFreq:    20,
		BetaFreq:     10,
		GammaStiff:   4,
		Node:         physics.NodeMaterial{Mass: 1, Friction: 0.5},
	}
}

// SideLink is a square side, shared by at most two squares.
type SideLink struct {
	link           physics.Link
	minAmp, maxAmp float64
	squares        []*Square
}

func (sl *SideLink) Link() physics.Link { return sl.link }
func (sl *SideLink) Squares() []*Square { return sl.squares }

// Relax sets the relax length to the stiffness weighted mean of the owners'
// sizes.
func (sl *SideLink) Relax() {
	sizes := make([]float64, len(sl.squares))
	weights := make([]float64, len(sl.squares))
	for i, s := range sl.squares {
		sizes[i], weights[i] = s.size, s.stiffness
	}
	sl.link.SetRelaxLength(weightedMean(sizes, weights))
}

// Actuate contracts the link by the frequency weighted mean of the owners'
// current signals.
func (sl *SideLink) Actuate() {
	signals := make([]float64, len(sl.squares))
	weights := make([]float64, len(sl.squares))
	for i, s := range sl.squares {
		signals[i], weights[i] = s.signal, s.freq
	}
	sl.link.Contract(clamp(1+weightedMean(signals, weights), sl.minAmp, sl.maxAmp))
}

// weightedMean falls back to the plain mean when the weights sum to zero.
func weightedMean(x, weights []float64) float64 {
	if floats.Sum(weights) == 0 {
		return stat.Mean(x, nil)
	}
	return stat.Mean(x, weights)
}

// Square is one lattice cell: four corners, four side links and two actuated
// diagonals.
type Square struct {
	size, stiffness float64
	freq, ampFactor float64
	minAmp, maxAmp  float64
	signal          float64

	bl, br, ul, ur physics.Node
	up, bottom     *SideLink
	left, right    *SideLink
	diagA, diagB   physics.Link
}

func (sq *Square) Size() float64      { return sq.size }
func (sq *Square) Frequency() float64 { return sq.freq }
func (sq *Square) Signal() float64    { return sq.signal }

// Corners returns the bottom-left, bottom-right, up-left and up-right nodes.
func (sq *Square) Corners() [4]physics.Node { return [4]physics.Node{sq.bl, sq.br, sq.ul, sq.ur} }

func (sq *Square) Sides() [4]*SideLink {
	return [4]*SideLink{sq.up, sq.bottom, sq.left, sq.right}
}

func (sq *Square) Diagonals() (physics.Link, physics.Link) { return sq.diagA, sq.diagB }

// Actuate stores the scaled signal and contracts both diagonals.
func (sq *Square) Actuate(m float64) {
	sq.signal = sq.ampFactor * m
	f := clamp(1+sq.signal, sq.minAmp, sq.maxAmp)
	sq.diagA.Contract(f)
	sq.diagB.Contract(f)
}

// FusedSquares is a rows x cols lattice of squares sharing corners and sides
// with their neighbours. Row index i runs along x, column index j along y.
type FusedSquares struct {
	space      physics.Space
	opts       SquaresOptions
	rows, cols int

	grid      [][]*Square
	sideLinks []*SideLink
	nodes     []physics.Node
	links     []physics.Link
}

func NewFusedSquares(space physics.Space, sizes, stiffness [][]float64, opts SquaresOptions) (*FusedSquares, error) {
	rows, cols, err := gridShape(sizes, stiffness)
	if err != nil {
		return nil, err
	}
	fs := &FusedSquares{space: space, opts: opts, rows: rows, cols: cols}

	var all []float64
	for _, row := range sizes {
		all = append(all, row...)
	}
	avg := opts.GrowthFactor * stat.Mean(all, nil)

	fs.grid = make([][]*Square, rows)
	for i := range fs.grid {
		fs.grid[i] = make([]*Square, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cx := opts.OriginX + avg*(0.5+float64(i))
			cy := opts.OriginY + avg*(0.5+float64(j))
			sq, err := fs.newSquare(i, j, sizes[i][j], stiffness[i][j], cx, cy, avg)
			if err != nil {
				return nil, fmt.Errorf("square (%d, %d): %w", i, j, err)
			}
			fs.grid[i][j] = sq
		}
	}
	for _, sl := range fs.sideLinks {
		sl.Relax()
	}
	space.AddEntity(fs)

	slog.Debug("fused squares built", "rows", rows, "cols", cols, "nodes", len(fs.nodes), "links", len(fs.links))
	return fs, nil
}

func gridShape(sizes, stiffness [][]float64) (rows, cols int, err error) {
	rows = len(sizes)
	if rows == 0 || len(sizes[0]) == 0 {
		return 0, 0, fmt.Errorf("empty square grid: %w", dynamo.ErrConstruction)
	}
	cols = len(sizes[0])
	if len(stiffness) != rows {
		return 0, 0, fmt.Errorf("stiffness rows: %w", dynamo.Shape("square grid", rows, len(stiffness)))
	}
	for i := range sizes {
		if len(sizes[i]) != cols {
			return 0, 0, fmt.Errorf("size row %d: %w", i, dynamo.Shape("square grid", cols, len(sizes[i])))
		}
		if len(stiffness[i]) != cols {
			return 0, 0, fmt.Errorf("stiffness row %d: %w", i, dynamo.Shape("square grid", cols, len(stiffness[i])))
		}
		for j := range sizes[i] {
			if !(sizes[i][j] > 0) || stiffness[i][j] < 0 {
				return 0, 0, fmt.Errorf("square (%d, %d) size %v stiffness %v: %w",
					i, j, sizes[i][j], stiffness[i][j], dynamo.ErrConstruction)
			}
		}
	}
	return rows, cols, nil
}

func (fs *FusedSquares) at(i, j int) *Square {
	if i < 0 || j < 0 || i >= fs.rows || j >= fs.cols {
		return nil
	}
	return fs.grid[i][j]
}

func (fs *FusedSquares) newSquare(i, j int, size, stiffness, cx, cy, start float64) (*Square, error) {
	o := fs.opts
	sq := &Square{
		size:      size,
		stiffness: stiffness + 1e-9,
		freq:      o.AlphaFreq*stiffness + o.BetaFreq,
		minAmp:    1 - o.AmpLimit,
		maxAmp:    1 + o.AmpLimit,
	}
	sq.ampFactor = o.AmpFactor / math.Pow(sq.stiffness+1, o.GammaStiff)

	// Squares are built with increasing i then j, so only the left and
	// bottom neighbours exist.
	if l := fs.at(i-1, j); l != nil {
		sq.ul, sq.bl = l.ur, l.br
		sq.left = l.right
	}
	if b := fs.at(i, j-1); b != nil {
		sq.bl, sq.br = b.ul, b.ur
		sq.bottom = b.up
	}

	half := start / 2
	corner := func(n *physics.Node, x, y float64) {
		if *n == nil {
			*n = fs.space.AddNode(x, y, o.Node)
			fs.nodes = append(fs.nodes, *n)
		}
	}
	corner(&sq.bl, cx-half, cy-half)
	corner(&sq.br, cx+half, cy-half)
	corner(&sq.ul, cx-half, cy+half)
	corner(&sq.ur, cx+half, cy+half)

	mat := physics.LinkMaterial{Stiffness: sq.freq, DampingRatio: o.DampingRatio, Actuated: true}
	side := func(s **SideLink, a, b physics.Node) error {
		if *s == nil {
			l, err := fs.space.AddLink(a, b, mat)
			if err != nil {
				return err
			}
			*s = &SideLink{link: l, minAmp: sq.minAmp, maxAmp: sq.maxAmp}
			fs.sideLinks = append(fs.sideLinks, *s)
			fs.links = append(fs.links, l)
		}
		(*s).squares = append((*s).squares, sq)
		return nil
	}
	for _, e := range []struct {
		s    **SideLink
		a, b physics.Node
	}{
		{&sq.up, sq.ul, sq.ur},
		{&sq.bottom, sq.bl, sq.br},
		{&sq.left, sq.ul, sq.bl},
		{&sq.right, sq.ur, sq.br},
	} {
		if err := side(e.s, e.a, e.b); err != nil {
			return nil, err
		}
	}

	var err error
	if sq.diagA, err = fs.space.AddLink(sq.ul, sq.br, mat); err != nil {
		return nil, err
	}
	if sq.diagB, err = fs.space.AddLink(sq.ur, sq.bl, mat); err != nil {
		return nil, err
	}
	sq.diagA.SetRelaxLength(math.Sqrt2 * size)
	sq.diagB.SetRelaxLength(math.Sqrt2 * size)
	fs.links = append(fs.links, sq.diagA, sq.diagB)
	return sq, nil
}

func (fs *FusedSquares) Len() int { return fs.rows * fs.cols }

// Actuate takes one signal per square, square (i, j) at index i*cols + j.
func (fs *FusedSquares) Actuate(signal []float64) error {
	if len(signal) != fs.Len() {
		return fmt.Errorf("fused squares: %w", dynamo.SignalLength("fused squares actuate", fs.Len(), len(signal)))
	}
	for i := 0; i < fs.rows; i++ {
		for j := 0; j < fs.cols; j++ {
			fs.grid[i][j].Actuate(signal[i*fs.cols+j])
		}
	}
	for _, sl := range fs.sideLinks {
		sl.Actuate()
	}
	return nil
}

// Relax restores the side relax lengths and resets every expand factor.
func (fs *FusedSquares) Relax() {
	for _, row := range fs.grid {
		for _, sq := range row {
			sq.signal = 0
		}
	}
	for _, sl := range fs.sideLinks {
		sl.Relax()
	}
	for _, l := range fs.links {
		l.Relax()
	}
}

// Update implements physics.Entity.
func (fs *FusedSquares) Update(float64) {}

func (fs *FusedSquares) Shape() (rows, cols int) { return fs.rows, fs.cols }
func (fs *FusedSquares) Square(i, j int) *Square { return fs.at(i, j) }
func (fs *FusedSquares) SideLinks() []*SideLink  { return fs.sideLinks }
func (fs *FusedSquares) Nodes() []physics.Node   { return fs.nodes }
func (fs *FusedSquares) Links() []physics.Link   { return fs.links }

func (fs *FusedSquares) Squares() []*Square {
	out := make([]*Square, 0, fs.Len())
	for _, row := range fs.grid {
		out = append(out, row...)
	}
	return out
}

func (fs *FusedSquares) Translate(dx, dy float64) {
	for _, n := range fs.nodes {
		n.Translate(dx, dy)
	}
}

// AvgCenter is the mean position of every node of the lattice.
func (fs *FusedSquares) AvgCenter() (float64, float64) {
	return meanXY(fs.nodes)
}

// CenterXY is AvgCenter.
func (fs *FusedSquares) CenterXY() (float64, float64) {
	return fs.AvgCenter()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Actuator returns the lattice itself, one signal per square.
func (fs *FusedSquares) Actuator() motors.Actuator { return fs }
