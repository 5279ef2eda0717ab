package creatures_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

func grid(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = repeat(v, cols)
	}
	return out
}

var _ = Describe("FusedSquares", func() {
	var (
		space physics.Space
		fs    *creatures.FusedSquares
	)

	BeforeEach(func() {
		space = newSpace()
		var err error
		fs, err = creatures.NewFusedSquares(space, grid(2, 3, 1), grid(2, 3, 0), creatures.DefaultSquaresOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	It("shares corners and sides between neighbours", func() {
		Expect(fs.Len()).To(Equal(6))
		Expect(fs.Nodes()).To(HaveLen(3 * 4))
		Expect(fs.SideLinks()).To(HaveLen(3*3 + 2*4))
		Expect(fs.Links()).To(HaveLen(17 + 2*6))
		Expect(fs.Squares()).To(HaveLen(6))

		right := fs.Square(0, 0).Sides()[3]
		left := fs.Square(1, 0).Sides()[2]
		Expect(right).To(BeIdenticalTo(left))
		Expect(right.Squares()).To(HaveLen(2))

		up := fs.Square(0, 0).Sides()[0]
		bottom := fs.Square(0, 1).Sides()[1]
		Expect(up).To(BeIdenticalTo(bottom))

		Expect(fs.Square(0, 0).Sides()[1].Squares()).To(HaveLen(1))
	})

	It("relaxes sides to the weighted mean of square sizes", func() {
		for _, sl := range fs.SideLinks() {
			Expect(sl.Link().RelaxLength()).To(BeNumerically("~", 1, 1e-9))
		}
		a, b := fs.Square(1, 2).Diagonals()
		Expect(a.RelaxLength()).To(BeNumerically("~", 1.4142135623730951, 1e-12))
		Expect(b.RelaxLength()).To(BeNumerically("~", 1.4142135623730951, 1e-12))
	})

	It("places the lattice from the origin", func() {
		x, y := fs.AvgCenter()
		Expect(x).To(BeNumerically("~", 1, 1e-12))
		Expect(y).To(BeNumerically("~", 1.5, 1e-12))

		fs.Translate(1, 1)
		x, y = fs.CenterXY()
		Expect(x).To(BeNumerically("~", 2, 1e-12))
		Expect(y).To(BeNumerically("~", 2.5, 1e-12))
	})

	It("actuates diagonals and shared sides", func() {
		Expect(fs.Actuate(repeat(1, 6))).To(Succeed())
		for _, sq := range fs.Squares() {
			a, b := sq.Diagonals()
			Expect(a.ExpandFactor()).To(BeNumerically("~", 1.5, 1e-6))
			Expect(b.ExpandFactor()).To(BeNumerically("~", 1.5, 1e-6))
		}
		for _, sl := range fs.SideLinks() {
			Expect(sl.Link().ExpandFactor()).To(BeNumerically("~", 1.5, 1e-6))
		}

		Expect(fs.Actuate(repeat(-10, 6))).To(Succeed())
		a, _ := fs.Square(0, 0).Diagonals()
		Expect(a.ExpandFactor()).To(Equal(0.5))

		fs.Relax()
		for _, l := range fs.Links() {
			Expect(l.ExpandFactor()).To(Equal(1.0))
		}
	})

	It("weights shared sides by square frequency", func() {
		signal := []float64{1, 0, 0, 0, 0, 0}
		Expect(fs.Actuate(signal)).To(Succeed())
		shared := fs.Square(0, 0).Sides()[3]
		Expect(shared.Link().ExpandFactor()).To(BeNumerically("~", 1.25, 1e-6))
	})

	It("rejects signals of the wrong length", func() {
		Expect(fs.Actuate(repeat(0, 5))).To(MatchError(dynamo.ErrSignalLength))
	})

	It("rejects ragged or empty grids", func() {
		_, err := creatures.NewFusedSquares(space, [][]float64{{1, 1}, {1}}, grid(2, 2, 0), creatures.DefaultSquaresOptions())
		Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
		_, err = creatures.NewFusedSquares(space, nil, nil, creatures.DefaultSquaresOptions())
		Expect(err).To(MatchError(dynamo.ErrConstruction))
		_, err = creatures.NewFusedSquares(space, grid(1, 1, -1), grid(1, 1, 0), creatures.DefaultSquaresOptions())
		Expect(err).To(MatchError(dynamo.ErrConstruction))
	})

	It("steps without blowing up", func() {
		Expect(space.AddRect(physics.Rect{XL: -100, XR: 100, YB: -10, YT: 0, Restitution: 0.5})).To(Succeed())
		for i := 0; i < 200; i++ {
			Expect(fs.Actuate(repeat(0.2, 6))).To(Succeed())
			Expect(space.Step()).To(Succeed())
		}
		Expect(finite(fs.Nodes())).To(BeTrue())
	})

	Context("with squares of different sizes and stiffnesses", func() {
		It("relaxes and actuates shared sides by weighted means", func() {
			opts := creatures.DefaultSquaresOptions()
			opts.GammaStiff = 0
			fs, err := creatures.NewFusedSquares(space, [][]float64{{1}, {3}}, [][]float64{{1}, {3}}, opts)
			Expect(err).NotTo(HaveOccurred())

			shared := fs.Square(0, 0).Sides()[3]
			Expect(shared).To(BeIdenticalTo(fs.Square(1, 0).Sides()[2]))
			// stiffness weights 1 and 3
			Expect(shared.Link().RelaxLength()).To(BeNumerically("~", (1*1+3*3)/4.0, 1e-6))
			Expect(fs.Square(0, 0).Sides()[1].Link().RelaxLength()).To(BeNumerically("~", 1, 1e-6))

			// frequencies 20*1+10 and 20*3+10, signals 0.5 and -0.5
			Expect(fs.Actuate([]float64{1, -1})).To(Succeed())
			Expect(shared.Link().ExpandFactor()).To(BeNumerically("~", 1+(30*0.5-70*0.5)/100, 1e-6))
		})

		It("falls back to the plain mean without frequency weights", func() {
			opts := creatures.DefaultSquaresOptions()
			opts.BetaFreq = 0
			opts.GammaStiff = 0
			fs, err := creatures.NewFusedSquares(space, grid(2, 1, 1), grid(2, 1, 0), opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(fs.Actuate([]float64{1, 0})).To(Succeed())
			for _, l := range fs.Links() {
				Expect(math.IsNaN(l.ExpandFactor())).To(BeFalse())
				Expect(math.IsNaN(l.RelaxLength())).To(BeFalse())
			}
			shared := fs.Square(0, 0).Sides()[3]
			Expect(shared.Link().ExpandFactor()).To(BeNumerically("~", 1.25, 1e-6))
		})
	})
})
