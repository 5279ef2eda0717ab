package creatures_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/motors"
	"github.com/san-kum/springs/internal/physics"
)

func arms(n, sections int, h, w float64) [][]creatures.Dim {
	out := make([][]creatures.Dim, n)
	for i := range out {
		for j := 0; j < sections; j++ {
			out[i] = append(out[i], creatures.Dim{Height: h, Width: w})
		}
		out[i] = append(out[i], creatures.Dim{Height: h})
	}
	return out
}

func starfishOptions() creatures.StarfishOptions {
	cfg := creatures.DefaultSensorConfig()
	return creatures.StarfishOptions{
		CenterX:      0,
		CenterY:      500,
		CenterRadius: 30,
		Materials:    lightMaterials(),
		MuscleGroups: 2,
		Muscle:       sectionOne,
		Sensors:      &cfg,
	}
}

// newWorld builds a two-arm starfish resting on the ground, driven by a sine
// controller.
func newWorld() (physics.Space, *creatures.Starfish) {
	space := newSpace()
	Expect(space.AddRect(physics.Rect{XL: -10000, XR: 10000, YB: -100, YT: 100, Restitution: 0.5})).To(Succeed())

	s, err := creatures.NewStarfish(space, arms(2, 3, 40, 30), starfishOptions())
	Expect(err).NotTo(HaveOccurred())

	minY := math.Inf(1)
	for _, n := range s.Nodes() {
		minY = math.Min(minY, n.Y())
	}
	s.Translate(0, 100-minY)

	speeds := []float64{0.5, -0.7, 0.9, -0.3}
	s.AddController(func(s *creatures.Starfish, space physics.Space) error {
		signal := make([]float64, len(speeds))
		for i, v := range speeds {
			signal[i] = 0.1 * math.Sin(v*space.T())
		}
		return s.MuscleInterface().Actuate(signal)
	})
	return space, s
}

var _ = Describe("Starfish", func() {
	It("assembles a two-arm body", func() {
		_, s := newWorld()

		Expect(s.Center()).To(HaveLen(2))
		Expect(s.Tentacles()).To(HaveLen(2))
		Expect(s.Nodes()).To(HaveLen(2 + 2*(3*2+1)))
		Expect(s.Links()).To(HaveLen(1 + 2*(3*5+2)))
		Expect(s.Muscles()).To(HaveLen(2 * 3 * 2))
		Expect(s.Springs()).To(HaveLen(len(s.Links()) - len(s.Muscles())))
		Expect(s.MuscleInterface().Len()).To(Equal(4))

		b0 := s.Tentacles()[0].Base()
		b1 := s.Tentacles()[1].Base()
		Expect(b0[0] == b1[1]).To(BeTrue())
		Expect(b0[1] == b1[0]).To(BeTrue())

		// 2 touch per arm, center angle and velocity, angle and velocity per group.
		Expect(s.SensorValues()).To(HaveLen(2*2 + 2 + 2*2*2))
	})

	DescribeTable("holds every link at its relax length under a neutral signal",
		func(nArms int, factory motors.Factory, neutral []float64) {
			space := newSpace()
			opts := starfishOptions()
			opts.Muscle = factory
			s, err := creatures.NewStarfish(space, arms(nArms, 3, 40, 30), opts)
			Expect(err).NotTo(HaveOccurred())

			iface := s.MuscleInterface()
			Expect(iface.Len()).To(Equal(nArms * 2 * len(neutral)))
			relax := make([]float64, len(s.Links()))
			for i, l := range s.Links() {
				relax[i] = l.RelaxLength()
			}

			bent := make([]float64, iface.Len())
			for i := range bent {
				bent[i] = 0.3
			}
			Expect(iface.Actuate(bent)).To(Succeed())

			signal := make([]float64, 0, iface.Len())
			for len(signal) < iface.Len() {
				signal = append(signal, neutral...)
			}
			Expect(iface.Actuate(signal)).To(Succeed())
			for i, l := range s.Links() {
				Expect(l.RelaxLength()).To(Equal(relax[i]))
				Expect(l.RelaxLength() * l.ExpandFactor()).To(BeNumerically("~", relax[i], 1e-12))
			}
		},
		Entry("two arms, one muscle per section", 2, motors.Factory(sectionOne), []float64{0}),
		Entry("five arms, one muscle per section", 5, motors.Factory(sectionOne), []float64{0}),
		Entry("two arms, two muscles per section", 2, motors.Factory(sectionTwo), []float64{0, 1}),
		Entry("five arms, two muscles per section", 5, motors.Factory(sectionTwo), []float64{0, 1}),
	)

	It("collapses two-muscle sections on an all-zero signal", func() {
		space := newSpace()
		opts := starfishOptions()
		opts.Muscle = sectionTwo
		s, err := creatures.NewStarfish(space, arms(2, 3, 40, 30), opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.MuscleInterface().Actuate(make([]float64, s.MuscleInterface().Len()))).To(Succeed())
		for _, m := range s.Muscles() {
			Expect(m.ExpandFactor()).To(Equal(0.0))
		}
	})

	It("walks without blowing up", func() {
		space, s := newWorld()
		x0, _ := s.CenterXY()
		for i := 0; i < 400; i++ {
			Expect(space.Step()).To(Succeed())
		}
		Expect(s.Err()).NotTo(HaveOccurred())
		Expect(finite(s.Nodes())).To(BeTrue())
		Expect(space.Ticks()).To(Equal(400))

		x1, y1 := s.CenterXY()
		Expect(math.IsNaN(x1 - x0)).To(BeFalse())
		Expect(y1).To(BeNumerically(">", 0))

		values := s.SensorValues()
		Expect(values).To(HaveLen(14))
		for _, v := range values[:4] {
			Expect(v).To(Or(Equal(0.0), Equal(1.0)))
		}
		Expect(values[:4]).To(ContainElement(1.0))
	})

	It("is reproducible", func() {
		spaceA, a := newWorld()
		spaceB, b := newWorld()
		for i := 0; i < 100; i++ {
			Expect(spaceA.Step()).To(Succeed())
			Expect(spaceB.Step()).To(Succeed())
		}
		for i, n := range a.Nodes() {
			Expect(n.X()).To(Equal(b.Nodes()[i].X()))
			Expect(n.Y()).To(Equal(b.Nodes()[i].Y()))
		}
		Expect(a.SensorValues()).To(Equal(b.SensorValues()))
	})

	It("builds a polygon hub for three or more arms", func() {
		space := newSpace()
		opts := starfishOptions()
		s, err := creatures.NewStarfish(space, arms(5, 2, 40, 30), opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Center()).To(HaveLen(5))
		Expect(s.Links()).To(HaveLen(3*5 + 5*(2*5+2)))

		cx, cy := s.CenterXY()
		Expect(cx).To(BeNumerically("~", 0, 1e-9))
		Expect(cy).To(BeNumerically("~", 500, 1e-9))

		for j, t := range s.Tentacles() {
			base := t.Base()
			Expect(base[0] == s.Center()[j%5]).To(BeTrue())
		}
	})

	It("translates every node", func() {
		_, s := newWorld()
		x0, y0 := s.AvgNodesXY()
		s.Translate(3, -2)
		x1, y1 := s.AvgNodesXY()
		Expect(x1 - x0).To(BeNumerically("~", 3, 1e-9))
		Expect(y1 - y0).To(BeNumerically("~", -2, 1e-9))
	})

	It("runs controllers in order and keeps the first error", func() {
		space := newSpace()
		opts := starfishOptions()
		opts.Sensors = nil
		s, err := creatures.NewStarfish(space, arms(2, 1, 40, 30), opts)
		Expect(err).NotTo(HaveOccurred())

		var calls []string
		boom := errors.New("boom")
		s.AddController(func(*creatures.Starfish, physics.Space) error {
			calls = append(calls, "first")
			return boom
		})
		s.AddController(func(*creatures.Starfish, physics.Space) error {
			calls = append(calls, "second")
			return nil
		})
		Expect(space.Step()).To(Succeed())
		Expect(space.Step()).To(Succeed())
		Expect(calls).To(Equal([]string{"first"}))
		Expect(s.Err()).To(MatchError(boom))
	})

	Context("sensor configuration", func() {
		build := func(cfg creatures.SensorConfig, groups int) (*creatures.Starfish, error) {
			space := newSpace()
			opts := starfishOptions()
			opts.Sensors = &cfg
			opts.MuscleGroups = groups
			return creatures.NewStarfish(space, arms(2, 2, 40, 30), opts)
		}

		It("rejects unsupported values", func() {
			_, err := build(creatures.SensorConfig{Angle: creatures.AngleAllNodes}, 2)
			Expect(err).To(MatchError(dynamo.ErrUnsupported))
			_, err = build(creatures.SensorConfig{Angle: "elbows"}, 2)
			Expect(err).To(MatchError(dynamo.ErrUnsupported))
			_, err = build(creatures.SensorConfig{Touch: "whiskers"}, 2)
			Expect(err).To(MatchError(dynamo.ErrUnsupported))
		})

		It("needs muscle groups for group sensors", func() {
			_, err := build(creatures.SensorConfig{Touch: creatures.TouchMuscleGroupSides}, 0)
			Expect(err).To(MatchError(dynamo.ErrUnsupported))
		})

		It("creates one touch sensor per node", func() {
			s, err := build(creatures.SensorConfig{Touch: creatures.TouchAllNodes}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SensorValues()).To(HaveLen(len(s.Nodes())))
		})

		It("turns the center angle on with angle sensors", func() {
			s, err := build(creatures.SensorConfig{Angle: creatures.AngleMuscleGroup}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SensorValues()).To(HaveLen(1 + 2*2))
		})
	})
})

var _ = Describe("DevStarfish", func() {
	It("grows every arm", func() {
		space := newSpace()
		opts := starfishOptions()
		opts.Sensors = nil
		d, err := creatures.NewDevStarfish(space, arms(3, 2, 40, 30), creatures.DevFactors{Height: []float64{0.5}}, opts)
		Expect(err).NotTo(HaveOccurred())

		for _, t := range d.DevTentacles() {
			Expect(t.Heights()).To(Equal([]float64{20, 20, 20}))
		}
		Expect(d.ChangeHeightDevFactor(1)).To(Succeed())
		Expect(d.ChangeWidthDevFactor(0.5)).To(Succeed())
		for _, t := range d.DevTentacles() {
			Expect(t.Heights()).To(Equal([]float64{40, 40, 40}))
			Expect(t.Widths()).To(Equal([]float64{15, 15}))
		}

		d.ChangeMass(2)
		for _, n := range d.Nodes() {
			Expect(n.Mass()).To(Equal(2.0))
		}
	})
})

var _ = Describe("Centipede", func() {
	It("hangs arms from a ladder", func() {
		space := newSpace()
		opts := starfishOptions()
		opts.Sensors = nil
		opts.CenterRadius = 10
		c, err := creatures.NewCentipede(space, arms(3, 2, 10, 10), opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Center()).To(HaveLen(2 + 2*3))
		Expect(c.Links()).To(HaveLen(1 + 5*3 + 3*(2*5+2)))
		for i, t := range c.Tentacles() {
			base := t.Base()
			Expect(base[0].X()).To(BeNumerically("~", float64(10*(i+1)), 1e-9))
			Expect(base[1].X()).To(BeNumerically("~", float64(10*i), 1e-9))
			Expect(t.Sections()[0].Node("top_left").Y()).To(BeNumerically("<", base[0].Y()))
		}
	})

	It("only supports two-node bases", func() {
		space := newSpace()
		opts := starfishOptions()
		opts.Sensors = nil
		opts.Section = creatures.CentralBone{}
		_, err := creatures.NewCentipede(space, arms(2, 2, 10, 10), opts)
		Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
	})
})
