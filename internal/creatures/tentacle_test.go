package creatures_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var _ = Describe("Tentacle", func() {
	var space physics.Space

	BeforeEach(func() {
		space = newSpace()
	})

	DescribeTable("has two muscles per section",
		func(kind creatures.SectionKind, xs []float64, linksPerSection int) {
			t, err := creatures.NewTentacle(space, baseNodes(space, xs...), repeat(1, 8), repeat(1, 8),
				creatures.TentacleOptions{Section: kind, Materials: creatures.DefaultMaterials()})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Sections()).To(HaveLen(8))
			Expect(t.Muscles()).To(HaveLen(16))
			Expect(t.LeftMuscles()).To(HaveLen(8))
			Expect(t.RightMuscles()).To(HaveLen(8))
			Expect(t.Links()).To(HaveLen(8 * linksPerSection))
			Expect(t.Tip()).To(BeNil())
		},
		Entry("standard", creatures.Standard{}, []float64{0, 1}, 5),
		Entry("central bone", creatures.CentralBone{}, []float64{0, 0.5, 1}, 11),
	)

	It("chains forward bases", func() {
		t, err := creatures.NewTentacle(space, baseNodes(space, 0, 1), repeat(1, 3), repeat(1, 3),
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).NotTo(HaveOccurred())
		sections := t.Sections()
		for i := 1; i < len(sections); i++ {
			prev, next := sections[i-1].ForwardBase(), sections[i].Base()
			Expect(next[0] == prev[0]).To(BeTrue())
			Expect(next[1] == prev[1]).To(BeTrue())
		}
		Expect(t.Nodes()).To(HaveLen(2 + 3*2))
		Expect(t.NewNodes()).To(HaveLen(3 * 2))
		Expect(t.Springs()).To(HaveLen(3 * 3))
	})

	It("caps the last section with a tip", func() {
		t, err := creatures.NewTentacle(space, baseNodes(space, 0, 1), []float64{1, 1, 2}, []float64{1, 1},
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Tip()).NotTo(BeNil())
		Expect(t.Heights()).To(Equal([]float64{1, 1, 2}))
		Expect(t.Widths()).To(Equal([]float64{1, 1}))
		Expect(t.NewNodes()).To(HaveLen(5))
		Expect(t.Links()).To(HaveLen(2*5 + 2))

		tipBase := t.Tip().Base()
		Expect(tipBase[0] == t.Sections()[1].Node("top_left")).To(BeTrue())
	})

	It("puts a lone tip on the base", func() {
		base := baseNodes(space, 0, 1)
		t, err := creatures.NewTentacle(space, base, []float64{1}, nil,
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Sections()).To(BeEmpty())
		Expect(t.Tip().Base()[0] == base[0]).To(BeTrue())
	})

	It("rejects mismatched dimensions and bases", func() {
		_, err := creatures.NewTentacle(space, baseNodes(space, 0, 1), repeat(1, 5), repeat(1, 3),
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).To(MatchError(dynamo.ErrShapeMismatch))

		_, err = creatures.NewTentacle(space, baseNodes(space, 0, 1), repeat(1, 3), repeat(1, 3),
			creatures.TentacleOptions{Section: creatures.CentralBone{}, Materials: creatures.DefaultMaterials()})
		Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
	})

	It("sets materials section by section", func() {
		t, err := creatures.NewTentacle(space, baseNodes(space, 0, 1), repeat(1, 3), repeat(1, 3),
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).NotTo(HaveOccurred())

		Expect(t.SetStiffness(creatures.LinkSecSide, 10, 20, 30)).To(Succeed())
		for i, s := range t.Sections() {
			left, right := s.SideLinks()
			Expect(left.Stiffness()).To(Equal(float64(10 * (i + 1))))
			Expect(right.Stiffness()).To(Equal(float64(10 * (i + 1))))
		}
		Expect(t.SetDamping(creatures.LinkSecDiag, 0.25)).To(Succeed())
		Expect(t.Sections()[2].Link("diag_LR").DampingRatio()).To(Equal(0.25))

		Expect(t.SetStiffness(creatures.LinkSecSide, 1, 2)).To(MatchError(dynamo.ErrShapeMismatch))
	})

	It("groups muscles from base to tip", func() {
		t, err := creatures.NewTentacle(space, baseNodes(space, 0, 1), repeat(1, 8), repeat(1, 8),
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).NotTo(HaveOccurred())

		mi, err := t.MusclesProximodistal(3, sectionOne)
		Expect(err).NotTo(HaveOccurred())
		Expect(mi.Len()).To(Equal(3))
		Expect(t.MuscleInterface()).To(BeIdenticalTo(mi))

		groups := t.SectionGroups()
		Expect(groups).To(HaveLen(3))
		Expect(groups[0]).To(HaveLen(3))
		Expect(groups[1]).To(HaveLen(3))
		Expect(groups[2]).To(HaveLen(2))

		Expect(mi.Actuate([]float64{0.5, 0, -0.5})).To(Succeed())
		for _, s := range groups[0] {
			left, right := s.SideLinks()
			Expect(left.ExpandFactor()).To(Equal(0.5))
			Expect(right.ExpandFactor()).To(Equal(1.5))
		}
		for _, s := range groups[2] {
			left, _ := s.SideLinks()
			Expect(left.ExpandFactor()).To(Equal(1.5))
		}

		Expect(mi.Actuate([]float64{0.5})).To(MatchError(dynamo.ErrSignalLength))
		t.Relax()
		for _, m := range t.Muscles() {
			Expect(m.ExpandFactor()).To(Equal(1.0))
		}

		_, err = t.MusclesProximodistal(0, sectionOne)
		Expect(err).To(MatchError(dynamo.ErrConstruction))
	})

	It("holds its shape under gravity on the ground", func() {
		Expect(space.AddRect(physics.Rect{XL: -1000, XR: 1000, YB: -100, YT: 0, Restitution: 0.5})).To(Succeed())
		t, err := creatures.NewTentacle(space, baseNodes(space, 0, 10), repeat(10, 4), repeat(10, 4),
			creatures.TentacleOptions{Materials: lightMaterials()})
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 200; i++ {
			Expect(space.Step()).To(Succeed())
		}
		Expect(finite(t.Nodes())).To(BeTrue())
		for _, l := range t.Links() {
			Expect(math.Abs(l.Length() - l.RelaxLength())).To(BeNumerically("<", 5))
		}
	})
})

var _ = Describe("EvenDivide", func() {
	DescribeTable("splits into contiguous groups, larger first",
		func(n, k int, sizes []int) {
			values := make([]int, n)
			for i := range values {
				values[i] = i
			}
			groups := creatures.EvenDivide(values, k)
			Expect(groups).To(HaveLen(len(sizes)))
			next := 0
			for i, g := range groups {
				Expect(g).To(HaveLen(sizes[i]))
				for _, v := range g {
					Expect(v).To(Equal(next))
					next++
				}
			}
			Expect(next).To(Equal(n))
		},
		Entry("even", 8, 2, []int{4, 4}),
		Entry("uneven", 8, 3, []int{3, 3, 2}),
		Entry("seven in three", 7, 3, []int{3, 2, 2}),
		Entry("fewer values than groups", 2, 3, []int{1, 1}),
		Entry("empty", 0, 3, []int{}),
		Entry("one group", 5, 1, []int{5}),
	)

	It("gives no groups for a non-positive group count", func() {
		Expect(creatures.EvenDivide([]int{1, 2, 3}, 0)).To(BeEmpty())
		Expect(creatures.EvenDivide([]int{1, 2, 3}, -2)).To(BeEmpty())
	})
})

var _ = Describe("DevTentacle", func() {
	It("scales dimensions by development factors", func() {
		space := newSpace()
		d, err := creatures.NewDevTentacle(space, baseNodes(space, 0, 1), []float64{2, 2, 2}, []float64{1, 1},
			creatures.DevFactors{Height: []float64{0.5}},
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).NotTo(HaveOccurred())

		Expect(d.HeightsOne()).To(Equal([]float64{2, 2, 2}))
		Expect(d.WidthsOne()).To(Equal([]float64{1, 1}))
		Expect(d.Heights()).To(Equal([]float64{1, 1, 1}))

		Expect(d.SetHeightDevFactor(1)).To(Succeed())
		Expect(d.Heights()).To(Equal([]float64{2, 2, 2}))
		Expect(d.Sections()[0].Link("left").RelaxLength()).To(Equal(2.0))
		for _, l := range d.Tip().Links() {
			Expect(l.RelaxLength()).To(BeNumerically("~", math.Sqrt(0.25+4), 1e-9))
		}

		Expect(d.SetHeightDevFactor(0.5, 0.75, 1)).To(Succeed())
		Expect(d.Heights()).To(Equal([]float64{1, 1.5, 2}))

		Expect(d.SetWidthDevFactor(2)).To(Succeed())
		Expect(d.Widths()).To(Equal([]float64{2, 2}))
		Expect(d.Sections()[1].Link("width").RelaxLength()).To(Equal(2.0))

		Expect(d.SetHeightDevFactor(1, 2)).To(MatchError(dynamo.ErrShapeMismatch))
	})

	It("rejects factors of the wrong length", func() {
		space := newSpace()
		_, err := creatures.NewDevTentacle(space, baseNodes(space, 0, 1), []float64{2, 2}, []float64{1, 1},
			creatures.DevFactors{Width: []float64{1, 1, 1}},
			creatures.TentacleOptions{Materials: creatures.DefaultMaterials()})
		Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
	})
})
