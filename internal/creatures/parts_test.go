package creatures_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springs/internal/creatures"
	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

var _ = Describe("Section", func() {
	var space physics.Space

	BeforeEach(func() {
		space = newSpace()
	})

	Context("standard", func() {
		It("creates two top nodes and five named links", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.NewNodes()).To(HaveLen(2))
			Expect(s.Nodes()).To(HaveLen(4))
			Expect(s.Links()).To(HaveLen(5))
			Expect(s.Muscles()).To(HaveLen(2))
			Expect(s.Springs()).To(HaveLen(3))
			for _, name := range []string{"diag_LR", "diag_RL", "left", "right", "width"} {
				Expect(s.Link(name)).NotTo(BeNil(), name)
			}
			Expect(s.LinksByMaterial(creatures.LinkSecDiag)).To(HaveLen(2))
			Expect(s.LinksByMaterial(creatures.LinkSecSide)).To(HaveLen(2))
			Expect(s.LinksByMaterial(creatures.LinkSecWidth)).To(HaveLen(1))

			tl, tr := s.Node("top_left"), s.Node("top_right")
			Expect(tl.X()).To(BeNumerically("~", 0, 1e-12))
			Expect(tl.Y()).To(BeNumerically("~", 1, 1e-12))
			Expect(tr.X()).To(BeNumerically("~", 1, 1e-12))
			Expect(tr.Y()).To(BeNumerically("~", 1, 1e-12))

			fb := s.ForwardBase()
			Expect(fb).To(HaveLen(2))
			Expect(fb[0] == tl).To(BeTrue())
			Expect(fb[1] == tr).To(BeTrue())
		})

		It("starts links at their geometric lengths", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Link("left").RelaxLength()).To(BeNumerically("~", 1, 1e-12))
			Expect(s.Link("diag_LR").RelaxLength()).To(BeNumerically("~", math.Sqrt2, 1e-12))
			Expect(s.Link("width").RelaxLength()).To(BeNumerically("~", 1, 1e-12))
		})

		It("recomputes rest lengths from height and width", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.SetHeight(2)).To(Succeed())
			Expect(s.Height()).To(Equal(2.0))
			Expect(s.Link("left").RelaxLength()).To(Equal(2.0))
			Expect(s.Link("right").RelaxLength()).To(Equal(2.0))
			Expect(s.Link("diag_LR").RelaxLength()).To(BeNumerically("~", math.Sqrt(5), 1e-12))
			Expect(s.Link("diag_RL").RelaxLength()).To(BeNumerically("~", math.Sqrt(5), 1e-12))

			Expect(s.SetWidth(3)).To(Succeed())
			Expect(s.Link("width").RelaxLength()).To(Equal(3.0))
			Expect(s.Link("diag_LR").RelaxLength()).To(BeNumerically("~", creatures.DiagLength(1, 2, 3), 1e-12))
			Expect(s.Nodes()).To(HaveLen(4))
		})

		It("rejects negative dimensions", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetHeight(-1)).To(MatchError(dynamo.ErrConstruction))
			Expect(s.SetWidth(-1)).To(MatchError(dynamo.ErrConstruction))
			Expect(s.Height()).To(Equal(1.0))

			_, err = creatures.Standard{}.Build(space, baseNodes(space, 0, 1), -1, 1, creatures.DefaultMaterials())
			Expect(err).To(MatchError(dynamo.ErrConstruction))
		})

		It("rejects coincident base nodes", func() {
			_, err := creatures.Standard{}.Build(space, baseNodes(space, 2, 2), 1, 1, creatures.DefaultMaterials())
			Expect(err).To(MatchError(dynamo.ErrConstruction))
		})

		It("rejects a base of the wrong size", func() {
			_, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1, 2), 1, 1, creatures.DefaultMaterials())
			Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
		})

		It("collapses a zero width section to a single apex", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 0, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())
			tl, tr := s.Node("top_left"), s.Node("top_right")
			Expect(tl.X()).To(BeNumerically("~", tr.X(), 1e-12))
			Expect(tl.Y()).To(BeNumerically("~", tr.Y(), 1e-12))
			Expect(s.Link("width").RelaxLength()).To(BeNumerically("~", 0, 1e-12))
		})

		It("keeps top nodes above the floor", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 0.5, 0, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Node("top_left").Y()).To(BeNumerically("~", creatures.StandardFloor, 1e-12))

			s, err = creatures.Standard{Floor: 0.2}.Build(space, baseNodes(space, 0, 1), 0.5, 0, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Node("top_left").Y()).To(BeNumerically("~", 0.2, 1e-12))
		})

		It("edits material buckets", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.SetStiffness(creatures.LinkSecSide, 42)).To(Succeed())
			for _, l := range s.LinksByMaterial(creatures.LinkSecSide) {
				Expect(l.Stiffness()).To(Equal(42.0))
			}
			Expect(s.Link("width").Stiffness()).To(Equal(12000.0))

			Expect(s.SetDamping(creatures.LinkSecDiag, 0.5)).To(Succeed())
			Expect(s.Link("diag_LR").DampingRatio()).To(Equal(0.5))

			Expect(s.SetStiffness(creatures.LinkSecCenter, 1)).To(MatchError(dynamo.ErrUnknownRole))
			Expect(s.SetDamping(creatures.LinkTip, 1)).To(MatchError(dynamo.ErrUnknownRole))
			Expect(s.SetStiffness(creatures.LinkSecSide, -1)).To(MatchError(dynamo.ErrConstruction))
		})

		It("relaxes its muscles", func() {
			s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())
			left, right := s.SideLinks()
			left.Contract(0.5)
			right.Contract(1.5)
			s.Relax()
			Expect(left.ExpandFactor()).To(Equal(1.0))
			Expect(right.ExpandFactor()).To(Equal(1.0))
		})

		It("fails without the materials it needs", func() {
			m := creatures.DefaultMaterials()
			delete(m.Links, creatures.LinkSecWidth)
			_, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, m)
			Expect(err).To(MatchError(dynamo.ErrUnknownRole))
		})
	})

	Context("central bone", func() {
		It("creates three top nodes and eleven links", func() {
			s, err := creatures.CentralBone{}.Build(space, baseNodes(space, 0, 1, 2), 1, 2, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.NewNodes()).To(HaveLen(3))
			Expect(s.Links()).To(HaveLen(11))
			Expect(s.LinksByMaterial(creatures.LinkSecDiag)).To(HaveLen(4))
			Expect(s.LinksByMaterial(creatures.LinkSecBigDiag)).To(HaveLen(2))
			Expect(s.LinksByMaterial(creatures.LinkSecCenter)).To(HaveLen(1))
			Expect(s.LinksByMaterial(creatures.LinkSecWidth)).To(HaveLen(2))
			Expect(s.LinksByMaterial(creatures.LinkSecSide)).To(HaveLen(2))
			Expect(s.Muscles()).To(HaveLen(2))
			Expect(s.ForwardBase()).To(HaveLen(3))

			mid := s.Node("top_middle")
			Expect(mid.X()).To(BeNumerically("~", 1, 1e-12))
			Expect(mid.Y()).To(BeNumerically("~", 1, 1e-12))
		})

		It("recomputes rest lengths from height and width", func() {
			s, err := creatures.CentralBone{}.Build(space, baseNodes(space, 0, 1, 2), 1, 2, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.SetWidth(1)).To(Succeed())
			Expect(s.SetHeight(3)).To(Succeed())

			Expect(s.Link("widthL").RelaxLength()).To(Equal(0.5))
			Expect(s.Link("widthR").RelaxLength()).To(Equal(0.5))
			Expect(s.Link("middle").RelaxLength()).To(Equal(3.0))
			Expect(s.Link("left").RelaxLength()).To(Equal(3.0))
			Expect(s.Link("diag_LM").RelaxLength()).To(BeNumerically("~", math.Sqrt(1+9), 1e-12))
			Expect(s.Link("diag_ML").RelaxLength()).To(BeNumerically("~", math.Sqrt(0.25+9), 1e-12))
			Expect(s.Link("diag_LR").RelaxLength()).To(BeNumerically("~", creatures.DiagLength(2, 3, 1), 1e-12))
		})

		It("accepts its extra materials", func() {
			s, err := creatures.CentralBone{}.Build(space, baseNodes(space, 0, 1, 2), 1, 2, creatures.DefaultMaterials())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetStiffness(creatures.LinkSecCenter, 7)).To(Succeed())
			Expect(s.Link("middle").Stiffness()).To(Equal(7.0))
			Expect(s.SetStiffness(creatures.LinkTip, 1)).To(MatchError(dynamo.ErrUnknownRole))
		})
	})

	It("looks up kinds by name", func() {
		k, err := creatures.SectionKindFor("central_bone")
		Expect(err).NotTo(HaveOccurred())
		Expect(k.BaseSize()).To(Equal(3))

		k, err = creatures.SectionKindFor("")
		Expect(err).NotTo(HaveOccurred())
		Expect(k.Name()).To(Equal("section"))

		_, err = creatures.SectionKindFor("hexagon")
		Expect(err).To(MatchError(dynamo.ErrUnsupported))
	})
})

var _ = Describe("Tip", func() {
	It("fans links from the base to the apex", func() {
		space := newSpace()
		tip, err := creatures.NewTip(space, baseNodes(space, 0, 2), 1, creatures.DefaultMaterials())
		Expect(err).NotTo(HaveOccurred())

		Expect(tip.Links()).To(HaveLen(2))
		Expect(tip.NewNodes()).To(HaveLen(1))
		Expect(tip.Apex().X()).To(BeNumerically("~", 1, 1e-12))
		Expect(tip.Apex().Y()).To(BeNumerically("~", 1, 1e-12))
		Expect(tip.Link("tiplink_0")).NotTo(BeNil())

		Expect(tip.SetHeight(2)).To(Succeed())
		for _, l := range tip.Links() {
			Expect(l.RelaxLength()).To(BeNumerically("~", math.Sqrt(1+4), 1e-12))
		}
		Expect(tip.SetHeight(-2)).To(MatchError(dynamo.ErrConstruction))
	})
})

var _ = Describe("Section dimension edits", func() {
	type edit func(s *creatures.Section) error
	height := func(h float64) edit { return func(s *creatures.Section) error { return s.SetHeight(h) } }
	width := func(w float64) edit { return func(s *creatures.Section) error { return s.SetWidth(w) } }

	restLengths := func(s *creatures.Section) []float64 {
		out := make([]float64, len(s.Links()))
		for i, l := range s.Links() {
			out[i] = l.RelaxLength()
		}
		return out
	}
	positions := func(s *creatures.Section) [][2]float64 {
		var out [][2]float64
		for _, n := range s.NewNodes() {
			out = append(out, [2]float64{n.X(), n.Y()})
		}
		return out
	}

	DescribeTable("do not depend on order and can be repeated",
		func(kind creatures.SectionKind, xs []float64) {
			build := func(h, w float64) *creatures.Section {
				space := newSpace()
				s, err := kind.Build(space, baseNodes(space, xs...), h, w, creatures.DefaultMaterials())
				Expect(err).NotTo(HaveOccurred())
				return s
			}

			want := build(1, 1)
			Expect(want.SetHeight(1.5)).To(Succeed())
			Expect(want.SetWidth(0.8)).To(Succeed())
			untouched := positions(build(1, 1))

			orders := [][]edit{
				{height(2), width(0.5), height(1.5), width(0.8)},
				{width(0.5), height(2), width(0.8), height(1.5)},
				{width(0.8), height(1.5)},
				{height(1.5), width(0.8), height(1.5), width(0.8), height(1.5)},
			}
			for i, order := range orders {
				s := build(1, 1)
				for _, e := range order {
					Expect(e(s)).To(Succeed())
				}
				Expect(s.Height()).To(Equal(1.5), "order %d", i)
				Expect(s.Width()).To(Equal(0.8), "order %d", i)
				got := restLengths(s)
				for j, l := range restLengths(want) {
					Expect(got[j]).To(BeNumerically("~", l, 1e-12), "order %d link %d", i, j)
				}
				Expect(positions(s)).To(Equal(untouched), "order %d", i)
			}
		},
		Entry("standard", creatures.Standard{}, []float64{0, 1}),
		Entry("central bone", creatures.CentralBone{}, []float64{0, 1, 2}),
	)

	It("matches the geometry of a fresh standard section", func() {
		space := newSpace()
		s, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1, 1, creatures.DefaultMaterials())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.SetWidth(0.8)).To(Succeed())
		Expect(s.SetHeight(1.5)).To(Succeed())

		fresh, err := creatures.Standard{}.Build(space, baseNodes(space, 0, 1), 1.5, 0.8, creatures.DefaultMaterials())
		Expect(err).NotTo(HaveOccurred())
		for _, name := range []string{"diag_LR", "diag_RL", "left", "right", "width"} {
			Expect(s.Link(name).RelaxLength()).To(BeNumerically("~", fresh.Link(name).RelaxLength(), 1e-9), name)
		}
	})
})
