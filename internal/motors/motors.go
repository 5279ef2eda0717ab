// Package motors maps flat control vectors onto muscle links.
//
// Leaves drive links directly (DirectMuscles) or as antagonist pairs
// (SectionOneMuscle, SectionTwoMuscles). Broadcast sends one signal to several
// leaves of the same length and Interface concatenates groups, slicing its
// signal contiguously in group order.
package motors

import (
	"fmt"

	"github.com/san-kum/springs/internal/dynamo"
	"github.com/san-kum/springs/internal/physics"
)

type Actuator interface {
	// Len is the number of control values Actuate expects.
	Len() int
	Actuate(signal []float64) error
	// Relax returns every driven link to expand factor 1.
	Relax()
}

// Pair is a part with a left and a right muscle, such as a section.
type Pair interface {
	SideLinks() (left, right physics.Link)
}

// Factory builds the actuator of one part.
type Factory func(p Pair) Actuator

const (
	KindSectionOne = "section_one"
	KindSectionTwo = "section_two"
)

func FactoryFor(kind string) (Factory, error) {
	switch kind {
	case KindSectionOne:
		return func(p Pair) Actuator { return NewSectionOneMuscle(p) }, nil
	case KindSectionTwo:
		return func(p Pair) Actuator { return NewSectionTwoMuscles(p) }, nil
	default:
		return nil, fmt.Errorf("muscle kind %q: %w", kind, dynamo.ErrUnsupported)
	}
}

func Kinds() []string {
	return []string{KindSectionOne, KindSectionTwo}
}

func checkLen(op string, a Actuator, signal []float64) error {
	if len(signal) != a.Len() {
		return dynamo.SignalLength(op, a.Len(), len(signal))
	}
	return nil
}

// DirectMuscles sets the expand factor of each muscle to one control value.
type DirectMuscles struct {
	muscles []physics.Link
}

func NewDirectMuscles(muscles []physics.Link) *DirectMuscles {
	return &DirectMuscles{muscles: muscles}
}

func (d *DirectMuscles) Len() int { return len(d.muscles) }

func (d *DirectMuscles) Actuate(signal []float64) error {
	if err := checkLen("direct muscles", d, signal); err != nil {
		return err
	}
	for i, m := range d.muscles {
		m.Contract(signal[i])
	}
	return nil
}

func (d *DirectMuscles) Relax() {
	for _, m := range d.muscles {
		m.Relax()
	}
}

// SectionOneMuscle bends a section with one value α: the left muscle
// contracts to 1-α while the right one expands to 1+α.
type SectionOneMuscle struct {
	left, right physics.Link
}

func NewSectionOneMuscle(p Pair) *SectionOneMuscle {
	left, right := p.SideLinks()
	return &SectionOneMuscle{left: left, right: right}
}

func (s *SectionOneMuscle) Len() int { return 1 }

func (s *SectionOneMuscle) Actuate(signal []float64) error {
	if err := checkLen("section one muscle", s, signal); err != nil {
		return err
	}
	alpha := signal[0]
	s.left.Contract(1 - alpha)
	s.right.Contract(1 + alpha)
	return nil
}

func (s *SectionOneMuscle) Relax() {
	s.left.Relax()
	s.right.Relax()
}

// SectionTwoMuscles takes (α, β): α bends as in SectionOneMuscle and β scales
// both muscles. β is not clamped; it should stay positive.
type SectionTwoMuscles struct {
	left, right physics.Link
}

func NewSectionTwoMuscles(p Pair) *SectionTwoMuscles {
	left, right := p.SideLinks()
	return &SectionTwoMuscles{left: left, right: right}
}

func (s *SectionTwoMuscles) Len() int { return 2 }

func (s *SectionTwoMuscles) Actuate(signal []float64) error {
	if err := checkLen("section two muscles", s, signal); err != nil {
		return err
	}
	alpha, beta := signal[0], signal[1]
	s.left.Contract((1 - alpha) * beta)
	s.right.Contract((1 + alpha) * beta)
	return nil
}

func (s *SectionTwoMuscles) Relax() {
	s.left.Relax()
	s.right.Relax()
}

// Broadcast sends the same signal to every group. All groups have the same length.
type Broadcast struct {
	groups []Actuator
	length int
}

func NewBroadcast(groups ...Actuator) (*Broadcast, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("broadcast: no groups: %w", dynamo.ErrConstruction)
	}
	b := &Broadcast{length: groups[0].Len()}
	for _, g := range groups {
		if err := b.AddGroup(g); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Broadcast) AddGroup(g Actuator) error {
	if g.Len() != b.length {
		return fmt.Errorf("broadcast group %d: %w", len(b.groups), dynamo.Shape("broadcast", b.length, g.Len()))
	}
	b.groups = append(b.groups, g)
	return nil
}

func (b *Broadcast) Len() int { return b.length }

func (b *Broadcast) Groups() []Actuator { return b.groups }

func (b *Broadcast) Actuate(signal []float64) error {
	if err := checkLen("broadcast", b, signal); err != nil {
		return err
	}
	for _, g := range b.groups {
		if err := g.Actuate(signal); err != nil {
			return err
		}
	}
	return nil
}

func (b *Broadcast) Relax() {
	for _, g := range b.groups {
		g.Relax()
	}
}

// Interface concatenates groups into one control vector.
type Interface struct {
	groups []Actuator
	length int
}

func NewInterface(groups ...Actuator) *Interface {
	mi := &Interface{}
	for _, g := range groups {
		mi.AddGroup(g)
	}
	return mi
}

func (mi *Interface) AddGroup(g Actuator) {
	mi.groups = append(mi.groups, g)
	mi.length += g.Len()
}

func (mi *Interface) Len() int { return mi.length }

func (mi *Interface) Groups() []Actuator { return mi.groups }

// Actuate checks the length of the whole signal before driving any link.
func (mi *Interface) Actuate(signal []float64) error {
	if err := checkLen("muscle interface", mi, signal); err != nil {
		return err
	}
	offset := 0
	for _, g := range mi.groups {
		n := g.Len()
		if err := g.Actuate(signal[offset : offset+n]); err != nil {
			return err
		}
		offset += n
	}
	return nil
}

func (mi *Interface) Relax() {
	for _, g := range mi.groups {
		g.Relax()
	}
}
