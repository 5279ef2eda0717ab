// Package creatures assembles soft-body morphologies from nodes and links.
//
// A [Section] is a braced quadrilateral (or pentagon, for [CentralBone])
// built on a base of existing nodes. Sections chain into a [Tentacle], whose
// last forward base can be capped by a [Tip]. A [Starfish] attaches one
// tentacle per base of a central hub; a centipede uses a ladder instead of a
// radial hub. [FusedSquares] tiles a grid of actuated squares that share
// corner nodes and side links.
//
// Rest lengths are derived from heights and widths in closed form and are
// recomputed by every mutator, so they are never stale. Construction is
// deterministic: the same inputs produce the same node positions.
package creatures
