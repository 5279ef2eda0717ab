// Package impulse is a sequential-impulse engine for node and link systems.
//
// Links are soft constraints: each step computes a position bias from the
// link's stiffness and damping ratio, warm-starts with the previous impulse
// and then relaxes velocities over a fixed number of substeps together with
// the collision contacts. Positions are updated once per step from the final
// velocities, with a bound on how far a node may travel in one step.
package impulse
