// Package integrators advances a dynamo.System by one time step.
//
// Verlet and Leapfrog assume the state is laid out as all positions followed
// by all velocities, the layout the integrated engine packs its nodes in.
// Every integrator returns a fresh state; x is never modified.
package integrators
