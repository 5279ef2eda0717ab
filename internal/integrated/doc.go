// Package integrated advances nodes and links as an ordinary differential
// equation. Positions and velocities are packed into a [dynamo.State] laid
// out as [x0, y0, x1, y1, ..., vx0, vy0, vx1, vy1, ...] and stepped by any
// [dynamo.Integrator]; collisions are resolved by projection after each
// sub-interval.
package integrated
