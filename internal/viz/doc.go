// Package viz renders bodies and run summaries for the terminal.
//
//   - [Canvas]: braille pixel canvas, two by four dots per cell
//   - [DrawBody]: wireframe of a body's links fitted to a canvas
//   - [Panel], [Sparkline]: lipgloss styled summaries for the CLI
package viz
