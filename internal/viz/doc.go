// Package viz draws tree scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: grid of tree tiles with a side panel of attributes
//   - [Tile]: a render.Surface drawing onto a braille [Canvas]
//   - [Canvas]: Braille-based dot canvas with per-cell tones
//   - Theme selection with 5 built-in colour schemes, shared with the
//     window and the exporters
//
// # Key Bindings
//
//	1-9   - Promote tree to root
//	HJKL  - Move the selection
//	Enter - Promote the selection
//	R     - Randomize the selection
//	P     - Paste a state string
//	T     - Cycle colour themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// G records the selected tile every frame and writes a GIF when pressed
// again.
package viz
