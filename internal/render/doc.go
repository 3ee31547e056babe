// Package render turns tree attributes into batched line strokes.
//
// Geometry is computed in y-up math coordinates and emitted in y-down
// surface coordinates. The trunk is drawn first, then one [Stroke] per
// branch generation, each generation doubling the number of tips.
//
//   - [Surface]: anything that can clear itself and stroke segment batches
//   - [Renderer]: draws onto a Surface, revealing generations over time
//   - [Plan]: the same geometry computed synchronously
//   - [Recorder]: an in-memory Surface
//
// # Time-sliced reveal
//
// The first branch generation is drawn with the trunk; each later one is
// deferred by the renderer's delay through a [Scheduler]. Every Draw call
// takes a new request id, so continuations left over from a superseded
// draw find a newer id and stop without touching the surface.
package render
