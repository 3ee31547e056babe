// Package scene coordinates a fixed row of tree instances that share one
// encoded state string.
//
// Picking a tree promotes it to root: every other tree is re-derived from
// the root's attributes with one mutation step, all trees redraw, and the
// scene publishes its encoded state through a [hasher.Watcher]. A change to
// the state made elsewhere flows the other way: the string is decoded and
// pushed into the trees without mutation.
//
//   - [Scene]: the controller
//   - [Snapshot]: a consistent copy of the scene's state
//   - [Observer]: notified after every transition
//
// # Example
//
//	s, err := scene.New(views, watcher, scene.Options{})
//	if err != nil {
//		return err
//	}
//	if err := s.Start(ctx); err != nil {
//		return err
//	}
//	err = s.Promote(ctx, 3)
//
// # Thread Safety
//
// Transitions are serialized by one mutex. The scene's own publish echo is
// discarded before that mutex is taken, so watchers may deliver it
// synchronously from SetHash.
package scene
