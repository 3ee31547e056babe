// Package hasher provides the shared state string that synchronizes a
// scene, in the role a browser's URL fragment plays for a web page.
//
// A [Watcher] stores one string value, reports the value present at
// startup through OnInitialized, and reports later changes through
// OnChanged. Every [Event] carries an [Origin]: changes made through
// SetHash come back as LocalPublish so that their owner can ignore its own
// echo, while changes made by anyone else arrive as External.
//
//   - [Memory]: in-process value; Push simulates an outside edit
//   - [File]: a state file polled for changes
//   - [Redis]: a key plus a pub/sub channel shared by many processes
//
// # Thread Safety
//
// All watchers are safe for concurrent use. Handlers may run on the
// caller's goroutine (SetHash, Push, Init) or on a watcher goroutine
// (File polling, Redis subscription) and must not block for long.
package hasher
