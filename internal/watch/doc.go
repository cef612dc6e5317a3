// Package watch rebuilds parts of the output tree when source files change.
//
// A Watcher owns a set of Bindings. Each Binding pairs a source glob with a
// task and a post-action. Filesystem events are matched against every
// binding; a matching binding moves through a small state machine:
//
//	idle --event--> pending --quiet for W--> invoking --done--> idle
//	                  ^  |                      |
//	                  +--+ event restarts W     | event sets queued
//	                                            v
//	                              done with queued --> pending
//
// so a burst of events yields one invocation, and an event that arrives
// while the task runs yields exactly one more invocation after it finishes.
// Bindings are independent of each other; two bindings may run at once.
//
// A failed invocation is published as event.WatchErrorEvent and the binding
// returns to idle. It never ends the session.
package watch
