// Package task defines the unit of build work and the two ways of combining
// units: series and parallel composition.
//
// Every task, leaf or composite, satisfies the same [Task] contract: Run
// blocks until the work is done and returns a [Result] or an error. There is
// no completion callback; synchronous and asynchronous work look the same to
// a caller, which is what lets composites nest freely.
//
// # Semantics
//
//   - [Series] runs children in order. A child is started only after its
//     predecessor returned successfully. The first failure stops the chain
//     and is returned wrapped in an errors.TaskError naming the child.
//   - [Parallel] starts all children at once and always waits for every one
//     of them before returning. Failures are collected in registration order
//     into an errors.AggregateError.
//
// Tasks must be idempotent: running one twice on an unchanged source tree
// must produce the same output tree.
package task
