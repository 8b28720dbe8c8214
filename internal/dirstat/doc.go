// Package dirstat aggregates file counts and sizes over a directory tree.
//
// The default engine reifies the recursion as worker-pool submissions: each
// discovered subdirectory becomes a task, tasks submit further tasks, and the
// caller blocks until the pool's outstanding-work counter drops to zero.
// All tasks update one mutex-guarded Accumulator.
//
// A fastwalk-based engine is available as an alternative backend.
package dirstat
