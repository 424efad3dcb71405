// Package tasks runs reorder and assignment sync operations against a list or assignment source,
// reporting progress on a channel.
//
// # Sources
//
// [ListSource] and [AssignmentSource] abstract where playlists and scanner links live. The SQLite
// repositories and the REST backend client both implement them, so every operation works the same
// against the local database and a remote server.
//
// # Reordering
//
// [LineupEngine.Move] fetches a fresh snapshot, plans the move with the ordering package, submits the
// resulting updates and re-fetches to confirm the list is still 1..N. Moves on the same list are
// serialized, so two moves are never planned from the same snapshot.
//
// [LineupEngine.Submit] applies updates planned elsewhere (a TUI or API caller). A submission that the
// current state already reflects is skipped; one that no longer fits the current state fails with
// [shared.ErrStaleSnapshot].
//
// # Assignment Sync
//
// [LineupEngine.SyncAssignments] diffs the desired members against current links, unlinks the extras
// with a bounded worker pool paced by a rate limiter, links the missing members in one batch, and
// collects a per-member [reconcile.Result]. One failure never stops the other operations.
//
// # Progress Reporting
//
// Progress updates use select with default, so reporting never blocks an operation.
package tasks
