// Package ordering computes position changes for ordered lists such as an event playlist.
//
// A list is a slice of [models.OrderedItem] sorted by position with positions exactly 1..N.
// [Plan] takes one [models.MoveRequest] and returns only the items whose position changes:
//
//   - adjacent moves (up/down) swap two neighbours and never return more than two updates
//   - targeted moves reinsert the item at the clamped target and shift everything in between by one
//
// Nothing here performs I/O. Callers submit the updates to their source and re-fetch.
// [Applied] lets a caller detect that a snapshot already reflects a set of updates, so
// re-submitting the same updates after a retry can be skipped.
package ordering
