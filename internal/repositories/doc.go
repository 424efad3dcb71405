// Package repositories implements SQLite persistence for events, songs, scanners and scanner assignments.
//
// Key Implementations:
//   - [EventRepository] : Events, the owners of playlists and scanner links
//   - [ScannerRepository] : Scanner devices with serial-based lookups
//   - [SongRepository] : Event playlists; implements the ordered-list source used by the reorder engine
//   - [AssignmentRepository] : Scanner links; implements the assignment source used by sync
//
// Events and scanners are soft deleted via deleted_at and carry per-table sequence numbers from [NextSequence].
// Songs and assignments are hard deleted: a song's position and a link's existence are the data.
package repositories
