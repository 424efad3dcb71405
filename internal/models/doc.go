// Package models defines domain entities and persistence interfaces for lineup.
//
// The package contains two categories of types:
//
// 1. Position and assignment values: lightweight structs passed to and returned by the engines
//   - [OrderedItem] : an identity and its 1-based position in an ordered list
//   - [PositionUpdate] : a new position for one identity
//   - [MoveRequest] : a single move (up, down, or to a target position)
//   - [Assignment] : a link record between a member (scanner) and an owner (event)
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Event] : owns a playlist and a set of scanner assignments
//   - [Song] : playlist entry of an event, ordered by position
//   - [Scanner] : ticket scanner that can be linked to events
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
