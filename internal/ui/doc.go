// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI reorders an event's playlist:
//  1. [EventListView] : Browse and select events
//  2. [LineupView] : Move songs up, down, to the top or to the bottom
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Each move runs through a [tasks.LineupEngine]; its progress updates flow through a channel and move keys are
// ignored until the pending move settles, so a second move is always planned from the refreshed playlist.
//
// Keyboard navigation uses vim-style bindings (j/k to select, J/K to move, enter, esc, r, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
