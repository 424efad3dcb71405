package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgEventsFetched MsgKind = iota
	MsgSongsFetched
	MsgProgressUpdate
	MsgMoveComplete
)

type eventsFetched struct {
	events []models.EventBody
	err    error
}

type songsFetched struct {
	event models.EventBody
	songs []models.SongBody
	err   error
}

type moveComplete struct {
	result *tasks.MoveResult
	songs  []models.SongBody
	err    error
}

// eventsFetchedMsg is the constructor for [MsgEventsFetched]
func eventsFetchedMsg(events []models.EventBody, err error) Msg {
	return Msg{kind: MsgEventsFetched, data: eventsFetched{events, err}}
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(event models.EventBody, songs []models.SongBody, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsFetched{event, songs, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// moveCompleteMsg is the constructor for [MsgMoveComplete]
func moveCompleteMsg(result *tasks.MoveResult, songs []models.SongBody, err error) Msg {
	return Msg{kind: MsgMoveComplete, data: moveComplete{result, songs, err}}
}
