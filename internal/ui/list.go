package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/lineup/internal/models"
)

var (
	_ list.Item = eventItem{}
	_ list.Item = songItem{}
)

// eventItem wraps [models.EventBody] to implement [list.Item].
type eventItem struct {
	event models.EventBody
}

func (i eventItem) FilterValue() string { return i.event.Name }
func (i eventItem) Title() string       { return i.event.Name }
func (i eventItem) Description() string {
	switch {
	case i.event.Venue != "" && i.event.StartsAt != "":
		return fmt.Sprintf("%s • %s", i.event.Venue, i.event.StartsAt)
	case i.event.Venue != "":
		return i.event.Venue
	default:
		return i.event.StartsAt
	}
}

// songItem wraps [models.SongBody] to implement [list.Item].
type songItem struct {
	song models.SongBody
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string       { return fmt.Sprintf("%d. %s", i.song.Position, i.song.Title) }
func (i songItem) Description() string { return i.song.Artist }

func newList(items []list.Item, title string, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}
