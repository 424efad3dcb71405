package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
	"github.com/desertthunder/lineup/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EventListView ViewState = iota
	LineupView
)

// Catalog supplies the events and song details the TUI displays.
type Catalog interface {
	Events(ctx context.Context) ([]models.EventBody, error)
	Songs(ctx context.Context, eventID string) ([]models.SongBody, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	catalog Catalog
	engine  *tasks.LineupEngine
	eventID string
	width   int
	height  int

	eventList list.Model
	songList  list.Model
	event     models.EventBody
	songs     []models.SongBody

	pending      bool
	moving       string
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	status       string
	failed       bool

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model. A non-empty eventID opens that event's lineup directly.
func NewModel(ctx context.Context, catalog Catalog, engine *tasks.LineupEngine, eventID string) *Model {
	view := EventListView
	if eventID != "" {
		view = LineupView
	}
	return &Model{
		ctx:     ctx,
		view:    view,
		catalog: catalog,
		engine:  engine,
		eventID: eventID,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the events, or the requested event's songs.
func (m *Model) Init() tea.Cmd {
	if m.eventID != "" {
		return m.fetchEvent(m.eventID)
	}
	return m.fetchEvents()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if loaded(m.eventList) {
			m.eventList.SetSize(m.listSize())
		}
		if loaded(m.songList) {
			m.songList.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case EventListView:
			return m.handleEventListKeys(msg)
		case LineupView:
			return m.handleLineupKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEventsFetched:
		data := msg.data.(eventsFetched)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(data.events))
		for i, e := range data.events {
			items[i] = eventItem{event: e}
		}
		w, h := m.listSize()
		m.eventList = newList(items, "Events", w, h)
		return m, nil

	case MsgSongsFetched:
		data := msg.data.(songsFetched)
		if data.err != nil {
			m.err = data.err
			m.view = EventListView
			return m, nil
		}
		m.err = nil
		m.event = data.event
		m.setSongs(data.songs, "")
		m.status = ""
		m.view = LineupView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgMoveComplete:
		data := msg.data.(moveComplete)
		m.pending = false
		m.progressChan = nil
		m.done = nil
		m.progress = tasks.ProgressUpdate{}

		if data.err != nil {
			m.failed = true
			m.status = fmt.Sprintf("Move failed: %v", data.err)
			return m, nil
		}
		m.failed = false
		m.setSongs(data.songs, m.moving)
		m.status = m.describe(data.result)
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == EventListView && !loaded(m.eventList) {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case EventListView:
		return m.renderEventList()
	case LineupView:
		return m.renderLineup()
	default:
		return ""
	}
}

// Pending reports whether a move is in flight.
func (m *Model) Pending() bool {
	return m.pending
}

// Songs returns the displayed playlist in position order.
func (m *Model) Songs() []models.SongBody {
	return m.songs
}

// Err returns the error that stopped the TUI, if any.
func (m *Model) Err() error {
	return m.err
}

// loaded reports whether l was built by [newList]; the zero list has no delegate to size or render.
func loaded(l list.Model) bool {
	return l.Items() != nil
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) handleEventListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.eventList.SelectedItem().(eventItem); ok {
			return m, m.fetchSongs(selected.event)
		}
		return m, nil
	}

	if !loaded(m.eventList) {
		return m, nil
	}
	var cmd tea.Cmd
	m.eventList, cmd = m.eventList.Update(msg)
	return m, cmd
}

func (m *Model) handleLineupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.moveUp, m.keys.moveDown, m.keys.top, m.keys.bottom):
		if m.pending {
			return m, nil
		}
		selected, ok := m.songList.SelectedItem().(songItem)
		if !ok {
			return m, nil
		}
		return m, m.startMove(m.request(msg, selected.song.ID))

	case key.Matches(msg, m.keys.refresh):
		if m.pending {
			return m, nil
		}
		return m, m.fetchSongs(m.event)

	case key.Matches(msg, m.keys.back):
		if m.pending {
			return m, nil
		}
		m.view = EventListView
		m.status = ""
		if !loaded(m.eventList) {
			return m, m.fetchEvents()
		}
		return m, nil
	}

	if !loaded(m.songList) {
		return m, nil
	}
	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) request(msg tea.KeyMsg, id string) models.MoveRequest {
	switch {
	case key.Matches(msg, m.keys.moveUp):
		return models.MoveUp(id)
	case key.Matches(msg, m.keys.moveDown):
		return models.MoveDown(id)
	case key.Matches(msg, m.keys.top):
		return models.MoveTo(id, 1)
	default:
		return models.MoveTo(id, len(m.songs))
	}
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == EventListView && loaded(m.eventList):
		m.eventList, cmd = m.eventList.Update(msg)
	case m.view == LineupView && loaded(m.songList):
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

// setSongs rebuilds the song list, keeping selectID (or the current index) selected.
func (m *Model) setSongs(songs []models.SongBody, selectID string) {
	index := m.songList.Index()

	m.songs = songs
	items := make([]list.Item, len(songs))
	for i, s := range songs {
		items[i] = songItem{song: s}
		if s.ID == selectID {
			index = i
		}
	}

	w, h := m.listSize()
	m.songList = newList(items, m.event.Name, w, h)
	if len(items) > 0 {
		m.songList.Select(min(index, len(items)-1))
	}
}

func (m *Model) describe(result *tasks.MoveResult) string {
	if result == nil || !result.Changed() {
		return "No change."
	}
	for _, s := range m.songs {
		if s.ID == m.moving {
			return fmt.Sprintf("Moved %q to position %d.", s.Title, s.Position)
		}
	}
	return fmt.Sprintf("Moved %d song(s).", len(result.Updates))
}

func (m *Model) fetchEvents() tea.Cmd {
	return func() tea.Msg {
		events, err := m.catalog.Events(m.ctx)
		return eventsFetchedMsg(events, err)
	}
}

func (m *Model) fetchEvent(eventID string) tea.Cmd {
	return func() tea.Msg {
		events, err := m.catalog.Events(m.ctx)
		if err != nil {
			return songsFetchedMsg(models.EventBody{}, nil, err)
		}
		for _, e := range events {
			if e.ID == eventID {
				songs, err := m.catalog.Songs(m.ctx, e.ID)
				return songsFetchedMsg(e, songs, err)
			}
		}
		return songsFetchedMsg(models.EventBody{}, nil, shared.NewNotFound("event", eventID))
	}
}

func (m *Model) fetchSongs(event models.EventBody) tea.Cmd {
	return func() tea.Msg {
		songs, err := m.catalog.Songs(m.ctx, event.ID)
		return songsFetchedMsg(event, songs, err)
	}
}

// startMove runs req in the background; the returned command relays its progress and completion.
func (m *Model) startMove(req models.MoveRequest) tea.Cmd {
	m.pending = true
	m.moving = req.ID
	m.failed = false
	m.status = fmt.Sprintf("Moving: %s", req)

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan Msg, 1)
	m.progressChan, m.done = progress, done

	ctx, catalog, engine, eventID := m.ctx, m.catalog, m.engine, m.event.ID
	go func() {
		result, err := engine.Move(ctx, eventID, req, progress)
		var songs []models.SongBody
		if err == nil {
			songs, err = catalog.Songs(ctx, eventID)
		}
		close(progress)
		done <- moveCompleteMsg(result, songs, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	if progress == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderEventList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if !loaded(m.eventList) {
		return "Loading events...\n\n" + helpView
	}

	view := m.eventList.View()
	if m.err != nil {
		view += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return fmt.Sprintf("%s\n\n%s", view, helpView)
}

func (m *Model) renderLineup() string {
	if !loaded(m.songList) {
		if m.err != nil {
			return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
		}
		return "Loading lineup..."
	}
	if len(m.songs) == 0 && !m.pending {
		title := styles.title.Render(m.event.Name)
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.warn.Render("No songs in this lineup."),
			m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.refresh, m.keys.quit}))
	}

	var status string
	switch {
	case m.pending:
		status = styles.status.Render(fmt.Sprintf("%s  %s", m.status, m.progress.Message))
	case m.failed:
		status = styles.err.Render(m.status)
	case m.status != "":
		status = styles.ok.Render(m.status)
	}

	helpKeys := []key.Binding{m.keys.moveUp, m.keys.moveDown, m.keys.top, m.keys.bottom, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", m.songList.View(), status, helpView)
}
