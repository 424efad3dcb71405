package server

import (
	"database/sql"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/repositories"
	"github.com/desertthunder/lineup/internal/shared"
	"github.com/desertthunder/lineup/internal/tasks"
)

// LineupHandler serves the REST API over the SQLite repositories.
//
// Moves, submissions and syncs run through a [tasks.LineupEngine] so concurrent requests for one
// event are serialized and verified the same way CLI operations are.
type LineupHandler struct {
	mux    *http.ServeMux
	routes []string

	db          *sql.DB
	events      *repositories.EventRepository
	songs       *repositories.SongRepository
	scanners    *repositories.ScannerRepository
	assignments *repositories.AssignmentRepository
	engine      *tasks.LineupEngine
	metrics     *Metrics
	logger      *log.Logger
}

// NewLineupHandler wires the API's repositories and engine on db.
func NewLineupHandler(db *sql.DB, opts tasks.Options, metrics *Metrics, logger *log.Logger) *LineupHandler {
	songs := repositories.NewSongRepository(db)
	assignments := repositories.NewAssignmentRepository(db)
	opts.Logger = logger

	h := &LineupHandler{
		mux:         http.NewServeMux(),
		db:          db,
		events:      repositories.NewEventRepository(db),
		songs:       songs,
		scanners:    repositories.NewScannerRepository(db),
		assignments: assignments,
		engine:      tasks.NewLineupEngine(songs, assignments, opts),
		metrics:     metrics,
		logger:      shared.WithLogger(logger, "component", "api"),
	}

	h.handle("GET /health", h.health)
	h.handle("GET /api/events", h.listEvents)
	h.handle("POST /api/events", h.createEvent)
	h.handle("GET /api/events/{id}/songs", h.listSongs)
	h.handle("POST /api/events/{id}/songs", h.addSong)
	h.handle("PATCH /api/events/{id}/songs/positions", h.submitPositions)
	h.handle("POST /api/events/{id}/songs/move", h.moveSong)
	h.handle("DELETE /api/events/{id}/songs/{song}", h.removeSong)
	h.handle("GET /api/events/{id}/scanners", h.listAssignments)
	h.handle("POST /api/events/{id}/scanners", h.linkScanners)
	h.handle("PUT /api/events/{id}/scanners", h.syncScanners)
	h.handle("DELETE /api/assignments/{id}", h.unlink)
	h.handle("GET /api/scanners", h.listScanners)
	h.handle("POST /api/scanners", h.createScanner)

	return h
}

func (h *LineupHandler) handle(pattern string, fn http.HandlerFunc) {
	h.mux.HandleFunc(pattern, fn)
	h.routes = append(h.routes, pattern)
}

// Routes returns the method patterns this handler serves.
func (h *LineupHandler) Routes() []string {
	return h.routes
}

func (h *LineupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// fail writes err as a JSON error body. Unclassified errors are logged and their text withheld.
func (h *LineupHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := shared.ErrorCode(err)
	msg := err.Error()
	if code == shared.CodeInternal {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, statusFor(code), errorBody(msg, code))
}

func (h *LineupHandler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("database ping failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *LineupHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context(), nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	bodies := make([]models.EventBody, 0, len(events))
	for _, e := range events {
		bodies = append(bodies, e.Body())
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": bodies})
}

func (h *LineupHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	var body models.EventBody
	if err := decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	event, err := body.Event()
	if err != nil {
		h.fail(w, r, shared.NewInvalidInput("%v", err))
		return
	}
	if err := h.events.Create(r.Context(), event); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event.Body())
}

func (h *LineupHandler) listSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songs.ListByEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	body := models.ItemsBody{Items: make([]models.OrderedItem, 0, len(songs)), Songs: make([]models.SongBody, 0, len(songs))}
	for _, s := range songs {
		body.Items = append(body.Items, s.Item())
		body.Songs = append(body.Songs, s.Body())
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *LineupHandler) addSong(w http.ResponseWriter, r *http.Request) {
	var body models.SongBody
	if err := decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	song := models.NewSong(r.PathValue("id"), body.Title, body.Artist)
	if err := h.songs.Create(r.Context(), song); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song.Body())
}

func (h *LineupHandler) removeSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Get(r.Context(), r.PathValue("song"))
	if err == nil && song.EventID != r.PathValue("id") {
		err = shared.NewNotFound("song", r.PathValue("song"))
	}
	if err == nil {
		err = h.songs.Delete(r.Context(), song.ID())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LineupHandler) observeMove(result *tasks.MoveResult, err error) {
	switch {
	case err != nil:
		h.metrics.ObserveMove(shared.ErrorCode(err))
	case result.Skipped:
		h.metrics.ObserveMove("skipped")
	case result.Changed():
		h.metrics.ObserveMove("changed")
	default:
		h.metrics.ObserveMove("unchanged")
	}
}

func (h *LineupHandler) submitPositions(w http.ResponseWriter, r *http.Request) {
	var body models.PositionsBody
	if err := decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.engine.Submit(r.Context(), r.PathValue("id"), body.Updates, nil)
	h.observeMove(result, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ItemsBody{Items: result.After})
}

func (h *LineupHandler) moveSong(w http.ResponseWriter, r *http.Request) {
	var req models.MoveRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.engine.Move(r.Context(), r.PathValue("id"), req, nil)
	h.observeMove(result, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ItemsBody{Items: result.After})
}

func (h *LineupHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	current, err := h.assignments.Assignments(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.AssignmentsBody{Assignments: current})
}

// linkScanners links each requested scanner independently; one scanner failing never fails the request.
func (h *LineupHandler) linkScanners(w http.ResponseWriter, r *http.Request) {
	var body models.LinkBody
	if err := decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(body.ScannerIDs) == 0 {
		h.fail(w, r, shared.NewInvalidInput("scanner_ids must not be empty"))
		return
	}

	outcomes, err := h.assignments.Link(r.Context(), r.PathValue("id"), body.ScannerIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.ObserveOutcomes(outcomes...)

	results := make([]models.LinkResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, o.Body())
	}
	writeJSON(w, http.StatusOK, models.LinkResultsBody{Results: results})
}

// syncScanners makes the event's links match scanner_ids exactly.
func (h *LineupHandler) syncScanners(w http.ResponseWriter, r *http.Request) {
	var body models.LinkBody
	if err := decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.engine.SyncAssignments(r.Context(), r.PathValue("id"), body.ScannerIDs, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.ObserveOutcomes(result.Succeeded...)
	h.metrics.ObserveOutcomes(result.Failed...)

	writeJSON(w, http.StatusOK, result.Body())
}

func (h *LineupHandler) unlink(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.assignments.Unlink(r.Context(), id)
	h.metrics.ObserveOutcomes(reconcile.Outcome{Op: reconcile.Unlink, AssignmentID: id, Err: err})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LineupHandler) listScanners(w http.ResponseWriter, r *http.Request) {
	scanners, err := h.scanners.List(r.Context(), nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	bodies := make([]models.ScannerBody, 0, len(scanners))
	for _, s := range scanners {
		bodies = append(bodies, s.Body())
	}
	writeJSON(w, http.StatusOK, map[string]any{"scanners": bodies})
}

func (h *LineupHandler) createScanner(w http.ResponseWriter, r *http.Request) {
	var body models.ScannerBody
	if err := decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	s := models.NewScanner(0, body.Name, body.Serial)
	if err := h.scanners.Create(r.Context(), s); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Body())
}
