// package formatter renders lineups, moves and sync results as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/reconcile"
	"github.com/desertthunder/lineup/internal/tasks"
)

// Format names an export format accepted by [Export].
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
)

// ParseFormat accepts csv, markdown (or md) and text (or txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt", "":
		return Text, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Extension returns the file extension used for f.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ".csv"
	case Markdown:
		return ".md"
	default:
		return ".txt"
	}
}

// LineupExport is an event with its playlist in position order.
type LineupExport struct {
	Event models.EventBody  `json:"event"`
	Songs []models.SongBody `json:"songs"`
}

// Export renders export in format f.
func Export(export *LineupExport, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export)
	case Text:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// ExportToCSV converts a LineupExport to CSV format with columns: Position, ID, Title, Artist
func ExportToCSV(export *LineupExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "ID", "Title", "Artist"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{strconv.Itoa(song.Position), song.ID, song.Title, song.Artist}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func songLine(song models.SongBody) string {
	if song.Artist == "" {
		return fmt.Sprintf("%d. %s", song.Position, song.Title)
	}
	return fmt.Sprintf("%d. %s - %s", song.Position, song.Artist, song.Title)
}

// ExportToMarkdown converts a LineupExport to a Markdown document
func ExportToMarkdown(export *LineupExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Event.Name)
	if export.Event.Venue != "" {
		fmt.Fprintf(&buf, "**Venue**: %s\n", export.Event.Venue)
	}
	if export.Event.StartsAt != "" {
		fmt.Fprintf(&buf, "**Starts**: %s\n", export.Event.StartsAt)
	}
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(export.Songs))

	buf.WriteString("## Lineup\n\n")
	for _, song := range export.Songs {
		buf.WriteString(songLine(song) + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a LineupExport to plain text format
func ExportToText(export *LineupExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Event: %s\n", export.Event.Name)
	if export.Event.Venue != "" {
		fmt.Fprintf(&buf, "Venue: %s\n", export.Event.Venue)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Songs))

	for _, song := range export.Songs {
		buf.WriteString(songLine(song) + "\n")
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of the event (without songs)
func ToMetadataJSON(event models.EventBody) ([]byte, error) {
	return json.MarshalIndent(event, "", "  ")
}

// ExportResult contains the paths of files created by [WriteExport]
type ExportResult struct {
	LineupFile   string
	MetadataFile string
}

// WriteExport writes the lineup in format f alongside a metadata JSON file.
//
// Defaults to the event ID as the base filename & creates {base}_lineup{ext} and {base}_metadata.json
func WriteExport(export *LineupExport, f Format, baseFilepath string) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Event.ID
	}

	data, err := Export(export, f)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", f, err)
	}

	lineupFile := baseFilepath + "_lineup" + f.Extension()
	if err := os.WriteFile(lineupFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write lineup file: %w", err)
	}

	metadata, err := ToMetadataJSON(export.Event)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadata, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &ExportResult{LineupFile: lineupFile, MetadataFile: metadataFile}, nil
}

// FormatMove describes a move result in one or more lines.
func FormatMove(result *tasks.MoveResult) string {
	switch {
	case result.Skipped:
		return fmt.Sprintf("List %s already reflects the submitted positions.", result.ListID)
	case !result.Changed():
		return fmt.Sprintf("List %s unchanged.", result.ListID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Moved %d item(s) in list %s:\n", len(result.Updates), result.ListID)

	before := make(map[string]int, len(result.Before))
	for _, it := range result.Before {
		before[it.ID] = it.Position
	}
	for _, u := range result.Updates {
		fmt.Fprintf(&b, "  %s: %d -> %d\n", u.ID, before[u.ID], u.NewPosition)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatItems renders items one per line as "position. id".
func FormatItems(items []models.OrderedItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", it.Position, it.ID))
	}
	return strings.Join(lines, "\n")
}

// FormatSync renders a sync result: its summary followed by one line per outcome.
func FormatSync(result *reconcile.Result) string {
	var b strings.Builder
	b.WriteString(result.Message())

	for _, o := range result.Succeeded {
		fmt.Fprintf(&b, "\n  ok   %s %s", o.Op, o.MemberID)
	}
	for _, o := range result.Failed {
		fmt.Fprintf(&b, "\n  fail %s %s: %s", o.Op, o.MemberID, o.Reason())
	}
	return b.String()
}
