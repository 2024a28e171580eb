// package formatter renders a [models.Report] as plain text, JSON, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
)

// Format names accepted by [Render] and [WriteReport].
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatJSON, FormatCSV, FormatMarkdown}

// ExportToText renders each entry as "N. Artist - Track", then indented
// "from Release" and "minutes played: M.MM" lines, separated by blank lines.
func ExportToText(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range report.Entries {
		fmt.Fprintf(&buf, "%d. %s - %s\n", e.Rank, e.ArtistName, e.TrackName)
		fmt.Fprintf(&buf, "    from %s\n", e.ReleaseName)
		fmt.Fprintf(&buf, "    minutes played: %s\n\n", shared.FormatMinutes(e.ListeningMS))
	}
	return buf.Bytes(), nil
}

// ExportToJSON renders the whole report, including skipped and unresolvable recordings.
func ExportToJSON(report *models.Report) ([]byte, error) {
	data, err := shared.MarshalJSON(report, true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts entries to CSV with columns: Rank, Artist, Track, Release, MBID, Listens, DurationMS, ListeningMS, Minutes
func ExportToCSV(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Artist", "Track", "Release", "MBID", "Listens", "DurationMS", "ListeningMS", "Minutes"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range report.Entries {
		record := []string{
			strconv.Itoa(e.Rank),
			e.ArtistName,
			e.TrackName,
			e.ReleaseName,
			e.MBID,
			strconv.FormatInt(e.ListenCount, 10),
			strconv.FormatInt(e.DurationMS, 10),
			strconv.FormatInt(e.ListeningMS, 10),
			shared.FormatMinutes(e.ListeningMS),
		}
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

// ExportToMarkdown renders a heading, a ranked table, and lists of excluded recordings.
func ExportToMarkdown(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Most listened recordings for %s\n\n", report.User)
	fmt.Fprintf(&buf, "**Range**: %s\n", report.Range)
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&buf, "**Generated**: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&buf, "**Total minutes**: %s\n\n", shared.FormatMinutes(report.TotalListeningMS))

	buf.WriteString("| # | Artist | Track | Release | Listens | Minutes |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, e := range report.Entries {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %d | %s |\n",
			e.Rank,
			escapeCell(e.ArtistName),
			escapeCell(e.TrackName),
			escapeCell(e.ReleaseName),
			e.ListenCount,
			shared.FormatMinutes(e.ListeningMS),
		)
	}

	writeRecordingList(&buf, "Skipped", report.Skipped)
	writeRecordingList(&buf, "Without a MusicBrainz id", report.Unresolvable)

	return buf.Bytes(), nil
}

func writeRecordingList(buf *bytes.Buffer, title string, recs []models.Recording) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintf(buf, "\n## %s\n\n", title)
	for _, r := range recs {
		fmt.Fprintf(buf, "- %s - %s (%s), %d listens\n", r.ArtistName, r.TrackName, r.ReleaseName, r.ListenCount)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Render renders report in the named format.
func Render(report *models.Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatText, "txt", "":
		return ExportToText(report)
	case FormatJSON:
		return ExportToJSON(report)
	case FormatCSV:
		return ExportToCSV(report)
	case FormatMarkdown, "md":
		return ExportToMarkdown(report)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)",
			shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteReport renders report and writes it to path.
//
// Defaults to playtime_{run id}.{ext} as the filename.
func WriteReport(report *models.Report, format, path string) (string, error) {
	data, err := Render(report, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("playtime_%s.%s", report.RunID, Extension(format))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown, "md":
		return "md"
	default:
		return "txt"
	}
}
