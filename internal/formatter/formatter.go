// package formatter renders the menu of the editable date window as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "csv", "markdown", "txt"}

// Dish is one resolved course of a day.
type Dish struct {
	Course   models.Course `json:"course"`
	Text     string        `json:"text"`
	Fallback bool          `json:"fallback"`
}

// Row is one day of the window with every course resolved.
type Row struct {
	ID     string `json:"date"`
	Label  string `json:"label"`
	Dishes []Dish `json:"dishes"`
}

// Rows resolves every course of every date in window.
//
// A dish is marked Fallback when the day has no non-empty override.
func Rows(window []dates.Entry, menu models.DailyMenu, settings models.DisplaySettings) []Row {
	rows := make([]Row, 0, len(window))
	for _, e := range window {
		day := menu.Day(e.ID)
		row := Row{ID: e.ID, Label: e.FullLabel}
		for _, c := range models.Courses() {
			field := day.Get(c)
			row.Dishes = append(row.Dishes, Dish{
				Course:   c,
				Text:     models.ResolveDish(field, settings.Fallback(c)),
				Fallback: field.State() != models.NonEmpty,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportToCSV converts rows to CSV with columns: Date, Starter, Main, Dessert, Fallbacks
func ExportToCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Date"}
	for _, c := range models.Courses() {
		headers = append(headers, c.Title())
	}
	headers = append(headers, "Fallbacks")
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{row.ID}
		var fallbacks []string
		for _, d := range row.Dishes {
			record = append(record, d.Text)
			if d.Fallback {
				fallbacks = append(fallbacks, string(d.Course))
			}
		}
		record = append(record, strings.Join(fallbacks, " "))
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

// ExportToMarkdown converts rows to one Markdown section per day. Fallback dishes are italic.
func ExportToMarkdown(rows []Row) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Dagens Meny\n\n")
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("## %s\n\n", row.Label))
		for _, d := range row.Dishes {
			text := d.Text
			if d.Fallback {
				text = "_" + text + "_"
			}
			buf.WriteString(fmt.Sprintf("- **%s**: %s\n", d.Course.Title(), text))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts rows to plain text
func ExportToText(rows []Row) ([]byte, error) {
	var buf bytes.Buffer

	for i, row := range rows {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("%s (%s)\n", row.Label, row.ID))
		for _, d := range row.Dishes {
			buf.WriteString(fmt.Sprintf("  %-10s %s\n", d.Course.Title()+":", d.Text))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts rows to indented JSON
func ExportToJSON(rows []Row) ([]byte, error) {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rows: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders rows in the named format.
func Export(rows []Row, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(rows)
	case "markdown", "md":
		return ExportToMarkdown(rows)
	case "txt", "text":
		return ExportToText(rows)
	case "json", "":
		return ExportToJSON(rows)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case "markdown", "md":
		return ".md"
	case "txt", "text":
		return ".txt"
	case "csv":
		return ".csv"
	default:
		return ".json"
	}
}

// WriteExport renders rows and writes them to path, creating parent directories.
//
// An empty path defaults to menu_{first date}{ext} in the working directory.
func WriteExport(rows []Row, format, path string) (string, error) {
	data, err := Export(rows, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		first := "empty"
		if len(rows) > 0 {
			first = rows[0].ID
		}
		path = fmt.Sprintf("menu_%s%s", first, Extension(format))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
