package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/sessionlog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// WriteHistory renders session log entries, newest first as listed.
func WriteHistory(w io.Writer, entries []sessionlog.Entry, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", FormatTable:
		return writeHistoryTable(w, entries)
	case FormatPlain:
		return writeHistoryPlain(w, entries)
	case FormatJSON:
		return writeHistoryJSON(w, entries)
	default:
		return errors.New().WithData(errors.ErrInvalidArgument, "unsupported format: "+opts.Format)
	}
}

func writeHistoryTable(w io.Writer, entries []sessionlog.Entry) error {
	tw := newTable(w, "Session logs")
	tw.AppendHeader(table.Row{"Started", "Package", "Size", "File"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
	})

	for _, e := range entries {
		tw.AppendRow(table.Row{
			e.Started.Format(historyTimeLayout),
			e.Package,
			formatSize(e.Size),
			filepath.Base(e.Path),
		})
	}

	if len(entries) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", "-", "-"})
	}

	tw.Render()
	return nil
}

func writeHistoryPlain(w io.Writer, entries []sessionlog.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Started.Format(time.RFC3339), e.Package, e.Size, e.Path); err != nil {
			return err
		}
	}
	return nil
}

type historyDoc struct {
	Path    string    `json:"path"`
	Package string    `json:"package"`
	Started time.Time `json:"started"`
	Size    int64     `json:"size"`
}

func writeHistoryJSON(w io.Writer, entries []sessionlog.Entry) error {
	docs := make([]historyDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, historyDoc(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
