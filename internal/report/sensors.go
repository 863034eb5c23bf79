package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/sensor"
	"github.com/jedib0t/go-pretty/v6/table"
)

const unsupported = "unsupported"

// WriteSensors renders the outcome of sensor detection.
func WriteSensors(w io.Writer, sensors []sensor.ResolvedSensor, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", FormatTable:
		tw := newTable(w, "Sensors")
		tw.AppendHeader(table.Row{"Kind", "Path", "Divider"})
		for _, s := range sensors {
			if !s.Supported() {
				tw.AppendRow(table.Row{s.Kind.String(), unsupported, notAvailable})
				continue
			}
			tw.AppendRow(table.Row{s.Kind.String(), s.Path, s.Divider})
		}
		tw.Render()
		return nil
	case FormatPlain:
		for _, s := range sensors {
			path, divider := unsupported, notAvailable
			if s.Supported() {
				path, divider = s.Path, fmt.Sprint(s.Divider)
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", s.Kind, path, divider); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		type sensorDoc struct {
			Kind      string `json:"kind"`
			Supported bool   `json:"supported"`
			Path      string `json:"path,omitempty"`
			Divider   int    `json:"divider,omitempty"`
		}
		docs := make([]sensorDoc, 0, len(sensors))
		for _, s := range sensors {
			doc := sensorDoc{Kind: s.Kind.String(), Supported: s.Supported()}
			if doc.Supported {
				doc.Path, doc.Divider = s.Path, s.Divider
			}
			docs = append(docs, doc)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	default:
		return errors.New().WithData(errors.ErrInvalidArgument, "unsupported format: "+opts.Format)
	}
}
