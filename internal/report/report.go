// Package report renders session analyses and log listings for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/session"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	FormatTable = "table"
	FormatPlain = "plain"
	FormatJSON  = "json"

	notAvailable = "-"
)

// Options controls rendering.
type Options struct {
	Format string
	// Color highlights frame-rate figures against the smoothness threshold.
	Color bool
}

// WriteReport renders r to w.
func WriteReport(w io.Writer, r *session.Report, opts Options) error {
	if r == nil {
		return errors.New().New(errors.ErrNoReport)
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatTable:
		return writeReportTable(w, r, opts.Color)
	case FormatPlain:
		return writeReportPlain(w, r)
	case FormatJSON:
		return writeReportJSON(w, r)
	default:
		return errors.New().WithData(errors.ErrInvalidArgument, "unsupported format: "+opts.Format)
	}
}

type metricLine struct {
	name string
	unit string
	s    session.Summary
}

func metricLines(r *session.Report) []metricLine {
	return []metricLine{
		{"CPU usage", "%", r.CPU.Usage},
		{"CPU temp", "°C", r.CPU.Temp},
		{"GPU usage", "%", r.GPU.Usage},
		{"GPU clock", "MHz", r.GPU.Clock},
		{"GPU temp", "°C", r.GPU.Temp},
		{"Battery temp", "°C", r.BatteryTemp},
		{"RAM usage", "MB", r.RAMUsage},
	}
}

func newTable(w io.Writer, title string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	tw.SetTitle(title)
	return tw
}

func writeReportTable(w io.Writer, r *session.Report, color bool) error {
	info := newTable(w, "Session")
	info.AppendRows([]table.Row{
		{"Package", r.PackageName},
		{"Date", r.SessionDate},
		{"Duration", r.SessionDuration},
		{"Samples", r.TotalSamples},
	})
	info.Render()

	fps := r.FrameRate
	frames := newTable(w, "Frame rate")
	frames.AppendHeader(table.Row{"Max", "Min", "Avg", "1% low", "0.1% low", "Std dev", "Smooth"})
	frames.AppendRow(table.Row{
		fpsCell(fps.Max, color),
		fpsCell(fps.Min, color),
		fpsCell(fps.Avg, color),
		fpsCell(fps.Low1Percent, color),
		fpsCell(fps.Low01Percent, color),
		fmt.Sprintf("%.2f", fps.StandardDeviation),
		fmt.Sprintf("%.2f%%", fps.Smoothness),
	})
	frames.SetColumnConfigs(rightAligned(7))
	frames.Render()

	metrics := newTable(w, "Metrics")
	metrics.AppendHeader(table.Row{"Metric", "Min", "Max", "Avg", "Samples"})
	for _, m := range metricLines(r) {
		metrics.AppendRow(table.Row{
			m.name,
			summaryCell(m.s, m.s.Min, m.unit),
			summaryCell(m.s, m.s.Max, m.unit),
			summaryCell(m.s, m.s.Avg, m.unit),
			m.s.Count,
		})
	}
	metrics.SetColumnConfigs(append([]table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}, rightAligned(5)[1:]...))
	metrics.Render()

	if cores := r.Series.Cores(); len(cores) > 0 {
		clocks := newTable(w, "CPU clocks")
		clocks.AppendHeader(table.Row{"Core", "Min", "Max", "Avg"})
		for _, core := range cores {
			s := session.Summarize(r.Series.CPUClock[core].Values())
			clocks.AppendRow(table.Row{
				fmt.Sprintf("cpu%d", core),
				summaryCell(s, s.Min, "MHz"),
				summaryCell(s, s.Max, "MHz"),
				summaryCell(s, s.Avg, "MHz"),
			})
		}
		clocks.Render()
	}

	return nil
}

func rightAligned(n int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, n)
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignCenter}
	}
	return configs
}

func fpsCell(v float64, color bool) string {
	cell := fmt.Sprintf("%.1f", v)
	if !color {
		return cell
	}
	if v >= session.SmoothThreshold {
		return text.Colors{text.FgGreen}.Sprint(cell)
	}
	return text.Colors{text.FgRed}.Sprint(cell)
}

func summaryCell(s session.Summary, v float64, unit string) string {
	if s.Count == 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

func writeReportPlain(w io.Writer, r *session.Report) error {
	fps := r.FrameRate
	lines := []string{
		"package\t" + r.PackageName,
		"date\t" + r.SessionDate,
		"duration\t" + r.SessionDuration,
		fmt.Sprintf("samples\t%d", r.TotalSamples),
		fmt.Sprintf("fps_max\t%.2f", fps.Max),
		fmt.Sprintf("fps_min\t%.2f", fps.Min),
		fmt.Sprintf("fps_avg\t%.2f", fps.Avg),
		fmt.Sprintf("fps_variance\t%.2f", fps.Variance),
		fmt.Sprintf("fps_stddev\t%.2f", fps.StandardDeviation),
		fmt.Sprintf("fps_low_1\t%.2f", fps.Low1Percent),
		fmt.Sprintf("fps_low_0_1\t%.2f", fps.Low01Percent),
		fmt.Sprintf("smoothness\t%.2f", fps.Smoothness),
	}

	for _, m := range metricLines(r) {
		key := strings.ReplaceAll(strings.ToLower(m.name), " ", "_")
		if m.s.Count == 0 {
			lines = append(lines, key+"\t"+notAvailable)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\t%.2f/%.2f/%.2f", key, m.s.Min, m.s.Max, m.s.Avg))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type summaryDoc struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     float64 `json:"avg"`
	Samples int     `json:"samples"`
}

type frameRateDoc struct {
	Max               float64 `json:"max"`
	Min               float64 `json:"min"`
	Avg               float64 `json:"avg"`
	Variance          float64 `json:"variance"`
	StandardDeviation float64 `json:"standard_deviation"`
	Low1Percent       float64 `json:"low_1_percent"`
	Low01Percent      float64 `json:"low_0_1_percent"`
	Smoothness        float64 `json:"smoothness_percentage"`
}

type reportDoc struct {
	Package         string                `json:"package"`
	SessionDate     string                `json:"session_date"`
	SessionDuration string                `json:"session_duration"`
	TotalSamples    int                   `json:"total_samples"`
	FrameRate       frameRateDoc          `json:"frame_rate"`
	Metrics         map[string]summaryDoc `json:"metrics"`
	CPUClocks       map[string]summaryDoc `json:"cpu_clocks,omitempty"`
}

func toSummaryDoc(s session.Summary) summaryDoc {
	return summaryDoc{Min: s.Min, Max: s.Max, Avg: s.Avg, Samples: s.Count}
}

func writeReportJSON(w io.Writer, r *session.Report) error {
	fps := r.FrameRate
	doc := reportDoc{
		Package:         r.PackageName,
		SessionDate:     r.SessionDate,
		SessionDuration: r.SessionDuration,
		TotalSamples:    r.TotalSamples,
		FrameRate:       frameRateDoc(fps),
		Metrics:         make(map[string]summaryDoc),
	}

	for _, m := range metricLines(r) {
		doc.Metrics[strings.ReplaceAll(strings.ToLower(m.name), " ", "_")] = toSummaryDoc(m.s)
	}

	for _, core := range r.Series.Cores() {
		if doc.CPUClocks == nil {
			doc.CPUClocks = make(map[string]summaryDoc)
		}
		doc.CPUClocks[fmt.Sprintf("cpu%d", core)] = toSummaryDoc(session.Summarize(r.Series.CPUClock[core].Values()))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
