package sessionlog

import (
	"strings"

	"codeberg.org/mutker/gamebar/internal/session"
)

// Row is one line of a session log. Empty fields are written as N/A.
type Row struct {
	DateTime    string
	PackageName string
	FPS         string
	FrameTime   string
	BatteryTemp string
	CPUUsage    string
	CPUClock    string
	CPUTemp     string
	RAMUsage    string
	RAMSpeed    string
	RAMTemp     string
	GPUUsage    string
	GPUClock    string
	GPUTemp     string
}

// Fields returns the columns in session.Header order.
func (r Row) Fields() []string {
	fields := make([]string, session.ColumnCount)
	fields[session.ColDateTime] = r.DateTime
	fields[session.ColPackageName] = r.PackageName
	fields[session.ColFPS] = r.FPS
	fields[session.ColFrameTime] = r.FrameTime
	fields[session.ColBatteryTemp] = r.BatteryTemp
	fields[session.ColCPUUsage] = r.CPUUsage
	fields[session.ColCPUClock] = r.CPUClock
	fields[session.ColCPUTemp] = r.CPUTemp
	fields[session.ColRAMUsage] = r.RAMUsage
	fields[session.ColRAMSpeed] = r.RAMSpeed
	fields[session.ColRAMTemp] = r.RAMTemp
	fields[session.ColGPUUsage] = r.GPUUsage
	fields[session.ColGPUClock] = r.GPUClock
	fields[session.ColGPUTemp] = r.GPUTemp

	for i, f := range fields {
		f = strings.TrimSpace(strings.ReplaceAll(f, session.Delimiter, ";"))
		if f == "" {
			f = NotAvailable
		}
		fields[i] = f
	}

	return fields
}
