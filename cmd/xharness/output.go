package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/history"
	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/orchestrate"
)

func outcomeLabel(k orchestrate.Kind) string {
	label := strings.ToUpper(k.String())
	switch k {
	case orchestrate.Success:
		return color.GreenString(label)
	case orchestrate.Cancelled, orchestrate.Timeout:
		return color.YellowString(label)
	default:
		return color.RedString(label)
	}
}

// printOutcome renders one run for humans. Tool output is shown only for
// failed runs.
func printOutcome(w io.Writer, pkg string, out orchestrate.Outcome) {
	_, _ = fmt.Fprintf(w, messages.OutcomeLineFmt, outcomeLabel(out.Kind), out.Operation, pkg)
	if out.Device.ID != "" {
		_, _ = fmt.Fprintf(w, messages.OutcomeDeviceFmt, out.Device)
	}
	if out.Note != "" {
		_, _ = fmt.Fprintf(w, messages.OutcomeNoteFmt, out.Note)
	}
	if out.Diagnosis.Known() {
		_, _ = fmt.Fprintf(w, messages.OutcomeCauseFmt, out.Diagnosis.Cause)
		_, _ = fmt.Fprintf(w, messages.OutcomeRemedyFmt, out.Diagnosis.Remediation.Hint())
	}
	if out.Err != nil {
		_, _ = fmt.Fprintf(w, messages.OutcomeErrorFmt, out.Err)
	}
	if !out.Succeeded() && strings.TrimSpace(out.Output) != "" {
		_, _ = fmt.Fprintln(w, messages.OutcomeOutputHeader)
		for _, line := range strings.Split(strings.TrimRight(out.Output, "\n"), "\n") {
			_, _ = fmt.Fprintf(w, messages.OutcomeOutputLineFmt, line)
		}
	}
	if out.RunID != "" {
		_, _ = fmt.Fprintf(w, messages.OutcomeRunFmt, out.RunID)
	}
}

func printDevices(w io.Writer, devices []device.Device) {
	if len(devices) == 0 {
		_, _ = fmt.Fprintln(w, messages.DevicesNoneFound)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, messages.DevicesHeader)
	for _, d := range devices {
		_, _ = fmt.Fprintf(tw, messages.DevicesRowFmt, d.ID, dash(d.Name), dash(string(d.Architecture)), d.State, d.Class)
	}
	_ = tw.Flush()
}

func printHistory(w io.Writer, records []history.Record) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, messages.HistoryEmpty)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, messages.HistoryHeader)
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, messages.HistoryRowFmt,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Family, r.Operation, r.Package, dash(r.DeviceID), r.Outcome,
			r.Duration.Round(10*time.Millisecond))
	}
	_ = tw.Flush()
}

func printRun(w io.Writer, r history.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	rows := [][2]string{
		{"run", r.ID},
		{"started", r.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"family", r.Family},
		{"operation", r.Operation},
		{"package", r.Package},
		{"device", dash(r.DeviceID)},
		{"outcome", r.Outcome},
		{"cause", dash(r.Diagnosis)},
		{"duration", r.Duration.Round(10 * time.Millisecond).String()},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, messages.HistoryRunFmt, row[0], row[1])
	}
	_ = tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
