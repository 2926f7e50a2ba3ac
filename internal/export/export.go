// Package export writes a missionapi.PlanResponse to JSON or CSV. JSON is the
// straightforward struct mapping with RFC-3339 timestamps; CSV uses the
// same field set in declared order, matching the "bit-exact
// formats" requirement. Grounded on the retrieved lidar sweep package's
// CSVWriter, which wraps encoding/csv the same way.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/orbitalcue/mission-planner/internal/missionapi"
)

// WriteJSON marshals resp as indented JSON to w.
func WriteJSON(w io.Writer, resp missionapi.PlanResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// csvHeader is the declared field order for one algorithm's scheduled
// opportunities, matching ScheduledOpportunityOutput field-for-field.
var csvHeader = []string{
	"id", "satellite_id", "target_id",
	"start_time", "end_time",
	"roll_deg", "pitch_deg", "incidence_deg",
	"priority", "base_value", "quality", "composite_value",
	"delta_roll_deg", "delta_pitch_deg", "maneuver_time_s", "slack_time_s",
}

func scheduleRow(so missionapi.ScheduledOpportunityOutput) []string {
	return []string{
		so.ID, so.SatelliteID, so.TargetID,
		so.StartTime.Format(time.RFC3339),
		so.EndTime.Format(time.RFC3339),
		strconv.FormatFloat(so.RollDeg, 'f', -1, 64),
		strconv.FormatFloat(so.PitchDeg, 'f', -1, 64),
		strconv.FormatFloat(so.IncidenceDeg, 'f', -1, 64),
		strconv.Itoa(so.Priority),
		strconv.FormatFloat(so.BaseValue, 'f', -1, 64),
		strconv.FormatFloat(so.Quality, 'f', -1, 64),
		strconv.FormatFloat(so.CompositeValue, 'f', -1, 64),
		strconv.FormatFloat(so.DeltaRollDeg, 'f', -1, 64),
		strconv.FormatFloat(so.DeltaPitchDeg, 'f', -1, 64),
		strconv.FormatFloat(so.ManeuverTimeS, 'f', -1, 64),
		strconv.FormatFloat(so.SlackTimeS, 'f', -1, 64),
	}
}

// CSVWriter wraps csv.Writer to emit one algorithm's schedule.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter builds a CSVWriter over w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the declared CSV column header.
func (c *CSVWriter) WriteHeader() error {
	return c.w.Write(csvHeader)
}

// WriteSchedule writes every scheduled opportunity as a CSV row, in
// csvHeader's declared order.
func (c *CSVWriter) WriteSchedule(schedule []missionapi.ScheduledOpportunityOutput) error {
	for _, so := range schedule {
		if err := c.w.Write(scheduleRow(so)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer and returns any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// WriteCSV writes every algorithm's schedule from resp to w as CSV, with a
// leading "algorithm" column so multiple algorithms can share one file.
func WriteCSV(w io.Writer, resp missionapi.PlanResponse) error {
	cw := NewCSVWriter(w)
	if err := cw.w.Write(append([]string{"algorithm"}, csvHeader...)); err != nil {
		return err
	}

	names := make([]string, 0, len(resp.PerAlgorithm))
	for name := range resp.PerAlgorithm {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, so := range resp.PerAlgorithm[name].Schedule {
			row := append([]string{name}, scheduleRow(so)...)
			if err := cw.w.Write(row); err != nil {
				return err
			}
		}
	}
	return cw.Flush()
}
