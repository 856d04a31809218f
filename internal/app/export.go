package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"carewatch/internal/storage"
)

// Export renders monitoring session history as CSV and/or a vitals trend
// chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if a.Config.Monitor.PatientID == "" {
		return errors.New("monitor.patient_id is required")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Monitor.FrameInterval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	sessions, err := store.ListSessionsBetween(ctx, a.Config.Monitor.PatientID, from, to)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		a.Logger.Info().Msg("no sessions found for export window")
		return nil
	}

	downsampled := downsampleSessions(sessions, opts.MaxPoints)
	a.Logger.Info().Int("total", len(sessions)).Int("exported", len(downsampled)).Msg("exporting sessions")

	if opts.CSVPath != "" {
		if err := writeSessionsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSessionsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleSessions(sessions []storage.MonitoringSession, max int) []storage.MonitoringSession {
	if max <= 0 || len(sessions) <= max {
		return sessions
	}

	result := make([]storage.MonitoringSession, 0, max)
	step := float64(len(sessions)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(sessions) {
			idx = len(sessions) - 1
		}
		result = append(result, sessions[idx])
	}
	return result
}

func writeSessionsCSV(path string, sessions []storage.MonitoringSession) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"created_at", "heart_rate", "respiratory_rate", "temperature", "is_in_bed", "movement_level"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, session := range sessions {
		inBed := "false"
		if session.IsInBed {
			inBed = "true"
		}
		record := []string{
			session.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(session.HeartRate),
			strconv.Itoa(session.RespiratoryRate),
			session.Temperature.StringFixed(1),
			inBed,
			session.MovementLevel,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSessionsPNG(path string, sessions []storage.MonitoringSession) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(sessions))
	heartRate := make([]float64, len(sessions))
	respiratoryRate := make([]float64, len(sessions))
	temperature := make([]float64, len(sessions))

	for i, session := range sessions {
		x[i] = session.CreatedAt
		heartRate[i] = float64(session.HeartRate)
		respiratoryRate[i] = float64(session.RespiratoryRate)
		temperature[i] = session.Temperature.InexactFloat64()
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Rate (per minute)",
			ValueFormatter: valueFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Temperature (C)",
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Heart rate",
				XValues: x,
				YValues: heartRate,
			},
			chart.TimeSeries{
				Name:    "Respiratory rate",
				XValues: x,
				YValues: respiratoryRate,
			},
			chart.TimeSeries{
				Name:    "Temperature",
				XValues: x,
				YValues: temperature,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
