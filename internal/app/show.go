package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// Show prints recent alerts and monitoring sessions for the configured
// patient.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if a.Config.Monitor.PatientID == "" {
		return errors.New("monitor.patient_id is required")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	patientID := a.Config.Monitor.PatientID

	alerts, err := store.ListRecentAlerts(ctx, patientID, opts.Limit)
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts found")
	} else {
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tTime (UTC)\tType\tSeverity\tStatus\tConfidence\tDescription")
		for _, alert := range alerts {
			fmt.Fprintf(
				writer,
				"%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
				alert.ID,
				alert.CreatedAt.UTC().Format(time.RFC3339),
				alert.AlertType,
				alert.Severity,
				alert.Status,
				alert.Confidence,
				sanitizeInline(alert.Description),
			)
		}
		writer.Flush()
	}

	sessions, err := store.ListRecentSessions(ctx, patientID, opts.Limit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Fprintln(os.Stdout, "no monitoring sessions found")
		return nil
	}

	total, err := store.CountSessions(ctx, patientID)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout)
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tHR\tRR\tTemp\tIn bed\tMovement")
	for _, session := range sessions {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%d\t%s\t%t\t%s\n",
			session.CreatedAt.UTC().Format(time.RFC3339),
			session.HeartRate,
			session.RespiratoryRate,
			session.Temperature.StringFixed(1),
			session.IsInBed,
			session.MovementLevel,
		)
	}
	writer.Flush()

	fmt.Fprintf(os.Stdout, "\nshowing %d of %d monitoring sessions\n", len(sessions), total)
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
