package app

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"carewatch/internal/detect"
	"carewatch/internal/monitor"
	"carewatch/internal/pose"
	"carewatch/internal/posesource"
	"carewatch/internal/storage"
	"carewatch/internal/vitals"
)

// Simulate runs a scripted pose scenario through the full monitoring
// pipeline against an in-memory store and prints the alerts it produced.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	frames, err := scenarioFrames(opts.Scenario, a.bedArea())
	if err != nil {
		return err
	}

	patientID := a.Config.Monitor.PatientID
	if patientID == "" {
		patientID = "simulated-patient"
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	source := posesource.NewReplaySource(frames)
	store := newMemoryStore()
	sim := vitals.NewSimulatorWithRand(rand.New(rand.NewSource(seed)))

	mon := monitor.New(monitor.Options{
		PatientID:   patientID,
		BedArea:     a.bedArea(),
		DedupWindow: a.Config.Monitor.DedupWindow,
		MinNotify:   detect.Severity(a.Config.Alerting.MinSeverity),
	}, source, sim, store, store, a.newNotifier(), a.Logger)
	defer mon.Reset()

	cycles := 0
	for source.Remaining() > 0 {
		if err := mon.RunCycle(ctx, time.Now()); err != nil {
			return err
		}
		cycles++
	}

	a.Logger.Info().
		Str("scenario", opts.Scenario).
		Int("cycles", cycles).
		Int("alerts", len(store.alerts)).
		Int("sessions", len(store.sessions)).
		Msg("simulation complete")

	if len(store.alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts produced")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Type\tSeverity\tConfidence\tDescription")
	for _, alert := range store.alerts {
		fmt.Fprintf(writer, "%s\t%s\t%.2f\t%s\n", alert.AlertType, alert.Severity, alert.Confidence, alert.Description)
	}
	return writer.Flush()
}

// Scenarios returns the available scenario names.
func Scenarios() []string {
	names := make([]string, 0, len(scenarioBuilders))
	for name := range scenarioBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var scenarioBuilders = map[string]func(bed detect.BedArea) []pose.PoseData{
	"calm":       calmScenario,
	"fall":       fallScenario,
	"wandering":  wanderingScenario,
	"aggression": aggressionScenario,
	"distress":   distressScenario,
}

func scenarioFrames(name string, bed detect.BedArea) ([]pose.PoseData, error) {
	builder, ok := scenarioBuilders[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(Scenarios(), ", "))
	}
	return builder(bed), nil
}

func kp(name string, x, y float64) pose.Keypoint {
	return pose.Keypoint{X: x, Y: y, Score: 0.9, Name: name}
}

// uprightPose builds a standing figure with the hip midpoint at (cx, cy).
func uprightPose(cx, cy float64) pose.PoseData {
	return pose.PoseData{
		Score: 0.9,
		Keypoints: []pose.Keypoint{
			kp(pose.Nose, cx, cy-120),
			kp(pose.LeftShoulder, cx-25, cy-80),
			kp(pose.RightShoulder, cx+25, cy-80),
			kp(pose.LeftWrist, cx-35, cy-20),
			kp(pose.RightWrist, cx+35, cy-20),
			kp(pose.LeftHip, cx-15, cy),
			kp(pose.RightHip, cx+15, cy),
		},
	}
}

// fallenPose builds a horizontally elongated figure with the head below the
// shoulder line.
func fallenPose(cx, cy float64) pose.PoseData {
	return pose.PoseData{
		Score: 0.9,
		Keypoints: []pose.Keypoint{
			kp(pose.Nose, cx-140, cy+15),
			kp(pose.LeftShoulder, cx-100, cy-5),
			kp(pose.RightShoulder, cx-100, cy+5),
			kp(pose.LeftWrist, cx-120, cy+10),
			kp(pose.RightWrist, cx-80, cy+12),
			kp(pose.LeftHip, cx+100, cy-5),
			kp(pose.RightHip, cx+100, cy+5),
		},
	}
}

// slumpedPose builds a figure with strongly asymmetric shoulders and the
// head above the shoulder line.
func slumpedPose(cx, cy float64) pose.PoseData {
	return pose.PoseData{
		Score: 0.9,
		Keypoints: []pose.Keypoint{
			kp(pose.Nose, cx, cy-130),
			kp(pose.LeftShoulder, cx-25, cy-100),
			kp(pose.RightShoulder, cx+25, cy-55),
			kp(pose.LeftHip, cx-15, cy),
			kp(pose.RightHip, cx+15, cy),
		},
	}
}

func bedCenter(bed detect.BedArea) (float64, float64) {
	return bed.X + bed.Width/2, bed.Y + bed.Height/2
}

func calmScenario(bed detect.BedArea) []pose.PoseData {
	cx, cy := bedCenter(bed)
	frames := make([]pose.PoseData, 0, 12)
	for i := 0; i < 12; i++ {
		frames = append(frames, uprightPose(cx, cy))
	}
	return frames
}

func fallScenario(bed detect.BedArea) []pose.PoseData {
	cx, cy := bedCenter(bed)
	frames := make([]pose.PoseData, 0, 10)
	for i := 0; i < 5; i++ {
		frames = append(frames, uprightPose(cx, cy))
	}
	for i := 0; i < 5; i++ {
		frames = append(frames, fallenPose(cx+bed.Width, cy+bed.Height))
	}
	return frames
}

func wanderingScenario(bed detect.BedArea) []pose.PoseData {
	// Hip midpoint well outside the bed for the whole sequence; length
	// exceeds the ten-frame lookback so the sustained-absence rule fires.
	cx := bed.X + bed.Width + 200
	cy := bed.Y + bed.Height + 150
	frames := make([]pose.PoseData, 0, 15)
	for i := 0; i < 15; i++ {
		frames = append(frames, uprightPose(cx+float64(i)*5, cy))
	}
	return frames
}

func aggressionScenario(bed detect.BedArea) []pose.PoseData {
	cx, cy := bedCenter(bed)
	frames := make([]pose.PoseData, 0, 10)
	for i := 0; i < 10; i++ {
		frame := uprightPose(cx, cy)
		// Fling the wrists a few hundred pixels side to side each frame.
		offset := 300.0
		if i%2 == 0 {
			offset = -300.0
		}
		for j := range frame.Keypoints {
			switch frame.Keypoints[j].Name {
			case pose.LeftWrist, pose.RightWrist:
				frame.Keypoints[j].X += offset
			}
		}
		frames = append(frames, frame)
	}
	return frames
}

func distressScenario(bed detect.BedArea) []pose.PoseData {
	cx, cy := bedCenter(bed)
	frames := make([]pose.PoseData, 0, 6)
	for i := 0; i < 6; i++ {
		frames = append(frames, slumpedPose(cx, cy))
	}
	return frames
}

// memoryStore is an in-memory stand-in for the Postgres store, used by the
// scenario runner so simulation needs no database.
type memoryStore struct {
	alerts   []storage.Alert
	sessions []storage.MonitoringSession
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) InsertAlert(_ context.Context, alert storage.Alert) (storage.Alert, error) {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	alert.CreatedAt = time.Now()
	m.alerts = append(m.alerts, alert)
	return alert, nil
}

func (m *memoryStore) ListActiveAlerts(_ context.Context, patientID, alertType string, since time.Time) ([]storage.Alert, error) {
	matched := make([]storage.Alert, 0)
	for _, alert := range m.alerts {
		if alert.PatientID == patientID &&
			alert.AlertType == alertType &&
			alert.Status == storage.AlertStatusActive &&
			!alert.CreatedAt.Before(since) {
			matched = append(matched, alert)
		}
	}
	return matched, nil
}

func (m *memoryStore) ListRecentAlerts(_ context.Context, patientID string, limit int) ([]storage.Alert, error) {
	matched := make([]storage.Alert, 0)
	for i := len(m.alerts) - 1; i >= 0 && len(matched) < limit; i-- {
		if m.alerts[i].PatientID == patientID {
			matched = append(matched, m.alerts[i])
		}
	}
	return matched, nil
}

func (m *memoryStore) AcknowledgeAlert(_ context.Context, id uuid.UUID) error {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].Status = storage.AlertStatusAcknowledged
			return nil
		}
	}
	return storage.ErrAlertNotFound
}

func (m *memoryStore) ResolveAlert(_ context.Context, id uuid.UUID) error {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].Status = storage.AlertStatusResolved
			return nil
		}
	}
	return storage.ErrAlertNotFound
}

func (m *memoryStore) InsertSession(_ context.Context, session storage.MonitoringSession) (storage.MonitoringSession, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = time.Now()
	m.sessions = append(m.sessions, session)
	return session, nil
}

func (m *memoryStore) ListSessionsBetween(_ context.Context, patientID string, from, to time.Time) ([]storage.MonitoringSession, error) {
	matched := make([]storage.MonitoringSession, 0)
	for _, session := range m.sessions {
		if session.PatientID == patientID && !session.CreatedAt.Before(from) && session.CreatedAt.Before(to) {
			matched = append(matched, session)
		}
	}
	return matched, nil
}

func (m *memoryStore) ListRecentSessions(_ context.Context, patientID string, limit int) ([]storage.MonitoringSession, error) {
	matched := make([]storage.MonitoringSession, 0)
	for i := len(m.sessions) - 1; i >= 0 && len(matched) < limit; i-- {
		if m.sessions[i].PatientID == patientID {
			matched = append(matched, m.sessions[i])
		}
	}
	return matched, nil
}

func (m *memoryStore) CountSessions(_ context.Context, patientID string) (int64, error) {
	var count int64
	for _, session := range m.sessions {
		if session.PatientID == patientID {
			count++
		}
	}
	return count, nil
}

var (
	_ storage.AlertStore   = (*memoryStore)(nil)
	_ storage.SessionStore = (*memoryStore)(nil)
)
