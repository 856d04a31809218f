package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carewatch/internal/alerting"
	"carewatch/internal/detect"
	"carewatch/internal/storage"
)

// fakeAlertStore keeps alerts in memory and stamps inserts with a test
// controlled clock.
type fakeAlertStore struct {
	now       time.Time
	alerts    []storage.Alert
	listErr   error
	insertErr error
}

func (f *fakeAlertStore) InsertAlert(_ context.Context, alert storage.Alert) (storage.Alert, error) {
	if f.insertErr != nil {
		return storage.Alert{}, f.insertErr
	}
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	alert.CreatedAt = f.now
	f.alerts = append(f.alerts, alert)
	return alert, nil
}

func (f *fakeAlertStore) ListActiveAlerts(_ context.Context, patientID, alertType string, since time.Time) ([]storage.Alert, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	matched := make([]storage.Alert, 0)
	for _, a := range f.alerts {
		if a.PatientID == patientID && a.AlertType == alertType &&
			a.Status == storage.AlertStatusActive && !a.CreatedAt.Before(since) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (f *fakeAlertStore) ListRecentAlerts(context.Context, string, int) ([]storage.Alert, error) {
	return nil, nil
}

func (f *fakeAlertStore) AcknowledgeAlert(context.Context, uuid.UUID) error { return nil }
func (f *fakeAlertStore) ResolveAlert(context.Context, uuid.UUID) error     { return nil }

func (f *fakeAlertStore) countType(alertType string) int {
	n := 0
	for _, a := range f.alerts {
		if a.AlertType == alertType {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	notes []alerting.Notification
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, note alerting.Notification) error {
	f.notes = append(f.notes, note)
	return f.err
}

func detection(riskType detect.RiskType, severity detect.Severity) detect.Detection {
	return detect.Detection{
		Type:        riskType,
		Severity:    severity,
		Confidence:  0.9,
		Description: "test detection",
	}
}

func TestGateInsertsFreshAlert(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0}
	gate := NewGate(store, nil, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	created := gate.Process(context.Background(), "patient-1", []detect.Detection{
		detection(detect.RiskFall, detect.SeverityCritical),
	}, t0)

	require.Len(t, created, 1)
	assert.Equal(t, "patient-1", created[0].PatientID)
	assert.Equal(t, "fall", created[0].AlertType)
	assert.Equal(t, storage.AlertStatusActive, created[0].Status)
	assert.NotEqual(t, uuid.Nil, created[0].ID)
}

func TestGateSuppressesWithinCooldown(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0}
	gate := NewGate(store, nil, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	dets := []detect.Detection{detection(detect.RiskFall, detect.SeverityCritical)}
	require.Len(t, gate.Process(context.Background(), "patient-1", dets, t0), 1)

	store.now = t0.Add(4 * time.Second)
	created := gate.Process(context.Background(), "patient-1", dets, t0.Add(4*time.Second))

	assert.Empty(t, created)
	assert.Equal(t, 1, store.countType("fall"))
}

func TestGateAllowsAfterCooldown(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0}
	gate := NewGate(store, nil, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	dets := []detect.Detection{detection(detect.RiskFall, detect.SeverityCritical)}
	require.Len(t, gate.Process(context.Background(), "patient-1", dets, t0), 1)

	store.now = t0.Add(6 * time.Second)
	created := gate.Process(context.Background(), "patient-1", dets, t0.Add(6*time.Second))

	require.Len(t, created, 1)
	assert.Equal(t, 2, store.countType("fall"))
}

func TestGateTreatsRiskTypesIndependently(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0}
	gate := NewGate(store, nil, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	require.Len(t, gate.Process(context.Background(), "patient-1", []detect.Detection{
		detection(detect.RiskFall, detect.SeverityCritical),
	}, t0), 1)

	// A different risk type one second later is not a duplicate.
	store.now = t0.Add(time.Second)
	created := gate.Process(context.Background(), "patient-1", []detect.Detection{
		detection(detect.RiskWandering, detect.SeverityHigh),
	}, t0.Add(time.Second))

	assert.Len(t, created, 1)
	assert.Len(t, store.alerts, 2)
}

func TestGateDropsDetectionOnDedupQueryFailure(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0, listErr: errors.New("db down")}
	gate := NewGate(store, nil, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	created := gate.Process(context.Background(), "patient-1", []detect.Detection{
		detection(detect.RiskFall, detect.SeverityCritical),
	}, t0)

	assert.Empty(t, created)
	assert.Empty(t, store.alerts)
}

func TestGateDropsDetectionOnInsertFailure(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0, insertErr: errors.New("db down")}
	gate := NewGate(store, nil, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	created := gate.Process(context.Background(), "patient-1", []detect.Detection{
		detection(detect.RiskFall, detect.SeverityCritical),
	}, t0)

	assert.Empty(t, created)
}

func TestGateWithoutStoreTreatsEveryDetectionAsFresh(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	gate := NewGate(nil, nil, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	dets := []detect.Detection{detection(detect.RiskFall, detect.SeverityCritical)}
	assert.Len(t, gate.Process(context.Background(), "patient-1", dets, t0), 1)
	assert.Len(t, gate.Process(context.Background(), "patient-1", dets, t0.Add(time.Second)), 1)
}

func TestGateNotifiesAtOrAboveThreshold(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0}
	notifier := &fakeNotifier{}
	gate := NewGate(store, notifier, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	created := gate.Process(context.Background(), "patient-1", []detect.Detection{
		detection(detect.RiskEmotion, detect.SeverityMedium),
		detection(detect.RiskFall, detect.SeverityCritical),
	}, t0)

	// Both alerts persist; only the critical one is routed out.
	assert.Len(t, created, 2)
	require.Len(t, notifier.notes, 1)
	assert.Equal(t, "fall", notifier.notes[0].AlertType)
	assert.Equal(t, t0, notifier.notes[0].ObservedAt)
}

func TestGateNotifierFailureDoesNotDropAlert(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAlertStore{now: t0}
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	gate := NewGate(store, notifier, 5*time.Second, detect.SeverityHigh, zerolog.Nop())

	created := gate.Process(context.Background(), "patient-1", []detect.Detection{
		detection(detect.RiskFall, detect.SeverityCritical),
	}, t0)

	assert.Len(t, created, 1)
	assert.Len(t, store.alerts, 1)
}
