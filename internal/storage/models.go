package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertStatus tracks the operator-driven alert lifecycle. The monitoring
// core only ever creates alerts in the active state.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// Alert is a persisted, deduplicated risk detection.
type Alert struct {
	ID             uuid.UUID
	PatientID      string
	AlertType      string
	Severity       string
	Description    string
	Status         AlertStatus
	Confidence     float64
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

// MonitoringSession is one append-only row per evaluation cycle: the raw
// pose snapshot plus the synthesised vitals reading.
type MonitoringSession struct {
	ID              uuid.UUID
	PatientID       string
	HeartRate       int
	IsInBed         bool
	MovementLevel   string
	Temperature     decimal.Decimal
	RespiratoryRate int
	PoseData        json.RawMessage
	CreatedAt       time.Time
}
