package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrAlertNotFound indicates the alert id did not match a row.
	ErrAlertNotFound = errors.New("storage: alert not found")
)

const (
	insertAlertSQL = `INSERT INTO alerts (
        id,
        patient_id,
        alert_type,
        severity,
        description,
        status,
        confidence
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    RETURNING id, patient_id, alert_type, severity, description, status,
              confidence, acknowledged_at, resolved_at, created_at;`

	listActiveAlertsSQL = `SELECT
        id, patient_id, alert_type, severity, description, status,
        confidence, acknowledged_at, resolved_at, created_at
    FROM alerts
    WHERE patient_id = $1
      AND alert_type = $2
      AND status = 'active'
      AND created_at >= $3
    ORDER BY created_at DESC;`

	listRecentAlertsSQL = `SELECT
        id, patient_id, alert_type, severity, description, status,
        confidence, acknowledged_at, resolved_at, created_at
    FROM alerts
    WHERE patient_id = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	acknowledgeAlertSQL = `UPDATE alerts
    SET status = 'acknowledged', acknowledged_at = now()
    WHERE id = $1 AND status = 'active';`

	resolveAlertSQL = `UPDATE alerts
    SET status = 'resolved', resolved_at = now()
    WHERE id = $1 AND status IN ('active', 'acknowledged');`

	insertSessionSQL = `INSERT INTO monitoring_sessions (
        id,
        patient_id,
        heart_rate,
        is_in_bed,
        movement_level,
        temperature,
        respiratory_rate,
        pose_data
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8
    )
    RETURNING created_at;`

	listSessionsBetweenSQL = `SELECT
        id, patient_id, heart_rate, is_in_bed, movement_level,
        temperature, respiratory_rate, pose_data, created_at
    FROM monitoring_sessions
    WHERE patient_id = $1
      AND created_at >= $2
      AND created_at < $3
    ORDER BY created_at;`

	listRecentSessionsSQL = `SELECT
        id, patient_id, heart_rate, is_in_bed, movement_level,
        temperature, respiratory_rate, pose_data, created_at
    FROM monitoring_sessions
    WHERE patient_id = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	countSessionsSQL = `SELECT COUNT(*) FROM monitoring_sessions WHERE patient_id = $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// AlertStore defines alert persistence and the dedup lookup.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert Alert) (Alert, error)
	ListActiveAlerts(ctx context.Context, patientID, alertType string, since time.Time) ([]Alert, error)
	ListRecentAlerts(ctx context.Context, patientID string, limit int) ([]Alert, error)
	AcknowledgeAlert(ctx context.Context, id uuid.UUID) error
	ResolveAlert(ctx context.Context, id uuid.UUID) error
}

// SessionStore defines the append-only monitoring session log.
type SessionStore interface {
	InsertSession(ctx context.Context, session MonitoringSession) (MonitoringSession, error)
	ListSessionsBetween(ctx context.Context, patientID string, from, to time.Time) ([]MonitoringSession, error)
	ListRecentSessions(ctx context.Context, patientID string, limit int) ([]MonitoringSession, error)
	CountSessions(ctx context.Context, patientID string) (int64, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to alerts and monitoring sessions.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns
// a release func. The run loop uses a per-patient key so two monitors
// cannot watch the same patient against one database.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; the lock dies with the connection anyway
		}
		conn.Release()
	}
	return unlock, true, nil
}

// InsertAlert persists a new alert. A zero ID is replaced with a fresh uuid.
func (s *Store) InsertAlert(ctx context.Context, alert Alert) (Alert, error) {
	pool, err := s.getPool()
	if err != nil {
		return Alert{}, err
	}

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.Status == "" {
		alert.Status = AlertStatusActive
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.ID,
		alert.PatientID,
		alert.AlertType,
		alert.Severity,
		alert.Description,
		string(alert.Status),
		alert.Confidence,
	)

	rec, err := scanAlert(row)
	if err != nil {
		return Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	return rec, nil
}

// ListActiveAlerts returns unresolved alerts of one type for one patient
// created at or after the given instant. This is the dedup-gate query.
func (s *Store) ListActiveAlerts(ctx context.Context, patientID, alertType string, since time.Time) ([]Alert, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listActiveAlertsSQL, patientID, alertType, since)
	if queryErr != nil {
		return nil, fmt.Errorf("list active alerts: %w", queryErr)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// ListRecentAlerts lists the most recent alerts for a patient.
func (s *Store) ListRecentAlerts(ctx context.Context, patientID string, limit int) ([]Alert, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, patientID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// AcknowledgeAlert transitions an active alert to acknowledged.
func (s *Store) AcknowledgeAlert(ctx context.Context, id uuid.UUID) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, acknowledgeAlertSQL, id)
	if execErr != nil {
		return fmt.Errorf("acknowledge alert: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// ResolveAlert transitions an alert to its terminal resolved state.
func (s *Store) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, resolveAlertSQL, id)
	if execErr != nil {
		return fmt.Errorf("resolve alert: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// InsertSession appends one monitoring session row.
func (s *Store) InsertSession(ctx context.Context, session MonitoringSession) (MonitoringSession, error) {
	pool, err := s.getPool()
	if err != nil {
		return MonitoringSession{}, err
	}

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	row := pool.QueryRow(ctx, insertSessionSQL,
		session.ID,
		session.PatientID,
		session.HeartRate,
		session.IsInBed,
		session.MovementLevel,
		session.Temperature.StringFixed(1),
		session.RespiratoryRate,
		[]byte(session.PoseData),
	)
	if scanErr := row.Scan(&session.CreatedAt); scanErr != nil {
		return MonitoringSession{}, fmt.Errorf("insert monitoring session: %w", scanErr)
	}
	return session, nil
}

// ListSessionsBetween lists session rows within a time window.
func (s *Store) ListSessionsBetween(ctx context.Context, patientID string, from, to time.Time) ([]MonitoringSession, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSessionsBetweenSQL, patientID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list sessions between: %w", queryErr)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListRecentSessions lists the most recent session rows for a patient.
func (s *Store) ListRecentSessions(ctx context.Context, patientID string, limit int) ([]MonitoringSession, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSessionsSQL, patientID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent sessions: %w", queryErr)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// CountSessions counts stored session rows for a patient.
func (s *Store) CountSessions(ctx context.Context, patientID string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSessionsSQL, patientID).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count sessions: %w", scanErr)
	}
	return count, nil
}

func collectAlerts(rows pgx.Rows) ([]Alert, error) {
	alerts := make([]Alert, 0)
	for rows.Next() {
		rec, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

func scanAlert(row pgx.Row) (Alert, error) {
	var (
		rec    Alert
		status string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.PatientID,
		&rec.AlertType,
		&rec.Severity,
		&rec.Description,
		&status,
		&rec.Confidence,
		&rec.AcknowledgedAt,
		&rec.ResolvedAt,
		&rec.CreatedAt,
	); err != nil {
		return Alert{}, err
	}
	rec.Status = AlertStatus(status)
	return rec, nil
}

func collectSessions(rows pgx.Rows) ([]MonitoringSession, error) {
	sessions := make([]MonitoringSession, 0)
	for rows.Next() {
		var (
			rec     MonitoringSession
			tempStr string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.PatientID,
			&rec.HeartRate,
			&rec.IsInBed,
			&rec.MovementLevel,
			&tempStr,
			&rec.RespiratoryRate,
			&rec.PoseData,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		temp, convErr := decimal.NewFromString(tempStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse temperature: %w", convErr)
		}
		rec.Temperature = temp

		sessions = append(sessions, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return sessions, nil
}

var (
	_ AlertStore     = (*Store)(nil)
	_ SessionStore   = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)
