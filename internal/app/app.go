package app

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"carewatch/internal/alerting"
	"carewatch/internal/config"
	"carewatch/internal/detect"
	"carewatch/internal/monitor"
	"carewatch/internal/posesource"
	"carewatch/internal/scheduler"
	"carewatch/internal/storage"
	"carewatch/internal/vitals"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newPoseSource() *posesource.MQTTSource {
	cfg := a.Config.PoseSource
	topic := cfg.Topic
	if a.Config.Monitor.PatientID != "" {
		topic = fmt.Sprintf("%s/%s", topic, a.Config.Monitor.PatientID)
	}
	return posesource.NewMQTTSource(posesource.MQTTOptions{
		BrokerURL:      cfg.BrokerURL,
		ClientID:       cfg.ClientID,
		Topic:          topic,
		QoS:            byte(cfg.QoS),
		ConnectTimeout: cfg.ConnectTimeout,
	}, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) bedArea() detect.BedArea {
	bed := a.Config.Monitor.BedArea
	return detect.BedArea{X: bed.X, Y: bed.Y, Width: bed.Width, Height: bed.Height}
}

// Run executes the long-running monitoring service for one patient.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if a.Config.Monitor.PatientID == "" {
		return errors.New("monitor.patient_id is required to run")
	}
	if a.Config.PoseSource.BrokerURL == "" {
		return errors.New("pose_source.broker_url is required to run")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence and deduplication disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if store != nil && a.Config.Monitor.AdvisoryLock {
		unlock, acquired, lockErr := store.TryAdvisoryLock(ctx, patientLockKey(a.Config.Monitor.PatientID))
		if lockErr != nil {
			return lockErr
		}
		if !acquired {
			return fmt.Errorf("patient %s is already being monitored against this database", a.Config.Monitor.PatientID)
		}
		defer unlock()
	}

	source := a.newPoseSource()
	if err := source.Connect(); err != nil {
		return err
	}
	defer source.Close()

	var alertStore storage.AlertStore
	var sessionStore storage.SessionStore
	if store != nil {
		alertStore = store
		sessionStore = store
	}

	mon := monitor.New(monitor.Options{
		PatientID:   a.Config.Monitor.PatientID,
		BedArea:     a.bedArea(),
		DedupWindow: a.Config.Monitor.DedupWindow,
		MinNotify:   detect.Severity(a.Config.Alerting.MinSeverity),
	}, source, vitals.NewSimulator(), alertStore, sessionStore, a.newNotifier(), a.Logger)
	defer mon.Reset()

	sched := scheduler.New(scheduler.Options{
		FrameInterval: a.Config.Monitor.FrameInterval,
		StartupDelay:  a.Config.Monitor.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Str("patient_id", a.Config.Monitor.PatientID).Msg("starting patient monitoring")
	err = sched.Run(ctx, mon.RunCycle)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("monitoring terminated with error")
		return err
	}

	a.Logger.Info().Msg("patient monitoring stopped")
	return nil
}

// patientLockKey derives a stable advisory lock key from the patient id.
func patientLockKey(patientID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("carewatch:" + patientID))
	return int64(h.Sum64())
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ExportOptions hold parameters for exporting session history.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// SimulateOptions configure the scenario runner.
type SimulateOptions struct {
	Scenario string
	Seed     int64
}
