package posesource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"carewatch/internal/pose"
)

// MQTTOptions parameterise the MQTT pose source.
type MQTTOptions struct {
	BrokerURL      string
	ClientID       string
	Topic          string
	QoS            byte
	ConnectTimeout time.Duration
}

// MQTTSource subscribes to a topic carrying JSON-encoded pose frames from
// the external estimator. Only the newest frame is kept; the monitoring
// loop runs at its own cadence and stale frames are worthless.
type MQTTSource struct {
	opts   MQTTOptions
	client mqtt.Client
	logger zerolog.Logger

	mu        sync.Mutex
	latest    *pose.PoseData
	connected bool
}

// NewMQTTSource constructs a source; call Connect before the first Next.
func NewMQTTSource(opts MQTTOptions, logger zerolog.Logger) *MQTTSource {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.ClientID == "" {
		opts.ClientID = fmt.Sprintf("carewatch-%d", time.Now().Unix())
	}
	return &MQTTSource{
		opts:   opts,
		logger: logger.With().Str("component", "pose_source").Logger(),
	}
}

// Connect dials the broker and subscribes. The subscription is installed in
// the OnConnect handler so it survives automatic reconnects.
func (s *MQTTSource) Connect() error {
	if s.opts.BrokerURL == "" {
		return fmt.Errorf("posesource: broker url required")
	}
	if s.opts.Topic == "" {
		return fmt.Errorf("posesource: topic required")
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(s.opts.BrokerURL)
	clientOpts.SetClientID(s.opts.ClientID)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectTimeout(s.opts.ConnectTimeout)
	clientOpts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(s.opts.Topic, s.opts.QoS, s.handleMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			s.logger.Error().Err(err).Str("topic", s.opts.Topic).Msg("subscribe failed")
			return
		}
		s.logger.Info().Str("topic", s.opts.Topic).Msg("subscribed to pose topic")
	}
	clientOpts.OnConnectionLost = func(_ mqtt.Client, err error) {
		s.logger.Warn().Err(err).Msg("broker connection lost")
	}

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect mqtt broker: %w", token.Error())
	}

	s.mu.Lock()
	s.client = client
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.connected = false
	s.latest = nil
	s.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var frame pose.PoseData
	if err := json.Unmarshal(msg.Payload(), &frame); err != nil {
		s.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("dropping undecodable pose frame")
		return
	}

	s.mu.Lock()
	s.latest = &frame
	s.mu.Unlock()
}

// Next returns the newest unconsumed frame, or nil when nothing fresh has
// arrived since the previous call.
func (s *MQTTSource) Next(ctx context.Context) (*pose.PoseData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil, ErrNotReady
	}
	frame := s.latest
	s.latest = nil
	return frame, nil
}

var _ Source = (*MQTTSource)(nil)
