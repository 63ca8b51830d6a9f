package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/FilipeDoria/genetic-load-manager/core/model"
	coremon "github.com/FilipeDoria/genetic-load-manager/core/monitoring"
	coremqtt "github.com/FilipeDoria/genetic-load-manager/core/mqtt"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string `json:"broker" yaml:"broker"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
	// DiscoveryPrefix enables Home Assistant MQTT discovery announcements
	// under this prefix, usually "homeassistant". Empty disables them.
	DiscoveryPrefix string          `json:"discovery_prefix" yaml:"discovery_prefix"`
	UseTLS          bool            `json:"use_tls" yaml:"use_tls"`
	ClientCert      string          `json:"client_cert" yaml:"client_cert"`
	ClientKey       string          `json:"client_key" yaml:"client_key"`
	CABundle        string          `json:"ca_bundle" yaml:"ca_bundle"`
	AuthMethod      string          `json:"auth_method" yaml:"auth_method"`
	QoS             map[string]byte `json:"qos" yaml:"qos"`
	LWTTopic        string          `json:"lwt_topic" yaml:"lwt_topic"`
	LWTPayload      string          `json:"lwt_payload" yaml:"lwt_payload"`
	LWTQoS          byte            `json:"lwt_qos" yaml:"lwt_qos"`
	LWTRetain       bool            `json:"lwt_retain" yaml:"lwt_retain"`
	MaxRetries      int             `json:"max_retries" yaml:"max_retries"`
	BackoffMS       int             `json:"backoff_ms" yaml:"backoff_ms"`
	TimeoutMS       int             `json:"timeout_ms" yaml:"timeout_ms"`
	TLSConfig       *tls.Config     `json:"-" yaml:"-"`
}

// pahoClient is the subset of the Paho API the publisher relies on.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes plans and setpoints over Eclipse Paho and relays
// sensor topics to registered handlers.
type PahoClient struct {
	cli             pahoClient
	prefix          string
	discoveryPrefix string
	qos             map[string]byte

	mu       sync.Mutex
	handlers map[string]paho.MessageHandler

	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker. Sensor subscriptions registered
// through Subscribe are restored on every reconnect.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_client")
	prefix := strings.TrimSuffix(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = "home/energy"
	}
	pc := &PahoClient{prefix: prefix,
		handlers:        make(map[string]paho.MessageHandler),
		logger:          logger,
		qos:             cfg.QoS,
		discoveryPrefix: strings.TrimSuffix(cfg.DiscoveryPrefix, "/"),
		maxRetries:      cfg.MaxRetries,
		backoff:         time.Duration(cfg.BackoffMS) * time.Millisecond,
		timeout:         time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		logger.Infof("MQTT connected")
		qos := pc.qosFor("sensor")
		pc.mu.Lock()
		defer pc.mu.Unlock()
		for topic, handler := range pc.handlers {
			if token := c.Subscribe(topic, qos, handler); token.Wait() && token.Error() != nil {
				logger.Errorf("subscribe %s error: %v", topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// planPayload is the wire form of a published plan.
type planPayload struct {
	RunID       string    `json:"run_id"`
	CreatedAt   time.Time `json:"created_at"`
	Feasible    bool      `json:"feasible"`
	Savings     float64   `json:"savings"`
	SlotSeconds int       `json:"slot_seconds"`
	BatteryKW   []float64 `json:"battery_kw"`
	SoC         []float64 `json:"soc"`
	GridKW      []float64 `json:"grid_kw"`
}

// Topic returns the topic the full plan is published on.
func (p *PahoClient) Topic() string {
	return p.prefix + "/plan"
}

// SetpointTopic returns the topic battery power commands are published on.
func (p *PahoClient) SetpointTopic() string {
	return p.prefix + "/setpoint"
}

// PublishPlan publishes the full plan as a retained message and pushes the
// first slot action on the setpoint topic.
func (p *PahoClient) PublishPlan(res model.RunResult) error {
	msg := planPayload{
		RunID:       res.ID,
		CreatedAt:   res.CreatedAt,
		Feasible:    res.Feasible,
		Savings:     res.Savings(),
		SlotSeconds: int(res.Plan.SlotDuration.Seconds()),
		BatteryKW:   res.Plan.BatteryKW,
		SoC:         res.Plan.SoC,
		GridKW:      res.Plan.GridKW,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := p.publish(p.Topic(), "plan", true, payload); err != nil {
		return err
	}
	if res.Plan.Horizon() == 0 {
		return nil
	}
	return p.PublishSetpoint(res.Plan.FirstActionKW())
}

// PublishSetpoint publishes a single battery power command in kW.
func (p *PahoClient) PublishSetpoint(powerKW float64) error {
	cmd := struct {
		CommandID string  `json:"command_id"`
		PowerKW   float64 `json:"power_kw"`
		Timestamp int64   `json:"timestamp"`
	}{
		CommandID: uuid.NewString(),
		PowerKW:   powerKW,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return p.publish(p.SetpointTopic(), "setpoint", false, payload)
}

// Subscribe registers a handler for a sensor topic. The subscription is
// renewed automatically when the connection drops and comes back.
func (p *PahoClient) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	wrapped := func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	}
	p.mu.Lock()
	p.handlers[topic] = wrapped
	p.mu.Unlock()
	if p.cli == nil || !p.cli.IsConnected() {
		return nil
	}
	if token := p.cli.Subscribe(topic, p.qosFor("sensor"), wrapped); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

func (p *PahoClient) publish(topic, kind string, retained bool, payload []byte) error {
	qos := p.qosFor(kind)
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	if p.timeout <= 0 {
		p.timeout = 5 * time.Second
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, retained, payload)
		if !token.WaitTimeout(p.timeout) {
			publishErr = coremqtt.ErrPublishTimeout
		} else {
			publishErr = token.Error()
		}
		if publishErr == nil {
			p.logger.Infof("published %s to %s", kind, topic)
			break
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	if publishErr != nil {
		coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
		return publishErr
	}
	return nil
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
