// Package mqtt mirrors device capabilities and availability to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"toon_bridge/internal/logger"
	"toon_bridge/internal/models"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	publishTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second
)

// Config holds the broker connection settings.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Client is the part of the paho client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// Publisher writes retained capability values to <prefix>/<device>/<capability>
// and availability to <prefix>/<device>/availability.
type Publisher struct {
	client Client
	prefix string
	log    *logger.Logger
}

func NewPublisher(client Client, prefix string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = "toon"
	}
	return &Publisher{client: client, prefix: prefix, log: log}
}

// Connect dials the broker and returns a publisher on the connection.
func Connect(cfg Config, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "toon-bridge"
	}
	p := NewPublisher(nil, cfg.TopicPrefix, log)

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(p.bridgeTopic(), "offline", qos, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			log.Infow("mqtt_connected", "broker", cfg.Broker)
			p.publish(p.bridgeTopic(), []byte("online"))
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			log.Warnw("mqtt_connection_lost", "err", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	p.client = client
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return p, nil
}

func (p *Publisher) bridgeTopic() string { return p.prefix + "/bridge/state" }

func (p *Publisher) deviceTopic(deviceID, leaf string) string {
	return p.prefix + "/" + deviceID + "/" + leaf
}

// SetCapability publishes the value as JSON; nil is published as null.
func (p *Publisher) SetCapability(_ context.Context, deviceID, capability string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		p.log.Errorw("mqtt_encode_failed", "device_id", deviceID, "capability", capability, "err", err)
		return
	}
	p.publish(p.deviceTopic(deviceID, capability), payload)
}

func (p *Publisher) MarkReachable(_ context.Context, deviceID string) {
	p.publish(p.deviceTopic(deviceID, "availability"), []byte("online"))
}

func (p *Publisher) MarkUnreachable(_ context.Context, deviceID, _ string) {
	p.publish(p.deviceTopic(deviceID, "availability"), []byte("offline"))
}

// SetAvailable publishes the persisted availability of a restored device.
func (p *Publisher) SetAvailable(deviceID string, available bool) {
	if available {
		p.MarkReachable(context.Background(), deviceID)
		return
	}
	p.MarkUnreachable(context.Background(), deviceID, "")
}

// ForgetDevice clears the retained messages of a removed device.
func (p *Publisher) ForgetDevice(deviceID string) {
	for _, c := range models.Capabilities {
		p.publish(p.deviceTopic(deviceID, c), []byte{})
	}
	p.publish(p.deviceTopic(deviceID, "availability"), []byte{})
}

// Close marks the bridge offline and disconnects.
func (p *Publisher) Close() {
	token := p.client.Publish(p.bridgeTopic(), qos, true, []byte("offline"))
	token.WaitTimeout(time.Second)
	p.client.Disconnect(250)
}

func (p *Publisher) publish(topic string, payload []byte) {
	token := p.client.Publish(topic, qos, true, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warnw("mqtt_publish_timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			p.log.Warnw("mqtt_publish_failed", "topic", topic, "err", err)
		}
	}()
}
