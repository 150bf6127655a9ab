/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package rpc

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/sirupsen/logrus"
)

// MQTTConfig configures the MQTT-backed Publisher.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. "mqtt://localhost:1883" or
	// "mqtts://broker.example.com:8883".
	Broker string
	// RootNode is the per-gateway unique hex identifier that roots the
	// RPC node tree (spec §6). Notifications publish under
	// <RootNode>/<node>.
	RootNode string
	// ClientID is the MQTT client identifier. If empty, RootNode is
	// used.
	ClientID string
	Username string
	Password string
}

// pahoQoS maps this package's QoS to paho's byte encoding.
func pahoQoS(q QoS) byte {
	switch q {
	case QoSAtLeastOnce:
		return 1
	case QoSExactlyOnce:
		return 2
	default:
		return 0
	}
}

// MQTTPublisher is a Publisher implementation backed by
// github.com/eclipse/paho.golang's autopaho connection manager, grounded
// on the pack's MQTT publisher example (internal-mqtt-publisher.go):
// same reliance on autopaho.ConnectionManager for reconnect handling,
// same "connect once, publish many times" shape.
type MQTTPublisher struct {
	cfg    MQTTConfig
	logger logrus.FieldLogger
	cm     *autopaho.ConnectionManager
}

// NewMQTTPublisher creates an MQTTPublisher but does not connect. Call
// Start to begin the connection.
func NewMQTTPublisher(cfg MQTTConfig, logger logrus.FieldLogger) *MQTTPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MQTTPublisher{cfg: cfg, logger: logger.WithField("component", "rpc")}
}

// Start connects to the configured broker and blocks until the initial
// connection succeeds, ctx expires, or 30 seconds pass. A failed wait is
// logged, not returned; autopaho continues reconnecting in the
// background afterward.
func (m *MQTTPublisher) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(m.cfg.Broker)
	if err != nil {
		return fmt.Errorf("parse mqtt broker url: %w", err)
	}

	clientID := m.cfg.ClientID
	if clientID == "" {
		clientID = m.cfg.RootNode
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: m.cfg.Username,
		ConnectPassword: []byte(m.cfg.Password),
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			m.logger.WithField("broker", m.cfg.Broker).Info("connected to mqtt broker")
		},
		OnConnectError: func(err error) {
			m.logger.WithError(err).Warn("mqtt connection error")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: clientID,
		},
	}

	if brokerURL.Scheme == "mqtts" || brokerURL.Scheme == "ssl" {
		pahoCfg.TlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	m.cm = cm

	connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := cm.AwaitConnection(connCtx); err != nil {
		m.logger.WithError(err).Warn("mqtt initial connection timed out, will retry in background")
	}
	return nil
}

// Stop disconnects from the broker.
func (m *MQTTPublisher) Stop(ctx context.Context) error {
	if m.cm == nil {
		return nil
	}
	return m.cm.Disconnect(ctx)
}

// PublishNotification implements Publisher. It is safe to call before
// the initial connection completes; the underlying client queues or
// drops per autopaho's own policy, consistent with this gateway's
// at-most-once semantics (spec §6).
func (m *MQTTPublisher) PublishNotification(node, name string, qos QoS, payload []byte) error {
	if m.cm == nil {
		return fmt.Errorf("rpc: mqtt publisher not started")
	}

	topic := m.cfg.RootNode + "/" + node
	_, err := m.cm.Publish(context.Background(), &paho.Publish{
		Topic:   topic,
		Payload: payload,
		QoS:     pahoQoS(qos),
		Retain:  false,
	})
	if err != nil {
		return fmt.Errorf("rpc: publish %s/%s: %w", topic, name, err)
	}
	return nil
}
