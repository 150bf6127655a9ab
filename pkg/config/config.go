/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package config resolves gateway startup configuration from flags and
// environment variables, in the teacher's style of a small flat struct
// built in main() rather than a dedicated configuration library — this
// gateway has too few knobs to justify one (see DESIGN.md).
package config

import (
	"flag"
	"os"
)

// Config holds the gateway's runtime knobs.
type Config struct {
	MQTTBroker   string
	MQTTUsername string
	MQTTPassword string
	GatewayIDSeed string
	QueueCapacity int
	MetricsAddr   string
	LogLevel      string
}

// Default returns the gateway's out-of-the-box configuration.
func Default() Config {
	return Config{
		MQTTBroker:    "mqtt://localhost:1883",
		QueueCapacity: 4,
		MetricsAddr:   ":9110",
		LogLevel:      "info",
	}
}

// ParseFlags overlays command-line flags onto a Default() config.
// Unset flags fall back to environment variables, then the default;
// -queue-capacity has no environment variable and falls back to the
// default only.
func ParseFlags(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("beacon-gateway", flag.ContinueOnError)
	fs.StringVar(&cfg.MQTTBroker, "mqtt-broker", envOr("BEACON_GW_MQTT_BROKER", cfg.MQTTBroker), "MQTT broker URL")
	fs.StringVar(&cfg.MQTTUsername, "mqtt-username", envOr("BEACON_GW_MQTT_USERNAME", cfg.MQTTUsername), "MQTT username")
	fs.StringVar(&cfg.MQTTPassword, "mqtt-password", envOr("BEACON_GW_MQTT_PASSWORD", cfg.MQTTPassword), "MQTT password")
	fs.StringVar(&cfg.GatewayIDSeed, "gateway-id", envOr("BEACON_GW_ID", cfg.GatewayIDSeed), "persisted gateway identity hex string (generated if empty)")
	fs.IntVar(&cfg.QueueCapacity, "queue-capacity", cfg.QueueCapacity, "beacon update queue capacity")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", envOr("BEACON_GW_METRICS_ADDR", cfg.MetricsAddr), "Prometheus metrics listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("BEACON_GW_LOG_LEVEL", cfg.LogLevel), "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
