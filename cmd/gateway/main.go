/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/clock"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/config"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gateway"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gwmetrics"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/identity"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/radio"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/rpc"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/variant"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		logrus.Fatalf("parse config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logger := logrus.StandardLogger()

	gatewayID := cfg.GatewayIDSeed
	if gatewayID == "" {
		gatewayID = identity.NewGenerator().UniqueIDHexString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter := radio.NewTinygoAdapter(bluetooth.DefaultAdapter, logger)
	go adapter.Boot()

	publisher := rpc.NewMQTTPublisher(rpc.MQTTConfig{
		Broker:   cfg.MQTTBroker,
		RootNode: gatewayID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	}, logger)
	if err := publisher.Start(ctx); err != nil {
		logrus.Fatalf("start mqtt publisher: %v", err)
	}
	defer publisher.Stop(context.Background())

	metrics := gwmetrics.New()
	metrics.MustRegister(prometheus.DefaultRegisterer)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.WithError(err).Warn("metrics server stopped")
		}
	}()

	gw := gateway.New(gateway.Options{
		Radio:         adapter,
		Clock:         clock.NewSystem(),
		Publisher:     publisher,
		GatewayID:     gatewayID,
		Variant:       variant.Unknown,
		QueueCapacity: cfg.QueueCapacity,
		Metrics:       metrics,
		Logger:        logger,
	})

	stopCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stopCh)
	}()

	gw.Run(stopCh)
}
