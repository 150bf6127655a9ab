/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Command replay drives the beacon observation engine against a
// synthetic advertisement stream instead of real BLE hardware, using
// pkg/radio.Simulator. Useful for local testing without a radio
// attached, in the same spirit as the teacher's cmd/get: a small,
// single-purpose binary exercising the library end to end.
package main

import (
	"context"
	"encoding/binary"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/clock"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gateway"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/gwmetrics"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/radio"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/registry"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/rpc"
	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/variant"
)

func main() {
	logger := logrus.StandardLogger()
	logger.SetLevel(logrus.DebugLevel)

	sim := radio.NewSimulator()
	pub := &rpc.FakePublisher{}

	gw := gateway.New(gateway.Options{
		Radio:         sim,
		Clock:         clock.NewSystem(),
		Publisher:     pub,
		GatewayID:     "replay0000",
		Variant:       variant.Internal,
		QueueCapacity: 4,
		Metrics:       gwmetrics.New(),
		Logger:        logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stop := make(chan struct{})
	go gw.Run(stop)
	go func() {
		<-ctx.Done()
		close(stop)
	}()

	sim.SetReady()

	identities := [][6]byte{
		{0x11, 0x22, 0x33, 0x44, 0x55, 0x01},
		{0x11, 0x22, 0x33, 0x44, 0x55, 0x02},
		{0x11, 0x22, 0x33, 0x44, 0x55, 0x03},
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id := identities[rand.Intn(len(identities))]
			sim.Inject(syntheticAdvertisement(id))

			logger.WithField("known", len(gw.KnownBeacons())).Info("injected synthetic advertisement")
			if len(pub.Notifications) > 0 {
				note := pub.Notifications[len(pub.Notifications)-1]
				logger.WithFields(logrus.Fields{"node": note.Node, "payload": string(note.Payload)}).Debug("last published notification")
			}
		}
	}
}

func syntheticAdvertisement(id [6]byte) *radio.AdvPacket {
	payload := make([]byte, 15)
	payload[0] = 0x01 // devType: BeaconV1
	copy(payload[1:7], id[:])
	payload[7] = 0x00 // deviceStatus
	payload[8] = byte(50 + rand.Intn(50))
	binary.LittleEndian.PutUint16(payload[9:11], uint16(150+rand.Intn(150)))
	payload[11] = byte(rand.Intn(256))
	payload[12] = 0x00
	binary.LittleEndian.PutUint16(payload[13:15], uint16(1800+rand.Intn(1400)))

	return &radio.AdvPacket{
		RSSIdBm: int8(-40 - rand.Intn(40)),
		AdvFields: []radio.AdvField{
			{Type: radio.AdvFieldTypeManufacturerData, ManufacturerCompanyID: registry.CompanyID, ManufacturerBytes: payload},
		},
	}
}
