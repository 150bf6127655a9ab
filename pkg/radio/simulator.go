/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package radio

import "sync"

// Simulator is a Radio implementation with no hardware backing,
// grounded on cmd/get/main.go's "hallucinate" pattern of driving a
// component end-to-end without the real transport. It is used by the
// replay tool (cmd/replay) and by registry/reporter tests that need to
// inject advertisements on demand.
type Simulator struct {
	mu              sync.Mutex
	ready           bool
	scanning        bool
	onAdvertisement OnAdvertisement
	onReady         OnReady
	onFailedInit    OnFailedInit
	failScanStart   bool
}

// NewSimulator creates a Simulator that starts not-ready, matching a
// real radio that needs SetReady to be called once boot completes.
func NewSimulator() *Simulator {
	return &Simulator{}
}

func (s *Simulator) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Simulator) IsScanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

func (s *Simulator) StartPassiveScan(onScanStartResult OnScanStartResult, onAdvertisement OnAdvertisement) {
	s.mu.Lock()
	fail := s.failScanStart
	if !fail {
		s.scanning = true
		s.onAdvertisement = onAdvertisement
	}
	s.mu.Unlock()

	if onScanStartResult != nil {
		onScanStartResult(!fail)
	}
}

func (s *Simulator) AddListener(onReady OnReady, onFailedInit OnFailedInit) {
	s.mu.Lock()
	s.onReady = onReady
	s.onFailedInit = onFailedInit
	s.mu.Unlock()
}

// SetReady marks the simulated radio ready and fires the registered
// onReady callback, mirroring the real radio's boot-complete signal.
func (s *Simulator) SetReady() {
	s.mu.Lock()
	cb := s.onReady
	s.ready = true
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// FailInit fires the registered onFailedInit callback without ever
// becoming ready, for exercising spec §7's "Radio init failure" path.
func (s *Simulator) FailInit(autoRetry bool) {
	s.mu.Lock()
	cb := s.onFailedInit
	s.mu.Unlock()

	if cb != nil {
		cb(autoRetry)
	}
}

// SetFailScanStart makes every StartPassiveScan report failure until it
// is called again with false, exercising spec §7's "Scan start failure"
// path.
func (s *Simulator) SetFailScanStart(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failScanStart = fail
}

// StopScanning marks the simulator as no longer scanning, as if the
// radio silently dropped its scan, so the registry's periodic restart
// check has something to do.
func (s *Simulator) StopScanning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
}

// Inject delivers a single advertisement as if received over the air.
// It is safe to call from any goroutine, mirroring a real radio's
// callback dispatch from a thread of its own choosing (spec §5).
func (s *Simulator) Inject(packet *AdvPacket) {
	s.mu.Lock()
	cb := s.onAdvertisement
	s.mu.Unlock()

	if cb != nil {
		cb(packet)
	}
}
