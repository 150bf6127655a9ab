/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

package gateway

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TickGranularity is the cooperative scheduler's nominal work-entry
// cadence (spec §2: "~10 ms granularity").
const TickGranularity = 10 * time.Millisecond

// workEntry is one named, non-blocking unit of work registered on a
// logical thread.
type workEntry struct {
	name string
	fn   func()
}

// logicalThread runs its work entries round-robin, strictly
// sequentially, on a single goroutine standing in for the dedicated OS
// thread spec §5 describes. No two entries on the same thread ever run
// concurrently, so entries on one thread need no further
// synchronization with each other.
type logicalThread struct {
	name    string
	entries []workEntry
}

func (t *logicalThread) addEntry(name string, fn func()) {
	t.entries = append(t.entries, workEntry{name: name, fn: fn})
}

func (t *logicalThread) runOnce(logger logrus.FieldLogger) {
	for _, e := range t.entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						"thread": t.name,
						"entry":  e.name,
						"panic":  r,
					}).Error("work entry panicked")
				}
			}()
			e.fn()
		}()
	}
}

// Scheduler is the cooperative round-robin run-loop (spec §5): a set of
// named logical threads, created on first use by Thread, each executing
// its registered work entries in order, forever, at TickGranularity.
type Scheduler struct {
	logger  logrus.FieldLogger
	threads []*logicalThread
}

// NewScheduler creates an empty Scheduler. Use Thread to register named
// logical threads before calling Run.
func NewScheduler(logger logrus.FieldLogger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{logger: logger.WithField("component", "scheduler")}
}

// ThreadHandle lets callers register work entries on a logical thread
// without exposing the scheduler's internals.
type ThreadHandle struct {
	t *logicalThread
}

// AddEntry registers a named, non-blocking work entry on this thread.
// Entries run in registration order, every tick, for the life of the
// scheduler.
func (h ThreadHandle) AddEntry(name string, fn func()) {
	h.t.addEntry(name, fn)
}

// Thread returns the named logical thread, creating it on first use.
func (s *Scheduler) Thread(name string) ThreadHandle {
	for _, t := range s.threads {
		if t.name == name {
			return ThreadHandle{t: t}
		}
	}
	t := &logicalThread{name: name}
	s.threads = append(s.threads, t)
	return ThreadHandle{t: t}
}

// Run starts one goroutine per logical thread and blocks until stop is
// closed. Each thread runs its entries round-robin at TickGranularity;
// a slow tick is not compensated for (spec §5: "drift is measured from
// the previous firing, not from startup" is a property of individual
// elapsed-time predicates, not the scheduler's own tick).
func (s *Scheduler) Run(stop <-chan struct{}) {
	var wg sync.WaitGroup
	for _, t := range s.threads {
		wg.Add(1)
		go func(t *logicalThread) {
			defer wg.Done()
			ticker := time.NewTicker(TickGranularity)
			defer ticker.Stop()

			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					t.runOnce(s.logger)
				}
			}
		}(t)
	}
	wg.Wait()
}
